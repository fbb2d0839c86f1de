package api

import (
	"net/http"
	"time"

	"github.com/garunski/pulse/pkg/pulse/journal"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now(),
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, status)
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:     "healthy",
		Version:    h.version,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentStatus),
	}

	if h.registry != nil {
		status.Components["panels"] = ComponentStatus{Status: "ready"}
	} else {
		status.Components["panels"] = ComponentStatus{
			Status:  "not_ready",
			Message: "Panel registry not initialized",
		}
		status.Status = "unhealthy"
	}

	// The journal is diagnostic; its absence does not make the service unready.
	if h.journal != nil {
		if _, err := h.journal.ListEntries(journal.Filters{Limit: 1}); err != nil {
			status.Components["journal"] = ComponentStatus{
				Status:  "unavailable",
				Message: err.Error(),
			}
		} else {
			status.Components["journal"] = ComponentStatus{Status: "available"}
		}
	} else {
		status.Components["journal"] = ComponentStatus{
			Status:  "unavailable",
			Message: "Journal not initialized",
		}
	}

	statusCode := http.StatusOK
	if status.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSONResponse(w, h.logger, statusCode, status)
}

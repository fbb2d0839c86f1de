package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

func (h *Handler) ListPanels(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, h.logger, http.StatusOK, PanelListResponse{Panels: h.registry.Summaries()})
}

// GetCatalogue returns the panel configuration currently in force as YAML.
func (h *Handler) GetCatalogue(w http.ResponseWriter, r *http.Request) {
	data, err := h.registry.Catalogue().Marshal()
	if err != nil {
		h.logger.Error(err, "failed to marshal catalogue")
		WriteError(w, h.logger, err)
		return
	}
	WriteYAMLResponse(w, h.logger, data)
}

func (h *Handler) ListPanelEvents(w http.ResponseWriter, r *http.Request) {
	sim, p, err := h.panelFromRequest(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	view, err := ParseEventViewParams(r.URL.Query(), p.Stream)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	snap := sim.Snapshot()
	WriteJSONResponse(w, h.logger, http.StatusOK, EventsResponse{
		Panel:   p.Name,
		Version: snap.Version,
		Running: snap.Running,
		Events:  view.Apply(snap.Events, p.Stream),
	})
}

func (h *Handler) DismissAllEvents(w http.ResponseWriter, r *http.Request) {
	sim, p, err := h.panelFromRequest(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	n := sim.DismissAll()
	h.logger.V(1).Info("dismissed all events", "panel", p.Name, "count", n)
	WriteJSONResponse(w, h.logger, http.StatusOK, DismissResponse{Panel: p.Name, Dismissed: n})
}

// DismissEvent succeeds whether or not the event is still live; it may have
// expired or been evicted concurrently.
func (h *Handler) DismissEvent(w http.ResponseWriter, r *http.Request) {
	sim, p, err := h.panelFromRequest(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, h.logger, fmt.Errorf("%w: event id is required", apperrors.ErrMissingParameter))
		return
	}

	n := 0
	if sim.Dismiss(id) {
		n = 1
	}
	WriteJSONResponse(w, h.logger, http.StatusOK, DismissResponse{Panel: p.Name, Dismissed: n})
}

func (h *Handler) StartPanel(w http.ResponseWriter, r *http.Request) {
	sim, p, err := h.panelFromRequest(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.registry.Start(p.Name); err != nil {
		h.logger.Error(err, "failed to start panel", "panel", p.Name)
		WriteError(w, h.logger, err)
		return
	}
	WriteJSONResponse(w, h.logger, http.StatusOK, PanelStateResponse{Panel: p.Name, Running: sim.Running()})
}

func (h *Handler) StopPanel(w http.ResponseWriter, r *http.Request) {
	sim, p, err := h.panelFromRequest(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	sim.Stop()
	WriteJSONResponse(w, h.logger, http.StatusOK, PanelStateResponse{Panel: p.Name, Running: sim.Running()})
}

func (h *Handler) panelFromRequest(r *http.Request) (*stream.Simulator, panels.Panel, error) {
	name := chi.URLParam(r, "panel")
	if err := panels.ValidateName(name); err != nil {
		return nil, panels.Panel{}, fmt.Errorf("%w: invalid panel: %w", apperrors.ErrInvalid, err)
	}
	sim, err := h.registry.Get(name)
	if err != nil {
		return nil, panels.Panel{}, err
	}
	p, err := h.registry.Panel(name)
	if err != nil {
		return nil, panels.Panel{}, err
	}
	return sim, p, nil
}

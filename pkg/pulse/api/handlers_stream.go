package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/garunski/pulse/pkg/pulse/stream"
)

// StreamPanel sends the panel's snapshot as a server-sent event after every
// mutation, starting with the current state. The same severity and sort
// parameters as ListPanelEvents apply to each snapshot.
func (h *Handler) StreamPanel(w http.ResponseWriter, r *http.Request) {
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

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshots, unsubscribe := sim.Subscribe()
	defer unsubscribe()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	h.logger.V(1).Info("stream opened", "panel", p.Name)
	defer h.logger.V(1).Info("stream closed", "panel", p.Name)

	for {
		select {
		case <-r.Context().Done():
			return

		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeSnapshotEvent(w, snap, view, p.Stream); err != nil {
				h.logger.V(1).Info("failed to write stream event", "panel", p.Name, "error", err)
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snap stream.Snapshot, view EventView, cfg stream.Config) error {
	data, err := json.Marshal(EventsResponse{
		Panel:   snap.Panel,
		Version: snap.Version,
		Running: snap.Running,
		Events:  view.Apply(snap.Events, cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, data)
	return err
}

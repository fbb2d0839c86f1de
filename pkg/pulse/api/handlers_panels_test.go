package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

func serve(t *testing.T, env *testEnv, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	env.handler.SetupRoutes().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not valid JSON: %v (body %s)", err, w.Body.String())
	}
	return v
}

func TestListPanels(t *testing.T) {
	env := newTestEnv(t)
	env.startWithEvents(t, "alerts", 2)

	w := serve(t, env, "GET", "/api/panels")
	if w.Code != http.StatusOK {
		t.Fatalf("ListPanels() status code = %v, want %v", w.Code, http.StatusOK)
	}

	got := decode[PanelListResponse](t, w)
	want := []panels.Summary{
		{Name: "alerts", Running: true, Count: 2, Capacity: 3, Autostart: true},
		{Name: "triage", Running: false, Count: 0, Capacity: 5},
	}
	if diff := cmp.Diff(want, got.Panels); diff != "" {
		t.Errorf("ListPanels() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetCatalogue(t *testing.T) {
	env := newTestEnv(t)

	w := serve(t, env, "GET", "/api/panels/catalogue")
	if w.Code != http.StatusOK {
		t.Fatalf("GetCatalogue() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %s, want application/yaml", ct)
	}
	c, err := panels.Parse(w.Body.Bytes())
	if err != nil {
		t.Fatalf("catalogue response does not parse: %v", err)
	}
	if len(c.Panels) != 2 {
		t.Errorf("catalogue has %d panels, want 2", len(c.Panels))
	}
}

func TestListPanelEvents(t *testing.T) {
	env := newTestEnv(t)
	env.startWithEvents(t, "alerts", 3)

	w := serve(t, env, "GET", "/api/panels/alerts/events")
	if w.Code != http.StatusOK {
		t.Fatalf("ListPanelEvents() status code = %v, want %v", w.Code, http.StatusOK)
	}
	got := decode[EventsResponse](t, w)
	if got.Panel != "alerts" || !got.Running || len(got.Events) != 3 {
		t.Fatalf("ListPanelEvents() = %+v", got)
	}
	for i := 1; i < len(got.Events); i++ {
		if got.Events[i-1].Seq < got.Events[i].Seq {
			t.Errorf("events not newest first: seq %d before %d", got.Events[i-1].Seq, got.Events[i].Seq)
		}
	}
}

func TestListPanelEvents_SeverityView(t *testing.T) {
	env := newTestEnv(t)
	env.startWithEvents(t, "triage", 5)

	w := serve(t, env, "GET", "/api/panels/triage/events?sort=severity")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %v, want %v", w.Code, http.StatusOK)
	}
	sorted := decode[EventsResponse](t, w).Events
	seenLow := false
	for _, e := range sorted {
		if e.Severity == stream.SeverityLow {
			seenLow = true
		} else if seenLow {
			t.Fatalf("urgent event after low event in severity order: %+v", sorted)
		}
	}

	w = serve(t, env, "GET", "/api/panels/triage/events?severity=urgent")
	for _, e := range decode[EventsResponse](t, w).Events {
		if e.Severity != stream.SeverityUrgent {
			t.Errorf("severity filter returned %s event", e.Severity)
		}
	}
}

func TestListPanelEvents_BadParams(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown panel", "/api/panels/nope/events", http.StatusNotFound, "unknown_panel"},
		{"invalid panel name", "/api/panels/Bad_Name/events", http.StatusBadRequest, "validation_error"},
		{"severity not in panel", "/api/panels/alerts/events?severity=urgent", http.StatusBadRequest, "invalid_parameter"},
		{"bad sort", "/api/panels/alerts/events?sort=random", http.StatusBadRequest, "invalid_parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, env, "GET", tt.target)
			if w.Code != tt.status {
				t.Errorf("status code = %v, want %v", w.Code, tt.status)
			}
			if got := decode[ErrorResponse](t, w); got.Error != tt.code {
				t.Errorf("error code = %s, want %s", got.Error, tt.code)
			}
		})
	}
}

func TestDismissEvent(t *testing.T) {
	env := newTestEnv(t)
	env.startWithEvents(t, "alerts", 2)

	sim, _ := env.registry.Get("alerts")
	id := sim.Snapshot().Events[0].ID

	w := serve(t, env, "DELETE", "/api/panels/alerts/events/"+id)
	if w.Code != http.StatusOK {
		t.Fatalf("DismissEvent() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if diff := cmp.Diff(DismissResponse{Panel: "alerts", Dismissed: 1}, decode[DismissResponse](t, w)); diff != "" {
		t.Errorf("DismissEvent() mismatch (-want +got):\n%s", diff)
	}

	// Dismissing again is a successful no-op.
	w = serve(t, env, "DELETE", "/api/panels/alerts/events/"+id)
	if w.Code != http.StatusOK {
		t.Fatalf("second DismissEvent() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if got := decode[DismissResponse](t, w); got.Dismissed != 0 {
		t.Errorf("second DismissEvent() dismissed = %d, want 0", got.Dismissed)
	}
	if n := len(sim.Snapshot().Events); n != 1 {
		t.Errorf("panel has %d events, want 1", n)
	}
}

func TestDismissAllEvents(t *testing.T) {
	env := newTestEnv(t)
	env.startWithEvents(t, "alerts", 3)

	w := serve(t, env, "DELETE", "/api/panels/alerts/events")
	if w.Code != http.StatusOK {
		t.Fatalf("DismissAllEvents() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if got := decode[DismissResponse](t, w); got.Dismissed != 3 {
		t.Errorf("DismissAllEvents() dismissed = %d, want 3", got.Dismissed)
	}

	sim, _ := env.registry.Get("alerts")
	if n := len(sim.Snapshot().Events); n != 0 {
		t.Errorf("panel has %d events after dismiss all, want 0", n)
	}
}

func TestStartStopPanel(t *testing.T) {
	env := newTestEnv(t)

	w := serve(t, env, "POST", "/api/panels/triage/start")
	if w.Code != http.StatusOK {
		t.Fatalf("StartPanel() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if got := decode[PanelStateResponse](t, w); !got.Running {
		t.Errorf("StartPanel() running = false")
	}

	w = serve(t, env, "POST", "/api/panels/triage/stop")
	if w.Code != http.StatusOK {
		t.Fatalf("StopPanel() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if got := decode[PanelStateResponse](t, w); got.Running {
		t.Errorf("StopPanel() running = true")
	}

	w = serve(t, env, "POST", "/api/panels/nope/start")
	if w.Code != http.StatusNotFound {
		t.Errorf("StartPanel(nope) status code = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	env := newTestEnv(t)
	w := serve(t, env, "GET", "/api/panels/alerts/events?sort=x")
	if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Errorf("error Content-Type = %s, want application/json", w.Header().Get("Content-Type"))
	}
}

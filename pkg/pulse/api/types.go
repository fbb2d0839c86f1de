package api

import (
	"time"

	"github.com/garunski/pulse/pkg/pulse/journal"
	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

type HealthStatus struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type PanelListResponse struct {
	Panels []panels.Summary `json:"panels"`
}

// EventsResponse is a view of one panel's live collection.
type EventsResponse struct {
	Panel   string         `json:"panel"`
	Version uint64         `json:"version"`
	Running bool           `json:"running"`
	Events  []stream.Event `json:"events"`
}

type DismissResponse struct {
	Panel     string `json:"panel"`
	Dismissed int    `json:"dismissed"`
}

type PanelStateResponse struct {
	Panel   string `json:"panel"`
	Running bool   `json:"running"`
}

type JournalResponse struct {
	Entries []journal.Entry `json:"entries"`
}

type CleanupResponse struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

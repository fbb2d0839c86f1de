package stream

import "time"

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUrgent   Severity = "urgent"
)

type Category string

const (
	CategorySpike     Category = "spike"
	CategoryThreshold Category = "threshold"
	CategoryAgent     Category = "agent"
	CategoryChannel   Category = "channel"
)

// Event is one synthetic occurrence shown by a panel. Removing it from the
// live collection is its dismissal; nothing else is kept.
type Event struct {
	ID         string            `json:"id"`
	Panel      string            `json:"panel,omitempty"`
	Category   Category          `json:"category"`
	Severity   Severity          `json:"severity"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Source     string            `json:"source,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Actionable bool              `json:"actionable"`
	CreatedAt  time.Time         `json:"createdAt"`
	Seq        uint64            `json:"seq"`
	AutoExpire bool              `json:"autoExpire"`
	ExpiresAt  time.Time         `json:"expiresAt,omitzero"`
}

// Template is the display text used for events of one category. A
// template may also pin the severity and source of its category, so the
// category always arrives as the same kind of alert.
type Template struct {
	Title    string   `json:"title" yaml:"title"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// Snapshot is the observable state of a simulator after a mutation.
type Snapshot struct {
	Panel   string  `json:"panel,omitempty"`
	Version uint64  `json:"version"`
	Running bool    `json:"running"`
	Events  []Event `json:"events"`
}

type TransitionKind string

const (
	TransitionCreated   TransitionKind = "created"
	TransitionDismissed TransitionKind = "dismissed"
	TransitionExpired   TransitionKind = "expired"
	TransitionEvicted   TransitionKind = "evicted"
	TransitionCleared   TransitionKind = "cleared"
)

// Transition describes one lifecycle change of one event.
type Transition struct {
	Kind  TransitionKind `json:"kind"`
	Panel string         `json:"panel,omitempty"`
	At    time.Time      `json:"at"`
	Event Event          `json:"event"`
}

// Recorder observes lifecycle transitions. Record is called outside the
// simulator lock, in the order the transitions happened.
type Recorder interface {
	Record(transitions []Transition)
}

type RecorderFunc func(transitions []Transition)

func (f RecorderFunc) Record(transitions []Transition) { f(transitions) }

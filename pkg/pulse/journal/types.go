package journal

import (
	"time"

	"github.com/garunski/pulse/pkg/pulse/stream"
)

// Entry is one recorded lifecycle transition.
type Entry struct {
	ID    string                `json:"id"`
	Seq   uint64                `json:"seq"`
	Kind  stream.TransitionKind `json:"kind"`
	Panel string                `json:"panel"`
	At    time.Time             `json:"at"`
	Event stream.Event          `json:"event"`
}

// Filters selects entries for ListEntries. Zero values match everything.
type Filters struct {
	Panel  string
	Kind   stream.TransitionKind
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Journal is the read and write surface of the lifecycle journal.
type Journal interface {
	stream.Recorder

	RecordBatch(transitions []stream.Transition) error

	ListEntries(filters Filters) ([]Entry, error)

	// GetByEvent returns every entry for one event id, oldest first.
	GetByEvent(eventID string) ([]Entry, error)

	// CleanupOld removes entries recorded before the given time and
	// returns how many were removed.
	CleanupOld(before time.Time) (int, error)
}

var _ Journal = (*Store)(nil)

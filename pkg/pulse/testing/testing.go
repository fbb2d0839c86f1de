package testing

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/garunski/pulse/pkg/pulse/database"
	"github.com/garunski/pulse/pkg/pulse/journal"
	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
	"github.com/garunski/pulse/pkg/pulse/stream/streamtest"
)

// Epoch is the start time of clocks returned by NewTestClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewTestLogger creates a test logger
func NewTestLogger() logr.Logger {
	zapLog, _ := zap.NewDevelopment()
	return zapr.NewLogger(zapLog)
}

// NewTestDB creates an in-memory test database
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	return db
}

// NewTestJournal creates a journal backed by an in-memory database
func NewTestJournal(t *testing.T) *journal.Store {
	return journal.NewStore(NewTestDB(t), logr.Discard())
}

// NewTestClock creates a manual clock starting at Epoch
func NewTestClock() *streamtest.ManualClock {
	return streamtest.NewManualClock(Epoch)
}

// NewTestRegistry parses catalogueYAML and creates a registry whose panels
// run on clk with a fixed seed. Panels are stopped when the test ends.
func NewTestRegistry(t *testing.T, catalogueYAML string, clk stream.Clock, opts ...stream.Option) *panels.Registry {
	t.Helper()
	c, err := panels.Parse([]byte(catalogueYAML))
	if err != nil {
		t.Fatalf("failed to parse test catalogue: %v", err)
	}
	simOpts := append([]stream.Option{
		stream.WithClock(clk),
		stream.WithRand(stream.NewSeededRand(7)),
	}, opts...)
	registry, err := panels.NewRegistry(c, logr.Discard(), simOpts...)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	t.Cleanup(registry.StopAll)
	return registry
}

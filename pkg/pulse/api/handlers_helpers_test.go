package api

import (
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/pulse/pkg/pulse/journal"
	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
	"github.com/garunski/pulse/pkg/pulse/stream/streamtest"
	pulsetesting "github.com/garunski/pulse/pkg/pulse/testing"
)

const testCatalogue = `
panels:
  - name: alerts
    autostart: true
    stream:
      minInterval: 1s
      maxInterval: 1s
      capacity: 3
      categories: [spike]
      severities: [low, medium, high]
  - name: triage
    stream:
      minInterval: 1s
      maxInterval: 1s
      capacity: 5
      categories: [agent]
      severities: [low, urgent]
`

type testEnv struct {
	handler  *Handler
	registry *panels.Registry
	journal  *journal.Store
	clock    *streamtest.ManualClock
}

type testHandlerConfig struct {
	nilJournal bool
}

type testHandlerOption func(*testHandlerConfig)

func WithNilJournal() testHandlerOption {
	return func(c *testHandlerConfig) { c.nilJournal = true }
}

func newTestEnv(t *testing.T, opts ...testHandlerOption) *testEnv {
	t.Helper()
	cfg := testHandlerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := logr.Discard()

	env := &testEnv{clock: pulsetesting.NewTestClock()}

	var (
		j       journal.Journal
		simOpts []stream.Option
	)
	if !cfg.nilJournal {
		env.journal = pulsetesting.NewTestJournal(t)
		j = env.journal
		simOpts = append(simOpts, stream.WithRecorder(env.journal))
	}

	env.registry = pulsetesting.NewTestRegistry(t, testCatalogue, env.clock, simOpts...)

	env.handler = NewHandler(env.registry, j, logger, "test-version")
	return env
}

// startWithEvents starts a panel and advances the clock until it holds n events.
func (e *testEnv) startWithEvents(t *testing.T, panel string, n int) {
	t.Helper()
	if err := e.registry.Start(panel); err != nil {
		t.Fatalf("Start(%s) error = %v", panel, err)
	}
	e.clock.Advance(time.Duration(n) * time.Second)
}

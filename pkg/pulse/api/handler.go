package api

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/pulse/pkg/pulse/journal"
	"github.com/garunski/pulse/pkg/pulse/panels"
)

type Handler struct {
	logger    logr.Logger
	registry  *panels.Registry
	journal   journal.Journal
	version   string
	heartbeat time.Duration
}

// NewHandler serves the display API. journal may be nil, in which case the
// journal endpoints report it unavailable.
func NewHandler(registry *panels.Registry, j journal.Journal, logger logr.Logger, version string) *Handler {
	return &Handler{
		logger:    logger,
		registry:  registry,
		journal:   j,
		version:   version,
		heartbeat: DefaultHeartbeatInterval,
	}
}

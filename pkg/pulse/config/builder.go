package config

import (
	"fmt"
	"time"

	"github.com/garunski/pulse/pkg/pulse"
)

// Builder provides a fluent interface for building pulse configuration.
type Builder struct {
	config pulse.Config
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		config: pulse.DefaultConfig(),
	}
}

// WithAppVersion sets the application version.
func (b *Builder) WithAppVersion(version string) *Builder {
	b.config.AppVersion = version
	return b
}

// WithDataPath sets the journal storage path. An empty path keeps the
// journal in memory.
func (b *Builder) WithDataPath(path string) *Builder {
	b.config.DataPath = path
	return b
}

// WithPort sets the HTTP server port.
func (b *Builder) WithPort(port string) *Builder {
	b.config.Port = port
	return b
}

// WithPanelsFile sets the YAML panels file and whether to reload it on change.
func (b *Builder) WithPanelsFile(path string, watch bool) *Builder {
	b.config.PanelsFile = path
	b.config.WatchPanels = watch
	return b
}

// WithJournalRetention sets how long journal entries are kept.
func (b *Builder) WithJournalRetention(retention time.Duration) *Builder {
	b.config.JournalRetention = retention
	return b
}

// WithJournalCleanupInterval sets how often expired journal entries are pruned.
func (b *Builder) WithJournalCleanupInterval(interval time.Duration) *Builder {
	b.config.JournalCleanupInterval = interval
	return b
}

// WithLogFormat sets the log encoding, console or json.
func (b *Builder) WithLogFormat(format string) *Builder {
	b.config.LogFormat = format
	return b
}

// Build returns the configured Config and validates it.
// Returns an error if validation fails.
func (b *Builder) Build() (pulse.Config, error) {
	if err := b.config.Validate(); err != nil {
		return pulse.Config{}, err
	}
	return b.config, nil
}

// MustBuild returns the configured Config and panics if validation fails.
func (b *Builder) MustBuild() pulse.Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg
}

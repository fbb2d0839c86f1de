package pulse

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/garunski/pulse/pkg/pulse/server"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config holds all service configuration
type Config struct {
	// Application metadata
	AppVersion string

	// Storage configuration; an empty DataPath keeps the journal in memory
	DataPath string

	// Server configuration
	Port string

	// Panel configuration; an empty PanelsFile uses the built-in panels
	PanelsFile  string
	WatchPanels bool

	// Journal configuration
	JournalRetention       time.Duration
	JournalCleanupInterval time.Duration

	// Logging configuration
	LogFormat string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		AppVersion:             getEnvOrDefault("VERSION", "dev"),
		DataPath:               os.Getenv("PULSE_DATA_PATH"),
		Port:                   getEnvOrDefault("PORT", "8080"),
		PanelsFile:             os.Getenv("PULSE_PANELS_FILE"),
		WatchPanels:            parseBoolOrDefault("PULSE_WATCH_PANELS", false),
		JournalRetention:       parseDurationOrDefault("JOURNAL_RETENTION", 24*time.Hour),
		JournalCleanupInterval: parseDurationOrDefault("JOURNAL_CLEANUP_INTERVAL", 10*time.Minute),
		LogFormat:              getEnvOrDefault("PULSE_LOG_FORMAT", LogFormatConsole),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("Port cannot be empty")
	}
	if c.JournalRetention <= 0 {
		return fmt.Errorf("JournalRetention must be positive")
	}
	if c.JournalCleanupInterval <= 0 {
		return fmt.Errorf("JournalCleanupInterval must be positive")
	}
	if c.WatchPanels && c.PanelsFile == "" {
		return fmt.Errorf("WatchPanels requires PanelsFile")
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("LogFormat must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.LogFormat)
	}
	return nil
}

// ServerConfig converts c to the server's configuration.
func (c *Config) ServerConfig() *server.Config {
	return &server.Config{
		AppVersion:             c.AppVersion,
		DataPath:               c.DataPath,
		Port:                   c.Port,
		PanelsFile:             c.PanelsFile,
		WatchPanels:            c.WatchPanels,
		JournalRetention:       c.JournalRetention,
		JournalCleanupInterval: c.JournalCleanupInterval,
	}
}

// NewLogger builds the zap-backed logger for the given format.
func NewLogger(format string) (logr.Logger, error) {
	var (
		zapLog *zap.Logger
		err    error
	)
	if format == LogFormatJSON {
		zapLog, err = zap.NewProduction()
	} else {
		zapLog, err = zap.NewDevelopment()
	}
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to create logger: %w", err)
	}
	return zapr.NewLogger(zapLog), nil
}

// Run starts the service with the given configuration
// It handles the complete lifecycle: initialization, startup, and shutdown
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := NewLogger(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger.Info("Starting pulse", "version", cfg.AppVersion, "port", cfg.Port)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, err := server.NewServer(cfg.ServerConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error(err, "failed to close server")
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := srv.WaitForShutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}

// LoadEnvFile loads the first readable .env file among paths into the
// process environment and returns its path, or "" when none was found.
// Variables already set are not overridden.
func LoadEnvFile(paths ...string) string {
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

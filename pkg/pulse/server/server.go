package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/pulse/pkg/pulse/api"
	"github.com/garunski/pulse/pkg/pulse/database"
	"github.com/garunski/pulse/pkg/pulse/journal"
	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

// Config holds server configuration
type Config struct {
	AppVersion             string
	DataPath               string
	Port                   string
	PanelsFile             string
	WatchPanels            bool
	JournalRetention       time.Duration
	JournalCleanupInterval time.Duration
	// SimulatorOptions are applied to every panel simulator.
	SimulatorOptions []stream.Option
}

type Server struct {
	config     *Config
	logger     logr.Logger
	db         *database.DB
	journal    *journal.Store
	registry   *panels.Registry
	retention  *journal.Retention
	watcher    *panels.Watcher
	handler    *api.Handler
	httpServer *http.Server

	cancelBase context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new server instance
func NewServer(cfg *Config, logger logr.Logger) (*Server, error) {
	catalogue, err := panels.Load(cfg.PanelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load panels: %w", err)
	}
	logger.Info("Loaded panels", "count", len(catalogue.Panels), "file", cfg.PanelsFile)

	storage, err := NewStorageComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := append([]stream.Option{stream.WithRecorder(storage.Journal)}, cfg.SimulatorOptions...)
	registry, err := panels.NewRegistry(catalogue, logger.WithName("panels"), opts...)
	if err != nil {
		storage.DB.Close()
		return nil, fmt.Errorf("failed to create panel registry: %w", err)
	}

	retention, err := journal.NewRetention(storage.Journal, cfg.JournalRetention, cfg.JournalCleanupInterval, nil, logger.WithName("retention"))
	if err != nil {
		storage.DB.Close()
		return nil, err
	}

	var watcher *panels.Watcher
	if cfg.WatchPanels && cfg.PanelsFile != "" {
		watcher, err = panels.NewWatcher(cfg.PanelsFile, registry, logger.WithName("watcher"))
		if err != nil {
			storage.DB.Close()
			return nil, err
		}
	}

	handler := api.NewHandler(registry, storage.Journal, logger, cfg.AppVersion)

	// Request contexts derive from baseCtx so open event streams end on shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	return &Server{
		config:     cfg,
		logger:     logger,
		db:         storage.DB,
		journal:    storage.Journal,
		registry:   registry,
		retention:  retention,
		watcher:    watcher,
		handler:    handler,
		httpServer: httpServer,
		cancelBase: cancelBase,
	}, nil
}

// Registry exposes the panel simulators.
func (s *Server) Registry() *panels.Registry {
	return s.registry
}

// Addr returns the address the HTTP server listens on once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Close() error {
	if s.cancelBase != nil {
		s.cancelBase()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

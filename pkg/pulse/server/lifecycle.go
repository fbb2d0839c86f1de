package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if err := s.registry.StartAll(); err != nil {
		ln.Close()
		return fmt.Errorf("failed to start panels: %w", err)
	}

	if err := s.retention.Start(); err != nil {
		s.registry.StopAll()
		ln.Close()
		return err
	}

	if s.watcher != nil {
		if err := s.watcher.Start(ctx); err != nil {
			s.logger.Error(err, "panels file watcher not started")
		}
	}

	go func() {
		s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, "HTTP server error")
		}
	}()

	return nil
}

func (s *Server) WaitForShutdown(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		s.logger.Info("Shutting down...")
		return s.Shutdown(context.Background())
	case <-ctx.Done():
		s.logger.Info("Shutting down due to context cancellation...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops generation and the background jobs, ends open event
// streams and drains the HTTP server. Live collections are discarded with
// the process.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
	defer cancel()

	var errs []error
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close panels watcher: %w", err))
		}
	}

	s.registry.StopAll()

	if err := s.retention.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop journal retention: %w", err))
	}

	s.cancelBase()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("Shutdown complete")
	return nil
}

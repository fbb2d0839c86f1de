package journal

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

// Retention periodically prunes journal entries older than a window.
type Retention struct {
	journal   Journal
	window    time.Duration
	interval  time.Duration
	clock     clock.PassiveClock
	logger    logr.Logger
	scheduler gocron.Scheduler
}

func NewRetention(j Journal, window, interval time.Duration, clk clock.PassiveClock, logger logr.Logger) (*Retention, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: journal retention must be positive, got %s", apperrors.ErrInvalidConfig, window)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: journal cleanup interval must be positive, got %s", apperrors.ErrInvalidConfig, interval)
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Retention{
		journal:  j,
		window:   window,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}, nil
}

// Prune removes everything older than the retention window once.
func (r *Retention) Prune() (int, error) {
	before := r.clock.Now().Add(-r.window)
	n, err := r.journal.CleanupOld(before)
	if err != nil {
		return n, err
	}
	r.logger.V(1).Info("journal retention pass", "deleted", n, "before", before)
	return n, nil
}

// Start schedules Prune every interval.
func (r *Retention) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create retention scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			if _, err := r.Prune(); err != nil {
				r.logger.Error(err, "journal retention failed")
			}
		}),
		gocron.WithName("journal-retention"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}

	scheduler.Start()
	r.scheduler = scheduler
	r.logger.Info("Journal retention started", "window", r.window, "interval", r.interval)
	return nil
}

// Shutdown stops the scheduler and waits for a running pass. Safe to call
// when not started.
func (r *Retention) Shutdown() error {
	if r.scheduler == nil {
		return nil
	}
	err := r.scheduler.Shutdown()
	r.scheduler = nil
	return err
}

package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
	"github.com/garunski/pulse/pkg/pulse/stream/streamtest"
)

const simulateStep = 100 * time.Millisecond

type simulateOptions struct {
	panelsFile string
	panels     []string
	duration   time.Duration
	seed       uint64
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Fast-forward panels on a virtual clock and print their transitions",
		Long: `Runs the selected panels for --duration of virtual time without waiting
and writes every lifecycle transition as one JSON object per line. The same
seed always produces the same transitions for a panel,
apart from event IDs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.panelsFile, "panels", "", "YAML panels file, built-in panels when empty")
	flags.StringSliceVar(&opts.panels, "panel", nil, "panel to simulate, repeatable (default all)")
	flags.DurationVar(&opts.duration, "duration", time.Minute, "virtual time to simulate")
	flags.Uint64Var(&opts.seed, "seed", 1, "random seed")
	return cmd
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	if opts.duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", opts.duration)
	}

	catalogue, err := panels.Load(opts.panelsFile)
	if err != nil {
		return err
	}
	selected, err := selectPanels(catalogue, opts.panels)
	if err != nil {
		return err
	}

	out := &transitionWriter{enc: json.NewEncoder(cmd.OutOrStdout())}
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, p := range selected {
		g.Go(func() error {
			clk := streamtest.NewManualClock(epoch)
			sim := stream.New(
				stream.WithPanel(p.Name),
				stream.WithClock(clk),
				stream.WithRand(stream.NewSeededRand(opts.seed+uint64(i))),
				stream.WithRecorder(out),
				stream.WithInitial(p.Stream, p.Initial),
			)
			if err := sim.Start(p.Stream); err != nil {
				return fmt.Errorf("panel %s: %w", p.Name, err)
			}
			defer sim.Stop()

			for elapsed := time.Duration(0); elapsed < opts.duration; elapsed += simulateStep {
				if err := ctx.Err(); err != nil {
					return err
				}
				clk.Advance(min(simulateStep, opts.duration-elapsed))
			}
			return out.err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "simulated %d panel(s) for %s, %d transition(s)\n",
		len(selected), opts.duration, out.count())
	return nil
}

func selectPanels(catalogue panels.Catalogue, names []string) ([]panels.Panel, error) {
	if len(names) == 0 {
		return catalogue.Panels, nil
	}
	selected := make([]panels.Panel, 0, len(names))
	for _, name := range names {
		p, ok := catalogue.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown panel %q", name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// transitionWriter encodes transitions from concurrent simulators as JSON lines.
type transitionWriter struct {
	mu       sync.Mutex
	enc      *json.Encoder
	written  int
	firstErr error
}

var _ stream.Recorder = (*transitionWriter)(nil)

func (w *transitionWriter) Record(transitions []stream.Transition) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range transitions {
		if w.firstErr != nil {
			return
		}
		if err := w.enc.Encode(t); err != nil {
			w.firstErr = fmt.Errorf("failed to write transition: %w", err)
			return
		}
		w.written++
	}
}

func (w *transitionWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *transitionWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}

package panels

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

// Registry owns one simulator per catalogue panel.
type Registry struct {
	logger     logr.Logger
	simulators map[string]*stream.Simulator

	mu        sync.RWMutex
	catalogue Catalogue
}

// Summary describes a panel for listings.
type Summary struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Running   bool   `json:"running"`
	Count     int    `json:"count"`
	Capacity  int    `json:"capacity"`
	Autostart bool   `json:"autostart"`
}

// NewRegistry builds a simulator for every panel. opts are applied to each
// simulator after the panel name and logger.
func NewRegistry(catalogue Catalogue, logger logr.Logger, opts ...stream.Option) (*Registry, error) {
	if err := catalogue.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		logger:     logger,
		catalogue:  catalogue,
		simulators: make(map[string]*stream.Simulator, len(catalogue.Panels)),
	}
	for _, p := range catalogue.Panels {
		simOpts := append([]stream.Option{
			stream.WithPanel(p.Name),
			stream.WithLogger(logger.WithValues("panel", p.Name)),
			stream.WithInitial(p.Stream, p.Initial),
		}, opts...)
		r.simulators[p.Name] = stream.New(simOpts...)
	}
	return r, nil
}

func (r *Registry) Get(name string) (*stream.Simulator, error) {
	sim, ok := r.simulators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownPanel, name)
	}
	return sim, nil
}

func (r *Registry) Panel(name string) (Panel, error) {
	r.mu.RLock()
	p, ok := r.catalogue.Get(name)
	r.mu.RUnlock()
	if !ok {
		return Panel{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownPanel, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.simulators))
	for name := range r.simulators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins generation on one panel using its catalogue config.
func (r *Registry) Start(name string) error {
	sim, err := r.Get(name)
	if err != nil {
		return err
	}
	p, err := r.Panel(name)
	if err != nil {
		return err
	}
	return sim.Start(p.Stream)
}

func (r *Registry) Stop(name string) error {
	sim, err := r.Get(name)
	if err != nil {
		return err
	}
	sim.Stop()
	return nil
}

// StartAll starts every autostart panel and reports every failure.
func (r *Registry) StartAll() error {
	var errs []error
	for _, p := range r.panels() {
		if !p.Autostart {
			continue
		}
		if err := r.Start(p.Name); err != nil {
			r.logger.Error(err, "failed to start panel", "panel", p.Name)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) StopAll() {
	for _, name := range r.Names() {
		r.simulators[name].Stop()
	}
}

func (r *Registry) Summaries() []Summary {
	panels := r.panels()
	out := make([]Summary, 0, len(panels))
	for _, p := range panels {
		snap := r.simulators[p.Name].Snapshot()
		out = append(out, Summary{
			Name:      p.Name,
			Title:     p.Title,
			Running:   snap.Running,
			Count:     len(snap.Events),
			Capacity:  p.Stream.Capacity,
			Autostart: p.Autostart,
		})
	}
	return out
}

// Reload replaces the configuration of every known panel and restarts the
// running ones with it. Panels missing from the registry are skipped;
// panels missing from the new catalogue keep their current configuration.
func (r *Registry) Reload(catalogue Catalogue) error {
	if err := catalogue.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	merged := make([]Panel, 0, len(r.catalogue.Panels))
	for _, old := range r.catalogue.Panels {
		if p, ok := catalogue.Get(old.Name); ok {
			merged = append(merged, p)
		} else {
			merged = append(merged, old)
		}
	}
	for _, p := range catalogue.Panels {
		if _, ok := r.simulators[p.Name]; !ok {
			r.logger.Info("Skipping unknown panel on reload", "panel", p.Name)
		}
	}
	r.catalogue = Catalogue{Panels: merged}
	r.mu.Unlock()

	var errs []error
	for _, p := range merged {
		if _, ok := catalogue.Get(p.Name); !ok {
			continue
		}
		sim := r.simulators[p.Name]
		if !sim.Running() {
			continue
		}
		sim.Stop()
		if err := sim.Start(p.Stream); err != nil {
			errs = append(errs, fmt.Errorf("panel %s: %w", p.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	r.logger.Info("Reloaded panel catalogue", "panels", len(merged))
	return nil
}

func (r *Registry) panels() []Panel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Panel, len(r.catalogue.Panels))
	copy(out, r.catalogue.Panels)
	return out
}

// Catalogue returns the configuration currently in force.
func (r *Registry) Catalogue() Catalogue {
	return Catalogue{Panels: r.panels()}
}

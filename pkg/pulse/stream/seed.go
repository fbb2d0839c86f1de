package stream

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

// Seed is an event a panel holds before its first tick. Age back-dates the
// event from the moment the simulator is built.
type Seed struct {
	Age        time.Duration     `json:"age" yaml:"age"`
	Category   Category          `json:"category" yaml:"category"`
	Severity   Severity          `json:"severity" yaml:"severity"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	Source     string            `json:"source,omitempty" yaml:"source,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Actionable bool              `json:"actionable,omitempty" yaml:"actionable,omitempty"`
}

// ValidateSeeds checks seeds against c: they must fit the capacity, use
// configured severities and not lie in the future.
func (c Config) ValidateSeeds(seeds []Seed) error {
	var errs []error
	if len(seeds) > c.Capacity {
		errs = append(errs, fmt.Errorf("%d initial events exceed capacity %d", len(seeds), c.Capacity))
	}
	for i, s := range seeds {
		if s.Age < 0 {
			errs = append(errs, fmt.Errorf("initial event %d: age cannot be negative, got %s", i, s.Age))
		}
		if s.Category == "" {
			errs = append(errs, fmt.Errorf("initial event %d: category cannot be empty", i))
		}
		if c.Rank(s.Severity) < 0 {
			errs = append(errs, fmt.Errorf("initial event %d: severity %q is not a configured severity", i, s.Severity))
		}
	}
	if len(errs) > 0 {
		return apperrors.WrapInvalidConfig(errors.Join(errs...), "initial events")
	}
	return nil
}

// SeedEvents builds the events for seeds relative to now, oldest first, so
// inserting them in order leaves the newest at the head. Templates fill in
// missing text and cfg decides auto-expiry as for generated events. Seq
// and Panel are left for the caller.
func SeedEvents(cfg Config, seeds []Seed, now time.Time) []Event {
	ordered := make([]Seed, len(seeds))
	copy(ordered, seeds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Age > ordered[j].Age
	})

	events := make([]Event, 0, len(ordered))
	for _, s := range ordered {
		tmpl := cfg.Templates[s.Category]
		createdAt := now.Add(-s.Age)

		e := Event{
			ID:         uuid.NewString(),
			Category:   s.Category,
			Severity:   s.Severity,
			Title:      firstNonEmpty(s.Title, tmpl.Title, defaultTitle),
			Message:    firstNonEmpty(s.Message, tmpl.Message, defaultMessage),
			Source:     firstNonEmpty(s.Source, tmpl.Source),
			Actionable: s.Actionable,
			CreatedAt:  createdAt,
		}
		if len(s.Attributes) > 0 {
			e.Attributes = make(map[string]string, len(s.Attributes))
			for k, v := range s.Attributes {
				e.Attributes[k] = v
			}
		}
		if cfg.autoExpires(s.Severity) {
			e.AutoExpire = true
			e.ExpiresAt = createdAt.Add(cfg.expiryFor(s.Severity))
		}
		events = append(events, e)
	}
	return events
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package stream

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Rand is the random source used for generation and interval draws.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
	Float64() float64
}

// NewSeededRand returns a deterministic source for reproducible streams.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

const (
	defaultTitle   = "New Alert Generated"
	defaultMessage = "System detected anomaly in sentiment patterns"
)

// GenerateOne builds one event at now. All fields except ID come from r and
// cfg, drawn in a fixed order, so the same seed yields the same event.
// Severity and source are only drawn when the category's template does not
// pin them.
// Seq and Panel are left for the caller.
func GenerateOne(r Rand, cfg Config, now time.Time) Event {
	category := cfg.Categories[r.IntN(len(cfg.Categories))]
	tmpl := cfg.Templates[category]

	severity := tmpl.Severity
	if severity == "" {
		severity = cfg.Severities[r.IntN(len(cfg.Severities))]
	}

	event := Event{
		ID:        uuid.NewString(),
		Category:  category,
		Severity:  severity,
		Title:     defaultTitle,
		Message:   defaultMessage,
		CreatedAt: now,
	}

	if tmpl.Title != "" {
		event.Title = tmpl.Title
	}
	if tmpl.Message != "" {
		event.Message = tmpl.Message
	}

	switch {
	case tmpl.Source != "":
		event.Source = tmpl.Source
	case len(cfg.Sources) > 0:
		event.Source = cfg.Sources[r.IntN(len(cfg.Sources))]
	}

	if len(cfg.Attributes) > 0 {
		keys := make([]string, 0, len(cfg.Attributes))
		for k := range cfg.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		event.Attributes = make(map[string]string, len(keys))
		for _, k := range keys {
			values := cfg.Attributes[k]
			if len(values) == 0 {
				continue
			}
			event.Attributes[k] = values[r.IntN(len(values))]
		}
	}

	if cfg.ActionableProbability > 0 {
		event.Actionable = r.Float64() < cfg.ActionableProbability
	}

	if cfg.autoExpires(severity) {
		event.AutoExpire = true
		event.ExpiresAt = now.Add(cfg.expiryFor(severity))
	}

	return event
}

// nextInterval draws a delay uniformly from [MinInterval, MaxInterval].
func nextInterval(r Rand, cfg Config) time.Duration {
	span := int64(cfg.MaxInterval - cfg.MinInterval)
	if span <= 0 {
		return cfg.MinInterval
	}
	return cfg.MinInterval + time.Duration(r.Int64N(span+1))
}

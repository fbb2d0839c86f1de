package stream

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

// Config controls what a simulator generates and how long events live.
// Severities are listed in ascending order.
type Config struct {
	MinInterval time.Duration `json:"minInterval" yaml:"minInterval"`
	MaxInterval time.Duration `json:"maxInterval" yaml:"maxInterval"`
	Capacity    int           `json:"capacity" yaml:"capacity"`

	Categories []Category `json:"categories" yaml:"categories"`
	Severities []Severity `json:"severities" yaml:"severities"`

	AutoExpireSeverities  []Severity                `json:"autoExpireSeverities,omitempty" yaml:"autoExpireSeverities,omitempty"`
	ExpireAfter           time.Duration             `json:"expireAfter,omitempty" yaml:"expireAfter,omitempty"`
	ExpireAfterBySeverity map[Severity]time.Duration `json:"expireAfterBySeverity,omitempty" yaml:"expireAfterBySeverity,omitempty"`

	// InitialDelay replaces the first interval draw when set.
	InitialDelay time.Duration `json:"initialDelay,omitempty" yaml:"initialDelay,omitempty"`
	// EmitProbability is the chance a tick produces an event. Zero means always.
	EmitProbability       float64 `json:"emitProbability,omitempty" yaml:"emitProbability,omitempty"`
	ActionableProbability float64 `json:"actionableProbability,omitempty" yaml:"actionableProbability,omitempty"`

	Sources    []string              `json:"sources,omitempty" yaml:"sources,omitempty"`
	Templates  map[Category]Template `json:"templates,omitempty" yaml:"templates,omitempty"`
	Attributes map[string][]string   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

func (c Config) Validate() error {
	var errs []error

	if c.MinInterval <= 0 {
		errs = append(errs, fmt.Errorf("minInterval must be positive, got %s", c.MinInterval))
	}
	if c.MaxInterval <= 0 {
		errs = append(errs, fmt.Errorf("maxInterval must be positive, got %s", c.MaxInterval))
	}
	if c.MinInterval > c.MaxInterval {
		errs = append(errs, fmt.Errorf("minInterval %s exceeds maxInterval %s", c.MinInterval, c.MaxInterval))
	}
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("capacity must be positive, got %d", c.Capacity))
	}
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("categories cannot be empty"))
	}
	if len(c.Severities) == 0 {
		errs = append(errs, errors.New("severities cannot be empty"))
	}
	if c.InitialDelay < 0 {
		errs = append(errs, fmt.Errorf("initialDelay cannot be negative, got %s", c.InitialDelay))
	}
	if c.EmitProbability < 0 || c.EmitProbability > 1 {
		errs = append(errs, fmt.Errorf("emitProbability must be within [0, 1], got %v", c.EmitProbability))
	}
	if c.ActionableProbability < 0 || c.ActionableProbability > 1 {
		errs = append(errs, fmt.Errorf("actionableProbability must be within [0, 1], got %v", c.ActionableProbability))
	}

	for _, sev := range c.AutoExpireSeverities {
		if c.Rank(sev) < 0 {
			errs = append(errs, fmt.Errorf("auto-expire severity %q is not a configured severity", sev))
			continue
		}
		if c.expiryFor(sev) <= 0 {
			errs = append(errs, fmt.Errorf("severity %q auto-expires but has no positive expiry", sev))
		}
	}
	for sev, d := range c.ExpireAfterBySeverity {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("expiry for severity %q must be positive, got %s", sev, d))
		}
	}
	for category, tmpl := range c.Templates {
		if tmpl.Severity != "" && c.Rank(tmpl.Severity) < 0 {
			errs = append(errs, fmt.Errorf("template %q pins severity %q, which is not a configured severity", category, tmpl.Severity))
		}
	}
	for key, values := range c.Attributes {
		if len(values) == 0 {
			errs = append(errs, fmt.Errorf("attribute %q has no values", key))
		}
	}

	if len(errs) > 0 {
		return apperrors.WrapInvalidConfig(errors.Join(errs...), "simulator config")
	}
	return nil
}

// Rank returns the position of sev in Severities, or -1 when absent.
func (c Config) Rank(sev Severity) int {
	for i, s := range c.Severities {
		if s == sev {
			return i
		}
	}
	return -1
}

func (c Config) autoExpires(sev Severity) bool {
	for _, s := range c.AutoExpireSeverities {
		if s == sev {
			return true
		}
	}
	return false
}

func (c Config) expiryFor(sev Severity) time.Duration {
	if d, ok := c.ExpireAfterBySeverity[sev]; ok {
		return d
	}
	return c.ExpireAfter
}

func (c Config) emitProbability() float64 {
	if c.EmitProbability == 0 {
		return 1
	}
	return c.EmitProbability
}

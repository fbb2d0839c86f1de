package stream

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

func richConfig() Config {
	return Config{
		MinInterval: 15 * time.Second,
		MaxInterval: 30 * time.Second,
		Capacity:    10,
		Categories:  []Category{CategorySpike, CategoryThreshold, CategoryAgent, CategoryChannel},
		Severities:  []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical},

		AutoExpireSeverities:  []Severity{SeverityLow, SeverityMedium},
		ExpireAfter:           8 * time.Second,
		ExpireAfterBySeverity: map[Severity]time.Duration{SeverityMedium: 20 * time.Second},

		ActionableProbability: 0.5,
		Sources:               []string{"Email Support", "Live Chat", "Ticket System"},
		Templates: map[Category]Template{
			CategorySpike: {Title: "Negative Sentiment Spike Detected", Message: "Negative sentiment increased"},
		},
		Attributes: map[string][]string{
			"channel": {"email", "chat", "ticket"},
			"agent":   {"Sarah Chen", "Mike Johnson", "Lisa Wang", "David Wilson"},
			"emotion": {"joy", "anger", "confusion"},
		},
	}
}

func withoutID(e Event) Event {
	e.ID = ""
	return e
}

func sameFields(a, b Event) bool {
	a, b = withoutID(a), withoutID(b)
	if a.Category != b.Category || a.Severity != b.Severity || a.Title != b.Title ||
		a.Message != b.Message || a.Source != b.Source || a.Actionable != b.Actionable ||
		!a.CreatedAt.Equal(b.CreatedAt) || a.AutoExpire != b.AutoExpire || !a.ExpiresAt.Equal(b.ExpiresAt) {
		return false
	}
	if len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, v := range a.Attributes {
		if b.Attributes[k] != v {
			return false
		}
	}
	return true
}

func TestGenerateOne_Deterministic(t *testing.T) {
	cfg := richConfig()

	for seed := uint64(1); seed <= 20; seed++ {
		first := GenerateOne(NewSeededRand(seed), cfg, epoch)
		second := GenerateOne(NewSeededRand(seed), cfg, epoch)

		if !sameFields(first, second) {
			t.Errorf("seed %d: GenerateOne() not deterministic:\n%+v\n%+v", seed, first, second)
		}
		if first.ID == second.ID {
			t.Errorf("seed %d: GenerateOne() reused id %s", seed, first.ID)
		}
	}
}

func TestGenerateOne_DrawsFromConfig(t *testing.T) {
	cfg := richConfig()
	r := NewSeededRand(42)

	seenCategories := map[Category]bool{}
	seenSeverities := map[Severity]bool{}
	for i := 0; i < 500; i++ {
		e := GenerateOne(r, cfg, epoch)

		if cfg.Rank(e.Severity) < 0 {
			t.Fatalf("severity %q not in config", e.Severity)
		}
		seenCategories[e.Category] = true
		seenSeverities[e.Severity] = true

		if e.ID == "" {
			t.Fatal("GenerateOne() returned empty id")
		}
		if e.Source == "" {
			t.Fatal("GenerateOne() returned empty source")
		}
		if len(e.Attributes) != 3 {
			t.Fatalf("attributes = %v, want 3 keys", e.Attributes)
		}
	}

	if len(seenCategories) != len(cfg.Categories) {
		t.Errorf("saw categories %v, want all %d", seenCategories, len(cfg.Categories))
	}
	if len(seenSeverities) != len(cfg.Severities) {
		t.Errorf("saw severities %v, want all %d", seenSeverities, len(cfg.Severities))
	}
}

func TestGenerateOne_AutoExpire(t *testing.T) {
	cfg := richConfig()
	r := NewSeededRand(7)

	for i := 0; i < 200; i++ {
		e := GenerateOne(r, cfg, epoch)
		switch e.Severity {
		case SeverityLow:
			if !e.AutoExpire || !e.ExpiresAt.Equal(epoch.Add(8*time.Second)) {
				t.Fatalf("low event: AutoExpire=%v ExpiresAt=%v", e.AutoExpire, e.ExpiresAt)
			}
		case SeverityMedium:
			if !e.AutoExpire || !e.ExpiresAt.Equal(epoch.Add(20*time.Second)) {
				t.Fatalf("medium event: AutoExpire=%v ExpiresAt=%v", e.AutoExpire, e.ExpiresAt)
			}
		default:
			if e.AutoExpire || !e.ExpiresAt.IsZero() {
				t.Fatalf("%s event should not auto-expire", e.Severity)
			}
		}
	}
}

func TestGenerateOne_Templates(t *testing.T) {
	cfg := richConfig()
	cfg.Categories = []Category{CategorySpike}
	e := GenerateOne(NewSeededRand(1), cfg, epoch)
	if e.Title != "Negative Sentiment Spike Detected" {
		t.Errorf("Title = %q", e.Title)
	}

	cfg.Categories = []Category{CategoryAgent}
	e = GenerateOne(NewSeededRand(1), cfg, epoch)
	if e.Title != defaultTitle || e.Message != defaultMessage {
		t.Errorf("untemplated event got %q / %q", e.Title, e.Message)
	}
}

func TestGenerateOne_TemplatePinsSeverityAndSource(t *testing.T) {
	volume := Category("volume")
	cfg := Config{
		MinInterval: 15 * time.Second,
		MaxInterval: 30 * time.Second,
		Capacity:    3,
		Categories:  []Category{CategorySpike, CategoryAgent, volume},
		Severities:  []Severity{SeverityInfo, SeverityWarning, SeverityCritical},

		AutoExpireSeverities: []Severity{SeverityInfo},
		ExpireAfter:          8 * time.Second,

		Templates: map[Category]Template{
			CategorySpike: {Title: "Negative Sentiment Spike", Severity: SeverityCritical, Source: "Live Chat Channel"},
			CategoryAgent: {Title: "Agent Performance Alert", Severity: SeverityWarning, Source: "Agent Monitor"},
			volume:        {Title: "High Volume Alert", Severity: SeverityInfo, Source: "System Monitor"},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	r := NewSeededRand(7)
	seen := map[Category]int{}
	for i := 0; i < 300; i++ {
		e := GenerateOne(r, cfg, epoch)
		tmpl := cfg.Templates[e.Category]
		seen[e.Category]++

		if e.Severity != tmpl.Severity || e.Source != tmpl.Source {
			t.Fatalf("draw %d: %s event got %s from %q, want %s from %q",
				i, e.Category, e.Severity, e.Source, tmpl.Severity, tmpl.Source)
		}
		if e.Title != tmpl.Title {
			t.Errorf("draw %d: Title = %q, want %q", i, e.Title, tmpl.Title)
		}
		if wantExpire := e.Category == volume; e.AutoExpire != wantExpire {
			t.Errorf("draw %d: %s AutoExpire = %v, want %v", i, e.Category, e.AutoExpire, wantExpire)
		}
	}
	if len(seen) != 3 {
		t.Errorf("categories drawn = %v, want all three", seen)
	}
}

func TestEvent_ExpiresAtOmittedWhenZero(t *testing.T) {
	cfg := richConfig()
	cfg.Severities = []Severity{SeverityCritical}
	data, err := json.Marshal(GenerateOne(NewSeededRand(1), cfg, epoch))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "expiresAt") {
		t.Errorf("non-expiring event encoded expiresAt: %s", data)
	}

	cfg.Severities = []Severity{SeverityLow}
	data, err = json.Marshal(GenerateOne(NewSeededRand(1), cfg, epoch))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"expiresAt"`) {
		t.Errorf("expiring event is missing expiresAt: %s", data)
	}
}

func TestNextInterval_Bounds(t *testing.T) {
	cfg := richConfig()
	r := NewSeededRand(3)
	for i := 0; i < 1000; i++ {
		d := nextInterval(r, cfg)
		if d < cfg.MinInterval || d > cfg.MaxInterval {
			t.Fatalf("nextInterval() = %s outside [%s, %s]", d, cfg.MinInterval, cfg.MaxInterval)
		}
	}

	cfg.MaxInterval = cfg.MinInterval
	if d := nextInterval(r, cfg); d != cfg.MinInterval {
		t.Errorf("fixed interval draw = %s, want %s", d, cfg.MinInterval)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero min interval", func(c *Config) { c.MinInterval = 0 }, true},
		{"negative max interval", func(c *Config) { c.MaxInterval = -time.Second }, true},
		{"min above max", func(c *Config) { c.MinInterval = time.Minute }, true},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, true},
		{"no categories", func(c *Config) { c.Categories = nil }, true},
		{"no severities", func(c *Config) { c.Severities = nil }, true},
		{"unknown auto-expire severity", func(c *Config) { c.AutoExpireSeverities = []Severity{SeverityUrgent} }, true},
		{"auto-expire without expiry", func(c *Config) {
			c.ExpireAfter = 0
			c.ExpireAfterBySeverity = nil
		}, true},
		{"per-severity expiry only", func(c *Config) {
			c.ExpireAfter = 0
			c.AutoExpireSeverities = []Severity{SeverityMedium}
		}, false},
		{"emit probability above one", func(c *Config) { c.EmitProbability = 1.5 }, true},
		{"negative initial delay", func(c *Config) { c.InitialDelay = -time.Second }, true},
		{"empty attribute values", func(c *Config) { c.Attributes["empty"] = nil }, true},
		{"template pins unknown severity", func(c *Config) {
			c.Templates[CategoryAgent] = Template{Title: "Agent", Severity: SeverityUrgent}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := richConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.ErrInvalidConfig) {
				t.Errorf("Validate() error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

package stream

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

func seedConfig() Config {
	cfg := fixedConfig(3, time.Second)
	cfg.Categories = []Category{CategorySpike, CategoryChannel}
	cfg.Severities = []Severity{SeverityLow, SeverityCritical}
	cfg.Templates = map[Category]Template{
		CategoryChannel: {Title: "Chat Response Time Impact", Message: "Longer response times", Source: "Live Chat"},
	}
	return cfg
}

func TestSeedEvents(t *testing.T) {
	cfg := seedConfig()
	cfg.AutoExpireSeverities = []Severity{SeverityLow}
	cfg.ExpireAfter = time.Hour

	events := SeedEvents(cfg, []Seed{
		{Age: 5 * time.Minute, Category: CategorySpike, Severity: SeverityCritical, Title: "Spike", Actionable: true},
		{Age: 30 * time.Minute, Category: CategoryChannel, Severity: SeverityLow},
	}, epoch)

	if len(events) != 2 {
		t.Fatalf("SeedEvents() returned %d events, want 2", len(events))
	}

	oldest, newest := events[0], events[1]
	if !oldest.CreatedAt.Equal(epoch.Add(-30*time.Minute)) || !newest.CreatedAt.Equal(epoch.Add(-5*time.Minute)) {
		t.Errorf("createdAt = %v, %v; want oldest first, back-dated by age", oldest.CreatedAt, newest.CreatedAt)
	}
	if oldest.Title != "Chat Response Time Impact" || oldest.Source != "Live Chat" {
		t.Errorf("template text not applied: %+v", oldest)
	}
	if newest.Title != "Spike" || newest.Message != defaultMessage || !newest.Actionable {
		t.Errorf("seed fields not kept: %+v", newest)
	}
	if !oldest.AutoExpire || !oldest.ExpiresAt.Equal(epoch.Add(30*time.Minute)) {
		t.Errorf("low seed should expire an hour after createdAt, got %+v", oldest)
	}
	if newest.AutoExpire || !newest.ExpiresAt.IsZero() {
		t.Errorf("critical seed should not expire, got %+v", newest)
	}
	if oldest.ID == "" || oldest.ID == newest.ID {
		t.Errorf("seed ids = %q, %q; want distinct", oldest.ID, newest.ID)
	}
}

func TestConfigValidateSeeds(t *testing.T) {
	cfg := seedConfig()

	tests := []struct {
		name    string
		seeds   []Seed
		wantErr bool
	}{
		{"none", nil, false},
		{"valid", []Seed{{Age: time.Minute, Category: CategorySpike, Severity: SeverityLow}}, false},
		{"negative age", []Seed{{Age: -time.Second, Category: CategorySpike, Severity: SeverityLow}}, true},
		{"empty category", []Seed{{Severity: SeverityLow}}, true},
		{"unknown severity", []Seed{{Category: CategorySpike, Severity: SeverityUrgent}}, true},
		{"over capacity", []Seed{
			{Category: CategorySpike, Severity: SeverityLow},
			{Category: CategorySpike, Severity: SeverityLow},
			{Category: CategorySpike, Severity: SeverityLow},
			{Category: CategorySpike, Severity: SeverityLow},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.ValidateSeeds(tt.seeds)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidConfig) {
					t.Errorf("ValidateSeeds() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateSeeds() error = %v", err)
			}
		})
	}
}

func TestSimulator_InitialEvents(t *testing.T) {
	cfg := seedConfig()
	sim, clk, log := newTestSimulator(t, WithInitial(cfg, []Seed{
		{Age: 15 * time.Minute, Category: CategorySpike, Severity: SeverityLow},
		{Age: 5 * time.Minute, Category: CategorySpike, Severity: SeverityCritical},
		{Age: 30 * time.Minute, Category: CategoryChannel, Severity: SeverityLow},
	}))

	snap := sim.Snapshot()
	if snap.Running {
		t.Error("seeding should not start the simulator")
	}
	if len(snap.Events) != 3 {
		t.Fatalf("len(events) = %d before Start, want 3", len(snap.Events))
	}
	for i := 1; i < len(snap.Events); i++ {
		if snap.Events[i].CreatedAt.After(snap.Events[i-1].CreatedAt) {
			t.Fatalf("seeds not newest first: %v then %v", snap.Events[i-1].CreatedAt, snap.Events[i].CreatedAt)
		}
	}
	if got := seqs(snap.Events); got[0] != 3 || got[2] != 1 {
		t.Errorf("seqs = %v, want [3 2 1]", got)
	}
	if snap.Events[0].Panel != "test" || snap.Events[0].Severity != SeverityCritical {
		t.Errorf("newest seed = %+v", snap.Events[0])
	}

	kinds := log.kinds()
	if len(kinds) != 3 || kinds[0] != TransitionCreated {
		t.Errorf("transitions = %v, want three created", kinds)
	}

	if err := sim.Start(cfg); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sim.Stop()
	oldestID := snap.Events[2].ID

	clk.Advance(time.Second)
	events := sim.Snapshot().Events
	if len(events) != 3 {
		t.Fatalf("len(events) = %d after first tick, want capacity 3", len(events))
	}
	if events[0].Seq != 4 || !events[0].CreatedAt.Equal(epoch.Add(time.Second)) {
		t.Errorf("generated event = %+v, want seq 4 at epoch+1s", events[0])
	}
	if containsID(events, oldestID) {
		t.Error("oldest seed should be evicted first")
	}
}

func TestSimulator_InitialEventsExpireAfterStart(t *testing.T) {
	cfg := seedConfig()
	cfg.MinInterval, cfg.MaxInterval = time.Hour, time.Hour
	cfg.AutoExpireSeverities = []Severity{SeverityLow}
	cfg.ExpireAfter = 10 * time.Minute

	sim, clk, _ := newTestSimulator(t, WithInitial(cfg, []Seed{
		{Age: 15 * time.Minute, Category: CategorySpike, Severity: SeverityLow},
		{Age: 5 * time.Minute, Category: CategorySpike, Severity: SeverityLow},
	}))

	// Expiry waits for Start.
	clk.Advance(time.Hour)
	if len(sim.Snapshot().Events) != 2 {
		t.Fatal("seeds should not expire before Start")
	}

	if err := sim.Start(cfg); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sim.Stop()

	clk.Advance(time.Millisecond)
	if len(sim.Snapshot().Events) != 0 {
		t.Errorf("overdue seeds should expire once started, got %d events", len(sim.Snapshot().Events))
	}
}

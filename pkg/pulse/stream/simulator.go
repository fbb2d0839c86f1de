package stream

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

// Simulator owns one bounded live collection and the timers feeding and
// expiring it. All mutations are serialized by mu; timer callbacks carry
// the generation they were armed in and act on ids, so a callback that
// lost a race with Stop, Dismiss or eviction does nothing.
type Simulator struct {
	panel    string
	clock    Clock
	rand     Rand
	logger   logr.Logger
	recorder Recorder

	mu       sync.Mutex
	recordMu sync.Mutex

	cfg      Config
	running  bool
	gen      uint64
	tick     clock.Timer
	expiries map[string]clock.Timer
	events   []Event
	seq      uint64
	lastAt   time.Time
	version  uint64

	subs    map[int]chan Snapshot
	nextSub int

	seedCfg Config
	seeds   []Seed
}

type Option func(*Simulator)

func WithPanel(name string) Option {
	return func(s *Simulator) { s.panel = name }
}

func WithClock(c Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithRand sets the random source. A source must not be shared by
// simulators running on a real clock.
func WithRand(r Rand) Option {
	return func(s *Simulator) { s.rand = r }
}

func WithLogger(logger logr.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithRecorder registers an observer for lifecycle transitions. The
// recorder must not call back into the simulator.
func WithRecorder(r Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// WithInitial fills the collection with seeds when the simulator is built.
// cfg supplies the capacity, templates and expiry rules for the seeds;
// expiry timers are armed by Start.
func WithInitial(cfg Config, seeds []Seed) Option {
	return func(s *Simulator) {
		s.seedCfg = cfg
		s.seeds = seeds
	}
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		clock:    clock.RealClock{},
		logger:   logr.Discard(),
		expiries: make(map[string]clock.Timer),
		events:   []Event{},
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if len(s.seeds) > 0 {
		s.mu.Lock()
		s.unlockAndRecord(s.seedLocked())
	}
	return s
}

// seedLocked inserts the initial events oldest first.
func (s *Simulator) seedLocked() []Transition {
	var transitions []Transition
	for _, e := range SeedEvents(s.seedCfg, s.seeds, s.clock.Now()) {
		s.seq++
		e.Seq = s.seq
		e.Panel = s.panel
		s.lastAt = e.CreatedAt

		kept, evicted := Insert(s.events, e, s.seedCfg.Capacity)
		s.events = kept
		transitions = append(transitions, s.transition(TransitionCreated, e, e.CreatedAt))
		for _, old := range evicted {
			transitions = append(transitions, s.transition(TransitionEvicted, old, e.CreatedAt))
		}
	}
	s.seeds = nil
	s.publishLocked()
	s.logger.V(1).Info("seeded initial events", "panel", s.panel, "count", len(s.events))
	return transitions
}

// Start validates cfg and begins periodic generation. Calling Start on a
// running simulator is a no-op.
func (s *Simulator) Start(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.V(1).Info("simulator already running", "panel", s.panel)
		return nil
	}

	s.cfg = cfg
	s.running = true
	s.gen++

	now := s.clock.Now()
	var transitions []Transition

	kept, evicted := EvictOverCapacity(s.events, cfg.Capacity)
	s.events = kept
	for _, e := range evicted {
		transitions = append(transitions, s.transition(TransitionEvicted, e, now))
	}

	// Events left over from a previous run resume their expiry.
	for _, e := range s.events {
		if e.AutoExpire {
			s.armExpiryLocked(e.ID, e.ExpiresAt.Sub(now))
		}
	}

	delay := cfg.InitialDelay
	if delay == 0 {
		delay = nextInterval(s.rand, cfg)
	}
	s.scheduleTickLocked(delay)
	s.publishLocked()

	s.logger.Info("Simulator started", "panel", s.panel, "capacity", cfg.Capacity,
		"minInterval", cfg.MinInterval, "maxInterval", cfg.MaxInterval, "firstTick", delay)
	s.unlockAndRecord(transitions)
	return nil
}

// Stop halts generation and cancels every pending expiry. Live events stay
// in the collection. Safe to call when not running.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	s.running = false
	s.gen++
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	for id, t := range s.expiries {
		t.Stop()
		delete(s.expiries, id)
	}
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Info("Simulator stopped", "panel", s.panel)
}

// Dismiss removes the event with the given id and reports whether it was
// still present.
func (s *Simulator) Dismiss(id string) bool {
	s.mu.Lock()
	kept, removed := Dismiss(s.events, id)
	if !removed {
		s.mu.Unlock()
		return false
	}

	var removedEvent Event
	for _, e := range s.events {
		if e.ID == id {
			removedEvent = e
			break
		}
	}
	s.events = kept
	s.cancelExpiryLocked(id)
	s.publishLocked()

	s.unlockAndRecord([]Transition{s.transition(TransitionDismissed, removedEvent, s.clock.Now())})
	return true
}

// DismissAll clears the collection as a single mutation and returns the
// number of events removed.
func (s *Simulator) DismissAll() int {
	s.mu.Lock()
	if len(s.events) == 0 {
		s.mu.Unlock()
		return 0
	}

	now := s.clock.Now()
	transitions := make([]Transition, 0, len(s.events))
	for _, e := range s.events {
		transitions = append(transitions, s.transition(TransitionCleared, e, now))
	}
	for id := range s.expiries {
		s.cancelExpiryLocked(id)
	}
	s.events = DismissAll(s.events)
	s.publishLocked()

	s.unlockAndRecord(transitions)
	return len(transitions)
}

func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Config returns the configuration of the current or last run.
func (s *Simulator) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Simulator) Panel() string {
	return s.panel
}

// Subscribe returns a channel carrying the latest snapshot after every
// mutation, starting with the current one. A slow reader only misses
// intermediate snapshots. The returned func unsubscribes and closes the
// channel.
func (s *Simulator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

func (s *Simulator) onTick(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}

	var transitions []Transition
	p := s.cfg.emitProbability()
	if p >= 1 || s.rand.Float64() < p {
		transitions = s.emitLocked()
		s.publishLocked()
	}
	s.scheduleTickLocked(nextInterval(s.rand, s.cfg))

	s.unlockAndRecord(transitions)
}

func (s *Simulator) emitLocked() []Transition {
	now := s.clock.Now()
	if now.Before(s.lastAt) {
		now = s.lastAt
	}
	s.lastAt = now

	e := GenerateOne(s.rand, s.cfg, now)
	s.seq++
	e.Seq = s.seq
	e.Panel = s.panel

	kept, evicted := Insert(s.events, e, s.cfg.Capacity)
	s.events = kept

	transitions := make([]Transition, 0, 1+len(evicted))
	transitions = append(transitions, s.transition(TransitionCreated, e, now))
	for _, old := range evicted {
		s.cancelExpiryLocked(old.ID)
		transitions = append(transitions, s.transition(TransitionEvicted, old, now))
	}

	if e.AutoExpire {
		s.armExpiryLocked(e.ID, e.ExpiresAt.Sub(now))
	}

	s.logger.V(1).Info("emitted event", "panel", s.panel, "id", e.ID,
		"category", e.Category, "severity", e.Severity, "evicted", len(evicted))
	return transitions
}

func (s *Simulator) onExpire(gen uint64, id string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	delete(s.expiries, id)

	var expired Event
	for _, e := range s.events {
		if e.ID == id {
			expired = e
			break
		}
	}
	kept, removed := Dismiss(s.events, id)
	if !removed {
		s.mu.Unlock()
		return
	}
	s.events = kept
	s.publishLocked()

	s.logger.V(1).Info("event expired", "panel", s.panel, "id", id)
	s.unlockAndRecord([]Transition{s.transition(TransitionExpired, expired, s.clock.Now())})
}

func (s *Simulator) scheduleTickLocked(d time.Duration) {
	gen := s.gen
	s.tick = s.clock.AfterFunc(d, func() { s.onTick(gen) })
}

func (s *Simulator) armExpiryLocked(id string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.cancelExpiryLocked(id)
	gen := s.gen
	s.expiries[id] = s.clock.AfterFunc(d, func() { s.onExpire(gen, id) })
}

func (s *Simulator) cancelExpiryLocked(id string) {
	if t, ok := s.expiries[id]; ok {
		t.Stop()
		delete(s.expiries, id)
	}
}

func (s *Simulator) snapshotLocked() Snapshot {
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return Snapshot{
		Panel:   s.panel,
		Version: s.version,
		Running: s.running,
		Events:  events,
	}
}

func (s *Simulator) publishLocked() {
	s.version++
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Simulator) transition(kind TransitionKind, e Event, at time.Time) Transition {
	return Transition{Kind: kind, Panel: s.panel, At: at, Event: e}
}

// unlockAndRecord releases mu and hands transitions to the recorder.
// recordMu is taken before mu is released so recorders see transitions in
// mutation order.
func (s *Simulator) unlockAndRecord(transitions []Transition) {
	if len(transitions) == 0 || s.recorder == nil {
		s.mu.Unlock()
		return
	}
	s.recordMu.Lock()
	s.mu.Unlock()
	defer s.recordMu.Unlock()
	s.recorder.Record(transitions)
}

package journal

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/garunski/pulse/pkg/pulse/database"
	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

const (
	entriesPrefix = "journal/entries/"
	byPanelPrefix = "journal/by-panel/"
	byKindPrefix  = "journal/by-kind/"
	byEventPrefix = "journal/by-event/"

	cleanupBatchSize = 1000
)

// Store keeps journal entries in BadgerDB. The primary key orders entries
// by time then sequence; the index keys hold copies of the entry so a
// filtered listing is a single prefix scan.
type Store struct {
	db     *database.DB
	logger logr.Logger
	seq    atomic.Uint64
}

func NewStore(db *database.DB, logger logr.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

func (s *Store) Record(transitions []stream.Transition) {
	if err := s.RecordBatch(transitions); err != nil {
		s.logger.V(1).Info("failed to record transitions",
			"error", err,
			"count", len(transitions))
	}
}

func (s *Store) RecordBatch(transitions []stream.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	batchItems := make(map[string][]byte, len(transitions)*4)
	for _, t := range transitions {
		entry := Entry{
			ID:    uuid.NewString(),
			Seq:   s.seq.Add(1),
			Kind:  t.Kind,
			Panel: t.Panel,
			At:    t.At,
			Event: t.Event,
		}
		if entry.At.IsZero() {
			entry.At = time.Now()
		}

		data, err := json.Marshal(entry)
		if err != nil {
			s.logger.Error(err, "failed to marshal journal entry", "eventID", t.Event.ID)
			continue
		}
		for _, key := range entryKeys(entry) {
			batchItems[key] = data
		}
	}

	if err := s.db.BatchSet(batchItems); err != nil {
		return fmt.Errorf("%w: failed to store journal batch: %w", apperrors.ErrJournal, err)
	}
	return nil
}

func (s *Store) ListEntries(filters Filters) ([]Entry, error) {
	var prefix string
	switch {
	case filters.Panel != "":
		prefix = byPanelPrefix + filters.Panel + "/"
	case filters.Kind != "":
		prefix = byKindPrefix + string(filters.Kind) + "/"
	default:
		prefix = entriesPrefix
	}

	entries, err := s.scan(prefix)
	if err != nil {
		return nil, err
	}

	filtered := entries[:0]
	for _, e := range entries {
		if filters.Panel != "" && e.Panel != filters.Panel {
			continue
		}
		if filters.Kind != "" && e.Kind != filters.Kind {
			continue
		}
		if !filters.Since.IsZero() && e.At.Before(filters.Since) {
			continue
		}
		if !filters.Until.IsZero() && e.At.After(filters.Until) {
			continue
		}
		filtered = append(filtered, e)
	}

	// Newest first.
	sort.SliceStable(filtered, func(i, j int) bool {
		return entryKeyOrder(filtered[j], filtered[i])
	})

	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []Entry{}, nil
	}
	filtered = filtered[offset:]

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (s *Store) GetByEvent(eventID string) ([]Entry, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id", apperrors.ErrMissingParameter)
	}
	entries, err := s.scan(byEventPrefix + eventID + "/")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no journal entries for event %s", apperrors.ErrNotFound, eventID)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entryKeyOrder(entries[i], entries[j])
	})
	return entries, nil
}

func (s *Store) CleanupOld(before time.Time) (int, error) {
	entries, err := s.scan(entriesPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list journal for cleanup: %w", err)
	}

	var old []Entry
	for _, e := range entries {
		if e.At.Before(before) {
			old = append(old, e)
		}
	}

	deleted := 0
	for i := 0; i < len(old); i += cleanupBatchSize {
		end := i + cleanupBatchSize
		if end > len(old) {
			end = len(old)
		}

		keys := make([]string, 0, (end-i)*4)
		for _, e := range old[i:end] {
			keys = append(keys, entryKeys(e)...)
		}
		if err := s.db.BatchDelete(keys); err != nil {
			return deleted, fmt.Errorf("%w: failed to delete journal batch: %w", apperrors.ErrJournal, err)
		}
		deleted += end - i
	}

	if deleted > 0 {
		s.logger.Info("Cleaned up journal", "deleted", deleted, "before", before)
	}
	return deleted, nil
}

func (s *Store) scan(prefix string) ([]Entry, error) {
	items, err := s.db.List(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list journal: %w", apperrors.ErrJournal, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var e Entry
		if err := json.Unmarshal(item.Value, &e); err != nil {
			s.logger.Error(err, "failed to unmarshal journal entry", "key", item.Key)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func entryKeys(e Entry) []string {
	suffix := fmt.Sprintf("%020d/%020d/%s", e.At.UnixNano(), e.Seq, e.ID)
	keys := []string{
		entriesPrefix + suffix,
		byPanelPrefix + e.Panel + "/" + suffix,
		byKindPrefix + string(e.Kind) + "/" + suffix,
	}
	if e.Event.ID != "" {
		keys = append(keys, byEventPrefix+e.Event.ID+"/"+suffix)
	}
	return keys
}

// entryKeyOrder reports whether a was recorded before b.
func entryKeyOrder(a, b Entry) bool {
	if !a.At.Equal(b.At) {
		return a.At.Before(b.At)
	}
	return a.Seq < b.Seq
}

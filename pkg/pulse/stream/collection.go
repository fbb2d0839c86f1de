package stream

import "sort"

// The functions in this file are pure transitions over a newest-first
// collection. None of them modify the slice they are given.

// Insert prepends e and evicts from the tail until the collection fits
// capacity. Evicted events are returned oldest first.
func Insert(events []Event, e Event, capacity int) (kept []Event, evicted []Event) {
	next := make([]Event, 0, len(events)+1)
	next = append(next, e)
	next = append(next, events...)
	return EvictOverCapacity(next, capacity)
}

// EvictOverCapacity drops the oldest events beyond capacity.
func EvictOverCapacity(events []Event, capacity int) (kept []Event, evicted []Event) {
	if capacity < 0 {
		capacity = 0
	}
	if len(events) <= capacity {
		return events, nil
	}

	kept = make([]Event, capacity)
	copy(kept, events[:capacity])

	tail := events[capacity:]
	evicted = make([]Event, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		evicted = append(evicted, tail[i])
	}
	return kept, evicted
}

// Dismiss removes the event with the given id. An absent id is not an
// error: the event may already have expired or been evicted.
func Dismiss(events []Event, id string) (kept []Event, removed bool) {
	idx := indexOf(events, id)
	if idx < 0 {
		return events, false
	}

	kept = make([]Event, 0, len(events)-1)
	kept = append(kept, events[:idx]...)
	kept = append(kept, events[idx+1:]...)
	return kept, true
}

// DismissAll empties the collection in one transition.
func DismissAll(events []Event) []Event {
	return []Event{}
}

// FilterBySeverity keeps events of the given severity, preserving order.
// An empty severity keeps everything.
func FilterBySeverity(events []Event, sev Severity) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if sev == "" || e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

// SortBySeverity orders events by descending severity rank under cfg,
// keeping newest-first order among equal ranks.
func SortBySeverity(events []Event, cfg Config) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return cfg.Rank(out[i].Severity) > cfg.Rank(out[j].Severity)
	})
	return out
}

func indexOf(events []Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

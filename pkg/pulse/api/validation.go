package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
	"github.com/garunski/pulse/pkg/pulse/journal"
	"github.com/garunski/pulse/pkg/pulse/panels"
	"github.com/garunski/pulse/pkg/pulse/stream"
)

// EventView selects and orders a panel's live events.
type EventView struct {
	Severity stream.Severity
	Sort     string
}

func ParseEventViewParams(queryParams map[string][]string, cfg stream.Config) (EventView, error) {
	view := EventView{Sort: sortByTime}

	if sev := getFirstQueryParam(queryParams, "severity"); sev != "" {
		if cfg.Rank(stream.Severity(sev)) < 0 {
			return view, fmt.Errorf("%w: severity %q is not produced by this panel (must be one of: %v)", apperrors.ErrInvalidParameter, sev, cfg.Severities)
		}
		view.Severity = stream.Severity(sev)
	}

	if sortStr := getFirstQueryParam(queryParams, "sort"); sortStr != "" {
		if sortStr != sortByTime && sortStr != sortBySeverity {
			return view, fmt.Errorf("%w: invalid sort: %s (must be one of: time, severity)", apperrors.ErrInvalidParameter, sortStr)
		}
		view.Sort = sortStr
	}

	return view, nil
}

// Apply returns the selected events without modifying the input.
func (v EventView) Apply(events []stream.Event, cfg stream.Config) []stream.Event {
	out := stream.FilterBySeverity(events, v.Severity)
	if v.Sort == sortBySeverity {
		out = stream.SortBySeverity(out, cfg)
	}
	return out
}

func ParseJournalQueryParams(r *http.Request) (journal.Filters, error) {
	return ParseJournalFilters(r.URL.Query())
}

func ParseJournalFilters(queryParams map[string][]string) (journal.Filters, error) {
	filters := journal.Filters{}

	if panel := getFirstQueryParam(queryParams, "panel"); panel != "" {
		if err := panels.ValidateName(panel); err != nil {
			return filters, apperrors.WrapInvalid(err, "invalid panel parameter")
		}
		filters.Panel = panel
	}

	if kindStr := getFirstQueryParam(queryParams, "kind"); kindStr != "" {
		kind := stream.TransitionKind(kindStr)
		switch kind {
		case stream.TransitionCreated, stream.TransitionDismissed, stream.TransitionExpired,
			stream.TransitionEvicted, stream.TransitionCleared:
		default:
			return filters, fmt.Errorf("%w: invalid kind: %s (must be one of: created, dismissed, expired, evicted, cleared)", apperrors.ErrInvalid, kindStr)
		}
		filters.Kind = kind
	}

	if sinceStr := getFirstQueryParam(queryParams, "since"); sinceStr != "" {
		t, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return filters, apperrors.WrapInvalid(err, "invalid since parameter format (use RFC3339)")
		}
		filters.Since = t
	}

	if untilStr := getFirstQueryParam(queryParams, "until"); untilStr != "" {
		t, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return filters, apperrors.WrapInvalid(err, "invalid until parameter format (use RFC3339)")
		}
		filters.Until = t
	}

	if limitStr := getFirstQueryParam(queryParams, "limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return filters, fmt.Errorf("%w: invalid limit parameter: must be a positive integer", apperrors.ErrInvalid)
		}
		if limit > journal.MaxLimit {
			return filters, fmt.Errorf("%w: limit cannot exceed %d", apperrors.ErrInvalid, journal.MaxLimit)
		}
		filters.Limit = limit
	} else {
		filters.Limit = journal.DefaultLimit
	}

	if offsetStr := getFirstQueryParam(queryParams, "offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("%w: invalid offset parameter: must be a non-negative integer", apperrors.ErrInvalid)
		}
		filters.Offset = offset
	}

	return filters, nil
}

func getFirstQueryParam(queryParams map[string][]string, key string) string {
	if values, ok := queryParams[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

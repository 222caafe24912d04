package enhance

import (
	"strings"
	"time"

	"github.com/recall-vault/recall/internal/domain/search/query"
)

// temporal keyword resolution is deterministic and runs locally on every
// query, so date filters survive language-service outages. All ranges are
// date-only in UTC; from == to means a single day.
type timeRangeFn func(now time.Time) (from, to time.Time)

var temporalKeywords = map[string]timeRangeFn{
	"today": func(now time.Time) (time.Time, time.Time) {
		d := dateOf(now)
		return d, d
	},
	"yesterday": func(now time.Time) (time.Time, time.Time) {
		d := dateOf(now.AddDate(0, 0, -1))
		return d, d
	},
	"this week": func(now time.Time) (time.Time, time.Time) {
		start := startOfWeek(now)
		return start, start.AddDate(0, 0, 6)
	},
	"last week": func(now time.Time) (time.Time, time.Time) {
		start := startOfWeek(now).AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, 6)
	},
	"this month": func(now time.Time) (time.Time, time.Time) {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	},
	"last month": func(now time.Time) (time.Time, time.Time) {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return start, start.AddDate(0, 1, -1)
	},
	// Portuguese / Spanish equivalents for the recurring cases.
	"hoje": func(now time.Time) (time.Time, time.Time) {
		d := dateOf(now)
		return d, d
	},
	"hoy": func(now time.Time) (time.Time, time.Time) {
		d := dateOf(now)
		return d, d
	},
	"ontem": func(now time.Time) (time.Time, time.Time) {
		d := dateOf(now.AddDate(0, 0, -1))
		return d, d
	},
	"ayer": func(now time.Time) (time.Time, time.Time) {
		d := dateOf(now.AddDate(0, 0, -1))
		return d, d
	},
}

// extractDateRange scans the query for the first temporal keyword and
// resolves it against now. Multi-word keywords are checked before single
// words so "last week" does not lose to "week".
func extractDateRange(text string, now time.Time) (query.SuggestedFilters, bool) {
	lower := strings.ToLower(text)

	for _, kw := range []string{"this week", "last week", "this month", "last month"} {
		if strings.Contains(lower, kw) {
			from, to := temporalKeywords[kw](now)
			return query.SuggestedFilters{DateFrom: &from, DateTo: &to}, true
		}
	}

	for _, tok := range strings.Fields(lower) {
		fn, ok := temporalKeywords[strings.Trim(tok, ".,!?")]
		if !ok {
			continue
		}
		from, to := fn(now)
		return query.SuggestedFilters{DateFrom: &from, DateTo: &to}, true
	}

	return query.SuggestedFilters{}, false
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	d := dateOf(t)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

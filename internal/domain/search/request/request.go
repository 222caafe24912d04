// Package request defines validated search request parameters.
package request

import (
	"fmt"

	"github.com/recall-vault/recall/internal/domain/search/filter"
)

// Search parameter limits.
const (
	MaxQueryLength = 1024
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Preferences are optional caller-supplied ranking preferences.
type Preferences struct {
	// CategoryWeights maps category -> weight centered at 1.0; values above
	// boost and below demote matching records.
	CategoryWeights map[string]float64
	PreferRecent    bool
	PreferUrgent    bool
}

// Request is a validated hybrid search request.
type Request struct {
	rawQuery    string
	owner       string
	filters     filter.Params
	limit       int
	offset      int
	preferences Preferences
	diversify   bool
}

// New validates and normalizes search parameters.
// Defaults: limit=20 (capped at 100), offset clamped to >= 0.
func New(
	rawQuery, owner string,
	filters filter.Params,
	limit, offset int,
	prefs Preferences,
	diversify bool,
) (Request, error) {
	if rawQuery == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(rawQuery) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if owner == "" {
		return Request{}, fmt.Errorf("owner scope is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return Request{
		rawQuery:    rawQuery,
		owner:       owner,
		filters:     filters,
		limit:       limit,
		offset:      offset,
		preferences: prefs,
		diversify:   diversify,
	}, nil
}

// RawQuery returns the unmodified query text.
func (r *Request) RawQuery() string { return r.rawQuery }

// Owner returns the user scope.
func (r *Request) Owner() string { return r.owner }

// Filters returns the structural filter parameters.
func (r *Request) Filters() filter.Params { return r.filters }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the pagination offset.
func (r *Request) Offset() int { return r.offset }

// Preferences returns the caller ranking preferences.
func (r *Request) Preferences() Preferences { return r.preferences }

// Diversify reports whether the diversity reranking pass is enabled.
func (r *Request) Diversify() bool { return r.diversify }

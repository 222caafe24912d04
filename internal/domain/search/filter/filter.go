// Package filter defines the immutable candidate filter shared by all
// retrieval strategies. Each retriever reads the same Spec concurrently, so
// the type is a value with unexported fields and copying accessors: nothing
// handed out can mutate the original.
package filter

import (
	"fmt"
	"time"

	"github.com/recall-vault/recall/internal/domain/record"
)

// Params holds the caller-supplied structural constraints.
type Params struct {
	ContentTypes  []string
	Categories    []string
	DateFrom      *time.Time
	DateTo        *time.Time
	MinConfidence float64
	UrgencyLevels []int
}

// Spec combines the user scope with structural constraints. All constraints
// are conjunctive; empty constraint groups match everything.
type Spec struct {
	owner         string
	contentTypes  []string
	categories    []string
	dateFrom      *time.Time
	dateTo        *time.Time
	minConfidence float64
	urgencyLevels []int
}

// New validates and builds a Spec for the given owner scope.
func New(owner string, p Params) (Spec, error) {
	if owner == "" {
		return Spec{}, fmt.Errorf("owner scope is required")
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return Spec{}, fmt.Errorf("min confidence must be between 0 and 1, got %v", p.MinConfidence)
	}
	for _, lvl := range p.UrgencyLevels {
		if lvl < record.MinUrgency || lvl > record.MaxUrgency {
			return Spec{}, fmt.Errorf("urgency level must be between %d and %d, got %d",
				record.MinUrgency, record.MaxUrgency, lvl)
		}
	}
	if p.DateFrom != nil && p.DateTo != nil && p.DateTo.Before(*p.DateFrom) {
		return Spec{}, fmt.Errorf("date range end %v before start %v", p.DateTo, p.DateFrom)
	}

	return Spec{
		owner:         owner,
		contentTypes:  cloneStrings(p.ContentTypes),
		categories:    cloneStrings(p.Categories),
		dateFrom:      cloneTime(p.DateFrom),
		dateTo:        cloneTime(p.DateTo),
		minConfidence: p.MinConfidence,
		urgencyLevels: append([]int(nil), p.UrgencyLevels...),
	}, nil
}

// Owner returns the owning user scope.
func (s Spec) Owner() string { return s.owner }

// ContentTypes returns the allowed content types (empty = all).
func (s Spec) ContentTypes() []string { return cloneStrings(s.contentTypes) }

// Categories returns the allowed categories (empty = all).
func (s Spec) Categories() []string { return cloneStrings(s.categories) }

// DateFrom returns the inclusive lower creation-time bound.
func (s Spec) DateFrom() *time.Time { return cloneTime(s.dateFrom) }

// DateTo returns the inclusive upper creation-time bound.
func (s Spec) DateTo() *time.Time { return cloneTime(s.dateTo) }

// MinConfidence returns the minimum record confidence (0 = no floor).
func (s Spec) MinConfidence() float64 { return s.minConfidence }

// UrgencyLevels returns the allowed urgency levels (empty = all).
func (s Spec) UrgencyLevels() []int { return append([]int(nil), s.urgencyLevels...) }

// WithDateRange returns a copy of the Spec with the date range replaced.
// Used when the query enhancer derives a temporal constraint.
func (s Spec) WithDateRange(from, to time.Time) Spec {
	out := s
	out.dateFrom = &from
	out.dateTo = &to
	return out
}

// Matches reports whether a record satisfies every constraint of the Spec.
func (s Spec) Matches(r *record.Record) bool {
	if r.Owner() != s.owner {
		return false
	}
	if len(s.contentTypes) > 0 && !containsString(s.contentTypes, r.ContentType()) {
		return false
	}
	if len(s.categories) > 0 && !containsString(s.categories, r.Category()) {
		return false
	}
	if s.dateFrom != nil && r.CreatedAt().Before(*s.dateFrom) {
		return false
	}
	if s.dateTo != nil && r.CreatedAt().After(endOfDay(*s.dateTo)) {
		return false
	}
	if s.minConfidence > 0 && r.Confidence() < s.minConfidence {
		return false
	}
	if len(s.urgencyLevels) > 0 && !containsInt(s.urgencyLevels, r.Urgency()) {
		return false
	}
	return true
}

// endOfDay widens a date-only upper bound to cover the whole day, so a range
// where from == to == today still matches records created today.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

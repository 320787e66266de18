// Package tripquery defines the filter and sort contract for listing trips.
//
// The same Query value drives both the SQL built by repo.TripRepo and the
// in-memory Apply used by the client-side trip store, so both sides must
// agree on every predicate and tie-break defined here.
package tripquery

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
)

// Sort selects the total order of a trip listing.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortTitleAsc  Sort = "title-asc"
	SortTitleDesc Sort = "title-desc"
)

// Valid reports whether s is one of the recognised sort values.
func (s Sort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortTitleAsc, SortTitleDesc:
		return true
	}
	return false
}

// orDefault maps the zero Sort to SortNewest.
func (s Sort) orDefault() Sort {
	if s == "" {
		return SortNewest
	}
	return s
}

// Compare orders a before b under s. Titles compare byte-wise.
// Date sorts tie-break on title, every sort then on CreatedAt ascending and
// finally on ID, so the order is total.
func (s Sort) Compare(a, b domain.Trip) int {
	var c int
	switch s.orDefault() {
	case SortOldest:
		c = a.StartDate.Compare(b.StartDate)
		if c == 0 {
			c = strings.Compare(a.Title, b.Title)
		}
	case SortTitleAsc:
		c = strings.Compare(a.Title, b.Title)
	case SortTitleDesc:
		c = strings.Compare(b.Title, a.Title)
	default:
		c = b.StartDate.Compare(a.StartDate)
		if c == 0 {
			c = strings.Compare(a.Title, b.Title)
		}
	}
	if c == 0 {
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = bytes.Compare(a.ID[:], b.ID[:])
	}
	return c
}

// Filter is one independent dimension of a trip query.
// The set of implementations is closed: Search, Year, Tags and FavoritesOnly.
type Filter interface {
	// Match reports whether t satisfies the filter.
	Match(t domain.Trip) bool
	isFilter()
}

// Search matches trips whose title or destination contains Term,
// ignoring case. Term is trimmed and then matched literally; a blank term
// matches every trip.
type Search struct {
	Term string
}

func (f Search) Match(t domain.Trip) bool {
	term := f.Folded()
	return strings.Contains(Fold(t.Title), term) ||
		strings.Contains(Fold(t.Destination), term)
}

// Folded returns the trimmed, case-folded term used for matching.
func (f Search) Folded() string {
	return Fold(strings.TrimSpace(f.Term))
}

// Fold is the case folding applied to both sides of a search. The trips
// table stores Fold(title) and Fold(destination) so SQL matching does not
// depend on the database collation.
func Fold(s string) string {
	return strings.ToLower(s)
}

// Year matches trips whose start date falls in the given UTC calendar year.
type Year struct {
	Year int
}

func (f Year) Match(t domain.Trip) bool {
	return t.StartDate.UTC().Year() == f.Year
}

// Bounds returns the half-open [from, to) date range covered by the year.
func (f Year) Bounds() (from, to time.Time) {
	from = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// Tags matches trips carrying at least one of Tags. Entries are normalized
// with domain.NormalizeTags before matching, so "a,b" asks for a or b.
type Tags struct {
	Tags []string
}

func (f Tags) Match(t domain.Trip) bool {
	for _, want := range domain.NormalizeTags(f.Tags) {
		if t.HasTag(want) {
			return true
		}
	}
	return false
}

// FavoritesOnly matches trips marked as favorite.
type FavoritesOnly struct{}

func (FavoritesOnly) Match(t domain.Trip) bool { return t.IsFavorite }

func (Search) isFilter()        {}
func (Year) isFilter()          {}
func (Tags) isFilter()          {}
func (FavoritesOnly) isFilter() {}

// Query is a validated listing request: every filter must match (AND) and
// the result is ordered by Sort. The zero Query lists everything newest first.
type Query struct {
	Filters []Filter
	Sort    Sort
}

// With returns a copy of q with f appended.
func (q Query) With(f Filter) Query {
	q.Filters = append(slices.Clip(q.Filters), f)
	return q
}

// SortOrder returns the effective sort, applying the default.
func (q Query) SortOrder() Sort {
	return q.Sort.orDefault()
}

// Match reports whether t satisfies every filter in q.
func (q Query) Match(t domain.Trip) bool {
	for _, f := range q.Filters {
		if !f.Match(t) {
			return false
		}
	}
	return true
}

// Apply filters and orders trips without touching the input slice.
// The result is never nil.
func Apply(trips []domain.Trip, q Query) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if q.Match(t) {
			out = append(out, t)
		}
	}
	sort := q.SortOrder()
	slices.SortFunc(out, sort.Compare)
	return out
}

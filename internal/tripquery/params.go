package tripquery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
)

// Query-string parameter names shared by the HTTP handler and the client.
const (
	ParamSearch     = "search"
	ParamYear       = "year"
	ParamTags       = "tags"
	ParamIsFavorite = "isFavorite"
	ParamSort       = "sort"
)

const (
	minYear = 1
	maxYear = 9999
)

// FromValues parses list parameters into a Query. Empty parameters are
// treated as absent. A non-numeric or out-of-range year and an unknown sort
// are rejected with a *domain.ParamError.
func FromValues(values url.Values) (Query, error) {
	values = withoutEmpty(values)

	var (
		search *string
		year   *int
		tags   *[]string
		sort   *string
	)
	if err := runtime.BindQueryParameter("form", true, false, ParamSearch, values, &search); err != nil {
		return Query{}, &domain.ParamError{Param: ParamSearch, Value: values.Get(ParamSearch), Reason: "must be a single value"}
	}
	if err := runtime.BindQueryParameter("form", true, false, ParamYear, values, &year); err != nil {
		return Query{}, &domain.ParamError{Param: ParamYear, Value: values.Get(ParamYear), Reason: "must be a number"}
	}
	if err := runtime.BindQueryParameter("form", false, false, ParamTags, values, &tags); err != nil {
		return Query{}, &domain.ParamError{Param: ParamTags, Value: values.Get(ParamTags), Reason: "must be a comma-separated list"}
	}
	if err := runtime.BindQueryParameter("form", true, false, ParamSort, values, &sort); err != nil {
		return Query{}, &domain.ParamError{Param: ParamSort, Value: values.Get(ParamSort), Reason: "must be a single value"}
	}

	var q Query
	if search != nil {
		if term := strings.TrimSpace(*search); term != "" {
			q = q.With(Search{Term: term})
		}
	}
	if year != nil {
		if *year < minYear || *year > maxYear {
			return Query{}, &domain.ParamError{Param: ParamYear, Value: strconv.Itoa(*year), Reason: "out of range"}
		}
		q = q.With(Year{Year: *year})
	}
	if tags != nil {
		if normalized := domain.NormalizeTags(*tags); len(normalized) > 0 {
			q = q.With(Tags{Tags: normalized})
		}
	}
	if values.Get(ParamIsFavorite) == "true" {
		q = q.With(FavoritesOnly{})
	}
	if sort != nil {
		s := Sort(*sort)
		if !s.Valid() {
			return Query{}, &domain.ParamError{Param: ParamSort, Value: *sort, Reason: "must be one of newest, oldest, title-asc, title-desc"}
		}
		q.Sort = s
	}
	return q, nil
}

// Values encodes q as list parameters. FromValues(q.Values()) selects and
// orders the same trips as q for any query with a valid year and sort.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, f := range q.Filters {
		switch f := f.(type) {
		case Search:
			v.Set(ParamSearch, f.Term)
		case Year:
			v.Set(ParamYear, strconv.Itoa(f.Year))
		case Tags:
			if tags := domain.NormalizeTags(f.Tags); len(tags) > 0 {
				v.Set(ParamTags, strings.Join(tags, ","))
			}
		case FavoritesOnly:
			v.Set(ParamIsFavorite, "true")
		}
	}
	if q.Sort != "" {
		v.Set(ParamSort, string(q.Sort))
	}
	return v
}

// withoutEmpty drops parameters whose values are all empty strings.
func withoutEmpty(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		for _, s := range vs {
			if s != "" {
				out[k] = vs
				break
			}
		}
	}
	return out
}

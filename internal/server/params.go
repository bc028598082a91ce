package server

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/KaramelBytes/exoscope/internal/explorer"
)

// FiltersApplied echoes the filters of a list request. Ranges are
// [min, max] with null for an absent bound, or null when neither was given.
type FiltersApplied struct {
	Search      *string    `json:"search"`
	Method      *string    `json:"method"`
	YearRange   []*float64 `json:"year_range"`
	RadiusRange []*float64 `json:"radius_range"`
	MassRange   []*float64 `json:"mass_range"`
	Disposition *string    `json:"disposition"`
}

// Sorting echoes the sort of a list request.
type Sorting struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// parsedQuery is the QueryState decoded from URL parameters together with
// the echo blocks returned to the client.
type parsedQuery struct {
	State   explorer.QueryState
	Applied FiltersApplied
	Sorting Sorting
}

func optString(v url.Values, key string) *string {
	if s := strings.TrimSpace(v.Get(key)); s != "" {
		return &s
	}
	return nil
}

func optFloat(v url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, badRequest(fmt.Sprintf("%s: %q is not a number", key, s))
	}
	return &f, nil
}

func optInt(v url.Values, key string, def int) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("%s: %q is not an integer", key, s))
	}
	return n, nil
}

// rangeParam builds a Range from <prefix>_min and <prefix>_max. An absent
// bound is open.
func rangeParam(v url.Values, prefix string) (*explorer.Range, []*float64, error) {
	lo, err := optFloat(v, prefix+"_min")
	if err != nil {
		return nil, nil, err
	}
	hi, err := optFloat(v, prefix+"_max")
	if err != nil {
		return nil, nil, err
	}
	if lo == nil && hi == nil {
		return nil, nil, nil
	}
	r := &explorer.Range{Min: -math.MaxFloat64, Max: math.MaxFloat64}
	if lo != nil {
		r.Min = *lo
	}
	if hi != nil {
		r.Max = *hi
	}
	return r, []*float64{lo, hi}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseQuery decodes the list and analysis filter parameters.
func parseQuery(v url.Values, pageSize int) (parsedQuery, error) {
	var pq parsedQuery
	q := &pq.State

	q.Search = strings.TrimSpace(v.Get("search"))
	pq.Applied.Search = optString(v, "search")

	if m := optString(v, "method"); m != nil {
		q.Filters.Methods = splitList(*m)
		pq.Applied.Method = m
	}
	if d := optString(v, "disposition"); d != nil {
		for _, name := range splitList(*d) {
			disp, ok := catalog.ParseDisposition(name)
			if !ok {
				return pq, badRequest(fmt.Sprintf("disposition: unknown value %q", name))
			}
			q.Filters.Dispositions = append(q.Filters.Dispositions, disp)
		}
		pq.Applied.Disposition = d
	}

	var err error
	if q.Filters.Year, pq.Applied.YearRange, err = rangeParam(v, "year"); err != nil {
		return pq, err
	}
	if q.Filters.Radius, pq.Applied.RadiusRange, err = rangeParam(v, "radius"); err != nil {
		return pq, err
	}
	if q.Filters.Mass, pq.Applied.MassRange, err = rangeParam(v, "mass"); err != nil {
		return pq, err
	}

	if q.Window.Size, err = optInt(v, "limit", pageSize); err != nil {
		return pq, err
	}
	if q.Window.Offset, err = optInt(v, "offset", 0); err != nil {
		return pq, err
	}
	if q.Window.Size <= 0 {
		q.Window.Size = pageSize
	}
	q.Window.Offset = max(q.Window.Offset, 0)

	pq.Sorting.SortBy = "pl_name"
	if s := optString(v, "sort_by"); s != nil {
		pq.Sorting.SortBy = *s
	}
	pq.Sorting.SortOrder = "asc"
	switch strings.ToLower(strings.TrimSpace(v.Get("sort_order"))) {
	case "", "asc":
	case "desc":
		pq.Sorting.SortOrder = "desc"
	default:
		return pq, badRequest(fmt.Sprintf("sort_order: %q must be asc or desc", v.Get("sort_order")))
	}
	q.Sort = explorer.Sort{Field: pq.Sorting.SortBy, Desc: pq.Sorting.SortOrder == "desc"}
	return pq, nil
}

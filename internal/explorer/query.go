package explorer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/KaramelBytes/exoscope/internal/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is used when a Window has no positive size.
const DefaultPageSize = 100

// ErrUnknownField is returned when a sort field is not in the schema.
var ErrUnknownField = errors.New("unknown field")

// Range is an inclusive numeric bound.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Filters holds set-membership and range constraints. Empty sets and nil
// ranges are inactive.
type Filters struct {
	Methods      []string              `json:"discovery_method,omitempty"`
	Dispositions []catalog.Disposition `json:"disposition,omitempty"`
	Year         *Range                `json:"year_range,omitempty"`
	Radius       *Range                `json:"radius_range,omitempty"`
	Mass         *Range                `json:"mass_range,omitempty"`
}

// DefaultFilters returns the explorer's initial filter panel: open sets and
// the standard year, radius and mass windows.
func DefaultFilters() Filters {
	return Filters{
		Year:   &Range{Min: 1992, Max: float64(time.Now().Year())},
		Radius: &Range{Min: 0, Max: 100},
		Mass:   &Range{Min: 0, Max: 10000},
	}
}

// Sort selects the ordering field. An empty Field keeps ingestion order.
type Sort struct {
	Field string `json:"sort_by,omitempty"`
	Desc  bool   `json:"desc,omitempty"`
}

// Window is the pagination request.
type Window struct {
	Size   int `json:"limit"`
	Offset int `json:"offset"`
}

func (w Window) normalized() Window {
	if w.Size <= 0 {
		w.Size = DefaultPageSize
	}
	if w.Offset < 0 {
		w.Offset = 0
	}
	return w
}

// QueryState is everything a derived view depends on besides the dataset.
type QueryState struct {
	Search  string  `json:"search,omitempty"`
	Filters Filters `json:"filters"`
	Sort    Sort    `json:"sorting"`
	Window  Window  `json:"window"`
}

// Page is one window of the filtered, sorted view.
type Page struct {
	Rows    []catalog.Planet `json:"data"`
	Total   int              `json:"total"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}

// Query evaluates q against rows. It does not modify rows and has no state:
// the same inputs always yield the same page.
func Query(rows []catalog.Planet, q QueryState) (Page, error) {
	filtered, err := Filter(rows, q)
	if err != nil {
		return Page{}, err
	}
	return Paginate(filtered, q.Window), nil
}

// Filter runs search, set filters, range filters and the sort, returning a
// new slice. rows is left untouched.
func Filter(rows []catalog.Planet, q QueryState) ([]catalog.Planet, error) {
	var field *catalog.Field
	if name := strings.TrimSpace(q.Sort.Field); name != "" {
		f, ok := catalog.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("sort by %q: %w", name, ErrUnknownField)
		}
		field = f
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]catalog.Planet, 0, len(rows))
	for i := range rows {
		p := &rows[i]
		if needle != "" && !strings.Contains(strings.ToLower(p.SearchText()), needle) {
			continue
		}
		if !Matches(p, q.Filters) {
			continue
		}
		out = append(out, *p)
	}
	if field != nil {
		sortStable(out, field, q.Sort.Desc)
	}
	return out, nil
}

// Matches reports whether p satisfies every active set and range constraint.
// A null value passes a range constraint.
func Matches(p *catalog.Planet, f Filters) bool {
	if len(f.Methods) > 0 {
		if !p.DiscoveryMethod.Valid || p.DiscoveryMethod.Value == "" || !slices.Contains(f.Methods, p.DiscoveryMethod.Value) {
			return false
		}
	}
	if len(f.Dispositions) > 0 && !slices.Contains(f.Dispositions, p.Disposition()) {
		return false
	}
	return inRange(p.DiscYear, f.Year) && inRange(p.RadE, f.Radius) && inRange(p.MassE, f.Mass)
}

func inRange(v catalog.Num, r *Range) bool {
	if r == nil || !v.Valid {
		return true
	}
	return r.Contains(v.Value)
}

// Paginate slices [Offset, Offset+Size) out of rows.
func Paginate(rows []catalog.Planet, w Window) Page {
	w = w.normalized()
	total := len(rows)
	start := min(w.Offset, total)
	// written as differences so huge sizes and offsets cannot overflow
	end := start + min(w.Size, total-start)
	page := make([]catalog.Planet, end-start)
	copy(page, rows[start:end])
	return Page{
		Rows:    page,
		Total:   total,
		Offset:  w.Offset,
		Limit:   w.Size,
		HasMore: w.Offset < total && w.Size < total-w.Offset,
	}
}

// sortStable orders rows by field. Null values go last in either direction
// and equal keys keep their ingestion order.
func sortStable(rows []catalog.Planet, field *catalog.Field, desc bool) {
	sign := 1
	if desc {
		sign = -1
	}
	if field.Kind == catalog.Numeric {
		slices.SortStableFunc(rows, func(a, b catalog.Planet) int {
			x, y := field.Num(&a), field.Num(&b)
			if c, done := nullsLast(x.Valid, y.Valid); done {
				return c
			}
			return sign * signOf(x.Value-y.Value)
		})
		return
	}
	col := collate.New(language.English)
	slices.SortStableFunc(rows, func(a, b catalog.Planet) int {
		x, y := field.Text(&a), field.Text(&b)
		if c, done := nullsLast(x.Valid, y.Valid); done {
			return c
		}
		return sign * col.CompareString(x.Value, y.Value)
	})
}

func nullsLast(av, bv bool) (int, bool) {
	switch {
	case av && bv:
		return 0, false
	case av:
		return -1, true
	case bv:
		return 1, true
	}
	return 0, true
}

func signOf(d float64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

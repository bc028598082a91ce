package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/exoscope/internal/catalog"
)

// DefaultScatterCap bounds the number of points Scatter returns.
const DefaultScatterCap = 4000

// MinPairs is the smallest sample a correlation is reported for.
const MinPairs = 3

// ErrNotNumeric is returned when a column selector names a text or unknown field.
var ErrNotNumeric = errors.New("not a numeric column")

// DefaultColumns returns the parameters shown in the correlation heatmap.
func DefaultColumns() []string {
	return []string{
		"pl_rade", "pl_masse", "pl_orbper", "pl_orbsmax", "pl_orbeccen",
		"pl_orbincl", "st_rad", "st_mass", "st_teff", "sy_dist",
	}
}

// Cell is one correlation coefficient. Valid is false when the sample was
// too small or one side had no variance.
type Cell struct {
	R     float64
	N     int
	Valid bool
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.R)
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Cell{}
		return nil
	}
	var r float64
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*c = Cell{R: r, Valid: true}
	return nil
}

// String formats the coefficient to three decimals, or "n/a".
func (c Cell) String() string {
	if !c.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(c.R, 'f', 3, 64)
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string `json:"columns"`
	Values  [][]Cell `json:"values"` // row-major, Values[i][j]
	Rows    int      `json:"rows"`
}

// At returns the cell for columns a and b.
func (m *CorrMatrix) At(a, b string) (Cell, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return Cell{}, false
	}
	return m.Values[i][j], true
}

func (m *CorrMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// pairAcc accumulates centred co-moments for one column pair (Welford).
// A constant side leaves its second moment at exactly zero.
type pairAcc struct {
	n     float64
	meanX float64
	meanY float64
	m2X   float64
	m2Y   float64
	coXY  float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	dx := x - pa.meanX
	dy := y - pa.meanY
	pa.meanX += dx / pa.n
	pa.meanY += dy / pa.n
	pa.m2X += dx * (x - pa.meanX)
	pa.m2Y += dy * (y - pa.meanY)
	pa.coXY += dx * (y - pa.meanY)
}

// zeroVariance reports whether a second moment is indistinguishable from
// rounding noise relative to the mean.
func zeroVariance(m2, mean, n float64) bool {
	return m2 <= 0 || m2 <= 1e-24*n*mean*mean
}

func (pa *pairAcc) cell() Cell {
	c := Cell{N: int(pa.n)}
	if c.N < MinPairs {
		return c
	}
	if zeroVariance(pa.m2X, pa.meanX, pa.n) || zeroVariance(pa.m2Y, pa.meanY, pa.n) {
		return c
	}
	denom := math.Sqrt(pa.m2X * pa.m2Y)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return c
	}
	r := pa.coXY / denom
	if math.IsNaN(r) {
		return c
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	c.R, c.Valid = r, true
	return c
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Pearson correlates xs and ys over the index positions where both are finite.
// Extra elements of the longer slice are ignored.
func Pearson(xs, ys []float64) Cell {
	var pa pairAcc
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if finite(xs[i]) && finite(ys[i]) {
			pa.add(xs[i], ys[i])
		}
	}
	return pa.cell()
}

func numericFields(cols []string) ([]*catalog.Field, error) {
	fields := make([]*catalog.Field, len(cols))
	for i, name := range cols {
		f, ok := catalog.Lookup(name)
		if !ok || f.Kind != catalog.Numeric {
			return nil, fmt.Errorf("column %q: %w", name, ErrNotNumeric)
		}
		fields[i] = f
	}
	return fields, nil
}

// Correlate builds the K×K matrix for cols over rows in a single pass. A nil
// or empty cols uses DefaultColumns.
func Correlate(rows []catalog.Planet, cols []string) (*CorrMatrix, error) {
	if len(cols) == 0 {
		cols = DefaultColumns()
	}
	fields, err := numericFields(cols)
	if err != nil {
		return nil, err
	}
	k := len(fields)
	// upper triangle including the diagonal, key = i*k + j with i <= j
	acc := make([]pairAcc, k*k)
	vals := make([]catalog.Num, k)
	for r := range rows {
		for i, f := range fields {
			vals[i] = f.Num(&rows[r])
		}
		for i := 0; i < k; i++ {
			if !vals[i].Finite() {
				continue
			}
			x := vals[i].Value
			for j := i; j < k; j++ {
				if vals[j].Finite() {
					acc[i*k+j].add(x, vals[j].Value)
				}
			}
		}
	}

	mat := make([][]Cell, k)
	for i := range mat {
		mat[i] = make([]Cell, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			c := acc[i*k+j].cell()
			if i == j && c.Valid {
				c.R = 1
			}
			mat[i][j] = c
			mat[j][i] = c
		}
	}
	out := make([]string, k)
	copy(out, cols)
	return &CorrMatrix{Columns: out, Values: mat, Rows: len(rows)}, nil
}

// Point is one scatter sample.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name,omitempty"`
}

// Scatter returns the finite (x, y) pairs of rows in order. When there are more
// than limit pairs every stride-th pair is kept, stride = ceil(n/limit), so
// the same input always yields the same sample. limit <= 0 uses
// DefaultScatterCap.
func Scatter(rows []catalog.Planet, x, y string, limit int) ([]Point, error) {
	fields, err := numericFields([]string{x, y})
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultScatterCap
	}
	pts := make([]Point, 0, min(len(rows), limit))
	all := make([]Point, 0, len(rows))
	for i := range rows {
		xv, yv := fields[0].Num(&rows[i]), fields[1].Num(&rows[i])
		if xv.Finite() && yv.Finite() {
			all = append(all, Point{X: xv.Value, Y: yv.Value, Name: rows[i].Name})
		}
	}
	if len(all) <= limit {
		return append(pts, all...), nil
	}
	stride := (len(all) + limit - 1) / limit
	for i := 0; i < len(all); i += stride {
		pts = append(pts, all[i])
	}
	return pts, nil
}

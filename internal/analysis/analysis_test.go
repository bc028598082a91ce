package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `pl_name,discoverymethod,disc_year,pl_rade,pl_masse,pl_orbper,st_teff
a,Transit,2010,1,2,10,5000
b,Transit,2010,2,4,,5100
c,Radial Velocity,2012,3,6,30,
d,Microlensing,2015,4,8,40,5300
e,,2015,25,,50,5400
`

func planets(t *testing.T, text string) []catalog.Planet {
	t.Helper()
	ps, _ := catalog.Parse(text)
	return ps
}

func TestPearson(t *testing.T) {
	c := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.True(t, c.Valid)
	assert.InDelta(t, 1.0, c.R, 1e-12)
	assert.Equal(t, 4, c.N)

	c = Pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.True(t, c.Valid)
	assert.InDelta(t, -1.0, c.R, 1e-12)

	// two valid pairs is not enough
	c = Pearson([]float64{1, 2, math.NaN()}, []float64{1, 2, 3})
	assert.False(t, c.Valid)
	assert.Equal(t, 2, c.N)

	// zero variance
	c = Pearson([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4})
	assert.False(t, c.Valid)

	c = Pearson([]float64{1, math.Inf(1), 2, 3, 4}, []float64{1, 9, 2, 3, 5})
	require.True(t, c.Valid)
	assert.Equal(t, 4, c.N)
}

func TestPearson_Bounded(t *testing.T) {
	xs := make([]float64, 500)
	ys := make([]float64, 500)
	for i := range xs {
		xs[i] = float64(i) * 1.7
		ys[i] = 3*xs[i] + 7
	}
	c := Pearson(xs, ys)
	require.True(t, c.Valid)
	assert.LessOrEqual(t, c.R, 1.0)
	assert.GreaterOrEqual(t, c.R, -1.0)
}

func TestCorrelate(t *testing.T) {
	ps := planets(t, fixture)
	m, err := Correlate(ps, []string{"pl_rade", "pl_masse", "pl_orbper", "st_teff"})
	require.NoError(t, err)
	require.Len(t, m.Values, 4)

	for i := range m.Columns {
		for j := range m.Columns {
			assert.Equal(t, m.Values[i][j], m.Values[j][i], "symmetry %d,%d", i, j)
		}
		assert.True(t, m.Values[i][i].Valid)
		assert.Equal(t, 1.0, m.Values[i][i].R)
	}

	c, ok := m.At("pl_rade", "pl_masse")
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.R, 1e-12)
	assert.Equal(t, 4, c.N)

	// pl_masse and pl_orbper share rows a, c, d only
	c, _ = m.At("pl_masse", "pl_orbper")
	assert.Equal(t, 3, c.N)
	assert.True(t, c.Valid)

	// st_teff and pl_orbper share a, d, e
	c, _ = m.At("st_teff", "pl_orbper")
	assert.Equal(t, 3, c.N)

	_, ok = m.At("pl_rade", "nope")
	assert.False(t, ok)
}

func TestCorrelate_Undefined(t *testing.T) {
	ps := planets(t, "pl_name,pl_rade,pl_masse\na,1,\nb,2,5\nc,3,\nd,4,6\n")
	m, err := Correlate(ps, []string{"pl_rade", "pl_masse"})
	require.NoError(t, err)

	// only two masses: undefined, not zero
	assert.False(t, m.Values[0][1].Valid)
	assert.False(t, m.Values[1][1].Valid)
	assert.True(t, m.Values[0][0].Valid)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"values":[[1,null],[null,null]]`)
	assert.Contains(t, m.Markdown(), "n/a")
}

func TestCorrelate_ConstantColumn(t *testing.T) {
	for _, v := range []float64{0.1, 0.7, 1.1, 2.3, 3.3, 5.97, 317.8, 1.32, 4.6, 11.2} {
		var sb strings.Builder
		sb.WriteString("pl_name,pl_rade,pl_masse\n")
		for i := 0; i < 7; i++ {
			fmt.Fprintf(&sb, "p%d,%v,%d\n", i, v, i)
		}
		m, err := Correlate(planets(t, sb.String()), []string{"pl_rade", "pl_masse"})
		require.NoError(t, err)

		assert.False(t, m.Values[0][0].Valid, "diagonal of constant %v", v)
		assert.False(t, m.Values[0][1].Valid, "constant %v against masses", v)
		assert.False(t, m.Values[1][0].Valid, "constant %v against masses", v)
		require.True(t, m.Values[1][1].Valid)
		assert.Equal(t, 1.0, m.Values[1][1].R)
	}

	c := Pearson([]float64{0.1, 0.1, 0.1, 0.1, 0.1}, []float64{1, 2, 3, 4, 5})
	assert.False(t, c.Valid)
	assert.Equal(t, 5, c.N)
}

func TestCorrelate_Columns(t *testing.T) {
	m, err := Correlate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultColumns(), m.Columns)
	assert.Len(t, m.Columns, 10)

	_, err = Correlate(nil, []string{"pl_rade", "hostname"})
	assert.ErrorIs(t, err, ErrNotNumeric)
	_, err = Correlate(nil, []string{"bogus"})
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestCell_JSON(t *testing.T) {
	var c Cell
	require.NoError(t, json.Unmarshal([]byte("0.5"), &c))
	assert.Equal(t, Cell{R: 0.5, Valid: true}, c)
	require.NoError(t, json.Unmarshal([]byte("null"), &c))
	assert.False(t, c.Valid)
	assert.Equal(t, "0.500", Cell{R: 0.5, Valid: true}.String())
}

func bigCatalog(n int) string {
	var sb strings.Builder
	sb.WriteString("pl_name,pl_rade,pl_masse\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "p%d,%d,%d\n", i, i, 2*i)
	}
	return sb.String()
}

func TestScatter_Sampling(t *testing.T) {
	ps := planets(t, bigCatalog(10000))

	pts, err := Scatter(ps, "pl_rade", "pl_masse", 0)
	require.NoError(t, err)
	// stride = ceil(10000/4000) = 3
	assert.Len(t, pts, 3334)
	assert.Equal(t, Point{X: 0, Y: 0, Name: "p0"}, pts[0])
	assert.Equal(t, 3.0, pts[1].X)
	assert.LessOrEqual(t, len(pts), DefaultScatterCap)

	again, err := Scatter(ps, "pl_rade", "pl_masse", 0)
	require.NoError(t, err)
	assert.Equal(t, pts, again)
}

func TestScatter_FiltersNulls(t *testing.T) {
	ps := planets(t, fixture)
	pts, err := Scatter(ps, "pl_rade", "pl_orbper", 100)
	require.NoError(t, err)
	require.Len(t, pts, 4)
	assert.Equal(t, []string{"a", "c", "d", "e"}, []string{pts[0].Name, pts[1].Name, pts[2].Name, pts[3].Name})

	pts, err = Scatter(ps, "pl_rade", "pl_orbper", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, []string{pts[0].Name, pts[1].Name})

	_, err = Scatter(ps, "pl_name", "pl_rade", 0)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestSummarize(t *testing.T) {
	ps := planets(t, fixture)
	s, err := Summarize(ps, []string{"pl_rade", "st_teff"})
	require.NoError(t, err)
	require.Len(t, s, 2)

	r := s[0]
	assert.Equal(t, "pl_rade", r.Name)
	assert.Equal(t, 5, r.Count)
	assert.Equal(t, 0, r.Missing)
	assert.Equal(t, 1.0, r.Min)
	assert.Equal(t, 25.0, r.Max)
	assert.InDelta(t, 7.0, r.Mean, 1e-12)
	assert.Equal(t, 3.0, r.Median)
	// too few values for outlier scoring
	assert.Zero(t, r.OutlierThreshold)

	assert.Equal(t, 4, s[1].Count)
	assert.Equal(t, 1, s[1].Missing)
}

func TestSummarize_Outliers(t *testing.T) {
	ps := planets(t, "pl_name,pl_rade\na,1\nb,1.1\nc,0.9\nd,1.05\ne,0.95\nf,1.02\ng,0.98\nh,50\n")
	s, err := Summarize(ps, []string{"pl_rade"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOutlierThreshold, s[0].OutlierThreshold)
	assert.Equal(t, 1, s[0].OutliersCount)
	assert.Greater(t, s[0].OutliersMaxAbsZ, DefaultOutlierThreshold)
}

func TestHistogram(t *testing.T) {
	ps := planets(t, fixture)
	bins, err := Histogram(ps, "pl_rade", RadiusBins())
	require.NoError(t, err)
	require.Len(t, bins, 21)
	assert.Equal(t, "0-1", bins[0].Label)
	assert.Equal(t, 0, bins[0].Count)
	assert.Equal(t, 1, bins[1].Count) // 1 falls in [1,2)
	assert.Equal(t, "20+", bins[20].Label)
	assert.Equal(t, 1, bins[20].Count)

	mass, err := Histogram(ps, "pl_masse", MassBins())
	require.NoError(t, err)
	assert.Equal(t, 4, mass[1].Count) // 2, 4, 6, 8
	assert.Zero(t, mass[0].Count+mass[2].Count)

	_, err = Histogram(ps, "hostname", MassBins())
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestCountBy(t *testing.T) {
	got := CountBy(planets(t, fixture), 0)
	assert.Equal(t, CategoryCount{Value: "Transit", Count: 2}, got[0])
	assert.Len(t, got, 4)
	assert.Contains(t, got, CategoryCount{Value: "Unknown", Count: 1})
	assert.Len(t, CountBy(planets(t, fixture), 2), 2)
}

func TestTimeline(t *testing.T) {
	tl := Timeline(planets(t, fixture))
	require.Len(t, tl, 3)
	assert.Equal(t, YearCount{Year: 2010, Transit: 2, Total: 2, Cumulative: 2}, tl[0])
	assert.Equal(t, YearCount{Year: 2012, RadialVelocity: 1, Total: 1, Cumulative: 3}, tl[1])
	assert.Equal(t, YearCount{Year: 2015, Microlensing: 1, Other: 1, Total: 2, Cumulative: 5}, tl[2])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Rocky, Classify(1))
	assert.Equal(t, Rocky, Classify(2))
	assert.Equal(t, IceGiant, Classify(4))
	assert.Equal(t, GasGiant, Classify(11))
}

func TestReportMarkdown(t *testing.T) {
	ps := planets(t, fixture)
	opt := DefaultOptions()
	opt.Columns = []string{"pl_rade", "pl_masse", "pl_orbper"}
	rep, err := BuildReport("fixture.csv", ps, opt)
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Rows)
	require.NotEmpty(t, rep.TopPairs)
	assert.InDelta(t, 1.0, math.Abs(rep.TopPairs[0].R), 1e-9)
	assert.Equal(t, 2, rep.Classes[Rocky])
	assert.Equal(t, 2, rep.Classes[IceGiant])
	assert.Equal(t, 1, rep.Classes[GasGiant])

	md := rep.Markdown()
	for _, want := range []string{
		"[CATALOG SUMMARY]",
		"Source: fixture.csv",
		"Planets: 5",
		"[PARAMETERS]",
		"pl_rade [Radius (R⊕)]: non-null 5, missing 0.0%",
		"[DISCOVERY METHODS]",
		"- Transit: 2",
		"[RADIUS DISTRIBUTION (Earth radii)]",
		"- 20+: 1",
		"[DISCOVERY TIMELINE]",
		"| 2015 | 0 | 0 | 1 | 0 | 1 | 5 |",
		"[CORRELATIONS]",
		"- pl_rade ~ pl_masse: r=1.000 (n=4)",
	} {
		assert.Contains(t, md, want)
	}
}

func TestTopPairs(t *testing.T) {
	assert.Nil(t, TopPairs(nil, 3))
	m := &CorrMatrix{
		Columns: []string{"a", "b", "c"},
		Values: [][]Cell{
			{{R: 1, Valid: true}, {R: 0.2, Valid: true}, {R: -0.9, Valid: true}},
			{{R: 0.2, Valid: true}, {R: 1, Valid: true}, {}},
			{{R: -0.9, Valid: true}, {}, {R: 1, Valid: true}},
		},
	}
	got := TopPairs(m, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].B)
	assert.Equal(t, -0.9, got[0].R)
}

package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/exoscope/internal/catalog"
)

// DefaultOutlierThreshold is the robust |z| above which a value counts as an outlier.
const DefaultOutlierThreshold = 3.5

// ColumnSummary captures statistics for one numeric field.
type ColumnSummary struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Median  float64 `json:"median"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z"`
	OutlierThreshold float64 `json:"outlier_threshold"`
}

// Summarize computes per-column statistics over rows. A nil cols uses
// DefaultColumns.
func Summarize(rows []catalog.Planet, cols []string) ([]ColumnSummary, error) {
	if len(cols) == 0 {
		cols = DefaultColumns()
	}
	fields, err := numericFields(cols)
	if err != nil {
		return nil, err
	}
	out := make([]ColumnSummary, 0, len(fields))
	for _, f := range fields {
		s := ColumnSummary{Name: f.Name, Label: f.Label}
		var (
			mean, m2 float64
			vals     []float64
		)
		min, max := math.Inf(1), math.Inf(-1)
		for i := range rows {
			v := f.Num(&rows[i])
			if !v.Finite() {
				s.Missing++
				continue
			}
			x := v.Value
			s.Count++
			if x < min {
				min = x
			}
			if x > max {
				max = x
			}
			// Welford update
			delta := x - mean
			mean += delta / float64(s.Count)
			m2 += delta * (x - mean)
			vals = append(vals, x)
		}
		if s.Count > 0 {
			s.Min, s.Max, s.Mean = min, max, mean
		}
		if s.Count > 1 {
			s.Std = math.Sqrt(m2 / float64(s.Count-1))
		}
		if len(vals) > 0 {
			median, mad := medianMAD(vals)
			s.Median = median
			if len(vals) >= 8 {
				s.OutlierThreshold = DefaultOutlierThreshold
				if mad > 0 {
					for _, v := range vals {
						az := math.Abs(0.6745 * (v - median) / mad)
						if az > s.OutlierThreshold {
							s.OutliersCount++
						}
						if az > s.OutliersMaxAbsZ {
							s.OutliersMaxAbsZ = az
						}
					}
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// Bin is one histogram bucket covering [Min, Max).
type Bin struct {
	Label string  `json:"bin"`
	Min   float64 `json:"-"`
	Max   float64 `json:"-"`
	Count int     `json:"count"`
}

// RadiusBins are unit-width Earth-radius buckets from 0 to 20 plus an open "20+".
func RadiusBins() []Bin {
	bins := make([]Bin, 0, 21)
	for i := 0; i < 20; i++ {
		bins = append(bins, Bin{Label: strconv.Itoa(i) + "-" + strconv.Itoa(i+1), Min: float64(i), Max: float64(i + 1)})
	}
	return append(bins, Bin{Label: "20+", Min: 20, Max: math.Inf(1)})
}

// MassBins are decade-wide Earth-mass buckets.
func MassBins() []Bin {
	return []Bin{
		{Label: "0-1", Min: 0, Max: 1},
		{Label: "1-10", Min: 1, Max: 10},
		{Label: "10-100", Min: 10, Max: 100},
		{Label: "100-1000", Min: 100, Max: 1000},
		{Label: "1000+", Min: 1000, Max: math.Inf(1)},
	}
}

// Histogram counts finite values of field into a copy of bins. Values outside
// every bin are skipped.
func Histogram(rows []catalog.Planet, field string, bins []Bin) ([]Bin, error) {
	fields, err := numericFields([]string{field})
	if err != nil {
		return nil, err
	}
	f := fields[0]
	out := make([]Bin, len(bins))
	copy(out, bins)
	for i := range out {
		out[i].Count = 0
	}
	for i := range rows {
		v := f.Num(&rows[i])
		if !v.Finite() {
			continue
		}
		for b := range out {
			if v.Value >= out[b].Min && v.Value < out[b].Max {
				out[b].Count++
				break
			}
		}
	}
	return out, nil
}

// CategoryCount is one value of a categorical field with its frequency.
type CategoryCount struct {
	Value string `json:"name"`
	Count int    `json:"value"`
}

// CountBy tallies discovery methods, most frequent first. Missing methods
// count as "Unknown". limit <= 0 keeps every method.
func CountBy(rows []catalog.Planet, limit int) []CategoryCount {
	counts := map[string]int{}
	for i := range rows {
		key := rows[i].DiscoveryMethod.Value
		if key == "" {
			key = "Unknown"
		}
		counts[key]++
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if limit > 0 && len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// YearCount is one year of the discovery timeline.
type YearCount struct {
	Year           int `json:"year"`
	Transit        int `json:"transit"`
	RadialVelocity int `json:"radial_velocity"`
	Microlensing   int `json:"microlensing"`
	DirectImaging  int `json:"direct_imaging"`
	Other          int `json:"other"`
	Total          int `json:"total"`
	Cumulative     int `json:"cumulative"`
}

// Timeline groups discoveries by year in ascending order with a running total.
// Records without a discovery year are skipped.
func Timeline(rows []catalog.Planet) []YearCount {
	byYear := map[int]*YearCount{}
	for i := range rows {
		p := &rows[i]
		if !p.DiscYear.Finite() {
			continue
		}
		y := int(p.DiscYear.Value)
		yc := byYear[y]
		if yc == nil {
			yc = &YearCount{Year: y}
			byYear[y] = yc
		}
		method := strings.ToLower(p.DiscoveryMethod.Value)
		switch {
		case strings.Contains(method, "transit"):
			yc.Transit++
		case strings.Contains(method, "radial"):
			yc.RadialVelocity++
		case strings.Contains(method, "micro"):
			yc.Microlensing++
		case strings.Contains(method, "imaging"):
			yc.DirectImaging++
		default:
			yc.Other++
		}
		yc.Total++
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]YearCount, 0, len(years))
	cumulative := 0
	for _, y := range years {
		yc := *byYear[y]
		cumulative += yc.Total
		yc.Cumulative = cumulative
		out = append(out, yc)
	}
	return out
}

// Class is a coarse size class derived from planet radius.
type Class string

const (
	Rocky    Class = "Rocky"
	IceGiant Class = "Ice Giant"
	GasGiant Class = "Gas Giant"
)

// Classify buckets a radius in Earth radii: above 8 is a gas giant, above 2
// an ice giant, anything else rocky.
func Classify(radius float64) Class {
	switch {
	case radius > 8:
		return GasGiant
	case radius > 2:
		return IceGiant
	}
	return Rocky
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
	N int     `json:"n"`
}

// TopPairs lists the off-diagonal defined cells of m by descending |r|.
// limit <= 0 keeps every pair.
func TopPairs(m *CorrMatrix, limit int) []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := m.Values[i][j]
			if !c.Valid {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: c.R, N: c.N})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

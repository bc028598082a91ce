package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/exoscope/internal/catalog"
)

// Report is a markdown-friendly overview of a catalog view.
type Report struct {
	Name     string          `json:"name"`
	Rows     int             `json:"rows"`
	Cols     []ColumnSummary `json:"columns"`
	Radius   []Bin           `json:"radius_distribution"`
	Mass     []Bin           `json:"mass_distribution"`
	Methods  []CategoryCount `json:"discovery_methods"`
	Timeline []YearCount     `json:"timeline"`
	Corr     *CorrMatrix     `json:"correlations"`
	TopPairs []PairCorr      `json:"top_pairs"`
	Classes  map[Class]int   `json:"classes"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Options controls which sections BuildReport fills.
type Options struct {
	Columns    []string
	MaxMethods int
	MaxPairs   int
}

// DefaultOptions returns the report layout used by the stats command.
func DefaultOptions() Options {
	return Options{Columns: DefaultColumns(), MaxMethods: 8, MaxPairs: 10}
}

// BuildReport computes every section over rows.
func BuildReport(name string, rows []catalog.Planet, opt Options) (*Report, error) {
	if len(opt.Columns) == 0 {
		opt.Columns = DefaultColumns()
	}
	cols, err := Summarize(rows, opt.Columns)
	if err != nil {
		return nil, err
	}
	corr, err := Correlate(rows, opt.Columns)
	if err != nil {
		return nil, err
	}
	radius, err := Histogram(rows, "pl_rade", RadiusBins())
	if err != nil {
		return nil, err
	}
	mass, err := Histogram(rows, "pl_masse", MassBins())
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Name:     name,
		Rows:     len(rows),
		Cols:     cols,
		Radius:   radius,
		Mass:     mass,
		Methods:  CountBy(rows, opt.MaxMethods),
		Timeline: Timeline(rows),
		Corr:     corr,
		TopPairs: TopPairs(corr, opt.MaxPairs),
		Classes:  map[Class]int{},
	}
	for i := range rows {
		if r := rows[i].RadE; r.Finite() {
			rep.Classes[Classify(r.Value)]++
		}
	}
	for _, c := range cols {
		if c.Count < MinPairs {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s has only %d values; correlations involving it are undefined", c.Name, c.Count))
		}
	}
	return rep, nil
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[CATALOG SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Planets: %d\n", r.Rows))
	if len(r.Classes) > 0 {
		b.WriteString(fmt.Sprintf("Classes: %s %d, %s %d, %s %d\n",
			Rocky, r.Classes[Rocky], IceGiant, r.Classes[IceGiant], GasGiant, r.Classes[GasGiant]))
	}

	if len(r.Cols) > 0 {
		b.WriteString("\n[PARAMETERS]\n")
		for _, c := range r.Cols {
			total := c.Count + c.Missing
			missPct := 0.0
			if total > 0 {
				missPct = float64(c.Missing) * 100.0 / float64(total)
			}
			b.WriteString(fmt.Sprintf("- %s: non-null %d, missing %.1f%%", label(c), c.Count, missPct))
			if c.Count > 0 {
				b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std))
			}
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
			b.WriteString("\n")
		}
	}

	if len(r.Methods) > 0 {
		b.WriteString("\n[DISCOVERY METHODS]\n")
		for _, m := range r.Methods {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(m.Value), m.Count))
		}
	}

	writeBins(&b, "[RADIUS DISTRIBUTION (Earth radii)]", r.Radius)
	writeBins(&b, "[MASS DISTRIBUTION (Earth masses)]", r.Mass)

	if len(r.Timeline) > 0 {
		b.WriteString("\n[DISCOVERY TIMELINE]\n")
		b.WriteString("| Year | Transit | Radial Velocity | Microlensing | Imaging | Other | Cumulative |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, y := range r.Timeline {
			b.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d | %d |\n",
				y.Year, y.Transit, y.RadialVelocity, y.Microlensing, y.DirectImaging, y.Other, y.Cumulative))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		b.WriteString(r.Corr.Markdown())
		if len(r.TopPairs) > 0 {
			b.WriteString("\nStrongest pairs:\n")
			for _, p := range r.TopPairs {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d)\n", p.A, p.B, p.R, p.N))
			}
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Markdown renders the matrix as a table. Undefined cells print as n/a.
func (m *CorrMatrix) Markdown() string {
	var b strings.Builder
	b.WriteString("| |")
	for _, c := range m.Columns {
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString(" |")
	}
	b.WriteString("\n|---|")
	for range m.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, c := range m.Columns {
		b.WriteString("| ")
		b.WriteString(c)
		b.WriteString(" |")
		for j := range m.Columns {
			b.WriteString(" ")
			b.WriteString(m.Values[i][j].String())
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeBins(b *strings.Builder, title string, bins []Bin) {
	if len(bins) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	for _, bin := range bins {
		b.WriteString(fmt.Sprintf("- %s: %d\n", bin.Label, bin.Count))
	}
}

func label(c ColumnSummary) string {
	if c.Label != "" && c.Label != c.Name {
		return fmt.Sprintf("%s [%s]", c.Name, c.Label)
	}
	return c.Name
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

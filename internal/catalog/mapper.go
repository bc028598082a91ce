package catalog

import (
	"github.com/KaramelBytes/exoscope/internal/parser"
)

// MapStats counts row-shape irregularities absorbed while mapping.
type MapStats struct {
	Rows  int
	Short int // rows with fewer cells than the header
	Long  int // rows with more cells than the header
}

// Mapper binds a header to the static schema once and maps rows against it.
type Mapper struct {
	width int
	index map[string]int
}

// NewMapper builds a mapper for header. Column names are matched after
// trimming; when a name repeats, the last occurrence wins.
func NewMapper(header []string) *Mapper {
	m := &Mapper{width: len(header), index: make(map[string]int, len(header))}
	for i, h := range header {
		m.index[trim(h)] = i
	}
	return m
}

// Has reports whether the header carries a column.
func (m *Mapper) Has(column string) bool {
	_, ok := m.index[column]
	return ok
}

// MapRow converts one row into a Planet. It never fails: cells past the
// header width are ignored and missing cells become null.
func (m *Mapper) MapRow(row []string) Planet {
	var p Planet
	for _, f := range schema {
		cell, ok := m.cell(row, f.Name)
		if f.Fallback != "" && (!ok || cell == "") {
			if fb, fok := m.cell(row, f.Fallback); fok {
				cell, ok = fb, true
			}
		}
		f.assign(&p, cell, ok)
	}
	return p
}

func (m *Mapper) cell(row []string, column string) (string, bool) {
	idx, ok := m.index[column]
	if !ok || idx >= len(row) || idx >= m.width {
		return "", false
	}
	return row[idx], true
}

// Map converts every row of t into a Planet, preserving order.
func Map(t parser.Table) []Planet {
	out, _ := MapWithStats(t)
	return out
}

// MapWithStats is Map plus a count of ragged rows.
func MapWithStats(t parser.Table) ([]Planet, MapStats) {
	m := NewMapper(t.Header)
	out := make([]Planet, 0, len(t.Rows))
	st := MapStats{Rows: len(t.Rows)}
	for _, row := range t.Rows {
		switch {
		case len(row) < m.width:
			st.Short++
		case len(row) > m.width:
			st.Long++
		}
		out = append(out, m.MapRow(row))
	}
	return out, st
}

// Parse tokenizes text and maps it in one step.
func Parse(text string) ([]Planet, MapStats) {
	return MapWithStats(parser.Tokenize(text))
}

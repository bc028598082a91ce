// Package export renders catalog views and correlation matrices as Markdown,
// JSON, CSV or XLSX.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/exoscope/internal/analysis"
	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/KaramelBytes/exoscope/internal/explorer"
	"github.com/KaramelBytes/exoscope/internal/utils"
)

// Format is an output encoding.
type Format string

const (
	Markdown Format = "md"
	JSON     Format = "json"
	CSV      Format = "csv"
	XLSX     Format = "xlsx"
)

var (
	// ErrUnknownFormat is returned for an unsupported format name.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnknownColumn is returned when a requested column is not in the schema.
	ErrUnknownColumn = errors.New("unknown column")
)

// ParseFormat maps a user-supplied name to a Format. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// FormatFromPath guesses the format from an output file extension.
func FormatFromPath(path string, fallback Format) Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if f, err := ParseFormat(ext); err == nil && ext != "" {
		return f
	}
	return fallback
}

// DefaultColumns are the fields shown in list views.
func DefaultColumns() []string {
	return []string{
		"pl_name", "hostname", "discoverymethod", "disc_year",
		"pl_rade", "pl_masse", "pl_orbper", "st_teff", "sy_dist",
	}
}

func resolve(cols []string) ([]*catalog.Field, error) {
	if len(cols) == 0 {
		cols = DefaultColumns()
	}
	out := make([]*catalog.Field, 0, len(cols))
	for _, name := range cols {
		f, ok := catalog.Lookup(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownColumn)
		}
		out = append(out, f)
	}
	return out, nil
}

// cell formats one field for the text formats; null is the empty string.
func cell(f *catalog.Field, p *catalog.Planet) string {
	if f.Kind == catalog.Numeric {
		return f.Num(p).String()
	}
	return f.Text(p).Value
}

// Page writes one page of the explorer view. JSON carries the pagination
// envelope; the tabular formats carry rows only.
func Page(w io.Writer, format Format, page explorer.Page, cols []string) error {
	if format == JSON {
		b, err := utils.PrettyJSON(page)
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	}
	return Planets(w, format, page.Rows, cols)
}

// Planets writes rows restricted to cols (DefaultColumns when empty).
func Planets(w io.Writer, format Format, rows []catalog.Planet, cols []string) error {
	fields, err := resolve(cols)
	if err != nil {
		return err
	}
	switch format {
	case Markdown:
		return planetsMarkdown(w, fields, rows)
	case JSON:
		return planetsJSON(w, fields, rows)
	case CSV:
		return planetsCSV(w, fields, rows)
	case XLSX:
		return planetsXLSX(w, fields, rows)
	}
	return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

func planetsMarkdown(w io.Writer, fields []*catalog.Field, rows []catalog.Planet) error {
	var b strings.Builder
	b.WriteString("|")
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f.Name)
		b.WriteString(" |")
	}
	b.WriteString("\n|")
	for range fields {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i := range rows {
		b.WriteString("|")
		for _, f := range fields {
			val := cell(f, &rows[i])
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(" ")
			b.WriteString(safeVal(val))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func planetsJSON(w io.Writer, fields []*catalog.Field, rows []catalog.Planet) error {
	out := make([]map[string]any, len(rows))
	for i := range rows {
		m := make(map[string]any, len(fields))
		for _, f := range fields {
			m[f.Name] = f.Value(&rows[i])
		}
		out[i] = m
	}
	b, err := utils.PrettyJSON(out)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func planetsCSV(w io.Writer, fields []*catalog.Field, rows []catalog.Planet) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(fields))
	for i := range rows {
		for j, f := range fields {
			rec[j] = cell(f, &rows[i])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Matrix writes a correlation matrix. Undefined cells are "n/a" in Markdown,
// null in JSON and empty in CSV and XLSX.
func Matrix(w io.Writer, format Format, m *analysis.CorrMatrix) error {
	switch format {
	case Markdown:
		_, err := io.WriteString(w, m.Markdown())
		return err
	case JSON:
		b, err := utils.PrettyJSON(m)
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case CSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(append([]string{""}, m.Columns...)); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		for i, name := range m.Columns {
			rec := make([]string, 0, len(m.Columns)+1)
			rec = append(rec, name)
			for _, c := range m.Values[i] {
				if c.Valid {
					rec = append(rec, c.String())
				} else {
					rec = append(rec, "")
				}
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	case XLSX:
		return matrixXLSX(w, m)
	}
	return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

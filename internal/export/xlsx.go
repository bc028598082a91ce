package export

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/exoscope/internal/analysis"
	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/xuri/excelize/v2"
)

const (
	planetsSheet     = "Planets"
	correlationSheet = "Correlations"
)

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, addr, &vals)
}

// planetsXLSX writes one row per planet. Numbers are stored as numeric cells
// and nulls are left blank.
func planetsXLSX(w io.Writer, fields []*catalog.Field, rows []catalog.Planet) error {
	f, err := newWorkbook(planetsSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]any, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}
	if err := setRow(f, planetsSheet, 1, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	vals := make([]any, len(fields))
	for i := range rows {
		for j, fd := range fields {
			vals[j] = fd.Value(&rows[i])
		}
		if err := setRow(f, planetsSheet, i+2, vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(planetsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func matrixXLSX(w io.Writer, m *analysis.CorrMatrix) error {
	f, err := newWorkbook(correlationSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]any, 0, len(m.Columns)+1)
	header = append(header, "")
	for _, c := range m.Columns {
		header = append(header, c)
	}
	if err := setRow(f, correlationSheet, 1, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, name := range m.Columns {
		vals := make([]any, 0, len(m.Columns)+1)
		vals = append(vals, name)
		for _, c := range m.Values[i] {
			if c.Valid {
				vals = append(vals, c.R)
			} else {
				vals = append(vals, nil)
			}
		}
		if err := setRow(f, correlationSheet, i+2, vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

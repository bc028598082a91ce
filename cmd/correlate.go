package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/KaramelBytes/exoscope/internal/analysis"
	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/KaramelBytes/exoscope/internal/export"
	"github.com/KaramelBytes/exoscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	corrFilters    filterFlags
	corrColumns    []string
	corrX          string
	corrY          string
	corrScatterCap int
	corrFormat     string
	corrOutput     string
)

var correlateCmd = &cobra.Command{
	Use:   "correlate [path|url]",
	Short: "Pearson correlation matrix, or a scatter sample for one pair",
	Long: `Computes the Pearson correlation matrix over the filtered catalog. Each pair
uses only the planets where both values are present; pairs with fewer than three
such planets, or with a constant side, are reported as n/a.

With --x and --y, prints the (x, y) points for that pair instead, thinned to at
most --scatter-cap points by keeping every k-th point.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := corrFilters.state(cmd)
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(corrFormat)
		if err != nil {
			return err
		}
		if corrOutput != "" && !cmd.Flags().Changed("format") {
			format = export.FormatFromPath(corrOutput, format)
		}
		if format == export.XLSX && corrOutput == "" {
			return fmt.Errorf("xlsx output requires --output")
		}
		if (corrX == "") != (corrY == "") {
			return fmt.Errorf("--x and --y must be given together")
		}

		store, err := loadStore(cmd.Context(), cmd.ErrOrStderr(), args)
		if err != nil {
			return err
		}
		store.SetState(q)
		rows, err := store.Filtered()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if corrX != "" {
			limit := corrScatterCap
			if limit <= 0 && cfg != nil {
				limit = cfg.ScatterCap
			}
			if err := writeScatter(&buf, format, rows, limit); err != nil {
				return err
			}
		} else {
			m, err := analysis.Correlate(rows, corrColumns)
			if err != nil {
				return err
			}
			if err := export.Matrix(&buf, format, m); err != nil {
				return err
			}
		}

		if corrOutput != "" {
			if err := utils.WriteOutput(corrOutput, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote correlations to %s\n", corrOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func writeScatter(w io.Writer, format export.Format, rows []catalog.Planet, limit int) error {
	pts, err := analysis.Scatter(rows, corrX, corrY, limit)
	if err != nil {
		return err
	}
	m, err := analysis.Correlate(rows, []string{corrX, corrY})
	if err != nil {
		return err
	}
	r := m.Values[0][1]
	switch format {
	case export.JSON:
		b, err := utils.PrettyJSON(map[string]any{"x": corrX, "y": corrY, "r": r, "points": pts})
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case export.Markdown:
		fmt.Fprintf(w, "%s vs %s: r=%s (n=%d), %d points\n\n", corrX, corrY, r, r.N, len(pts))
		fmt.Fprintf(w, "| pl_name | %s | %s |\n|---|---|---|\n", corrX, corrY)
		for _, p := range pts {
			fmt.Fprintf(w, "| %s | %g | %g |\n", p.Name, p.X, p.Y)
		}
		return nil
	}
	return fmt.Errorf("scatter supports md or json, not %s", format)
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	corrFilters.register(correlateCmd)
	correlateCmd.Flags().StringSliceVar(&corrColumns, "columns", nil, "numeric columns to correlate (default: radius, mass, period, semi-major axis, eccentricity, inclination, stellar radius, mass, teff, distance)")
	correlateCmd.Flags().StringVar(&corrX, "x", "", "x column for a scatter sample")
	correlateCmd.Flags().StringVar(&corrY, "y", "", "y column for a scatter sample")
	correlateCmd.Flags().IntVar(&corrScatterCap, "scatter-cap", 0, "maximum scatter points (default from config scatter_cap)")
	correlateCmd.Flags().StringVarP(&corrFormat, "format", "f", "md", "output format: md|json|csv|xlsx (scatter: md|json)")
	correlateCmd.Flags().StringVarP(&corrOutput, "output", "o", "", "write output to a file instead of stdout")
}

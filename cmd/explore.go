package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/exoscope/internal/export"
	"github.com/KaramelBytes/exoscope/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	expFilters filterFlags
	expSort    string
	expDesc    bool
	expLimit   int
	expOffset  int
	expFormat  string
	expOutput  string
	expColumns []string
)

var exploreCmd = &cobra.Command{
	Use:   "explore [path|url]",
	Short: "Search, filter, sort and page through the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := expFilters.state(cmd)
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(expFormat)
		if err != nil {
			return err
		}
		if expOutput != "" && !cmd.Flags().Changed("format") {
			format = export.FormatFromPath(expOutput, format)
		}
		if format == export.XLSX && expOutput == "" {
			return fmt.Errorf("xlsx output requires --output")
		}
		cols := expColumns
		if len(cols) == 0 {
			cols = export.DefaultColumns()
		}

		status := cmd.ErrOrStderr()
		store, err := loadStore(cmd.Context(), status, args)
		if err != nil {
			return err
		}
		limit := expLimit
		if limit <= 0 && cfg != nil {
			limit = cfg.PageSize
		}
		q.Sort.Field, q.Sort.Desc = expSort, expDesc
		q.Window.Size, q.Window.Offset = limit, expOffset
		store.SetState(q)
		page, err := store.Visible()
		if err != nil {
			return err
		}

		if expOutput != "" {
			var buf bytes.Buffer
			if err := export.Page(&buf, format, page, cols); err != nil {
				return err
			}
			if err := utils.WriteOutput(expOutput, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d of %s matching planets to %s\n",
				len(page.Rows), humanize.Comma(int64(page.Total)), expOutput)
		} else if err := export.Page(cmd.OutOrStdout(), format, page, cols); err != nil {
			return err
		}

		if page.Total == 0 {
			fmt.Fprintln(status, "⚠ No planets match the current search and filters")
			return nil
		}
		if len(page.Rows) == 0 {
			fmt.Fprintf(status, "⚠ Offset %d is past the last of %s matching planets\n",
				page.Offset, humanize.Comma(int64(page.Total)))
			return nil
		}
		first := page.Offset + 1
		last := page.Offset + len(page.Rows)
		fmt.Fprintf(status, "✓ Showing %s-%s of %s\n",
			humanize.Comma(int64(first)), humanize.Comma(int64(last)), humanize.Comma(int64(page.Total)))
		if page.HasMore {
			fmt.Fprintf(status, "  next page: --offset %d\n", page.Offset+page.Limit)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	expFilters.register(exploreCmd)
	exploreCmd.Flags().StringVar(&expSort, "sort", "", "field to sort by (e.g. pl_name, pl_rade); ingestion order if empty")
	exploreCmd.Flags().BoolVar(&expDesc, "desc", false, "sort descending (nulls stay last)")
	exploreCmd.Flags().IntVar(&expLimit, "limit", 0, "page size (default from config page_size)")
	exploreCmd.Flags().IntVar(&expOffset, "offset", 0, "index of the first row to show")
	exploreCmd.Flags().StringVarP(&expFormat, "format", "f", "md", "output format: md|json|csv|xlsx")
	exploreCmd.Flags().StringVarP(&expOutput, "output", "o", "", "write output to a file instead of stdout")
	exploreCmd.Flags().StringSliceVar(&expColumns, "columns", nil, "columns to include (default: name, host, method, year, radius, mass, period, teff, distance)")
}

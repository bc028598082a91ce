package cmd

import (
	"fmt"

	"github.com/KaramelBytes/exoscope/internal/analysis"
	"github.com/KaramelBytes/exoscope/internal/export"
	"github.com/KaramelBytes/exoscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	statsFilters    filterFlags
	statsColumns    []string
	statsMaxMethods int
	statsMaxPairs   int
	statsFormat     string
	statsOutput     string
)

var statsCmd = &cobra.Command{
	Use:   "stats [path|url]",
	Short: "Summarize the catalog: parameters, distributions, methods, timeline, correlations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := statsFilters.state(cmd)
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(statsFormat)
		if err != nil {
			return err
		}
		if format != export.Markdown && format != export.JSON {
			return fmt.Errorf("stats supports md or json, not %s", format)
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
		opt := analysis.DefaultOptions()
		if len(statsColumns) > 0 {
			opt.Columns = statsColumns
		}
		if statsMaxMethods > 0 {
			opt.MaxMethods = statsMaxMethods
		}
		if statsMaxPairs > 0 {
			opt.MaxPairs = statsMaxPairs
		}
		rep, err := analysis.BuildReport(store.Dataset().Source, rows, opt)
		if err != nil {
			return err
		}

		var out []byte
		if format == export.JSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(rep.Markdown())
		}
		if statsOutput != "" {
			if err := utils.WriteOutput(statsOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", statsOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsFilters.register(statsCmd)
	statsCmd.Flags().StringSliceVar(&statsColumns, "columns", nil, "numeric columns to summarize and correlate")
	statsCmd.Flags().IntVar(&statsMaxMethods, "max-methods", 0, "discovery methods to list (default 8)")
	statsCmd.Flags().IntVar(&statsMaxPairs, "max-pairs", 0, "strongest correlation pairs to list (default 10)")
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "md", "output format: md|json")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "optional path to write the report")
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/KaramelBytes/exoscope/internal/catalog"
	cfgpkg "github.com/KaramelBytes/exoscope/internal/config"
	"github.com/KaramelBytes/exoscope/internal/explorer"
	"github.com/KaramelBytes/exoscope/internal/source"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// catalogArg returns the catalog location: the positional argument, or the
// configured data_path.
func catalogArg(c *cfgpkg.Global, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return c.DataPath
}

// openStore builds an unloaded store for the catalog named by args.
func openStore(c *cfgpkg.Global, args []string) (*explorer.Store, error) {
	src, err := source.Open(catalogArg(c, args), source.Options{
		BaseURL:     c.BaseURL,
		BasePath:    c.BasePath,
		HTTPTimeout: httpTimeout(c),
	})
	if err != nil {
		return nil, err
	}
	return explorer.NewStore(src, explorer.WithLogger(logger)), nil
}

// loadStore opens and loads the catalog, reporting progress on status.
func loadStore(ctx context.Context, status io.Writer, args []string) (*explorer.Store, error) {
	c, err := globalConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(c, args)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	ds := store.Dataset()
	if ds == nil {
		return nil, explorer.ErrNotLoaded
	}
	fmt.Fprintf(status, "✓ Loaded %s planets from %s in %s\n",
		humanize.Comma(int64(ds.Len())), ds.Source, time.Since(start).Round(time.Millisecond))
	if ds.Stats.Short > 0 || ds.Stats.Long > 0 {
		fmt.Fprintf(status, "⚠ Normalised %d short and %d long rows\n", ds.Stats.Short, ds.Stats.Long)
	}
	return store, nil
}

// filterFlags are the search and filter flags shared by explore, correlate
// and stats.
type filterFlags struct {
	search       string
	methods      []string
	dispositions []string
	defaults     bool
	yearMin      float64
	yearMax      float64
	radiusMin    float64
	radiusMax    float64
	massMin      float64
	massMax      float64
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&ff.search, "search", "s", "", "case-insensitive substring of planet or host name")
	f.StringSliceVar(&ff.methods, "method", nil, "discovery methods to keep (repeatable, comma-separated)")
	f.StringSliceVar(&ff.dispositions, "disposition", nil, "dispositions to keep: Confirmed|Candidate|False Positive|Controversial")
	f.BoolVar(&ff.defaults, "defaults", false, "start from the default year, radius and mass windows")
	f.Float64Var(&ff.yearMin, "year-min", 0, "minimum discovery year")
	f.Float64Var(&ff.yearMax, "year-max", 0, "maximum discovery year")
	f.Float64Var(&ff.radiusMin, "radius-min", 0, "minimum radius in Earth radii")
	f.Float64Var(&ff.radiusMax, "radius-max", 0, "maximum radius in Earth radii")
	f.Float64Var(&ff.massMin, "mass-min", 0, "minimum mass in Earth masses")
	f.Float64Var(&ff.massMax, "mass-max", 0, "maximum mass in Earth masses")
}

// state builds the query state from the flags that were set. A range bound
// left unset stays open unless --defaults supplied one. Null values always
// pass a range.
func (ff *filterFlags) state(cmd *cobra.Command) (explorer.QueryState, error) {
	var q explorer.QueryState
	q.Search = ff.search
	if ff.defaults {
		q.Filters = explorer.DefaultFilters()
	}
	q.Filters.Methods = ff.methods
	for _, name := range ff.dispositions {
		d, ok := catalog.ParseDisposition(name)
		if !ok {
			return q, fmt.Errorf("unknown disposition: %s", name)
		}
		q.Filters.Dispositions = append(q.Filters.Dispositions, d)
	}
	f := cmd.Flags()
	q.Filters.Year = bound(q.Filters.Year, f.Changed("year-min"), ff.yearMin, f.Changed("year-max"), ff.yearMax)
	q.Filters.Radius = bound(q.Filters.Radius, f.Changed("radius-min"), ff.radiusMin, f.Changed("radius-max"), ff.radiusMax)
	q.Filters.Mass = bound(q.Filters.Mass, f.Changed("mass-min"), ff.massMin, f.Changed("mass-max"), ff.massMax)
	for _, r := range []*explorer.Range{q.Filters.Year, q.Filters.Radius, q.Filters.Mass} {
		if r != nil && r.Min > r.Max {
			return q, fmt.Errorf("empty range: min %g is above max %g", r.Min, r.Max)
		}
	}
	return q, nil
}

func bound(base *explorer.Range, hasMin bool, lo float64, hasMax bool, hi float64) *explorer.Range {
	if !hasMin && !hasMax {
		return base
	}
	r := explorer.Range{Min: -math.MaxFloat64, Max: math.MaxFloat64}
	if base != nil {
		r = *base
	}
	if hasMin {
		r.Min = lo
	}
	if hasMax {
		r.Max = hi
	}
	return &r
}

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `pl_name,hostname,default_flag,discoverymethod,disc_year,pl_rade,pl_masse,pl_orbper,st_teff,sy_dist
Kepler-6 b,Kepler-6,1,Transit,2010,13.1,212,3.23,5647,
WASP-17 b,WASP-17,1,Transit,2009,19.7,,3.74,6550,405
51 Peg b,51 Peg,0,Radial Velocity,1995,,150,4.23,5768,15.5
TOI-700 d,TOI-700,1,Transit,2020,1.19,1.72,37.4,3480,31.1
Kepler-22 b,Kepler-22,0,Transit,,2.4,,289.9,5518,
Gliese 581 c,Gliese 581,1,Radial Velocity,2007,,5.5,12.9,3498,6.3
`

// resetFlags restores every flag of c and its children to its default so
// package-level flag variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// setupHome isolates config and notes under a temp HOME and writes the
// sample catalog there.
func setupHome(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "catalog.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))
	return home, csvPath
}

func TestCLI_ExploreMarkdown(t *testing.T) {
	_, path := setupHome(t)

	out := runCmd(t, "explore", path, "--method", "Transit", "--sort", "pl_name", "--limit", "2", "--offset", "1")
	assert.Contains(t, out, "| pl_name |")
	assert.Contains(t, out, "Kepler-6 b")
	assert.Contains(t, out, "TOI-700 d")
	assert.NotContains(t, out, "WASP-17 b")
	assert.NotContains(t, out, "51 Peg b")
}

func TestCLI_ExploreJSON(t *testing.T) {
	_, path := setupHome(t)

	out := runCmd(t, "explore", path, "--radius-min", "10", "--sort", "pl_rade", "--desc", "--format", "json")
	var page struct {
		Data []struct {
			Name string   `json:"pl_name"`
			Rade *float64 `json:"pl_rade"`
		} `json:"data"`
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page), out)
	assert.Equal(t, 4, page.Total)
	assert.False(t, page.HasMore)
	require.Len(t, page.Data, 4)
	assert.Equal(t, "WASP-17 b", page.Data[0].Name)
	assert.Equal(t, "Kepler-6 b", page.Data[1].Name)
	// planets without a radius pass the range and sort last
	assert.Nil(t, page.Data[2].Rade)
	assert.Nil(t, page.Data[3].Rade)
}

func TestCLI_ExploreXLSXFile(t *testing.T) {
	home, path := setupHome(t)
	dest := filepath.Join(home, "out", "planets.xlsx")

	out := runCmd(t, "explore", path, "--disposition", "Candidate", "--output", dest)
	assert.Contains(t, out, "✓ Wrote 2 of 2 matching planets")

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Planets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "pl_name", rows[0][0])
	assert.Equal(t, "51 Peg b", rows[1][0])
	assert.Equal(t, "Kepler-22 b", rows[2][0])
}

func TestCLI_ExploreErrors(t *testing.T) {
	home, path := setupHome(t)

	_, err := execCmd(t, "explore", filepath.Join(home, "missing.csv"))
	assert.Error(t, err)

	_, err = execCmd(t, "explore", path, "--sort", "bogus")
	assert.Error(t, err)

	_, err = execCmd(t, "explore", path, "--format", "xlsx")
	assert.ErrorContains(t, err, "--output")

	_, err = execCmd(t, "explore", path, "--year-min", "2020", "--year-max", "2000")
	assert.ErrorContains(t, err, "empty range")
}

func TestCLI_CorrelateMatrix(t *testing.T) {
	_, path := setupHome(t)

	out := runCmd(t, "correlate", path, "--columns", "pl_orbper,st_teff,pl_rade,pl_masse")
	assert.Contains(t, out, "| pl_orbper |")
	// pl_rade and pl_masse share only two planets
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "1.000")

	_, err := execCmd(t, "correlate", path, "--columns", "hostname")
	assert.Error(t, err)
}

func TestCLI_CorrelateScatterJSON(t *testing.T) {
	_, path := setupHome(t)

	out := runCmd(t, "correlate", path, "--x", "pl_orbper", "--y", "st_teff", "--scatter-cap", "3", "--format", "json")
	var got struct {
		X      string           `json:"x"`
		R      *float64         `json:"r"`
		Points []map[string]any `json:"points"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "pl_orbper", got.X)
	require.NotNil(t, got.R)
	// six points thinned with stride 2
	assert.Len(t, got.Points, 3)

	_, err := execCmd(t, "correlate", path, "--x", "pl_orbper")
	assert.Error(t, err)
}

func TestCLI_Stats(t *testing.T) {
	home, path := setupHome(t)

	out := runCmd(t, "stats", path)
	assert.Contains(t, out, "[CATALOG SUMMARY]")
	assert.Contains(t, out, "Planets: 6")
	assert.Contains(t, out, "[DISCOVERY METHODS]")
	assert.Contains(t, out, "- Transit: 4")
	assert.Contains(t, out, "[DISCOVERY TIMELINE]")

	dest := filepath.Join(home, "report.json")
	runCmd(t, "stats", path, "--method", "Radial Velocity", "--format", "json", "--output", dest)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	var rep struct {
		Rows int `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Equal(t, 2, rep.Rows)
}

func TestCLI_Notes(t *testing.T) {
	home, _ := setupHome(t)

	out := runCmd(t, "notes", "add", "TOI-700 d", "habitable", "zone")
	assert.Contains(t, out, "✓ Note added to TOI-700 d")
	runCmd(t, "notes", "add", "TOI-700 d", "follow up")

	out = runCmd(t, "notes", "list")
	assert.Contains(t, out, "[0] habitable zone")
	assert.Contains(t, out, "[1] follow up")

	runCmd(t, "notes", "delete", "TOI-700 d", "0")
	out = runCmd(t, "notes", "list", "TOI-700 d")
	assert.NotContains(t, out, "habitable zone")
	assert.Contains(t, out, "[0] follow up")

	_, err := os.Stat(filepath.Join(home, ".exoscope", "notes.json"))
	assert.NoError(t, err)

	_, err = execCmd(t, "notes", "delete", "TOI-700 d", "7")
	assert.Error(t, err)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home, _ := setupHome(t)

	runCmd(t, "config", "set", "page_size", "25")
	runCmd(t, "config", "set", "log_format", "json")
	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "page_size: 25")
	assert.Contains(t, out, "log_format: json")

	b, err := os.ReadFile(filepath.Join(home, ".exoscope", "config.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "page_size: 25"))

	_, err = execCmd(t, "config", "set", "page_size", "-1")
	assert.Error(t, err)
	_, err = execCmd(t, "config", "set", "nope", "1")
	assert.Error(t, err)
}

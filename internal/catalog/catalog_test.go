package catalog

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/KaramelBytes/exoscope/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want Num
	}{
		{"", Null},
		{" ", Null},
		{"null", Null},
		{"NULL", Null},
		{" Null ", Null},
		{"3.14", N(3.14)},
		{" 42 ", N(42)},
		{"-0", N(0)},
		{"1e3", N(1000)},
		{"abc", Null},
		{"NaN", Null},
		{"Infinity", Null},
		{"1e400", Null},
		{"12abc", Null},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := ParseNumber(tc.in)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.False(t, math.Signbit(ParseNumber("-0").Value), "-0 must fold to +0")
}

func TestMap_Scenario(t *testing.T) {
	ps, st := Parse("pl_name,pl_rade\n\"Kepler, 6b\",1.32\nWASP-17 b,19.7\n")
	require.Len(t, ps, 2)
	assert.Equal(t, "Kepler, 6b", ps[0].Name)
	assert.Equal(t, N(1.32), ps[0].RadE)
	assert.Equal(t, "WASP-17 b", ps[1].Name)
	assert.Equal(t, N(19.7), ps[1].RadE)
	// columns absent from the header are null
	assert.False(t, ps[0].Host.Valid)
	assert.False(t, ps[0].MassE.Valid)
	assert.Equal(t, MapStats{Rows: 2}, st)
}

func TestMap_HeaderParity(t *testing.T) {
	tbl := parser.Tokenize("pl_name,hostname,pl_rade\nshort\nexact,host,2\nlong,host,3,extra,cells\n")
	ps, st := MapWithStats(tbl)
	require.Len(t, ps, 3)

	assert.Equal(t, "short", ps[0].Name)
	assert.False(t, ps[0].Host.Valid)
	assert.False(t, ps[0].RadE.Valid)

	assert.Equal(t, S("host"), ps[1].Host)
	assert.Equal(t, N(2), ps[1].RadE)

	assert.Equal(t, N(3), ps[2].RadE)
	assert.Equal(t, MapStats{Rows: 3, Short: 1, Long: 1}, st)
}

func TestMap_TextTrimmedAndEmptyKept(t *testing.T) {
	ps := Map(parser.Tokenize("pl_name,hostname,discoverymethod\n  b  , Star ,\n"))
	require.Len(t, ps, 1)
	assert.Equal(t, "b", ps[0].Name)
	assert.Equal(t, S("Star"), ps[0].Host)
	// present but empty is an empty string, not null
	assert.Equal(t, S(""), ps[0].DiscoveryMethod)
}

func TestMap_MissingNameIsEmptyString(t *testing.T) {
	ps := Map(parser.Tokenize("hostname\nStar\n"))
	require.Len(t, ps, 1)
	assert.Equal(t, "", ps[0].Name)
}

func TestMap_DuplicateHeaderLastWins(t *testing.T) {
	ps := Map(parser.Tokenize("pl_rade,pl_rade\n1,2\n"))
	require.Len(t, ps, 1)
	assert.Equal(t, N(2), ps[0].RadE)
}

func TestMap_MassJFallback(t *testing.T) {
	ps := Map(parser.Tokenize("pl_name,pl_massj,pl_bmassj\na,,0.5\nb,1.5,0.5\nc,null,0.5\n"))
	require.Len(t, ps, 3)
	assert.Equal(t, N(0.5), ps[0].MassJ)
	assert.Equal(t, N(1.5), ps[1].MassJ)
	// "null" is a present cell, so the fallback is not consulted
	assert.False(t, ps[2].MassJ.Valid)

	only := Map(parser.Tokenize("pl_name,pl_bmassj\na,2.5\n"))
	assert.Equal(t, N(2.5), only[0].MassJ)
}

func TestDisposition(t *testing.T) {
	p := Planet{DefaultFlag: N(1)}
	assert.Equal(t, Confirmed, p.Disposition())
	p.DefaultFlag = N(0)
	assert.Equal(t, Candidate, p.Disposition())
	p.DefaultFlag = Null
	assert.Equal(t, Candidate, p.Disposition())

	d, ok := ParseDisposition(" false positive ")
	require.True(t, ok)
	assert.Equal(t, FalsePositive, d)
	_, ok = ParseDisposition("maybe")
	assert.False(t, ok)
}

func TestLookupAndValue(t *testing.T) {
	p := Planet{Name: "x", Host: S("h"), RadE: N(1.5)}
	f, ok := Lookup("pl_rade")
	require.True(t, ok)
	assert.Equal(t, Numeric, f.Kind)
	assert.Equal(t, 1.5, f.Value(&p))
	assert.False(t, f.Text(&p).Valid)

	f, ok = Lookup("pl_name")
	require.True(t, ok)
	assert.Equal(t, "x", f.Value(&p))

	f, _ = Lookup("pl_masse")
	assert.Nil(t, f.Value(&p))

	_, ok = Lookup("nope")
	assert.False(t, ok)
	assert.Contains(t, NumericFields(), "sy_dist")
	assert.Len(t, Schema(), 24)
}

func TestPlanetJSON_NullsForMissing(t *testing.T) {
	b, err := json.Marshal(Planet{Name: "a", RadE: N(1)})
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "a", m["pl_name"])
	assert.Equal(t, 1.0, m["pl_rade"])
	assert.Nil(t, m["hostname"])
	assert.Contains(t, m, "sy_dist")
}

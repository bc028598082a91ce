package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 25\nbase_path: /ExoBengal\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, c.PageSize)
	assert.Equal(t, "/ExoBengal", c.BasePath)
	assert.Equal(t, 4000, c.ScatterCap)
	assert.Equal(t, "info", c.LogLevel)
	assert.NotEmpty(t, c.DataDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scatter_cap: 10\n"), 0o644))
	t.Setenv("EXOSCOPE_SCATTER_CAP", "50")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.ScatterCap)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")
	in := &Global{DataPath: "/x.csv", PageSize: 7, DataDir: dir}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/x.csv", out.DataPath)
	assert.Equal(t, 7, out.PageSize)
	assert.Equal(t, dir, out.DataDir)
}

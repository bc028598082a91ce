package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/exoscope/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, utils.SafeWriteFile(p, []byte("one")))
	require.NoError(t, utils.SafeWriteFile(p, []byte("two")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteOutputCreatesDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "report.md")
	require.NoError(t, utils.WriteOutput(p, []byte("# hi")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(b))
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))

	_, err = utils.PrettyJSON(make(chan int))
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".exoscope"), utils.ExpandHome("~/.exoscope"))
	assert.Equal(t, "/abs/path", utils.ExpandHome("/abs/path"))
	assert.Equal(t, "rel/~x", utils.ExpandHome("rel/~x"))
}

package notes_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/exoscope/internal/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotebookAddSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	nb, err := notes.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, nb.Planets())

	a, err := nb.Add(" TOI-700 d ", "habitable zone")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "TOI-700 d", a.Planet)
	_, err = nb.Add("TOI-700 d", "follow-up with JWST")
	require.NoError(t, err)
	_, err = nb.Add("Kepler-22 b", "first HZ transit")
	require.NoError(t, err)
	require.NoError(t, nb.Save())

	_, err = os.Stat(filepath.Join(dir, "notes.json"))
	require.NoError(t, err)

	again, err := notes.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kepler-22 b", "TOI-700 d"}, again.Planets())
	list := again.List("TOI-700 d")
	require.Len(t, list, 2)
	assert.Equal(t, "habitable zone", list[0].Text)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestNotebookAddRejectsEmpty(t *testing.T) {
	nb := notes.NewNotebook(t.TempDir())
	_, err := nb.Add("x", "   ")
	assert.ErrorIs(t, err, notes.ErrEmptyNote)
	_, err = nb.Add("", "text")
	assert.Error(t, err)
}

func TestNotebookDelete(t *testing.T) {
	nb := notes.NewNotebook(t.TempDir())
	first, _ := nb.Add("p", "one")
	_, _ = nb.Add("p", "two")
	_, _ = nb.Add("p", "three")

	removed, err := nb.Delete("p", "1")
	require.NoError(t, err)
	assert.Equal(t, "two", removed.Text)

	removed, err = nb.Delete("p", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", removed.Text)
	require.Len(t, nb.List("p"), 1)
	assert.Equal(t, "three", nb.List("p")[0].Text)

	_, err = nb.Delete("p", "5")
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)
	_, err = nb.Delete("q", "0")
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	_, err = nb.Delete("p", "0")
	require.NoError(t, err)
	assert.Empty(t, nb.Planets())
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{not json"), 0o644))
	_, err := notes.Load(dir)
	assert.ErrorContains(t, err, "parse notebook")
}

package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/exoscope/internal/utils"
	"github.com/google/uuid"
)

const notebookFileName = "notes.json"

var (
	// ErrEmptyNote is returned when a note has no text.
	ErrEmptyNote = errors.New("note text is empty")
	// ErrNoteNotFound is returned when Delete matches nothing.
	ErrNoteNotFound = errors.New("note not found")
)

// Notebook is the set of planet notes persisted under a data directory.
type Notebook struct {
	Notes     map[string][]*Note `json:"notes"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	// Not serialized: on-disk location of notes.json
	rootDir string `json:"-"`
}

// NewNotebook constructs an empty notebook. Call Save() to persist.
func NewNotebook(rootDir string) *Notebook {
	return &Notebook{
		Notes:     make(map[string][]*Note),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// Load reads notes.json from dir. A missing file yields an empty notebook.
func Load(dir string) (*Notebook, error) {
	path := filepath.Join(dir, notebookFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewNotebook(dir), nil
		}
		return nil, fmt.Errorf("read notebook: %w", err)
	}
	var nb Notebook
	if err := json.Unmarshal(b, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook %s: %w", path, err)
	}
	if nb.Notes == nil {
		nb.Notes = make(map[string][]*Note)
	}
	nb.rootDir = dir
	return &nb, nil
}

// RootDir returns the directory notes.json lives in.
func (nb *Notebook) RootDir() string { return nb.rootDir }

// Path returns the full path of notes.json.
func (nb *Notebook) Path() string { return filepath.Join(nb.rootDir, notebookFileName) }

// Save writes notes.json using atomic write.
func (nb *Notebook) Save() error {
	if nb.rootDir == "" {
		return errors.New("notebook directory not set")
	}
	if err := utils.EnsureDir(nb.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	nb.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(nb)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(nb.Path(), data)
}

// Add appends a note for planet and returns it.
func (nb *Notebook) Add(planet, text string) (*Note, error) {
	planet = strings.TrimSpace(planet)
	text = strings.TrimSpace(text)
	if planet == "" {
		return nil, errors.New("planet name is empty")
	}
	if text == "" {
		return nil, ErrEmptyNote
	}
	n := &Note{ID: uuid.NewString(), Planet: planet, Text: text, CreatedAt: time.Now()}
	if nb.Notes == nil {
		nb.Notes = make(map[string][]*Note)
	}
	nb.Notes[planet] = append(nb.Notes[planet], n)
	nb.UpdatedAt = time.Now()
	return n, nil
}

// List returns the notes for planet in insertion order.
func (nb *Notebook) List(planet string) []*Note {
	return nb.Notes[strings.TrimSpace(planet)]
}

// Planets returns every planet with at least one note, sorted.
func (nb *Notebook) Planets() []string {
	out := make([]string, 0, len(nb.Notes))
	for k, v := range nb.Notes {
		if len(v) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Delete removes a note of planet by ID or by zero-based index.
func (nb *Notebook) Delete(planet, ref string) (*Note, error) {
	planet = strings.TrimSpace(planet)
	list := nb.Notes[planet]
	at := -1
	for i, n := range list {
		if n.ID == ref {
			at = i
			break
		}
	}
	if at < 0 {
		if i, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil && i >= 0 && i < len(list) {
			at = i
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("%s #%s: %w", planet, ref, ErrNoteNotFound)
	}
	removed := list[at]
	next := append(list[:at:at], list[at+1:]...)
	if len(next) == 0 {
		delete(nb.Notes, planet)
	} else {
		nb.Notes[planet] = next
	}
	nb.UpdatedAt = time.Now()
	return removed, nil
}

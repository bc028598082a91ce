package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/KaramelBytes/exoscope/internal/logging"
	"github.com/KaramelBytes/exoscope/internal/source"
	"github.com/google/uuid"
)

// ErrNotLoaded is returned by operations that need a dataset before Load succeeded.
var ErrNotLoaded = errors.New("dataset not loaded")

// Status is the externally visible lifecycle state of a Store.
type Status int

const (
	Unloaded Status = iota
	Loading
	Loaded
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// Dataset is the immutable record set produced by one load.
type Dataset struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Rows     []catalog.Planet
	Stats    catalog.MapStats
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Store holds one dataset and the mutable query state derived views are
// computed from. Load runs at most once until Reset.
type Store struct {
	src source.Source
	log *logging.Logger

	mu       sync.RWMutex
	status   Status
	gen      uint64
	ds       *Dataset
	err      error
	initial  QueryState
	state    QueryState
	selected string
	notes    map[string][]string
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithQueryState sets the query state the store starts from and returns to on Reset.
func WithQueryState(q QueryState) Option {
	return func(s *Store) { s.initial = q }
}

// NewStore returns an Unloaded store reading from src.
func NewStore(src source.Source, opts ...Option) *Store {
	s := &Store{src: src, log: logging.Noop()}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.Component("store")
	s.state = s.initial
	return s
}

// Load fetches, tokenizes and maps the catalog. It is a no-op while a load is
// in flight or after a successful load. On failure the error is recorded,
// the store stays Unloaded and the error is returned; nothing is retried.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.status != Unloaded {
		s.mu.Unlock()
		return nil
	}
	s.status = Loading
	s.err = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	start := time.Now()
	loc := s.src.Location()
	text, err := s.src.Fetch(ctx)
	var ds *Dataset
	if err == nil {
		rows, st := catalog.Parse(text)
		ds = &Dataset{ID: uuid.NewString(), Source: loc, LoadedAt: time.Now(), Rows: rows, Stats: st}
	} else {
		err = fmt.Errorf("load catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Reset ran while this load was in flight.
		return nil
	}
	s.log.LogLoad(ctx, loc, ds.Len(), time.Since(start), err)
	if err != nil {
		s.err = err
		s.status = Unloaded
		return err
	}
	if ds.Stats.Short > 0 || ds.Stats.Long > 0 {
		s.log.WarnContext(ctx, "ragged rows normalised",
			"short", ds.Stats.Short,
			"long", ds.Stats.Long,
		)
	}
	s.ds = ds
	s.status = Loaded
	return nil
}

// Reset drops the dataset, error, selection, notes and query state. A load
// still in flight is discarded when it completes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.status = Unloaded
	s.ds = nil
	s.err = nil
	s.state = s.initial
	s.selected = ""
	s.notes = nil
}

// Status returns the lifecycle state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err returns the error of the last failed load, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Dataset returns the loaded dataset or nil.
func (s *Store) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Rows returns the full record set in ingestion order. The slice is shared
// and must not be modified.
func (s *Store) Rows() []catalog.Planet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil
	}
	return s.ds.Rows
}

// State returns a copy of the current query state.
func (s *Store) State() QueryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState replaces the whole query state.
func (s *Store) SetState(q QueryState) {
	s.mu.Lock()
	s.state = q
	s.mu.Unlock()
}

// SetSearch sets the free-text search.
func (s *Store) SetSearch(q string) {
	s.mu.Lock()
	s.state.Search = q
	s.mu.Unlock()
}

// SetFilters replaces the filter set.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	s.state.Filters = f
	s.mu.Unlock()
}

// SetSort sets the sort field and direction.
func (s *Store) SetSort(field string, desc bool) {
	s.mu.Lock()
	s.state.Sort = Sort{Field: field, Desc: desc}
	s.mu.Unlock()
}

// SetWindow sets the pagination window.
func (s *Store) SetWindow(size, offset int) {
	s.mu.Lock()
	s.state.Window = Window{Size: size, Offset: offset}
	s.mu.Unlock()
}

// Visible evaluates the current query state.
func (s *Store) Visible() (Page, error) {
	return s.VisibleFor(s.State())
}

// VisibleFor evaluates q against the loaded dataset. An unloaded store has
// no rows and yields an empty page.
func (s *Store) VisibleFor(q QueryState) (Page, error) {
	start := time.Now()
	page, err := Query(s.Rows(), q)
	if err == nil {
		s.log.LogQuery(context.Background(), page.Total, len(page.Rows), time.Since(start))
	}
	return page, err
}

// Filtered returns every record matching the current search and filters,
// sorted, without pagination.
func (s *Store) Filtered() ([]catalog.Planet, error) {
	return Filter(s.Rows(), s.State())
}

// Find returns the first record whose name matches case-insensitively.
func (s *Store) Find(name string) (catalog.Planet, bool) {
	name = strings.TrimSpace(name)
	for _, p := range s.Rows() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return catalog.Planet{}, false
}

// Select marks a planet as selected; an empty name clears the selection.
func (s *Store) Select(name string) {
	s.mu.Lock()
	s.selected = name
	s.mu.Unlock()
}

// Selected returns the selected planet name.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// AddNote appends a note for planet.
func (s *Store) AddNote(planet, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notes == nil {
		s.notes = make(map[string][]string)
	}
	s.notes[planet] = append(s.notes[planet], note)
}

// DeleteNote removes the note at index; out-of-range indexes are ignored.
func (s *Store) DeleteNote(planet string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notes[planet]
	if index < 0 || index >= len(list) {
		return
	}
	next := make([]string, 0, len(list)-1)
	next = append(next, list[:index]...)
	s.notes[planet] = append(next, list[index+1:]...)
}

// Notes returns a copy of the notes for planet.
func (s *Store) Notes(planet string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.notes[planet]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

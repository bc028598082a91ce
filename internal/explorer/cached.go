package explorer

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
)

// Cached memoises derived views of a Store. Entries are keyed by dataset ID
// and a hash of the query state, so a Reset followed by a new load never
// serves stale pages.
type Cached struct {
	store *Store
	cache *gocache.Cache
}

// NewCached wraps s with a cache whose entries live for ttl. A non-positive
// ttl keeps entries until the process exits.
func NewCached(s *Store, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cached{store: s, cache: gocache.New(ttl, 2*ttl)}
}

// Store returns the wrapped store.
func (c *Cached) Store() *Store { return c.store }

// Visible returns the page for q, computing it at most once per dataset. The
// returned rows are a copy; a state that cannot be keyed is evaluated uncached.
func (c *Cached) Visible(q QueryState) (Page, error) {
	ds := c.store.Dataset()
	if ds == nil {
		return Query(nil, q)
	}
	key, err := Key(ds.ID, q)
	if err != nil {
		return Query(ds.Rows, q)
	}
	key = "page:" + key
	if v, ok := c.cache.Get(key); ok {
		page := v.(Page)
		page.Rows = slices.Clone(page.Rows)
		return page, nil
	}
	page, err := Query(ds.Rows, q)
	if err != nil {
		return Page{}, err
	}
	c.cache.SetDefault(key, page)
	page.Rows = slices.Clone(page.Rows)
	return page, nil
}

// Filtered returns the unpaginated view for q. The window is ignored.
func (c *Cached) Filtered(q QueryState) ([]catalog.Planet, error) {
	ds := c.store.Dataset()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	q.Window = Window{}
	key, err := Key(ds.ID, q)
	if err != nil {
		return Filter(ds.Rows, q)
	}
	key = "rows:" + key
	if v, ok := c.cache.Get(key); ok {
		return slices.Clone(v.([]catalog.Planet)), nil
	}
	rows, err := Filter(ds.Rows, q)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, rows)
	return slices.Clone(rows), nil
}

// Memo caches an arbitrary value computed from the filtered view of q, such as
// a correlation matrix. kind namespaces the entry. The value is shared between
// callers and must not be modified.
func (c *Cached) Memo(kind string, q QueryState, compute func([]catalog.Planet) (any, error)) (any, error) {
	ds := c.store.Dataset()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	q.Window = Window{}
	key, keyErr := Key(ds.ID, q)
	key = kind + ":" + key
	if keyErr == nil {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
	}
	rows, err := Filter(ds.Rows, q)
	if err != nil {
		return nil, err
	}
	v, err := compute(rows)
	if err != nil {
		return nil, err
	}
	if keyErr == nil {
		c.cache.SetDefault(key, v)
	}
	return v, nil
}

// Flush drops every entry.
func (c *Cached) Flush() { c.cache.Flush() }

// Len reports the number of live entries.
func (c *Cached) Len() int { return c.cache.ItemCount() }

// Key derives a cache key from a dataset ID and a query state. It fails for
// states that do not encode, such as a Range bound of ±Inf or NaN.
func Key(datasetID string, q QueryState) (string, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	h := xxhash.New()
	_, _ = h.WriteString(datasetID)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(b)
	return strconv.FormatUint(h.Sum64(), 16), nil
}

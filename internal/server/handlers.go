package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/exoscope/internal/analysis"
	"github.com/KaramelBytes/exoscope/internal/catalog"
	"github.com/KaramelBytes/exoscope/internal/explorer"
	"github.com/KaramelBytes/exoscope/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Handlers serves the catalog endpoints over a cached store.
type Handlers struct {
	cached     *explorer.Cached
	pageSize   int
	scatterCap int
	logger     *logging.Logger
}

// NewHandlers creates the endpoint handlers.
func NewHandlers(c *explorer.Cached, pageSize, scatterCap int, logger *logging.Logger) *Handlers {
	if pageSize <= 0 {
		pageSize = explorer.DefaultPageSize
	}
	if scatterCap <= 0 {
		scatterCap = analysis.DefaultScatterCap
	}
	return &Handlers{
		cached:     c,
		pageSize:   pageSize,
		scatterCap: scatterCap,
		logger:     logger.Component("api"),
	}
}

// Routes mounts the API under r.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.requireLoaded)
			r.Get("/exoplanets", h.handleList)
			r.Get("/exoplanets/{name}", h.handleGet)
			r.Post("/exoplanets/{name}/notes", h.handleAddNote)
			r.Delete("/exoplanets/{name}/notes/{index}", h.handleDeleteNote)
			r.Get("/correlations", h.handleCorrelations)
			r.Get("/scatter", h.handleScatter)
			r.Get("/stats", h.handleStats)
		})
	})
	r.Get("/healthz", h.handleHealth)
}

func (h *Handlers) requireLoaded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := h.cached.Store()
		if s.Status() != explorer.Loaded {
			h.fail(w, r, unavailable(s.Err()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAPIError(err)
	if ae.StatusCode >= http.StatusInternalServerError && ae.StatusCode != http.StatusServiceUnavailable {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
		)
	}
	_ = render.Render(w, r, ae)
}

// ListResponse is the body of GET /api/exoplanets.
type ListResponse struct {
	explorer.Page
	QueryTime      string         `json:"query_time"`
	FiltersApplied FiltersApplied `json:"filters_applied"`
	Sorting        Sorting        `json:"sorting"`
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	pq, err := parseQuery(r.URL.Query(), h.pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	start := time.Now()
	page, err := h.cached.Visible(pq.State)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.LogQuery(r.Context(), page.Total, len(page.Rows), time.Since(start))
	render.JSON(w, r, ListResponse{
		Page:           page,
		QueryTime:      time.Now().UTC().Format(time.RFC3339),
		FiltersApplied: pq.Applied,
		Sorting:        pq.Sorting,
	})
}

// PlanetResponse is the body of GET /api/exoplanets/{name}.
type PlanetResponse struct {
	Planet      catalog.Planet      `json:"planet"`
	Disposition catalog.Disposition `json:"disposition"`
	Class       *analysis.Class     `json:"class"`
	Notes       []string            `json:"notes"`
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (catalog.Planet, bool) {
	name := chi.URLParam(r, "name")
	p, ok := h.cached.Store().Find(name)
	if !ok {
		h.fail(w, r, notFound("no planet named "+strconv.Quote(name)))
	}
	return p, ok
}

func (h *Handlers) planetResponse(p catalog.Planet) PlanetResponse {
	resp := PlanetResponse{
		Planet:      p,
		Disposition: p.Disposition(),
		Notes:       h.cached.Store().Notes(p.Name),
	}
	if p.RadE.Finite() {
		c := analysis.Classify(p.RadE.Value)
		resp.Class = &c
	}
	return resp
}

func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.cached.Store().Select(p.Name)
	render.JSON(w, r, h.planetResponse(p))
}

// NoteRequest is the body of POST /api/exoplanets/{name}/notes.
type NoteRequest struct {
	Text string `json:"text"`
}

// Bind implements render.Binder.
func (n *NoteRequest) Bind(r *http.Request) error {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return badRequest("note text is empty")
	}
	return nil
}

func (h *Handlers) handleAddNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req NoteRequest
	if err := render.Bind(r, &req); err != nil {
		var ae *APIError
		if !errors.As(err, &ae) {
			err = badRequest("invalid note body: " + err.Error())
		}
		h.fail(w, r, err)
		return
	}
	h.cached.Store().AddNote(p.Name, req.Text)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.planetResponse(p))
}

func (h *Handlers) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.fail(w, r, badRequest("note index must be an integer"))
		return
	}
	h.cached.Store().DeleteNote(p.Name, idx)
	render.JSON(w, r, h.planetResponse(p))
}

// CorrelationResponse is the body of GET /api/correlations.
type CorrelationResponse struct {
	*analysis.CorrMatrix
	FiltersApplied FiltersApplied `json:"filters_applied"`
}

func (h *Handlers) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	pq, err := parseQuery(r.URL.Query(), h.pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cols := splitList(r.URL.Query().Get("columns"))
	if len(cols) == 0 {
		cols = analysis.DefaultColumns()
	}
	v, err := h.cached.Memo("corr:"+strings.Join(cols, ","), pq.State, func(rows []catalog.Planet) (any, error) {
		return analysis.Correlate(rows, cols)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, CorrelationResponse{CorrMatrix: v.(*analysis.CorrMatrix), FiltersApplied: pq.Applied})
}

// ScatterResponse is the body of GET /api/scatter.
type ScatterResponse struct {
	X      string           `json:"x"`
	Y      string           `json:"y"`
	Points []analysis.Point `json:"points"`
	R      analysis.Cell    `json:"r"`
}

func (h *Handlers) handleScatter(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	pq, err := parseQuery(v, h.pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	x, y := strings.TrimSpace(v.Get("x")), strings.TrimSpace(v.Get("y"))
	if x == "" || y == "" {
		h.fail(w, r, badRequest("x and y are required"))
		return
	}
	limit, err := optInt(v, "cap", h.scatterCap)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit <= 0 || limit > h.scatterCap {
		limit = h.scatterCap
	}
	key := "scatter:" + x + "," + y + ":" + strconv.Itoa(limit)
	res, err := h.cached.Memo(key, pq.State, func(rows []catalog.Planet) (any, error) {
		pts, err := analysis.Scatter(rows, x, y, limit)
		if err != nil {
			return nil, err
		}
		m, err := analysis.Correlate(rows, []string{x, y})
		if err != nil {
			return nil, err
		}
		return ScatterResponse{X: x, Y: y, Points: pts, R: m.Values[0][1]}, nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	pq, err := parseQuery(r.URL.Query(), h.pageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ds := h.cached.Store().Dataset()
	if ds == nil {
		h.fail(w, r, explorer.ErrNotLoaded)
		return
	}
	name := ds.Source
	rep, err := h.cached.Memo("stats", pq.State, func(rows []catalog.Planet) (any, error) {
		return analysis.BuildReport(name, rows, analysis.DefaultOptions())
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, rep)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Dataset string `json:"dataset"`
	Rows    int    `json:"rows"`
	Error   string `json:"error,omitempty"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	s := h.cached.Store()
	resp := HealthResponse{Status: "ok", Dataset: s.Status().String(), Rows: s.Dataset().Len()}
	if err := s.Err(); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}

// load runs the background catalog load and reports it to the metrics.
func (h *Handlers) load(ctx context.Context, m *Metrics) {
	s := h.cached.Store()
	if err := s.Load(ctx); err != nil {
		m.loadErrors.Inc()
		return
	}
	h.cached.Flush()
	m.datasetRows.Set(float64(s.Dataset().Len()))
}

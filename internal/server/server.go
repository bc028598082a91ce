package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/exoscope/internal/explorer"
	"github.com/KaramelBytes/exoscope/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP API.
type Options struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	PageSize       int
	ScatterCap     int
	CacheTTL       time.Duration
}

// Server is the read-only HTTP API over one catalog store.
type Server struct {
	opt      Options
	cached   *explorer.Cached
	handlers *Handlers
	metrics  *Metrics
	limiter  *RateLimiter
	logger   *logging.Logger
}

// New builds a server for store. The store may still be unloaded; Run starts
// the load.
func New(store *explorer.Store, opt Options, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Noop()
	}
	cached := explorer.NewCached(store, opt.CacheTTL)
	return &Server{
		opt:      opt,
		cached:   cached,
		handlers: NewHandlers(cached, opt.PageSize, opt.ScatterCap, logger),
		metrics:  NewMetrics(),
		limiter:  NewRateLimiter(opt.RateLimitRPS, opt.RateLimitBurst, logger),
		logger:   logger.Component("server"),
	}
}

// Handler returns the routed handler with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Handler)
		r.Use(render.SetContentType(render.ContentTypeJSON))
		s.handlers.Routes(r)
	})
	return r
}

// Load loads the catalog and updates the dataset metrics.
func (s *Server) Load(ctx context.Context) {
	s.handlers.load(ctx, s.metrics)
}

// Run loads the catalog in the background and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opt.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Load(gctx)
		return nil
	})
	g.Go(func() error {
		s.logger.InfoContext(ctx, "listening", "addr", s.opt.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.InfoContext(sctx, "shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/internal/logger"
	"github.com/dshills/geolog-mcp/internal/report"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second

	// maxBodyBytes bounds a decoded request body
	maxBodyBytes = 1 << 20
)

// Options configures the REST surface
type Options struct {
	AllowedOrigins []string
	// Metrics is mounted at /metrics when set
	Metrics http.Handler
	Logger  *logger.Logger
}

// Server exposes the engine and reports over HTTP
type Server struct {
	engine  *cascade.Engine
	reports *report.Reporter
	opts    Options
	log     *logger.Logger
}

// NewServer creates a new API server
func NewServer(engine *cascade.Engine, reports *report.Reporter, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{engine: engine, reports: reports, opts: opts, log: log}
}

// NewRouter creates a new HTTP router with all routes configured
func (s *Server) NewRouter() *chi.Mux {
	r := chi.NewRouter()

	// stdout carries the MCP protocol, so request logs go through zap
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(s.log.SugaredLogger.Desugar()),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/dirty", s.dirtySummary)
		s.projectRoutes(r)
		s.recordRoutes(r)
	})

	return r
}

// Run serves addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

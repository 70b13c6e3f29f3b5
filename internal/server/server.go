// Package server exposes the labeling pipeline over HTTP.
//
// The API computes poles of inaccessibility on demand, persists results as
// records, and answers spatial queries against an optional pre-labeled
// dataset index.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/razor-1/polylabel/pkg/cache"
	"github.com/razor-1/polylabel/pkg/index"
	"github.com/razor-1/polylabel/pkg/pipeline"
	"github.com/razor-1/polylabel/pkg/store"
)

// Server wires the pipeline runner, record store, and dataset index behind
// an HTTP listener.
type Server struct {
	cfg    Config
	logger *log.Logger
	runner *pipeline.Runner
	store  store.Store
	index  *index.Index
	http   *http.Server
}

// New assembles a server from config. It connects cache and store backends
// and, when a dataset is configured, labels and indexes it up front.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	c, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(c, keyer, logger)

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		_ = runner.Close()
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		runner: runner,
		store:  st,
	}

	if cfg.Dataset.Path != "" {
		if err := s.loadDataset(ctx); err != nil {
			_ = s.closeBackends(ctx)
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestHooks)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/labels", s.handleCreateLabel)
		r.Get("/labels", s.handleListLabels)
		r.Get("/labels/{id}", s.handleGetLabel)
		r.Delete("/labels/{id}", s.handleDeleteLabel)
		r.Get("/dataset/labels", s.handleDatasetQuery)
	})

	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}
	return s, nil
}

func newCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return cache.NewNullCache(), nil
	case "file":
		return cache.NewFileCache(cfg.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return nil, errors.New("unknown cache backend: " + cfg.Backend)
	}
}

func newStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.URI,
			Database: cfg.Database,
		})
	default:
		return nil, errors.New("unknown store backend: " + cfg.Backend)
	}
}

// loadDataset labels the configured GeoJSON file and builds the spatial
// index served by the dataset endpoints.
func (s *Server) loadDataset(ctx context.Context) error {
	result, err := s.runner.Execute(ctx, pipeline.Options{
		Input:     s.cfg.Dataset.Path,
		Precision: s.cfg.Dataset.Precision,
		Formats:   []string{pipeline.FormatJSON},
		Logger:    s.logger,
	})
	if err != nil {
		return err
	}
	s.index = index.Build(result.Labels)
	s.logger.Info("dataset indexed",
		"path", s.cfg.Dataset.Path,
		"features", s.index.Count(),
		"probes", result.Stats.TotalProbes)
	return nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown", "error", err)
	}
	return s.closeBackends(shutdownCtx)
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) closeBackends(ctx context.Context) error {
	err := s.runner.Close()
	if serr := s.store.Close(ctx); serr != nil && err == nil {
		err = serr
	}
	return err
}

// dataset reports whether a dataset index is loaded.
func (s *Server) dataset() (*index.Index, bool) {
	return s.index, s.index != nil
}

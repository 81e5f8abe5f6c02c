// Package server exposes the stack graph pipeline over HTTP.
//
// The API is JSON-only and unauthenticated; it is meant to sit behind the
// local UI, not on the open internet. Clients first create a session bound
// to a repository path, then address everything else through that session
// id. Each session gets its own cache namespace and engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/tjorvi/jujutsuka/pkg/cache"
	"github.com/tjorvi/jujutsuka/pkg/pipeline"
	"github.com/tjorvi/jujutsuka/pkg/session"
	"github.com/tjorvi/jujutsuka/pkg/store"
	"github.com/tjorvi/jujutsuka/pkg/vcs/jj"
)

// Engine is the slice of the jj adapter the mutation handlers need.
// It exists so tests can swap in a fake without a jj binary installed.
type Engine interface {
	Rebase(ctx context.Context, revision, destination string) error
	Squash(ctx context.Context, revision string) error
	Describe(ctx context.Context, revision, message string) error
	NewChange(ctx context.Context, parents ...string) error
	Abandon(ctx context.Context, revision string) error
	Undo(ctx context.Context) error
	SetBookmark(ctx context.Context, name, revision string) error
	DeleteBookmark(ctx context.Context, name string) error
}

// Config carries the server's collaborators.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Cache backs the per-session pipeline caches. Defaults to NullCache.
	Cache cache.Cache

	// Sessions is the workspace session registry. Defaults to in-memory.
	Sessions session.Store

	// Snapshots persists decomposed graphs. Defaults to in-memory.
	Snapshots store.Store

	// Logger defaults to log.Default().
	Logger *log.Logger

	// NewEngine builds the mutation engine for a repository. Defaults to
	// the jj adapter; tests inject fakes.
	NewEngine func(repoPath string, logger *log.Logger) (Engine, error)

	// NewSource overrides the pipeline commit source per session when set.
	// Production leaves it nil and lets the pipeline shell out to jj.
	NewSource func(sess *session.Session) pipeline.Source
}

// Server routes HTTP requests to the pipeline, session registry, engine, and
// snapshot store.
type Server struct {
	cfg      Config
	sessions session.Store
	snaps    store.Store
	cache    cache.Cache
	logger   *log.Logger
}

// New creates a server, applying defaults for absent collaborators.
func New(cfg Config) *Server {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.Snapshots == nil {
		cfg.Snapshots = store.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.NewEngine == nil {
		cfg.NewEngine = func(repoPath string, logger *log.Logger) (Engine, error) {
			return jj.New(repoPath, logger)
		}
	}
	return &Server{
		cfg:      cfg,
		sessions: cfg.Sessions,
		snaps:    cfg.Snapshots,
		cache:    cfg.Cache,
		logger:   cfg.Logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/log", s.handleLog)
			r.Get("/graph.dot", s.handleGraphDOT)
			r.Get("/graph.svg", s.handleGraphSVG)
			r.Post("/snapshot", s.handleSaveSnapshot)

			r.Route("/op", func(r chi.Router) {
				r.Post("/rebase", s.handleRebase)
				r.Post("/squash", s.handleSquash)
				r.Post("/describe", s.handleDescribe)
				r.Post("/new", s.handleNewChange)
				r.Post("/abandon", s.handleAbandon)
				r.Post("/undo", s.handleUndo)
				r.Post("/bookmark/set", s.handleSetBookmark)
				r.Post("/bookmark/delete", s.handleDeleteBookmark)
			})
		})

		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/{hash}", s.handleGetSnapshot)
	})

	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// runner builds a pipeline runner scoped to one session's cache namespace.
func (s *Server) runner(sess *session.Session) *pipeline.Runner {
	keyer := cache.NewScopedKeyer(nil, sess.CacheScope())
	return pipeline.NewRunner(s.cache, keyer, s.logger)
}

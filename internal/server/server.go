// Package server implements the solutionmap HTTP API.
//
// The API serves static renders of the hierarchy and live diagram
// sessions whose animations run on the server's clock:
//
//	GET    /healthz
//	GET    /api/version
//	GET    /api/tree                       hierarchy and construction report
//	POST   /api/tree/reload                reload records from the source
//	GET    /api/render/{view}.{format}     static render, ?click=Energy/Storage
//	POST   /api/diagrams                   start a session {"view": "icicle"}
//	GET    /api/diagrams/{id}              current frame as SVG
//	GET    /api/diagrams/{id}/frame        current frame as JSON
//	GET    /api/diagrams/{id}/stream       frames as server-sent events
//	POST   /api/diagrams/{id}/click/{node} click a token or cell index
//	POST   /api/diagrams/{id}/click        click {"ref": "Energy/Storage"}
//	POST   /api/diagrams/{id}/up
//	POST   /api/diagrams/{id}/reset
//	DELETE /api/diagrams/{id}
//
// Errors are JSON objects {"error": CODE, "message": text} with the
// status from errors.HTTPStatus.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/solutionmap/pkg/cache"
	"github.com/matzehuels/solutionmap/pkg/config"
	"github.com/matzehuels/solutionmap/pkg/pipeline"
	"github.com/matzehuels/solutionmap/pkg/records"
	"github.com/matzehuels/solutionmap/pkg/session"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	Runner   *pipeline.Runner
	Source   records.Source
	Config   config.Config
	Sessions *session.Manager
	Logger   *log.Logger
}

// Server serves the API. The hierarchy is loaded on first use and kept
// until reloaded.
type Server struct {
	opts Options

	load singleflight.Group
	mu   sync.RWMutex
	tree *pipeline.Built
}

// New returns a server. A nil Runner or Sessions gets an in-memory cached runner
// and a manager using the configured session TTL.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(cache.Instrument(cache.NewMemoryCache()), nil, opts.Logger)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager(session.Options{
			TTL:    time.Duration(opts.Config.Server.SessionTTL),
			Logger: opts.Logger,
		})
	}
	return &Server{opts: opts}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/tree", s.handleTree)
		r.Post("/tree/reload", s.handleReload)
		r.Get("/render/{view}.{format}", s.handleRender)

		r.Post("/diagrams", s.handleCreate)
		r.Route("/diagrams/{id}", func(r chi.Router) {
			r.Get("/", s.handleSVG)
			r.Delete("/", s.handleDelete)
			r.Get("/frame", s.handleFrame)
			r.Get("/stream", s.handleStream)
			r.Post("/click", s.handleClickBody)
			r.Post("/click/{node}", s.handleClick)
			r.Post("/up", s.handleUp)
			r.Post("/reset", s.handleReset)
		})
	})
	return r
}

// Tree returns the hierarchy, loading it on first use.
func (s *Server) Tree(ctx context.Context) (*pipeline.Built, error) {
	s.mu.RLock()
	b := s.tree
	s.mu.RUnlock()
	if b != nil {
		return b, nil
	}
	return s.Reload(ctx)
}

// Reload loads the records again and rebuilds the hierarchy. Concurrent
// reloads share one load.
func (s *Server) Reload(ctx context.Context) (*pipeline.Built, error) {
	v, err, _ := s.load.Do("tree", func() (any, error) {
		c, err := s.opts.Runner.Load(ctx, s.opts.Source)
		if err != nil {
			return nil, err
		}
		b, err := s.opts.Runner.Build(ctx, c)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.tree = b
		s.mu.Unlock()
		s.opts.Logger.Info("hierarchy loaded", "records", c.Len(), "source", pipeline.DescribeSource(s.opts.Source))
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pipeline.Built), nil
}

// ListenAndServe serves on addr until ctx is done, sweeping idle
// sessions alongside.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.opts.Logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := s.opts.Sessions.Run(ctx, session.DefaultSweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

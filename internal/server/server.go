// Package server exposes the layout engine over a small local JSON API so a
// desktop renderer can drive the same layout the terminal view shows.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Gaurav-Gosain/dashpanel/internal/engine"
	"github.com/Gaurav-Gosain/dashpanel/internal/logging"
	"github.com/Gaurav-Gosain/dashpanel/internal/widget"
)

// DefaultShutdownTimeout bounds graceful shutdown when Options leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// maxBodyBytes caps request bodies. Layout payloads are tiny.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Engine          *engine.Engine
	Widgets         *widget.Registry
	Addr            string
	AllowedOrigin   string
	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// Server is the HTTP bridge to one engine.
type Server struct {
	eng     *engine.Engine
	widgets *widget.Registry
	addr    string
	origin  string
	timeout time.Duration
	log     *log.Logger
	router  chi.Router
}

// New builds a server and its routes. Nothing listens until Run.
func New(opts Options) *Server {
	if opts.Widgets == nil {
		opts.Widgets = widget.Default()
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		eng:     opts.Engine,
		widgets: opts.Widgets,
		addr:    opts.Addr,
		origin:  opts.AllowedOrigin,
		timeout: opts.ShutdownTimeout,
		log:     logging.OrDiscard(opts.Logger),
	}
	s.router = s.routes()
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	r.Use(noCacheMiddleware(s.origin))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/layout", s.handleLayout)
		r.Put("/viewport", s.handleViewport)
		r.Put("/visible", s.handleVisible)
		r.Post("/reset", s.handleReset)

		r.Route("/panels", func(r chi.Router) {
			r.Get("/", s.handlePanels)
			r.Post("/{id}/front", s.handleFront)
			r.Post("/{id}/drag/{phase}", s.handleDrag)
			r.Post("/{id}/resize/{phase}", s.handleResize)
		})

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", s.handleListPresets)
			r.Post("/", s.handleSavePreset)
			r.Post("/{name}/load", s.handleLoadPreset)
			r.Delete("/{name}", s.handleDeletePreset)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return logging.WithLogger(context.Background(), s.log) },
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("layout API listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("layout API stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down layout API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down layout API: %w", err)
	}
	return nil
}

// Package server exposes a snapshot store over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /snapshots                list snapshot ids
//	POST   /snapshots                store an envelope under a new id
//	PUT    /snapshots/{id}           store an envelope under id
//	GET    /snapshots/{id}           fetch an envelope
//	DELETE /snapshots/{id}
//	GET    /snapshots/{id}/stats     envelope statistics as JSON
//	GET    /snapshots/{id}/dot       Graphviz DOT, ?detailed=true for fields
//	GET    /snapshots/{id}/svg       rendered diagram
//
// Uploaded envelopes are validated before they are stored but never
// deserialized, so the server needs no knowledge of the entities its
// clients register.
package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/observability"
	"github.com/matzehuels/objgraph/pkg/render"
	"github.com/matzehuels/objgraph/pkg/snapshot"
	"github.com/matzehuels/objgraph/pkg/store"
)

// MaxBodyBytes bounds uploaded envelopes.
const MaxBodyBytes = 32 << 20

// Server is the snapshot HTTP service.
type Server struct {
	runner *snapshot.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a server on top of runner. A nil logger discards output.
func New(runner *snapshot.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.put)
			r.Get("/", s.get)
			r.Delete("/", s.delete)
			r.Get("/stats", s.stats)
			r.Get("/dot", s.dot)
			r.Get("/svg", s.svg)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	ids, err := s.runner.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, store.NewID(), http.StatusCreated)
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	env, err := envelope.Read(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read envelope"))
		return
	}
	if err := s.runner.SaveEnvelope(r.Context(), id, env); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, map[string]any{"id": id, "records": env.Len()})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*envelope.Envelope, bool) {
	env, err := s.runner.LoadEnvelope(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return env, true
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	env, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	env, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, env.Stats())
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) (string, bool) {
	env, ok := s.load(w, r)
	if !ok {
		return "", false
	}
	g, err := render.Build(env)
	if err != nil {
		s.fail(w, r, err)
		return "", false
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	return render.ToDOT(g, render.Options{Detailed: detailed}), true
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	dot, ok := s.graph(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) svg(w http.ResponseWriter, r *http.Request) {
	dot, ok := s.graph(w, r)
	if !ok {
		return
	}
	svg, err := render.RenderSVG(r.Context(), dot)
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// Package server implements the svgslice preview HTTP server.
//
// The server exposes the slicing pipeline over HTTP and keeps a run
// history so sliced documents can be fetched later:
//
//	POST /slice                    slice a document, record the run
//	GET  /runs                     list recent runs
//	GET  /runs/{id}                fetch one run's metadata
//	GET  /runs/{id}/slices/{name}  fetch one sliced SVG document
//	GET  /healthz                  liveness probe
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	svgerrors "github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/pipeline"
	"github.com/matzehuels/svgslice/pkg/profile"
	"github.com/matzehuels/svgslice/pkg/store"
)

// maxSourceBytes caps the request body for POST /slice.
const maxSourceBytes = 16 << 20

// defaultListLimit is how many runs GET /runs returns without a limit param.
const defaultListLimit = 50

// Server wires the pipeline runner and run store into an HTTP handler.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	profile *profile.Profile
	logger  *log.Logger
}

// New creates a server. A nil profile selects profile.Default() and a
// nil logger selects log.Default().
func New(runner *pipeline.Runner, st store.Store, p *profile.Profile, logger *log.Logger) *Server {
	if p == nil {
		p = profile.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, profile: p, logger: logger}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/slice", s.handleSlice)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/runs/{id}/slices/{name}", s.handleGetSlice)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSlice runs the pipeline on the posted document and records the
// run. The source name comes from the X-Source-Name header when set.
func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(io.LimitReader(r.Body, maxSourceBytes))
	if err != nil {
		s.writeError(w, svgerrors.Wrap(svgerrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Source:     source,
		SourceName: r.Header.Get("X-Source-Name"),
		Profile:    s.profile,
		NoCache:    r.URL.Query().Get("no_cache") == "true",
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	run := &store.Run{
		ID:         result.RunID,
		SourceName: result.SourceName,
		CreatedAt:  time.Now().UTC(),
		Clusters:   result.Clusters,
		SVGs:       make(map[string][]byte, len(result.Slices)),
	}
	for _, sl := range result.Slices {
		run.Slices = append(run.Slices, store.SliceMeta{Name: sl.Name, Viewport: sl.Viewport})
		run.SVGs[sl.Name] = sl.SVG
	}
	if err := s.store.Put(r.Context(), run); err != nil {
		s.logger.Error("store run", "id", run.ID, "err", err)
		s.writeError(w, svgerrors.Wrap(svgerrors.ErrCodeInternal, err, "store run"))
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, svgerrors.New(svgerrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, svgerrors.Wrap(svgerrors.ErrCodeInternal, err, "list runs"))
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run := s.lookupRun(w, r)
	if run == nil {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetSlice(w http.ResponseWriter, r *http.Request) {
	run := s.lookupRun(w, r)
	if run == nil {
		return
	}
	name := chi.URLParam(r, "name")
	svg := run.Slice(name)
	if svg == nil {
		s.writeError(w, svgerrors.New(svgerrors.ErrCodeNotFound, "run %s has no slice %q", run.ID, name))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// lookupRun fetches the run named in the URL, writing the error
// response itself when the run cannot be served.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) *store.Run {
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, svgerrors.New(svgerrors.ErrCodeRunNotFound, "run %s not found", id))
		} else {
			s.writeError(w, svgerrors.Wrap(svgerrors.ErrCodeInternal, err, "get run"))
		}
		return nil
	}
	return run
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps pipeline error codes onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch svgerrors.GetCode(err) {
	case svgerrors.ErrCodeInvalidInput, svgerrors.ErrCodeInvalidDocument, svgerrors.ErrCodeInvalidProfile:
		status = http.StatusBadRequest
	case svgerrors.ErrCodeInsufficientClusters:
		status = http.StatusUnprocessableEntity
	case svgerrors.ErrCodeNotFound, svgerrors.ErrCodeRunNotFound, svgerrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: svgerrors.UserMessage(err),
		Code:  string(svgerrors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests is a chi middleware that logs each request with its
// status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

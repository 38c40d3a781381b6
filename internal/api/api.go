// Package api serves the type forest and its edit operations over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dbsmedya/dicttree/internal/console"
	"github.com/dbsmedya/dicttree/internal/lock"
	"github.com/dbsmedya/dicttree/internal/logger"
	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

// Handler serves /api/types and /metrics.
type Handler struct {
	session  *console.Session
	logger   *logger.Logger
	gatherer prometheus.Gatherer
}

// New creates a Handler. gatherer may be nil to leave /metrics unregistered.
func New(session *console.Session, log *logger.Logger, gatherer prometheus.Gatherer) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{session: session, logger: log, gatherer: gatherer}
}

// Router returns the routes mounted on a fresh chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/types", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Delete("/", h.handleDelete)
		r.Get("/options", h.handleOptions)
		r.Get("/stats", h.handleStats)
		r.Post("/reload", h.handleReload)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Get("/{id}/parent-options", h.handleParentOptions)
	})

	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debugw("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("Request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, console.ErrInvalidParent),
		errors.Is(err, console.ErrTypeKeyImmutable),
		errors.Is(err, taxonomy.ErrCycleDetected):
		return http.StatusConflict
	case errors.Is(err, lock.ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Join(store.ErrInvalidRequest, errors.New("id must be a positive integer"))
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return errors.Join(store.ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(store.ErrInvalidRequest, err)
	}
	return nil
}

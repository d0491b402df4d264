// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/tracescore/internal/app"
	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
	"github.com/okian/tracescore/internal/domain/types"
	"github.com/okian/tracescore/pkg/logger"
)

const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Smooth(ctx context.Context, stroke geometry.Stroke, precision int) (geometry.Stroke, error)
	Score(ctx context.Context, a model.Attempt) (scoring.Subscores, error)
	ScoreBatch(ctx context.Context, attempts []model.Attempt) (model.Batch, error)
	Analyze(ctx context.Context, stroke geometry.Stroke, c geometry.Circle) (model.Diagnostics, error)
	DefaultPrecision() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	smoothHandler  *SmoothHandler
	scoreHandler   *ScoreHandler
	analyzeHandler *AnalyzeHandler

	maxBodyBytes int64
	logger       logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	base := handlerBase{maxBodyBytes: s.maxBodyBytes, logger: s.logger}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.smoothHandler = &SmoothHandler{handlerBase: base, deps: deps}
	s.scoreHandler = &ScoreHandler{handlerBase: base, deps: deps}
	s.analyzeHandler = &AnalyzeHandler{handlerBase: base, deps: deps}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/smooth", MetricsMiddleware(s.smoothHandler.HandleSmooth, "smooth"))
	mux.HandleFunc("/v1/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/v1/score/batch", MetricsMiddleware(s.scoreHandler.HandleBatch, "score_batch"))
	mux.HandleFunc("/v1/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
}

// handlerBase carries what every JSON handler needs.
type handlerBase struct {
	maxBodyBytes int64
	logger       logger.Logger
}

// decode reads a JSON body of at most maxBodyBytes into v.
func (h handlerBase) decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return WrapKind(op, ErrPayloadTooLarge, err)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// fail writes err with the status its kind maps to.
func (h handlerBase) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	switch status {
	case http.StatusInternalServerError:
		h.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	case http.StatusServiceUnavailable:
		h.logger.Debug(r.Context(), "service unavailable",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// allow reports whether r uses method and writes 405 otherwise.
func allow(w http.ResponseWriter, r *http.Request, op, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, ErrPayloadTooLarge), errors.Is(err, service.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrServiceStopped):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, service.ErrBatchTimeout):
		return http.StatusInternalServerError, "batch_timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

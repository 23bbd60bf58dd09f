// Package server exposes the pricing registry over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bcdannyboy/optval/batch"
	"github.com/bcdannyboy/optval/metrics"
	"github.com/bcdannyboy/optval/models"
	"github.com/bcdannyboy/optval/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/xhhuango/json"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Server struct {
	registry       *pricing.Registry
	cache          Cache
	defaults       batch.Defaults
	logger         *zap.Logger
	requestTimeout time.Duration
}

type Option func(*Server)

// WithCache enables the result cache.
func WithCache(c Cache) Option { return func(s *Server) { s.cache = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = l } }

func WithDefaults(d batch.Defaults) Option { return func(s *Server) { s.defaults = d } }

func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.requestTimeout = d } }

func New(reg *pricing.Registry, opts ...Option) *Server {
	s := &Server{
		registry:       reg,
		logger:         zap.NewNop(),
		requestTimeout: 55 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/price", s.handlePrice)
		r.Get("/methods", s.handleMethods)
	})
	return r
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var job batch.Job
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&job); err != nil {
		writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	id := job.ID
	if id == "" {
		id = uuid.NewString()
	}

	key, err := cacheKey(job, s.defaults)
	if err != nil {
		s.logger.Error("cache key", zap.Error(err))
		key = ""
	}
	if res, ok := s.cached(r, key); ok {
		res.ID = id
		writeJSON(w, http.StatusOK, res)
		return
	}

	job.ID = id
	res := batch.PriceJob(s.registry, job, s.defaults)
	if err := res.Err(); err != nil {
		s.logger.Info("pricing failed",
			zap.String("id", id),
			zap.Stringer("method", job.Market.Method),
			zap.Stringer("option", job.Option.Kind),
			zap.Error(err),
		)
		writeError(w, err.Error(), statusFor(err))
		return
	}
	s.store(r, key, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) cached(r *http.Request, key string) (batch.Result, bool) {
	var res batch.Result
	if s.cache == nil || key == "" {
		return res, false
	}
	data, ok, err := s.cache.Get(r.Context(), key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.Error(err))
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return res, false
	}
	if !ok || json.Unmarshal(data, &res) != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return res, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return res, true
}

func (s *Server) store(r *http.Request, key string, res batch.Result) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(r.Context(), key, data); err != nil {
		s.logger.Warn("cache write failed", zap.Error(err))
	}
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]pricing.Key{"methods": s.registry.Keys()})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// statusFor maps the pricing error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMethodNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNumerical):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

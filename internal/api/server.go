// Package api exposes the HTTP interface for the beacon service.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cdoyle/beacon/internal/dispatch"
	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/faults"
	"github.com/cdoyle/beacon/internal/metrics"
)

// maxBodyBytes caps event submission payloads. Anything larger is cut off
// and left to the assembler's parse-failure path.
const maxBodyBytes = 64 << 10

const corsOrigin = "*"

// Geo and network hints injected by the fronting edge. Missing headers
// fall back per the event.Meta contract.
const (
	headerTrace     = "Cf-Ray"
	headerCountry   = "CF-IPCountry"
	headerRegion    = "CF-Region"
	headerCity      = "CF-IPCity"
	headerISP       = "CF-ISP"
	headerLatitude  = "CF-IPLatitude"
	headerLongitude = "CF-IPLongitude"
	headerRealIP    = "X-Real-IP"
)

// Server wires HTTP handlers to the dispatcher.
type Server struct {
	router     chi.Router
	dispatcher *dispatch.Dispatcher
	hub        *faults.Hub
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(dispatcher *dispatch.Dispatcher, hub *faults.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Options("/*", s.preflight)
	r.Get("/*", s.dispatchRequest)
	r.Post("/*", s.dispatchRequest)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// Downstream checks are deliberately absent: the service is designed
	// to answer even when the cache or store is unreachable.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// preflight answers CORS preflight probes; plain OPTIONS gets the allowed
// method list.
func (s *Server) preflight(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != "" &&
		r.Header.Get("Access-Control-Request-Headers") != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", corsOrigin)
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,POST,OPTIONS")
		h.Set("Access-Control-Max-Age", "86400")
		h.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Allow", "GET, HEAD, POST, OPTIONS")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatchRequest(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}

	res := s.dispatcher.Handle(r.Context(), dispatch.Request{
		Method:      r.Method,
		URL:         r.URL.String(),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
		Meta:        metaFromRequest(r),
	})

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", corsOrigin)
	if res.ContentType != "" {
		h.Set("Content-Type", res.ContentType)
	}
	if res.CacheControl != "" {
		h.Set("Cache-Control", res.CacheControl)
	}
	if _, err := w.Write([]byte(res.Body)); err != nil {
		s.logger.Debug("write response failed", zap.Error(err))
	}
}

func metaFromRequest(r *http.Request) event.Meta {
	return event.Meta{
		TraceID:   r.Header.Get(headerTrace),
		Country:   r.Header.Get(headerCountry),
		Region:    r.Header.Get(headerRegion),
		City:      r.Header.Get(headerCity),
		ISP:       r.Header.Get(headerISP),
		Latitude:  r.Header.Get(headerLatitude),
		Longitude: r.Header.Get(headerLongitude),
		Referer:   r.Header.Get("Referer"),
		IP:        r.Header.Get(headerRealIP),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

// recoverMiddleware converts panics into the standard empty success
// response: no failure mode may surface an error status to the caller.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.hub.Emit(faults.Event{Stage: faults.StagePanic, Err: panicError(rec)})
				w.Header().Set("Access-Control-Allow-Origin", corsOrigin)
				w.WriteHeader(http.StatusOK)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"showroom/internal/config"
	"showroom/internal/domain"
	"showroom/internal/export"
	"showroom/internal/logging"
	"showroom/internal/metrics"
	"showroom/internal/tools"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes       = 1 << 20
	defaultEventsLimit = 50
)

// HTTPServer exposes the tool registry as a JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	registry *tools.Registry
	bookings domain.BookingService
	audit    domain.AuditLog
	guard    *Guard
	server   *http.Server
	log      *zerolog.Logger
}

// NewHTTPServer wires the routes. audit may be nil, which disables the events route.
func NewHTTPServer(
	cfg config.APIConfig,
	registry *tools.Registry,
	bookings domain.BookingService,
	audit domain.AuditLog,
	guard *Guard,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		registry: registry,
		bookings: bookings,
		audit:    audit,
		guard:    guard,
		log:      logging.Component(logger, "http"),
	}

	router := httprouter.New()
	router.GET("/healthz", srv.instrument("healthz", srv.handleHealth))
	router.GET("/api/v1/tools", srv.instrument("tools_list", srv.handleListTools))
	router.POST("/api/v1/tools/:name", srv.instrument("tools_call", srv.handleCallTool))
	router.GET("/api/v1/bookings/export.xlsx", srv.instrument("bookings_export", srv.handleExport))
	if audit != nil {
		router.GET("/api/v1/events", srv.instrument("events", srv.handleEvents))
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the routed handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleListTools(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.authorize(w, r, "") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Tools()})
}

func (s *HTTPServer) handleCallTool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	tool, ok := s.registry.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s: %s", tools.ErrUnknownTool, name))
		return
	}
	if !s.authorize(w, r, tool.Permission) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.registry.Call(r.Context(), name, body)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.authorize(w, r, tools.PermissionRead) {
		return
	}

	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))
	records, err := s.bookings.List(r.Context(), includeDeleted)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, records); err != nil {
		s.log.Error().Err(err).Msg("Failed to build workbook")
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.authorize(w, r, tools.PermissionRead) {
		return
	}

	limit := int64(defaultEventsLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "audit feed unavailable")
		return
	}

	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		if json.Valid(e) {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// authorize runs the guard and writes the rejection when it fails.
func (s *HTTPServer) authorize(w http.ResponseWriter, r *http.Request, permission string) bool {
	if s.guard == nil {
		return true
	}
	if err := s.guard.Check(r.Context(), s.credentials(r), permission); err != nil {
		writeError(w, httpStatus(err), err.Error())
		return false
	}
	return true
}

func (s *HTTPServer) credentials(r *http.Request) Credentials {
	creds := Credentials{Remote: clientKeyUnknown}
	if s.guard != nil {
		creds.APIKey = strings.TrimSpace(r.Header.Get(s.guard.apiKeyHeader()))
		creds.Extra = strings.TrimSpace(r.Header.Get(s.guard.extraHeader()))
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		creds.Remote = host
	}
	return creds
}

// instrument logs the request and counts it under a fixed route label.
func (s *HTTPServer) instrument(route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r, ps)

		metrics.IncHTTP(route, strconv.Itoa(recorder.status))
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

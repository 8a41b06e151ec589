package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NoID1290/WeatherWatch/internal/forecast"
	"github.com/NoID1290/WeatherWatch/internal/logger"
	"github.com/NoID1290/WeatherWatch/internal/models"
	"github.com/NoID1290/WeatherWatch/internal/render"
	"github.com/NoID1290/WeatherWatch/internal/report"
)

// ReadyChecker reports whether the monitor has completed at least one pass
type ReadyChecker func() bool

// Handler handles HTTP requests for the API
type Handler struct {
	collector *report.Collector
	forecast  forecast.Querier
	ready     ReadyChecker
	version   string
	buildTime string
	gitCommit string
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(collector *report.Collector, fc forecast.Querier, ready ReadyChecker, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		collector: collector,
		forecast:  fc,
		ready:     ready,
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/alerts/status", h.alertsStatusHandler)
		r.Get("/forecast/{location}", h.forecastHandler)
		r.Get("/still/{location}", h.stillHandler)
	})

	r.Get("/healthz", h.healthHandler)
	r.Get("/readyz", h.readinessHandler)
	r.Get("/version", h.versionHandler)

	r.Get("/", h.dashboardHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler reports ready once the monitor has completed a pass
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	statusCode := http.StatusOK
	if h.ready == nil || !h.ready() {
		status = "waiting for first pass"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// StatusResponse is the envelope for GET /api/alerts/status
type StatusResponse struct {
	PerSource []models.SourceStatus `json:"per_source"`
	Timestamp time.Time             `json:"timestamp"`
}

// alertsStatusHandler handles GET /api/alerts/status
func (h *Handler) alertsStatusHandler(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		PerSource: h.collector.Snapshot(),
		Timestamp: time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// forecastHandler handles GET /api/forecast/{location}
func (h *Handler) forecastHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	location := chi.URLParam(r, "location")

	if h.forecast == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "Forecast not configured")
		return
	}

	rec, err := h.forecast.Query(ctx, location)
	if err != nil {
		logger.WithContext(ctx).Error("Forecast query failed", "location", location, "error", err)
		h.writeErrorResponse(w, r, http.StatusBadGateway, "Forecast backend unavailable")
		return
	}
	if rec == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Unknown location")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, rec)
}

// stillHandler handles GET /api/still/{location}
func (h *Handler) stillHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	location := chi.URLParam(r, "location")

	width, err := parseDimension(r, "width", 640)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseDimension(r, "height", 360)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if h.forecast == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "Forecast not configured")
		return
	}

	rec, err := h.forecast.Query(ctx, location)
	if err != nil {
		logger.WithContext(ctx).Error("Forecast query failed", "location", location, "error", err)
		h.writeErrorResponse(w, r, http.StatusBadGateway, "Forecast backend unavailable")
		return
	}
	if rec == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Unknown location")
		return
	}

	img, err := render.RenderStill(rec, width, height)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func parseDimension(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &badDimensionError{key: key, raw: raw}
	}
	return v, nil
}

type badDimensionError struct {
	key string
	raw string
}

func (e *badDimensionError) Error() string {
	return "invalid " + e.key + ": " + e.raw
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

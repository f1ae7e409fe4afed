package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dattuog/audio-analysis-service/internal/config"
	"github.com/Dattuog/audio-analysis-service/internal/metrics"
	"github.com/Dattuog/audio-analysis-service/internal/protocol"
	"github.com/Dattuog/audio-analysis-service/internal/session"
)

// HTTPServer provides the control API, monitoring endpoints and the
// WebSocket upgrade entry point
type HTTPServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	registry *session.Registry
	metrics  *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg *config.Config, logger *slog.Logger, registry *session.Registry, m *metrics.Metrics) *HTTPServer {
	h := &HTTPServer{
		logger:    logger,
		config:    cfg,
		registry:  registry,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Session lifecycle endpoints
	mux.HandleFunc("/start-audio-analysis", h.withMetrics("/start-audio-analysis", h.handleStart))
	mux.HandleFunc("/stop-audio-analysis", h.withMetrics("/stop-audio-analysis", h.handleStop))

	// Monitoring endpoints
	mux.HandleFunc("/active-sessions", h.withMetrics("/active-sessions", h.handleSessions))
	mux.HandleFunc("/session/", h.withMetrics("/session/{id}", h.handleSessionDetail))
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// WebSocket audio streaming (records own metrics)
	mux.HandleFunc("/ws/audio-stream/", h.handleAudioStream)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// Handler returns the configured request mux, for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, protocol.ErrorResponse{Success: false, Message: message})
}

// handleStart implements the POST /start-audio-analysis endpoint
func (h *HTTPServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req protocol.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.registry.Start(req.RoomName, req.ParticipantIdentity)
	if err != nil {
		if errors.Is(err, session.ErrDuplicateSession) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, protocol.StartResponse{
		Success:   true,
		SessionID: s.ID(),
		Message:   fmt.Sprintf("Audio analysis started for %s in %s", req.ParticipantIdentity, req.RoomName),
	})
}

// handleStop implements the POST /stop-audio-analysis endpoint
func (h *HTTPServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req protocol.StopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.registry.Stop(req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, protocol.StopResponse{
		Success:     true,
		Message:     "Audio analysis stopped",
		SessionInfo: &summary,
	})
}

// handleSessions implements the GET /active-sessions endpoint
func (h *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos := h.registry.List()
	h.writeJSON(w, http.StatusOK, protocol.SessionsResponse{
		ActiveSessions: infos,
		Count:          len(infos),
	})
}

// handleSessionDetail implements the GET /session/{session_id} endpoint
func (h *HTTPServer) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/session/")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "session ID required")
		return
	}

	s, err := h.registry.Get(sessionID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, s.Snapshot())
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, protocol.HealthResponse{
		Status:         "healthy",
		ActiveSessions: h.registry.Count(),
		Timestamp:      time.Now().UTC(),
	})
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc := map[string]interface{}{
		"service": "audio-analysis-service",
		"version": "1.0.0",
		"uptime":  time.Since(h.startTime).String(),
		"endpoints": map[string]string{
			"POST /start-audio-analysis":       "Start an analysis session for a (room, participant) pair",
			"POST /stop-audio-analysis":        "Stop a session and return its summary",
			"GET /active-sessions":             "List all active sessions",
			"GET /session/{session_id}":        "Get one session's details",
			"GET /health":                      "Health check",
			"GET /metrics":                     "Prometheus metrics",
			"WS /ws/audio-stream/{session_id}": "Stream PCM16 audio, receive analysis frames",
		},
	}

	h.writeJSON(w, http.StatusOK, doc)
}

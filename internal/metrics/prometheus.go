package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the audio analysis service
type Metrics struct {
	// Session metrics
	ActiveSessions    prometheus.Gauge
	SessionsCreated   prometheus.Counter
	SessionsDestroyed prometheus.Counter
	SessionDuration   prometheus.Histogram

	// Analysis metrics
	FramesProcessed     prometheus.Counter
	FrameProcessingTime prometheus.Histogram
	SilentFrames        prometheus.Counter
	VoicedFrames        prometheus.Counter
	DecodeErrors        prometheus.Counter
	ChunkSize           prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Session metrics
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "audio_analysis_active_sessions",
			Help: "Current number of active analysis sessions",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audio_analysis_sessions_created_total",
			Help: "Total number of analysis sessions created",
		}),
		SessionsDestroyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audio_analysis_sessions_destroyed_total",
			Help: "Total number of analysis sessions destroyed",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "audio_analysis_session_duration_seconds",
			Help:    "Duration of analysis sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		// Analysis metrics
		FramesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audio_analysis_frames_processed_total",
			Help: "Total number of audio chunks analyzed",
		}),
		FrameProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "audio_analysis_frame_processing_duration_seconds",
			Help:    "Time spent analyzing a single audio chunk",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		}),
		SilentFrames: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audio_analysis_silent_frames_total",
			Help: "Total number of frames classified as silence",
		}),
		VoicedFrames: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audio_analysis_voiced_frames_total",
			Help: "Total number of frames with a detected pitch",
		}),
		DecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audio_analysis_decode_errors_total",
			Help: "Total number of malformed audio chunks rejected",
		}),
		ChunkSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "audio_analysis_chunk_size_bytes",
			Help:    "Size of received audio chunks in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 2, 10), // 256B to ~128KB
		}),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "audio_analysis_ws_connections",
			Help: "Current number of open WebSocket streaming connections",
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audio_analysis_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audio_analysis_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audio_analysis_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// SetActiveSessions sets the current number of active sessions
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// RecordSessionCreated increments the sessions created counter
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
}

// RecordSessionDestroyed increments the sessions destroyed counter and records duration
func (m *Metrics) RecordSessionDestroyed(durationSeconds float64) {
	m.SessionsDestroyed.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordFrame records one analyzed audio chunk
func (m *Metrics) RecordFrame(silent, voiced bool, chunkBytes int, processingSeconds float64) {
	m.FramesProcessed.Inc()
	if silent {
		m.SilentFrames.Inc()
	}
	if voiced {
		m.VoicedFrames.Inc()
	}
	m.ChunkSize.Observe(float64(chunkBytes))
	m.FrameProcessingTime.Observe(processingSeconds)
}

// RecordDecodeError increments the decode errors counter
func (m *Metrics) RecordDecodeError() {
	m.DecodeErrors.Inc()
}

// WSConnectionOpened increments the WebSocket connections gauge
func (m *Metrics) WSConnectionOpened() {
	m.WSConnections.Inc()
}

// WSConnectionClosed decrements the WebSocket connections gauge
func (m *Metrics) WSConnectionClosed() {
	m.WSConnections.Dec()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}

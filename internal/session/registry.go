package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dattuog/audio-analysis-service/internal/analysis"
	"github.com/Dattuog/audio-analysis-service/internal/audio"
	"github.com/Dattuog/audio-analysis-service/internal/metrics"
)

// RegistryConfig contains registry lifecycle configuration.
type RegistryConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	BufferSamples int
	SampleRate    int

	// RecordingDir enables per-session WAV capture when non-empty.
	RecordingDir string
}

// Registry is the concurrency-safe mapping from session identifier to
// Session. It is the single shared mutable resource: structural mutations
// are serialized by its lock, while per-session state is guarded by each
// session's own mutex so Feed calls for different sessions do not block
// each other.
type Registry struct {
	logger   *slog.Logger
	pipeline *analysis.Pipeline
	metrics  *metrics.Metrics
	cfg      RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Session
	pairs    map[string]string // (room, participant) -> session ID

	ctx     context.Context
	cancel  context.CancelFunc
	cleanup chan struct{}
}

// NewRegistry creates a registry and starts its idle-reaping sweep. The
// metrics handle may be nil in tests.
func NewRegistry(logger *slog.Logger, pipeline *analysis.Pipeline, m *metrics.Metrics, cfg RegistryConfig) *Registry {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Registry{
		logger:   logger,
		pipeline: pipeline,
		metrics:  m,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		pairs:    make(map[string]string),
		ctx:      ctx,
		cancel:   cancel,
		cleanup:  make(chan struct{}),
	}

	go r.startSweepRoutine()

	return r
}

func pairKey(room, participant string) string {
	return room + "/" + participant
}

// Start creates a session for the (room, participant) pair. It fails with
// ErrDuplicateSession while an active session for the pair exists; the
// first session is never silently replaced.
func (r *Registry) Start(room, participant string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(room, participant)
	if existing, ok := r.pairs[key]; ok {
		r.logger.Warn("Rejected duplicate session start",
			slog.String("room", room),
			slog.String("participant", participant),
			slog.String("existing_session_id", existing),
		)
		return nil, fmt.Errorf("%s/%s: %w", room, participant, ErrDuplicateSession)
	}

	s := newSession(room, participant, r.pipeline, r.cfg.BufferSamples)
	if r.cfg.RecordingDir != "" {
		rec, err := audio.NewRecorder(r.cfg.RecordingDir, room, s.ID(), r.cfg.SampleRate)
		if err != nil {
			// Recording is best-effort; analysis proceeds without it.
			r.logger.Warn("Failed to open session recording",
				slog.String("session_id", s.ID()),
				slog.String("error", err.Error()),
			)
		} else {
			s.recorder = rec
		}
	}
	r.sessions[s.ID()] = s
	r.pairs[key] = s.ID()

	if r.metrics != nil {
		r.metrics.RecordSessionCreated()
		r.metrics.SetActiveSessions(len(r.sessions))
	}

	r.logger.Info("Created analysis session",
		slog.String("session_id", s.ID()),
		slog.String("room", room),
		slog.String("participant", participant),
	)

	return s, nil
}

// Get looks up a session by identifier.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return s, nil
}

// Feed routes one audio chunk to the named session.
func (r *Registry) Feed(sessionID string, chunk []byte) (*analysis.Frame, error) {
	s, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Feed(chunk)
}

// Stop removes the session from the registry and closes it, returning the
// terminal summary. After Stop the identifier is retired; lookups for it
// fail with ErrNotFound.
func (r *Registry) Stop(sessionID string) (Summary, error) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return Summary{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	delete(r.sessions, sessionID)
	info := s.Snapshot()
	delete(r.pairs, pairKey(info.Room, info.Participant))
	remaining := len(r.sessions)
	r.mu.Unlock()

	summary, err := s.Close()
	if err != nil {
		return Summary{}, err
	}

	if r.metrics != nil {
		r.metrics.RecordSessionDestroyed(summary.EndTime.Sub(summary.StartTime).Seconds())
		r.metrics.SetActiveSessions(remaining)
	}

	r.logger.Info("Stopped analysis session",
		slog.String("session_id", sessionID),
		slog.String("room", summary.Room),
		slog.String("participant", summary.Participant),
		slog.Uint64("frames_processed", summary.FramesProcessed),
		slog.Duration("duration", summary.EndTime.Sub(summary.StartTime)),
	)

	return summary, nil
}

// List returns a snapshot of all active sessions.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Snapshot())
	}
	return infos
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the sweep routine and drains all remaining sessions. Called
// once at process shutdown.
func (r *Registry) Close() {
	r.logger.Info("Stopping session registry...")

	r.cancel()
	<-r.cleanup

	r.mu.Lock()
	remaining := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		remaining = append(remaining, s)
	}
	r.sessions = make(map[string]*Session)
	r.pairs = make(map[string]string)
	r.mu.Unlock()

	for _, s := range remaining {
		if _, err := s.Close(); err != nil {
			r.logger.Warn("Error closing session during shutdown",
				slog.String("session_id", s.ID()),
				slog.String("error", err.Error()),
			)
		}
	}

	if r.metrics != nil {
		r.metrics.SetActiveSessions(0)
	}

	r.logger.Info("Session registry stopped",
		slog.Int("drained_sessions", len(remaining)),
	)
}

// startSweepRoutine periodically reaps sessions with no Feed activity, so
// a disconnected client that never sent a clean stop cannot leak a
// session forever.
func (r *Registry) startSweepRoutine() {
	defer close(r.cleanup)

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	r.logger.Info("Idle session sweep started",
		slog.Duration("idle_timeout", r.cfg.IdleTimeout),
		slog.Duration("sweep_interval", r.cfg.SweepInterval),
	)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("Idle session sweep stopping")
			return

		case <-ticker.C:
			r.sweepIdle()
		}
	}
}

// sweepIdle stops every session whose last activity is older than the
// idle timeout.
func (r *Registry) sweepIdle() {
	now := time.Now()
	expired := make([]string, 0)

	r.mu.RLock()
	for id, s := range r.sessions {
		if now.Sub(s.lastActivityTime()) > r.cfg.IdleTimeout {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	r.logger.Info("Reaping idle sessions",
		slog.Int("expired_count", len(expired)),
	)

	for _, id := range expired {
		if _, err := r.Stop(id); err != nil {
			// Already stopped by a racing caller; nothing to do.
			continue
		}
	}
}

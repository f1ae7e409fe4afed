package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dattuog/audio-analysis-service/internal/analysis"
	"github.com/Dattuog/audio-analysis-service/internal/audio"
)

// State is a session lifecycle state.
type State string

// Session lifecycle states. Closed is terminal.
const (
	StateActive State = "active"
	StateClosed State = "closed"
)

// Session owns one participant's rolling audio buffer, analysis history,
// and frame counter. All mutation happens through Feed and Close; the
// caller contract allows at most one in-flight Feed per session.
type Session struct {
	id          string
	room        string
	participant string
	startTime   time.Time

	ring     *audio.Ring
	history  *analysis.History
	pipeline *analysis.Pipeline
	recorder *audio.Recorder

	mu           sync.RWMutex
	state        State
	lastActivity time.Time
	frameCount   uint64
}

// Summary is the terminal statistics record produced once at Close.
type Summary struct {
	SessionID       string    `json:"session_id"`
	Room            string    `json:"room_name"`
	Participant     string    `json:"participant_identity"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	FramesProcessed uint64    `json:"frames_processed"`
	State           State     `json:"state"`
}

// Info is a point-in-time snapshot of an active session for monitoring.
type Info struct {
	SessionID    string    `json:"session_id"`
	Room         string    `json:"room_name"`
	Participant  string    `json:"participant_identity"`
	StartTime    time.Time `json:"start_time"`
	LastActivity time.Time `json:"last_activity"`
	FrameCount   uint64    `json:"frame_count"`
	State        State     `json:"state"`
}

// newSessionID derives a unique identifier from room, participant and
// creation time, with a random suffix so identifiers stay unique even
// across rapid restart of the same pair.
func newSessionID(room, participant string, t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s_%s", room, participant, t.Format("20060102_150405"), suffix)
}

func newSession(room, participant string, pipeline *analysis.Pipeline, bufferSamples int) *Session {
	now := time.Now()
	return &Session{
		id:           newSessionID(room, participant, now),
		room:         room,
		participant:  participant,
		startTime:    now,
		ring:         audio.NewRing(bufferSamples),
		history:      analysis.NewHistory(pipeline.HistoryLength()),
		pipeline:     pipeline,
		state:        StateActive,
		lastActivity: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Feed decodes one raw PCM chunk, appends it to the rolling buffer, and
// runs the analysis pipeline over the updated window. A decode failure
// wraps audio.ErrInvalidFormat and leaves the session usable for the next
// chunk; after Close, Feed fails with ErrSessionClosed.
func (s *Session) Feed(chunk []byte) (*analysis.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return nil, fmt.Errorf("session %s: %w", s.id, ErrSessionClosed)
	}

	samples, err := audio.DecodePCM16(chunk)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.id, err)
	}

	s.ring.Write(samples)
	if s.recorder != nil {
		// Recording is best-effort; a failed write disables capture
		// without affecting analysis.
		if err := s.recorder.Write(chunk); err != nil {
			s.recorder = nil
		}
	}

	s.lastActivity = time.Now()
	s.frameCount++

	frame := s.pipeline.Analyze(s.ring.Window(), len(samples), s.history, s.lastActivity)
	return &frame, nil
}

// Close transitions the session to Closed and freezes its summary. A
// second Close fails with ErrSessionClosed; callers must not retry it.
func (s *Session) Close() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return Summary{}, fmt.Errorf("session %s: %w", s.id, ErrSessionClosed)
	}
	s.state = StateClosed

	if s.recorder != nil {
		s.recorder.Close()
		s.recorder = nil
	}

	return Summary{
		SessionID:       s.id,
		Room:            s.room,
		Participant:     s.participant,
		StartTime:       s.startTime,
		EndTime:         time.Now(),
		FramesProcessed: s.frameCount,
		State:           StateClosed,
	}, nil
}

// Snapshot returns the session's current monitoring info.
func (s *Session) Snapshot() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Info{
		SessionID:    s.id,
		Room:         s.room,
		Participant:  s.participant,
		StartTime:    s.startTime,
		LastActivity: s.lastActivity,
		FrameCount:   s.frameCount,
		State:        s.state,
	}
}

// lastActivityTime returns the time of the most recent Feed call.
func (s *Session) lastActivityTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

package protocol

import (
	"errors"
	"time"

	"github.com/Dattuog/audio-analysis-service/internal/analysis"
	"github.com/Dattuog/audio-analysis-service/internal/session"
)

// Message types carried in the "type" field of WebSocket frames.
const (
	TypeAnalysis = "analysis"
	TypeError    = "error"
	TypePong     = "pong"
)

// StartRequest asks the service to begin analysis for one participant.
type StartRequest struct {
	RoomName            string `json:"room_name"`
	ParticipantIdentity string `json:"participant_identity"`
}

// DefaultParticipant is used when a start request names no participant.
const DefaultParticipant = "unknown"

// Validate checks that the room is named and fills in the participant
// default when the field is absent.
func (r *StartRequest) Validate() error {
	if r.RoomName == "" {
		return errors.New("room_name is required")
	}
	if r.ParticipantIdentity == "" {
		r.ParticipantIdentity = DefaultParticipant
	}
	return nil
}

// StartResponse reports the outcome of a start request.
type StartResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// StopRequest asks the service to end the named session.
type StopRequest struct {
	SessionID string `json:"session_id"`
}

// Validate checks that the session identifier is present.
func (r *StopRequest) Validate() error {
	if r.SessionID == "" {
		return errors.New("session_id is required")
	}
	return nil
}

// StopResponse reports the outcome of a stop request together with the
// session's terminal summary.
type StopResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	SessionInfo *session.Summary `json:"session_info,omitempty"`
}

// SessionsResponse lists all active sessions.
type SessionsResponse struct {
	ActiveSessions []session.Info `json:"active_sessions"`
	Count          int            `json:"count"`
}

// AnalysisEvent carries one analysis frame to a streaming client.
type AnalysisEvent struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Data      analysis.Frame `json:"data"`
}

// ErrorEvent reports a per-chunk failure to a streaming client without
// closing the connection.
type ErrorEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// PongEvent answers a client's text ping keepalive.
type PongEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is the service liveness report.
type HealthResponse struct {
	Status         string    `json:"status"`
	ActiveSessions int       `json:"active_sessions"`
	Timestamp      time.Time `json:"timestamp"`
}

// ErrorResponse is the generic HTTP error body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

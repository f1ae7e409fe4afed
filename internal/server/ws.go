package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dattuog/audio-analysis-service/internal/audio"
	"github.com/Dattuog/audio-analysis-service/internal/protocol"
)

// Close code sent when the requested session does not exist.
const closeUnknownSession = 4004

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are delegated to the deployment's ingress.
		return true
	},
}

// handleAudioStream implements the /ws/audio-stream/{session_id} endpoint.
// Binary frames carry raw PCM16 audio; each one is answered with a JSON
// analysis event. Text frames containing "ping" are answered with a pong.
func (h *HTTPServer) handleAudioStream(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/ws/audio-stream/")
	if sessionID == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	h.metrics.WSConnectionOpened()
	defer h.metrics.WSConnectionClosed()

	if _, err := h.registry.Get(sessionID); err != nil {
		h.logger.Warn("WebSocket connect for unknown session",
			slog.String("session_id", sessionID),
		)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeUnknownSession, "unknown session"),
			time.Now().Add(time.Second))
		return
	}

	conn.SetReadLimit(h.config.HTTP.MaxChunkBytes)

	h.logger.Info("Audio stream connected",
		slog.String("session_id", sessionID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	// A dropped connection ends the session; a fresh start request is
	// required to resume analysis for the pair.
	defer func() {
		if _, err := h.registry.Stop(sessionID); err == nil {
			h.logger.Info("Audio stream disconnected, session stopped",
				slog.String("session_id", sessionID),
			)
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read error",
					slog.String("session_id", sessionID),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			start := time.Now()
			frame, err := h.registry.Feed(sessionID, data)
			if err != nil {
				if errors.Is(err, audio.ErrInvalidFormat) {
					h.metrics.RecordDecodeError()
					if err := conn.WriteJSON(protocol.ErrorEvent{
						Type:      protocol.TypeError,
						SessionID: sessionID,
						Message:   err.Error(),
					}); err != nil {
						return
					}
					continue
				}
				// Session stopped or closed underneath us.
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session stopped"),
					time.Now().Add(time.Second))
				return
			}

			h.metrics.RecordFrame(frame.IsSilence, frame.Pitch > 0, len(data), time.Since(start).Seconds())

			if err := conn.WriteJSON(protocol.AnalysisEvent{
				Type:      protocol.TypeAnalysis,
				SessionID: sessionID,
				Data:      *frame,
			}); err != nil {
				return
			}

		case websocket.TextMessage:
			if strings.TrimSpace(string(data)) == "ping" {
				if err := conn.WriteJSON(protocol.PongEvent{
					Type:      protocol.TypePong,
					Timestamp: time.Now().UTC(),
				}); err != nil {
					return
				}
			}
		}
	}
}

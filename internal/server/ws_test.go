package server

import (
	"encoding/binary"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dattuog/audio-analysis-service/internal/protocol"
)

func wsURL(httpURL, sessionID string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws/audio-stream/" + sessionID
}

func startTestSession(t *testing.T, srvURL string) string {
	t.Helper()
	resp := postJSON(t, srvURL+"/start-audio-analysis", protocol.StartRequest{
		RoomName:            "room-1",
		ParticipantIdentity: "alice",
	})
	start := decodeBody[protocol.StartResponse](t, resp)
	if !start.Success {
		t.Fatalf("Start refused: %s", start.Message)
	}
	return start.SessionID
}

func tonePCM(freq float64, sampleRate, samples int) []byte {
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := 0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*32767)))
	}
	return out
}

func TestAudioStreamAnalysis(t *testing.T) {
	srv, _ := newTestServer(t)
	sessionID := startTestSession(t, srv.URL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, sessionID), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Silence first.
	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 4096)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var event protocol.AnalysisEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if event.Type != protocol.TypeAnalysis || event.SessionID != sessionID {
		t.Fatalf("Unexpected event: %+v", event)
	}
	if !event.Data.IsSilence || event.Data.Pitch != 0 {
		t.Errorf("Expected silent frame, got %+v", event.Data)
	}
	if event.Data.Confidence != 0 {
		t.Errorf("Expected confidence 0 for silence, got %f", event.Data.Confidence)
	}

	// Then a 200 Hz tone.
	if err := conn.WriteMessage(websocket.BinaryMessage, tonePCM(200, 16000, 2048)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if event.Data.IsSilence {
		t.Error("Expected non-silent frame for tone")
	}
	if math.Abs(event.Data.Pitch-200) > 10 {
		t.Errorf("Expected pitch near 200 Hz, got %f", event.Data.Pitch)
	}

	// Clean stop reports both frames.
	resp := postJSON(t, srv.URL+"/stop-audio-analysis", protocol.StopRequest{SessionID: sessionID})
	stop := decodeBody[protocol.StopResponse](t, resp)
	if stop.SessionInfo == nil || stop.SessionInfo.FramesProcessed != 2 {
		t.Errorf("Expected 2 frames in summary, got %+v", stop.SessionInfo)
	}
}

func TestAudioStreamUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, "no-such-session"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("Expected close error, got: %v", err)
	}
	if closeErr.Code != closeUnknownSession {
		t.Errorf("Expected close code %d, got %d", closeUnknownSession, closeErr.Code)
	}
}

func TestAudioStreamPing(t *testing.T) {
	srv, _ := newTestServer(t)
	sessionID := startTestSession(t, srv.URL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, sessionID), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var pong protocol.PongEvent
	if err := conn.ReadJSON(&pong); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if pong.Type != protocol.TypePong {
		t.Errorf("Expected pong, got %s", pong.Type)
	}
}

func TestAudioStreamInvalidChunk(t *testing.T) {
	srv, _ := newTestServer(t)
	sessionID := startTestSession(t, srv.URL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, sessionID), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Odd-length chunk draws an error frame, not a disconnect.
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var errEvent protocol.ErrorEvent
	if err := conn.ReadJSON(&errEvent); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if errEvent.Type != protocol.TypeError {
		t.Errorf("Expected error event, got %s", errEvent.Type)
	}

	// The stream keeps working afterwards.
	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 4096)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var event protocol.AnalysisEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if event.Type != protocol.TypeAnalysis {
		t.Errorf("Expected analysis event, got %s", event.Type)
	}
}

func TestAudioStreamDisconnectStopsSession(t *testing.T) {
	srv, registry := newTestServer(t)
	sessionID := startTestSession(t, srv.URL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL, sessionID), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	conn.Close()

	// The server notices the drop asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Session not stopped after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get(srv.URL + "/session/" + sessionID)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after disconnect, got %d", resp.StatusCode)
	}
}

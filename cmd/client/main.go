// Command client is a test harness that starts an analysis session,
// streams synthetic PCM16 audio over the WebSocket endpoint and prints
// the analysis frames it gets back.
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dattuog/audio-analysis-service/internal/protocol"
)

func main() {
	serverAddr := flag.String("server", "localhost:8000", "Server host:port")
	room := flag.String("room", "test-room", "Room name")
	participant := flag.String("participant", "test-user", "Participant identity")
	sampleRate := flag.Int("rate", 16000, "Sample rate in Hz")
	toneHz := flag.Float64("tone", 200, "Frequency of the synthetic tone")
	chunks := flag.Int("chunks", 20, "Number of audio chunks to send")
	chunkMS := flag.Int("chunk-ms", 100, "Chunk duration in milliseconds")
	flag.Parse()

	baseURL := fmt.Sprintf("http://%s", *serverAddr)

	sessionID, err := startSession(baseURL, *room, *participant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("session started: %s\n", sessionID)

	wsURL := fmt.Sprintf("ws://%s/ws/audio-stream/%s", *serverAddr, sessionID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "websocket dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	samplesPerChunk := *sampleRate * *chunkMS / 1000
	phase := 0

	for i := 0; i < *chunks; i++ {
		// Alternate between tone and silence so the analysis output
		// exercises both voiced and silent paths.
		var chunk []byte
		if i%4 == 3 {
			chunk = make([]byte, samplesPerChunk*2)
		} else {
			chunk = sineChunk(*toneHz, *sampleRate, samplesPerChunk, &phase)
		}

		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}

		var event protocol.AnalysisEvent
		if err := conn.ReadJSON(&event); err != nil {
			fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
			os.Exit(1)
		}

		f := event.Data
		fmt.Printf("frame %2d: volume=%8.1f silence=%-5v pitch=%6.1f rate=%5.1f conf=%.2f emotion=%s\n",
			i, f.Volume, f.IsSilence, f.Pitch, f.SpeakingRate, f.Confidence, f.Emotion)

		time.Sleep(time.Duration(*chunkMS) * time.Millisecond)
	}

	summary, err := stopSession(baseURL, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stop failed: %v\n", err)
		os.Exit(1)
	}
	if summary.SessionInfo != nil {
		fmt.Printf("session stopped: %d frames processed\n", summary.SessionInfo.FramesProcessed)
	}
}

// sineChunk generates PCM16 samples of a sine tone at 30% full scale,
// carrying phase across chunks so the waveform is continuous.
func sineChunk(freq float64, sampleRate, samples int, phase *int) []byte {
	buf := new(bytes.Buffer)
	for i := 0; i < samples; i++ {
		v := 0.3 * math.Sin(2*math.Pi*freq*float64(*phase+i)/float64(sampleRate))
		binary.Write(buf, binary.LittleEndian, int16(v*32767))
	}
	*phase += samples
	return buf.Bytes()
}

func startSession(baseURL, room, participant string) (string, error) {
	body, _ := json.Marshal(protocol.StartRequest{
		RoomName:            room,
		ParticipantIdentity: participant,
	})

	resp, err := http.Post(baseURL+"/start-audio-analysis", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var start protocol.StartResponse
	if err := json.NewDecoder(resp.Body).Decode(&start); err != nil {
		return "", err
	}
	if !start.Success {
		return "", fmt.Errorf("server refused: %s", start.Message)
	}
	return start.SessionID, nil
}

func stopSession(baseURL, sessionID string) (*protocol.StopResponse, error) {
	body, _ := json.Marshal(protocol.StopRequest{SessionID: sessionID})

	resp, err := http.Post(baseURL+"/stop-audio-analysis", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var stop protocol.StopResponse
	if err := json.NewDecoder(resp.Body).Decode(&stop); err != nil {
		return nil, err
	}
	if !stop.Success {
		return nil, fmt.Errorf("server refused: %s", stop.Message)
	}
	return &stop, nil
}

// Command status probes a running service's health endpoint and prints
// the active session list.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Dattuog/audio-analysis-service/internal/protocol"
)

func main() {
	serverAddr := flag.String("server", "localhost:8000", "Server host:port")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	baseURL := fmt.Sprintf("http://%s", *serverAddr)

	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "service unreachable: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var health protocol.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		fmt.Fprintf(os.Stderr, "bad health response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("status: %s\n", health.Status)
	fmt.Printf("active sessions: %d\n", health.ActiveSessions)
	fmt.Printf("server time: %s\n", health.Timestamp.Format(time.RFC3339))

	if health.ActiveSessions == 0 {
		return
	}

	resp, err = client.Get(baseURL + "/active-sessions")
	if err != nil {
		fmt.Fprintf(os.Stderr, "session list unreachable: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var sessions protocol.SessionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		fmt.Fprintf(os.Stderr, "bad session list response: %v\n", err)
		os.Exit(1)
	}

	for _, info := range sessions.ActiveSessions {
		fmt.Printf("  %s  room=%s participant=%s frames=%d last_activity=%s\n",
			info.SessionID, info.Room, info.Participant, info.FrameCount,
			info.LastActivity.Format(time.RFC3339))
	}
}

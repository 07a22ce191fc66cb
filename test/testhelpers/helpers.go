// Package testhelpers provides common utilities and helper functions for
// testing the GroupChat server.
//
// This package contains reusable test utilities shared across unit and
// integration tests: starting test servers, dialing room WebSockets, reading
// protocol events, and recording session deliveries.
package testhelpers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It is closed automatically when the test finishes.
func CreateTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

// RoomURL converts a test server's base URL into the WebSocket URL for the
// given room.
func RoomURL(t *testing.T, ts *httptest.Server, room string) string {
	t.Helper()
	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("Failed to parse test server URL: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/chat/" + room
	return u.String()
}

// DialRoom opens a WebSocket connection to the given room, presenting the
// test server's own URL as the request origin. The connection is closed
// automatically when the test finishes.
func DialRoom(t *testing.T, ts *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Origin", ts.URL)

	conn, resp, err := websocket.DefaultDialer.Dial(RoomURL(t, ts, room), header)
	if err != nil {
		t.Fatalf("Failed to connect to room %q: %v", room, err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn
}

// SendJSON marshals v and writes it as a single text frame.
func SendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}
}

// Event is the decoded shape of an outbound frame, superset of note and chat.
type Event struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// ReadEvent reads and decodes the next outbound frame, failing the test if
// nothing arrives before the timeout.
func ReadEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) Event {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("Failed to decode event %q: %v", raw, err)
	}
	return ev
}

// ExpectNoMessage asserts that no frame arrives on conn within the timeout.
func ExpectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no message, but received %q", raw)
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	t.Fatalf("Unexpected error while waiting for absence of message: %v", err)
}

// Recorder captures payloads delivered through a session's send capability,
// standing in for a live connection in unit tests.
type Recorder struct {
	mu       sync.Mutex
	payloads [][]byte
	arrived  chan []byte
}

// NewRecorder creates a Recorder ready to be used as a SendFunc.
func NewRecorder() *Recorder {
	return &Recorder{
		arrived: make(chan []byte, 64),
	}
}

// Send records one payload. It never fails.
func (r *Recorder) Send(payload []byte) error {
	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()

	select {
	case r.arrived <- payload:
	default:
	}
	return nil
}

// Payloads returns a copy of everything recorded so far.
func (r *Recorder) Payloads() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.payloads))
	copy(out, r.payloads)
	return out
}

// Next waits for the next recorded payload, failing the test if none arrives
// before the timeout.
func (r *Recorder) Next(t *testing.T, timeout time.Duration) []byte {
	t.Helper()
	select {
	case payload := <-r.arrived:
		return payload
	case <-time.After(timeout):
		t.Fatalf("Timed out waiting for a delivery")
		return nil
	}
}

// NextEvent waits for the next recorded payload and decodes it.
func (r *Recorder) NextEvent(t *testing.T, timeout time.Duration) Event {
	t.Helper()
	payload := r.Next(t, timeout)

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("Failed to decode event %q: %v", payload, err)
	}
	return ev
}

// FailingSend is a send capability that always fails, simulating a dead peer.
func FailingSend(_ []byte) error {
	return errors.New("peer gone")
}

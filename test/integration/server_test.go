package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/pkempf/websocket-groupchat/internal/server"
	"github.com/pkempf/websocket-groupchat/test/testhelpers"
)

// TestHealthEndpoint verifies the health check route.
func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t, stubJokes{}, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "GroupChat server is running!")
}

// TestTestPageEndpoint verifies that the built-in test page is served as
// HTML and speaks the chat protocol.
func TestTestPageEndpoint(t *testing.T) {
	_, ts := newTestServer(t, stubJokes{}, nil)

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/html", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "/chat/")
	require.Contains(t, string(body), "get-joke")
}

// TestChatEndpointRejectsNonGet verifies that the WebSocket endpoint only
// accepts GET requests.
func TestChatEndpointRejectsNonGet(t *testing.T) {
	_, ts := newTestServer(t, stubJokes{}, nil)

	resp, err := http.Post(ts.URL+"/chat/lobby", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// TestChatEndpointEnforcesOriginAllowList verifies that a connection from an
// origin outside the allow-list is refused during the handshake.
func TestChatEndpointEnforcesOriginAllowList(t *testing.T) {
	_, ts := newTestServer(t, stubJokes{}, func(cfg *server.Config) {
		cfg.AllowedOrigins = []string{"http://allowed.example"}
	})

	header := http.Header{}
	header.Set("Origin", "http://attacker.example")
	conn, resp, err := websocket.DefaultDialer.Dial(testhelpers.RoomURL(t, ts, "lobby"), header)
	if conn != nil {
		_ = conn.Close()
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)

	header.Set("Origin", "http://allowed.example")
	conn, resp, err = websocket.DefaultDialer.Dial(testhelpers.RoomURL(t, ts, "lobby"), header)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	defer func() { _ = resp.Body.Close() }()
}

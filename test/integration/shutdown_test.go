package integration

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/pkempf/websocket-groupchat/test/testhelpers"
)

// TestShutdownWithNoClients verifies that shutdown completes immediately when
// nothing is connected.
func TestShutdownWithNoClients(t *testing.T) {
	srv, _ := newTestServer(t, stubJokes{}, nil)

	require.NoError(t, srv.Shutdown(time.Second))
	require.Equal(t, 0, srv.ConnectionCount())
}

// TestGracefulShutdownWithClients verifies that live connections are closed
// and their pump goroutines drained during shutdown.
func TestGracefulShutdownWithClients(t *testing.T) {
	srv, ts := newTestServer(t, stubJokes{}, nil)

	const numClients = 5
	conns := make([]*websocket.Conn, numClients)
	for i := range conns {
		conns[i] = testhelpers.DialRoom(t, ts, "lobby")
	}

	require.Eventually(t, func() bool {
		return srv.ConnectionCount() == numClients
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Shutdown(5*time.Second))

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, _, err := conn.ReadMessage()
		require.Error(t, err, "connection should be closed after shutdown")
	}
	require.Equal(t, 0, srv.ConnectionCount())
}

// TestShutdownAnnouncesNothing verifies that forced disconnects during
// shutdown do not crash even when members are mid-conversation.
func TestShutdownAnnouncesNothing(t *testing.T) {
	srv, ts := newTestServer(t, stubJokes{}, nil)

	alice := testhelpers.DialRoom(t, ts, "lobby")
	join(t, alice, "alice")
	bob := testhelpers.DialRoom(t, ts, "lobby")
	join(t, bob, "bob")

	require.NoError(t, srv.Shutdown(5*time.Second))
	require.Equal(t, 0, srv.ConnectionCount())
}

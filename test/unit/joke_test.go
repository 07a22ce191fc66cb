package unit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkempf/websocket-groupchat/internal/server"
)

// TestDadJokeServiceSuccess verifies the happy path: a GET with a JSON Accept
// header returning {"joke": ...}.
func TestDadJokeServiceSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"joke":"Why did the bicycle fall over? It was two tired."}`))
	}))
	defer ts.Close()

	jokes := server.NewDadJokeService(ts.URL, time.Second)
	joke, err := jokes.Joke(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Why did the bicycle fall over? It was two tired.", joke)
}

// TestDadJokeServiceFailures verifies that bad statuses and malformed or
// empty bodies are all reported as errors.
func TestDadJokeServiceFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`this is not json`))
		}},
		{"empty joke", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"joke":""}`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(tc.handler)
			defer ts.Close()

			jokes := server.NewDadJokeService(ts.URL, time.Second)
			_, err := jokes.Joke(context.Background())
			require.Error(t, err)
		})
	}
}

// TestDadJokeServiceTimeout verifies that a slow endpoint fails within the
// configured timeout instead of hanging the request.
func TestDadJokeServiceTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"joke":"too late"}`))
	}))
	defer ts.Close()
	defer close(release)

	jokes := server.NewDadJokeService(ts.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := jokes.Joke(context.Background())
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}

// TestDadJokeServiceUnreachable verifies that a dead endpoint reports a
// transport error.
func TestDadJokeServiceUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	jokes := server.NewDadJokeService(ts.URL, time.Second)
	_, err := jokes.Joke(context.Background())
	require.Error(t, err)
}

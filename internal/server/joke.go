// Package server integrates the external dad-joke service used by the
// get-joke request.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// JokeFallbackText is the reply a session receives when no joke is available.
const JokeFallbackText = "Error: couldn't get a joke!"

// JokeProvider fetches a single joke. Implementations treat any transport
// failure, bad status, or malformed body as an error; callers convert errors
// into the fallback text and never surface them further.
type JokeProvider interface {
	Joke(ctx context.Context) (string, error)
}

// DadJokeService fetches jokes from an icanhazdadjoke-style JSON endpoint.
type DadJokeService struct {
	url    string
	client *http.Client
}

// NewDadJokeService creates a provider for the given endpoint with a bounded
// per-request timeout.
func NewDadJokeService(url string, timeout time.Duration) *DadJokeService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DadJokeService{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Joke performs a GET against the configured endpoint and returns the joke
// text from a {"joke": ...} body.
func (s *DadJokeService) Joke(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("building joke request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting joke: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("joke endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		Joke string `json:"joke"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding joke response: %w", err)
	}
	if body.Joke == "" {
		return "", fmt.Errorf("joke endpoint returned an empty joke")
	}

	return body.Joke, nil
}

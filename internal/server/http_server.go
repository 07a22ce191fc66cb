// Package server constructs and starts the chat HTTP service with helpers
// that apply sensible production defaults.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// CreateServer creates and configures an HTTP server with the specified port
// and handler. It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns an error if the server fails to start.
func StartServer(server *http.Server) error {
	fmt.Printf("Server listening on port %s\n", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting
// active connections, waiting until they close or the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}

// track registers a live client connection for shutdown coordination.
func (s *Server) track(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[client] = struct{}{}
}

// untrack removes a client connection once its read pump has finished.
func (s *Server) untrack(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, client)
}

// ConnectionCount returns the number of currently tracked connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown closes all live WebSocket connections and waits for their pump
// goroutines to finish, or until the timeout is reached.
func (s *Server) Shutdown(timeout time.Duration) error {
	log.Println("Shutting down all client connections...")

	s.mu.Lock()
	clients := make([]*Client, 0, len(s.conns))
	for client := range s.conns {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	for _, client := range clients {
		if err := client.conn.Close(); err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Error closing client connection from %s: %v", client.addr, err)
			}
		}
	}
	log.Printf("Closed %d client connections", len(clients))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Server shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Server shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

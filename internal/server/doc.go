// Package server implements the core HTTP and WebSocket functionality for
// the GroupChat relay.
//
// The implementation is organized into specialized files for configuration,
// the room registry, sessions, the wire protocol, clients, routing, and HTTP
// handlers to keep the codebase maintainable and testable as the project
// grows.
package server

// Package server parses inbound client frames into typed requests with
// validation, so that dispatch is an exhaustive switch over a closed set.
package server

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound is a parsed client-to-server request. The concrete variants are
// JoinRequest, ChatRequest, JokeRequest, and MembersRequest.
type Inbound interface {
	isInbound()
}

// JoinRequest asks to join the session's room under a display name.
type JoinRequest struct {
	Name string
}

// ChatRequest asks to broadcast a chat message to the session's room.
type ChatRequest struct {
	Text string
}

// JokeRequest asks for a joke to be sent back to the requesting session only.
type JokeRequest struct{}

// MembersRequest asks for the room's current member listing.
type MembersRequest struct{}

func (JoinRequest) isInbound()    {}
func (ChatRequest) isInbound()    {}
func (JokeRequest) isInbound()    {}
func (MembersRequest) isInbound() {}

// ProtocolError reports a malformed or unrecognized inbound message. The
// transport layer decides its disposition; the core only surfaces it.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// inboundEnvelope is the superset wire shape used to sniff the discriminator
// before validation picks the variant.
type inboundEnvelope struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// ParseInbound decodes a raw frame into its Inbound variant. Unknown types,
// unparseable payloads, and join requests without a usable name fail with a
// *ProtocolError.
func ParseInbound(raw []byte) (Inbound, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("malformed message: %v", err)}
	}

	switch env.Type {
	case "join":
		if strings.TrimSpace(env.Name) == "" {
			return nil, &ProtocolError{Reason: "join requires a non-empty name"}
		}
		return JoinRequest{Name: env.Name}, nil
	case "chat":
		return ChatRequest{Text: env.Text}, nil
	case "get-joke":
		return JokeRequest{}, nil
	case "get-members":
		return MembersRequest{}, nil
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("bad message type %q", env.Type)}
	}
}

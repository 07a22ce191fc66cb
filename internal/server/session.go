// Package server implements chat sessions: the per-connection state machine
// that interprets inbound requests and drives room membership and broadcast.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// SendFunc delivers one serialized payload to the session's remote peer. It
// may fail when the peer is gone or its buffer is full; the session treats
// every delivery as best-effort.
type SendFunc func(payload []byte) error

// Session represents one connected chat client. It is bound to exactly one
// room at construction time and owned by its transport connection; Dispatch
// and Disconnect are only ever called from that connection's read goroutine.
type Session struct {
	id    string
	send  SendFunc
	room  *Room
	jokes JokeProvider

	// name is written once by a join request, before the session is
	// published to the room's member set, and is immutable afterwards.
	name   string
	joined bool
}

// NewSession creates a session bound to the named room in registry. The
// session has no display name and is not a room member until it dispatches a
// join request.
func NewSession(send SendFunc, registry *Registry, roomName string, jokes JokeProvider) *Session {
	sess := &Session{
		id:    uuid.NewString(),
		send:  send,
		room:  registry.Get(roomName),
		jokes: jokes,
	}
	log.Printf("Session %s created in room %q", sess.id, sess.room.Name())
	return sess
}

// ID returns the session's identifier, used only for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Name returns the session's display name, or "" before a join completes.
func (s *Session) Name() string {
	return s.name
}

// Room returns the room the session was bound to at construction.
func (s *Session) Room() *Room {
	return s.room
}

// Dispatch parses one inbound frame and performs the requested operation.
// Malformed or unrecognized frames return a *ProtocolError for the transport
// layer to dispose of; all other failure modes are absorbed internally.
func (s *Session) Dispatch(raw []byte) error {
	msg, err := ParseInbound(raw)
	if err != nil {
		return err
	}

	switch req := msg.(type) {
	case JoinRequest:
		return s.handleJoin(req.Name)
	case ChatRequest:
		s.handleChat(req.Text)
	case JokeRequest:
		// The joke round-trip has real latency; never block the read loop on it.
		go s.handleJoke()
	case MembersRequest:
		s.handleMembers()
	}
	return nil
}

// handleJoin assigns the display name, enters the room, and announces the
// arrival to every member.
func (s *Session) handleJoin(name string) error {
	if s.joined {
		return &ProtocolError{Reason: "already joined"}
	}

	s.name = name
	s.joined = true
	s.room.Join(s)
	s.room.Broadcast(NewNote(fmt.Sprintf("%s joined %q.", s.name, s.room.Name())))
	return nil
}

// handleChat broadcasts the text to the room under the session's display
// name. A session that never joined broadcasts with an empty name.
func (s *Session) handleChat(text string) {
	s.room.Broadcast(NewChat(s.name, text))
}

// handleJoke fetches a joke and replies to this session only. A provider
// failure is converted into the fixed fallback text and goes no further.
func (s *Session) handleJoke() {
	text, err := s.jokes.Joke(context.Background())
	if err != nil {
		log.Printf("Joke request for session %s failed: %v", s.id, err)
		text = JokeFallbackText
	}
	s.sendEvent(NewChat("Server", text))
}

// handleMembers replies to this session only with the room's current member
// listing.
func (s *Session) handleMembers() {
	listing := strings.Join(s.room.MemberNames(), ", ")
	s.sendEvent(NewChat("Server", "In this room: "+listing))
}

// Disconnect removes the session from its room and announces the departure.
// A session that never completed a join leaves quietly.
func (s *Session) Disconnect() {
	s.room.Leave(s)
	if !s.joined {
		return
	}
	s.room.Broadcast(NewNote(fmt.Sprintf("%s left %q.", s.name, s.room.Name())))
}

// sendEvent serializes an event for this session alone and hands it to the
// best-effort send path.
func (s *Session) sendEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error serializing event for session %s: %v", s.id, err)
		return
	}
	s.Send(payload)
}

// Send delivers payload through the session's send capability. Delivery is
// best-effort: a capability failure is logged and intentionally discarded so
// one dead peer never poisons the caller.
func (s *Session) Send(payload []byte) {
	if err := s.send(payload); err != nil {
		log.Printf("Dropping undeliverable message for session %s: %v", s.id, err)
	}
}

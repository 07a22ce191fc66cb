// Package server maintains the room registry and per-room membership,
// fanning broadcast events out to every member of a room.
package server

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/samber/lo"
)

// Registry maps room names to live Room instances. It is created once at
// startup and handed to whatever constructs sessions; rooms are created
// lazily on first lookup and persist for the registry's lifetime.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Get returns the room registered under name, creating and registering an
// empty one if none exists. Concurrent callers racing on the same name all
// receive the same Room instance.
func (reg *Registry) Get(name string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[name]
	if !ok {
		room = &Room{
			name:    name,
			members: make(map[*Session]struct{}),
		}
		reg.rooms[name] = room
	}
	return room
}

// RoomCount returns the number of rooms currently registered.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Room is a named chat room holding the set of sessions that have joined it.
// Membership mutations and reads are serialized by a per-room mutex so a
// broadcast always observes a consistent snapshot.
type Room struct {
	name    string
	mu      sync.RWMutex
	members map[*Session]struct{}
}

// Name returns the room's registry key.
func (r *Room) Name() string {
	return r.name
}

// Join adds a session to the member set.
func (r *Room) Join(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sess] = struct{}{}
}

// Leave removes a session from the member set. Leaving a room the session
// never joined is a no-op.
func (r *Room) Leave(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, sess)
}

// Members returns a snapshot of the current member set.
func (r *Room) Members() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Session, 0, len(r.members))
	for sess := range r.members {
		members = append(members, sess)
	}
	return members
}

// MemberNames returns the display names of the current members, in the same
// unspecified order Members uses.
func (r *Room) MemberNames() []string {
	return lo.Map(r.Members(), func(sess *Session, _ int) string {
		return sess.Name()
	})
}

// Broadcast serializes event once and delivers it to every member present at
// call time. Each delivery is best-effort and isolated: one dead member never
// prevents delivery to the rest of the room.
func (r *Room) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error serializing broadcast event for room %q: %v", r.name, err)
		return
	}

	for _, sess := range r.Members() {
		sess.Send(payload)
	}
}

// Package server defines the outbound event types delivered to chat clients.
package server

// Event is an outbound server-to-client message. The concrete variants are
// Note and Chat; both carry their wire discriminator in the Type field.
type Event interface {
	isEvent()
}

// Note is a system announcement, such as a member joining or leaving.
type Note struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Chat is a chat message from a room member, or from "Server" for direct
// replies such as jokes and member listings.
type Chat struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Text string `json:"text"`
}

func (Note) isEvent() {}
func (Chat) isEvent() {}

// NewNote builds a note event with its wire discriminator set.
func NewNote(text string) Note {
	return Note{Type: "note", Text: text}
}

// NewChat builds a chat event with its wire discriminator set.
func NewChat(name, text string) Chat {
	return Chat{Type: "chat", Name: name, Text: text}
}

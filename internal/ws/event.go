package ws

import (
	"encoding/json"

	"github.com/fathima-sithara/quickchat/internal/models"
)

// Wire event types. Names match what clients dispatch on.
const (
	EventOnlineUsers = "getOnlineUsers"
	EventNewMessage  = "newMessage"
)

// Event is the envelope for every server-pushed frame.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func NewPresenceEvent(online []string) ([]byte, error) {
	payload, err := json.Marshal(online)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: EventOnlineUsers, Payload: payload})
}

func NewMessageEvent(m *models.Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: EventNewMessage, Payload: payload})
}

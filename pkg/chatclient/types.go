package chatclient

import (
	"encoding/json"
	"time"
)

// Wire types mirror the server's JSON. The SDK keeps its own copies so
// importers never depend on server internals.

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Image      string    `json:"image"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}

type User struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	eventOnlineUsers = "getOnlineUsers"
	eventNewMessage  = "newMessage"
)

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type sidebarResponse struct {
	Success        bool             `json:"success"`
	Users          []User           `json:"users"`
	UnseenMessages map[string]int64 `json:"unseenMessages"`
	Message        string           `json:"message"`
}

type messagesResponse struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
	Message  string    `json:"message"`
}

type sendResponse struct {
	Success    bool     `json:"success"`
	NewMessage *Message `json:"newMessage"`
	Message    string   `json:"message"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

package models

import (
	"time"

	"github.com/fathima-sithara/quickchat/internal/apperr"
)

// Message is one direct message between two users. Sender, receiver and
// content are immutable after creation; only Seen transitions, and only from
// false to true.
type Message struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	ReceiverID string    `bson:"receiver_id" json:"receiverId"`
	Text       string    `bson:"text" json:"text"`
	Image      string    `bson:"image" json:"image"`
	Seen       bool      `bson:"seen" json:"seen"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Validate rejects messages carrying neither text nor an image reference.
// Called before any store write so a rejected message has no side effects.
func (m *Message) Validate() error {
	if m.Text == "" && m.Image == "" {
		return apperr.ErrEmptyMessage
	}
	return nil
}

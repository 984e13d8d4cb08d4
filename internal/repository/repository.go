package repository

import (
	"context"

	"github.com/fathima-sithara/quickchat/internal/models"
)

// MessageStore is the durable store contract the realtime core depends on.
// Seen transitions are one-way; a marked message never reverts.
type MessageStore interface {
	Insert(ctx context.Context, m *models.Message) (*models.Message, error)
	// Conversation returns every message exchanged between the two users, in
	// chronological order.
	Conversation(ctx context.Context, userA, userB string) ([]*models.Message, error)
	// MarkConversationSeen flips every unseen message from other to viewer.
	// Returns the number of messages updated.
	MarkConversationSeen(ctx context.Context, viewerID, otherID string) (int64, error)
	// MarkMessageSeen is idempotent; marking a seen message is a no-op.
	MarkMessageSeen(ctx context.Context, id string) error
	// UnseenCounts maps sender id to the number of unseen messages addressed
	// to the viewer. Only non-zero entries are returned.
	UnseenCounts(ctx context.Context, viewerID string) (map[string]int64, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	// ListOthers returns every registered user except the given one.
	ListOthers(ctx context.Context, userID string) ([]*models.User, error)
}

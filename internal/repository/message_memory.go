package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/models"
)

// MemoryMessageStore is an in-process MessageStore. It backs tests and the
// "memory" store backend for local runs without Mongo.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages []*models.Message
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Insert(ctx context.Context, m *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *m
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, &stored)
	out := stored
	return &out, nil
}

func (s *MemoryMessageStore) Conversation(ctx context.Context, userA, userB string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Message{}
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryMessageStore) MarkConversationSeen(ctx context.Context, viewerID, otherID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.SenderID == otherID && m.ReceiverID == viewerID && !m.Seen {
			m.Seen = true
			n++
		}
	}
	return n, nil
}

func (s *MemoryMessageStore) MarkMessageSeen(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.Seen = true
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (s *MemoryMessageStore) UnseenCounts(ctx context.Context, viewerID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int64{}
	for _, m := range s.messages {
		if m.ReceiverID == viewerID && !m.Seen {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}

package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/models"
)

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // id -> user
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, apperr.ErrAccountExists
		}
	}
	stored := *u
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	s.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	cur.FullName = u.FullName
	cur.Bio = u.Bio
	cur.ProfilePic = u.ProfilePic
	return nil
}

func (s *MemoryUserStore) ListOthers(ctx context.Context, userID string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.User{}
	for id, u := range s.users {
		if id == userID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

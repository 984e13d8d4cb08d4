package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/events"
	"github.com/fathima-sithara/quickchat/internal/media"
	"github.com/fathima-sithara/quickchat/internal/metrics"
	"github.com/fathima-sithara/quickchat/internal/models"
	"github.com/fathima-sithara/quickchat/internal/repository"
	"github.com/fathima-sithara/quickchat/internal/ws"
)

// ChatService routes messages: validate, persist, then best-effort push to
// the recipient's live connection. Persistence success is the only success
// criterion; a recipient that misses the push picks the message up on its
// next history fetch.
type ChatService struct {
	store    repository.MessageStore
	users    repository.UserStore
	registry *ws.Registry
	pub      events.Publisher
	uploader *media.Uploader
	log      *zap.SugaredLogger
}

func NewChatService(store repository.MessageStore, users repository.UserStore, registry *ws.Registry, pub events.Publisher, uploader *media.Uploader, log *zap.SugaredLogger) *ChatService {
	return &ChatService{
		store:    store,
		users:    users,
		registry: registry,
		pub:      pub,
		uploader: uploader,
		log:      log,
	}
}

// SendMessage persists a message and attempts immediate delivery. Image may
// be a data URI (uploaded to media storage first) or an already-hosted URL.
// Push delivery is at-most-once; a failed push after successful persistence
// is swallowed.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID, text, image string) (*models.Message, error) {
	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      image,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if image != "" && s.uploader != nil && strings.HasPrefix(image, "data:") {
		url, err := s.uploader.UploadDataURI(ctx, senderID, image)
		if err != nil {
			return nil, err
		}
		m.Image = url
	}

	saved, err := s.store.Insert(ctx, m)
	if err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	if s.pub != nil {
		s.pub.MessageSent(ctx, saved)
	}

	if c, ok := s.registry.Lookup(receiverID); ok {
		b, err := ws.NewMessageEvent(saved)
		if err == nil && c.Push(b) {
			metrics.MessagesPushed.Inc()
		} else {
			s.log.Debugw("push skipped", "message", saved.ID, "receiver", receiverID)
		}
	}
	return saved, nil
}

// ConversationWith returns the full history between viewer and other, oldest
// first, and consumes the viewer's unseen state for that conversation.
// Reading a conversation is defined to mark it seen; there is no separate
// mark-as-read gesture.
func (s *ChatService) ConversationWith(ctx context.Context, viewerID, otherID string) ([]*models.Message, error) {
	msgs, err := s.store.Conversation(ctx, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.MarkConversationSeen(ctx, viewerID, otherID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SidebarFor returns every other user plus the viewer's unseen counts keyed
// by sender id.
func (s *ChatService) SidebarFor(ctx context.Context, viewerID string) ([]*models.User, map[string]int64, error) {
	users, err := s.users.ListOthers(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.store.UnseenCounts(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return users, counts, nil
}

// MarkMessageSeen transitions a single message. Idempotent.
func (s *ChatService) MarkMessageSeen(ctx context.Context, id string) error {
	return s.store.MarkMessageSeen(ctx, id)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/apperr"
	"github.com/fathima-sithara/quickchat/internal/models"
	"github.com/fathima-sithara/quickchat/internal/repository"
	"github.com/fathima-sithara/quickchat/internal/ws"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.Message
}

func (f *fakePublisher) MessageSent(ctx context.Context, m *models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, m)
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type failingStore struct {
	repository.MessageStore
	insertErr error
}

func (s *failingStore) Insert(ctx context.Context, m *models.Message) (*models.Message, error) {
	return nil, s.insertErr
}

func newTestService(t *testing.T) (*ChatService, *ws.Registry, *repository.MemoryMessageStore, *fakePublisher) {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repository.NewMemoryMessageStore()
	users := repository.NewMemoryUserStore()
	reg := ws.NewRegistry(log, nil)
	pub := &fakePublisher{}
	return NewChatService(store, users, reg, pub, nil, log), reg, store, pub
}

func recvEvent(t *testing.T, c *ws.Client) ws.Event {
	t.Helper()
	select {
	case b, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var ev ws.Event
		require.NoError(t, json.Unmarshal(b, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return ws.Event{}
}

func recvMessage(t *testing.T, c *ws.Client) models.Message {
	t.Helper()
	ev := recvEvent(t, c)
	require.Equal(t, ws.EventNewMessage, ev.Type)
	var m models.Message
	require.NoError(t, json.Unmarshal(ev.Payload, &m))
	return m
}

func drain(c *ws.Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

func TestSendMessage_RejectsEmptyContent(t *testing.T) {
	req := require.New(t)
	svc, _, store, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "1", "2", "", "")
	req.ErrorIs(err, apperr.ErrEmptyMessage)

	// no side effects: nothing stored, nothing published
	msgs, err := store.Conversation(ctx, "1", "2")
	req.NoError(err)
	req.Empty(msgs)
	req.Zero(pub.count())
}

func TestSendMessage_PushesToOnlineRecipient(t *testing.T) {
	req := require.New(t)
	svc, reg, _, pub := newTestService(t)
	ctx := context.Background()

	b := ws.NewClient(nil, "2")
	reg.Register(b)
	drain(b)

	sent, err := svc.SendMessage(ctx, "1", "2", "hi", "")
	req.NoError(err)
	req.NotEmpty(sent.ID)
	req.False(sent.Seen)
	req.False(sent.CreatedAt.IsZero())

	got := recvMessage(t, b)
	req.Equal(sent.ID, got.ID)
	req.Equal("1", got.SenderID)
	req.Equal("hi", got.Text)
	req.False(got.Seen)
	req.Equal(1, pub.count())
}

func TestSendMessage_OfflineRecipientStoreOnly(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, "1", "2", "are you there", "")
	req.NoError(err)

	// guaranteed path: the message shows up unseen on the next fetch
	msgs, err := svc.ConversationWith(ctx, "2", "1")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal(sent.ID, msgs[0].ID)
	req.False(msgs[0].Seen)
}

func TestSendMessage_PersistFailureSurfacedNoPush(t *testing.T) {
	req := require.New(t)
	svc, reg, store, pub := newTestService(t)
	ctx := context.Background()

	boom := errors.New("store unavailable")
	svc.store = &failingStore{MessageStore: store, insertErr: boom}

	b := ws.NewClient(nil, "2")
	reg.Register(b)
	drain(b)

	_, err := svc.SendMessage(ctx, "1", "2", "hi", "")
	req.ErrorIs(err, boom)

	// delivery is never attempted when persistence fails
	select {
	case frame := <-b.Send:
		t.Fatalf("unexpected push: %s", frame)
	default:
	}
	req.Zero(pub.count())
}

func TestSeenLifecycle(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "1", "2", "one", "")
	req.NoError(err)
	_, err = svc.SendMessage(ctx, "1", "2", "two", "")
	req.NoError(err)

	_, counts, err := svc.SidebarFor(ctx, "2")
	req.NoError(err)
	req.Equal(int64(2), counts["1"])

	// reading the conversation consumes its unseen state
	msgs, err := svc.ConversationWith(ctx, "2", "1")
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal("one", msgs[0].Text)
	req.Equal("two", msgs[1].Text)

	_, counts, err = svc.SidebarFor(ctx, "2")
	req.NoError(err)
	req.Zero(counts["1"])

	msgs, err = svc.ConversationWith(ctx, "2", "1")
	req.NoError(err)
	for _, m := range msgs {
		req.True(m.Seen)
	}
}

func TestMarkMessageSeen_Idempotent(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	sent, err := svc.SendMessage(ctx, "1", "2", "hi", "")
	req.NoError(err)

	req.NoError(svc.MarkMessageSeen(ctx, sent.ID))
	req.NoError(svc.MarkMessageSeen(ctx, sent.ID))

	req.ErrorIs(svc.MarkMessageSeen(ctx, "missing"), apperr.ErrNotFound)
}

// TestSendDeliverSeenScenario walks the full lifecycle: presence on connect,
// push while online, store-only while offline, fetch-and-consume on return.
func TestSendDeliverSeenScenario(t *testing.T) {
	req := require.New(t)
	svc, reg, _, _ := newTestService(t)
	ctx := context.Background()

	a := ws.NewClient(nil, "1")
	reg.Register(a)
	ev := recvEvent(t, a)
	req.Equal(ws.EventOnlineUsers, ev.Type)
	var online []string
	req.NoError(json.Unmarshal(ev.Payload, &online))
	req.Equal([]string{"1"}, online)

	b := ws.NewClient(nil, "2")
	reg.Register(b)
	drain(a)
	ev = recvEvent(t, b)
	req.NoError(json.Unmarshal(ev.Payload, &online))
	req.Equal([]string{"1", "2"}, online)

	_, err := svc.SendMessage(ctx, "1", "2", "hi", "")
	req.NoError(err)
	got := recvMessage(t, b)
	req.Equal("hi", got.Text)
	req.False(got.Seen)

	reg.Unregister(b)
	drain(a)

	_, err = svc.SendMessage(ctx, "1", "2", "bye", "")
	req.NoError(err)

	msgs, err := svc.ConversationWith(ctx, "2", "1")
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal("hi", msgs[0].Text)
	req.Equal("bye", msgs[1].Text)

	_, counts, err := svc.SidebarFor(ctx, "2")
	req.NoError(err)
	req.NotContains(counts, "1")
}

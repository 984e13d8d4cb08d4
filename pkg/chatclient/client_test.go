package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleEvent_PresenceReplacesSnapshot(t *testing.T) {
	req := require.New(t)
	c := New(Config{BaseURL: "http://example"})

	c.handleEvent(event{Type: eventOnlineUsers, Payload: mustRaw(t, []string{"1", "2"})})
	req.ElementsMatch([]string{"1", "2"}, c.OnlineUsers())
	req.True(c.IsOnline("1"))

	// no incremental merge: the next snapshot wins wholesale
	c.handleEvent(event{Type: eventOnlineUsers, Payload: mustRaw(t, []string{"3"})})
	req.ElementsMatch([]string{"3"}, c.OnlineUsers())
	req.False(c.IsOnline("1"))
}

func TestHandleEvent_PushRouting(t *testing.T) {
	req := require.New(t)
	c := New(Config{BaseURL: "http://example"})
	c.openWith = "alice"

	c.handleEvent(event{Type: eventNewMessage, Payload: mustRaw(t, Message{ID: "m1", SenderID: "alice", Text: "hi"})})
	req.Len(c.Messages(), 1)
	req.Equal("hi", c.Messages()[0].Text)

	// a push from someone else only bumps their unseen count
	c.handleEvent(event{Type: eventNewMessage, Payload: mustRaw(t, Message{ID: "m2", SenderID: "bob", Text: "yo"})})
	req.Len(c.Messages(), 1)
	req.Equal(int64(1), c.UnseenCounts()["bob"])

	c.handleEvent(event{Type: eventNewMessage, Payload: mustRaw(t, Message{ID: "m3", SenderID: "bob", Text: "yo again"})})
	req.Equal(int64(2), c.UnseenCounts()["bob"])
}

func TestOpenConversation_ReplacesLocalState(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/api/messages/alice", r.URL.Path)
		req.Equal("Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(messagesResponse{
			Success:  true,
			Messages: []Message{{ID: "m1", SenderID: "alice", Text: "old"}, {ID: "m2", SenderID: "me", Text: "older reply"}},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Token: "tok"})
	c.messages = []Message{{ID: "stale"}}
	c.unseen["alice"] = 5

	msgs, err := c.OpenConversation(context.Background(), "alice")
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal("m1", msgs[0].ID)
	req.NotContains(c.UnseenCounts(), "alice")
	req.Equal("alice", c.openWith)
}

func TestSend_AppendsOnlyConfirmedRecord(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/api/messages/send/alice", r.URL.Path)
		var body map[string]string
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("hi", body["text"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sendResponse{
			Success:    true,
			NewMessage: &Message{ID: "server-id", SenderID: "me", ReceiverID: "alice", Text: "hi"},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Token: "tok"})
	c.openWith = "alice"

	m, err := c.Send(context.Background(), "hi", "")
	req.NoError(err)
	req.Equal("server-id", m.ID)

	msgs := c.Messages()
	req.Len(msgs, 1)
	req.Equal("server-id", msgs[0].ID)
}

func TestSend_FailureLeavesStateUntouched(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(statusResponse{Success: false, Message: "delivery failed"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Token: "tok"})
	c.openWith = "alice"
	c.messages = []Message{{ID: "m1"}}

	_, err := c.Send(context.Background(), "hi", "")
	req.Error(err)
	req.Len(c.Messages(), 1)
	req.Equal("m1", c.Messages()[0].ID)
}

func TestSend_RequiresOpenConversation(t *testing.T) {
	c := New(Config{BaseURL: "http://example"})
	_, err := c.Send(context.Background(), "hi", "")
	require.ErrorIs(t, err, ErrNoOpenConversation)
}

func TestSidebar_ReplacesUnseenCounts(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sidebarResponse{
			Success:        true,
			Users:          []User{{ID: "alice"}, {ID: "bob"}},
			UnseenMessages: map[string]int64{"bob": 4},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Token: "tok"})
	c.unseen["alice"] = 9 // locally accumulated, server is authoritative

	users, counts, err := c.Sidebar(context.Background())
	req.NoError(err)
	req.Len(users, 2)
	req.Equal(int64(4), counts["bob"])
	req.NotContains(c.UnseenCounts(), "alice")
}

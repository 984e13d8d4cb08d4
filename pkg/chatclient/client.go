// Package chatclient is the Go client for the quickchat server. It holds the
// client-side view of one user's session: the online set, the open
// conversation's message list and the per-sender unseen counts, reconciled
// from server pushes and explicit fetches.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrNoOpenConversation = errors.New("chatclient: no open conversation")

type Config struct {
	BaseURL string // e.g. http://localhost:5000
	Token   string

	HTTPTimeout   time.Duration // per-request; default 10s
	FetchRetryMax time.Duration // total budget for fetch retries; default 15s
	Logger        *zap.SugaredLogger
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.SugaredLogger

	mu       sync.Mutex
	online   map[string]struct{}
	openWith string
	messages []Message
	unseen   map[string]int64

	conn *websocket.Conn
	done chan struct{}
}

func New(cfg Config) *Client {
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.FetchRetryMax == 0 {
		cfg.FetchRetryMax = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		log:    cfg.Logger,
		online: make(map[string]struct{}),
		unseen: make(map[string]int64),
	}
}

// Connect dials the websocket and starts consuming pushed events. The read
// loop runs until the connection closes or Close is called.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/api/ws"
	q := u.Query()
	q.Set("token", c.cfg.Token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("chatclient: dial: %w", err)
	}
	c.conn = conn
	c.done = make(chan struct{})
	go c.readLoop()
	return nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debugw("read loop closed", "err", err)
			return
		}
		var ev event
		if err := json.Unmarshal(b, &ev); err != nil {
			c.log.Warnw("bad frame", "err", err)
			continue
		}
		c.handleEvent(ev)
	}
}

// handleEvent applies one pushed event to local state. Presence replaces the
// whole online snapshot; a pushed message either appends to the open
// conversation or bumps the sender's unseen count.
func (c *Client) handleEvent(ev event) {
	switch ev.Type {
	case eventOnlineUsers:
		var ids []string
		if err := json.Unmarshal(ev.Payload, &ids); err != nil {
			return
		}
		next := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			next[id] = struct{}{}
		}
		c.mu.Lock()
		c.online = next
		c.mu.Unlock()
	case eventNewMessage:
		var m Message
		if err := json.Unmarshal(ev.Payload, &m); err != nil {
			return
		}
		c.mu.Lock()
		if c.openWith != "" && m.SenderID == c.openWith {
			c.messages = append(c.messages, m)
		} else {
			c.unseen[m.SenderID]++
		}
		c.mu.Unlock()
	}
}

// Close tears down the websocket and waits for the read loop to exit.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	<-c.done
	return err
}

// Sidebar fetches conversation partners and the authoritative unseen counts,
// replacing the locally accumulated ones.
func (c *Client) Sidebar(ctx context.Context) ([]User, map[string]int64, error) {
	var resp sidebarResponse
	if err := c.get(ctx, "/api/messages/users", &resp); err != nil {
		return nil, nil, err
	}
	counts := resp.UnseenMessages
	if counts == nil {
		counts = map[string]int64{}
	}
	c.mu.Lock()
	c.unseen = make(map[string]int64, len(counts))
	for k, v := range counts {
		c.unseen[k] = v
	}
	c.mu.Unlock()
	return resp.Users, counts, nil
}

// OpenConversation fetches the full history with otherID and replaces the
// local message list. The server marks the conversation seen as a side
// effect, so the local unseen entry is cleared too.
func (c *Client) OpenConversation(ctx context.Context, otherID string) ([]Message, error) {
	var resp messagesResponse
	if err := c.get(ctx, "/api/messages/"+url.PathEscape(otherID), &resp); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.openWith = otherID
	c.messages = append([]Message(nil), resp.Messages...)
	delete(c.unseen, otherID)
	out := append([]Message(nil), c.messages...)
	c.mu.Unlock()
	return out, nil
}

func (c *Client) CloseConversation() {
	c.mu.Lock()
	c.openWith = ""
	c.messages = nil
	c.mu.Unlock()
}

// Send posts a message to the open conversation. Not optimistic: the local
// list grows only after the server returns the canonical record; on failure
// local state is untouched.
func (c *Client) Send(ctx context.Context, text, image string) (*Message, error) {
	c.mu.Lock()
	other := c.openWith
	c.mu.Unlock()
	if other == "" {
		return nil, ErrNoOpenConversation
	}

	var resp sendResponse
	err := c.do(ctx, http.MethodPost, "/api/messages/send/"+url.PathEscape(other),
		map[string]string{"text": text, "image": image}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.NewMessage == nil {
		return nil, errors.New("chatclient: empty send response")
	}

	c.mu.Lock()
	if c.openWith == other {
		c.messages = append(c.messages, *resp.NewMessage)
	}
	c.mu.Unlock()
	return resp.NewMessage, nil
}

// MarkMessageSeen acknowledges a single message.
func (c *Client) MarkMessageSeen(ctx context.Context, id string) error {
	var resp statusResponse
	return c.do(ctx, http.MethodPut, "/api/messages/mark/"+url.PathEscape(id), nil, &resp)
}

func (c *Client) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func (c *Client) OnlineUsers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.online))
	for id := range c.online {
		out = append(out, id)
	}
	return out
}

func (c *Client) IsOnline(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.online[userID]
	return ok
}

func (c *Client) UnseenCounts() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.unseen))
	for k, v := range c.unseen {
		out[k] = v
	}
	return out
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("chatclient: server returned %d: %s", e.status, e.message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope statusResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &apiError{status: resp.StatusCode, message: envelope.Message}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// get retries transient failures with exponential backoff. Client errors are
// permanent; writes never go through this path.
func (c *Client) get(ctx context.Context, path string, out any) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.cfg.FetchRetryMax
	return backoff.Retry(func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		var ae *apiError
		if errors.As(err, &ae) && ae.status < 500 {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}

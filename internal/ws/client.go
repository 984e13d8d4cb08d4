package ws

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Client is one live transport handle, bound to a single user identity for
// its whole lifetime. The registry owns it while registered.
type Client struct {
	UserID    string
	SocketID  string
	Send      chan []byte
	Connected time.Time

	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID:    userID,
		SocketID:  uuid.NewString(),
		Send:      make(chan []byte, 256),
		Connected: time.Now().UTC(),
		conn:      conn,
	}
}

// Push enqueues a frame without blocking. A full buffer or a closed client
// drops the frame; late delivery is covered by the fetch path.
func (c *Client) Push(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- b:
		return true
	default:
		return false
	}
}

// Close detaches the client. The write pump drains and exits when Send
// closes. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
	c.mu.Unlock()
}

// WritePump owns all writes to the underlying socket: queued frames plus
// keepalive pings. Returns when the client is closed or a write fails.
func (c *Client) WritePump(pingInterval, writeDeadline time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case b, ok := <-c.Send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

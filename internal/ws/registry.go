package ws

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/metrics"
)

// PresenceMirror receives best-effort online/offline notifications so other
// processes can read last-seen state. Calls must not block for long.
type PresenceMirror interface {
	SetOnline(userID string)
	SetOffline(userID string)
}

// Registry is the authoritative map of user identity to live connection. All
// mutations and snapshots serialize on one mutex, and every committed
// mutation broadcasts the resulting online set before the lock is released,
// so a broadcast can never observe a half-applied state.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client

	mirror PresenceMirror
	log    *zap.SugaredLogger
}

func NewRegistry(log *zap.SugaredLogger, mirror PresenceMirror) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		mirror:  mirror,
		log:     log,
	}
}

// Register installs c as the sole handle for its user. Last connection wins:
// a previous handle for the same identity is closed and stops receiving
// pushes. Triggers a presence broadcast.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	prev, replaced := r.clients[c.UserID]
	r.clients[c.UserID] = c
	if replaced {
		prev.Close()
	} else {
		metrics.ActiveConnections.Inc()
	}
	r.broadcastLocked()
	r.mu.Unlock()

	r.log.Infow("client registered", "user", c.UserID, "socket", c.SocketID, "replaced", replaced)
	if r.mirror != nil {
		r.mirror.SetOnline(c.UserID)
	}
}

// Unregister removes c if it is still the current handle for its user. A
// stale handle (already superseded by a newer register) or an unknown user is
// a no-op and does not broadcast.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	cur, ok := r.clients[c.UserID]
	removed := ok && cur == c
	if removed {
		delete(r.clients, c.UserID)
		metrics.ActiveConnections.Dec()
		r.broadcastLocked()
	}
	r.mu.Unlock()

	c.Close()
	if removed {
		r.log.Infow("client unregistered", "user", c.UserID, "socket", c.SocketID, "session", time.Since(c.Connected))
		if r.mirror != nil {
			r.mirror.SetOffline(c.UserID)
		}
	}
}

// Lookup returns the live handle for a user, if any. A miss is an expected
// state, not an error.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[userID]
	return c, ok
}

// Snapshot returns the current online set, sorted for determinism.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []string {
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// broadcastLocked pushes the full online set to every registered client.
// Fire-and-forget per connection: a client that cannot take the frame is
// either gone or about to unregister, which triggers a corrective broadcast.
func (r *Registry) broadcastLocked() {
	b, err := NewPresenceEvent(r.snapshotLocked())
	if err != nil {
		r.log.Errorw("presence event marshal", "err", err)
		return
	}
	for _, c := range r.clients {
		c.Push(b)
	}
	metrics.PresenceBroadcasts.Inc()
}

package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status is the mirrored presence record other services read.
type Status struct {
	Status   string `json:"status"`
	LastSeen int64  `json:"last_seen"`
}

// RedisMirror keeps a best-effort copy of online/last-seen state in Redis
// under <prefix>:presence:<user>. The in-process registry stays
// authoritative; mirror failures are logged and ignored.
type RedisMirror struct {
	client *redis.Client
	prefix string
	log    *zap.SugaredLogger
}

func NewRedisMirror(client *redis.Client, prefix string, log *zap.SugaredLogger) *RedisMirror {
	return &RedisMirror{client: client, prefix: prefix, log: log}
}

func (m *RedisMirror) key(userID string) string {
	return fmt.Sprintf("%s:presence:%s", m.prefix, userID)
}

func (m *RedisMirror) set(userID, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(Status{Status: status, LastSeen: time.Now().Unix()})
	if err := m.client.Set(ctx, m.key(userID), b, 0).Err(); err != nil {
		m.log.Warnw("presence mirror set", "user", userID, "status", status, "err", err)
	}
}

func (m *RedisMirror) SetOnline(userID string)  { m.set(userID, "online") }
func (m *RedisMirror) SetOffline(userID string) { m.set(userID, "offline") }

// LastSeen returns the mirrored record for a user, or redis.Nil if none.
func (m *RedisMirror) LastSeen(ctx context.Context, userID string) (*Status, error) {
	b, err := m.client.Get(ctx, m.key(userID)).Bytes()
	if err != nil {
		return nil, err
	}
	var st Status
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

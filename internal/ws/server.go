package ws

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/quickchat/internal/auth"
)

// Server upgrades connections, resolves the caller's identity and ties the
// connection lifetime to registry membership.
type Server struct {
	reg      *Registry
	verifier *auth.Manager
	log      *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewServer(reg *Registry, verifier *auth.Manager, pingInterval, writeDeadline time.Duration, maxMsgSize int64, log *zap.SugaredLogger) *Server {
	return &Server{
		reg:           reg,
		verifier:      verifier,
		log:           log,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

// HandleWS is the websocket.New handler. Identity comes from the token query
// parameter; a connection without a resolvable identity stays open but is
// never registered, so it receives no presence or message pushes.
func (s *Server) HandleWS() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID := ""
		if token := conn.Query("token"); token != "" {
			if claims, err := s.verifier.Verify(token); err == nil {
				userID = claims.UserID
			}
		}
		if userID == "" {
			s.log.Debugw("unidentified connection accepted, not registered")
			s.readLoop(conn)
			_ = conn.Close()
			return
		}

		c := NewClient(conn, userID)
		s.reg.Register(c)
		go c.WritePump(s.pingInterval, s.writeDeadline)
		s.readLoop(conn)
		s.reg.Unregister(c)
	}
}

// readLoop blocks until the transport closes. Clients talk to the server over
// REST; inbound socket frames only keep the connection alive.
func (s *Server) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(s.maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.pingInterval * 3))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pingInterval * 3))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pingInterval * 3))
	}
}

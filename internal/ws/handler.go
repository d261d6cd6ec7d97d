package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/codeclash/battle-backend/internal/matchmaking"
	"github.com/codeclash/battle-backend/internal/room"
	"github.com/codeclash/battle-backend/internal/types"
)

// TokenVerifier checks the handshake credential and yields the user id it
// was issued to.
type TokenVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Gateway accepts websocket connections and routes inbound events to the
// matchmaking engine and the room coordinator. It is the only component
// holding live connections; everything below it works on connection ids.
type Gateway struct {
	Log      *zap.Logger
	Verify   TokenVerifier
	Registry *Registry
	Engine   *matchmaking.Engine
	Coord    *room.Coordinator
	Origins  []string
}

func (g *Gateway) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := g.authenticate(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: g.Origins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := randID(8)
		out := g.Registry.Register(connID)
		sess := &session{
			connID: connID,
			userID: userID,
			reg:    g.Registry,
			engine: g.Engine,
			coord:  g.Coord,
		}
		defer func() {
			g.Coord.Inbox() <- room.Disconnect{ConnID: connID}
			g.Registry.Unregister(connID)
		}()

		g.Log.Info("client connected",
			zap.String("conn_id", connID),
			zap.String("user_id", userID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop. No read deadline: a player parked in matchmaking may
		// legitimately stay silent for a long time.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				g.Log.Info("client disconnected",
					zap.String("conn_id", connID),
					zap.String("user_id", userID))
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				g.Registry.Send(connID, types.ServerMessage{Type: "error", Error: "bad json"})
				continue
			}
			if !sess.dispatch(cm) {
				g.Registry.Send(connID, types.ServerMessage{Type: "error", Error: "unknown type"})
			}
		}
	}
}

// authenticate pulls the access token from the Authorization header or the
// token query parameter. Rejected connections never reach the core.
func (g *Gateway) authenticate(r *http.Request) (string, error) {
	var tok string
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tok = strings.TrimPrefix(h, "Bearer ")
	} else {
		tok = r.URL.Query().Get("token")
	}
	return g.Verify.VerifyAccess(tok)
}

// session routes one connection's inbound events. Kept separate from the
// websocket plumbing so the event flow is testable without a transport.
type session struct {
	connID string
	userID string
	reg    *Registry
	engine *matchmaking.Engine
	coord  *room.Coordinator
}

func (s *session) dispatch(cm types.ClientMessage) bool {
	switch cm.Type {
	case "find_match":
		s.findMatch(cm)
	case "join_room":
		s.coord.Inbox() <- room.Join{UserID: s.effectiveUser(cm), ConnID: s.connID}
	case "code_update":
		s.coord.Inbox() <- room.Relay{RoomID: cm.RoomID, From: s.connID, Payload: cm.Code}
	default:
		return false
	}
	return true
}

func (s *session) findMatch(cm types.ClientMessage) {
	p := matchmaking.Player{
		ConnID: s.connID,
		UserID: s.effectiveUser(cm),
		Rating: cm.SkillRating,
	}

	opp, ok := s.engine.FindMatch(p)
	if !ok {
		s.engine.AddPlayer(p)
		s.reg.Send(s.connID, types.ServerMessage{Type: "waiting", Message: "Waiting for an opponent"})
		return
	}

	s.reg.Send(s.connID, types.ServerMessage{Type: "match_found", OpponentID: opp.UserID})
	s.reg.Send(opp.ConnID, types.ServerMessage{Type: "match_found", OpponentID: p.UserID})
}

func (s *session) effectiveUser(cm types.ClientMessage) string {
	if cm.UserID != "" {
		return cm.UserID
	}
	return s.userID
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

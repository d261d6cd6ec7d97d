package ws

import (
	"sync"

	"github.com/codeclash/battle-backend/internal/room"
	"github.com/codeclash/battle-backend/internal/types"
)

// Registry maps connection ids to outbound channels. It is the only place
// that knows which connection is alive; core components address connections
// by id and never hold a socket.
type Registry struct {
	mu    sync.Mutex
	conns map[string]chan types.ServerMessage
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]chan types.ServerMessage)}
}

// Register allocates an outbox for the connection. The caller's writer
// goroutine drains it until it is closed.
func (r *Registry) Register(connID string) chan types.ServerMessage {
	out := make(chan types.ServerMessage, 8)
	r.mu.Lock()
	r.conns[connID] = out
	r.mu.Unlock()
	return out
}

func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	if out, ok := r.conns[connID]; ok {
		delete(r.conns, connID)
		close(out)
	}
	r.mu.Unlock()
}

// Send queues a message for the connection. Unknown ids are dropped
// silently: the connection may have legitimately closed. A full outbox also
// drops the client rather than blocking the sender.
func (r *Registry) Send(connID string, msg types.ServerMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, ok := r.conns[connID]
	if !ok {
		return
	}
	select {
	case out <- msg:
		// ok
	default:
		// Client is slow/full - drop them.
		delete(r.conns, connID)
		close(out)
	}
}

// RoomNotifier adapts the registry to the coordinator's notifier contract,
// translating room events to wire messages.
type RoomNotifier struct{ Registry *Registry }

func (n RoomNotifier) Send(connID string, ev room.Event) {
	n.Registry.Send(connID, toServerMessage(ev))
}

func toServerMessage(ev room.Event) types.ServerMessage {
	msg := types.ServerMessage{Type: string(ev.Type), RoomID: ev.RoomID}
	switch ev.Type {
	case room.EvtBattleStarted:
		for _, p := range ev.Participants {
			msg.Participants = append(msg.Participants, types.Participant{UserID: p.UserID})
		}
	case room.EvtOpponentCode:
		msg.Code = ev.Payload
		msg.From = ev.From
	case room.EvtGameOver:
		msg.Winner = ev.Winner
		msg.Message = ev.Message
	}
	return msg
}

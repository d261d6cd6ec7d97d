package room

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType identifies an outbound session event.
type EventType string

const (
	EvtRoomAssigned  EventType = "room_assigned"
	EvtBattleStarted EventType = "battle_started"
	EvtOpponentCode  EventType = "opponent_code"
	EvtGameOver      EventType = "game_over"
)

// Event is what the coordinator pushes out to individual connections. The
// gateway translates it to the wire format; the coordinator never sees a
// connection.
type Event struct {
	Type         EventType
	RoomID       string
	Participants []Participant // battle_started roster, join order
	Payload      string        // opponent_code
	From         string        // opponent_code sender conn id
	Winner       string        // game_over
	Message      string        // game_over
}

// Notifier delivers an event to one connection. Delivery to a connection
// that is gone must be a silent no-op.
type Notifier interface {
	Send(connID string, ev Event)
}

type Msg interface{ isCoordinatorMsg() }

// Join admits a connection to an open room, creating one if needed. Reply,
// when non-nil, receives the room id.
type Join struct {
	UserID string
	ConnID string
	Reply  chan string
}

// Relay forwards a payload to everyone in the room except the sender.
type Relay struct {
	RoomID  string
	From    string
	Payload string
}

// Disconnect removes the connection from whatever room holds it.
type Disconnect struct{ ConnID string }

// GetRooms reflects internal state without data races. Test-only.
type GetRooms struct {
	Reply chan View
}

type Shutdown struct{}

func (Join) isCoordinatorMsg()       {}
func (Relay) isCoordinatorMsg()      {}
func (Disconnect) isCoordinatorMsg() {}
func (GetRooms) isCoordinatorMsg()   {}
func (Shutdown) isCoordinatorMsg()   {}

type View struct {
	NumRooms int
	Rooms    map[string][]Participant
}

// Coordinator owns the active-rooms table. All mutation goes through the
// loop, so concurrent joins racing to fill the same open room are serialized
// and a room never ends up with more than two participants.
type Coordinator struct {
	inbox  chan Msg
	rooms  map[string]*Room
	notify Notifier
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCoordinator(parent context.Context, notify Notifier, log *zap.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(parent)
	c := &Coordinator{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*Room),
		notify: notify,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go c.loop()
	return c
}

func (c *Coordinator) Inbox() chan<- Msg { return c.inbox }

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Join:
				c.join(msg)
			case Relay:
				c.relay(msg)
			case Disconnect:
				c.disconnect(msg.ConnID)
			case GetRooms:
				view := View{NumRooms: len(c.rooms), Rooms: make(map[string][]Participant, len(c.rooms))}
				for id, r := range c.rooms {
					view.Rooms[id] = append([]Participant(nil), r.Participants...)
				}
				msg.Reply <- view
			case Shutdown:
				c.cancel()
				return
			}
		}
	}
}

// join finds an open room whose occupant is a different user, or creates a
// fresh one. The linear scan is fine at this scale; concurrent session count
// is small relative to traffic.
func (c *Coordinator) join(msg Join) {
	var r *Room
	for _, candidate := range c.rooms {
		if candidate.Open() && !candidate.hasUser(msg.UserID) {
			r = candidate
			break
		}
	}
	if r == nil {
		r = &Room{ID: "room-" + uuid.NewString()}
		c.rooms[r.ID] = r
	}

	r.Participants = append(r.Participants, Participant{ConnID: msg.ConnID, UserID: msg.UserID})
	c.log.Info("participant joined room",
		zap.String("room_id", r.ID),
		zap.String("user_id", msg.UserID))

	if msg.Reply != nil {
		msg.Reply <- r.ID
	}
	c.notify.Send(msg.ConnID, Event{Type: EvtRoomAssigned, RoomID: r.ID})

	if len(r.Participants) == 2 {
		roster := append([]Participant(nil), r.Participants...)
		for _, p := range r.Participants {
			c.notify.Send(p.ConnID, Event{Type: EvtBattleStarted, RoomID: r.ID, Participants: roster})
		}
	}
}

// relay on an unknown room is a silent no-op: the room may have closed
// concurrently and a late update is not an error.
func (c *Coordinator) relay(msg Relay) {
	r, ok := c.rooms[msg.RoomID]
	if !ok {
		return
	}
	for _, p := range r.Participants {
		if p.ConnID == msg.From {
			continue
		}
		c.notify.Send(p.ConnID, Event{
			Type:    EvtOpponentCode,
			RoomID:  r.ID,
			Payload: msg.Payload,
			From:    msg.From,
		})
	}
}

func (c *Coordinator) disconnect(connID string) {
	for id, r := range c.rooms {
		if !r.removeConn(connID) {
			continue
		}
		switch len(r.Participants) {
		case 1:
			winner := r.Participants[0]
			c.notify.Send(winner.ConnID, Event{
				Type:    EvtGameOver,
				RoomID:  id,
				Winner:  winner.UserID,
				Message: "Your opponent has disconnected. You win!",
			})
			c.log.Info("room closed by forfeiture",
				zap.String("room_id", id),
				zap.String("winner", winner.UserID))
			delete(c.rooms, id)
		case 0:
			delete(c.rooms, id)
		}
	}
}

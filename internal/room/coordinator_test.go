package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type delivery struct {
	ConnID string
	Ev     Event
}

// recorder captures notifier sends so tests can assert on outbound events.
type recorder struct{ ch chan delivery }

func newRecorder() *recorder { return &recorder{ch: make(chan delivery, 16)} }

func (r *recorder) Send(connID string, ev Event) { r.ch <- delivery{ConnID: connID, Ev: ev} }

// helper: receive one delivery with a timeout so tests never hang
func recvDelivery(t *testing.T, ch <-chan delivery, within time.Duration) delivery {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(within):
		t.Fatalf("timed out waiting for delivery")
		return delivery{} // unreachable
	}
}

func recvNoDelivery(t *testing.T, ch <-chan delivery, within time.Duration) {
	t.Helper()
	select {
	case d := <-ch:
		t.Fatalf("expected no delivery within %v, but got: %+v", within, d)
	case <-time.After(within):
		// good: nothing arrived
	}
}

func recvRoomID(t *testing.T, ch <-chan string, within time.Duration) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(within):
		t.Fatalf("timed out waiting for room id")
		return "" // unreachable
	}
}

func view(t *testing.T, c *Coordinator) View {
	t.Helper()
	reply := make(chan View, 1)
	c.Inbox() <- GetRooms{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func newTestCoordinator(t *testing.T) (*Coordinator, *recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rec := newRecorder()
	return NewCoordinator(ctx, rec, zap.NewNop()), rec
}

func join(t *testing.T, c *Coordinator, userID, connID string) string {
	t.Helper()
	reply := make(chan string, 1)
	c.Inbox() <- Join{UserID: userID, ConnID: connID, Reply: reply}
	return recvRoomID(t, reply, time.Second)
}

func TestJoin_CreatesRoomAndAssignsIt(t *testing.T) {
	c, rec := newTestCoordinator(t)

	id := join(t, c, "u1", "c1")
	require.NotEmpty(t, id)

	d := recvDelivery(t, rec.ch, time.Second)
	assert.Equal(t, "c1", d.ConnID)
	assert.Equal(t, EvtRoomAssigned, d.Ev.Type)
	assert.Equal(t, id, d.Ev.RoomID)

	v := view(t, c)
	assert.Equal(t, 1, v.NumRooms)
}

func TestJoin_SecondUserStartsBattle(t *testing.T) {
	c, rec := newTestCoordinator(t)

	id1 := join(t, c, "u1", "c1")
	recvDelivery(t, rec.ch, time.Second) // u1 room_assigned

	id2 := join(t, c, "u2", "c2")
	require.Equal(t, id1, id2, "second join must land in the open room")

	// u2's room_assigned, then battle_started to both, in join order.
	d := recvDelivery(t, rec.ch, time.Second)
	assert.Equal(t, EvtRoomAssigned, d.Ev.Type)
	assert.Equal(t, "c2", d.ConnID)

	started := map[string]Event{}
	for i := 0; i < 2; i++ {
		d := recvDelivery(t, rec.ch, time.Second)
		require.Equal(t, EvtBattleStarted, d.Ev.Type)
		started[d.ConnID] = d.Ev
	}
	require.Len(t, started, 2)
	for _, ev := range started {
		require.Len(t, ev.Participants, 2)
		assert.Equal(t, "u1", ev.Participants[0].UserID)
		assert.Equal(t, "u2", ev.Participants[1].UserID)
	}
}

func TestJoin_SameUserNeverSharesARoom(t *testing.T) {
	c, _ := newTestCoordinator(t)

	id1 := join(t, c, "u1", "c1")
	id2 := join(t, c, "u1", "c2")
	assert.NotEqual(t, id1, id2)

	v := view(t, c)
	assert.Equal(t, 2, v.NumRooms)
}

func TestJoin_FullRoomOverflowsToNewRoom(t *testing.T) {
	c, _ := newTestCoordinator(t)

	id1 := join(t, c, "u1", "c1")
	join(t, c, "u2", "c2")
	id3 := join(t, c, "u3", "c3")
	assert.NotEqual(t, id1, id3)

	v := view(t, c)
	for _, ps := range v.Rooms {
		assert.LessOrEqual(t, len(ps), 2)
	}
}

func TestRelay_SkipsSender(t *testing.T) {
	c, rec := newTestCoordinator(t)

	id := join(t, c, "u1", "c1")
	join(t, c, "u2", "c2")
	for i := 0; i < 4; i++ { // drain join events
		recvDelivery(t, rec.ch, time.Second)
	}

	c.Inbox() <- Relay{RoomID: id, From: "c1", Payload: "print('hi')"}

	d := recvDelivery(t, rec.ch, time.Second)
	assert.Equal(t, "c2", d.ConnID)
	assert.Equal(t, EvtOpponentCode, d.Ev.Type)
	assert.Equal(t, "print('hi')", d.Ev.Payload)
	assert.Equal(t, "c1", d.Ev.From)
	recvNoDelivery(t, rec.ch, 50*time.Millisecond)
}

func TestRelay_UnknownRoomIsNoOp(t *testing.T) {
	c, rec := newTestCoordinator(t)
	c.Inbox() <- Relay{RoomID: "room-gone", From: "c1", Payload: "x"}
	recvNoDelivery(t, rec.ch, 50*time.Millisecond)
}

func TestDisconnect_ForfeitsToRemainingParticipant(t *testing.T) {
	c, rec := newTestCoordinator(t)

	id := join(t, c, "u1", "c1")
	join(t, c, "u2", "c2")
	for i := 0; i < 4; i++ {
		recvDelivery(t, rec.ch, time.Second)
	}

	c.Inbox() <- Disconnect{ConnID: "c1"}

	d := recvDelivery(t, rec.ch, time.Second)
	assert.Equal(t, "c2", d.ConnID)
	assert.Equal(t, EvtGameOver, d.Ev.Type)
	assert.Equal(t, "u2", d.Ev.Winner)
	recvNoDelivery(t, rec.ch, 50*time.Millisecond)

	v := view(t, c)
	assert.Zero(t, v.NumRooms)

	// A late update for the closed room goes nowhere.
	c.Inbox() <- Relay{RoomID: id, From: "c2", Payload: "y"}
	recvNoDelivery(t, rec.ch, 50*time.Millisecond)
}

func TestDisconnect_SoleParticipantDeletesSilently(t *testing.T) {
	c, rec := newTestCoordinator(t)

	join(t, c, "u1", "c1")
	recvDelivery(t, rec.ch, time.Second)

	c.Inbox() <- Disconnect{ConnID: "c1"}
	recvNoDelivery(t, rec.ch, 50*time.Millisecond)

	v := view(t, c)
	assert.Zero(t, v.NumRooms)
}

func TestDisconnect_UnknownConnHasNoEffect(t *testing.T) {
	c, rec := newTestCoordinator(t)

	join(t, c, "u1", "c1")
	recvDelivery(t, rec.ch, time.Second)

	c.Inbox() <- Disconnect{ConnID: "nobody"}
	recvNoDelivery(t, rec.ch, 50*time.Millisecond)

	v := view(t, c)
	assert.Equal(t, 1, v.NumRooms)
}

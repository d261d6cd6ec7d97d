package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/codeclash/battle-backend/internal/room"
	"github.com/codeclash/battle-backend/internal/types"
)

type stubVerifier struct {
	userID string
	err    error
}

func (s stubVerifier) VerifyAccess(string) (string, error) { return s.userID, s.err }

func TestHandler_RejectsBadCredentialBeforeUpgrade(t *testing.T) {
	g := &Gateway{
		Log:      zap.NewNop(),
		Verify:   stubVerifier{err: errors.New("invalid token")},
		Registry: NewRegistry(),
	}
	srv := httptest.NewServer(g.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?token=bogus")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestToServerMessage(t *testing.T) {
	msg := toServerMessage(room.Event{
		Type:         room.EvtBattleStarted,
		RoomID:       "room-1",
		Participants: []room.Participant{{UserID: "u1"}, {UserID: "u2"}},
	})
	assert.Equal(t, types.ServerMessage{
		Type:         "battle_started",
		RoomID:       "room-1",
		Participants: []types.Participant{{UserID: "u1"}, {UserID: "u2"}},
	}, msg)

	msg = toServerMessage(room.Event{
		Type:    room.EvtGameOver,
		RoomID:  "room-1",
		Winner:  "u2",
		Message: "Your opponent has disconnected. You win!",
	})
	assert.Equal(t, "u2", msg.Winner)
	assert.Equal(t, "game_over", msg.Type)
}

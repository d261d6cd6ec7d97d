package room

// Participant references a room occupant. It carries lookup keys only; the
// gateway owns the live connection behind ConnID.
type Participant struct {
	ConnID string
	UserID string
}

// Room is a 1v1 session. Participants stay in join order; the slice never
// grows past two.
type Room struct {
	ID           string
	Participants []Participant
}

// Open reports whether the room can still admit a second participant.
func (r *Room) Open() bool { return len(r.Participants) < 2 }

func (r *Room) hasUser(userID string) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// removeConn drops the participant with the given connection id, if present.
func (r *Room) removeConn(connID string) bool {
	for i, p := range r.Participants {
		if p.ConnID == connID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

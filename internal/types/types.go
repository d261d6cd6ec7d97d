package types

// ClientMessage is the inbound event envelope. Type selects the fields that
// matter: "find_match" uses UserID+SkillRating, "join_room" uses UserID,
// "code_update" uses RoomID+Code.
type ClientMessage struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id,omitempty"`
	SkillRating int    `json:"skill_rating,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	Code        string `json:"code,omitempty"`
}

type Participant struct {
	UserID string `json:"user_id"`
}

// ServerMessage is the outbound event envelope.
// Type: "match_found" | "waiting" | "room_assigned" | "battle_started" |
// "opponent_code" | "game_over" | "error"
type ServerMessage struct {
	Type         string        `json:"type"`
	RoomID       string        `json:"room_id,omitempty"`
	OpponentID   string        `json:"opponent_id,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
	Code         string        `json:"code,omitempty"`
	From         string        `json:"from,omitempty"`
	Winner       string        `json:"winner,omitempty"`
	Message      string        `json:"message,omitempty"`
	Error        string        `json:"error,omitempty"`
}

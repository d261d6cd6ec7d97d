package types

// Client -> Server
// find_match:
//   user_id: string
//   skill_rating: number
//
// join_room:
//   user_id: string
//
// code_update:
//   room_id: string
//   code: string

// Server -> Client
// match_found:
//   opponent_id: string
//
// waiting:
//   message: string
//
// room_assigned:
//   room_id: string
//
// battle_started:
//   room_id: string
//   participants: [{ user_id }] // join order
//
// opponent_code:
//   room_id: string
//   code: string
//   from: string // sender connection id
//
// game_over:
//   room_id: string
//   winner: string
//   message: string
//
// error:
//   error: string

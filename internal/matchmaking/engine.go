package matchmaking

import (
	"slices"
	"sync"
)

// Engine pairs players of comparable rating. Players wait in buckets keyed by
// their rating truncated to the lower multiple of 100; a search widens from
// the requester's own bucket to the adjacent ones and finally to everything.
//
// Buckets are created lazily and never removed: an emptied bucket is cheap
// and gets reused the next time a player lands in its range.
type Engine struct {
	mu      sync.Mutex
	buckets map[int]*Bucket
}

func NewEngine() *Engine {
	return &Engine{buckets: make(map[int]*Bucket)}
}

func rangeKey(rating int) int {
	return (rating / 100) * 100
}

// AddPlayer parks p in the bucket for its rating range. There is no timeout:
// a player that never matches stays until the gateway stops asking for them.
func (e *Engine) AddPlayer(p Player) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := rangeKey(p.Rating)
	b := e.buckets[key]
	if b == nil {
		b = &Bucket{}
		e.buckets[key] = b
	}
	b.Insert(p)
}

// FindMatch looks for a waiting opponent for p. Search order: p's own range,
// one range below, one range above, then a sweep over every bucket. A
// candidate sharing p's user id is discarded and the search continues, so a
// player can never be matched against their own waiting entry or another
// entry of the same account. Within a bucket the lowest rating wins.
//
// The matched player is removed from its bucket. Returns false when no valid
// opponent exists anywhere; callers typically follow up with AddPlayer.
func (e *Engine) FindMatch(p Player) (Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := rangeKey(p.Rating)
	for _, k := range []int{key, key - 100, key + 100} {
		if b := e.buckets[k]; b != nil {
			if opp, ok := b.ExtractMin(); ok && opp.UserID != p.UserID {
				return opp, true
			}
		}
	}

	// Last resort: drain every bucket until something valid turns up.
	keys := make([]int, 0, len(e.buckets))
	for k := range e.buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b := e.buckets[k]
		for b.Size() > 0 {
			opp, _ := b.ExtractMin()
			if opp.UserID != p.UserID {
				return opp, true
			}
		}
	}

	return Player{}, false
}

// Waiting reports how many players are parked across all buckets.
func (e *Engine) Waiting() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, b := range e.buckets {
		n += b.Size()
	}
	return n
}

package matchmaking

// Player is a matchmaking entry waiting in a bucket. It holds only the
// connection's lookup key, never the connection itself, so the engine can be
// exercised without a transport.
type Player struct {
	ConnID string
	UserID string
	Rating int
}

// Bucket is a binary min-heap of players ordered by ascending rating. Each
// bucket is owned by exactly one Engine; it does no locking of its own.
type Bucket struct {
	players []Player
}

func (b *Bucket) Insert(p Player) {
	b.players = append(b.players, p)
	b.siftUp(len(b.players) - 1)
}

// ExtractMin removes and returns the lowest-rated player. The second return
// is false when the bucket is empty, which is a normal outcome.
func (b *Bucket) ExtractMin() (Player, bool) {
	if len(b.players) == 0 {
		return Player{}, false
	}
	min := b.players[0]
	last := len(b.players) - 1
	b.players[0] = b.players[last]
	b.players = b.players[:last]
	if last > 0 {
		b.siftDown(0)
	}
	return min, true
}

func (b *Bucket) Size() int { return len(b.players) }

func (b *Bucket) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if b.players[i].Rating >= b.players[parent].Rating {
			break
		}
		b.players[i], b.players[parent] = b.players[parent], b.players[i]
		i = parent
	}
}

func (b *Bucket) siftDown(i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < len(b.players) && b.players[left].Rating < b.players[smallest].Rating {
			smallest = left
		}
		if right < len(b.players) && b.players[right].Rating < b.players[smallest].Rating {
			smallest = right
		}
		if smallest == i {
			return
		}
		b.players[i], b.players[smallest] = b.players[smallest], b.players[i]
		i = smallest
	}
}

package services

// Move identifies a neighborhood move by the pair of route positions it
// touches. 2-opt (reverse route[I:J]) and swap (exchange I and J) moves share
// the same descriptor space.
type Move struct {
	I int `json:"i"`
	J int `json:"j"`
}

// TabuList is a bounded FIFO of recently applied moves.
type TabuList struct {
	moves []Move
	size  int
}

func NewTabuList(size int) *TabuList {
	if size < 0 {
		size = 0
	}
	return &TabuList{moves: make([]Move, 0, size), size: size}
}

// Contains reports whether m is currently forbidden.
func (t *TabuList) Contains(m Move) bool {
	for _, x := range t.moves {
		if x == m {
			return true
		}
	}
	return false
}

// Push records m, evicting the oldest entry when the list is full.
func (t *TabuList) Push(m Move) {
	if t.size == 0 {
		return
	}
	if len(t.moves) == t.size {
		copy(t.moves, t.moves[1:])
		t.moves = t.moves[:len(t.moves)-1]
	}
	t.moves = append(t.moves, m)
}

func (t *TabuList) Len() int { return len(t.moves) }

// Moves returns the current entries, oldest first.
func (t *TabuList) Moves() []Move {
	out := make([]Move, len(t.moves))
	copy(out, t.moves)
	return out
}

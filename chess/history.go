package chess

import (
	"github.com/cespare/xxhash"
)

// History is the ordered sequence of positions reached so far, used for
// repetition detection and as the basis of the evaluator cache key (spec
// §3's "position history"). It does not track the move that led to each
// entry; the search tree already has that via Node.move.
type History struct {
	positions []Position
}

// NewHistory starts a history at the given root position.
func NewHistory(root Position) *History {
	return &History{positions: []Position{root}}
}

// Current returns the most recently appended position.
func (h *History) Current() *Position {
	return &h.positions[len(h.positions)-1]
}

// Len reports how many positions are in the history.
func (h *History) Len() int {
	return len(h.positions)
}

// PositionAt returns the position `back` plies before the current one (0
// is Current()), or nil if the history doesn't go back that far. Used by
// the plane encoder to walk the look-back window.
func (h *History) PositionAt(back int) *Position {
	idx := len(h.positions) - 1 - back
	if idx < 0 {
		return nil
	}
	return &h.positions[idx]
}

// Append adds a new position reached by playing a move from Current().
func (h *History) Append(p Position) {
	h.positions = append(h.positions, p)
}

// Truncate keeps only the first n positions, discarding the rest, e.g. to
// unwind speculative play back to a real position. (The search's prefetch
// works on a Clone instead.)
func (h *History) Truncate(n int) {
	h.positions = h.positions[:n]
}

// Clone returns an independent copy of the history.
func (h *History) Clone() *History {
	cp := make([]Position, len(h.positions))
	copy(cp, h.positions)
	return &History{positions: cp}
}

// RepetitionCount reports how many times the current position's board,
// side to move, castling rights and en-passant square have occurred earlier
// in the history (not counting the current occurrence itself).
func (h *History) RepetitionCount() int {
	cur := h.Current()
	count := 0
	for i := 0; i < len(h.positions)-1; i++ {
		if samePosition(&h.positions[i], cur) {
			count++
		}
	}
	return count
}

func samePosition(a, b *Position) bool {
	if a.SideToMove != b.SideToMove || a.Castling != b.Castling || a.EnPassant != b.EnPassant {
		return false
	}
	return a.Board == b.Board
}

// NoCapturePly is the position's own halfmove clock, i.e. plies since the
// last capture or pawn move.
func (h *History) NoCapturePly() int {
	return h.Current().HalfmoveClock
}

// GamePly is the number of half-moves played to reach the current position.
func (h *History) GamePly() int {
	return len(h.positions) - 1
}

// Fingerprint hashes the last k positions' board state and side-to-move
// flag into a 64-bit key, the evaluator cache key described in spec §3 and
// §4.3. The fingerprint is invariant to anything outside those fields, per
// spec's stated invariant, so two histories that agree on their last k
// boards and mover collide intentionally (cheap, slightly conservative
// cache key for encoded planes which only ever look back k plies, set by
// the cache-history-length option).
func (h *History) Fingerprint(k int) uint64 {
	start := len(h.positions) - k
	if start < 0 {
		start = 0
	}
	digest := xxhash.New()
	for i := start; i < len(h.positions); i++ {
		p := &h.positions[i]
		var buf [65]byte
		for sq := 0; sq < 64; sq++ {
			buf[sq] = byte(p.Board[sq])
		}
		buf[64] = byte(p.SideToMove)
		digest.Write(buf[:])
	}
	return digest.Sum64()
}

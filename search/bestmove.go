package search

import (
	"math"

	"lukechampine.com/frand"

	"github.com/corvidchess/corvid/chess"
)

// BestChild selects the root child maximizing the lexicographic tuple
// (n, q, p) — "most visits; ties broken by eval, then prior" — per spec
// §4.5's "Best move selection", filtered by limits.SearchMoves. Returns
// chess.Null if the root has no children (should only happen for an
// already-terminal root).
func BestChild(t *Tree, limits Limits) chess.Move {
	t.RLock()
	defer t.RUnlock()
	idx := bestChildLocked(t, RootIndex, limits)
	if idx == -1 {
		return chess.Null
	}
	return t.arena[idx].Move
}

// bestChildLocked is BestChild's body, callable while the tree lock is
// already held (shared or exclusive) by the caller.
func bestChildLocked(t *Tree, parentIdx int32, limits Limits) int32 {
	parent := &t.arena[parentIdx]
	best := int32(-1)
	for _, c := range parent.Children {
		child := &t.arena[c]
		if parentIdx == RootIndex && limits.HasSearchMoves() && !limits.Allows(child.Move) {
			continue
		}
		if best == -1 || better(child, &t.arena[best]) {
			best = c
		}
	}
	return best
}

// better reports whether a beats b under (n, q, p) lexicographic order.
// Q is stored from each child's own point of view (spec §3), so comparing
// a.Q/b.Q directly would rank ties by which child is best for the
// opponent; negate both first, matching the parent's-eye-view convention
// selection.go's childQ already uses.
func better(a, b *Node) bool {
	if a.N != b.N {
		return a.N > b.N
	}
	if a.Q != b.Q {
		return -a.Q > -b.Q
	}
	return a.P > b.P
}

// BestChildWithTemperature implements spec §4.5's temperature-based draw:
// when temperature is active and the root has more than one visit, it
// draws proportionally to (n/n_parent)^(1/T) instead of always taking the
// most-visited child, with T linearly decayed to 0 over the first
// tempDecayMoves half-moves (ply counts from the game's start, not this
// search). The searchmoves filter is computed once into a mask and reused
// by both the weighting pass and the draw pass, eliminating the two-pass
// off-by-one spec's Open Question #3 warns about; the fallbacks to the
// plain best child apply the same filter through bestChildLocked.
func BestChildWithTemperature(t *Tree, limits Limits, temperature float64, ply, tempDecayMoves int) chess.Move {
	t.RLock()
	defer t.RUnlock()

	root := &t.arena[RootIndex]
	if temperature <= 0 || root.N <= 1 || len(root.Children) == 0 {
		idx := bestChildLocked(t, RootIndex, limits)
		if idx == -1 {
			return chess.Null
		}
		return t.arena[idx].Move
	}

	effectiveT := temperature
	if tempDecayMoves > 0 && ply < tempDecayMoves {
		effectiveT = temperature * (1 - float64(ply)/float64(tempDecayMoves))
	}
	if effectiveT <= 0 {
		idx := bestChildLocked(t, RootIndex, limits)
		if idx == -1 {
			return chess.Null
		}
		return t.arena[idx].Move
	}

	allowed := make([]bool, len(root.Children))
	for i, c := range root.Children {
		allowed[i] = !limits.HasSearchMoves() || limits.Allows(t.arena[c].Move)
	}

	weights := make([]float64, len(root.Children))
	var total float64
	for i, c := range root.Children {
		if !allowed[i] {
			continue
		}
		fraction := float64(t.arena[c].N) / float64(root.N)
		w := math.Pow(math.Max(fraction, 0), 1.0/effectiveT)
		weights[i] = w
		total += w
	}
	if total <= 0 {
		idx := bestChildLocked(t, RootIndex, limits)
		if idx == -1 {
			return chess.Null
		}
		return t.arena[idx].Move
	}

	draw := frand.Float64() * total
	var cumulative float64
	for i, c := range root.Children {
		if !allowed[i] {
			continue
		}
		cumulative += weights[i]
		if draw <= cumulative {
			return t.arena[c].Move
		}
	}
	// Floating-point rounding can leave a sliver undrawn; fall back to the
	// plain best child rather than returning no move.
	idx := bestChildLocked(t, RootIndex, limits)
	if idx == -1 {
		return chess.Null
	}
	return t.arena[idx].Move
}

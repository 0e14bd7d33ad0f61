package search

import "github.com/corvidchess/corvid/chess"

// Expand runs Phase C on a freshly selected leaf: generate legal moves,
// mark the node terminal if the position has none or hits a draw-by-rule
// shortcut, otherwise allocate one child per legal move with priors left
// zero pending NN evaluation. Must be called with the tree lock held
// exclusively; pos is the leaf's actual position, reached by replaying the
// path's moves from the root. Returns true if the node was marked terminal
// (in which case no NN evaluation is needed for it).
func Expand(t *Tree, leafIdx int32, isRoot bool, pos *chess.Position, hist *chess.History) bool {
	node := &t.arena[leafIdx]
	moves := pos.GenerateLegal()

	if len(moves) == 0 {
		if pos.UnderCheck() {
			node.Terminal = Loss
			node.V = -1
		} else {
			node.Terminal = Draw
			node.V = 0
		}
		return true
	}

	if !isRoot {
		if !pos.HasMatingMaterial() {
			node.Terminal = Draw
			node.V = 0
			return true
		}
		if hist.NoCapturePly() >= 100 {
			node.Terminal = Draw
			node.V = 0
			return true
		}
		if hist.RepetitionCount() >= 2 {
			node.Terminal = Draw
			node.V = 0
			return true
		}
	}

	t.AllocChildren(leafIdx, moves)
	return false
}

package search

import (
	"math"

	"github.com/corvidchess/corvid/chess"
)

// ThinkingInfo is one progress snapshot, emitted per spec §4.6's cadence
// rules and rendered by the uci package as an "info ..." line.
type ThinkingInfo struct {
	Depth       int
	SelDepth    int
	TimeMs      int64
	Nodes       int64
	Nps         int64
	HashfullPM  int
	ScoreCP     int
	PV          []chess.Move
}

// scoreCP converts a Q value in [-1,1] to centipawns using the exact
// constants from spec §4.6.
func scoreCP(q float64) int {
	return int(math.Round(290.680623 * math.Tan(1.548090806*q)))
}

// PrincipalVariation walks the chain of best-no-temperature children from
// the root, per spec §4.6's "the principal variation is the chain of
// best-no-temperature children from the root."
func PrincipalVariation(t *Tree, limits Limits) []chess.Move {
	t.RLock()
	defer t.RUnlock()
	var pv []chess.Move
	cur := RootIndex
	for {
		node := &t.arena[cur]
		if len(node.Children) == 0 {
			return pv
		}
		best := bestChildLocked(t, cur, limits)
		if best == -1 {
			return pv
		}
		pv = append(pv, t.arena[best].Move)
		cur = best
	}
}

// Snapshot builds a ThinkingInfo for the current tree state. elapsedMs and
// totalPlayouts come from the controller's counters (outside the tree
// lock); hashfullPM from the evaluator cache. bestRootChild is the
// controller's current best-move pointer; the reported score is read from
// that child's Q, negated into the root's point of view the same way
// selection.go's childQ does — matching the original's
// best_move_node_->GetQ(0), not the root node's own (rarely meaningful) Q.
func Snapshot(t *Tree, limits Limits, elapsedMs, totalPlayouts int64, hashfullPM int, bestRootChild int32) ThinkingInfo {
	t.RLock()
	root := &t.arena[RootIndex]
	var maxDepth, fullDepth int32
	for _, c := range root.Children {
		child := &t.arena[c]
		if child.MaxDepth > maxDepth {
			maxDepth = child.MaxDepth
		}
		if child.FullDepth > fullDepth {
			fullDepth = child.FullDepth
		}
	}
	var q float64
	if bestRootChild >= 0 {
		q = -t.arena[bestRootChild].Q
	}
	t.RUnlock()

	var nps int64
	if elapsedMs > 0 {
		nps = totalPlayouts * 1000 / elapsedMs
	}

	return ThinkingInfo{
		Depth:      int(fullDepth) + 1,
		SelDepth:   int(maxDepth) + 1,
		TimeMs:     elapsedMs,
		Nodes:      totalPlayouts,
		Nps:        nps,
		HashfullPM: hashfullPM,
		ScoreCP:    scoreCP(q),
		PV:         PrincipalVariation(t, limits),
	}
}

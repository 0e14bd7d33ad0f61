package search

import "math"

// tryStartScoreUpdate atomically claims a visit on the node at idx. It
// returns false if this claim is the first in-flight claim (no collision),
// true if one or more claims were already in flight on this node (a
// collision, per spec §4.5 Phase B). The claim is counted either way.
func tryStartScoreUpdate(t *Tree, idx int32) (collision bool) {
	prev := t.arena[idx].nInFlight.Add(1) - 1
	return prev > 0
}

// cancelScoreUpdate undoes a claim without touching N or Q, used both for
// collisions and when unwinding a completed backup.
func cancelScoreUpdate(t *Tree, idx int32) {
	t.arena[idx].nInFlight.Add(-1)
}

// fpuBaseline computes parent_q, the first-play-urgency value assigned to
// an unvisited child, per spec §4.5 Phase B. disableFpuReduction is set for
// the root when Dirichlet noise is enabled.
func fpuBaseline(parent *Node, children []int32, arena []Node, fpuReduction float64, disableFpuReduction bool) float64 {
	if disableFpuReduction {
		fpuReduction = 0
	}
	var visitedPolicy float64
	for _, c := range children {
		if arena[c].N >= 1 {
			visitedPolicy += float64(arena[c].P)
		}
	}
	return -parent.Q - fpuReduction*math.Sqrt(visitedPolicy)
}

// childQ returns Q(child, parentQ): the value the parent should credit to
// selecting this child, from the parent's perspective. An unvisited child
// gets the FPU baseline (already computed by the caller); a visited child's
// own Q is negated because it is stored from the child's own perspective.
func childQ(child *Node, parentQ float64, virtualLossBug float64) float64 {
	var q float64
	if child.N == 0 {
		q = parentQ
	} else {
		q = -child.Q
	}
	if inFlight := child.InFlight(); inFlight > 0 && virtualLossBug != 0 {
		q -= virtualLossBug * float64(inFlight)
	}
	return q
}

// puctScore computes score(child) per spec §4.5 Phase B.
func puctScore(child *Node, parentQ float64, sumN float64, cpuct, virtualLossBug float64) float64 {
	q := childQ(child, parentQ, virtualLossBug)
	u := float64(child.P) / (1 + float64(child.N))
	return q + cpuct*math.Sqrt(math.Max(1, sumN))*u
}

// selectChild picks the best child of parent by PUCT score, applying the
// root-only searchmoves whitelist and smart-pruning skip rules. It returns
// -1 if every candidate child is filtered out (which cannot happen at a
// properly expanded, non-terminal node with at least one legal move).
func selectChild(t *Tree, parentIdx int32, isRoot bool, limits Limits, bestRootChild int32, remainingPlayouts int64, opts *Options) int32 {
	parent := &t.arena[parentIdx]
	children := parent.Children
	disableFpu := isRoot && opts.Noise
	parentQ := fpuBaseline(parent, children, t.arena, opts.FpuReduction, disableFpu)

	var sumN float64
	for _, c := range children {
		sumN += float64(t.arena[c].N)
	}

	best := int32(-1)
	var bestScore float64
	for _, c := range children {
		child := &t.arena[c]
		if isRoot {
			if limits.HasSearchMoves() && !limits.Allows(child.Move) {
				continue
			}
			if c != bestRootChild && bestRootChild >= 0 && remainingPlayouts > 0 {
				bestN := t.arena[bestRootChild].N
				if int64(child.N)+remainingPlayouts < int64(bestN) {
					continue
				}
			}
		}
		score := puctScore(child, parentQ, sumN, opts.CPuct, opts.VirtualLossBug)
		if best == -1 || score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

// descend walks from the root to a leaf by repeated PUCT selection,
// claiming an in-flight visit at every step. It stops at the first node
// that has no children yet (an unexpanded or terminal leaf). The returned
// path includes every claimed node from just below the root to the leaf,
// in descent order; collided reports whether the leaf claim collided with
// another worker's in-flight claim.
func descend(t *Tree, limits Limits, bestRootChild int32, remainingPlayouts int64, opts *Options) (path []int32, leaf int32, collided bool) {
	cur := RootIndex
	for {
		node := &t.arena[cur]
		if len(node.Children) == 0 {
			return path, cur, false
		}
		next := selectChild(t, cur, cur == RootIndex, limits, bestRootChild, remainingPlayouts, opts)
		if next == -1 {
			return path, cur, false
		}
		collision := tryStartScoreUpdate(t, next)
		path = append(path, next)
		if collision {
			return path, next, true
		}
		cur = next
	}
}

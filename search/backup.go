package search

import "math"

// Backup runs Phase G from the leaf up to and including the root (path is
// root-child-to-leaf order, as returned by descend; the root itself is
// never in path since descend never claims it), given the leaf's value
// from its own perspective. Must be called with the tree lock held
// exclusively. bestRootChild is updated in place to track the root's
// best-move pointer, per spec §4.5's "update the root's best-move pointer
// to the child with the highest n among root's children" rule. This
// mirrors the original's actual backup loop, which walks "from the node up
// to the root's parent" — i.e. through the root inclusive
// (_examples/original_source/src/mcts/search.cc:844-846).
func Backup(t *Tree, path []int32, leafValue float32, opts *Options, bestRootChild *int32) {
	v := leafValue
	for i := len(path) - 1; i >= 0; i-- {
		idx := path[i]
		node := &t.arena[idx]

		node.N++
		weight := opts.BackpropBeta / math.Pow(float64(node.N), opts.BackpropGamma)
		node.Q += weight * (float64(v) - node.Q)

		// depthBelow is how many more nodes lie between this node and the
		// leaf that triggered this backup; both depth fields are progress-
		// reporting statistics only (spec §3), so a monotonic high-water
		// mark is all either one needs to track.
		depthBelow := int32(len(path) - 1 - i)
		if depthBelow > node.MaxDepth {
			node.MaxDepth = depthBelow
		}
		if depthBelow > node.FullDepth {
			node.FullDepth = depthBelow
		}

		if node.Parent == RootIndex {
			if *bestRootChild < 0 || t.arena[*bestRootChild].N < node.N {
				*bestRootChild = idx
			}
		}

		cancelScoreUpdate(t, idx)
		v = -v
	}

	// v now carries the correctly-signed value for the root itself (one
	// more flip than the last path entry, continuing the same alternation)
	// — update it the same way, minus the in-flight/bestRootChild bookkeeping
	// that only applies to claimed descendant nodes.
	root := &t.arena[RootIndex]
	root.N++
	weight := opts.BackpropBeta / math.Pow(float64(root.N), opts.BackpropGamma)
	root.Q += weight * (float64(v) - root.Q)
	depthBelow := int32(len(path))
	if depthBelow > root.MaxDepth {
		root.MaxDepth = depthBelow
	}
	if depthBelow > root.FullDepth {
		root.FullDepth = depthBelow
	}
}

// CancelPath undoes every in-flight claim along path without touching N or
// Q, used for a collided playout (Phase G's collision-entry handling).
func CancelPath(t *Tree, path []int32) {
	for _, idx := range path {
		cancelScoreUpdate(t, idx)
	}
}

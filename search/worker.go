package search

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/corvidchess/corvid/batch"
	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/nn"
	"github.com/corvidchess/corvid/nncache"
)

// leaf bundles what one gathered playout needs carried from Phase A/C
// through to Phase F/G.
type leaf struct {
	path          []int32
	idx           int32
	hist          *chess.History // nil for a terminal leaf, which needs no NN query
	terminal      bool
	terminalValue float32
	slot          int
}

// runIteration executes one full worker iteration — Phases A through H —
// against a shared tree, evaluator, and cache. It returns the number of
// playouts finalized (terminal leaves plus freshly expanded ones), which
// the caller folds into the controller's totalPlayouts counter.
func runIteration(t *Tree, evaluator nn.Evaluator, cache *nncache.Cache, rootPos chess.Position, limits Limits, opts *Options, bestRootChild *int32, remainingPlayouts int64) int64 {
	comp := batch.New(evaluator, cache)
	var leaves []leaf
	collisions := 0

	for len(leaves) < opts.MinibatchSize && collisions < opts.AllowedNodeCollisions {
		t.Lock()
		path, idx, collided := descend(t, limits, *bestRootChild, remainingPlayouts, opts)
		if collided {
			CancelPath(t, path)
			t.Unlock()
			collisions++
			continue
		}

		node := t.Node(idx)
		if len(node.Children) > 0 {
			// descend's selectChild found no viable candidate among an
			// already-expanded node's children (every root move filtered
			// or pruned): nothing to gather this round.
			t.Unlock()
			break
		}
		if node.Terminal != NonTerminal {
			v := node.V
			t.Unlock()
			leaves = append(leaves, leaf{path: path, idx: idx, terminal: true, terminalValue: v})
			continue
		}

		hist := replayToLeaf(t, rootPos, path)
		isRoot := idx == RootIndex
		wasExpanded := Expand(t, idx, isRoot, hist.Current(), hist)
		if wasExpanded {
			v := t.Node(idx).V
			t.Unlock()
			leaves = append(leaves, leaf{path: path, idx: idx, terminal: true, terminalValue: v})
			continue
		}
		children := append([]int32(nil), t.Node(idx).Children...)
		moves := make([]chess.Move, len(children))
		for i, c := range children {
			moves[i] = t.Node(c).Move
		}
		t.Unlock()

		planes := EncodePlanes(hist)
		key := hist.Fingerprint(opts.CacheHistoryLength)
		slot := comp.Add(key, planes, batch.MovesFromChess(moves))
		leaves = append(leaves, leaf{path: path, idx: idx, hist: hist, slot: slot})

		prefetchOne(comp, hist, opts)
	}

	if len(leaves) == 0 {
		return 0
	}
	if err := comp.Compute(); err != nil {
		panic(err) // spec §7: evaluator compute failure is fatal, propagated up
	}

	t.Lock()
	defer t.Unlock()
	var finalized int64
	for _, g := range leaves {
		if g.terminal {
			Backup(t, g.path, g.terminalValue, opts, bestRootChild)
			finalized++
			continue
		}
		distributeResult(t, comp, g, opts)
		Backup(t, g.path, t.Node(g.idx).V, opts, bestRootChild)
		finalized++
	}
	return finalized
}

// replayToLeaf rebuilds the position history along path, starting from
// rootPos. Must be called with the tree lock held (it reads Node.Move).
func replayToLeaf(t *Tree, rootPos chess.Position, path []int32) *chess.History {
	hist := chess.NewHistory(rootPos)
	cur := rootPos
	for _, idx := range path {
		m := t.Node(idx).Move
		cur = cur.Make(m)
		hist.Append(cur)
	}
	return hist
}

// distributeResult runs Phase F for one freshly computed non-terminal
// leaf: reads back the NN value and per-child priors, applies the policy
// softmax temperature, renormalizes, and mixes in Dirichlet root noise if
// this leaf is the root. Must be called with the tree lock held
// exclusively (it writes Node.V and Node.P).
func distributeResult(t *Tree, comp *batch.Computation, g leaf, opts *Options) {
	node := t.Node(g.idx)
	node.V = -comp.Value(g.slot)

	children := node.Children
	priors := make([]float64, len(children))
	var sum float64
	for i, c := range children {
		nnIdx := t.Node(c).Move.NNIndex()
		raw := float64(comp.Policy(g.slot, nnIdx))
		if raw < 0 {
			raw = 0
		}
		pt := math.Pow(raw, 1.0/opts.PolicySoftmaxTemp)
		priors[i] = pt
		sum += pt
	}
	if sum <= 0 {
		for i := range priors {
			priors[i] = 1.0 / float64(len(priors))
		}
	} else {
		for i := range priors {
			priors[i] /= sum
		}
	}

	if g.idx == RootIndex && opts.Noise && len(children) > 0 {
		applyDirichletNoise(priors, opts)
	}

	for i, c := range children {
		t.Node(c).P = float32(priors[i])
	}
}

// applyDirichletNoise mixes Dirichlet(alpha) noise into normalized root
// priors in place, per spec §4.5 Phase F: P' = (1-eps)*P + eps*eta/Σeta.
func applyDirichletNoise(priors []float64, opts *Options) {
	gamma := distuv.Gamma{Alpha: opts.DirichletAlpha, Beta: 1}
	eta := make([]float64, len(priors))
	var sum float64
	for i := range eta {
		eta[i] = gamma.Rand()
		sum += eta[i]
	}
	if sum <= 0 {
		return
	}
	eps := opts.DirichletEpsilon
	for i := range priors {
		priors[i] = (1-eps)*priors[i] + eps*eta[i]/sum
	}
}

// prefetchOne implements a bounded version of Phase D: for the leaf just
// queued, it looks one ply further at each of its (not-yet-existing)
// children's positions and warms the cache for any that are still misses,
// up to the max-prefetch budget. It does not create tree nodes; it only
// queries the cache-aware computation so a later real expansion of these
// children is more likely to hit. This is a single-ply simplification of
// the spec's full re-descent-from-root prefetch (see DESIGN.md).
func prefetchOne(comp *batch.Computation, hist *chess.History, opts *Options) {
	if comp.CacheMisses() >= opts.MaxPrefetch {
		return
	}
	cur := hist.Current()
	for _, m := range cur.GenerateLegal() {
		if comp.CacheMisses() >= opts.MaxPrefetch {
			return
		}
		childPos := cur.Make(m)
		childHist := hist.Clone()
		childHist.Append(childPos)
		key := childHist.Fingerprint(opts.CacheHistoryLength)
		if comp.AddByHash(key) {
			continue
		}
		moves := childPos.GenerateLegal()
		if len(moves) == 0 {
			continue
		}
		planes := EncodePlanes(childHist)
		comp.Add(key, planes, batch.MovesFromChess(moves))
	}
}

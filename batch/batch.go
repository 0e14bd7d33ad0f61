// Package batch implements the cache-aware batching computation from spec
// §4.4: it wraps a single nn.Evaluator computation with an nncache.Cache so
// that a round of node expansions coalesces into at most one NN call,
// serving cache hits without consuming an NN slot. Grounded on the
// memoizing-cache-in-front-of-an-expensive-call shape used throughout the
// teacher (equity.CombinedStaticCalculator, dataloaders/strategy.go) applied
// here to NN evaluation instead of leave-value tables.
package batch

import (
	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/nn"
	"github.com/corvidchess/corvid/nncache"
)

// slot records where a queued query's result lives: either already served
// by the cache, or pending in the underlying NN computation.
type slot struct {
	cached     bool
	cacheEntry nncache.Entry
	nnSlot     int
}

// Computation batches cache-aware evaluator queries. It is single-use: call
// Add/AddByHash some number of times, then Compute once, then read results
// with Value/Policy using the index returned by Add.
type Computation struct {
	cache   *nncache.Cache
	inner   nn.Computation
	slots   []slot
	pending []pendingMiss
}

type pendingMiss struct {
	key   uint64
	moves []uint16
}

// New creates a batching computation over the given evaluator and cache.
func New(evaluator nn.Evaluator, cache *nncache.Cache) *Computation {
	return &Computation{
		cache: cache,
		inner: evaluator.NewComputation(),
	}
}

// AddByHash reports whether key is already cached, without appending
// anything to the query set; used during gather (spec §4.5 Phase A) to
// decide whether a candidate leaf would consume an NN slot before
// committing to it.
func (c *Computation) AddByHash(key uint64) bool {
	return c.cache.Contains(key)
}

// Add queues a query for key. On cache hit, the cached entry is recorded
// directly; on miss, planes are appended to the pending NN batch. It
// returns the slot index to pass to Value/Policy after Compute.
func (c *Computation) Add(key uint64, planes []float32, moves []uint16) int {
	if entry, ok := c.cache.Get(key); ok {
		c.slots = append(c.slots, slot{cached: true, cacheEntry: entry})
		return len(c.slots) - 1
	}
	nnSlot := c.inner.Add(nn.Input{Planes: planes, NNIndices: moves})
	c.slots = append(c.slots, slot{cached: false, nnSlot: nnSlot})
	c.pending = append(c.pending, pendingMiss{key: key, moves: moves})
	return len(c.slots) - 1
}

// CacheMisses reports how many pending NN slots are queued.
func (c *Computation) CacheMisses() int {
	return len(c.pending)
}

// BatchSize reports the total number of queries (hits + misses).
func (c *Computation) BatchSize() int {
	return len(c.slots)
}

// Compute invokes the underlying evaluator once, if there are any misses,
// then inserts every freshly computed entry into the cache. At most one NN
// call happens per Compute (spec §4.4's guarantee).
func (c *Computation) Compute() error {
	if len(c.pending) == 0 {
		return nil
	}
	if err := c.inner.Compute(); err != nil {
		return err
	}
	// Insert freshly computed entries into the cache, matching slot order
	// to pending order: nnSlot ordering is assigned in Add() in the same
	// sequence pending entries were appended, so pendingIdx tracks 1:1.
	pendingIdx := 0
	for i := range c.slots {
		s := &c.slots[i]
		if s.cached {
			continue
		}
		miss := c.pending[pendingIdx]
		pendingIdx++
		value := c.inner.Value(s.nnSlot)
		moves := make([]nncache.MovePrior, 0, len(miss.moves))
		for _, idx := range miss.moves {
			moves = append(moves, nncache.MovePrior{NNIndex: idx, Prior: c.inner.Policy(s.nnSlot, idx)})
		}
		entry := nncache.Entry{Value: value, Moves: moves}
		c.cache.Insert(miss.key, entry)
		s.cached = true
		s.cacheEntry = entry
	}
	return nil
}

// Value returns the value for the query at slot i, served from either the
// cache pointer or the fresh NN result.
func (c *Computation) Value(i int) float32 {
	return c.slots[i].cacheEntry.Value
}

// Policy returns the prior for nnIndex at slot i.
func (c *Computation) Policy(i int, nnIndex uint16) float32 {
	for _, m := range c.slots[i].cacheEntry.Moves {
		if m.NNIndex == nnIndex {
			return m.Prior
		}
	}
	return 0
}

// MovesFromChess adapts a chess.Move slice into the dense nn-index list
// expected by Add/Input.
func MovesFromChess(moves []chess.Move) []uint16 {
	out := make([]uint16, len(moves))
	for i, m := range moves {
		out[i] = m.NNIndex()
	}
	return out
}

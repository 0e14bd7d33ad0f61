package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/nn"
	"github.com/corvidchess/corvid/nn/nulleval"
	"github.com/corvidchess/corvid/nncache"
)

func newNullEvaluator(t *testing.T) nn.Evaluator {
	e, err := nulleval.New("")
	require.NoError(t, err)
	return e
}

func TestCacheHitServedWithoutNNSlot(t *testing.T) {
	evaluator := newNullEvaluator(t)
	cache := nncache.New(16)
	cache.Insert(42, nncache.Entry{
		Value: 0.25,
		Moves: []nncache.MovePrior{{NNIndex: 7, Prior: 0.5}},
	})

	comp := New(evaluator, cache)
	idx := comp.Add(42, []float32{1, 2, 3}, []uint16{7})

	require.Equal(t, 0, comp.CacheMisses())
	require.Equal(t, 1, comp.BatchSize())

	require.NoError(t, comp.Compute())
	require.Equal(t, float32(0.25), comp.Value(idx))
	require.Equal(t, float32(0.5), comp.Policy(idx, 7))
}

func TestCacheMissComputesAndInserts(t *testing.T) {
	evaluator := newNullEvaluator(t)
	cache := nncache.New(16)

	comp := New(evaluator, cache)
	require.False(t, comp.AddByHash(99))
	idx := comp.Add(99, []float32{0.1, 0.2}, []uint16{3, 9})

	require.Equal(t, 1, comp.CacheMisses())
	require.NoError(t, comp.Compute())

	_ = comp.Value(idx)
	require.True(t, cache.Contains(99))

	entry, ok := cache.Get(99)
	require.True(t, ok)
	require.Len(t, entry.Moves, 2)
}

func TestMixedHitsAndMissesPreserveSlotOrder(t *testing.T) {
	evaluator := newNullEvaluator(t)
	cache := nncache.New(16)
	cache.Insert(1, nncache.Entry{Value: 0.9})

	comp := New(evaluator, cache)
	hitIdx := comp.Add(1, []float32{1}, nil)
	missIdx := comp.Add(2, []float32{2}, []uint16{5})
	hit2Idx := comp.Add(1, []float32{1}, nil)

	require.Equal(t, 1, comp.CacheMisses())
	require.Equal(t, 3, comp.BatchSize())
	require.NoError(t, comp.Compute())

	require.Equal(t, float32(0.9), comp.Value(hitIdx))
	require.Equal(t, float32(0.9), comp.Value(hit2Idx))
	require.True(t, cache.Contains(2))
	_ = comp.Value(missIdx)
}

func TestComputeWithNoMissesSkipsEvaluator(t *testing.T) {
	evaluator := newNullEvaluator(t)
	cache := nncache.New(16)
	cache.Insert(5, nncache.Entry{Value: 0.1})

	comp := New(evaluator, cache)
	comp.Add(5, []float32{1}, nil)
	require.Equal(t, 0, comp.CacheMisses())
	require.NoError(t, comp.Compute())
}

func TestMovesFromChessMapsToNNIndex(t *testing.T) {
	// regression guard: MovesFromChess must not panic on an empty slice and
	// must preserve length/order for a non-empty one.
	require.Empty(t, MovesFromChess(nil))

	moves := []chess.Move{
		{From: chess.SquareOf(4, 1), To: chess.SquareOf(4, 3)},
		{From: chess.SquareOf(0, 6), To: chess.SquareOf(0, 7), Promotion: chess.Knight},
	}
	require.Equal(t, []uint16{moves[0].NNIndex(), moves[1].NNIndex()}, MovesFromChess(moves))
}

package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/nn/nulleval"
	"github.com/corvidchess/corvid/nncache"
)

func TestExpandMarksCheckmateAsLoss(t *testing.T) {
	pos, err := chess.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)
	mate, err := chess.ParseMove("f7f8", &pos)
	require.NoError(t, err)
	next := pos.Make(mate)

	tree := NewTree()
	hist := chess.NewHistory(next)

	tree.Lock()
	terminal := Expand(tree, RootIndex, true, hist.Current(), hist)
	tree.Unlock()

	require.True(t, terminal)
	require.Equal(t, Loss, tree.Node(RootIndex).Terminal)
	require.Equal(t, float32(-1), tree.Node(RootIndex).V)
}

func TestExpandMarksStalemateAsDraw(t *testing.T) {
	pos, err := chess.ParseFEN("7k/5Q2/7K/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	tree := NewTree()
	hist := chess.NewHistory(pos)

	tree.Lock()
	terminal := Expand(tree, RootIndex, true, hist.Current(), hist)
	tree.Unlock()

	require.True(t, terminal)
	require.Equal(t, Draw, tree.Node(RootIndex).Terminal)
}

func TestExpandNonTerminalCreatesOneChildPerLegalMove(t *testing.T) {
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	tree := NewTree()
	hist := chess.NewHistory(pos)

	tree.Lock()
	terminal := Expand(tree, RootIndex, true, hist.Current(), hist)
	tree.Unlock()

	require.False(t, terminal)
	require.Len(t, tree.Node(RootIndex).Children, 20)
}

func TestBackupRunningMeanMatchesPlainRecurrence(t *testing.T) {
	tree := NewTree()
	moves, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(moves)
	tree.Lock()
	Expand(tree, RootIndex, true, hist.Current(), hist)
	tree.Unlock()

	opts := DefaultOptions()
	child := tree.Node(RootIndex).Children[0]

	tree.Lock()
	tryStartScoreUpdate(tree, child)
	best := int32(-1)
	Backup(tree, []int32{child}, 0.5, &opts, &best)
	tree.Unlock()

	require.Equal(t, int32(1), tree.Node(child).N)
	require.InDelta(t, 0.5, tree.Node(child).Q, 1e-9)
	require.Equal(t, child, best)
	require.Equal(t, int32(0), tree.Node(child).InFlight())
}

func TestBackupUpdatesRootTooAndFlipsSignAtEachPly(t *testing.T) {
	tree := NewTree()
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(pos)
	tree.Lock()
	Expand(tree, RootIndex, true, hist.Current(), hist)
	tree.Unlock()

	opts := DefaultOptions()
	child := tree.Node(RootIndex).Children[0]

	tree.Lock()
	tryStartScoreUpdate(tree, child)
	best := int32(-1)
	Backup(tree, []int32{child}, 0.5, &opts, &best)
	tree.Unlock()

	require.Equal(t, int32(1), tree.Node(RootIndex).N)
	// child's value is 0.5 from its own perspective; the root is one ply up
	// from child, so it sees the negation.
	require.InDelta(t, -0.5, tree.Node(RootIndex).Q, 1e-9)
}

func TestPUCTPrefersHigherPriorAmongUnvisitedSiblings(t *testing.T) {
	tree := NewTree()
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(pos)
	tree.Lock()
	Expand(tree, RootIndex, true, hist.Current(), hist)
	root := tree.Node(RootIndex)
	for i, c := range root.Children {
		tree.Node(c).P = float32(i) / float32(len(root.Children))
	}
	tree.Unlock()

	opts := DefaultOptions()
	best := selectChild(tree, RootIndex, true, Limits{}, -1, 0, &opts)
	require.Equal(t, root.Children[len(root.Children)-1], best)
}

func TestBestChildLexicographicOrder(t *testing.T) {
	tree := NewTree()
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(pos)
	tree.Lock()
	Expand(tree, RootIndex, true, hist.Current(), hist)
	root := tree.Node(RootIndex)
	tree.Node(root.Children[0]).N = 5
	tree.Node(root.Children[1]).N = 10
	tree.Node(root.Children[1]).Q = 0.2
	tree.Unlock()

	best := BestChild(tree, Limits{})
	require.Equal(t, root.Children[1], indexOf(tree, best))
}

func TestBestChildTieBreaksOnNegatedQ(t *testing.T) {
	tree := NewTree()
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(pos)
	tree.Lock()
	Expand(tree, RootIndex, true, hist.Current(), hist)
	root := tree.Node(RootIndex)
	// Equal visit counts: a tie goes to eval. Node.Q is stored from the
	// child's own point of view, so the child that is WORSE for itself
	// (lower own-Q) is BETTER for the side choosing at the root.
	tree.Node(root.Children[0]).N = 5
	tree.Node(root.Children[0]).Q = 0.9
	tree.Node(root.Children[1]).N = 5
	tree.Node(root.Children[1]).Q = -0.9
	tree.Unlock()

	best := BestChild(tree, Limits{})
	require.Equal(t, root.Children[1], indexOf(tree, best))
}

func indexOf(tree *Tree, m chess.Move) int32 {
	tree.RLock()
	defer tree.RUnlock()
	for _, c := range tree.Node(RootIndex).Children {
		if tree.Node(c).Move == m {
			return c
		}
	}
	return -1
}

func TestSearchMovesRestrictsBestChild(t *testing.T) {
	tree := NewTree()
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(pos)
	tree.Lock()
	Expand(tree, RootIndex, true, hist.Current(), hist)
	root := tree.Node(RootIndex)
	tree.Node(root.Children[0]).N = 100
	tree.Unlock()

	restricted := Limits{SearchMoves: []chess.Move{tree.Node(root.Children[1]).Move}}
	best := BestChild(tree, restricted)
	require.Equal(t, tree.Node(root.Children[1]).Move, best)
}

func TestEncodePlanesShape(t *testing.T) {
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	hist := chess.NewHistory(pos)
	planes := EncodePlanes(hist)
	require.Len(t, planes, PlaneChannels*64)
}

func TestControllerRunsAndProducesLegalMove(t *testing.T) {
	pos, err := chess.ParseFEN(chess.StartFEN)
	require.NoError(t, err)
	evaluator, err := nulleval.New("")
	require.NoError(t, err)
	cache := nncache.New(1000)
	opts := DefaultOptions()
	opts.MinibatchSize = 8
	limits := Limits{Milliseconds: 150}

	ctrl := NewController(pos, evaluator, cache, &opts, limits)
	done := make(chan chess.Move, 1)
	ctrl.OnBestMove = func(m chess.Move) { done <- m }
	ctrl.Start(2)
	ctrl.Wait()

	select {
	case m := <-done:
		legal := pos.GenerateLegal()
		found := false
		for _, lm := range legal {
			if lm == m {
				found = true
				break
			}
		}
		require.True(t, found, "bestmove %v must be among legal root moves", m)
	case <-time.After(5 * time.Second):
		t.Fatal("controller never emitted a best move")
	}
}

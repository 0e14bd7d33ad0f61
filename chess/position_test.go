package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartPositionMoveCount(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	require.NoError(t, err)
	moves := pos.GenerateLegal()
	require.Len(t, moves, 20)
}

func TestFENRoundTrip(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	require.NoError(t, err)
	require.Equal(t, StartFEN, pos.FEN())
}

func TestMateInOne(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)
	m, err := ParseMove("f7f8", &pos)
	require.NoError(t, err)
	next := pos.Make(m)
	require.True(t, next.UnderCheck())
	require.Empty(t, next.GenerateLegal())
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/7K/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	require.False(t, pos.UnderCheck())
	require.Empty(t, pos.GenerateLegal())
}

func TestRepetition(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	require.NoError(t, err)
	h := NewHistory(pos)
	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}
	for _, ms := range moves {
		m, err := ParseMove(ms, h.Current())
		require.NoError(t, err)
		h.Append(h.Current().Make(m))
	}
	require.GreaterOrEqual(t, h.RepetitionCount(), 2)
}

func TestFingerprintStable(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	require.NoError(t, err)
	h1 := NewHistory(pos)
	h2 := NewHistory(pos)
	require.Equal(t, h1.Fingerprint(7), h2.Fingerprint(7))
}

func TestNNIndexDistinctForPromotions(t *testing.T) {
	pos, err := ParseFEN("7k/P7/8/8/8/8/8/7K w - - 0 1")
	require.NoError(t, err)
	moves := pos.GenerateLegal()
	seen := map[uint16]bool{}
	for _, m := range moves {
		if m.From.String() == "a7" {
			idx := m.NNIndex()
			require.False(t, seen[idx], "nn index collision for %v", m)
			seen[idx] = true
		}
	}
}

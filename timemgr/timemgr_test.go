package timemgr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/search"
)

func TestInfiniteBypassesBudget(t *testing.T) {
	limits := Allocate(Params{Infinite: true, Curve: DefaultCurve()}, search.Limits{})
	require.True(t, limits.Infinite)
	require.Zero(t, limits.Milliseconds)
}

func TestExplicitMoveTimeWins(t *testing.T) {
	limits := Allocate(Params{MoveTime: 5000, OwnTime: 60000, Curve: DefaultCurve()}, search.Limits{})
	require.Equal(t, int64(5000), limits.Milliseconds)
}

func TestNegativeOwnTimeBypassesBudget(t *testing.T) {
	limits := Allocate(Params{OwnTime: -1, Curve: DefaultCurve()}, search.Limits{})
	require.Zero(t, limits.Milliseconds)
}

func TestStartPositionBudgetIsModerate(t *testing.T) {
	// Neutral slowmover here isolates the curve's own shape from the
	// slowmover multiplier, matching the fixture this is grounded on.
	p := Params{
		OwnTime:      60000,
		OwnIncrement: 0,
		MovesToGo:    30,
		Ply:          0,
		Slowmover:    1.0,
		MoveOverhead: 100,
		Curve:        DefaultCurve(),
	}
	limits := Allocate(p, search.Limits{})
	require.GreaterOrEqual(t, limits.Milliseconds, int64(1500))
	require.LessOrEqual(t, limits.Milliseconds, int64(2500))
}

func TestSlowmoverExtendsWhenOnlyThePostMultiplyTimeCrossesTolerance(t *testing.T) {
	// At these parameters the curve's raw allocation is ~160ms — under the
	// 200ms smart-pruning tolerance — but 160ms*1.93 is ~309ms, over it.
	// The slowmover multiplier must still apply in this case.
	p := Params{
		OwnTime:      8000,
		OwnIncrement: 0,
		MovesToGo:    30,
		Ply:          0,
		Slowmover:    1.93,
		MoveOverhead: 100,
		Curve:        DefaultCurve(),
	}
	limits := Allocate(p, search.Limits{})
	require.Greater(t, limits.Milliseconds, int64(250))
}

func TestBudgetNeverExceedsOwnTimeMinusOverhead(t *testing.T) {
	p := Params{
		OwnTime:      1000,
		OwnIncrement: 0,
		MovesToGo:    1,
		Ply:          26, // right at the curve peak, where weight is maximal
		Slowmover:    1.93,
		MoveOverhead: 100,
		Curve:        DefaultCurve(),
	}
	limits := Allocate(p, search.Limits{})
	require.LessOrEqual(t, limits.Milliseconds, int64(900))
}

func TestZeroMovesToGoDefaultsToFifty(t *testing.T) {
	withDefault := Allocate(Params{OwnTime: 60000, MovesToGo: 0, Slowmover: 1.93, MoveOverhead: 100, Curve: DefaultCurve()}, search.Limits{})
	withFifty := Allocate(Params{OwnTime: 60000, MovesToGo: 50, Slowmover: 1.93, MoveOverhead: 100, Curve: DefaultCurve()}, search.Limits{})
	require.Equal(t, withFifty.Milliseconds, withDefault.Milliseconds)
}

func TestBaseLimitsCarryThrough(t *testing.T) {
	base := search.Limits{Visits: 1000}
	limits := Allocate(Params{OwnTime: 60000, MovesToGo: 30, Slowmover: 1.93, MoveOverhead: 100, Curve: DefaultCurve()}, base)
	require.Equal(t, int64(1000), limits.Visits)
}

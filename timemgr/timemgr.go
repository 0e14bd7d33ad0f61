// Package timemgr turns a time-control snapshot into search limits, using
// the cosh-shaped per-move allocation curve (spec §4.7): most of the clock
// is spent around a configurable peak ply, tapering off on either side with
// independently tunable widths.
package timemgr

import (
	"math"

	"github.com/corvidchess/corvid/search"
)

// kappa = 2/log(2+sqrt(3)), the curve's shape constant.
var kappa = 2 / math.Log(2+math.Sqrt(3))

// Curve holds the three tunable shape parameters behind time-curve-peak,
// time-curve-left-width, and time-curve-right-width.
type Curve struct {
	Peak       float64
	LeftWidth  float64
	RightWidth float64
}

// DefaultCurve mirrors the defaults advertised in spec §6.
func DefaultCurve() Curve {
	return Curve{Peak: 26, LeftWidth: 67, RightWidth: 76}
}

// Params is one "go" command's time-control snapshot, in the own-side's
// perspective (the caller picks OwnTime/OwnIncrement from wtime/btime
// according to side to move).
type Params struct {
	OwnTime      int64 // ms
	OwnIncrement int64 // ms
	MovesToGo    int
	Ply          int // current game ply (0 = start position, white to move)

	MoveTime int64 // ms, explicit "go movetime N"; 0 if not given
	Infinite bool

	Slowmover     float64
	MoveOverhead  int64 // ms
	Curve         Curve
}

// Allocate computes the time budget (ms) for this move per spec §4.7's
// algorithm, and folds it into limits alongside whatever visits/playouts
// limits the caller already set on base.
func Allocate(p Params, base search.Limits) search.Limits {
	limits := base
	if p.MoveTime > 0 {
		limits.Milliseconds = p.MoveTime
		return limits
	}
	if p.Infinite || p.OwnTime < 0 {
		limits.Infinite = p.Infinite
		return limits
	}

	movesToGo := p.MovesToGo
	if movesToGo <= 0 {
		movesToGo = 50
	}

	totalBudget := float64(p.OwnTime) + float64(p.OwnIncrement)*float64(movesToGo-1) - float64(p.MoveOverhead)*float64(movesToGo)
	if totalBudget < 0 {
		totalBudget = 0
	}

	weights := make([]float64, movesToGo)
	var sum float64
	for i := 0; i < movesToGo; i++ {
		x := float64(p.Ply + 2*i)
		weights[i] = curveWeight(x, p.Curve)
		sum += weights[i]
	}

	var thisMove float64
	if sum > 0 {
		thisMove = totalBudget * weights[0] / sum
	}

	const smartPruningToleranceMs = 200
	if p.Slowmover < 1.0 || thisMove*p.Slowmover > smartPruningToleranceMs {
		thisMove *= p.Slowmover
	}

	maxAllowed := float64(p.OwnTime - p.MoveOverhead)
	if maxAllowed < 0 {
		maxAllowed = 0
	}
	if thisMove < 0 {
		thisMove = 0
	}
	if thisMove > maxAllowed {
		thisMove = maxAllowed
	}

	limits.Milliseconds = int64(thisMove)
	return limits
}

// curveWeight is w(x) = cosh((x-peak)/width/kappa)^-2, using the left or
// right width depending on which side of the peak x falls.
func curveWeight(x float64, c Curve) float64 {
	width := c.LeftWidth
	if x > c.Peak {
		width = c.RightWidth
	}
	z := (x - c.Peak) / width / kappa
	ch := math.Cosh(z)
	return 1 / (ch * ch)
}

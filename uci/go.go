package uci

import (
	"fmt"
	"strconv"

	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/search"
	"github.com/corvidchess/corvid/timemgr"
)

// handleGo implements "go [wtime N] [btime N] [winc N] [binc N]
// [movestogo N] [movetime N] [nodes N] [infinite] [searchmoves m1 m2 ...]":
// builds SearchLimits via timemgr, starts a Controller, and wires its
// callbacks to "info"/"bestmove" output (the teacher's sim.go startSim's
// async-search-plus-ticker shape, reused here instead of a 10s debug log).
func (e *Engine) handleGo(args []string) error {
	params, err := parseGoParams(args)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.ctrl != nil {
		e.mu.Unlock()
		return fmt.Errorf("uci: search already running, send stop first")
	}
	if e.evaluator == nil {
		e.mu.Unlock()
		return fmt.Errorf("uci: evaluator not ready, send isready first")
	}
	evaluator := e.evaluator
	cache := e.cache
	rootPos := e.pos
	var searchMoves []chess.Move
	for _, s := range params.searchMoveStrs {
		m, err := chess.ParseMove(s, &rootPos)
		if err != nil {
			e.mu.Unlock()
			return fmt.Errorf("uci: go searchmoves: %w", err)
		}
		searchMoves = append(searchMoves, m)
	}
	e.mu.Unlock()

	opts := e.buildOptions()
	base := search.Limits{SearchMoves: searchMoves}
	if params.nodes > 0 {
		base.Visits = params.nodes
	}

	limits := base
	if params.infinite {
		limits.Infinite = true
	} else if params.moveTime > 0 {
		limits.Milliseconds = params.moveTime
	} else if params.haveClock {
		ply := (rootPos.FullmoveNumber - 1) * 2
		if rootPos.SideToMove == chess.Black {
			ply++
		}
		tp := e.buildTimeParams(params, rootPos.SideToMove, ply)
		limits = timemgr.Allocate(tp, base)
	}

	ctrl := search.NewController(rootPos, evaluator, cache, &opts, limits)
	ctrl.OnProgress = e.emitInfo
	ctrl.OnBestMove = e.emitBestMove

	e.mu.Lock()
	e.ctrl = ctrl
	e.mu.Unlock()

	ctrl.Start(opts.Threads)
	go func() {
		ctrl.Wait()
		e.mu.Lock()
		e.ctrl = nil
		e.mu.Unlock()
	}()
	return nil
}

func (e *Engine) emitInfo(info search.ThinkingInfo) {
	line := fmt.Sprintf("info depth %d seldepth %d time %d nodes %d nps %d hashfull %d score cp %d",
		info.Depth, info.SelDepth, info.TimeMs, info.Nodes, info.Nps, info.HashfullPM, info.ScoreCP)
	if len(info.PV) > 0 {
		line += " pv"
		for _, m := range info.PV {
			line += " " + m.String()
		}
	}
	e.printf("%s\n", line)
}

func (e *Engine) emitBestMove(m chess.Move) {
	e.printf("bestmove %s\n", m.String())
}

// buildOptions snapshots the registry into search.Options, starting from
// search's own defaults for anything not exposed as a UCI option (the
// Dirichlet alpha/epsilon shape parameters, backprop beta/gamma).
func (e *Engine) buildOptions() search.Options {
	opts := search.DefaultOptions()
	if v, ok := e.registry.GetFloat("cpuct"); ok {
		opts.CPuct = v
	}
	if v, ok := e.registry.GetFloat("fpu-reduction"); ok {
		opts.FpuReduction = v
	}
	if v, ok := e.registry.GetFloat("policy-softmax-temp"); ok {
		opts.PolicySoftmaxTemp = v
	}
	if v, ok := e.registry.GetFloat("virtual-loss-bug"); ok {
		opts.VirtualLossBug = v
	}
	if v, ok := e.registry.GetInt("minibatch-size"); ok {
		opts.MinibatchSize = v
	}
	if v, ok := e.registry.GetInt("max-prefetch"); ok {
		opts.MaxPrefetch = v
	}
	if v, ok := e.registry.GetInt("allowed-node-collisions"); ok {
		opts.AllowedNodeCollisions = v
	}
	if v, ok := e.registry.GetBool("noise"); ok {
		opts.Noise = v
	}
	if v, ok := e.registry.GetFloat("temperature"); ok {
		opts.Temperature = v
	}
	if v, ok := e.registry.GetInt("tempdecay-moves"); ok {
		opts.TempDecayMoves = v
	}
	if v, ok := e.registry.GetBool("smart-pruning"); ok {
		opts.SmartPruning = v
	}
	if v, ok := e.registry.GetInt("threads"); ok {
		opts.Threads = v
	}
	if v, ok := e.registry.GetInt("cache-history-length"); ok {
		opts.CacheHistoryLength = v
	}
	return opts
}

func (e *Engine) buildTimeParams(p goParams, stm chess.Color, ply int) timemgr.Params {
	curve := timemgr.DefaultCurve()
	if v, ok := e.registry.GetFloat("time-curve-peak"); ok {
		curve.Peak = v
	}
	if v, ok := e.registry.GetFloat("time-curve-left-width"); ok {
		curve.LeftWidth = v
	}
	if v, ok := e.registry.GetFloat("time-curve-right-width"); ok {
		curve.RightWidth = v
	}

	slowmover := 1.93
	if v, ok := e.registry.GetFloat("slowmover"); ok {
		slowmover = v
	}
	overhead := int64(100)
	if v, ok := e.registry.GetInt("move-overhead"); ok {
		overhead = int64(v)
	}

	ownTime, ownInc := p.wtime, p.winc
	if stm == chess.Black {
		ownTime, ownInc = p.btime, p.binc
	}
	return timemgr.Params{
		OwnTime:      ownTime,
		OwnIncrement: ownInc,
		MovesToGo:    p.movestogo,
		Ply:          ply,
		Slowmover:    slowmover,
		MoveOverhead: overhead,
		Curve:        curve,
	}
}

type goParams struct {
	wtime, btime   int64
	winc, binc     int64
	movestogo      int
	moveTime       int64
	nodes          int64
	infinite       bool
	haveClock      bool
	searchMoveStrs []string
}

func parseGoParams(args []string) (goParams, error) {
	var p goParams
	intAt := func(idx int) (int64, error) {
		if idx >= len(args) {
			return 0, fmt.Errorf("uci: go: missing value after %q", args[idx-1])
		}
		return strconv.ParseInt(args[idx], 10, 64)
	}

	i := 0
	for i < len(args) {
		switch args[i] {
		case "wtime":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.wtime, p.haveClock = v, true
			i += 2
		case "btime":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.btime, p.haveClock = v, true
			i += 2
		case "winc":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.winc = v
			i += 2
		case "binc":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.binc = v
			i += 2
		case "movestogo":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.movestogo = int(v)
			i += 2
		case "movetime":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.moveTime = v
			i += 2
		case "nodes":
			v, err := intAt(i + 1)
			if err != nil {
				return p, err
			}
			p.nodes = v
			i += 2
		case "infinite":
			p.infinite = true
			i++
		case "searchmoves":
			i++
			for i < len(args) {
				p.searchMoveStrs = append(p.searchMoveStrs, args[i])
				i++
			}
		default:
			i++
		}
	}
	return p, nil
}

package search

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/nn"
	"github.com/corvidchess/corvid/nncache"
)

const (
	smartPruningToleranceMs    = 200
	smartPruningToleranceNodes = 100
	progressIntervalMs         = 5000
)

// counters holds the scalar search state guarded by a mutex separate from
// the tree lock (spec §5's "counters lock"), always acquired without the
// tree lock already held in this implementation.
type counters struct {
	mu                sync.Mutex
	stop              bool
	aborted           bool
	totalPlayouts     int64
	bestRootChild     int32
	remainingPlayouts int64
}

// Controller owns the worker pool, the tree, and the progress-reporting
// state for one search, grounded on montecarlo.Simmer.Simulate's
// errgroup-plus-context worker pool and ticker-driven progress logging.
type Controller struct {
	tree      *Tree
	evaluator nn.Evaluator
	cache     *nncache.Cache
	rootPos   chess.Position
	opts      *Options
	limits    Limits

	c counters

	startedAt time.Time
	cancel    context.CancelFunc
	group     *errgroup.Group
	tickerWg  sync.WaitGroup

	// OnProgress is called from the ticker goroutine whenever a new
	// ThinkingInfo snapshot is ready (spec §4.6's emission-cadence rules).
	OnProgress func(ThinkingInfo)
	// OnBestMove is called once, after all workers have exited, unless the
	// search was aborted rather than stopped.
	OnBestMove func(chess.Move)
}

// NewController builds a controller for one search starting from rootPos.
// The tree is fresh (no reuse across searches in this implementation, per
// spec §1's "tree reuse is not required").
func NewController(rootPos chess.Position, evaluator nn.Evaluator, cache *nncache.Cache, opts *Options, limits Limits) *Controller {
	return &Controller{
		tree:      NewTree(),
		evaluator: evaluator,
		cache:     cache,
		rootPos:   rootPos,
		opts:      opts,
		limits:    limits,
		c:         counters{bestRootChild: -1},
	}
}

// Tree exposes the underlying tree, e.g. for verbose-move-stats reporting.
func (c *Controller) Tree() *Tree { return c.tree }

// Start spawns threadCount worker goroutines plus one progress ticker.
func (c *Controller) Start(threadCount int) {
	c.startedAt = time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	c.group = group

	for i := 0; i < threadCount; i++ {
		group.Go(func() error {
			c.workerLoop(gctx)
			return nil
		})
	}

	c.tickerWg.Add(1)
	go func() {
		defer c.tickerWg.Done()
		c.progressLoop(ctx)
	}()
}

// Wait blocks until every worker has exited, then emits the final best
// move (unless the search was aborted).
func (c *Controller) Wait() {
	_ = c.group.Wait()
	// Workers can exit on their own (a limit was reached) without Stop
	// having cancelled the context the progress ticker waits on.
	if c.cancel != nil {
		c.cancel()
	}
	c.tickerWg.Wait()
	if c.OnBestMove != nil && !c.aborted() {
		c.OnBestMove(c.selectFinalMove())
	}
}

// Stop sets the cooperative stop flag; workers finish their current
// iteration and exit. The final bestmove is still emitted by Wait.
func (c *Controller) Stop() {
	c.c.mu.Lock()
	c.c.stop = true
	c.c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) aborted() bool {
	c.c.mu.Lock()
	defer c.c.mu.Unlock()
	return c.c.aborted
}

// Abort behaves like Stop but suppresses the final bestmove emission, used
// on destruction (spec §4.6).
func (c *Controller) Abort() {
	c.c.mu.Lock()
	c.c.aborted = true
	c.c.mu.Unlock()
	c.Stop()
}

func (c *Controller) selectFinalMove() chess.Move {
	ply := (c.rootPos.FullmoveNumber - 1) * 2
	if c.rootPos.SideToMove == chess.Black {
		ply++
	}
	if c.opts.Temperature > 0 {
		return BestChildWithTemperature(c.tree, c.limits, c.opts.Temperature, ply, c.opts.TempDecayMoves)
	}
	return BestChild(c.tree, c.limits)
}

func (c *Controller) workerLoop(ctx context.Context) {
	for {
		c.c.mu.Lock()
		stop := c.c.stop
		bestRootChild := c.c.bestRootChild
		remaining := c.c.remainingPlayouts
		c.c.mu.Unlock()
		if stop {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		playouts := runIteration(c.tree, c.evaluator, c.cache, c.rootPos, c.limits, c.opts, &bestRootChild, remaining)

		c.c.mu.Lock()
		c.c.totalPlayouts += playouts
		if bestRootChild >= 0 {
			c.c.bestRootChild = bestRootChild
		}
		c.refreshRemainingPlayoutsLocked()
		// Phase H runs every iteration regardless of how many playouts it
		// produced, so a search stuck gathering nothing but collisions
		// still notices a time-based stop (spec §5: "checked at the top
		// of every worker iteration").
		c.checkStopConditionsLocked()
		c.c.mu.Unlock()

		if playouts == 0 {
			// Every root child is colliding and there is nothing else to
			// gather: the one sleep point in the whole design (spec §5).
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// refreshRemainingPlayoutsLocked updates remainingPlayouts per spec §4.6's
// smart-pruning estimate. Caller holds c.c.mu.
func (c *Controller) refreshRemainingPlayoutsLocked() {
	elapsedMs := time.Since(c.startedAt).Milliseconds()
	nps := float64(c.c.totalPlayouts*1000+smartPruningToleranceNodes) / math.Max(1, float64(elapsedMs-smartPruningToleranceMs))

	var candidates []int64
	haveCandidate := false
	if c.limits.Milliseconds > 0 {
		remainingMs := c.limits.Milliseconds - elapsedMs
		if remainingMs < 0 {
			remainingMs = 0
		}
		candidates = append(candidates, int64(nps*float64(remainingMs)/1000))
		haveCandidate = true
	}
	if c.limits.Visits > 0 {
		candidates = append(candidates, c.limits.Visits-c.c.totalPlayouts)
		haveCandidate = true
	}
	if c.limits.Playouts > 0 {
		// Open Question #1's resolution (see DESIGN.md): the "playouts"
		// arm is limits.Playouts - totalPlayouts + miniBatchSize, not a
		// reference to limits.Visits.
		candidates = append(candidates, c.limits.Playouts-c.c.totalPlayouts+int64(c.opts.MinibatchSize))
		haveCandidate = true
	}
	if !haveCandidate {
		c.c.remainingPlayouts = math.MaxInt32
		return
	}
	min := candidates[0]
	for _, v := range candidates[1:] {
		if v < min {
			min = v
		}
	}
	if min < 1 {
		min = 1
	}
	c.c.remainingPlayouts = min
}

// checkStopConditionsLocked sets c.c.stop if a limit has been reached.
// Caller holds c.c.mu.
func (c *Controller) checkStopConditionsLocked() {
	if c.limits.Infinite {
		return
	}
	elapsedMs := time.Since(c.startedAt).Milliseconds()
	if c.limits.Milliseconds > 0 && elapsedMs >= c.limits.Milliseconds {
		c.c.stop = true
		return
	}
	if c.limits.Visits > 0 && c.c.totalPlayouts >= c.limits.Visits {
		c.c.stop = true
		return
	}
	if c.limits.Playouts > 0 && c.c.totalPlayouts >= c.limits.Playouts {
		c.c.stop = true
		return
	}
	if c.opts.SmartPruning && c.onlyOnePossibleMoveLocked() {
		c.c.stop = true
	}
}

// onlyOnePossibleMoveLocked reports whether exactly one root child remains
// viable under the searchmoves filter and the smart-pruning "cannot catch
// up" elimination, i.e. the search has nothing left to decide.
func (c *Controller) onlyOnePossibleMoveLocked() bool {
	c.tree.RLock()
	defer c.tree.RUnlock()
	root := c.tree.Node(RootIndex)
	if len(root.Children) == 0 {
		return false
	}
	best := c.c.bestRootChild
	if best < 0 {
		return false
	}
	bestN := c.tree.Node(best).N
	possible := 0
	for _, ch := range root.Children {
		if c.limits.HasSearchMoves() && !c.limits.Allows(c.tree.Node(ch).Move) {
			continue
		}
		if ch == best {
			possible++
			continue
		}
		if int64(c.tree.Node(ch).N)+c.c.remainingPlayouts >= int64(bestN) {
			possible++
		}
	}
	return possible == 1
}

func (c *Controller) progressLoop(ctx context.Context) {
	if c.OnProgress == nil {
		return
	}
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var lastEmit time.Time
	var lastBest int32 = -1
	var lastDepth, lastSeldepth int

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.c.mu.Lock()
		totalPlayouts := c.c.totalPlayouts
		bestRootChild := c.c.bestRootChild
		c.c.mu.Unlock()

		elapsedMs := time.Since(c.startedAt).Milliseconds()
		hashfull := 0
		if c.cache != nil {
			hashfull = c.cache.Hashfull()
		}
		info := Snapshot(c.tree, c.limits, elapsedMs, totalPlayouts, hashfull, bestRootChild)

		changed := bestRootChild != lastBest || info.Depth != lastDepth || info.SelDepth != lastSeldepth
		dueToCadence := time.Since(lastEmit) >= progressIntervalMs*time.Millisecond
		if !changed && !dueToCadence {
			continue
		}
		lastBest, lastDepth, lastSeldepth, lastEmit = bestRootChild, info.Depth, info.SelDepth, time.Now()
		c.OnProgress(info)
	}
}

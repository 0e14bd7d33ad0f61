package uci

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/corvidchess/corvid/chess"
	"github.com/corvidchess/corvid/config"
	"github.com/corvidchess/corvid/nn"
	"github.com/corvidchess/corvid/nncache"
	"github.com/corvidchess/corvid/search"
)

// Engine is the long-lived controller behind the protocol loop, holding
// game state, the option registry, and the evaluator/cache across commands
// — the role the teacher's ShellController plays for its own shell modes.
type Engine struct {
	out io.Writer

	cfg      *config.Config
	registry *config.Registry

	mu             sync.Mutex
	evaluator      nn.Evaluator
	evaluatorStale bool // weights/backend changed since the last isready
	cache          *nncache.Cache

	pos  chess.Position
	hist *chess.History

	ctrl *search.Controller

	quit bool
}

// NewEngine builds an engine with the full §6 option table registered and
// cache/weights/backend callbacks wired (cache-size takes effect
// immediately; weights/backend are picked up lazily at the next isready,
// per spec §4.8).
func NewEngine(cfg *config.Config, out io.Writer) *Engine {
	e := &Engine{
		cfg:      cfg,
		registry: config.NewRegistry(),
		out:      out,
		cache:    nncache.New(200000),
	}

	config.DefaultOptionTable(e.registry)
	e.registry.Register(config.Schema{Name: "nncache", Kind: config.KindInt, Default: "200000", Min: 0, Max: 1e9}, func(v any) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.cache.SetCapacity(v.(int))
		return nil
	})
	e.registry.Register(config.Schema{Name: "weights", Kind: config.KindString, Default: "<autodiscover>"}, e.markEvaluatorStale)
	e.registry.Register(config.Schema{Name: "backend", Kind: config.KindChoice, Default: "onnx", Choices: append([]string{"onnx", "http"}, nn.Names()...)}, e.markEvaluatorStale)
	e.registry.Register(config.Schema{Name: "backend-opts", Kind: config.KindString, Default: ""}, e.markEvaluatorStale)

	e.resetGame()
	e.evaluatorStale = true
	return e
}

func (e *Engine) markEvaluatorStale(any) error {
	e.mu.Lock()
	e.evaluatorStale = true
	e.mu.Unlock()
	return nil
}

func (e *Engine) resetGame() {
	pos, err := chess.ParseFEN(chess.StartFEN)
	if err != nil {
		panic(err) // the start FEN is a compile-time constant; a parse failure is a programming error
	}
	e.pos = pos
	e.hist = chess.NewHistory(pos)
}

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

// Loop reads one command per line from in until quit or EOF, matching the
// teacher's UCGILoop's bufio.Scanner-over-stdin shape.
func (e *Engine) Loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for !e.quit && scanner.Scan() {
		e.DispatchLine(scanner.Text())
	}
}

// DispatchLine parses and runs one command line, logging (rather than
// returning) any error, for callers driving the engine from something
// other than Loop's own scanner — cmd/corvid-shell's readline-based REPL.
func (e *Engine) DispatchLine(line string) {
	if err := e.dispatch(parseCommand(line)); err != nil {
		log.Error().Err(err).Msg("uci command failed")
	}
}

// Done reports whether "quit" has been processed.
func (e *Engine) Done() bool { return e.quit }

func (e *Engine) dispatch(cmd command) error {
	switch cmd.name {
	case "":
		return nil
	case "uci":
		return e.handleUCI()
	case "isready":
		return e.handleIsReady()
	case "setoption":
		return e.handleSetOption(cmd.args)
	case "ucinewgame":
		return e.handleUCINewGame()
	case "position":
		return e.handlePosition(cmd.args)
	case "go":
		return e.handleGo(cmd.args)
	case "stop":
		return e.handleStop()
	case "quit":
		e.handleQuit()
		return nil
	default:
		return fmt.Errorf("uci: unknown command %q", cmd.name)
	}
}

func (e *Engine) handleUCI() error {
	e.printf("id name corvid\n")
	e.printf("id author corvidchess\n")
	for _, s := range e.registry.Advertise() {
		e.printf("%s\n", formatOptionLine(s))
	}
	e.printf("uciok\n")
	return nil
}

// handleIsReady blocks until the evaluator reflects the current
// weights/backend options, (re)building it if they changed since the last
// call, then reports readyok. An evaluator load failure is fatal per spec
// §7 ("surfaces at the next isready as a fatal error; the process exits
// after a diagnostic").
func (e *Engine) handleIsReady() error {
	e.mu.Lock()
	stale := e.evaluatorStale
	e.mu.Unlock()

	if stale {
		backend, _ := e.registry.Get("backend")
		weights, _ := e.registry.Get("weights")
		backendOpts, _ := e.registry.Get("backend-opts")

		// Each backend's Factory takes a single opts string with its own
		// meaning: onnx wants the weights file path, http wants the remote
		// service URL carried in backend-opts.
		opts := backendOpts
		if backend == "onnx" {
			opts = weights
		}

		evaluator, err := nn.New(backend, opts)
		if err != nil {
			log.Fatal().Err(err).Str("backend", backend).Msg("failed to load neural evaluator")
		}
		e.mu.Lock()
		if e.evaluator != nil {
			_ = e.evaluator.Close()
		}
		e.evaluator = evaluator
		e.evaluatorStale = false
		e.mu.Unlock()
	}

	e.printf("readyok\n")
	return nil
}

func (e *Engine) handleSetOption(args []string) error {
	name, value, err := parseSetOption(args)
	if err != nil {
		return err
	}
	return e.registry.Set(name, value)
}

// handleUCINewGame resets the position and clears the evaluator cache
// (spec §4.8: "new-game reset clears cache and tree"); the tree itself is
// per-search and already discarded when the previous Controller exits.
func (e *Engine) handleUCINewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl != nil {
		e.ctrl.Abort()
		e.ctrl.Wait()
		e.ctrl = nil
	}
	e.cache.Clear()
	e.resetGame()
	return nil
}

func (e *Engine) handleStop() error {
	e.mu.Lock()
	ctrl := e.ctrl
	e.mu.Unlock()
	if ctrl != nil {
		ctrl.Stop()
	}
	return nil
}

func (e *Engine) handleQuit() {
	e.mu.Lock()
	ctrl := e.ctrl
	e.mu.Unlock()
	if ctrl != nil {
		ctrl.Abort()
		ctrl.Wait()
	}
	if e.evaluator != nil {
		_ = e.evaluator.Close()
	}
	e.quit = true
}

func formatOptionLine(s config.Schema) string {
	switch s.Kind {
	case config.KindInt:
		return fmt.Sprintf("option name %s type spin default %s min %g max %g", s.Name, s.Default, s.Min, s.Max)
	case config.KindFloat:
		return fmt.Sprintf("option name %s type string default %s", s.Name, s.Default)
	case config.KindBool:
		return fmt.Sprintf("option name %s type check default %s", s.Name, s.Default)
	case config.KindChoice:
		line := fmt.Sprintf("option name %s type combo default %s", s.Name, s.Default)
		for _, c := range s.Choices {
			line += " var " + c
		}
		return line
	default:
		return fmt.Sprintf("option name %s type string default %s", s.Name, s.Default)
	}
}

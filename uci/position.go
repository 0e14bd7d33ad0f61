package uci

import (
	"fmt"

	"github.com/corvidchess/corvid/chess"
)

// parseSetOption extracts name/value from "setoption name <n> value <v>",
// where <n> and <v> may each contain embedded spaces (the standard
// protocol's own ambiguity, resolved the usual way: split on the literal
// "value" token).
func parseSetOption(args []string) (name, value string, err error) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", fmt.Errorf("uci: malformed setoption %v", args)
	}
	nameTokens := []string{}
	i := 1
	for i < len(args) && args[i] != "value" {
		nameTokens = append(nameTokens, args[i])
		i++
	}
	if len(nameTokens) == 0 {
		return "", "", fmt.Errorf("uci: setoption missing option name")
	}
	name = joinSpaced(nameTokens)
	if i < len(args) && args[i] == "value" {
		value = joinSpaced(args[i+1:])
	}
	return name, value, nil
}

func joinSpaced(tokens []string) string {
	out := tokens[0]
	for _, t := range tokens[1:] {
		out += " " + t
	}
	return out
}

// handlePosition implements "position [startpos|fen <fen>] [moves <m> ...]":
// reset to the given root position, then replay each move, rebuilding the
// full History the search needs for repetition/no-capture detection.
func (e *Engine) handlePosition(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("uci: position requires startpos or fen")
	}

	var root chess.Position
	var err error
	rest := args

	switch args[0] {
	case "startpos":
		root, err = chess.ParseFEN(chess.StartFEN)
		rest = args[1:]
	case "fen":
		fenTokens := []string{}
		rest = args[1:]
		for len(rest) > 0 && rest[0] != "moves" {
			fenTokens = append(fenTokens, rest[0])
			rest = rest[1:]
		}
		root, err = chess.ParseFEN(joinSpaced(fenTokens))
	default:
		return fmt.Errorf("uci: position: expected startpos or fen, got %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("uci: position: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = root
	e.hist = chess.NewHistory(root)

	if len(rest) > 0 && rest[0] == "moves" {
		for _, s := range rest[1:] {
			m, err := chess.ParseMove(s, &e.pos)
			if err != nil {
				return fmt.Errorf("uci: position: %w", err)
			}
			e.pos = e.pos.Make(m)
			e.hist.Append(e.pos)
		}
	}
	return nil
}

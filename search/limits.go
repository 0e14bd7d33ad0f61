package search

import "github.com/corvidchess/corvid/chess"

// Limits bundles the optional caps a search runs under (spec §3's "Search
// limits"). A zero value in Milliseconds/Visits/Playouts means "no cap from
// this dimension"; Infinite overrides all of them.
type Limits struct {
	Milliseconds int64
	Visits       int64
	Playouts     int64
	Infinite     bool
	SearchMoves  []chess.Move // empty means "no restriction"
}

// HasSearchMoves reports whether a root-move whitelist is in effect.
func (l Limits) HasSearchMoves() bool {
	return len(l.SearchMoves) > 0
}

// Allows reports whether m is permitted at the root under SearchMoves.
func (l Limits) Allows(m chess.Move) bool {
	if !l.HasSearchMoves() {
		return true
	}
	for _, sm := range l.SearchMoves {
		if sm == m {
			return true
		}
	}
	return false
}

package chess

// Position is a single chess position: board, side to move, and the extra
// state (castling rights, en-passant target, clocks) FEN also carries.
type Position struct {
	Board          [64]Piece
	SideToMove     Color
	Castling       CastleRights
	EnPassant      Square
	HalfmoveClock  int
	FullmoveNumber int
}

func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// Clone returns an independent copy; Position contains no pointers so a
// plain value copy suffices.
func (p *Position) Clone() Position {
	return *p
}

func (p *Position) KingSquare(c Color) Square {
	target := NewPiece(c, King)
	for sq := Square(0); sq < 64; sq++ {
		if p.Board[sq] == target {
			return sq
		}
	}
	return NoSquare
}

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// IsAttacked reports whether sq is attacked by any piece of color by.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	f, r := sq.File(), sq.Rank()

	pawnDir := 1
	if by == White {
		pawnDir = -1
	}
	for _, df := range [2]int{-1, 1} {
		nf, nr := f+df, r+pawnDir
		if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
			if pc := p.Board[SquareOf(nf, nr)]; pc.Type() == Pawn && pc.Color() == by {
				return true
			}
		}
	}
	for _, o := range knightOffsets {
		nf, nr := f+o[0], r+o[1]
		if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
			if pc := p.Board[SquareOf(nf, nr)]; pc.Type() == Knight && pc.Color() == by {
				return true
			}
		}
	}
	for _, o := range kingOffsets {
		nf, nr := f+o[0], r+o[1]
		if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
			if pc := p.Board[SquareOf(nf, nr)]; pc.Type() == King && pc.Color() == by {
				return true
			}
		}
	}
	for _, d := range bishopDirs {
		if p.rayAttacks(f, r, d[0], d[1], by, Bishop, Queen) {
			return true
		}
	}
	for _, d := range rookDirs {
		if p.rayAttacks(f, r, d[0], d[1], by, Rook, Queen) {
			return true
		}
	}
	return false
}

func (p *Position) rayAttacks(f, r, df, dr int, by Color, t1, t2 PieceType) bool {
	nf, nr := f+df, r+dr
	for nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
		pc := p.Board[SquareOf(nf, nr)]
		if !pc.IsEmpty() {
			if pc.Color() == by && (pc.Type() == t1 || pc.Type() == t2) {
				return true
			}
			return false
		}
		nf += df
		nr += dr
	}
	return false
}

// UnderCheck reports whether the side to move's king is attacked.
func (p *Position) UnderCheck() bool {
	k := p.KingSquare(p.SideToMove)
	if k == NoSquare {
		return false
	}
	return p.IsAttacked(k, p.SideToMove.Other())
}

// GenerateLegal returns every legal move for the side to move: pseudolegal
// moves filtered by simulating each one and rejecting those that leave the
// mover's own king in check.
func (p *Position) GenerateLegal() []Move {
	pseudo := p.GeneratePseudoLegal()
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		next := p.Make(m)
		if !next.IsAttacked(next.KingSquare(p.SideToMove), next.SideToMove) {
			legal = append(legal, m)
		}
	}
	return legal
}

// GeneratePseudoLegal returns every move that obeys piece movement rules but
// may leave the mover's own king in check; used internally by GenerateLegal
// and exposed for cache-key speculation per spec §4.1.
func (p *Position) GeneratePseudoLegal() []Move {
	var moves []Move
	us := p.SideToMove
	for sq := Square(0); sq < 64; sq++ {
		pc := p.Board[sq]
		if pc.IsEmpty() || pc.Color() != us {
			continue
		}
		switch pc.Type() {
		case Pawn:
			p.genPawnMoves(sq, &moves)
		case Knight:
			p.genOffsetMoves(sq, knightOffsets[:], &moves)
		case King:
			p.genOffsetMoves(sq, kingOffsets[:], &moves)
			p.genCastleMoves(sq, &moves)
		case Bishop:
			p.genSlideMoves(sq, bishopDirs[:], &moves)
		case Rook:
			p.genSlideMoves(sq, rookDirs[:], &moves)
		case Queen:
			p.genSlideMoves(sq, bishopDirs[:], &moves)
			p.genSlideMoves(sq, rookDirs[:], &moves)
		}
	}
	return moves
}

func (p *Position) genOffsetMoves(sq Square, offsets [][2]int, moves *[]Move) {
	f, r := sq.File(), sq.Rank()
	us := p.Board[sq].Color()
	for _, o := range offsets {
		nf, nr := f+o[0], r+o[1]
		if nf < 0 || nf > 7 || nr < 0 || nr > 7 {
			continue
		}
		to := SquareOf(nf, nr)
		target := p.Board[to]
		if !target.IsEmpty() && target.Color() == us {
			continue
		}
		*moves = append(*moves, Move{From: sq, To: to, IsCapture: !target.IsEmpty()})
	}
}

func (p *Position) genSlideMoves(sq Square, dirs [][2]int, moves *[]Move) {
	f, r := sq.File(), sq.Rank()
	us := p.Board[sq].Color()
	for _, d := range dirs {
		nf, nr := f+d[0], r+d[1]
		for nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
			to := SquareOf(nf, nr)
			target := p.Board[to]
			if target.IsEmpty() {
				*moves = append(*moves, Move{From: sq, To: to})
			} else {
				if target.Color() != us {
					*moves = append(*moves, Move{From: sq, To: to, IsCapture: true})
				}
				break
			}
			nf += d[0]
			nr += d[1]
		}
	}
}

var promoPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

func (p *Position) genPawnMoves(sq Square, moves *[]Move) {
	us := p.Board[sq].Color()
	f, r := sq.File(), sq.Rank()
	dir, startRank, lastRank := 1, 1, 7
	if us == Black {
		dir, startRank, lastRank = -1, 6, 0
	}

	addPawnMove := func(to Square, capture bool) {
		if to.Rank() == lastRank {
			for _, pp := range promoPieces {
				*moves = append(*moves, Move{From: sq, To: to, IsCapture: capture, Promotion: pp})
			}
		} else {
			*moves = append(*moves, Move{From: sq, To: to, IsCapture: capture})
		}
	}

	nr := r + dir
	if nr >= 0 && nr < 8 {
		one := SquareOf(f, nr)
		if p.Board[one].IsEmpty() {
			addPawnMove(one, false)
			if r == startRank {
				nr2 := r + 2*dir
				two := SquareOf(f, nr2)
				if p.Board[two].IsEmpty() {
					*moves = append(*moves, Move{From: sq, To: two})
				}
			}
		}
	}
	for _, df := range [2]int{-1, 1} {
		nf := f + df
		if nf < 0 || nf > 7 || nr < 0 || nr >= 8 {
			continue
		}
		to := SquareOf(nf, nr)
		target := p.Board[to]
		if !target.IsEmpty() && target.Color() != us {
			addPawnMove(to, true)
		} else if to == p.EnPassant && p.EnPassant != NoSquare {
			*moves = append(*moves, Move{From: sq, To: to, IsCapture: true, IsEnPassant: true})
		}
	}
}

func (p *Position) genCastleMoves(sq Square, moves *[]Move) {
	us := p.Board[sq].Color()
	if sq != kingHome(us) {
		return
	}
	opp := us.Other()
	rank := 0
	if us == Black {
		rank = 7
	}
	kingside, queenside := WhiteKingside, WhiteQueenside
	if us == Black {
		kingside, queenside = BlackKingside, BlackQueenside
	}
	if p.Castling.Has(kingside) &&
		p.Board[SquareOf(5, rank)].IsEmpty() && p.Board[SquareOf(6, rank)].IsEmpty() &&
		!p.IsAttacked(SquareOf(4, rank), opp) && !p.IsAttacked(SquareOf(5, rank), opp) && !p.IsAttacked(SquareOf(6, rank), opp) {
		*moves = append(*moves, Move{From: sq, To: SquareOf(6, rank), IsCastle: true})
	}
	if p.Castling.Has(queenside) &&
		p.Board[SquareOf(3, rank)].IsEmpty() && p.Board[SquareOf(2, rank)].IsEmpty() && p.Board[SquareOf(1, rank)].IsEmpty() &&
		!p.IsAttacked(SquareOf(4, rank), opp) && !p.IsAttacked(SquareOf(3, rank), opp) && !p.IsAttacked(SquareOf(2, rank), opp) {
		*moves = append(*moves, Move{From: sq, To: SquareOf(2, rank), IsCastle: true})
	}
}

// Make returns the position after m is played; it does not mutate p.
func (p *Position) Make(m Move) Position {
	next := p.Clone()
	us := p.SideToMove
	moving := p.Board[m.From]

	next.EnPassant = NoSquare
	if moving.Type() == Pawn || m.IsCapture {
		next.HalfmoveClock = 0
	} else {
		next.HalfmoveClock++
	}

	if m.IsEnPassant {
		capSq := SquareOf(m.To.File(), m.From.Rank())
		next.Board[capSq] = Empty
	}

	next.Board[m.From] = Empty
	if m.Promotion != NoPieceType {
		next.Board[m.To] = NewPiece(us, m.Promotion)
	} else {
		next.Board[m.To] = moving
	}

	if m.IsCastle {
		rank := m.From.Rank()
		if m.To.File() == 6 { // kingside
			next.Board[SquareOf(5, rank)] = next.Board[SquareOf(7, rank)]
			next.Board[SquareOf(7, rank)] = Empty
		} else { // queenside
			next.Board[SquareOf(3, rank)] = next.Board[SquareOf(0, rank)]
			next.Board[SquareOf(0, rank)] = Empty
		}
	}

	if moving.Type() == Pawn && (m.From.Rank()-m.To.Rank() == 2 || m.To.Rank()-m.From.Rank() == 2) {
		next.EnPassant = SquareOf(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	next.Castling = updateCastling(next.Castling, m.From, m.To)

	next.SideToMove = us.Other()
	if us == Black {
		next.FullmoveNumber++
	}
	return next
}

func updateCastling(cr CastleRights, from, to Square) CastleRights {
	clear := func(sq Square, bit CastleRights) {
		if from == sq || to == sq {
			cr &^= bit
		}
	}
	clear(SquareOf(4, 0), WhiteKingside|WhiteQueenside)
	clear(SquareOf(4, 7), BlackKingside|BlackQueenside)
	clear(SquareOf(7, 0), WhiteKingside)
	clear(SquareOf(0, 0), WhiteQueenside)
	clear(SquareOf(7, 7), BlackKingside)
	clear(SquareOf(0, 7), BlackQueenside)
	return cr
}

// HasMatingMaterial reports whether either side retains enough material to
// deliver checkmate; the inverse backs the insufficient-material draw rule
// consulted during expansion (spec §4.5 Phase C).
func (p *Position) HasMatingMaterial() bool {
	var minorOrPawn, majorOrPawn int
	counts := map[PieceType]int{}
	for sq := Square(0); sq < 64; sq++ {
		pc := p.Board[sq]
		if pc.IsEmpty() || pc.Type() == King {
			continue
		}
		counts[pc.Type()]++
	}
	majorOrPawn = counts[Pawn] + counts[Rook] + counts[Queen]
	minorOrPawn = counts[Knight] + counts[Bishop]
	if majorOrPawn > 0 {
		return true
	}
	// King+two knights vs king, or king+bishop(s) vs king with opposite
	// colored bishops, can still (rarely) mate; treat two or more minor
	// pieces in total, whichever side owns them, as potentially mating and a
	// single lone minor piece as not, which matches how most engines
	// simplify this predicate.
	return minorOrPawn >= 2
}

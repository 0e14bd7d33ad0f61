package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN record into a Position. A malformed FEN is a parse
// error surfaced at the protocol boundary (spec §4.1), never inside search.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return Position{}, fmt.Errorf("chess: malformed FEN %q", fen)
	}
	var pos Position
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("chess: FEN must have 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range rankStr {
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pt, color, err := pieceFromLetter(byte(c))
			if err != nil {
				return Position{}, err
			}
			if file > 7 {
				return Position{}, fmt.Errorf("chess: malformed FEN rank %q", rankStr)
			}
			pos.Board[SquareOf(file, rank)] = NewPiece(color, pt)
			file++
		}
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("chess: malformed side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				pos.Castling |= WhiteKingside
			case 'Q':
				pos.Castling |= WhiteQueenside
			case 'k':
				pos.Castling |= BlackKingside
			case 'q':
				pos.Castling |= BlackQueenside
			default:
				return Position{}, fmt.Errorf("chess: malformed castling field %q", fields[2])
			}
		}
	}

	ep, err := ParseSquare(fields[3])
	if err != nil {
		return Position{}, err
	}
	pos.EnPassant = ep

	pos.HalfmoveClock = 0
	pos.FullmoveNumber = 1
	if len(fields) >= 6 {
		pos.HalfmoveClock, err = strconv.Atoi(fields[4])
		if err != nil {
			return Position{}, fmt.Errorf("chess: malformed halfmove clock %q", fields[4])
		}
		pos.FullmoveNumber, err = strconv.Atoi(fields[5])
		if err != nil {
			return Position{}, fmt.Errorf("chess: malformed fullmove number %q", fields[5])
		}
	}
	return pos, nil
}

func pieceFromLetter(c byte) (PieceType, Color, error) {
	color := White
	lower := c
	if c >= 'a' && c <= 'z' {
		color = Black
	} else {
		lower = c + ('a' - 'A')
	}
	for t, l := range pieceLetters {
		if l == lower {
			return PieceType(t), color, nil
		}
	}
	return NoPieceType, White, fmt.Errorf("chess: unknown piece letter %q", string(c))
}

// FEN renders the position back into Forsyth-Edwards notation.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Board[SquareOf(file, rank)]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	if p.Castling == 0 {
		sb.WriteByte('-')
	} else {
		if p.Castling.Has(WhiteKingside) {
			sb.WriteByte('K')
		}
		if p.Castling.Has(WhiteQueenside) {
			sb.WriteByte('Q')
		}
		if p.Castling.Has(BlackKingside) {
			sb.WriteByte('k')
		}
		if p.Castling.Has(BlackQueenside) {
			sb.WriteByte('q')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullmoveNumber))
	return sb.String()
}

package search

import "github.com/corvidchess/corvid/chess"

// Plane layout matches nn/onnxeval's Channels constant (112): eight
// history steps of 13 planes each (12 piece-occupancy planes plus one
// repetition indicator) followed by 8 auxiliary constant planes. This is
// the engine's own choice of encoding (spec §1 treats the NN weights
// format, not the plane layout, as the external black box) and is kept
// deliberately simple: pieces are classified "ours" vs "theirs" relative
// to the side to move at the most recent position, the convention used
// throughout the history window regardless of whose turn it was at each
// historical ply.
const (
	historyDepth  = 8
	planesPerPos  = 13
	auxPlaneCount = 8
	PlaneChannels = historyDepth*planesPerPos + auxPlaneCount
	PlaneHeight   = 8
	PlaneWidth    = 8
)

var pieceOrder = [6]chess.PieceType{
	chess.Pawn, chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King,
}

// EncodePlanes flattens the history's look-back window into the
// channel-major float32 buffer an nn.Input expects.
func EncodePlanes(hist *chess.History) []float32 {
	out := make([]float32, PlaneChannels*64)
	cur := hist.Current()
	us := cur.SideToMove

	for h := 0; h < historyDepth; h++ {
		base := h * planesPerPos * 64
		pos := hist.PositionAt(h)
		if pos == nil {
			continue
		}
		for sq := 0; sq < 64; sq++ {
			pc := pos.Board[sq]
			if pc.IsEmpty() {
				continue
			}
			slot := pieceSlot(pc.Type())
			if slot < 0 {
				continue
			}
			if pc.Color() != us {
				slot += 6
			}
			out[base+slot*64+sq] = 1
		}
		if h == 0 && hist.RepetitionCount() >= 1 {
			repBase := base + 12*64
			for sq := 0; sq < 64; sq++ {
				out[repBase+sq] = 1
			}
		}
	}

	auxBase := historyDepth * planesPerPos * 64
	fill := func(plane int, value float32) {
		start := auxBase + plane*64
		for sq := 0; sq < 64; sq++ {
			out[start+sq] = value
		}
	}
	fill(0, 1) // bias plane
	if us == chess.White {
		fill(1, 1)
	}
	usKingside, usQueenside, themKingside, themQueenside := chess.WhiteKingside, chess.WhiteQueenside, chess.BlackKingside, chess.BlackQueenside
	if us == chess.Black {
		usKingside, usQueenside, themKingside, themQueenside = chess.BlackKingside, chess.BlackQueenside, chess.WhiteKingside, chess.WhiteQueenside
	}
	if cur.Castling.Has(usKingside) {
		fill(2, 1)
	}
	if cur.Castling.Has(usQueenside) {
		fill(3, 1)
	}
	if cur.Castling.Has(themKingside) {
		fill(4, 1)
	}
	if cur.Castling.Has(themQueenside) {
		fill(5, 1)
	}
	fill(6, float32(cur.HalfmoveClock)/100.0)
	fullmove := cur.FullmoveNumber
	if fullmove > 100 {
		fullmove = 100
	}
	fill(7, float32(fullmove)/100.0)

	return out
}

func pieceSlot(t chess.PieceType) int {
	for i, pt := range pieceOrder {
		if pt == t {
			return i
		}
	}
	return -1
}

package rules

import "github.com/ryanduan02/tenten/game"

// Move anchors a piece's top-left cell at (Row, Col). PieceIndex is the
// position of the piece in the hand it was dealt with.
type Move struct {
	PieceIndex int         `json:"piece_index"`
	Piece      *game.Piece `json:"piece"`
	Row        int         `json:"row"`
	Col        int         `json:"col"`
}

// LegalMoves returns every anchor at which piece can be placed, in
// row-major order. The fixed order makes downstream sort tie-breaks
// reproducible. The result is a plain slice: finite and restartable.
func LegalMoves(state game.GameState, pieceIndex int, piece *game.Piece) []Move {
	maxRow := game.Size - piece.Height()
	maxCol := game.Size - piece.Width()
	if maxRow < 0 || maxCol < 0 {
		return nil
	}

	var moves []Move
	for row := 0; row <= maxRow; row++ {
		for col := 0; col <= maxCol; col++ {
			if CanPlace(state, piece, row, col) {
				moves = append(moves, Move{PieceIndex: pieceIndex, Piece: piece, Row: row, Col: col})
			}
		}
	}
	return moves
}

// AnyLegalMove reports whether at least one of the given pieces has a legal
// placement. The simulator uses it to cross-check planner game-over claims.
func AnyLegalMove(state game.GameState, pieces []*game.Piece) bool {
	for _, p := range pieces {
		maxRow := game.Size - p.Height()
		maxCol := game.Size - p.Width()
		for row := 0; row <= maxRow; row++ {
			for col := 0; col <= maxCol; col++ {
				if CanPlace(state, p, row, col) {
					return true
				}
			}
		}
	}
	return false
}

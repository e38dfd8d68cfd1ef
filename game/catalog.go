package game

import "fmt"

// HandSize is the number of pieces dealt together before any is placed.
const HandSize = 3

// Catalog is the standard 1010 piece set. Entries are immutable and shared
// by pointer everywhere (hands, moves, telemetry).
var Catalog = []*Piece{
	MustPiece("single", [][]int{{1}}),

	MustPiece("line2_h", [][]int{{1, 1}}),
	MustPiece("line2_v", [][]int{{1}, {1}}),

	MustPiece("line3_h", [][]int{{1, 1, 1}}),
	MustPiece("line3_v", [][]int{{1}, {1}, {1}}),

	MustPiece("line4_h", [][]int{{1, 1, 1, 1}}),
	MustPiece("line4_v", [][]int{{1}, {1}, {1}, {1}}),

	MustPiece("line5_h", [][]int{{1, 1, 1, 1, 1}}),
	MustPiece("line5_v", [][]int{{1}, {1}, {1}, {1}, {1}}),

	MustPiece("square2", [][]int{{1, 1}, {1, 1}}),
	MustPiece("square3", [][]int{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}),

	MustPiece("L3_down_right", [][]int{{1, 0}, {1, 0}, {1, 1}}),
	MustPiece("L3_down_left", [][]int{{0, 1}, {0, 1}, {1, 1}}),

	MustPiece("plus", [][]int{{0, 1, 0}, {1, 1, 1}, {0, 1, 0}}),
}

// PieceByName looks up a catalog piece. Used by replay when a recorded move
// carries only the piece name.
func PieceByName(name string) (*Piece, error) {
	for _, p := range Catalog {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("game: unknown piece %q", name)
}

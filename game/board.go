// Package game defines the core value types for the 10x10 block puzzle.
//
// Board and GameState are plain Go values: assignment copies, so a state
// held by one search candidate can never be mutated through a sibling.
// Pieces are immutable catalog entries shared by pointer.
package game

import (
	"fmt"
	"strings"
)

// Size is the board edge length. Rows and columns both run 0..Size-1,
// with (0,0) the top-left cell.
const Size = 10

// Board is a fixed-size occupancy grid. true = occupied.
type Board [Size][Size]bool

// BoardFromRows builds a Board from a 0/1 row matrix. It is mostly a test
// and replay convenience; the matrix must be exactly Size x Size.
func BoardFromRows(rows [][]int) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("game: board must have %d rows, got %d", Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("game: board row %d must have %d cells, got %d", r, Size, len(row))
		}
		for c, cell := range row {
			switch cell {
			case 0:
			case 1:
				b[r][c] = true
			default:
				return b, fmt.Errorf("game: board cell (%d,%d) must be 0 or 1, got %d", r, c, cell)
			}
		}
	}
	return b, nil
}

// Occupied reports the number of occupied cells.
func (b Board) Occupied() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] {
				n++
			}
		}
	}
	return n
}

// String renders the board as Size lines of '.' and '#'.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

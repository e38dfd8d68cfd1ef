package game

import (
	"encoding/json"
	"fmt"
)

// Cell is a relative coordinate inside a piece shape, measured from the
// shape's top-left corner (the anchor).
type Cell struct {
	Row int
	Col int
}

// Piece is a placeable shape. Pieces are immutable once constructed and
// are shared by pointer; nothing in this module ever writes to one.
type Piece struct {
	Name string
	// Shape is a rectangular 0/1 occupancy matrix.
	Shape [][]int

	height int
	width  int
	cells  []Cell
}

// NewPiece validates shape and precomputes the occupied cell offsets.
// The shape must be rectangular, non-empty, contain only 0/1 values, and
// have at least one occupied cell.
func NewPiece(name string, shape [][]int) (*Piece, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("game: piece %q has no rows", name)
	}
	width := len(shape[0])
	if width == 0 {
		return nil, fmt.Errorf("game: piece %q has no columns", name)
	}

	var cells []Cell
	for r, row := range shape {
		if len(row) != width {
			return nil, fmt.Errorf("game: piece %q is not rectangular (row %d has %d cells, want %d)", name, r, len(row), width)
		}
		for c, v := range row {
			switch v {
			case 0:
			case 1:
				cells = append(cells, Cell{Row: r, Col: c})
			default:
				return nil, fmt.Errorf("game: piece %q cell (%d,%d) must be 0 or 1, got %d", name, r, c, v)
			}
		}
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("game: piece %q has no occupied cells", name)
	}

	return &Piece{
		Name:   name,
		Shape:  shape,
		height: len(shape),
		width:  width,
		cells:  cells,
	}, nil
}

// MustPiece is NewPiece for static catalog entries.
func MustPiece(name string, shape [][]int) *Piece {
	p, err := NewPiece(name, shape)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Piece) Height() int { return p.height }
func (p *Piece) Width() int  { return p.width }

// CellCount is the number of occupied cells in the shape.
func (p *Piece) CellCount() int { return len(p.cells) }

// Cells returns the occupied offsets relative to the anchor. The returned
// slice is shared; callers must not modify it.
func (p *Piece) Cells() []Cell { return p.cells }

type pieceJSON struct {
	Name  string  `json:"name"`
	Shape [][]int `json:"shape"`
}

// MarshalJSON encodes the piece as {name, shape}.
func (p *Piece) MarshalJSON() ([]byte, error) {
	return json.Marshal(pieceJSON{Name: p.Name, Shape: p.Shape})
}

// UnmarshalJSON decodes and re-validates a piece, rebuilding the
// precomputed cell offsets. Recorded games carry full piece shapes so a
// replay does not depend on the catalog version.
func (p *Piece) UnmarshalJSON(data []byte) error {
	var raw pieceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	np, err := NewPiece(raw.Name, raw.Shape)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}

// String renders the shape with '#' and '.'.
func (p *Piece) String() string {
	out := make([]byte, 0, (p.width+1)*p.height)
	for _, row := range p.Shape {
		for _, v := range row {
			if v == 1 {
				out = append(out, '#')
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

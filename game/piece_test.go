package game

import "testing"

func TestNewPiece_Validation(t *testing.T) {
	cases := []struct {
		name  string
		shape [][]int
		ok    bool
	}{
		{"valid single", [][]int{{1}}, true},
		{"valid with padding", [][]int{{1, 0}, {1, 1}}, true},
		{"empty shape", nil, false},
		{"empty row", [][]int{{}}, false},
		{"ragged rows", [][]int{{1, 1}, {1}}, false},
		{"bad cell value", [][]int{{1, 2}}, false},
		{"all zeros", [][]int{{0, 0}, {0, 0}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPiece(tc.name, tc.shape)
			if tc.ok && err != nil {
				t.Fatalf("NewPiece: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("NewPiece: expected error")
			}
		})
	}
}

func TestCatalog_Integrity(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Catalog {
		if seen[p.Name] {
			t.Fatalf("duplicate piece name %q", p.Name)
		}
		seen[p.Name] = true

		if p.CellCount() == 0 {
			t.Fatalf("piece %q has no cells", p.Name)
		}
		if p.Height() > Size || p.Width() > Size {
			t.Fatalf("piece %q does not fit the board", p.Name)
		}
		for _, c := range p.Cells() {
			if p.Shape[c.Row][c.Col] != 1 {
				t.Fatalf("piece %q cell offset (%d,%d) does not match shape", p.Name, c.Row, c.Col)
			}
		}
	}

	if _, err := PieceByName("plus"); err != nil {
		t.Fatalf("PieceByName(plus): %v", err)
	}
	if _, err := PieceByName("nonsense"); err == nil {
		t.Fatal("PieceByName(nonsense): expected error")
	}
}

func TestBoardFromRows(t *testing.T) {
	rows := make([][]int, Size)
	for r := range rows {
		rows[r] = make([]int, Size)
	}
	rows[2][3] = 1

	b, err := BoardFromRows(rows)
	if err != nil {
		t.Fatalf("BoardFromRows: %v", err)
	}
	if !b[2][3] || b.Occupied() != 1 {
		t.Fatalf("unexpected board:\n%s", b)
	}

	if _, err := BoardFromRows(rows[:5]); err == nil {
		t.Fatal("short board accepted")
	}
	rows[0][0] = 7
	if _, err := BoardFromRows(rows); err == nil {
		t.Fatal("bad cell value accepted")
	}
}

// Board must behave as a value: copies never alias.
func TestGameState_ValueSemantics(t *testing.T) {
	var a GameState
	b := a
	b.Board[0][0] = true
	b.Score = 5

	if a.Board[0][0] || a.Score != 0 {
		t.Fatal("copy aliased the original state")
	}
	if a == b {
		t.Fatal("distinct states compare equal")
	}
	if c := a; c != a {
		t.Fatal("identical states compare unequal")
	}
}

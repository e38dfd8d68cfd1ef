// Package beam plans placements for one dealt hand with a layered beam
// search over immutable game states.
package beam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ryanduan02/tenten/game"
	"github.com/ryanduan02/tenten/rules"
)

// Weights configure the heuristic evaluator. Fields are explicit and
// validated; weight files with unknown keys are rejected (see ParseWeights).
//
// Defaults are deliberately conservative: prefer mobile boards, reward
// lines that are about to clear, lightly penalize jagged surfaces. The
// fragment and enclosed-empty features are off by default and exist for
// tuning experiments.
type Weights struct {
	Mobility        float64 `json:"mobility"`
	NearFullLines   float64 `json:"near_full_lines"`
	Roughness       float64 `json:"roughness"`
	Fragments       float64 `json:"fragments"`
	EnclosedEmpties float64 `json:"enclosed_empties"`
}

// DefaultWeights returns the documented default configuration.
func DefaultWeights() Weights {
	return Weights{
		Mobility:      0.10,
		NearFullLines: 1.00,
		Roughness:     -0.05,
	}
}

// Validate rejects non-finite weights before any search begins, so a bad
// configuration can never silently skew scoring mid-run.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"mobility", w.Mobility},
		{"near_full_lines", w.NearFullLines},
		{"roughness", w.Roughness},
		{"fragments", w.Fragments},
		{"enclosed_empties", w.EnclosedEmpties},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("beam: weight %s must be finite, got %v", f.name, f.v)
		}
	}
	return nil
}

// ParseWeights decodes a JSON weights document. Unknown fields are an
// error, not silently ignored.
func ParseWeights(data []byte) (Weights, error) {
	w := DefaultWeights()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return Weights{}, fmt.Errorf("beam: parse weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Evaluate scores a state on its secondary features: how promising the
// board shape is beyond the raw game score. Higher is better. The raw
// score is intentionally excluded; the planner adds it to form sort keys.
//
// remaining is the set of pieces still to be placed; mobility is counted
// against it.
func Evaluate(state game.GameState, remaining []*game.Piece, w Weights) float64 {
	v := w.Mobility * float64(mobility(state, remaining))
	v += w.NearFullLines * float64(nearFullLines(state.Board))
	v += w.Roughness * float64(roughness(state.Board))

	if w.Fragments != 0 {
		v += w.Fragments * float64(emptyFragments(state.Board))
	}
	if w.EnclosedEmpties != 0 {
		v += w.EnclosedEmpties * float64(enclosedEmpties(state.Board))
	}
	return v
}

// mobility counts legal placements across the remaining pieces.
func mobility(state game.GameState, remaining []*game.Piece) int {
	n := 0
	for _, p := range remaining {
		n += len(rules.LegalMoves(state, 0, p))
	}
	return n
}

// nearFullLines counts rows and columns within 1-2 cells of clearing.
func nearFullLines(b game.Board) int {
	const lo, hi = game.Size - 2, game.Size - 1

	n := 0
	for r := 0; r < game.Size; r++ {
		filled := 0
		for c := 0; c < game.Size; c++ {
			if b[r][c] {
				filled++
			}
		}
		if filled >= lo && filled <= hi {
			n++
		}
	}
	for c := 0; c < game.Size; c++ {
		filled := 0
		for r := 0; r < game.Size; r++ {
			if b[r][c] {
				filled++
			}
		}
		if filled >= lo && filled <= hi {
			n++
		}
	}
	return n
}

// roughness counts occupied/empty transitions between adjacent cells along
// rows and columns. More transitions means a more jagged board.
func roughness(b game.Board) int {
	n := 0
	for r := 0; r < game.Size; r++ {
		for c := 0; c+1 < game.Size; c++ {
			if b[r][c] != b[r][c+1] {
				n++
			}
		}
	}
	for c := 0; c < game.Size; c++ {
		for r := 0; r+1 < game.Size; r++ {
			if b[r][c] != b[r+1][c] {
				n++
			}
		}
	}
	return n
}

// emptyFragments counts 4-connected components of empty space.
func emptyFragments(b game.Board) int {
	var visited game.Board
	n := 0
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			if visited[r][c] || b[r][c] {
				continue
			}
			n++
			floodEmpty(b, &visited, r, c)
		}
	}
	return n
}

// enclosedEmpties counts empty cells with no empty-cell path to the border.
// These approximate holes that only a line clear can recover.
func enclosedEmpties(b game.Board) int {
	var reach game.Board
	for i := 0; i < game.Size; i++ {
		if !b[0][i] && !reach[0][i] {
			floodEmpty(b, &reach, 0, i)
		}
		if !b[game.Size-1][i] && !reach[game.Size-1][i] {
			floodEmpty(b, &reach, game.Size-1, i)
		}
		if !b[i][0] && !reach[i][0] {
			floodEmpty(b, &reach, i, 0)
		}
		if !b[i][game.Size-1] && !reach[i][game.Size-1] {
			floodEmpty(b, &reach, i, game.Size-1)
		}
	}

	n := 0
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			if !b[r][c] && !reach[r][c] {
				n++
			}
		}
	}
	return n
}

// floodEmpty marks the empty 4-connected component containing (r, c).
func floodEmpty(b game.Board, mark *game.Board, r, c int) {
	stack := [][2]int{{r, c}}
	mark[r][c] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nr, nc := cur[0]+d[0], cur[1]+d[1]
			if nr < 0 || nr >= game.Size || nc < 0 || nc >= game.Size {
				continue
			}
			if mark[nr][nc] || b[nr][nc] {
				continue
			}
			mark[nr][nc] = true
			stack = append(stack, [2]int{nr, nc})
		}
	}
}

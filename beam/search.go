package beam

import (
	"fmt"
	"sort"

	"github.com/ryanduan02/tenten/game"
	"github.com/ryanduan02/tenten/rules"
)

// PlannedMove is a move annotated with what applying it did: the rules
// outcome, the cumulative score afterwards, and the heuristic value of the
// resulting board. Records are self-contained so a replay tool can re-apply
// them through rules.ApplyMove and check the scores line up.
type PlannedMove struct {
	rules.Move
	Delta          int     `json:"delta"`
	ClearedCells   int     `json:"cleared_cells"`
	RowsCleared    int     `json:"rows_cleared"`
	ColsCleared    int     `json:"cols_cleared"`
	ScoreAfter     int     `json:"score_after"`
	HeuristicValue float64 `json:"heuristic_value"`
}

// Params configure one search. Score must match the params the caller will
// later replay with.
type Params struct {
	BeamWidth int
	Weights   Weights
	Score     rules.ScoreParams
}

// DefaultParams: beam width 25 with default weights and v1 scoring.
func DefaultParams() Params {
	return Params{
		BeamWidth: 25,
		Weights:   DefaultWeights(),
		Score:     rules.DefaultScoreParams(),
	}
}

// candidate is one partial placement sequence inside the search. It exists
// only transiently; candidates dropped at a layer boundary are released.
type candidate struct {
	state game.GameState
	moves []PlannedMove
	key   float64
	// terminal marks a game-over branch: some piece had no legal
	// placement. Terminal candidates are retained but never re-expanded.
	terminal bool
}

// BestSequence runs a layered beam search over the hand, placing pieces
// strictly in dealt order, and returns the best move sequence found.
//
// The beam holds at most params.BeamWidth candidates at every layer
// boundary, so cost is bounded by depth x width x placements-per-state.
// A candidate whose next piece has no legal placement is kept as a
// game-over branch since it may still be the best available outcome.
//
// Identical inputs always yield identical output: move generation is
// row-major and ties in the sort key break on the lexicographic order of
// the move coordinates. An empty sequence with a nil error means no move
// is possible, which callers treat as end of game.
//
// The only errors are configuration errors, reported before any search.
func BestSequence(initial game.GameState, hand []*game.Piece, params Params) ([]PlannedMove, error) {
	if params.BeamWidth < 1 {
		return nil, fmt.Errorf("beam: beam width must be >= 1, got %d", params.BeamWidth)
	}
	if err := params.Weights.Validate(); err != nil {
		return nil, err
	}

	beam := []candidate{{state: initial}}

	for layer, piece := range hand {
		pool := make([]candidate, 0, len(beam)*4)
		expanded := false
		remaining := hand[layer+1:]

		for _, cand := range beam {
			if cand.terminal {
				pool = append(pool, cand)
				continue
			}

			moves := rules.LegalMoves(cand.state, layer, piece)
			if len(moves) == 0 {
				cand.terminal = true
				pool = append(pool, cand)
				continue
			}
			expanded = true

			for _, mv := range moves {
				next, out, err := rules.ApplyMove(cand.state, mv.Piece, mv.Row, mv.Col, params.Score)
				if err != nil {
					// LegalMoves only yields placements CanPlace accepts.
					return nil, fmt.Errorf("beam: generator/engine disagreement: %w", err)
				}

				h := Evaluate(next, remaining, params.Weights)

				seq := make([]PlannedMove, len(cand.moves), len(cand.moves)+1)
				copy(seq, cand.moves)
				seq = append(seq, PlannedMove{
					Move:           mv,
					Delta:          out.Delta,
					ClearedCells:   out.ClearedCells,
					RowsCleared:    out.RowsCleared,
					ColsCleared:    out.ColsCleared,
					ScoreAfter:     next.Score,
					HeuristicValue: h,
				})

				pool = append(pool, candidate{
					state: next,
					moves: seq,
					key:   float64(next.Score) + h,
				})
			}
		}

		sortCandidates(pool)
		if len(pool) > params.BeamWidth {
			pool = pool[:params.BeamWidth]
		}
		beam = pool

		if !expanded {
			break
		}
	}

	// The beam is sorted best-first with deterministic tie-breaks.
	return beam[0].moves, nil
}

// sortCandidates orders best key first; equal keys break on the
// lexicographic order of the move coordinate sequences so truncation and
// the final pick are reproducible.
func sortCandidates(pool []candidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.key != b.key {
			return a.key > b.key
		}
		return lessMoves(a.moves, b.moves)
	})
}

func lessMoves(a, b []PlannedMove) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].Row != b[i].Row {
			return a[i].Row < b[i].Row
		}
		if a[i].Col != b[i].Col {
			return a[i].Col < b[i].Col
		}
	}
	// Prefer the longer sequence: more pieces placed on an equal key.
	return len(a) > len(b)
}

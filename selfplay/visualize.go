package selfplay

import (
	"fmt"
	"strings"

	"github.com/ryanduan02/tenten/beam"
	"github.com/ryanduan02/tenten/game"
)

// BoardString renders a state for trace logs: the grid, the score, and
// optionally the move that produced it.
func BoardString(state game.GameState, last *beam.PlannedMove) string {
	var sb strings.Builder
	if last != nil {
		fmt.Fprintf(&sb, "placed %s at (%d,%d) delta=%d", last.Piece.Name, last.Row, last.Col, last.Delta)
		if cleared := last.RowsCleared + last.ColsCleared; cleared > 0 {
			fmt.Fprintf(&sb, " cleared=%dr/%dc", last.RowsCleared, last.ColsCleared)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(state.Board.String())
	fmt.Fprintf(&sb, "score=%d\n", state.Score)
	return sb.String()
}

// HandString lists a hand's piece names for logs.
func HandString(hand []*game.Piece) string {
	names := make([]string, len(hand))
	for i, p := range hand {
		names[i] = p.Name
	}
	return strings.Join(names, ",")
}

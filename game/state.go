package game

// GameState is an immutable snapshot: occupancy plus cumulative score.
// It is a value; every rules transition returns a new one. Two states with
// equal board and score are interchangeable, so == works for dedupe.
type GameState struct {
	Board Board
	Score int
}

// NewGameState returns the empty-board, zero-score starting state.
func NewGameState() GameState {
	return GameState{}
}

// Package selfplay runs complete automated games: deal seeded hands, plan
// each hand with the beam planner, execute the plan through the rules
// engine, and record per-move telemetry for tuning.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ryanduan02/tenten/beam"
	"github.com/ryanduan02/tenten/game"
	"github.com/ryanduan02/tenten/rules"
)

// Config configures one automated game. The zero value is not usable; use
// DefaultConfig and override.
type Config struct {
	Seed      int64
	HandSize  int
	BeamWidth int
	Weights   beam.Weights
	Score     rules.ScoreParams
	// MaxMoves caps the game length; 0 means play until no move is possible.
	MaxMoves int
	// Catalog is the piece pool hands are drawn from.
	Catalog []*game.Piece
	// OnMove, if set, is called after each executed move. Used for live
	// viewers and progress accounting.
	OnMove func(MoveEvent)
}

// DefaultConfig returns a playable configuration for the given seed.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:      seed,
		HandSize:  game.HandSize,
		BeamWidth: 25,
		Weights:   beam.DefaultWeights(),
		Score:     rules.DefaultScoreParams(),
		Catalog:   game.Catalog,
	}
}

// MoveEvent is one executed move plus the state it produced.
type MoveEvent struct {
	GameID  string
	Seed    int64
	HandNum int
	MoveNum int
	Move    beam.PlannedMove
	State   game.GameState
}

// Segment records one dealt hand and the moves executed for it.
type Segment struct {
	Hand       []string           `json:"hand"`
	StartScore int                `json:"start_score"`
	EndScore   int                `json:"end_score"`
	Moves      []beam.PlannedMove `json:"moves"`
}

// GameRecord is the full telemetry of one game. It carries the scoring
// constants and weights it was produced with so replays and analysis can
// reproduce it exactly.
type GameRecord struct {
	GameID     string            `json:"game_id"`
	Seed       int64             `json:"seed"`
	BeamWidth  int               `json:"beam_width"`
	Weights    beam.Weights      `json:"weights"`
	Score      rules.ScoreParams `json:"score_params"`
	FinalScore int               `json:"final_score"`
	MoveCount  int               `json:"move_count"`
	Completed  bool              `json:"completed"`
	Segments   []Segment         `json:"segments"`
}

// PlayGame runs one game to completion (or MaxMoves). The game itself is
// single-threaded and deterministic for a given Config; concurrency lives
// in the caller, which runs independent games in parallel.
//
// On context cancellation the partial record (Completed=false) is returned
// together with the context error.
func PlayGame(ctx context.Context, cfg Config) (GameRecord, error) {
	if cfg.HandSize <= 0 {
		cfg.HandSize = game.HandSize
	}
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = game.Catalog
	}
	params := beam.Params{BeamWidth: cfg.BeamWidth, Weights: cfg.Weights, Score: cfg.Score}

	rec := GameRecord{
		GameID:    fmt.Sprintf("beam_%d_%d", cfg.Seed, time.Now().UnixNano()),
		Seed:      cfg.Seed,
		BeamWidth: cfg.BeamWidth,
		Weights:   cfg.Weights,
		Score:     cfg.Score,
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	state := game.NewGameState()

	for {
		if err := ctx.Err(); err != nil {
			rec.FinalScore = state.Score
			return rec, err
		}
		if cfg.MaxMoves > 0 && rec.MoveCount >= cfg.MaxMoves {
			break
		}

		hand := drawHand(rng, cfg.Catalog, cfg.HandSize)

		planned, err := beam.BestSequence(state, hand, params)
		if err != nil {
			// Only reachable with an invalid Config.
			rec.FinalScore = state.Score
			return rec, fmt.Errorf("selfplay: plan hand: %w", err)
		}
		if len(planned) == 0 {
			// Cross-check the planner's game-over claim against the engine.
			if rules.AnyLegalMove(state, hand[:1]) {
				rec.FinalScore = state.Score
				return rec, fmt.Errorf("selfplay: planner reported game over but %s still fits", hand[0].Name)
			}
			break
		}

		seg := Segment{StartScore: state.Score}
		for _, p := range hand {
			seg.Hand = append(seg.Hand, p.Name)
		}

		for _, mv := range planned {
			if cfg.MaxMoves > 0 && rec.MoveCount >= cfg.MaxMoves {
				break
			}

			// Execute through the same engine entry point replay uses.
			next, out, err := rules.ApplyMove(state, mv.Piece, mv.Row, mv.Col, cfg.Score)
			if err != nil {
				rec.FinalScore = state.Score
				return rec, fmt.Errorf("selfplay: execute planned move: %w", err)
			}
			if next.Score != mv.ScoreAfter || out.Delta != mv.Delta {
				rec.FinalScore = state.Score
				return rec, fmt.Errorf("selfplay: planner/engine divergence at move %d: score %d vs %d", rec.MoveCount, next.Score, mv.ScoreAfter)
			}

			state = next
			rec.MoveCount++
			seg.Moves = append(seg.Moves, mv)

			if cfg.OnMove != nil {
				cfg.OnMove(MoveEvent{
					GameID:  rec.GameID,
					Seed:    rec.Seed,
					HandNum: len(rec.Segments),
					MoveNum: rec.MoveCount,
					Move:    mv,
					State:   state,
				})
			}
		}

		seg.EndScore = state.Score
		rec.Segments = append(rec.Segments, seg)

		// A plan shorter than the hand means some piece had no placement;
		// dealt order is strict, so the game ends here.
		if len(planned) < len(hand) {
			break
		}
	}

	rec.FinalScore = state.Score
	rec.Completed = true
	return rec, nil
}

func drawHand(rng *rand.Rand, catalog []*game.Piece, n int) []*game.Piece {
	hand := make([]*game.Piece, n)
	for i := range hand {
		hand[i] = catalog[rng.Intn(len(catalog))]
	}
	return hand
}

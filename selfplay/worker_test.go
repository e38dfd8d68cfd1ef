package selfplay

import (
	"context"
	"reflect"
	"testing"

	"github.com/ryanduan02/tenten/game"
	"github.com/ryanduan02/tenten/rules"
)

func TestPlayGame_DeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig(42)
	cfg.BeamWidth = 5
	cfg.MaxMoves = 30

	a, err := PlayGame(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	b, err := PlayGame(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}

	if a.FinalScore != b.FinalScore || a.MoveCount != b.MoveCount {
		t.Fatalf("runs diverged: score %d/%d moves %d/%d", a.FinalScore, b.FinalScore, a.MoveCount, b.MoveCount)
	}
	if !reflect.DeepEqual(a.Segments, b.Segments) {
		t.Fatal("segments diverged between identical runs")
	}
}

// A recorded game must replay exactly through rules.ApplyMove.
func TestPlayGame_RecordReplays(t *testing.T) {
	cfg := DefaultConfig(7)
	cfg.BeamWidth = 10
	cfg.MaxMoves = 45

	rec, err := PlayGame(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	if rec.MoveCount == 0 {
		t.Fatal("expected at least one move from an empty board")
	}

	state := game.NewGameState()
	moves := 0
	for si, seg := range rec.Segments {
		if seg.StartScore != state.Score {
			t.Fatalf("segment %d start score=%d want=%d", si, seg.StartScore, state.Score)
		}
		for mi, mv := range seg.Moves {
			before := state.Board.Occupied()
			next, out, err := rules.ApplyMove(state, mv.Piece, mv.Row, mv.Col, rec.Score)
			if err != nil {
				t.Fatalf("segment %d move %d: %v", si, mi, err)
			}
			if next.Score != mv.ScoreAfter {
				t.Fatalf("segment %d move %d: score=%d recorded=%d", si, mi, next.Score, mv.ScoreAfter)
			}
			if got, want := next.Board.Occupied(), before+out.CellsPlaced-out.ClearedCells; got != want {
				t.Fatalf("segment %d move %d: conservation violated: %d want %d", si, mi, got, want)
			}
			state = next
			moves++
		}
		if seg.EndScore != state.Score {
			t.Fatalf("segment %d end score=%d want=%d", si, seg.EndScore, state.Score)
		}
	}
	if moves != rec.MoveCount || state.Score != rec.FinalScore {
		t.Fatalf("replayed %d moves to score %d; record says %d moves, score %d", moves, state.Score, rec.MoveCount, rec.FinalScore)
	}
}

func TestPlayGame_OnMoveEvents(t *testing.T) {
	cfg := DefaultConfig(3)
	cfg.BeamWidth = 3
	cfg.MaxMoves = 9

	var events []MoveEvent
	cfg.OnMove = func(ev MoveEvent) { events = append(events, ev) }

	rec, err := PlayGame(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	if len(events) != rec.MoveCount {
		t.Fatalf("%d events for %d moves", len(events), rec.MoveCount)
	}
	for i, ev := range events {
		if ev.MoveNum != i+1 {
			t.Fatalf("event %d has move number %d", i, ev.MoveNum)
		}
		if ev.State.Score != ev.Move.ScoreAfter {
			t.Fatalf("event %d state score %d != score_after %d", i, ev.State.Score, ev.Move.ScoreAfter)
		}
	}
}

func TestPlayGame_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig(1)
	rec, err := PlayGame(ctx, cfg)
	if err == nil {
		t.Fatal("expected context error")
	}
	if rec.Completed {
		t.Fatal("cancelled game marked completed")
	}
}

func TestPlayGame_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig(1)
	cfg.BeamWidth = 0
	if _, err := PlayGame(context.Background(), cfg); err == nil {
		t.Fatal("expected configuration error")
	}
}

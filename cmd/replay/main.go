// replay steps through a recorded game one move at a time, re-applying
// every move through the rules engine rather than trusting the file. If the
// engine and the recording ever disagree on a score, the divergence is
// shown instead of silently accepted.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanduan02/tenten/beam"
	"github.com/ryanduan02/tenten/game"
	"github.com/ryanduan02/tenten/rules"
	"github.com/ryanduan02/tenten/selfplay"
	"github.com/ryanduan02/tenten/store"
)

type step struct {
	handNum int
	hand    []string
	move    beam.PlannedMove
}

type model struct {
	gameID string
	score  rules.ScoreParams
	steps  []step

	state game.GameState
	next  int // index of the next step to apply

	lastNote string
	err      error
}

func newModel(rec selfplay.GameRecord) model {
	var steps []step
	for handNum, seg := range rec.Segments {
		for _, mv := range seg.Moves {
			steps = append(steps, step{handNum: handNum, hand: seg.Hand, move: mv})
		}
	}
	return model{
		gameID: rec.GameID,
		score:  rec.Score,
		steps:  steps,
		state:  game.NewGameState(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter", " ", "n", "right":
		return m.advance(), nil
	}
	return m, nil
}

func (m model) advance() model {
	if m.err != nil || m.next >= len(m.steps) {
		return m
	}

	st := m.steps[m.next]
	mv := st.move

	next, out, err := rules.ApplyMove(m.state, mv.Piece, mv.Row, mv.Col, m.score)
	if err != nil {
		m.err = fmt.Errorf("move %d: %w", m.next+1, err)
		return m
	}

	m.lastNote = fmt.Sprintf("placed %s at (%d,%d)  +%d", mv.Piece.Name, mv.Row, mv.Col, out.Delta)
	if lines := out.RowsCleared + out.ColsCleared; lines > 0 {
		m.lastNote += fmt.Sprintf("  cleared %d row(s), %d col(s)", out.RowsCleared, out.ColsCleared)
	}
	if next.Score != mv.ScoreAfter {
		m.lastNote += fmt.Sprintf("  [DIVERGED: engine=%d recorded=%d]", next.Score, mv.ScoreAfter)
	}

	m.state = next
	m.next++
	return m
}

func (m model) View() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "replay %s  (scoring %s)\n\n", m.gameID, m.score.Version)
	sb.WriteString(m.state.Board.String())
	fmt.Fprintf(&sb, "\nscore: %d   move %d/%d\n", m.state.Score, m.next, len(m.steps))

	if m.lastNote != "" {
		sb.WriteString(m.lastNote + "\n")
	}
	if m.err != nil {
		fmt.Fprintf(&sb, "replay failed: %v\n", m.err)
	}

	if m.next < len(m.steps) && m.err == nil {
		st := m.steps[m.next]
		fmt.Fprintf(&sb, "\nhand %d: %s\nnext: %s at (%d,%d)\n%s",
			st.handNum+1, strings.Join(st.hand, ", "),
			st.move.Piece.Name, st.move.Row, st.move.Col, st.move.Piece)
	} else if m.err == nil {
		sb.WriteString("\nreplay complete\n")
	}

	sb.WriteString("\n[enter/space/n] next  [q] quit\n")
	return sb.String()
}

func main() {
	path := flag.String("in", "runs.jsonl", "Results file (JSONL or single JSON game record)")
	gameIndex := flag.Int("game", 0, "Which game in the file to replay")
	flag.Parse()

	records, err := store.ReadResults(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load replay: %v\n", err)
		os.Exit(1)
	}
	if *gameIndex < 0 || *gameIndex >= len(records) {
		fmt.Fprintf(os.Stderr, "game index %d out of range (file has %d games)\n", *gameIndex, len(records))
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(records[*gameIndex]))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

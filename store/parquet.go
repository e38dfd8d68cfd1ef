// Package store persists simulation telemetry: a compressed parquet move
// archive for bulk analysis, JSONL game results for quick inspection, and
// an append-only run log for deduping re-runs.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/ryanduan02/tenten/selfplay"
)

// MoveRow is one executed move, flattened for long-term storage. It is
// self-describing: beam width, heuristic value, and scoring version ride
// along so rows from different experiments can be mixed in one dataset.
type MoveRow struct {
	GameID  string `parquet:"game_id,dict"`
	Seed    int64  `parquet:"seed"`
	HandNum int32  `parquet:"hand_num"`
	MoveNum int32  `parquet:"move_num"`

	PieceName  string `parquet:"piece_name,dict"`
	PieceIndex int32  `parquet:"piece_index"`
	Row        int32  `parquet:"row"`
	Col        int32  `parquet:"col"`

	Delta        int32 `parquet:"delta"`
	ClearedCells int32 `parquet:"cleared_cells"`
	RowsCleared  int32 `parquet:"rows_cleared"`
	ColsCleared  int32 `parquet:"cols_cleared"`
	ScoreAfter   int64 `parquet:"score_after"`

	Heuristic    float64 `parquet:"heuristic"`
	BeamWidth    int32   `parquet:"beam_width"`
	ScoreVersion string  `parquet:"score_version,dict"`
	Source       string  `parquet:"source,dict"`
}

// RowsFromGame flattens a game record into archive rows.
func RowsFromGame(rec selfplay.GameRecord, source string) []MoveRow {
	rows := make([]MoveRow, 0, rec.MoveCount)
	moveNum := 0
	for handNum, seg := range rec.Segments {
		for _, mv := range seg.Moves {
			moveNum++
			rows = append(rows, MoveRow{
				GameID:       rec.GameID,
				Seed:         rec.Seed,
				HandNum:      int32(handNum),
				MoveNum:      int32(moveNum),
				PieceName:    mv.Piece.Name,
				PieceIndex:   int32(mv.PieceIndex),
				Row:          int32(mv.Row),
				Col:          int32(mv.Col),
				Delta:        int32(mv.Delta),
				ClearedCells: int32(mv.ClearedCells),
				RowsCleared:  int32(mv.RowsCleared),
				ColsCleared:  int32(mv.ColsCleared),
				ScoreAfter:   int64(mv.ScoreAfter),
				Heuristic:    mv.HeuristicValue,
				BeamWidth:    int32(rec.BeamWidth),
				ScoreVersion: rec.Score.Version,
				Source:       source,
			})
		}
	}
	return rows
}

// WriteMovesParquet writes rows to outPath, via a temp file and an atomic
// rename so readers never observe a partial file.
func WriteMovesParquet(outPath string, rows []MoveRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "move_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteMovesBatchAtomic writes a uniquely named batch file into outDir,
// staging under outDir/tmp first. Returns the final path.
func WriteMovesBatchAtomic(outDir string, rows []MoveRow) (string, error) {
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "move_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ryanduan02/tenten/selfplay"
)

// ResultWriter appends game records to a JSONL file, one JSON object per
// line. Safe for concurrent use by multiple workers.
type ResultWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenResultWriter creates (or truncates) the JSONL file at path.
func OpenResultWriter(path string) (*ResultWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("result path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create result dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	return &ResultWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Append writes one game record line.
func (w *ResultWriter) Append(rec selfplay.GameRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return fmt.Errorf("result writer is closed")
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (w *ResultWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// ReadResults loads every game record from a JSONL (or single-object JSON)
// file. Used by the replay tool.
func ReadResults(path string) ([]selfplay.GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	var out []selfplay.GameRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec selfplay.GameRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode result %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no game records in %s", path)
	}
	return out, nil
}

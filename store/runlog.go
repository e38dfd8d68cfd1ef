package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// RunLog tracks which seeds have already been simulated into an output
// directory, so re-running a batch skips completed games instead of
// duplicating them.
//
// It is an append-only file with one seed per line, loaded into memory on
// open and fsynced on every append. It tolerates partial trailing lines
// from a crashed writer; it is a dedupe list, not a WAL.
type RunLog struct {
	mu   sync.RWMutex
	file *os.File
	done map[int64]struct{}
}

// OpenRunLog opens (creating if needed) the run log at path.
func OpenRunLog(path string) (*RunLog, error) {
	if path == "" {
		return nil, fmt.Errorf("run log path is required")
	}

	done := make(map[int64]struct{})
	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			seed, err := strconv.ParseInt(line, 10, 64)
			if err != nil {
				continue // partial or corrupt line
			}
			done[seed] = struct{}{}
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create run log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	return &RunLog{file: file, done: done}, nil
}

// Has reports whether seed was already completed.
func (l *RunLog) Has(seed int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.done[seed]
	return ok
}

// Count returns the number of completed seeds.
func (l *RunLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.done)
}

// Add records a completed seed and syncs the log.
func (l *RunLog) Add(seed int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.done[seed]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("run log is closed")
	}
	if _, err := fmt.Fprintf(l.file, "%d\n", seed); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync run log: %w", err)
	}
	l.done[seed] = struct{}{}
	return nil
}

func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

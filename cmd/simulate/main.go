// simulate runs batches of automated beam-search games and records their
// telemetry: JSONL game results for quick inspection and parquet move
// archives for bulk analysis. Each game is independent, so games are
// spread across worker goroutines; the planner itself stays sequential.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ryanduan02/tenten/beam"
	"github.com/ryanduan02/tenten/logging"
	"github.com/ryanduan02/tenten/rules"
	"github.com/ryanduan02/tenten/selfplay"
	"github.com/ryanduan02/tenten/store"
	"github.com/ryanduan02/tenten/viewer"
)

func main() {
	games := flag.Int("games", 10, "Number of games to simulate")
	baseSeed := flag.Int64("seed", 0, "Base seed; game i uses seed+i")
	beamWidth := flag.Int("beam-width", 25, "Beam width for the planner")
	handSize := flag.Int("hand-size", 3, "Pieces dealt per hand")
	maxMoves := flag.Int("max-moves", 0, "Stop each game after this many moves (0 = play out)")
	workers := flag.Int("workers", 4, "Concurrent games")

	outPath := flag.String("out", "runs.jsonl", "JSONL results file")
	parquetDir := flag.String("parquet-dir", "", "If set, write parquet move batches to this directory")
	gamesPerFlush := flag.Int("games-per-flush", 50, "Games to buffer per parquet flush")
	runLogPath := flag.String("run-log", "", "If set, skip seeds already listed in this log and append completed ones")
	viewerAddr := flag.String("viewer-addr", "", "If set, serve live board snapshots over websocket at this address")
	verbose := flag.Bool("v", false, "Debug logging")

	weightsFile := flag.String("weights-file", "", "JSON weights file (unknown keys rejected)")
	mobility := flag.Float64("mobility", defaultW().Mobility, "Mobility weight")
	nearFull := flag.Float64("near-full-lines", defaultW().NearFullLines, "Near-full-lines weight")
	roughness := flag.Float64("roughness", defaultW().Roughness, "Roughness weight")
	fragments := flag.Float64("fragments", defaultW().Fragments, "Empty-fragments weight")
	enclosed := flag.Float64("enclosed-empties", defaultW().EnclosedEmpties, "Enclosed-empties weight")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(logging.NewPrettyJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	weights, err := resolveWeights(*weightsFile, beam.Weights{
		Mobility:        *mobility,
		NearFullLines:   *nearFull,
		Roughness:       *roughness,
		Fragments:       *fragments,
		EnclosedEmpties: *enclosed,
	})
	if err != nil {
		log.Error("invalid weights", "err", err)
		os.Exit(1)
	}
	if *games <= 0 || *beamWidth <= 0 {
		log.Error("games and beam-width must be positive")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := store.OpenResultWriter(*outPath)
	if err != nil {
		log.Error("open results", "err", err)
		os.Exit(1)
	}
	defer results.Close()

	var runLog *store.RunLog
	if *runLogPath != "" {
		runLog, err = store.OpenRunLog(*runLogPath)
		if err != nil {
			log.Error("open run log", "err", err)
			os.Exit(1)
		}
		defer runLog.Close()
		log.Info("run log loaded", "completed", runLog.Count())
	}

	var view *viewer.Server
	if *viewerAddr != "" {
		view = viewer.NewServer(*viewerAddr, log)
		go func() {
			if err := view.Start(ctx); err != nil {
				log.Error("viewer stopped", "err", err)
			}
		}()
		log.Info("viewer listening", "addr", *viewerAddr)
	}

	// Parquet rows flow through a single writer goroutine so workers never
	// block on disk and batches stay atomic.
	var rowCh chan []store.MoveRow
	writerDone := make(chan struct{})
	if *parquetDir != "" {
		rowCh = make(chan []store.MoveRow, *workers*2)
		go func() {
			defer close(writerDone)
			parquetWriterLoop(log, *parquetDir, *gamesPerFlush, rowCh)
		}()
	} else {
		close(writerDone)
	}

	seeds := make(chan int64)
	go func() {
		defer close(seeds)
		for i := 0; i < *games; i++ {
			seed := *baseSeed + int64(i)
			if runLog != nil && runLog.Has(seed) {
				log.Debug("seed already simulated", "seed", seed)
				continue
			}
			select {
			case seeds <- seed:
			case <-ctx.Done():
				return
			}
		}
	}()

	var played, totalMoves atomic.Int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for seed := range seeds {
				cfg := selfplay.Config{
					Seed:      seed,
					HandSize:  *handSize,
					BeamWidth: *beamWidth,
					Weights:   weights,
					Score:     rules.DefaultScoreParams(),
					MaxMoves:  *maxMoves,
				}
				if view != nil || *verbose {
					cfg.OnMove = func(ev selfplay.MoveEvent) {
						if view != nil {
							view.Publish(viewer.SnapshotFromEvent(ev))
						}
						if *verbose {
							log.Debug("move executed",
								"seed", ev.Seed,
								"move", ev.MoveNum,
								"trace", selfplay.BoardString(ev.State, &ev.Move),
							)
						}
					}
				}

				rec, err := selfplay.PlayGame(ctx, cfg)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					log.Error("game failed", "worker", workerID, "seed", seed, "err", err)
					continue
				}

				if err := results.Append(rec); err != nil {
					log.Error("append result", "seed", seed, "err", err)
				}
				if rowCh != nil {
					rowCh <- store.RowsFromGame(rec, "simulate")
				}
				if runLog != nil {
					if err := runLog.Add(seed); err != nil {
						log.Error("append run log", "seed", seed, "err", err)
					}
				}

				played.Add(1)
				totalMoves.Add(int64(rec.MoveCount))
				log.Info("game complete",
					"worker", workerID,
					"seed", seed,
					"score", rec.FinalScore,
					"moves", rec.MoveCount,
				)
			}
		}(w)
	}

	wg.Wait()
	if rowCh != nil {
		close(rowCh)
	}
	<-writerDone

	elapsed := time.Since(start)
	log.Info("batch finished",
		"games", played.Load(),
		"moves", totalMoves.Load(),
		"elapsed", elapsed.Round(time.Millisecond),
		"out", *outPath,
	)
}

func defaultW() beam.Weights { return beam.DefaultWeights() }

func resolveWeights(path string, flags beam.Weights) (beam.Weights, error) {
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return beam.Weights{}, err
		}
		return beam.ParseWeights(data)
	}
	if err := flags.Validate(); err != nil {
		return beam.Weights{}, err
	}
	return flags, nil
}

func parquetWriterLoop(log *slog.Logger, outDir string, gamesPerFlush int, in <-chan []store.MoveRow) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	pending := make([]store.MoveRow, 0, 256*gamesPerFlush)
	pendingGames := 0

	flush := func(final bool) {
		if pendingGames == 0 || len(pending) == 0 {
			return
		}
		path, err := store.WriteMovesBatchAtomic(outDir, pending)
		if err != nil {
			log.Error("parquet flush failed", "games", pendingGames, "rows", len(pending), "err", err)
		} else {
			log.Info("parquet flush ok", "path", path, "games", pendingGames, "rows", len(pending), "final", final)
		}
		pending = pending[:0]
		pendingGames = 0
	}

	for rows := range in {
		if len(rows) == 0 {
			continue
		}
		pending = append(pending, rows...)
		pendingGames++
		if pendingGames >= gamesPerFlush {
			flush(false)
		}
	}
	flush(true)
}

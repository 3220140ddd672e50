package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/async"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/core"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/export"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/fields"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/ingest"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "record jobs in an in-memory SQLite database")
		dir     = flag.String("dir", "", "directory to process resumes from (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		workers = flag.Int("workers", 4, "number of concurrent extractions")
		watch   = flag.Bool("watch", false, "keep running and process files as they appear until interrupted")
		hidden  = flag.Bool("hidden", false, "include hidden files and directories")
		timeout = flag.Duration("timeout", 3*time.Minute, "per-file processing timeout")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *workers <= 0 {
		printError("Error: --workers must be positive\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "resumes.xlsx")
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := cfg.Database
	if *inmem {
		dbCfg.DSN = repository.MemoryDSN
	}
	var db *repository.DB
	if dbCfg.DSN != "" {
		var err error
		if db, err = server.ConnectDB(ctx, dbCfg, logger); err != nil {
			os.Exit(1)
		}
		defer db.Close()
	}

	comp, err := core.Build(ctx, cfg, db, logger)
	if err != nil {
		logger.Error("failed to wire processor", "error", err)
		os.Exit(1)
	}
	defer comp.Close()

	queue := async.NewProcessorQueue(comp.Processor, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(*workers*4),
		async.WithProcessTimeout(*timeout),
	)

	var skipped []export.Row
	if *watch {
		skipped = watchDirectory(ctx, *dir, *hidden, queue, logger)
	} else {
		skipped = scanDirectory(ctx, *dir, *hidden, queue, logger)
	}

	// queued files still finish after an interrupt
	drainCtx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	queue.Shutdown(drainCtx)

	results := queue.Results()
	rows := append(rowsFromResults(*dir, results), skipped...)
	slices.SortFunc(rows, func(a, b export.Row) int { return cmp.Compare(a.File, b.File) })

	xlsx, err := export.NewService(comp.Jobs, logger).RecordsXLSX(rows)
	if err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	logger.Info("batch processing complete",
		"files_processed", len(results),
		"skipped", len(skipped),
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", len(results))
	fmt.Printf("- Skipped: %d\n", len(skipped))
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// scanDirectory enqueues every unique accepted file once and returns rows for the files it skipped.
func scanDirectory(ctx context.Context, dir string, hidden bool, queue *async.ProcessorQueue, logger *slog.Logger) []export.Row {
	files, stats, err := ingest.ScanDirectory(ctx, dir, !hidden, logger)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)

	var skipped []export.Row
	for _, f := range files {
		switch {
		case f.Err != "":
			skipped = append(skipped, skippedRow(dir, f.Path, f.Err))
			continue
		case f.Deduplicated():
			skipped = append(skipped, skippedRow(dir, f.Path, "duplicate of "+relPath(dir, f.DuplicateOf)))
			continue
		}
		if err := queue.Enqueue(ctx, async.Job{Path: f.Path, ContentHash: f.HashHex}); err != nil {
			logger.Warn("enqueue failed", "path", f.Path, "error", err)
			skipped = append(skipped, skippedRow(dir, f.Path, err.Error()))
		}
	}
	return skipped
}

// watchDirectory enqueues existing and newly written files until ctx ends.
func watchDirectory(ctx context.Context, dir string, hidden bool, queue *async.ProcessorQueue, logger *slog.Logger) []export.Row {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("watching for resumes; interrupt to export", "dir", dir)

	seen := map[string]string{} // hash -> first path
	var skipped []export.Row
	for {
		select {
		case p, ok := <-paths:
			if !ok {
				return skipped
			}
			if !hidden && ingest.IsHidden(p) {
				continue
			}
			hash, _, err := ingest.HashFile(p)
			if err != nil {
				logger.Warn("hash failed", "path", p, "error", err)
				continue
			}
			if first, dup := seen[hash]; dup {
				logger.Info("duplicate skipped", "path", p, "duplicate_of", first)
				continue
			}
			seen[hash] = p
			if err := queue.Enqueue(ctx, async.Job{Path: p, ContentHash: hash}); err != nil {
				skipped = append(skipped, skippedRow(dir, p, err.Error()))
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		case <-ctx.Done():
			return skipped
		}
	}
}

func rowsFromResults(dir string, results []async.Result) []export.Row {
	rows := make([]export.Row, 0, len(results))
	for _, r := range results {
		row := export.Row{
			File:   relPath(dir, r.Job.Path),
			Record: r.Outcome.Record,
			Method: string(r.Outcome.Extraction.Method),
		}
		if r.Outcome.Record.Skills == nil {
			row.Record = fields.EmptyRecord()
		}
		if n := len(r.Outcome.States); n > 0 {
			row.Status = string(r.Outcome.States[n-1])
		}
		if r.Outcome.JobID != uuid.Nil {
			row.JobID = r.Outcome.JobID.String()
		}
		if r.Err != nil {
			row.Err = common.RejectionMessage(r.Err)
			if !common.IsClientError(r.Err) {
				row.Err = r.Err.Error()
			}
		}
		if len(r.Outcome.Extraction.Warnings) > 0 && row.Err == "" {
			row.Err = r.Outcome.Extraction.Warnings[0]
		}
		rows = append(rows, row)
	}
	return rows
}

func skippedRow(dir, path, reason string) export.Row {
	return export.Row{
		File:   relPath(dir, path),
		Status: string(constants.JobStatusRejected),
		Record: fields.EmptyRecord(),
		Err:    reason,
	}
}

func relPath(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}

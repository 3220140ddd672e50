package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/core"
)

func main() {
	var (
		showText = flag.Bool("text", false, "print the extracted text instead of the record")
		reformat = flag.Bool("reformat", false, "also run the configured LLM reformatter")
		archive  = flag.Bool("archive", false, "archive the file to the configured storage backend")
		timeout  = flag.Duration("timeout", 3*time.Minute, "overall timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: runextract [flags] <resume.pdf|docx|jpg|jpeg|png>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	// logs go to stderr so stdout stays pipeable
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	if !*archive {
		cfg.Storage.Backend = "none"
	}
	if *reformat && cfg.LLM.Provider == "" {
		logger.Error("--reformat needs LLM_PROVIDER (openai or gemini)")
		os.Exit(2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	comp, err := core.Build(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("failed to wire processor", "error", err)
		os.Exit(1)
	}
	defer comp.Close()

	up := core.Upload{Filename: filepath.Base(path), Data: data}
	start := time.Now()

	if *reformat {
		res, err := comp.Processor.ProcessAndReformat(ctx, up, comp.Reformatter)
		if err != nil {
			logger.Error("reformat failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			os.Exit(1)
		}
		emit(map[string]any{
			"record":    res.Outcome.Record,
			"formatted": res.Formatted.Raw,
			"parsed":    res.Formatted.Parsed,
			"valid":     res.Formatted.Valid,
			"problems":  res.Formatted.Problems,
			"fixes":     res.Formatted.Fixes,
		})
		return
	}

	out, err := comp.Processor.Process(ctx, up)
	if err != nil {
		logger.Error("extraction rejected", "reason", common.RejectionMessage(err))
		os.Exit(1)
	}
	logger.Info("extraction OK",
		"method", out.Extraction.Method,
		"pages", out.Extraction.Pages,
		"preprocessed", out.Preprocessed,
		"warnings", out.Extraction.Warnings,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if *showText {
		fmt.Println(out.Extraction.Text)
		return
	}
	emit(out.Record)
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

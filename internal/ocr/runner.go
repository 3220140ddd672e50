package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
)

const maxLoggedStderr = 8 << 10

// Runner executes an external tool. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs host binaries (tesseract, pdfimages, gs).
type ExecRunner struct {
	Logger *slog.Logger
}

func NewExecRunner(logger *slog.Logger) ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return ExecRunner{Logger: logger}
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := requestLogger(ctx, r.Logger)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	switch {
	case err == nil:
		logger.Debug("exec.ok", "cmd", name, "args", args, "duration_ms", elapsed,
			"stdout_bytes", stdout.Len())
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		logger.Warn("exec.timeout", "cmd", name, "args", args, "duration_ms", elapsed)
		err = ctx.Err()
	default:
		logger.Error("exec.failed", "cmd", name, "args", args, "duration_ms", elapsed,
			"error", err, "stderr", truncate(stderr.String(), maxLoggedStderr))
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// requestLogger tags logger with the request and document the context carries.
func requestLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := common.RequestIDFromContext(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	if h := common.ContentHashFromContext(ctx); h != "" {
		logger = logger.With("content_hash", h)
	}
	return logger
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

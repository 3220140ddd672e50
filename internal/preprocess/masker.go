// Package preprocess masks header and footer bands of PDF pages before text extraction.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/ocr"
)

// ErrSameFile is returned when the output path would overwrite the input.
var ErrSameFile = errors.New("preprocess: output must differ from input")

type Config struct {
	Ghostscript string  // binary name or absolute path; if empty -> "gs"
	BandHeight  float64 // PDF points; constant for every page, default 50
}

// rect is an axis-aligned rectangle in PDF user space (origin bottom-left).
type rect struct {
	X0, Y0, X1, Y1 float64
}

// Masker paints opaque bands over the top and bottom of every page of a PDF copy.
type Masker struct {
	cfg    Config
	runner ocr.Runner
	logger *slog.Logger
}

func NewMasker(cfg Config, runner ocr.Runner, logger *slog.Logger) *Masker {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.NewExecRunner(logger)
	}
	if cfg.Ghostscript == "" {
		cfg.Ghostscript = "gs"
	}
	if cfg.BandHeight <= 0 {
		cfg.BandHeight = constants.DefaultMaskBand
	}
	return &Masker{cfg: cfg, runner: runner, logger: logger}
}

// Mask writes a masked copy of in to out. in is never modified.
func (m *Masker) Mask(ctx context.Context, in, out string) error {
	start := time.Now()
	if in == out {
		return ErrSameFile
	}
	st, err := os.Stat(in)
	if err != nil {
		return fmt.Errorf("preprocess: stat input: %w", err)
	}
	if st.Size() == 0 {
		return fmt.Errorf("preprocess: empty input %q", in)
	}

	_, errb, err := m.runner.Run(ctx, m.cfg.Ghostscript, m.args(in, out)...)
	if err != nil {
		_ = os.Remove(out)
		m.logger.Warn("preprocess.mask.failed", "in", in, "error", err, "stderr", strings.TrimSpace(string(errb)))
		return fmt.Errorf("preprocess: ghostscript: %w", err)
	}
	if ost, err := os.Stat(out); err != nil || ost.Size() == 0 {
		_ = os.Remove(out)
		return fmt.Errorf("preprocess: ghostscript produced no output")
	}

	m.logger.Debug("preprocess.mask.ok",
		"in", in, "out", out,
		"band", m.cfg.BandHeight,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (m *Masker) args(in, out string) []string {
	return []string{
		"-q", "-dNOPAUSE", "-dBATCH", "-dSAFER",
		"-sDEVICE=pdfwrite",
		"-o", out,
		"-c", EndPageProgram(m.cfg.BandHeight),
		"-f", in,
	}
}

// EndPageProgram returns the PostScript installed as the EndPage procedure.
// On every showpage it fills the rectangles bands computes for the current
// page size with white. The non-negative clamp happens here; the page-height
// clamp needs the page size and runs in PostScript.
func EndPageProgram(band float64) string {
	b := strconv.FormatFloat(clampBand(band, math.Inf(1)), 'f', -1, 64)
	return "<< /EndPage { exch pop 0 eq { " +
		"gsave initgraphics 1 setgray " +
		"currentpagedevice /PageSize get aload pop /ph exch def /pw exch def " +
		"/bh " + b + " def bh ph gt { /bh ph def } if " +
		"0 ph bh sub pw bh rectfill " + // header
		"0 0 pw bh rectfill " + // footer
		"grestore true } { false } ifelse } bind >> setpagedevice"
}

// bands is the geometry EndPageProgram paints on a w x h page. The height is
// fixed and does not scale with the page; it is only clamped to [0, h].
func bands(w, h, band float64) (header, footer rect) {
	band = clampBand(band, h)
	header = rect{X0: 0, Y0: h - band, X1: w, Y1: h}
	footer = rect{X0: 0, Y0: 0, X1: w, Y1: band}
	return header, footer
}

func clampBand(band, h float64) float64 {
	return math.Max(0, math.Min(band, h))
}

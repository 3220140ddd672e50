package ocr

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// PDFImages lists the raster images embedded in a PDF page with poppler's pdfimages.
type PDFImages struct {
	binary string
	runner Runner
	logger *slog.Logger
}

func NewPDFImages(binary string, runner Runner, logger *slog.Logger) *PDFImages {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	if binary == "" {
		binary = "pdfimages"
	}
	return &PDFImages{binary: binary, runner: runner, logger: logger}
}

// EmbeddedImages writes the images of page (1-based) into dir as PNG files and
// returns their paths in the order they appear on the page.
func (p *PDFImages) EmbeddedImages(ctx context.Context, pdfPath string, page int, dir string) ([]string, error) {
	if page < 1 {
		return nil, fmt.Errorf("pdfimages: invalid page %d", page)
	}
	prefix := filepath.Join(dir, fmt.Sprintf("p%04d", page))
	n := strconv.Itoa(page)

	// pdfimages -f N -l N -png in.pdf prefix  => prefix-000.png, prefix-001.png, ...
	_, errb, err := p.runner.Run(ctx, p.binary, "-f", n, "-l", n, "-png", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdfimages: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}

	matches, err := filepath.Glob(prefix + "-*")
	if err != nil {
		return nil, fmt.Errorf("pdfimages: glob: %w", err)
	}
	out := matches[:0]
	for _, m := range matches {
		if st, err := os.Stat(m); err == nil && !st.IsDir() && st.Size() > 0 {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return cmp.Or(cmp.Compare(imageSeq(a), imageSeq(b)), strings.Compare(a, b))
	})
	p.logger.Debug("pdfimages.page.ok", "page", page, "images", len(out))
	return out, nil
}

// imageSeq parses the sequence number pdfimages appends to the prefix
// ("p0001-1000.png" -> 1000). Padding stops at three digits, so names alone
// do not sort. Unparseable names sort last.
func imageSeq(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndexByte(base, '-')
	if i < 0 {
		return math.MaxInt
	}
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return math.MaxInt
	}
	return n
}

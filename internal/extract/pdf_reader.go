package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFTextReader reads native page text with ledongthuc/pdf.
type PDFTextReader struct {
	logger *slog.Logger
}

func NewPDFTextReader(logger *slog.Logger) *PDFTextReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTextReader{logger: logger}
}

func (r *PDFTextReader) NativeText(ctx context.Context, pdfPath string) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("pdf: decoder panic: %v", rec)
		}
	}()

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("pdf: read: %w", err)
	}
	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf: open: %w", err)
	}

	n := rd.NumPage()
	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		pages[i-1] = r.pageText(rd, i)
	}
	return pages, nil
}

func (r *PDFTextReader) pageText(rd *pdf.Reader, i int) (txt string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("pdf.page.decode_panic", "page", i, "panic", fmt.Sprint(rec))
			txt = ""
		}
	}()
	p := rd.Page(i)
	if p.V.IsNull() {
		return ""
	}
	s, err := p.GetPlainText(nil)
	if err != nil {
		r.logger.Warn("pdf.page.text_failed", "page", i, "error", err)
		return ""
	}
	return s
}

package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/ocr"
)

type Config struct {
	Tesseract  ocr.TesseractConfig
	Pdfimages  string        // binary name or absolute path; if empty -> "pdfimages"
	OCRTimeout time.Duration // per image, default 60s
	WorkDir    string        // scratch space for extracted page images
}

// Extractor picks the TextExtractor for a document format.
type Extractor struct {
	byFormat map[constants.Format]TextExtractor
	logger   *slog.Logger
}

// NewExtractor wires the default PDF, DOCX, and image extractors over the CLI tools.
func NewExtractor(cfg Config, runner ocr.Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.NewExecRunner(logger)
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 60 * time.Second
	}
	tess := ocr.NewTesseract(cfg.Tesseract, runner, logger)
	images := ocr.NewPDFImages(cfg.Pdfimages, runner, logger)
	return NewExtractorWith(map[constants.Format]TextExtractor{
		constants.PDF:   NewPDFExtractor(NewPDFTextReader(logger), images, tess, cfg.OCRTimeout, cfg.WorkDir, logger),
		constants.DOCX:  NewDocxExtractor(logger),
		constants.IMAGE: NewImageExtractor(tess, cfg.OCRTimeout, tess.Lang(), logger),
	}, logger)
}

// NewExtractorWith uses caller-supplied extractors, e.g. fakes in tests.
func NewExtractorWith(byFormat map[constants.Format]TextExtractor, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{byFormat: byFormat, logger: logger}
}

// Extract runs the extractor registered for format. It never fails: unknown
// formats and panics degrade to an empty result with a warning.
func (e *Extractor) Extract(ctx context.Context, format constants.Format, path string) (res TextExtractionResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("extract.panic", "format", format, "path", path, "panic", fmt.Sprint(rec))
			res = TextExtractionResult{
				SourceType: format,
				Method:     constants.MethodNone,
				Warnings:   []string{fmt.Sprintf("extractor panic: %v", rec)},
			}
		}
		res.Duration = time.Since(start)
	}()

	te, ok := e.byFormat[format]
	if !ok || te == nil {
		e.logger.Error("extract.unsupported_format", "format", format, "path", path)
		return TextExtractionResult{SourceType: format, Method: constants.MethodNone, Warnings: []string{"unsupported format " + string(format)}}
	}
	return te.Extract(ctx, path)
}

package extract

import (
	"context"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

// TextExtractor is Stage 1: file -> text. It never fails; problems surface as
// warnings and empty text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) TextExtractionResult
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.Format
	Method     constants.Method
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32 // heuristic, 0..1
}

// NativeTextExtractor returns the selectable text of each PDF page, in page order.
// A page whose text cannot be decoded is returned as "".
type NativeTextExtractor interface {
	NativeText(ctx context.Context, pdfPath string) ([]string, error)
}

// EmbeddedImageExtractor writes the raster images of one PDF page (1-based) into dir.
type EmbeddedImageExtractor interface {
	EmbeddedImages(ctx context.Context, pdfPath string, page int, dir string) ([]string, error)
}

// ImageRecognizer runs OCR on a single image file.
type ImageRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

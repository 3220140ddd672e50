package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

// ImageExtractor runs OCR over the whole image and returns the text as recognized.
type ImageExtractor struct {
	recognizer ImageRecognizer
	ocrTimeout time.Duration
	lang       string
	logger     *slog.Logger
}

func NewImageExtractor(recognizer ImageRecognizer, ocrTimeout time.Duration, lang string, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageExtractor{recognizer: recognizer, ocrTimeout: ocrTimeout, lang: lang, logger: logger}
}

func (e *ImageExtractor) Extract(ctx context.Context, path string) TextExtractionResult {
	res := TextExtractionResult{SourceType: constants.IMAGE, Method: constants.MethodNone, Pages: 1, Language: e.lang}

	txt, err := recognizeWithTimeout(ctx, e.recognizer, path, e.ocrTimeout)
	if err != nil {
		e.logger.Error("extract.image.ocr_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	res.Text = txt
	res.Method = constants.MethodImageOCR
	res.Confidence = heuristicConfidence(txt)
	e.logger.Debug("extract.image.ok", "path", path, "text_len", len(txt), "confidence", res.Confidence)
	return res
}

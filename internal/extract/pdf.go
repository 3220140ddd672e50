package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
)

// PDFExtractor appends each page's native text, falling back to OCR of the
// page's embedded images when a page has none.
type PDFExtractor struct {
	native     NativeTextExtractor
	images     EmbeddedImageExtractor
	recognizer ImageRecognizer
	ocrTimeout time.Duration
	workDir    string
	logger     *slog.Logger
}

func NewPDFExtractor(native NativeTextExtractor, images EmbeddedImageExtractor, recognizer ImageRecognizer, ocrTimeout time.Duration, workDir string, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{
		native:     native,
		images:     images,
		recognizer: recognizer,
		ocrTimeout: ocrTimeout,
		workDir:    workDir,
		logger:     logger,
	}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) TextExtractionResult {
	res := TextExtractionResult{SourceType: constants.PDF, Method: constants.MethodNone}

	pages, err := e.native.NativeText(ctx, path)
	if err != nil {
		e.logger.Error("extract.pdf.native_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "native text: "+err.Error())
		return res
	}
	res.Pages = len(pages)

	var b strings.Builder
	var nativeN, ocrN int
	scratch := ""
	cleanup := func() {}
	defer func() { cleanup() }()

	for i, txt := range pages {
		page := i + 1
		if strings.TrimSpace(txt) != "" {
			appendChunk(&b, txt)
			nativeN++
			continue
		}
		if e.images == nil || e.recognizer == nil {
			continue
		}
		if scratch == "" {
			dir, err := os.MkdirTemp(e.workDir, "resume-pdfimg-*")
			if err != nil {
				res.Warnings = append(res.Warnings, "scratch dir: "+err.Error())
				break
			}
			scratch = dir
			cleanup = func() { _ = os.RemoveAll(dir) }
		}
		ocrText, warns := e.ocrPage(ctx, path, page, scratch)
		res.Warnings = append(res.Warnings, warns...)
		if ocrText != "" {
			appendChunk(&b, ocrText)
			ocrN++
		}
	}

	res.Text = b.String()
	res.Method = pdfMethod(nativeN, ocrN)
	res.Confidence = heuristicConfidence(res.Text)
	e.logger.Debug("extract.pdf.ok",
		"path", path,
		"pages", res.Pages,
		"native_pages", nativeN,
		"ocr_pages", ocrN,
		"text_len", len(res.Text),
	)
	return res
}

// ocrPage recognizes every embedded image of a page, in image order.
func (e *PDFExtractor) ocrPage(ctx context.Context, path string, page int, dir string) (string, []string) {
	var warns []string
	imgs, err := e.images.EmbeddedImages(ctx, path, page, dir)
	if err != nil {
		e.logger.Warn("extract.pdf.images_failed", "page", page, "error", err)
		return "", []string{fmt.Sprintf("page %d images: %v", page, err)}
	}
	var b strings.Builder
	for _, img := range imgs {
		txt, err := recognizeWithTimeout(ctx, e.recognizer, img, e.ocrTimeout)
		if err != nil {
			e.logger.Warn("extract.pdf.ocr_failed", "page", page, "image", img, "error", err)
			warns = append(warns, fmt.Sprintf("page %d ocr: %v", page, err))
			continue
		}
		b.WriteString(txt)
	}
	return b.String(), warns
}

// recognizeWithTimeout bounds a single OCR call; a timeout is reported as an error
// and callers treat it as empty text.
func recognizeWithTimeout(ctx context.Context, r ImageRecognizer, img string, d time.Duration) (txt string, err error) {
	ctx, cancel := common.WithTimeout(ctx, d)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			txt, err = "", fmt.Errorf("ocr panic: %v", rec)
		}
	}()
	return r.Recognize(ctx, img)
}

func appendChunk(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(s)
}

func pdfMethod(nativeN, ocrN int) constants.Method {
	switch {
	case nativeN > 0 && ocrN > 0:
		return constants.MethodPDFMixed
	case nativeN > 0:
		return constants.MethodPDFText
	case ocrN > 0:
		return constants.MethodPDFOCR
	default:
		return constants.MethodNone
	}
}

package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

type fakeNative struct {
	pages []string
	err   error
}

func (f fakeNative) NativeText(context.Context, string) ([]string, error) { return f.pages, f.err }

// fakeImages returns one image path per page, or nothing for pages listed in empty.
type fakeImages struct {
	requested []int
	perPage   int
	err       error
}

func (f *fakeImages) EmbeddedImages(_ context.Context, _ string, page int, dir string) ([]string, error) {
	f.requested = append(f.requested, page)
	if f.err != nil {
		return nil, f.err
	}
	n := f.perPage
	if n == 0 {
		n = 1
	}
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, filepath.Join(dir, fmt.Sprintf("p%04d-%03d.png", page, i)))
	}
	return out, nil
}

type fakeRecognizer struct {
	texts map[string]string
	block bool
	err   error
}

func (f fakeRecognizer) Recognize(ctx context.Context, img string) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.texts[filepath.Base(img)], nil
}

func TestPDFExtractor(t *testing.T) {
	ocr := fakeRecognizer{texts: map[string]string{
		"p0002-000.png": "Scanned page two\n",
		"p0002-001.png": "more",
	}}

	tests := []struct {
		name      string
		pages     []string
		perPage   int
		text      string
		method    constants.Method
		requested []int
	}{
		{
			name:   "native text on every page",
			pages:  []string{"Jane Doe", "Skills: Go"},
			text:   "Jane Doe\nSkills: Go",
			method: constants.MethodPDFText,
		},
		{
			name:      "ocr fallback only for the empty page",
			pages:     []string{"Jane Doe\n", "  ", "Page three"},
			perPage:   2,
			text:      "Jane Doe\nScanned page two\nmore\nPage three",
			method:    constants.MethodPDFMixed,
			requested: []int{2},
		},
		{
			name:      "scanned document",
			pages:     []string{"", ""},
			perPage:   1,
			text:      "Scanned page two\n",
			method:    constants.MethodPDFOCR,
			requested: []int{1, 2},
		},
		{
			name:   "zero pages",
			pages:  []string{},
			text:   "",
			method: constants.MethodNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := &fakeImages{perPage: tt.perPage}
			e := NewPDFExtractor(fakeNative{pages: tt.pages}, images, ocr, time.Second, t.TempDir(), nil)
			res := e.Extract(context.Background(), "cv.pdf")
			assert.Equal(t, tt.text, res.Text)
			assert.Equal(t, tt.method, res.Method)
			assert.Equal(t, len(tt.pages), res.Pages)
			assert.Equal(t, constants.PDF, res.SourceType)
			assert.Equal(t, tt.requested, images.requested)
		})
	}
}

func TestPDFExtractorDegrades(t *testing.T) {
	ctx := context.Background()

	t.Run("native reader error", func(t *testing.T) {
		res := NewPDFExtractor(fakeNative{err: errors.New("bad xref")}, &fakeImages{}, fakeRecognizer{}, time.Second, "", nil).Extract(ctx, "cv.pdf")
		assert.Empty(t, res.Text)
		assert.Equal(t, constants.MethodNone, res.Method)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "bad xref")
	})

	t.Run("image listing error keeps native pages", func(t *testing.T) {
		res := NewPDFExtractor(fakeNative{pages: []string{"Jane", ""}}, &fakeImages{err: errors.New("no pdfimages")}, fakeRecognizer{}, time.Second, t.TempDir(), nil).Extract(ctx, "cv.pdf")
		assert.Equal(t, "Jane", res.Text)
		assert.Equal(t, constants.MethodPDFText, res.Method)
		assert.NotEmpty(t, res.Warnings)
	})

	t.Run("ocr timeout is empty text", func(t *testing.T) {
		res := NewPDFExtractor(fakeNative{pages: []string{""}}, &fakeImages{}, fakeRecognizer{block: true}, 20*time.Millisecond, t.TempDir(), nil).Extract(ctx, "cv.pdf")
		assert.Empty(t, res.Text)
		assert.Equal(t, constants.MethodNone, res.Method)
		assert.NotEmpty(t, res.Warnings)
	})

	t.Run("no ocr collaborators", func(t *testing.T) {
		res := NewPDFExtractor(fakeNative{pages: []string{"", "Text"}}, nil, nil, time.Second, "", nil).Extract(ctx, "cv.pdf")
		assert.Equal(t, "Text", res.Text)
	})
}

func TestPDFExtractorRemovesScratch(t *testing.T) {
	work := t.TempDir()
	e := NewPDFExtractor(fakeNative{pages: []string{""}}, &fakeImages{}, fakeRecognizer{}, time.Second, work, nil)
	e.Extract(context.Background(), "cv.pdf")

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImageExtractor(t *testing.T) {
	ctx := context.Background()

	res := NewImageExtractor(fakeRecognizer{texts: map[string]string{"scan.png": "Jane Doe\n\n"}}, time.Second, "eng", nil).Extract(ctx, "/tmp/scan.png")
	assert.Equal(t, "Jane Doe\n\n", res.Text)
	assert.Equal(t, constants.MethodImageOCR, res.Method)
	assert.Equal(t, "eng", res.Language)
	assert.Equal(t, 1, res.Pages)

	res = NewImageExtractor(fakeRecognizer{block: true}, 20*time.Millisecond, "eng", nil).Extract(ctx, "scan.png")
	assert.Empty(t, res.Text)
	assert.Equal(t, constants.MethodNone, res.Method)
	assert.NotEmpty(t, res.Warnings)

	res = NewImageExtractor(fakeRecognizer{err: errors.New("tesseract missing")}, time.Second, "eng", nil).Extract(ctx, "scan.png")
	assert.Empty(t, res.Text)
	assert.Contains(t, res.Warnings[0], "tesseract missing")
}

type panicky struct{}

func (panicky) Extract(context.Context, string) TextExtractionResult { panic("boom") }

type constant string

func (c constant) Extract(context.Context, string) TextExtractionResult {
	return TextExtractionResult{Text: string(c), Method: constants.MethodDOCX}
}

func TestExtractorDispatch(t *testing.T) {
	e := NewExtractorWith(map[constants.Format]TextExtractor{
		constants.DOCX:  constant("hello"),
		constants.IMAGE: panicky{},
	}, nil)
	ctx := context.Background()

	res := e.Extract(ctx, constants.DOCX, "a.docx")
	assert.Equal(t, "hello", res.Text)

	res = e.Extract(ctx, constants.IMAGE, "a.png")
	assert.Empty(t, res.Text)
	assert.Equal(t, constants.MethodNone, res.Method)
	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Contains(t, res.Warnings[0], "boom")

	res = e.Extract(ctx, constants.PDF, "a.pdf")
	assert.Empty(t, res.Text)
	assert.Contains(t, res.Warnings[0], "unsupported format")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"", ""},
		{"a\r\nb\rc", "a\nb\nc"},
		{"Jane\t\tDoe   Engineer  ", "Jane Doe Engineer"},
		{"a\n\n\n\n\nb", "a\n\nb"},
		{"Header\n-----\nBody", "Header\n\nBody"},
		{"p1\fp2", "p1\np2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.in), "%q", tt.in)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	assert.Zero(t, heuristicConfidence("  "))
	assert.InDelta(t, 0.2, heuristicConfidence("hello"), 1e-6)
	assert.InDelta(t, 0.8, heuristicConfidence("jane@example.com 555-123-4567\nEducation"), 1e-6)
}

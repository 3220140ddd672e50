package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/extract"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/fields"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/notify"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/storage"
)

const resumeText = "Jane Doe\nemail: jane@example.com\nSkills: Python, SQL\nB.Tech in CS, ABC University\n"

type fakeText struct {
	mu      sync.Mutex
	text    string
	calls   int
	paths   []string
	formats []constants.Format
	seen    [][]byte
}

func (f *fakeText) Extract(_ context.Context, format constants.Format, path string) extract.TextExtractionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.paths = append(f.paths, path)
	f.formats = append(f.formats, format)
	b, _ := os.ReadFile(path)
	f.seen = append(f.seen, b)
	return extract.TextExtractionResult{Text: f.text, Pages: 1, SourceType: format, Method: constants.MethodPDFText}
}

type fakeMasker struct {
	err error
}

func (m fakeMasker) Mask(_ context.Context, in, out string) error {
	if m.err != nil {
		return m.err
	}
	b, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, append([]byte("masked:"), b...), 0o600)
}

type recordingPublisher struct {
	events []notify.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev notify.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func newTestProcessor(text *fakeText, opts ...Option) *Processor {
	return NewProcessor(nil, text, fields.NewExtractor(fields.Config{}, nil, nil), opts...)
}

func TestProcessRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     error
		message  string
	}{
		{"empty filename", "", common.ErrEmptyFilename, "No selected file"},
		{"text file", "resume.txt", common.ErrUnsupportedFormat, "Invalid file"},
		{"no extension", "resume", common.ErrUnsupportedFormat, "Invalid file"},
		{"legacy doc", "resume.doc", common.ErrUnsupportedFormat, "Invalid file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := &fakeText{}
			p := newTestProcessor(text)

			out, err := p.Process(context.Background(), Upload{Filename: tt.filename, Data: []byte("x")})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, common.IsClientError(err))
			assert.Equal(t, tt.message, common.RejectionMessage(err))

			var ae *common.AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, common.CodeInvalidInput, ae.Code)

			assert.Equal(t, []constants.JobStatus{constants.JobStatusReceived, constants.JobStatusRejected}, out.States)
			assert.Zero(t, text.calls)
		})
	}
}

func TestValidateUploadCaseInsensitive(t *testing.T) {
	for _, name := range []string{"CV.PDF", "cv.Docx", "scan.JPG", "scan.jpeg", "scan.Png"} {
		_, format, err := ValidateUpload(name)
		assert.NoError(t, err, name)
		assert.NotEmpty(t, format, name)
	}
}

func TestProcessPDFUsesMaskedCopy(t *testing.T) {
	text := &fakeText{text: resumeText}
	p := newTestProcessor(text, WithPreprocessor(fakeMasker{}), WithWorkDir(t.TempDir()))

	out, err := p.Process(context.Background(), Upload{Filename: "cv.pdf", Data: []byte("%PDF-1.4 body")})
	require.NoError(t, err)

	assert.True(t, out.Preprocessed)
	require.Len(t, text.paths, 1)
	assert.Equal(t, "preprocessed.pdf", filepath.Base(text.paths[0]))
	assert.Equal(t, "masked:%PDF-1.4 body", string(text.seen[0]))
	assert.Equal(t, []constants.JobStatus{
		constants.JobStatusReceived,
		constants.JobStatusFormatDetected,
		constants.JobStatusTextExtracted,
		constants.JobStatusFieldsExtracted,
		constants.JobStatusDone,
	}, out.States)
	require.NotNil(t, out.Record.Email)
	assert.Equal(t, "jane@example.com", *out.Record.Email)
	assert.Equal(t, "application/pdf", out.DetectedMIME)
}

func TestProcessPreprocessFailureFallsBackToOriginal(t *testing.T) {
	text := &fakeText{text: resumeText}
	p := newTestProcessor(text, WithPreprocessor(fakeMasker{err: errors.New("gs: exit status 1")}), WithWorkDir(t.TempDir()))

	out, err := p.Process(context.Background(), Upload{Filename: "cv.pdf", Data: []byte("%PDF-1.4 body")})
	require.NoError(t, err)

	assert.False(t, out.Preprocessed)
	assert.Equal(t, "original.pdf", filepath.Base(text.paths[0]))
	assert.Equal(t, "%PDF-1.4 body", string(text.seen[0]))
	assert.Contains(t, out.States, constants.JobStatusPreprocessFailed)
	assert.Equal(t, constants.JobStatusDone, out.States[len(out.States)-1])
}

func TestProcessSkipsPreprocessForNonPDF(t *testing.T) {
	text := &fakeText{text: resumeText}
	p := newTestProcessor(text, WithPreprocessor(fakeMasker{}), WithWorkDir(t.TempDir()))

	out, err := p.Process(context.Background(), Upload{Filename: "cv.docx", Data: []byte("PK\x03\x04")})
	require.NoError(t, err)
	assert.False(t, out.Preprocessed)
	assert.Equal(t, constants.DOCX, text.formats[0])
	assert.Equal(t, "original.docx", filepath.Base(text.paths[0]))

	out, err = p.Process(context.Background(), Upload{Filename: "scan.JPEG", Data: []byte{0xff, 0xd8, 0xff}})
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, out.Format)
	assert.Equal(t, "original.jpeg", filepath.Base(text.paths[1]))
}

func TestProcessCleansWorkspace(t *testing.T) {
	work := t.TempDir()
	p := newTestProcessor(&fakeText{text: resumeText}, WithWorkDir(work))

	_, err := p.Process(context.Background(), Upload{Filename: "cv.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessEmptyTextYieldsEmptyRecord(t *testing.T) {
	p := newTestProcessor(&fakeText{}, WithWorkDir(t.TempDir()))

	out, err := p.Process(context.Background(), Upload{Filename: "blank.png", Data: nil})
	require.NoError(t, err)
	assert.Equal(t, fields.EmptyRecord(), out.Record)
	assert.Equal(t, constants.JobStatusDone, out.States[len(out.States)-1])
}

func TestProcessIsIdempotent(t *testing.T) {
	p := newTestProcessor(&fakeText{text: resumeText}, WithWorkDir(t.TempDir()))
	up := Upload{Filename: "cv.pdf", Data: []byte("%PDF-1.4")}

	first, err := p.Process(context.Background(), up)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), up)
	require.NoError(t, err)

	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.NotEqual(t, first.JobID, second.JobID)
}

func TestProcessReusesStoredRecord(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: repository.MemoryDSN}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	jobs := repository.NewExtractionJobRepository(db, nil)

	text := &fakeText{text: resumeText}
	p := newTestProcessor(text, WithWorkDir(t.TempDir()), WithJobRepository(jobs), WithReuseByHash(true))
	up := Upload{Filename: "cv.pdf", Data: []byte("%PDF-1.4")}

	first, err := p.Process(ctx, up)
	require.NoError(t, err)
	assert.False(t, first.Reused)

	stored, err := jobs.Get(ctx, first.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusDone), stored.Status)

	second, err := p.Process(ctx, up)
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, 1, text.calls)
}

func TestProcessArchivesAndPublishes(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)
	pub := &recordingPublisher{}
	p := newTestProcessor(&fakeText{text: resumeText}, WithWorkDir(t.TempDir()), WithArchive(store), WithPublisher(pub))

	out, err := p.Process(context.Background(), Upload{Filename: "cv.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ArchiveURI)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, out.JobID.String(), ev.JobID)
	assert.Equal(t, "DONE", ev.Status)
	assert.Contains(t, string(ev.Record), `"email":"jane@example.com"`)
}

func TestProcessCancelledContextSkipsPublish(t *testing.T) {
	pub := &recordingPublisher{}
	p := newTestProcessor(&fakeText{text: resumeText}, WithWorkDir(t.TempDir()), WithPublisher(pub))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := p.Process(ctx, Upload{Filename: "cv.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Empty(t, pub.events)
	assert.Equal(t, constants.JobStatusDone, out.States[len(out.States)-1])
}

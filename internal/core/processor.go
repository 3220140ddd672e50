package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/entity"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/extract"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/fields"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/notify"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/storage"
)

// TextExtractor turns a stored document of a known format into text.
type TextExtractor interface {
	Extract(ctx context.Context, format constants.Format, path string) extract.TextExtractionResult
}

// PagePreprocessor writes a header/footer-masked copy of a PDF.
type PagePreprocessor interface {
	Mask(ctx context.Context, in, out string) error
}

// FieldExtractor builds a ResumeRecord from plain text.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) fields.ResumeRecord
}

// Upload is one client document: the declared filename and its raw bytes.
type Upload struct {
	Filename string
	Data     []byte
}

// Outcome is everything the processor learned about one accepted upload.
type Outcome struct {
	JobID        uuid.UUID
	Filename     string
	Format       constants.Format
	ContentHash  string
	DetectedMIME string
	ArchiveURI   string
	Preprocessed bool
	Reused       bool
	Extraction   extract.TextExtractionResult
	Record       fields.ResumeRecord
	States       []constants.JobStatus
}

// Processor validates an upload, extracts its text and assembles the record.
type Processor struct {
	logger       *slog.Logger
	text         TextExtractor
	fields       FieldExtractor
	preprocessor PagePreprocessor
	jobs         repository.ExtractionJobRepository
	archive      storage.Store
	publisher    notify.Publisher
	workDir      string
	reuseByHash  bool
	now          func() time.Time
}

type Option func(*Processor)

func WithPreprocessor(pp PagePreprocessor) Option {
	return func(p *Processor) { p.preprocessor = pp }
}

func WithJobRepository(r repository.ExtractionJobRepository) Option {
	return func(p *Processor) { p.jobs = r }
}

func WithArchive(s storage.Store) Option {
	return func(p *Processor) { p.archive = s }
}

func WithPublisher(pub notify.Publisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithWorkDir sets the parent of per-request scratch directories.
func WithWorkDir(dir string) Option {
	return func(p *Processor) { p.workDir = dir }
}

// WithReuseByHash returns the stored record for byte-identical uploads. Needs a job repository.
func WithReuseByHash(on bool) Option {
	return func(p *Processor) { p.reuseByHash = on }
}

func NewProcessor(logger *slog.Logger, text TextExtractor, fieldExtractor FieldExtractor, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:    logger,
		text:      text,
		fields:    fieldExtractor,
		publisher: notify.NopPublisher{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ValidateUpload checks the filename and returns the normalized extension and format.
func ValidateUpload(filename string) (string, constants.Format, error) {
	if filename == "" {
		return "", "", common.Reject(common.ErrEmptyFilename, "No selected file")
	}
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if !constants.IsAllowedExt(ext) {
		return "", "", common.Reject(common.ErrUnsupportedFormat, "Invalid file")
	}
	return ext, constants.MapExtToFormat(ext), nil
}

// Process runs one upload to completion. The only errors returned are
// client-input rejections; every later failure degrades the Outcome instead.
func (p *Processor) Process(ctx context.Context, up Upload) (Outcome, error) {
	out := Outcome{JobID: uuid.New(), Filename: up.Filename}
	out.States = append(out.States, constants.JobStatusReceived)

	ext, format, err := ValidateUpload(up.Filename)
	if err != nil {
		out.States = append(out.States, constants.JobStatusRejected)
		p.logger.Warn("processor.upload.rejected", "filename", up.Filename, "reason", common.RejectionMessage(err))
		return out, err
	}
	out.Format = format
	out.States = append(out.States, constants.JobStatusFormatDetected)

	sum := sha256.Sum256(up.Data)
	out.ContentHash = hex.EncodeToString(sum[:])
	ctx = common.WithContentHash(ctx, out.ContentHash)
	out.DetectedMIME = p.sniff(up.Data, ext, format)

	if rec, ok := p.reuse(ctx, out.ContentHash); ok {
		out.Record = rec
		out.Reused = true
		out.States = append(out.States, constants.JobStatusDone)
		p.logger.Info("processor.extract.reused", "filename", up.Filename, "content_hash", out.ContentHash)
		return out, nil
	}

	out.ArchiveURI = p.archiveUpload(ctx, out.JobID, ext, up.Data)
	p.startJob(ctx, &out)

	start := time.Now()
	p.extractText(ctx, &out, ext, up.Data)
	out.States = append(out.States, constants.JobStatusTextExtracted)

	out.Record = p.fields.Extract(ctx, out.Extraction.Text)
	out.States = append(out.States, constants.JobStatusFieldsExtracted)

	if err := ctx.Err(); err != nil {
		p.failJob(ctx, out.JobID, err)
	} else {
		p.finishJob(ctx, &out)
		p.publish(ctx, &out)
	}
	out.States = append(out.States, constants.JobStatusDone)

	p.logger.Info("processor.extract.ok",
		"job_id", out.JobID,
		"filename", up.Filename,
		"format", format,
		"method", out.Extraction.Method,
		"pages", out.Extraction.Pages,
		"text_len", len(out.Extraction.Text),
		"preprocessed", out.Preprocessed,
		"fields_found", out.Record.FoundCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// extractText materializes the upload in a scratch directory, masks PDFs, and runs text extraction.
func (p *Processor) extractText(ctx context.Context, out *Outcome, ext string, data []byte) {
	dir, err := os.MkdirTemp(p.workDir, "resume-*")
	if err != nil {
		p.degrade(out, "workspace unavailable", err)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("processor.workspace.cleanup_failed", "dir", dir, "error", err)
		}
	}()

	src := filepath.Join(dir, "original."+ext)
	if err := os.WriteFile(src, data, 0o600); err != nil {
		p.degrade(out, "write upload failed", err)
		return
	}

	if out.Format == constants.PDF && p.preprocessor != nil {
		masked := filepath.Join(dir, "preprocessed.pdf")
		if err := p.preprocessor.Mask(ctx, src, masked); err != nil {
			out.States = append(out.States, constants.JobStatusPreprocessFailed)
			p.logger.Warn("processor.preprocess.failed", "job_id", out.JobID, "error", err)
		} else {
			src = masked
			out.Preprocessed = true
		}
	}

	out.Extraction = p.text.Extract(ctx, out.Format, src)
}

func (p *Processor) degrade(out *Outcome, msg string, err error) {
	p.logger.Error("processor.extract.degraded", "job_id", out.JobID, "reason", msg, "error", err)
	out.Extraction = extract.TextExtractionResult{
		SourceType: out.Format,
		Method:     constants.MethodNone,
		Warnings:   []string{fmt.Sprintf("%s: %v", msg, err)},
	}
}

// sniff reports the detected MIME type and logs when it disagrees with the extension.
func (p *Processor) sniff(data []byte, ext string, format constants.Format) string {
	mt := mimetype.Detect(data)
	detected := mt.String()
	if len(data) > 0 && !matchesFormat(mt, format) {
		p.logger.Warn("processor.sniff.mismatch", "ext", ext, "detected", detected)
	}
	return detected
}

func matchesFormat(mt *mimetype.MIME, format constants.Format) bool {
	switch format {
	case constants.PDF:
		return mt.Is("application/pdf")
	case constants.DOCX:
		// docx sniffs as itself, or as a generic zip when [Content_Types].xml is not first
		return mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") || mt.Is("application/zip")
	case constants.IMAGE:
		return strings.HasPrefix(mt.String(), "image/")
	}
	return false
}

func (p *Processor) reuse(ctx context.Context, hash string) (fields.ResumeRecord, bool) {
	if !p.reuseByHash || p.jobs == nil {
		return fields.ResumeRecord{}, false
	}
	job, err := p.jobs.FindDoneByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			p.logger.Warn("processor.reuse.lookup_failed", "content_hash", hash, "error", err)
		}
		return fields.ResumeRecord{}, false
	}
	rec := fields.EmptyRecord()
	if err := json.Unmarshal(job.RecordJSON, &rec); err != nil {
		p.logger.Warn("processor.reuse.decode_failed", "job_id", job.ID, "error", err)
		return fields.ResumeRecord{}, false
	}
	return rec, true
}

func (p *Processor) archiveUpload(ctx context.Context, jobID uuid.UUID, ext string, data []byte) string {
	if p.archive == nil {
		return ""
	}
	key := storage.ObjectKey(jobID, ext, p.now())
	uri, err := p.archive.Save(ctx, key, data, constants.ContentType(ext))
	if err != nil {
		p.logger.Warn("processor.archive.failed", "job_id", jobID, "key", key, "error", err)
		return ""
	}
	return uri
}

func (p *Processor) startJob(ctx context.Context, out *Outcome) {
	if p.jobs == nil {
		return
	}
	job := &entity.ExtractionJob{
		ID:          out.JobID,
		Filename:    out.Filename,
		ContentHash: out.ContentHash,
		Format:      string(out.Format),
		Status:      string(constants.JobStatusFormatDetected),
	}
	if out.ArchiveURI != "" {
		job.ArchiveURI = &out.ArchiveURI
	}
	if err := p.jobs.Start(ctx, job); err != nil {
		p.logger.Warn("processor.job.start_failed", "job_id", out.JobID, "error", err)
	}
}

func (p *Processor) finishJob(ctx context.Context, out *Outcome) {
	if p.jobs == nil {
		return
	}
	record, err := json.Marshal(out.Record)
	if err != nil {
		p.logger.Warn("processor.job.encode_failed", "job_id", out.JobID, "error", err)
		return
	}
	err = p.jobs.Finish(ctx, out.JobID, entity.JobResult{
		Method:       string(out.Extraction.Method),
		Pages:        out.Extraction.Pages,
		TextLen:      len(out.Extraction.Text),
		Preprocessed: out.Preprocessed,
		Record:       record,
	})
	if err != nil {
		p.logger.Warn("processor.job.finish_failed", "job_id", out.JobID, "error", err)
	}
}

func (p *Processor) failJob(ctx context.Context, id uuid.UUID, cause error) {
	p.logger.Warn("processor.extract.interrupted", "job_id", id, "error", cause)
	if p.jobs == nil {
		return
	}
	// the request context is already done
	ctx = context.WithoutCancel(ctx)
	if err := p.jobs.FinishFailure(ctx, id, cause.Error()); err != nil {
		p.logger.Warn("processor.job.finish_failed", "job_id", id, "error", err)
	}
}

func (p *Processor) publish(ctx context.Context, out *Outcome) {
	record, err := json.Marshal(out.Record)
	if err != nil {
		return
	}
	ev := notify.Event{
		JobID:        out.JobID.String(),
		Filename:     out.Filename,
		ContentHash:  out.ContentHash,
		Format:       string(out.Format),
		Method:       string(out.Extraction.Method),
		Status:       string(constants.JobStatusDone),
		Preprocessed: out.Preprocessed,
		Record:       record,
		Timestamp:    p.now().UTC(),
	}
	if err := p.publisher.Publish(ctx, ev); err != nil {
		p.logger.Warn("processor.publish.failed", "job_id", out.JobID, "error", err)
	}
}

package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/core"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm"
)

// formField is the multipart field carrying the document.
const formField = "file"

// Processor is the part of core.Processor the HTTP layer drives.
type Processor interface {
	Process(ctx context.Context, up core.Upload) (core.Outcome, error)
	ProcessAndReformat(ctx context.Context, up core.Upload, r llm.Reformatter) (core.ReformatOutcome, error)
}

// ResumeHandler serves the upload endpoints.
type ResumeHandler struct {
	proc        Processor
	reformatter llm.Reformatter
	maxBytes    int64
	logger      *slog.Logger
}

// NewResumeHandler wires the handler. A nil reformatter makes POST /reformat answer 503.
func NewResumeHandler(proc Processor, reformatter llm.Reformatter, maxBytes int64, logger *slog.Logger) *ResumeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	return &ResumeHandler{proc: proc, reformatter: reformatter, maxBytes: maxBytes, logger: logger}
}

// UploadAndProcess handles POST /upload_and_process and answers with the ResumeRecord.
func (h *ResumeHandler) UploadAndProcess(c *fiber.Ctx) error {
	up, err := h.readUpload(c)
	if err != nil {
		return h.reject(c, err)
	}
	out, err := h.proc.Process(c.UserContext(), up)
	if err != nil {
		return h.reject(c, err)
	}
	return JSON(c, fiber.StatusOK, out.Record)
}

// Reformat handles POST /reformat: the record plus the reformatter's templated reply.
func (h *ResumeHandler) Reformat(c *fiber.Ctx) error {
	if h.reformatter == nil {
		return Error(c, fiber.StatusServiceUnavailable, "reformatter not configured")
	}
	up, err := h.readUpload(c)
	if err != nil {
		return h.reject(c, err)
	}
	res, err := h.proc.ProcessAndReformat(c.UserContext(), up, h.reformatter)
	if err != nil {
		return h.reject(c, err)
	}
	return JSON(c, fiber.StatusOK, fiber.Map{
		"job_id":    res.Outcome.JobID,
		"record":    res.Outcome.Record,
		"formatted": res.Formatted.Raw,
		"parsed":    res.Formatted.Parsed,
		"valid":     res.Formatted.Valid,
		"problems":  res.Formatted.Problems,
		"fixes":     res.Formatted.Fixes,
	})
}

func (h *ResumeHandler) reject(c *fiber.Ctx, err error) error {
	status, msg := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("http.upload.failed", "request_id", requestID(c), "status", status, "error", err)
	} else {
		h.logger.Warn("http.upload.rejected", "request_id", requestID(c), "status", status, "reason", msg)
	}
	return Error(c, status, msg)
}

// readUpload pulls the "file" part out of the multipart body. A part sent
// with an empty filename arrives as a plain form value.
func (h *ResumeHandler) readUpload(c *fiber.Ctx) (core.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return core.Upload{}, common.Reject(common.ErrMissingFile, "No file part")
	}
	files := form.File[formField]
	if len(files) == 0 {
		if _, ok := form.Value[formField]; ok {
			return core.Upload{}, common.Reject(common.ErrEmptyFilename, "No selected file")
		}
		return core.Upload{}, common.Reject(common.ErrMissingFile, "No file part")
	}
	fh := files[0]
	if strings.TrimSpace(fh.Filename) == "" {
		return core.Upload{}, common.Reject(common.ErrEmptyFilename, "No selected file")
	}
	if _, _, err := core.ValidateUpload(fh.Filename); err != nil {
		return core.Upload{}, err
	}

	f, err := fh.Open()
	if err != nil {
		return core.Upload{}, fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer f.Close()
	data, err := readAtMost(f, h.maxBytes)
	if err != nil {
		return core.Upload{}, err
	}
	return core.Upload{Filename: fh.Filename, Data: data}, nil
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to read file")
	}
	if int64(len(b)) > max {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file too large: limit is %d bytes", max))
	}
	return b, nil
}

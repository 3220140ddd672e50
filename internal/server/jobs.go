package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/export"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JobsHandler exposes stored extraction jobs. Registered only when a job store is configured.
type JobsHandler struct {
	jobs   repository.ExtractionJobRepository
	export *export.Service
	logger *slog.Logger
}

func NewJobsHandler(jobs repository.ExtractionJobRepository, exp *export.Service, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{jobs: jobs, export: exp, logger: logger}
}

// Get handles GET /jobs/:id.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "id must be a UUID")
	}
	job, err := h.jobs.Get(c.UserContext(), id)
	if errors.Is(err, common.ErrNotFound) {
		return Error(c, fiber.StatusNotFound, "job not found")
	}
	if err != nil {
		h.logger.Error("http.jobs.get_failed", "job_id", id, "error", err)
		return Error(c, fiber.StatusInternalServerError, "internal error")
	}
	// finished jobs never change; in-flight ones must be re-read
	if constants.JobStatus(job.Status).IsTerminal() {
		c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	} else {
		c.Set(fiber.HeaderCacheControl, "no-store")
	}
	return JSON(c, fiber.StatusOK, job)
}

// Export handles GET /jobs/export.xlsx?limit=N.
func (h *JobsHandler) Export(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 500)
	if limit <= 0 {
		return Error(c, fiber.StatusBadRequest, "limit must be positive")
	}
	data, err := h.export.JobsXLSX(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("http.jobs.export_failed", "error", err)
		return Error(c, fiber.StatusInternalServerError, "export failed")
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="resumes.xlsx"`)
	return c.Status(fiber.StatusOK).Send(data)
}

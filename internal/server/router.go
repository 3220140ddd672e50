package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
)

const (
	headerRequestID = "X-Request-ID"
	localsRequestID = "requestId"
)

// NewApp builds the fiber app with the shared error handler and request-ID middleware.
func NewApp(maxUploadBytes int, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		AppName:               "resumed",
		BodyLimit:             maxUploadBytes + 1<<20, // multipart overhead
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           2 * time.Minute,
		WriteTimeout:          2 * time.Minute,
	})
	app.Use(RequestID(logger))
	return app
}

// RequestID stores a request ID in the locals and the user context, reusing the client's header when sent.
func RequestID(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(localsRequestID, rid)
		c.Set(headerRequestID, rid)
		c.SetUserContext(common.WithRequestID(c.UserContext(), rid))

		start := time.Now()
		err := c.Next()
		logger.Debug("http.request",
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(localsRequestID).(string)
	return rid
}

// Register wires all HTTP routes onto the app. jobs may be nil when no job store is configured.
func Register(app *fiber.App, resume *ResumeHandler, health *HealthHandler, jobs *JobsHandler) {
	app.Get("/healthz", health.Healthz)

	app.Post("/upload_and_process", resume.UploadAndProcess)
	app.Post("/reformat", resume.Reformat)

	if jobs != nil {
		g := app.Group("/jobs")
		g.Get("/export.xlsx", jobs.Export)
		g.Get("/:id", jobs.Get)
	}
}

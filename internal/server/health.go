package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// DBChecker pings the job store.
type DBChecker struct {
	DB      *repository.DB
	Timeout time.Duration
}

func (c DBChecker) Name() string { return "database" }

func (c DBChecker) Check(ctx context.Context) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	return c.DB.HealthCheck(ctx, timeout)
}

// HealthHandler serves GET /healthz.
type HealthHandler struct {
	checkers []Checker
}

func NewHealthHandler(checkers ...Checker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Ready runs every checker and reports the failures by name.
func (h *HealthHandler) Ready(ctx context.Context) map[string]string {
	failed := map[string]string{}
	for _, ch := range h.checkers {
		if err := ch.Check(ctx); err != nil {
			failed[ch.Name()] = err.Error()
		}
	}
	return failed
}

func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if failed := h.Ready(ctx); len(failed) > 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "not_ready",
			"details": failed,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// NewGRPCServer builds a gRPC server carrying only the standard health service and reflection.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(srv)
	return srv, hs
}

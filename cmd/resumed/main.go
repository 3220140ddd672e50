package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/core"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/export"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Job store is optional; without DB_URL nothing is persisted.
	var db *repository.DB
	if cfg.Database.DSN != "" {
		var err error
		db, err = server.ConnectDB(ctx, cfg.Database, logger)
		if err != nil {
			os.Exit(1)
		}
		defer db.Close()
		if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
	}

	comp, err := core.Build(ctx, cfg, db, logger)
	if err != nil {
		logger.Error("failed to wire processor", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := comp.Close(); err != nil {
			logger.Warn("publisher close failed", "error", err)
		}
	}()

	var checkers []server.Checker
	var jobs *server.JobsHandler
	if db != nil {
		checkers = append(checkers, server.DBChecker{DB: db, Timeout: time.Second})
		jobs = server.NewJobsHandler(comp.Jobs, export.NewService(comp.Jobs, logger), logger)
	}
	maxBytes := cfg.Server.MaxUploadMB << 20
	app := server.NewApp(maxBytes, logger)
	server.Register(app,
		server.NewResumeHandler(comp.Processor, comp.Reformatter, int64(maxBytes), logger),
		server.NewHealthHandler(checkers...),
		jobs,
	)

	// gRPC health on its own port
	grpcServer, hs := server.NewGRPCServer()
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		logger.Info("resumed listening", "addr", cfg.Server.HTTPAddr)
		errCh <- app.Listen(cfg.Server.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("server stopped", "error", err)
		}
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("stopped")
}

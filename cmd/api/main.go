package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"

	"fileapi/docs"
	"fileapi/internal/config"
	"fileapi/internal/database"
	"fileapi/internal/database/migration"
	handlers "fileapi/internal/http/handler"
	"fileapi/internal/http/middleware"
	"fileapi/internal/otel"
	"fileapi/internal/repository/postgres"
	"fileapi/internal/service"
	"fileapi/internal/storage"
)

// @title File API
// @version 1.0
// @description Attaches files to owners and stores them on configurable disks.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing_shutdown_failed", "error", err)
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(logger, "database_connect_failed", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		fatal(logger, "migration_failed", err)
	}

	disks, err := buildDisks(cfg.Storage, cfg.MinIO)
	if err != nil {
		fatal(logger, "storage_init_failed", err)
	}
	logger.Info("storage_configured", "disks", disks.IDs(), "default_disk", cfg.Storage.DefaultDisk)

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}

	files := postgres.NewFilePostgres(db)
	owners := postgres.NewOwnerPostgres(db)

	ingestor := service.NewIngestor(disks, files, owners, nil, service.IngestConfig{
		DefaultDisk:    cfg.Storage.DefaultDisk,
		MaxStreamBytes: cfg.Storage.MaxStreamBytes,
	},
		service.WithLogger(logger),
		service.WithMetrics(metrics),
	)
	lifecycle := service.NewLifecycle(disks, files, owners, postgres.NewTxManager(db),
		service.WithLifecycleLogger(logger),
		service.WithLifecycleMetrics(metrics),
	)
	fileSvc := service.NewFileService(ingestor, lifecycle, disks, files, owners)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.RegisterRoutes(app, db, fileSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server_shutdown_failed", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", "addr", addr, "app_host", cfg.AppHost)
	if err := app.Listen(addr); err != nil {
		logger.Error("server_failed", "error", err)
	}
}

// buildDisks registers the local disk and, when an endpoint is configured, the MinIO disk.
func buildDisks(sc config.StorageConfig, mc config.MinIOConfig) (*storage.Disks, error) {
	disks := storage.NewDisks()

	local, err := storage.NewLocal(afero.NewOsFs(), sc.LocalRoot, sc.LocalBaseURL)
	if err != nil {
		return nil, err
	}
	disks.Register(sc.LocalDisk, local)

	if mc.Endpoint != "" {
		objStore, err := storage.NewMinIO(mc)
		if err != nil {
			return nil, err
		}
		disks.Register(sc.MinIODisk, objStore)
	}
	return disks, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusapi/docs"
	"campusapi/internal/config"
	"campusapi/internal/database"
	handlers "campusapi/internal/http/handler"
	"campusapi/internal/http/middleware"
	"campusapi/internal/kyc"
	"campusapi/internal/otel"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/schema"
	"campusapi/internal/service"
	"campusapi/internal/storage"
)

// @title Campus API
// @version 1.0
// @description College administration CRUD and KYC forwarding.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Defaults, then configs.toml, then environment (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	if err := schema.Check(); err != nil {
		logger.Fatal().Err(err).Msg("invalid schema registry")
	}

	// Connect, enforce foreign keys on every pooled connection and create the tables
	engine, err := database.Initialize(ctx, cfg.Database, schema.Tables())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer engine.Close()

	// Object storage only archives uploaded id cards, so it is optional
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize object storage")
		}
	}

	var kycClient service.KYCClient
	if cfg.Digio.Enabled() {
		c, err := kyc.NewClient(cfg.Digio)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize digio client")
		}
		kycClient = c
	} else {
		logger.Warn().Msg("digio credentials not set, kyc routes will answer 503")
	}
	kycSvc := service.NewKYCService(kycClient, objStore)

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSOrigins, ","),
		AllowCredentials: true,
	}))
	app.Use(compress.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected engine and service
	handlers.RegisterRoutes(app, engine, kycSvc)

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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("tracer shutdown failed")
		}
	}()

	addr := ":" + cfg.Server.Port
	logger.Info().Str("addr", addr).Msg("server_starting")

	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

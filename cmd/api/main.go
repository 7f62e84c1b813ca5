package main

import (
	"context"

	"github.com/Xebarter/Clevers-Website-sub000/internal/api"
	v1 "github.com/Xebarter/Clevers-Website-sub000/internal/api/v1"
	"github.com/Xebarter/Clevers-Website-sub000/internal/api/validator"
	"github.com/Xebarter/Clevers-Website-sub000/internal/bootstrap"
	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	apperrors "github.com/Xebarter/Clevers-Website-sub000/internal/errors"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		bootstrap.Core,
		fx.Provide(
			repository.NewNotificationRepository,

			service.NewPaymentService,
			service.NewReconcileService,
			service.NewCallbackService,

			NewValidate,
			validator.NewXValidator,
			v1.NewHandler,
			NewFiberApp,
		),
		fx.Invoke(startServer),
	).Run()
}

func NewValidate() *playground.Validate {
	return playground.New()
}

func NewFiberApp(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "admissions-payments",
		ErrorHandler:          apperrors.ErrorHandler(logger),
		ReadTimeout:           cfg.API.ReadTimeout,
		WriteTimeout:          cfg.API.WriteTimeout,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))

	return app
}

func startServer(app *fiber.App, handler *v1.Handler, collector *metrics.DatabaseMetricsCollector,
	cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler, collector, prometheus.DefaultGatherer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(cfg.API.Address()); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()

			logger.Info("http server started",
				zap.String("address", cfg.API.Address()),
				zap.String("environment", cfg.Environment),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping http server")
			return app.ShutdownWithContext(ctx)
		},
	})
}

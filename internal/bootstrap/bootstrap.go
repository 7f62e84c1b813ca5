// Package bootstrap holds the fx providers shared by the API and the
// reconcile workers.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/httpclient"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/mq"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/mysql"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const collectInterval = 15 * time.Second

// Core provides configuration, logging, metrics, the database and the
// Pesapal client.
var Core = fx.Options(
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger}
	}),
	fx.Provide(
		config.Load,
		NewLogger,
		NewMetrics,
		NewConnectionDB,
		NewDatabaseCollector,
		NewPesapalClient,

		repository.NewTransactionManager,
		repository.NewApplicationRepository,
	),
	fx.Invoke(startSystemCollector),
)

// Queue provides the RabbitMQ connection used by the reconcile workers.
var Queue = fx.Options(
	fx.Provide(
		NewMQConnection,
		NewMQPublisher,
		NewMQConsumer,
	),
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

func NewMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.DefaultRegisterer)
}

func startSystemCollector(m *metrics.Metrics, logger *zap.Logger, lc fx.Lifecycle) {
	collector := metrics.NewSystemCollector(m, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			collector.Start(collectInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			collector.Stop()
			return nil
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mysql.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	// The applications table belongs to the website; only the ledger is
	// owned here.
	if err := db.WithContext(ctx).AutoMigrate(&model.PaymentNotification{}); err != nil {
		return nil, fmt.Errorf("failed to migrate payment_notifications: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func NewDatabaseCollector(m *metrics.Metrics, logger *zap.Logger, db *gorm.DB, lc fx.Lifecycle) (*metrics.DatabaseMetricsCollector, error) {
	collector := metrics.NewDatabaseMetricsCollector(m, logger, db)
	if err := collector.RegisterCallbacks(); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			collector.Start(collectInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			collector.Stop()
			return nil
		},
	})

	return collector, nil
}

func NewPesapalClient(cfg *config.Config, logger *zap.Logger) pesapal.Client {
	client := httpclient.NewHTTPClient(cfg.Pesapal.Timeout)
	tokens := pesapal.NewTokenManager(cfg.Pesapal, client)

	logger.Info("Pesapal client configured",
		zap.String("endpoint", cfg.Pesapal.Endpoint()),
		zap.Bool("sandbox", cfg.Pesapal.Sandbox),
		zap.Bool("ipnConfigured", cfg.Pesapal.IPNID != ""),
	)

	return pesapal.NewClient(cfg.Pesapal, client, tokens)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}

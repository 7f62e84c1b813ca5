package main

import (
	"context"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/bootstrap"
	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/publishers"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/mq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		bootstrap.Core,
		bootstrap.Queue,
		fx.Provide(
			service.NewReconcileService,
			publishers.NewReconcilePublisher,
		),
		fx.Invoke(runReconcilePublisher),
	).Run()
}

func runReconcilePublisher(cfg *config.Config, publisher publishers.ReconcilePublisher, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{cfg.Reconcile.Queue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			logger.Info("queue declared", zap.String("queue", cfg.Reconcile.Queue))

			go func() {
				ticker := time.NewTicker(cfg.Reconcile.Interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := publisher.Publish(appCtx); err != nil {
							logger.Error("failed to publish stale payments", zap.Error(err))
						}
					case <-appCtx.Done():
						logger.Info("publisher context cancelled")
						return
					}
				}
			}()

			logger.Info("reconcile publisher started", zap.Duration("interval", cfg.Reconcile.Interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping reconcile publisher")
			cancel()
			return rabbit.Close()
		},
	})
}

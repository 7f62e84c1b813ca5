package main

import (
	"context"

	"github.com/Xebarter/Clevers-Website-sub000/internal/bootstrap"
	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/consumers"
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
			consumers.NewReconcileConsumer,
		),
		fx.Invoke(runReconcileConsumer),
	).Run()
}

func runReconcileConsumer(cfg *config.Config, reconcileConsumer consumers.ReconcileConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{cfg.Reconcile.Queue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			logger.Info("queue declared", zap.String("queue", cfg.Reconcile.Queue))

			go func() {
				if err := reconcileConsumer.Consume(appCtx); err != nil && appCtx.Err() == nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("reconcile consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping reconcile consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

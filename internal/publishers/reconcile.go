package publishers

import (
	"context"
	"encoding/json"

	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/mq"
	"go.uber.org/zap"
)

type ReconcilePublisher interface {
	Publish(ctx context.Context) error
}

type reconcilePublisher struct {
	service   service.ReconcileService
	publisher mq.Publisher
	cfg       config.Reconcile
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewReconcilePublisher(service service.ReconcileService, publisher mq.Publisher, cfg *config.Config,
	logger *zap.Logger, metrics *metrics.Metrics) ReconcilePublisher {
	return &reconcilePublisher{
		service:   service,
		publisher: publisher,
		cfg:       cfg.Reconcile,
		logger:    logger,
		metrics:   metrics,
	}
}

// Publish queues one reconcile command per pending payment that has not
// changed within the stale window.
func (r *reconcilePublisher) Publish(ctx context.Context) error {
	commands, err := r.service.FindStale(ctx, r.cfg.StaleAfter, r.cfg.MaxAge, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	if len(commands) == 0 {
		return nil
	}

	r.logger.Info("Publishing stale payments", zap.Int("count", len(commands)))

	successCount := 0
	for _, cmd := range commands {
		body, err := json.Marshal(cmd)
		if err != nil {
			r.logger.Error("Failed to encode reconcile command", zap.String("applicationID", cmd.ApplicationID), zap.Error(err))
			continue
		}

		if err := r.publisher.Publish(ctx, "", r.cfg.Queue, body); err != nil {
			r.logger.Error("Failed to publish reconcile command",
				zap.Error(err),
				zap.String("applicationID", cmd.ApplicationID),
				zap.String("orderTrackingID", cmd.OrderTrackingID))
			continue
		}

		successCount++
	}

	r.metrics.RecordSweeperPublished(successCount)

	if successCount > 0 {
		r.logger.Info("Successfully published stale payments",
			zap.Int("published", successCount),
			zap.Int("total", len(commands)))
	}

	return nil
}

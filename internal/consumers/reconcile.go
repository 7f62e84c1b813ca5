package consumers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/mq"
	"go.uber.org/zap"
)

type ReconcileConsumer interface {
	Consume(ctx context.Context) error
}

type reconcileConsumer struct {
	service  service.ReconcileService
	consumer mq.Consumer
	queue    string
	prefetch int
	logger   *zap.Logger
}

func NewReconcileConsumer(service service.ReconcileService, consumer mq.Consumer, cfg *config.Config, logger *zap.Logger) ReconcileConsumer {
	return &reconcileConsumer{
		service:  service,
		consumer: consumer,
		queue:    cfg.Reconcile.Queue,
		prefetch: cfg.RabbitMQ.Prefetch,
		logger:   logger,
	}
}

func (r *reconcileConsumer) Consume(ctx context.Context) error {
	return r.consumer.Consume(ctx, r.prefetch, r.queue, r.handleMessage)
}

// handleMessage reconciles one application. Gateway and storage failures are
// redelivered; malformed commands and unknown applications are dropped.
func (r *reconcileConsumer) handleMessage(ctx context.Context, body []byte) error {
	var cmd service.ReconcileCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		r.logger.Warn("invalid reconcile command", zap.ByteString("body", body), zap.Error(err))
		return err
	}

	result, err := r.service.Reconcile(ctx, cmd.ApplicationID)
	if err != nil {
		if retryable(err) {
			r.logger.Warn("reconcile failed, requeueing",
				zap.String("applicationID", cmd.ApplicationID),
				zap.String("orderTrackingID", cmd.OrderTrackingID),
				zap.Error(err))
			return mq.Temporary(err)
		}

		r.logger.Warn("reconcile command dropped",
			zap.String("applicationID", cmd.ApplicationID),
			zap.String("orderTrackingID", cmd.OrderTrackingID),
			zap.Error(err))
		return err
	}

	r.logger.Info("application reconciled",
		zap.String("applicationID", result.ApplicationID),
		zap.String("orderTrackingID", result.OrderTrackingID),
		zap.String("status", string(result.Status)))
	return nil
}

func retryable(err error) bool {
	var serviceErr service.Error
	if !errors.As(err, &serviceErr) {
		return true
	}

	switch serviceErr.Code {
	case constants.ErrCodeGatewayError, constants.ErrCodeAuthRequestFailed, constants.ErrCodePersistenceError:
		return true
	default:
		return false
	}
}

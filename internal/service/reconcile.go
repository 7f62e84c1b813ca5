package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"go.uber.org/zap"
)

var ErrNoOrder = errors.New("NO_ORDER_TRACKING_ID")

const (
	TriggerPoll     = "poll"
	TriggerSweeper  = "sweeper"
	TriggerCallback = "callback"
)

// ReconcileService pulls payment status from the gateway and writes it back.
type ReconcileService interface {
	GetStatus(ctx context.Context, orderTrackingID string) (pesapal.TransactionStatus, error)
	Reconcile(ctx context.Context, applicationID string) (ReconcileResult, error)
	ReconcileByTrackingID(ctx context.Context, orderTrackingID string) (ReconcileResult, error)
	FindStale(ctx context.Context, olderThan, maxAge time.Duration, limit int) ([]ReconcileCommand, error)
}

type Reconciler struct {
	gateway      pesapal.Client
	applications repository.ApplicationRepository
	records      *recordUpdater
	logger       *zap.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewReconcileService returns a ReconcileService.
func NewReconcileService(gateway pesapal.Client, txManager repository.TxManager, applications repository.ApplicationRepository,
	logger *zap.Logger, metrics *metrics.Metrics) ReconcileService {
	return &Reconciler{
		gateway:      gateway,
		applications: applications,
		records:      newRecordUpdater(txManager, applications),
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
	}
}

// GetStatus fetches the gateway status for a tracking id without touching any record.
func (r *Reconciler) GetStatus(ctx context.Context, orderTrackingID string) (pesapal.TransactionStatus, error) {
	orderTrackingID = strings.TrimSpace(orderTrackingID)
	if orderTrackingID == "" {
		return pesapal.TransactionStatus{}, NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("%w: orderTrackingId is required", ErrNoOrder))
	}

	start := time.Now()
	status, err := r.gateway.GetTransactionStatus(ctx, orderTrackingID)
	if err != nil {
		serviceErr := gatewayError(err)
		r.metrics.RecordGatewayRequest("transaction_status", errorCode(serviceErr), time.Since(start))
		r.logger.Error("Transaction status lookup failed",
			zap.String("orderTrackingID", orderTrackingID),
			zap.Error(err),
		)
		return pesapal.TransactionStatus{}, serviceErr
	}
	r.metrics.RecordGatewayRequest("transaction_status", "success", time.Since(start))

	return status, nil
}

// Reconcile brings one application in line with the gateway, using the
// tracking id recorded when its order was submitted.
func (r *Reconciler) Reconcile(ctx context.Context, applicationID string) (ReconcileResult, error) {
	app, err := r.applications.GetByID(ctx, applicationID)
	if err != nil {
		return ReconcileResult{}, r.recordError(applicationID, err)
	}

	trackingID := app.OrderTrackingID()
	if trackingID == "" {
		return ReconcileResult{}, NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("%w: application %s has no submitted order", ErrNoOrder, applicationID))
	}

	status, err := r.GetStatus(ctx, trackingID)
	if err != nil {
		return ReconcileResult{}, err
	}

	return r.apply(ctx, app.ID, status, TriggerSweeper)
}

// ReconcileByTrackingID fetches the gateway status and applies it to the
// application named by the gateway's merchant reference. The status is
// returned even when there is no record to update.
func (r *Reconciler) ReconcileByTrackingID(ctx context.Context, orderTrackingID string) (ReconcileResult, error) {
	status, err := r.GetStatus(ctx, orderTrackingID)
	if err != nil {
		return ReconcileResult{}, err
	}

	result := ReconcileResult{
		ApplicationID:   status.MerchantReference,
		OrderTrackingID: status.OrderTrackingID,
		Status:          MapStatus(status.PaymentStatusDescription),
		Transaction:     status,
	}

	if status.MerchantReference == "" {
		r.logger.Warn("Gateway status has no merchant reference; record not updated",
			zap.String("orderTrackingID", status.OrderTrackingID))
		return result, nil
	}

	applied, err := r.apply(ctx, status.MerchantReference, status, TriggerPoll)
	if err != nil {
		if errorCode(err) == constants.ErrCodeApplicationNotFound {
			r.logger.Warn("Gateway status references an unknown application",
				zap.String("applicationID", status.MerchantReference),
				zap.String("orderTrackingID", status.OrderTrackingID))
			return result, nil
		}
		return result, err
	}

	return applied, nil
}

func (r *Reconciler) apply(ctx context.Context, applicationID string, status pesapal.TransactionStatus, trigger string) (ReconcileResult, error) {
	mapped := MapStatus(status.PaymentStatusDescription)

	change, err := r.records.apply(ctx, applicationID, paymentUpdate{
		Status:            mapped,
		GatewayStatus:     status.PaymentStatusDescription,
		OrderTrackingID:   status.OrderTrackingID,
		MerchantReference: status.MerchantReference,
		ConfirmationCode:  status.ConfirmationCode,
		Amount:            status.Amount,
		Currency:          status.Currency,
		Method:            status.PaymentMethod,
		Description:       status.Description,
		GatewayPayload:    status.Raw,
		PaidAt:            r.now(),
	})
	if err != nil {
		return ReconcileResult{}, r.recordError(applicationID, err)
	}

	r.metrics.RecordReconciliation(trigger, string(mapped))
	r.metrics.RecordStatusChange(string(change.Previous), string(mapped))
	r.logger.Info("Application reconciled with gateway",
		zap.String("applicationID", applicationID),
		zap.String("orderTrackingID", status.OrderTrackingID),
		zap.String("trigger", trigger),
		zap.String("previousStatus", string(change.Previous)),
		zap.String("status", string(mapped)),
	)

	return ReconcileResult{
		ApplicationID:   applicationID,
		OrderTrackingID: status.OrderTrackingID,
		Status:          mapped,
		Transaction:     status,
		Persisted:       true,
	}, nil
}

func (r *Reconciler) recordError(applicationID string, err error) error {
	if errors.Is(err, repository.ErrApplicationNotFound) {
		return NewServiceError(constants.ErrCodeApplicationNotFound, err)
	}

	r.logger.Error("Application record update failed", zap.String("applicationID", applicationID), zap.Error(err))
	return NewServiceError(constants.ErrCodePersistenceError, err)
}

// FindStale lists pending applications with an order that have not changed for olderThan,
// skipping those created more than maxAge ago.
func (r *Reconciler) FindStale(ctx context.Context, olderThan, maxAge time.Duration, limit int) ([]ReconcileCommand, error) {
	now := r.now()

	apps, err := r.applications.FindStalePending(ctx, now.Add(-olderThan), now.Add(-maxAge), limit)
	if err != nil {
		r.logger.Error("Failed to list stale pending payments", zap.Error(err))
		return nil, NewServiceError(constants.ErrCodePersistenceError, err)
	}

	commands := make([]ReconcileCommand, 0, len(apps))
	for _, app := range apps {
		trackingID := app.OrderTrackingID()
		if trackingID == "" || app.PaymentStatus != model.PaymentStatusPending {
			continue
		}
		commands = append(commands, ReconcileCommand{ApplicationID: app.ID, OrderTrackingID: trackingID})
	}

	return commands, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/payload"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var ErrIncompleteNotification = errors.New("INCOMPLETE_NOTIFICATION")

// NotificationFields lists the accepted spellings of each notification field,
// highest priority first. Lookup falls back to a case-insensitive match.
var NotificationFields = struct {
	OrderTrackingID   []string
	MerchantReference []string
	Status            []string
	NotificationType  []string
	ConfirmationCode  []string
	Amount            []string
	Currency          []string
	PaymentMethod     []string
	Description       []string
}{
	OrderTrackingID:   []string{"OrderTrackingId", "orderTrackingId", "order_tracking_id"},
	MerchantReference: []string{"OrderMerchantReference", "orderMerchantReference", "merchant_reference", "merchantReference", "MerchantReference"},
	Status:            []string{"payment_status_description", "paymentStatusDescription", "PaymentStatusDescription", "payment_status", "paymentStatus", "PaymentStatus", "status", "Status"},
	NotificationType:  []string{"OrderNotificationType", "orderNotificationType", "notification_type"},
	ConfirmationCode:  []string{"confirmation_code", "confirmationCode", "ConfirmationCode"},
	Amount:            []string{"amount", "Amount"},
	Currency:          []string{"currency", "Currency"},
	PaymentMethod:     []string{"payment_method", "paymentMethod", "PaymentMethod"},
	Description:       []string{"description", "Description"},
}

// Notification is the normalised content of a gateway callback.
type Notification struct {
	OrderTrackingID   string
	MerchantReference string
	Status            string
	NotificationType  string
	ConfirmationCode  string
	Amount            decimal.NullDecimal
	Currency          string
	PaymentMethod     string
	Description       string
}

// ExtractNotification reads the notification fields from a webhook payload, accepting
// snake, camel and Pascal case keys.
func ExtractNotification(p map[string]any) Notification {
	n := Notification{
		OrderTrackingID:   payload.String(p, NotificationFields.OrderTrackingID...),
		MerchantReference: payload.String(p, NotificationFields.MerchantReference...),
		Status:            payload.String(p, NotificationFields.Status...),
		NotificationType:  payload.String(p, NotificationFields.NotificationType...),
		ConfirmationCode:  payload.String(p, NotificationFields.ConfirmationCode...),
		Currency:          payload.String(p, NotificationFields.Currency...),
		PaymentMethod:     payload.String(p, NotificationFields.PaymentMethod...),
		Description:       payload.String(p, NotificationFields.Description...),
	}

	if amount, ok := payload.Decimal(p, NotificationFields.Amount...); ok {
		n.Amount = decimal.NullDecimal{Decimal: amount, Valid: true}
	}

	return n
}

// DecodeNotificationBody turns a callback body into a key/value map. It tries
// a JSON object, then a JSON string holding an object, then form encoding,
// and finally keeps the text under "raw".
func DecodeNotificationBody(body []byte, contentType string) map[string]any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}
	}

	if obj, ok := decodeJSONObject(trimmed); ok {
		return obj
	}

	var inner string
	if err := json.Unmarshal(trimmed, &inner); err == nil {
		if obj, ok := decodeJSONObject([]byte(strings.TrimSpace(inner))); ok {
			return obj
		}
	}

	text := string(trimmed)
	if strings.Contains(strings.ToLower(contentType), "application/x-www-form-urlencoded") ||
		(strings.Contains(text, "=") && !strings.ContainsAny(text, "{}")) {
		if values, err := url.ParseQuery(text); err == nil && len(values) > 0 {
			return valuesToMap(values)
		}
	}

	return map[string]any{"raw": text}
}

func decodeJSONObject(data []byte) (map[string]any, bool) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var obj map[string]any
	if err := decoder.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func valuesToMap(values url.Values) map[string]any {
	m := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			m[k] = v[0]
		}
	}
	return m
}

// MergeQuery adds query parameters to a decoded body without replacing keys
// the body already has.
func MergeQuery(body map[string]any, query map[string]string) map[string]any {
	if body == nil {
		body = map[string]any{}
	}
	for k, v := range query {
		if _, exists := body[k]; !exists {
			body[k] = v
		}
	}
	return body
}

// CallbackService handles gateway IPN deliveries and browser redirects.
type CallbackService interface {
	HandleNotification(ctx context.Context, cmd NotificationCommand) (CallbackResult, error)
	HandleRedirect(ctx context.Context, cmd NotificationCommand) (CallbackResult, error)
}

type Callback struct {
	reconciler     ReconcileService
	records        *recordUpdater
	notifications  repository.NotificationRepository
	reconcileOnGet bool
	logger         *zap.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewCallbackService returns a CallbackService that records every delivery in the
// notification ledger before applying it.
func NewCallbackService(reconciler ReconcileService, txManager repository.TxManager, applications repository.ApplicationRepository,
	notifications repository.NotificationRepository, cfg *config.Config, logger *zap.Logger, metrics *metrics.Metrics) CallbackService {
	return &Callback{
		reconciler:     reconciler,
		records:        newRecordUpdater(txManager, applications),
		notifications:  notifications,
		reconcileOnGet: cfg.Callback.ReconcileOnGet,
		logger:         logger,
		metrics:        metrics,
		now:            time.Now,
	}
}

// HandleNotification applies a gateway notification to its application.
// When the payload carries no status it is fetched from the gateway.
func (s *Callback) HandleNotification(ctx context.Context, cmd NotificationCommand) (CallbackResult, error) {
	if cmd.ReceivedAt.IsZero() {
		cmd.ReceivedAt = s.now()
	}
	s.metrics.RecordNotification(string(cmd.Source))

	n := ExtractNotification(cmd.Payload)
	ledgerID := s.recordReceived(ctx, cmd, n)

	result, err := s.handle(ctx, cmd, n)
	if err != nil {
		s.metrics.RecordNotificationError(errorCode(err))
		s.recordOutcome(ctx, ledgerID, model.NotificationStatusHandleFailed, "", err)
		return result, err
	}

	s.recordOutcome(ctx, ledgerID, model.NotificationStatusHandled, string(result.Status), nil)
	return result, nil
}

func (s *Callback) handle(ctx context.Context, cmd NotificationCommand, n Notification) (CallbackResult, error) {
	var gatewayPayload map[string]any

	if n.Status == "" && n.OrderTrackingID != "" {
		status, err := s.reconciler.GetStatus(ctx, n.OrderTrackingID)
		if err != nil {
			return s.result(n, ""), err
		}

		n.Status = status.PaymentStatusDescription
		n.MerchantReference = firstNonEmpty(n.MerchantReference, status.MerchantReference)
		n.ConfirmationCode = firstNonEmpty(n.ConfirmationCode, status.ConfirmationCode)
		n.Currency = firstNonEmpty(n.Currency, status.Currency)
		n.PaymentMethod = firstNonEmpty(n.PaymentMethod, status.PaymentMethod)
		n.Description = firstNonEmpty(n.Description, status.Description)
		if !n.Amount.Valid {
			n.Amount = status.Amount
		}
		gatewayPayload = status.Raw
	}

	if n.OrderTrackingID == "" || n.MerchantReference == "" {
		s.logger.Warn("Notification without tracking id or merchant reference",
			zap.String("source", string(cmd.Source)),
			zap.Any("payload", cmd.Payload),
		)
		return s.result(n, ""), NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("%w: OrderTrackingId and OrderMerchantReference are required", ErrIncompleteNotification))
	}

	mapped := MapStatus(n.Status)

	change, err := s.records.apply(ctx, n.MerchantReference, paymentUpdate{
		Status:            mapped,
		GatewayStatus:     n.Status,
		OrderTrackingID:   n.OrderTrackingID,
		MerchantReference: n.MerchantReference,
		ConfirmationCode:  n.ConfirmationCode,
		Amount:            n.Amount,
		Currency:          n.Currency,
		Method:            n.PaymentMethod,
		Description:       n.Description,
		NotificationType:  n.NotificationType,
		GatewayPayload:    firstPayload(gatewayPayload, cmd.Payload),
		PaidAt:            cmd.ReceivedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			s.logger.Warn("Notification for unknown application",
				zap.String("applicationID", n.MerchantReference),
				zap.String("orderTrackingID", n.OrderTrackingID),
			)
			return s.result(n, mapped), NewServiceError(constants.ErrCodeApplicationNotFound, err)
		}

		s.logger.Error("Failed to apply notification",
			zap.String("applicationID", n.MerchantReference),
			zap.String("orderTrackingID", n.OrderTrackingID),
			zap.Error(err),
		)
		return s.result(n, mapped), NewServiceError(constants.ErrCodePersistenceError, err)
	}

	s.metrics.RecordReconciliation(TriggerCallback, string(mapped))
	s.metrics.RecordStatusChange(string(change.Previous), string(mapped))
	s.logger.Info("Payment notification applied",
		zap.String("applicationID", n.MerchantReference),
		zap.String("orderTrackingID", n.OrderTrackingID),
		zap.String("notificationType", n.NotificationType),
		zap.String("previousStatus", string(change.Previous)),
		zap.String("status", string(mapped)),
	)

	result := s.result(n, mapped)
	result.Applied = true
	return result, nil
}

// HandleRedirect serves the GET callback the payer's browser is sent to. It
// is acknowledged without touching the record unless reconcile_on_get is set.
func (s *Callback) HandleRedirect(ctx context.Context, cmd NotificationCommand) (CallbackResult, error) {
	n := ExtractNotification(cmd.Payload)
	if n.OrderTrackingID == "" || n.MerchantReference == "" {
		return s.result(n, ""), NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("%w: OrderTrackingId and OrderMerchantReference are required", ErrIncompleteNotification))
	}

	if s.reconcileOnGet {
		return s.HandleNotification(ctx, cmd)
	}

	s.metrics.RecordNotification(string(cmd.Source))
	ledgerID := s.recordReceived(ctx, cmd, n)
	s.recordOutcome(ctx, ledgerID, model.NotificationStatusHandled, "", nil)

	s.logger.Info("Payment redirect acknowledged",
		zap.String("applicationID", n.MerchantReference),
		zap.String("orderTrackingID", n.OrderTrackingID),
	)

	return s.result(n, ""), nil
}

func (s *Callback) result(n Notification, status model.PaymentStatus) CallbackResult {
	return CallbackResult{
		ApplicationID:     n.MerchantReference,
		OrderTrackingID:   n.OrderTrackingID,
		MerchantReference: n.MerchantReference,
		NotificationType:  n.NotificationType,
		Status:            status,
	}
}

// recordReceived writes the ledger row. Ledger failures are logged and never
// change the outcome of the callback.
func (s *Callback) recordReceived(ctx context.Context, cmd NotificationCommand, n Notification) string {
	if s.notifications == nil {
		return ""
	}

	raw, err := json.Marshal(cmd.Payload)
	if err != nil {
		raw = nil
	}

	entry := &model.PaymentNotification{
		OrderTrackingID:   n.OrderTrackingID,
		MerchantReference: n.MerchantReference,
		Source:            cmd.Source,
		Payload:           datatypes.JSON(raw),
		Status:            model.NotificationStatusReceived,
	}

	if err := s.notifications.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to record notification", zap.String("orderTrackingID", n.OrderTrackingID), zap.Error(err))
		s.metrics.RecordPersistenceWarning("notification_ledger")
		return ""
	}

	return entry.ID
}

func (s *Callback) recordOutcome(ctx context.Context, id string, status model.NotificationStatus, mapped string, cause error) {
	if s.notifications == nil || id == "" {
		return
	}

	var mappedStatus, lastError *string
	if mapped != "" {
		mappedStatus = &mapped
	}
	if cause != nil {
		msg := cause.Error()
		lastError = &msg
	}

	if err := s.notifications.UpdateStatus(ctx, id, status, mappedStatus, lastError); err != nil {
		s.logger.Warn("Failed to update notification record", zap.String("notificationID", id), zap.Error(err))
		s.metrics.RecordPersistenceWarning("notification_ledger")
	}
}

func firstPayload(payloads ...map[string]any) map[string]any {
	for _, p := range payloads {
		if len(p) > 0 {
			return p
		}
	}
	return nil
}

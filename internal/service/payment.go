package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"go.uber.org/zap"
)

const maxDescriptionLength = 100

var ErrInvalidOrder = errors.New("INVALID_ORDER")

// PaymentService starts payments with the gateway.
type PaymentService interface {
	SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error)
	RegisterIPN(ctx context.Context, cmd RegisterIPNCommand) (pesapal.IPNRegistration, error)
}

type Payment struct {
	gateway      pesapal.Client
	applications repository.ApplicationRepository
	records      *recordUpdater
	pesapalCfg   pesapal.Config
	ipnURL       string
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// NewPaymentService returns a PaymentService backed by the gateway client and the
// application store.
func NewPaymentService(gateway pesapal.Client, txManager repository.TxManager, applications repository.ApplicationRepository,
	cfg *config.Config, logger *zap.Logger, metrics *metrics.Metrics) PaymentService {
	return &Payment{
		gateway:      gateway,
		applications: applications,
		records:      newRecordUpdater(txManager, applications),
		pesapalCfg:   cfg.Pesapal,
		ipnURL:       cfg.Callback.IPNURL,
		logger:       logger,
		metrics:      metrics,
	}
}

// SubmitOrder validates the command, submits the order to the gateway and records the
// tracking id on the application. A failed write after a successful order is reported in
// SubmitOrderResult.PersistenceWarning rather than as an error.
func (p *Payment) SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error) {
	cmd.ApplicationID = strings.TrimSpace(cmd.ApplicationID)
	cmd.Currency = strings.ToUpper(strings.TrimSpace(cmd.Currency))

	if cmd.ApplicationID == "" || cmd.Currency == "" || !cmd.Amount.IsPositive() {
		p.metrics.RecordOrderSubmitted(constants.ErrCodeValidationFailed)
		return SubmitOrderResult{}, NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("%w: applicationId, currency and a positive amount are required", ErrInvalidOrder))
	}

	app, err := p.applications.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			p.logger.Warn("Order requested for unknown application", zap.String("applicationID", cmd.ApplicationID))
			p.metrics.RecordOrderSubmitted(constants.ErrCodeApplicationNotFound)
			return SubmitOrderResult{}, NewServiceError(constants.ErrCodeApplicationNotFound, err)
		}

		p.logger.Error("Failed to load application", zap.String("applicationID", cmd.ApplicationID), zap.Error(err))
		p.metrics.RecordOrderSubmitted(constants.ErrCodePersistenceError)
		return SubmitOrderResult{}, NewServiceError(constants.ErrCodePersistenceError, err)
	}

	request := p.orderRequest(app, cmd)

	start := time.Now()
	order, err := p.gateway.SubmitOrder(ctx, request)
	if err != nil {
		serviceErr := gatewayError(err)
		p.metrics.RecordGatewayRequest("submit_order", errorCode(serviceErr), time.Since(start))
		p.metrics.RecordOrderSubmitted(errorCode(serviceErr))
		p.logger.Error("Order submission failed",
			zap.String("applicationID", cmd.ApplicationID),
			zap.String("code", errorCode(serviceErr)),
			zap.Error(err),
		)
		return SubmitOrderResult{}, serviceErr
	}
	p.metrics.RecordGatewayRequest("submit_order", "success", time.Since(start))

	result := SubmitOrderResult{
		OrderTrackingID:   order.OrderTrackingID,
		RedirectURL:       order.RedirectURL,
		MerchantReference: order.MerchantReference,
	}

	_, err = p.records.apply(ctx, app.ID, paymentUpdate{
		Status:            model.PaymentStatusPending,
		OrderTrackingID:   order.OrderTrackingID,
		MerchantReference: order.MerchantReference,
		Description:       request.Description,
		RedirectURL:       order.RedirectURL,
		OrderMetadata:     cmd.Metadata,
	})
	if err != nil {
		p.logger.Error("Order created but could not be recorded on the application",
			zap.String("applicationID", app.ID),
			zap.String("orderTrackingID", order.OrderTrackingID),
			zap.Error(err),
		)
		p.metrics.RecordPersistenceWarning("submit_order")
		result.PersistenceWarning = err
	}

	p.metrics.RecordOrderSubmitted("success")
	p.logger.Info("Order submitted",
		zap.String("applicationID", app.ID),
		zap.String("orderTrackingID", order.OrderTrackingID),
		zap.String("amount", cmd.Amount.String()),
		zap.String("currency", cmd.Currency),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (p *Payment) orderRequest(app *model.Application, cmd SubmitOrderCommand) pesapal.OrderRequest {
	name := firstNonEmpty(cmd.Metadata["name"], app.StudentName, app.ParentName)
	firstName, lastName := splitName(name)

	description := strings.TrimSpace(cmd.Description)
	if description == "" {
		description = strings.TrimSpace("Application fee - " + name)
	}

	callbackURL := firstNonEmpty(cmd.CallbackURL, p.pesapalCfg.CallbackURL)

	return pesapal.OrderRequest{
		ID:             app.ID,
		Currency:       cmd.Currency,
		Amount:         cmd.Amount.InexactFloat64(),
		Description:    truncate(description, maxDescriptionLength),
		CallbackURL:    callbackURL,
		NotificationID: p.pesapalCfg.IPNID,
		BillingAddress: pesapal.BillingAddress{
			EmailAddress: firstNonEmpty(cmd.Metadata["email"], app.Email),
			PhoneNumber:  digitsOnly(firstNonEmpty(cmd.Metadata["phone"], app.Phone)),
			CountryCode:  firstNonEmpty(p.pesapalCfg.CountryCode, "UG"),
			FirstName:    firstName,
			LastName:     lastName,
			City:         firstNonEmpty(p.pesapalCfg.City, "Kampala"),
		},
	}
}

// RegisterIPN registers the notification URL with the gateway. The configured callback
// URL and POST are used when the command leaves them empty.
func (p *Payment) RegisterIPN(ctx context.Context, cmd RegisterIPNCommand) (pesapal.IPNRegistration, error) {
	request := pesapal.RegisterIPNRequest{
		URL:              firstNonEmpty(strings.TrimSpace(cmd.URL), p.ipnURL),
		NotificationType: strings.ToUpper(firstNonEmpty(strings.TrimSpace(cmd.NotificationType), pesapal.NotificationTypePost)),
	}

	if request.NotificationType != pesapal.NotificationTypePost && request.NotificationType != pesapal.NotificationTypeGet {
		return pesapal.IPNRegistration{}, NewServiceError(constants.ErrCodeValidationFailed,
			fmt.Errorf("%w: notificationType must be GET or POST", ErrInvalidOrder))
	}

	start := time.Now()
	registration, err := p.gateway.RegisterIPN(ctx, request)
	if err != nil {
		serviceErr := gatewayError(err)
		p.metrics.RecordGatewayRequest("register_ipn", errorCode(serviceErr), time.Since(start))
		p.logger.Error("IPN registration failed", zap.String("url", request.URL), zap.Error(err))
		return pesapal.IPNRegistration{}, serviceErr
	}
	p.metrics.RecordGatewayRequest("register_ipn", "success", time.Since(start))

	p.logger.Info("IPN registered",
		zap.String("ipnID", registration.IPNID),
		zap.String("url", request.URL),
		zap.String("notificationType", request.NotificationType),
	)

	return registration, nil
}

// splitName takes the first word as the first name and the rest as the last
// name. A single word is used for both.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

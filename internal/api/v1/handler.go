package v1

import (
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/api/validator"
	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgNotificationProcessed = "Payment notification processed"
	msgRedirectAcknowledged  = "Payment callback acknowledged"
)

type Handler struct {
	logger     *zap.Logger
	payments   service.PaymentService
	reconciler service.ReconcileService
	callbacks  service.CallbackService
	XValidator validator.IXValidator
	metrics    *metrics.Metrics
}

func NewHandler(logger *zap.Logger, payments service.PaymentService, reconciler service.ReconcileService,
	callbacks service.CallbackService, XValidator validator.IXValidator, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		payments:   payments,
		reconciler: reconciler,
		callbacks:  callbacks,
		XValidator: XValidator,
		metrics:    metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) InitiatePayment(c *fiber.Ctx) error {
	start := time.Now()

	var request InitiatePaymentRequest
	if err := h.XValidator.Validator(&request, constants.MessageErrorFormat, c); err != nil {
		h.logger.Warn("Invalid initiate-payment request", zap.String("applicationID", request.ApplicationID), zap.Error(err))
		return err
	}

	result, err := h.payments.SubmitOrder(c.UserContext(), service.SubmitOrderCommand{
		ApplicationID: request.ApplicationID,
		Amount:        request.Amount,
		Currency:      request.Currency,
		Description:   request.Description,
		Metadata:      request.Metadata,
	})
	if err != nil {
		return err
	}

	response := InitiatePaymentResponse{
		Success:           true,
		OrderTrackingID:   result.OrderTrackingID,
		RedirectURL:       result.RedirectURL,
		MerchantReference: result.MerchantReference,
	}
	if result.PersistenceWarning != nil {
		response.PersistenceWarning = constants.GetErrorMessage(constants.ErrCodePersistenceError)
	}

	h.logger.Info("Payment initiated",
		zap.String("applicationID", request.ApplicationID),
		zap.String("orderTrackingID", result.OrderTrackingID),
		zap.Duration("duration", time.Since(start)),
	)

	return c.JSON(response)
}

func (h *Handler) Checkout(c *fiber.Ctx) error {
	var request CheckoutRequest
	if err := h.XValidator.Validator(&request, constants.MessageErrorFormat, c); err != nil {
		h.logger.Warn("Invalid checkout request", zap.String("applicationID", request.ApplicationID), zap.Error(err))
		return err
	}

	result, err := h.payments.SubmitOrder(c.UserContext(), service.SubmitOrderCommand{
		ApplicationID: request.ApplicationID,
		Amount:        request.Amount,
		Currency:      request.Currency,
		Description:   request.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(CheckoutResponse{
		RedirectURL:       result.RedirectURL,
		MerchantReference: result.MerchantReference,
		OrderTrackingID:   result.OrderTrackingID,
	})
}

func (h *Handler) CheckPaymentStatus(c *fiber.Ctx) error {
	orderTrackingID := c.Params("orderTrackingId")

	result, err := h.reconciler.ReconcileByTrackingID(c.UserContext(), orderTrackingID)
	if err != nil {
		return err
	}

	var details any = result.Transaction
	if result.Transaction.Raw != nil {
		details = result.Transaction.Raw
	}

	return c.JSON(PaymentStatusResponse{
		Success:                  true,
		PaymentStatusDescription: result.Transaction.PaymentStatusDescription,
		Status:                   string(result.Status),
		Details:                  details,
	})
}

// PaymentCallback receives the gateway IPN. The body may be JSON, a JSON
// encoded string or a form; query parameters fill in missing keys.
func (h *Handler) PaymentCallback(c *fiber.Ctx) error {
	body := service.DecodeNotificationBody(c.Body(), c.Get(fiber.HeaderContentType))
	payload := service.MergeQuery(body, c.Queries())

	result, err := h.callbacks.HandleNotification(c.UserContext(), service.NotificationCommand{
		Source:     model.NotificationSourcePost,
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	return c.JSON(callbackResponse(msgNotificationProcessed, result))
}

func (h *Handler) PaymentRedirect(c *fiber.Ctx) error {
	payload := service.MergeQuery(nil, c.Queries())

	result, err := h.callbacks.HandleRedirect(c.UserContext(), service.NotificationCommand{
		Source:     model.NotificationSourceGet,
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	message := msgRedirectAcknowledged
	if result.Applied {
		message = msgNotificationProcessed
	}

	return c.JSON(callbackResponse(message, result))
}

func (h *Handler) RegisterIPN(c *fiber.Ctx) error {
	var request RegisterIPNRequest
	if len(c.Body()) > 0 {
		if err := h.XValidator.Validator(&request, constants.MessageErrorFormat, c); err != nil {
			return err
		}
	}

	registration, err := h.payments.RegisterIPN(c.UserContext(), service.RegisterIPNCommand{
		URL:              request.URL,
		NotificationType: request.NotificationType,
	})
	if err != nil {
		return err
	}

	return c.JSON(RegisterIPNResponse{
		IPNID:            registration.IPNID,
		URL:              registration.URL,
		NotificationType: registration.NotificationType,
		Status:           registration.Status,
		CreatedDate:      registration.CreatedDate,
	})
}

func callbackResponse(message string, result service.CallbackResult) CallbackResponse {
	return CallbackResponse{
		Message:                message,
		ApplicationID:          result.ApplicationID,
		Status:                 string(result.Status),
		OrderNotificationType:  result.NotificationType,
		OrderTrackingID:        result.OrderTrackingID,
		OrderMerchantReference: result.MerchantReference,
	}
}

package pesapal

import (
	"strconv"

	"github.com/Xebarter/Clevers-Website-sub000/pkg/payload"
	"github.com/shopspring/decimal"
)

// Key spellings seen in gateway replies, highest priority first.
var (
	orderTrackingIDKeys   = []string{"order_tracking_id", "orderTrackingId", "OrderTrackingId"}
	redirectURLKeys       = []string{"redirect_url", "redirectUrl", "RedirectUrl", "RedirectURL"}
	merchantReferenceKeys = []string{"merchant_reference", "merchantReference", "MerchantReference", "OrderMerchantReference"}
	tokenKeys             = []string{"token", "access_token", "accessToken"}
	expiresInKeys         = []string{"expires_in", "expiresIn", "ExpiresIn"}
	expiryDateKeys        = []string{"expiryDate", "expiry_date", "ExpiryDate"}
)

type OrderResponse struct {
	OrderTrackingID   string `json:"order_tracking_id"`
	RedirectURL       string `json:"redirect_url"`
	MerchantReference string `json:"merchant_reference"`
}

// Pesapal status_code values.
const (
	StatusCodeInvalid   = 0
	StatusCodeCompleted = 1
	StatusCodeFailed    = 2
	StatusCodeReversed  = 3
)

type TransactionStatus struct {
	OrderTrackingID          string              `json:"order_tracking_id"`
	PaymentMethod            string              `json:"payment_method"`
	Amount                   decimal.NullDecimal `json:"amount"`
	CreatedDate              string              `json:"created_date"`
	ConfirmationCode         string              `json:"confirmation_code"`
	PaymentStatusDescription string              `json:"payment_status_description"`
	Description              string              `json:"description"`
	Message                  string              `json:"message"`
	PaymentAccount           string              `json:"payment_account"`
	CallbackURL              string              `json:"call_back_url"`
	StatusCode               int                 `json:"status_code"`
	MerchantReference        string              `json:"merchant_reference"`
	Currency                 string              `json:"currency"`
	Raw                      map[string]any      `json:"-"`
}

type IPNRegistration struct {
	IPNID            string `json:"ipn_id"`
	URL              string `json:"url"`
	NotificationType string `json:"notification_type"`
	Status           string `json:"ipn_status"`
	CreatedDate      string `json:"created_date"`
}

func parseOrderResponse(body map[string]any) OrderResponse {
	return OrderResponse{
		OrderTrackingID:   payload.String(body, orderTrackingIDKeys...),
		RedirectURL:       payload.String(body, redirectURLKeys...),
		MerchantReference: payload.String(body, merchantReferenceKeys...),
	}
}

func parseTransactionStatus(trackingID string, body map[string]any) TransactionStatus {
	status := TransactionStatus{
		OrderTrackingID:          payload.String(body, orderTrackingIDKeys...),
		PaymentMethod:            payload.String(body, "payment_method", "paymentMethod", "PaymentMethod"),
		CreatedDate:              payload.String(body, "created_date", "createdDate", "CreatedDate"),
		ConfirmationCode:         payload.String(body, "confirmation_code", "confirmationCode", "ConfirmationCode"),
		PaymentStatusDescription: payload.String(body, "payment_status_description", "paymentStatusDescription", "PaymentStatusDescription"),
		Description:              payload.String(body, "description", "Description"),
		Message:                  payload.String(body, "message", "Message"),
		PaymentAccount:           payload.String(body, "payment_account", "paymentAccount", "PaymentAccount"),
		CallbackURL:              payload.String(body, "call_back_url", "callback_url", "callbackUrl"),
		MerchantReference:        payload.String(body, merchantReferenceKeys...),
		Currency:                 payload.String(body, "currency", "Currency"),
		Raw:                      body,
	}

	if status.OrderTrackingID == "" {
		status.OrderTrackingID = trackingID
	}

	if amount, ok := payload.Decimal(body, "amount", "Amount"); ok {
		status.Amount = decimal.NullDecimal{Decimal: amount, Valid: true}
	}

	if code, err := strconv.Atoi(payload.String(body, "status_code", "statusCode", "StatusCode")); err == nil {
		status.StatusCode = code
	}

	return status
}

func parseIPNRegistration(body map[string]any) IPNRegistration {
	return IPNRegistration{
		IPNID:            payload.String(body, "ipn_id", "ipnId", "IpnId"),
		URL:              payload.String(body, "url", "Url"),
		NotificationType: payload.String(body, "notification_type", "ipn_notification_type_description", "notificationType"),
		Status:           payload.String(body, "ipn_status_description", "ipn_status", "ipnStatus"),
		CreatedDate:      payload.String(body, "created_date", "createdDate"),
	}
}

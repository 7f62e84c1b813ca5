package v1

import "github.com/shopspring/decimal"

type InitiatePaymentRequest struct {
	ApplicationID string            `json:"applicationId" validate:"required,max=64"`
	Amount        decimal.Decimal   `json:"amount" validate:"amount"`
	Currency      string            `json:"currency" validate:"required,currency"`
	Description   string            `json:"description" validate:"omitempty,max=255"`
	Metadata      map[string]string `json:"metadata"`
}

type CheckoutRequest struct {
	ApplicationID string          `json:"applicationId" validate:"required,max=64"`
	Amount        decimal.Decimal `json:"amount" validate:"amount"`
	Currency      string          `json:"currency" validate:"required,currency"`
	Description   string          `json:"description" validate:"omitempty,max=255"`
}

type RegisterIPNRequest struct {
	URL              string `json:"url" validate:"omitempty,url"`
	NotificationType string `json:"notificationType"`
}

package service

import (
	"strings"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
)

var statusAliases = map[string]model.PaymentStatus{
	"COMPLETED":  model.PaymentStatusCompleted,
	"PAID":       model.PaymentStatusCompleted,
	"SUCCESS":    model.PaymentStatusCompleted,
	"FAILED":     model.PaymentStatusFailed,
	"DECLINED":   model.PaymentStatusFailed,
	"CANCELLED":  model.PaymentStatusFailed,
	"ERROR":      model.PaymentStatusFailed,
	"PENDING":    model.PaymentStatusPending,
	"PROCESSING": model.PaymentStatusPending,
	"AWAITING":   model.PaymentStatusPending,
}

// MapStatus normalises a gateway status string. Unknown values such as
// Pesapal's INVALID or REVERSED are passed through lowercased.
func MapStatus(raw string) model.PaymentStatus {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.PaymentStatusPending
	}

	if status, ok := statusAliases[strings.ToUpper(trimmed)]; ok {
		return status
	}

	return model.PaymentStatus(strings.ToLower(trimmed))
}

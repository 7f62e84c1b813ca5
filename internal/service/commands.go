package service

import (
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"github.com/shopspring/decimal"
)

// SubmitOrderCommand asks for a gateway order for one application fee.
type SubmitOrderCommand struct {
	ApplicationID string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CallbackURL   string
	// Metadata may override the billing name, email and phone and is kept
	// on the record under orderMetadata.
	Metadata map[string]string
}

type SubmitOrderResult struct {
	OrderTrackingID   string
	RedirectURL       string
	MerchantReference string
	// PersistenceWarning is set when the order was created but recording it
	// on the application failed.
	PersistenceWarning error
}

type RegisterIPNCommand struct {
	URL              string
	NotificationType string
}

// NotificationCommand is a single webhook delivery with query and body merged.
type NotificationCommand struct {
	Source     model.NotificationSource
	Payload    map[string]any
	ReceivedAt time.Time
}

type CallbackResult struct {
	ApplicationID     string
	OrderTrackingID   string
	MerchantReference string
	NotificationType  string
	Status            model.PaymentStatus
	// Applied is false when a GET callback was only acknowledged.
	Applied bool
}

// ReconcileResult is the gateway status and what was written for it.
type ReconcileResult struct {
	ApplicationID   string
	OrderTrackingID string
	Status          model.PaymentStatus
	Transaction     pesapal.TransactionStatus
	// Persisted is false when no matching record could be updated.
	Persisted bool
}

// ReconcileCommand is the sweeper queue message.
type ReconcileCommand struct {
	ApplicationID   string `json:"application_id"`
	OrderTrackingID string `json:"order_tracking_id"`
}

package service

import (
	"context"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/shopspring/decimal"
)

// paymentUpdate is what the submit, callback, poll and sweep paths write to an
// application. Empty fields leave the stored value untouched.
type paymentUpdate struct {
	Status            model.PaymentStatus
	GatewayStatus     string
	OrderTrackingID   string
	MerchantReference string
	ConfirmationCode  string
	Amount            decimal.NullDecimal
	Currency          string
	Method            string
	Description       string
	NotificationType  string
	RedirectURL       string
	OrderMetadata     map[string]string
	GatewayPayload    map[string]any
	PaidAt            time.Time
}

type recordChange struct {
	Previous model.PaymentStatus
}

type recordUpdater struct {
	txManager    repository.TxManager
	applications repository.ApplicationRepository
	now          func() time.Time
}

func newRecordUpdater(txManager repository.TxManager, applications repository.ApplicationRepository) *recordUpdater {
	return &recordUpdater{txManager: txManager, applications: applications, now: time.Now}
}

// apply locks the application, merges the update into its metadata and writes
// the payment columns. payment_status and message.paymentStatus are always
// written together.
func (u *recordUpdater) apply(ctx context.Context, applicationID string, update paymentUpdate) (recordChange, error) {
	var change recordChange

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		app, err := u.applications.GetByIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}

		message, err := app.Metadata().Merge(update.metadataPatch(u.now())).Encode()
		if err != nil {
			return err
		}

		changes := update.columns(app.ID, message)
		if err := u.applications.UpdatePayment(ctx, changes); err != nil {
			return err
		}

		change = recordChange{Previous: app.PaymentStatus}
		return nil
	})

	return change, err
}

func (p paymentUpdate) metadataPatch(now time.Time) map[string]any {
	patch := map[string]any{
		model.MetaPaymentStatus:     string(p.Status),
		model.MetaGatewayStatus:     p.GatewayStatus,
		model.MetaOrderTrackingID:   p.OrderTrackingID,
		model.MetaMerchantReference: p.MerchantReference,
		model.MetaConfirmationCode:  p.ConfirmationCode,
		model.MetaCurrency:          p.Currency,
		model.MetaPaymentMethod:     p.Method,
		model.MetaDescription:       p.Description,
		model.MetaNotificationType:  p.NotificationType,
		model.MetaRedirectURL:       p.RedirectURL,
		model.MetaLastUpdated:       now.UTC().Format(time.RFC3339),
	}

	if p.Amount.Valid {
		patch[model.MetaAmount] = p.Amount.Decimal.String()
	}
	if len(p.OrderMetadata) > 0 {
		patch[model.MetaOrderMetadata] = p.OrderMetadata
	}
	if p.GatewayPayload != nil {
		patch[model.MetaGatewayPayload] = p.GatewayPayload
	}

	return patch
}

func (p paymentUpdate) columns(id string, message []byte) *model.Application {
	changes := &model.Application{
		ID:            id,
		PaymentStatus: p.Status,
		PaymentAmount: p.Amount,
		Message:       message,
	}

	if p.Status == model.PaymentStatusCompleted {
		changes.ApplicationStatus = model.ApplicationStatusPaid
	}
	if p.ConfirmationCode != "" {
		changes.PaymentConfirmationCode = &p.ConfirmationCode
	}
	if p.Currency != "" {
		changes.PaymentCurrency = &p.Currency
	}
	if p.Method != "" {
		changes.PaymentMethod = &p.Method
	}
	if !p.PaidAt.IsZero() {
		paidAt := p.PaidAt.UTC()
		changes.PaymentDate = &paidAt
	}

	return changes
}

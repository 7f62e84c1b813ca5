package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

const (
	ApplicationStatusSubmitted = "SUBMITTED"
	ApplicationStatusPaid      = "PAID"
)

// Application is an admission application row. Payment columns are written
// only by the payment flow; applicant columns are owned by the intake form.
type Application struct {
	ID                      string              `gorm:"column:id;primaryKey;type:varchar(64);<-:create"`
	StudentName             string              `gorm:"column:student_name;type:varchar(255)"`
	ParentName              string              `gorm:"column:parent_name;type:varchar(255)"`
	Email                   string              `gorm:"column:email;type:varchar(255)"`
	Phone                   string              `gorm:"column:phone;type:varchar(32)"`
	Campus                  string              `gorm:"column:campus;type:varchar(128)"`
	ApplicationStatus       string              `gorm:"column:application_status;type:varchar(32);default:'SUBMITTED'"`
	PaymentStatus           PaymentStatus       `gorm:"column:payment_status;type:varchar(32);default:'pending';index"`
	PaymentConfirmationCode *string             `gorm:"column:payment_confirmation_code;type:varchar(128)"`
	PaymentAmount           decimal.NullDecimal `gorm:"column:payment_amount;type:decimal(14,2)"`
	PaymentCurrency         *string             `gorm:"column:payment_currency;type:varchar(8)"`
	PaymentMethod           *string             `gorm:"column:payment_method;type:varchar(64)"`
	PaymentDate             *time.Time          `gorm:"column:payment_date"`
	Message                 datatypes.JSON      `gorm:"column:message;type:text"`
	CreatedAt               time.Time           `gorm:"column:created_at"`
	UpdatedAt               time.Time           `gorm:"column:updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

func (a *Application) Metadata() PaymentMetadata {
	return DecodeMetadata(a.Message)
}

// OrderTrackingID returns the tracking id recorded by the last order submission, if any.
func (a *Application) OrderTrackingID() string {
	return a.Metadata().String(MetaOrderTrackingID)
}

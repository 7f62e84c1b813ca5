package model

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationSource string

const (
	NotificationSourcePost NotificationSource = "ipn_post"
	NotificationSourceGet  NotificationSource = "ipn_get"
)

type NotificationStatus string

const (
	NotificationStatusReceived     NotificationStatus = "received"
	NotificationStatusHandled      NotificationStatus = "handled"
	NotificationStatusHandleFailed NotificationStatus = "handle_failed"
)

// PaymentNotification is an audit record of one gateway callback. It is never
// consulted to skip processing; repeated deliveries are each recorded.
type PaymentNotification struct {
	ID                string             `gorm:"column:id;primaryKey;type:char(36);<-:create"`
	OrderTrackingID   string             `gorm:"column:order_tracking_id;type:varchar(128);index"`
	MerchantReference string             `gorm:"column:merchant_reference;type:varchar(64);index"`
	Source            NotificationSource `gorm:"column:source;type:varchar(16);not null"`
	Payload           datatypes.JSON     `gorm:"column:payload"`
	Status            NotificationStatus `gorm:"column:status;type:varchar(16);not null"`
	MappedStatus      *string            `gorm:"column:mapped_status;type:varchar(32)"`
	LastError         *string            `gorm:"column:last_error;type:text"`
	CreatedAt         time.Time          `gorm:"column:created_at"`
	UpdatedAt         time.Time          `gorm:"column:updated_at"`
}

func (PaymentNotification) TableName() string {
	return "payment_notifications"
}

package repository

import (
	"context"
	"errors"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("NOTIFICATION_NOT_FOUND")

type NotificationRepository interface {
	Create(ctx context.Context, n *model.PaymentNotification) error
	UpdateStatus(ctx context.Context, id string, status model.NotificationStatus, mappedStatus, lastError *string) error
	ListByTrackingID(ctx context.Context, orderTrackingID string) ([]model.PaymentNotification, error)
}

type Notification struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &Notification{db: db}
}

func (n *Notification) Create(ctx context.Context, notification *model.PaymentNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}

	return GetTx(ctx, n.db).Create(notification).Error
}

func (n *Notification) UpdateStatus(ctx context.Context, id string, status model.NotificationStatus, mappedStatus, lastError *string) error {
	result := GetTx(ctx, n.db).Model(&model.PaymentNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"mapped_status": mappedStatus,
			"last_error":    lastError,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (n *Notification) ListByTrackingID(ctx context.Context, orderTrackingID string) ([]model.PaymentNotification, error) {
	var notifications []model.PaymentNotification

	err := GetTx(ctx, n.db).
		Where("order_tracking_id = ?", orderTrackingID).
		Order("created_at ASC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

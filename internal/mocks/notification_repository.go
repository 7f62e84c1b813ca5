package mocks

import (
	"context"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/stretchr/testify/mock"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, n *model.PaymentNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepository) UpdateStatus(ctx context.Context, id string, status model.NotificationStatus, mappedStatus, lastError *string) error {
	args := m.Called(ctx, id, status, mappedStatus, lastError)
	return args.Error(0)
}

func (m *NotificationRepository) ListByTrackingID(ctx context.Context, orderTrackingID string) ([]model.PaymentNotification, error) {
	args := m.Called(ctx, orderTrackingID)
	list, _ := args.Get(0).([]model.PaymentNotification)
	return list, args.Error(1)
}

package mocks

import (
	"context"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) SubmitOrder(ctx context.Context, cmd service.SubmitOrderCommand) (service.SubmitOrderResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.SubmitOrderResult), args.Error(1)
}

func (m *PaymentService) RegisterIPN(ctx context.Context, cmd service.RegisterIPNCommand) (pesapal.IPNRegistration, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(pesapal.IPNRegistration), args.Error(1)
}

type ReconcileService struct {
	mock.Mock
}

func (m *ReconcileService) GetStatus(ctx context.Context, orderTrackingID string) (pesapal.TransactionStatus, error) {
	args := m.Called(ctx, orderTrackingID)
	return args.Get(0).(pesapal.TransactionStatus), args.Error(1)
}

func (m *ReconcileService) Reconcile(ctx context.Context, applicationID string) (service.ReconcileResult, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}

func (m *ReconcileService) ReconcileByTrackingID(ctx context.Context, orderTrackingID string) (service.ReconcileResult, error) {
	args := m.Called(ctx, orderTrackingID)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}

func (m *ReconcileService) FindStale(ctx context.Context, olderThan, maxAge time.Duration, limit int) ([]service.ReconcileCommand, error) {
	args := m.Called(ctx, olderThan, maxAge, limit)
	commands, _ := args.Get(0).([]service.ReconcileCommand)
	return commands, args.Error(1)
}

type CallbackService struct {
	mock.Mock
}

func (m *CallbackService) HandleNotification(ctx context.Context, cmd service.NotificationCommand) (service.CallbackResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.CallbackResult), args.Error(1)
}

func (m *CallbackService) HandleRedirect(ctx context.Context, cmd service.NotificationCommand) (service.CallbackResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.CallbackResult), args.Error(1)
}

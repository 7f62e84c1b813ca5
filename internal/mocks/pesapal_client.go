package mocks

import (
	"context"

	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"github.com/stretchr/testify/mock"
)

type PesapalClient struct {
	mock.Mock
}

func (m *PesapalClient) SubmitOrder(ctx context.Context, request pesapal.OrderRequest) (pesapal.OrderResponse, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(pesapal.OrderResponse), args.Error(1)
}

func (m *PesapalClient) GetTransactionStatus(ctx context.Context, orderTrackingID string) (pesapal.TransactionStatus, error) {
	args := m.Called(ctx, orderTrackingID)
	return args.Get(0).(pesapal.TransactionStatus), args.Error(1)
}

func (m *PesapalClient) RegisterIPN(ctx context.Context, request pesapal.RegisterIPNRequest) (pesapal.IPNRegistration, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(pesapal.IPNRegistration), args.Error(1)
}

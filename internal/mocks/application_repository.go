package mocks

import (
	"context"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/stretchr/testify/mock"
)

type ApplicationRepository struct {
	mock.Mock
}

func (m *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	args := m.Called(ctx, id)
	app, _ := args.Get(0).(*model.Application)
	return app, args.Error(1)
}

func (m *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Application, error) {
	args := m.Called(ctx, id)
	app, _ := args.Get(0).(*model.Application)
	return app, args.Error(1)
}

func (m *ApplicationRepository) UpdatePayment(ctx context.Context, changes *model.Application) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

func (m *ApplicationRepository) FindStalePending(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Application, error) {
	args := m.Called(ctx, updatedBefore, createdAfter, limit)
	apps, _ := args.Get(0).([]model.Application)
	return apps, args.Error(1)
}

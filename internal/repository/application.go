package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrApplicationNotFound = errors.New("APPLICATION_NOT_FOUND")

type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetByIDForUpdate(ctx context.Context, id string) (*model.Application, error)
	UpdatePayment(ctx context.Context, changes *model.Application) error
	FindStalePending(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Application, error)
}

type Application struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &Application{db: db}
}

func (a *Application) GetByID(ctx context.Context, id string) (*model.Application, error) {
	return a.first(GetTx(ctx, a.db), id)
}

// GetByIDForUpdate locks the row for the rest of the surrounding transaction.
func (a *Application) GetByIDForUpdate(ctx context.Context, id string) (*model.Application, error) {
	return a.first(GetTx(ctx, a.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (a *Application) first(db *gorm.DB, id string) (*model.Application, error) {
	var app model.Application

	err := db.Where("id = ?", id).First(&app).Error
	if err == nil {
		return &app, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}

	return nil, err
}

// UpdatePayment writes the non-zero fields of changes to the row identified by
// changes.ID. Zero fields are left untouched.
func (a *Application) UpdatePayment(ctx context.Context, changes *model.Application) error {
	db := GetTx(ctx, a.db)
	return db.Model(&model.Application{}).Where("id = ?", changes.ID).Updates(changes).Error
}

func (a *Application) FindStalePending(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Application, error) {
	var apps []model.Application

	err := GetTx(ctx, a.db).
		Where("payment_status = ? AND updated_at < ? AND created_at > ?", model.PaymentStatusPending, updatedBefore, createdAfter).
		Where("message LIKE ?", "%orderTrackingId%").
		Order("updated_at ASC").
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}

	return apps, nil
}

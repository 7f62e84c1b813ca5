package service_test

import (
	"context"
	"testing"

	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/mocks"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/internal/testutil"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const callbackURL = "https://school.example/api/payment-callback"

type testEnv struct {
	db            *gorm.DB
	gateway       *mocks.PesapalClient
	txManager     repository.TxManager
	applications  repository.ApplicationRepository
	notifications repository.NotificationRepository
	cfg           *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)

	return &testEnv{
		db:            db,
		gateway:       &mocks.PesapalClient{},
		txManager:     repository.NewTransactionManager(db),
		applications:  repository.NewApplicationRepository(db),
		notifications: repository.NewNotificationRepository(db),
		cfg: &config.Config{
			Pesapal: pesapal.Config{
				CallbackURL: callbackURL,
				IPNID:       "ipn-1",
				CountryCode: "UG",
				City:        "Kampala",
			},
			Callback: config.Callback{IPNURL: callbackURL},
		},
	}
}

func (e *testEnv) paymentService() service.PaymentService {
	return service.NewPaymentService(e.gateway, e.txManager, e.applications, e.cfg, zap.NewNop(), nil)
}

func (e *testEnv) reconcileService() service.ReconcileService {
	return service.NewReconcileService(e.gateway, e.txManager, e.applications, zap.NewNop(), nil)
}

func (e *testEnv) callbackService() service.CallbackService {
	return service.NewCallbackService(e.reconcileService(), e.txManager, e.applications, e.notifications, e.cfg, zap.NewNop(), nil)
}

func (e *testEnv) load(t *testing.T, id string) *model.Application {
	t.Helper()

	app, err := e.applications.GetByID(context.Background(), id)
	require.NoError(t, err)
	return app
}

func errorCode(t *testing.T, err error) string {
	t.Helper()

	var serviceErr service.Error
	require.ErrorAs(t, err, &serviceErr)
	return serviceErr.Code
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

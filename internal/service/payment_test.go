package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/mocks"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/internal/testutil"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestPayment_SubmitOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates order and records it as pending", func(t *testing.T) {
		env := newTestEnv(t)
		testutil.SeedApplication(t, env.db, model.Application{
			ID:          "APP-1",
			StudentName: "Jane Nakato Doe",
			Email:       "parent@example.com",
			Phone:       "+256 (700) 123-456",
			Message:     datatypes.JSON("Looking forward to joining"),
		})

		env.gateway.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(r pesapal.OrderRequest) bool {
			return r.ID == "APP-1" &&
				r.Currency == "UGX" &&
				r.Amount == 50000 &&
				r.Description == "Application fee - Jane Nakato Doe" &&
				r.CallbackURL == callbackURL &&
				r.NotificationID == "ipn-1" &&
				r.BillingAddress.FirstName == "Jane" &&
				r.BillingAddress.LastName == "Nakato Doe" &&
				r.BillingAddress.PhoneNumber == "256700123456" &&
				r.BillingAddress.EmailAddress == "parent@example.com" &&
				r.BillingAddress.CountryCode == "UG" &&
				r.BillingAddress.City == "Kampala"
		})).Return(pesapal.OrderResponse{
			OrderTrackingID:   "T1",
			RedirectURL:       "https://pay.example/T1",
			MerchantReference: "APP-1",
		}, nil).Once()

		result, err := env.paymentService().SubmitOrder(ctx, service.SubmitOrderCommand{
			ApplicationID: "APP-1",
			Amount:        decimal.NewFromInt(50000),
			Currency:      "ugx",
		})
		require.NoError(t, err)
		assert.NoError(t, result.PersistenceWarning)
		assert.Equal(t, "T1", result.OrderTrackingID)
		assert.Equal(t, "https://pay.example/T1", result.RedirectURL)
		assert.Equal(t, "APP-1", result.MerchantReference)

		app := env.load(t, "APP-1")
		meta := app.Metadata()
		assert.Equal(t, model.PaymentStatusPending, app.PaymentStatus)
		assert.Equal(t, "T1", meta.String(model.MetaOrderTrackingID))
		assert.Equal(t, "APP-1", meta.String(model.MetaMerchantReference))
		assert.Equal(t, "pending", meta.String(model.MetaPaymentStatus))
		assert.Equal(t, "Application fee - Jane Nakato Doe", meta.String(model.MetaDescription))
		assert.NotEmpty(t, meta.String(model.MetaLastUpdated))
		assert.Equal(t, "Looking forward to joining", meta.String(model.MetaLegacyMessage))
		assert.Nil(t, app.PaymentDate)
		env.gateway.AssertExpectations(t)
	})

	t.Run("single word name is used as both names", func(t *testing.T) {
		env := newTestEnv(t)
		testutil.SeedApplication(t, env.db, model.Application{ID: "APP-2", StudentName: "Okello"})

		env.gateway.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(r pesapal.OrderRequest) bool {
			return r.BillingAddress.FirstName == "Okello" && r.BillingAddress.LastName == "Okello"
		})).Return(pesapal.OrderResponse{OrderTrackingID: "T2", MerchantReference: "APP-2"}, nil).Once()

		_, err := env.paymentService().SubmitOrder(ctx, service.SubmitOrderCommand{
			ApplicationID: "APP-2",
			Amount:        decimal.NewFromInt(1000),
			Currency:      "UGX",
		})
		require.NoError(t, err)
		env.gateway.AssertExpectations(t)
	})

	t.Run("long description is truncated", func(t *testing.T) {
		env := newTestEnv(t)
		testutil.SeedApplication(t, env.db, model.Application{ID: "APP-3", StudentName: "Amina"})

		env.gateway.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(r pesapal.OrderRequest) bool {
			return len(r.Description) == 100
		})).Return(pesapal.OrderResponse{OrderTrackingID: "T3", MerchantReference: "APP-3"}, nil).Once()

		_, err := env.paymentService().SubmitOrder(ctx, service.SubmitOrderCommand{
			ApplicationID: "APP-3",
			Amount:        decimal.NewFromInt(1000),
			Currency:      "UGX",
			Description:   strings.Repeat("x", 150),
		})
		require.NoError(t, err)
		env.gateway.AssertExpectations(t)
	})

	t.Run("invalid input is rejected before any gateway call", func(t *testing.T) {
		env := newTestEnv(t)
		svc := env.paymentService()

		for _, cmd := range []service.SubmitOrderCommand{
			{ApplicationID: "", Amount: decimal.NewFromInt(1000), Currency: "UGX"},
			{ApplicationID: "APP-1", Amount: decimal.Zero, Currency: "UGX"},
			{ApplicationID: "APP-1", Amount: decimal.NewFromInt(-5), Currency: "UGX"},
			{ApplicationID: "APP-1", Amount: decimal.NewFromInt(1000), Currency: " "},
		} {
			_, err := svc.SubmitOrder(ctx, cmd)
			assert.Equal(t, constants.ErrCodeValidationFailed, errorCode(t, err))
		}

		env.gateway.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
	})

	t.Run("unknown application", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.paymentService().SubmitOrder(ctx, service.SubmitOrderCommand{
			ApplicationID: "missing",
			Amount:        decimal.NewFromInt(1000),
			Currency:      "UGX",
		})
		assert.Equal(t, constants.ErrCodeApplicationNotFound, errorCode(t, err))
		env.gateway.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure leaves the record untouched", func(t *testing.T) {
		env := newTestEnv(t)
		testutil.SeedApplication(t, env.db, model.Application{ID: "APP-4", StudentName: "Jane Doe"})

		gatewayErr := &pesapal.Error{Kind: pesapal.ErrGateway, StatusCode: 200, Code: pesapal.ErrCodeMissingTrackingID}
		env.gateway.On("SubmitOrder", mock.Anything, mock.Anything).Return(pesapal.OrderResponse{}, gatewayErr).Once()

		_, err := env.paymentService().SubmitOrder(ctx, service.SubmitOrderCommand{
			ApplicationID: "APP-4",
			Amount:        decimal.NewFromInt(1000),
			Currency:      "UGX",
		})
		assert.Equal(t, constants.ErrCodeGatewayError, errorCode(t, err))
		assert.ErrorIs(t, err, pesapal.ErrGateway)

		app := env.load(t, "APP-4")
		assert.Empty(t, app.Message)
		assert.Empty(t, app.OrderTrackingID())
	})

	t.Run("credential errors are classified", func(t *testing.T) {
		tests := map[string]error{
			constants.ErrCodeAuthConfiguration: fmt.Errorf("%w: PESAPAL_CONSUMER_KEY is not set", pesapal.ErrAuthConfiguration),
			constants.ErrCodeAuthRequestFailed: &pesapal.Error{Kind: pesapal.ErrAuthRequest, StatusCode: 401},
		}

		for code, gatewayErr := range tests {
			env := newTestEnv(t)
			testutil.SeedApplication(t, env.db, model.Application{ID: "APP-5", StudentName: "Jane Doe"})
			env.gateway.On("SubmitOrder", mock.Anything, mock.Anything).Return(pesapal.OrderResponse{}, gatewayErr).Once()

			_, err := env.paymentService().SubmitOrder(ctx, service.SubmitOrderCommand{
				ApplicationID: "APP-5",
				Amount:        decimal.NewFromInt(1000),
				Currency:      "UGX",
			})
			assert.Equal(t, code, errorCode(t, err))
		}
	})

	t.Run("record write failure is a warning not an error", func(t *testing.T) {
		env := newTestEnv(t)
		applications := &mocks.ApplicationRepository{}
		txManager := &mocks.TxManager{}
		svc := service.NewPaymentService(env.gateway, txManager, applications, env.cfg, zap.NewNop(), nil)

		app := &model.Application{ID: "APP-6", StudentName: "Jane Doe"}
		applications.On("GetByID", mock.Anything, "APP-6").Return(app, nil).Once()
		applications.On("GetByIDForUpdate", mock.Anything, "APP-6").Return(nil, errors.New("database is locked")).Once()
		txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		env.gateway.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(pesapal.OrderResponse{OrderTrackingID: "T6", RedirectURL: "https://pay.example/T6", MerchantReference: "APP-6"}, nil).Once()

		result, err := svc.SubmitOrder(ctx, service.SubmitOrderCommand{
			ApplicationID: "APP-6",
			Amount:        decimal.NewFromInt(1000),
			Currency:      "UGX",
		})
		require.NoError(t, err)
		assert.Equal(t, "T6", result.OrderTrackingID)
		assert.EqualError(t, result.PersistenceWarning, "database is locked")
		applications.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything)
	})
}

func TestPayment_RegisterIPN(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the callback url and POST", func(t *testing.T) {
		env := newTestEnv(t)
		env.gateway.On("RegisterIPN", mock.Anything, pesapal.RegisterIPNRequest{
			URL:              callbackURL,
			NotificationType: pesapal.NotificationTypePost,
		}).Return(pesapal.IPNRegistration{IPNID: "ipn-9", URL: callbackURL}, nil).Once()

		registration, err := env.paymentService().RegisterIPN(ctx, service.RegisterIPNCommand{})
		require.NoError(t, err)
		assert.Equal(t, "ipn-9", registration.IPNID)
		env.gateway.AssertExpectations(t)
	})

	t.Run("rejects unknown notification type", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.paymentService().RegisterIPN(ctx, service.RegisterIPNCommand{NotificationType: "PUT"})
		assert.Equal(t, constants.ErrCodeValidationFailed, errorCode(t, err))
		env.gateway.AssertNotCalled(t, "RegisterIPN", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.gateway.On("RegisterIPN", mock.Anything, mock.Anything).
			Return(pesapal.IPNRegistration{}, &pesapal.Error{Kind: pesapal.ErrGateway, StatusCode: 500}).Once()

		_, err := env.paymentService().RegisterIPN(ctx, service.RegisterIPNCommand{URL: "https://other.example/ipn", NotificationType: "get"})
		assert.Equal(t, constants.ErrCodeGatewayError, errorCode(t, err))
	})
}

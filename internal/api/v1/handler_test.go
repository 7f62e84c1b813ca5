package v1_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Xebarter/Clevers-Website-sub000/internal/api"
	v1 "github.com/Xebarter/Clevers-Website-sub000/internal/api/v1"
	"github.com/Xebarter/Clevers-Website-sub000/internal/api/validator"
	"github.com/Xebarter/Clevers-Website-sub000/internal/config"
	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	apperrors "github.com/Xebarter/Clevers-Website-sub000/internal/errors"
	"github.com/Xebarter/Clevers-Website-sub000/internal/mocks"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/repository"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/Xebarter/Clevers-Website-sub000/internal/testutil"
	pkgmocks "github.com/Xebarter/Clevers-Website-sub000/pkg/mocks"
	"github.com/Xebarter/Clevers-Website-sub000/pkg/pesapal"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	payments   *mocks.PaymentService
	reconciler *mocks.ReconcileService
	callbacks  *mocks.CallbackService
}

func newApp(t *testing.T, payments service.PaymentService, reconciler service.ReconcileService, callbacks service.CallbackService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.ErrorHandler(zap.NewNop())})
	handler := v1.NewHandler(zap.NewNop(), payments, reconciler, callbacks, validator.NewXValidator(playground.New(), nil), nil)
	api.SetupRoutes(app, handler, nil, prometheus.NewRegistry())
	return app
}

func newMockedApp(t *testing.T) (*fiber.App, services) {
	t.Helper()

	s := services{
		payments:   &mocks.PaymentService{},
		reconciler: &mocks.ReconcileService{},
		callbacks:  &mocks.CallbackService{},
	}
	return newApp(t, s.payments, s.reconciler, s.callbacks), s
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandler_InitiatePayment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.payments.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(cmd service.SubmitOrderCommand) bool {
			return cmd.ApplicationID == "APP-1" && cmd.Amount.Equal(decimal.NewFromInt(50000)) && cmd.Currency == "UGX"
		})).Return(service.SubmitOrderResult{OrderTrackingID: "T1", RedirectURL: "https://pay.test/r", MerchantReference: "APP-1"}, nil).Once()

		status, body := do(t, app, jsonRequest("POST", "/api/initiate-payment", `{"applicationId":"APP-1","amount":50000,"currency":"UGX"}`))

		assert.Equal(t, 200, status)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "T1", body["orderTrackingId"])
		assert.Equal(t, "https://pay.test/r", body["redirectUrl"])
		assert.NotContains(t, body, "persistenceWarning")
		s.payments.AssertExpectations(t)
	})

	t.Run("persistence warning still succeeds", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.payments.On("SubmitOrder", mock.Anything, mock.Anything).
			Return(service.SubmitOrderResult{OrderTrackingID: "T1", MerchantReference: "APP-1", PersistenceWarning: errors.New("db down")}, nil).Once()

		status, body := do(t, app, jsonRequest("POST", "/api/initiate-payment", `{"applicationId":"APP-1","amount":"50000","currency":"UGX"}`))

		assert.Equal(t, 200, status)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, constants.ErrMsgPersistenceError, body["persistenceWarning"])
	})

	t.Run("invalid body never reaches the service", func(t *testing.T) {
		app, s := newMockedApp(t)

		status, body := do(t, app, jsonRequest("POST", "/api/initiate-payment", `{"applicationId":"APP-1","amount":0}`))

		assert.Equal(t, 400, status)
		assert.Equal(t, constants.ErrCodeValidationFailed, body["code"])
		s.payments.AssertNotCalled(t, "SubmitOrder", mock.Anything, mock.Anything)
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		tests := []struct {
			code   string
			status int
		}{
			{constants.ErrCodeApplicationNotFound, 404},
			{constants.ErrCodeAuthRequestFailed, 502},
			{constants.ErrCodeGatewayError, 502},
			{constants.ErrCodePersistenceError, 500},
		}

		for _, tt := range tests {
			t.Run(tt.code, func(t *testing.T) {
				app, s := newMockedApp(t)
				s.payments.On("SubmitOrder", mock.Anything, mock.Anything).
					Return(service.SubmitOrderResult{}, service.NewServiceError(tt.code, errors.New("cause"))).Once()

				status, body := do(t, app, jsonRequest("POST", "/api/initiate-payment", `{"applicationId":"APP-1","amount":50000,"currency":"UGX"}`))

				assert.Equal(t, tt.status, status)
				assert.Equal(t, tt.code, body["code"])
				assert.NotEmpty(t, body["error"])
			})
		}
	})
}

func TestHandler_InitiatePayment_MissingCredentials(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.SeedApplication(t, db, model.Application{ID: "APP-1", StudentName: "Jane Doe"})

	pesapalCfg := pesapal.Config{ConsumerSecret: "secret", BaseURL: "https://gateway.test/v3", CallbackURL: "https://school.test/cb"}
	httpClient := &pkgmocks.HTTPClient{}
	gateway := pesapal.NewClient(pesapalCfg, httpClient, pesapal.NewTokenManager(pesapalCfg, httpClient))

	payments := service.NewPaymentService(gateway, repository.NewTransactionManager(db), repository.NewApplicationRepository(db),
		&config.Config{Pesapal: pesapalCfg}, zap.NewNop(), nil)
	app := newApp(t, payments, &mocks.ReconcileService{}, &mocks.CallbackService{})

	status, body := do(t, app, jsonRequest("POST", "/api/initiate-payment", `{"applicationId":"APP-1","amount":50000,"currency":"UGX"}`))

	assert.Equal(t, 500, status)
	assert.Equal(t, constants.ErrCodeAuthConfiguration, body["code"])
	assert.Contains(t, body["details"], "PESAPAL_CONSUMER_KEY")
	httpClient.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	httpClient.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Checkout(t *testing.T) {
	app, s := newMockedApp(t)
	s.payments.On("SubmitOrder", mock.Anything, mock.MatchedBy(func(cmd service.SubmitOrderCommand) bool {
		return cmd.Description == "Nursery application"
	})).Return(service.SubmitOrderResult{OrderTrackingID: "T1", RedirectURL: "https://pay.test/r", MerchantReference: "APP-1"}, nil).Once()

	status, body := do(t, app, jsonRequest("POST", "/api/pesapal/checkout",
		`{"applicationId":"APP-1","amount":50000,"currency":"UGX","description":"Nursery application"}`))

	assert.Equal(t, 200, status)
	assert.Equal(t, "https://pay.test/r", body["redirectUrl"])
	assert.Equal(t, "APP-1", body["merchantReference"])
	assert.NotContains(t, body, "success")
}

func TestHandler_CheckPaymentStatus(t *testing.T) {
	t.Run("returns the gateway status", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.reconciler.On("ReconcileByTrackingID", mock.Anything, "T1").Return(service.ReconcileResult{
			ApplicationID:   "APP-1",
			OrderTrackingID: "T1",
			Status:          model.PaymentStatusCompleted,
			Transaction: pesapal.TransactionStatus{
				PaymentStatusDescription: "Completed",
				Raw:                      map[string]any{"payment_status_description": "Completed", "status_code": 1},
			},
			Persisted: true,
		}, nil).Once()

		status, body := do(t, app, httptest.NewRequest("GET", "/api/check-payment-status/T1", nil))

		assert.Equal(t, 200, status)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Completed", body["payment_status_description"])
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, map[string]any{"payment_status_description": "Completed", "status_code": float64(1)}, body["details"])
	})

	t.Run("gateway failure", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.reconciler.On("ReconcileByTrackingID", mock.Anything, "T1").
			Return(service.ReconcileResult{}, service.NewServiceError(constants.ErrCodeGatewayError, errors.New("GATEWAY_ERROR (http 500)"))).Once()

		status, body := do(t, app, httptest.NewRequest("GET", "/api/check-payment-status/T1", nil))

		assert.Equal(t, 502, status)
		assert.Equal(t, constants.ErrCodeGatewayError, body["code"])
	})
}

func TestHandler_PaymentCallback(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.callbacks.On("HandleNotification", mock.Anything, mock.MatchedBy(func(cmd service.NotificationCommand) bool {
			return cmd.Source == model.NotificationSourcePost &&
				cmd.Payload["OrderTrackingId"] == "T1" && cmd.Payload["OrderMerchantReference"] == "APP-1" &&
				!cmd.ReceivedAt.IsZero()
		})).Return(service.CallbackResult{
			ApplicationID:     "APP-1",
			OrderTrackingID:   "T1",
			MerchantReference: "APP-1",
			NotificationType:  "IPNCHANGE",
			Status:            model.PaymentStatusCompleted,
			Applied:           true,
		}, nil).Once()

		status, body := do(t, app, jsonRequest("POST", "/api/payment-callback",
			`{"OrderTrackingId":"T1","OrderMerchantReference":"APP-1","OrderNotificationType":"IPNCHANGE"}`))

		assert.Equal(t, 200, status)
		assert.Equal(t, "APP-1", body["applicationId"])
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "IPNCHANGE", body["orderNotificationType"])
		assert.NotEmpty(t, body["message"])
		s.callbacks.AssertExpectations(t)
	})

	t.Run("form body merged with query", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.callbacks.On("HandleNotification", mock.Anything, mock.MatchedBy(func(cmd service.NotificationCommand) bool {
			return cmd.Payload["OrderTrackingId"] == "T1" && cmd.Payload["OrderMerchantReference"] == "APP-1"
		})).Return(service.CallbackResult{ApplicationID: "APP-1", Applied: true}, nil).Once()

		req := httptest.NewRequest("POST", "/api/payment-callback?OrderMerchantReference=APP-1", strings.NewReader("OrderTrackingId=T1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		status, _ := do(t, app, req)
		assert.Equal(t, 200, status)
		s.callbacks.AssertExpectations(t)
	})

	t.Run("incomplete notification", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.callbacks.On("HandleNotification", mock.Anything, mock.Anything).
			Return(service.CallbackResult{}, service.NewServiceError(constants.ErrCodeValidationFailed, service.ErrIncompleteNotification)).Once()

		status, body := do(t, app, jsonRequest("POST", "/api/payment-callback", `{}`))

		assert.Equal(t, 400, status)
		assert.Equal(t, constants.ErrCodeValidationFailed, body["code"])
	})

	t.Run("get is acknowledged", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.callbacks.On("HandleRedirect", mock.Anything, mock.MatchedBy(func(cmd service.NotificationCommand) bool {
			return cmd.Source == model.NotificationSourceGet && cmd.Payload["OrderTrackingId"] == "T1"
		})).Return(service.CallbackResult{ApplicationID: "APP-1", OrderTrackingID: "T1", MerchantReference: "APP-1"}, nil).Once()

		status, body := do(t, app, httptest.NewRequest("GET", "/api/payment-callback?OrderTrackingId=T1&OrderMerchantReference=APP-1", nil))

		assert.Equal(t, 200, status)
		assert.Equal(t, "Payment callback acknowledged", body["message"])
		assert.NotContains(t, body, "status")
	})
}

func TestHandler_RegisterIPN(t *testing.T) {
	t.Run("empty body uses defaults", func(t *testing.T) {
		app, s := newMockedApp(t)
		s.payments.On("RegisterIPN", mock.Anything, service.RegisterIPNCommand{}).
			Return(pesapal.IPNRegistration{IPNID: "ipn-9", URL: "https://school.test/api/payment-callback", NotificationType: "POST"}, nil).Once()

		status, body := do(t, app, httptest.NewRequest("POST", "/api/pesapal/ipn", nil))

		assert.Equal(t, 200, status)
		assert.Equal(t, "ipn-9", body["ipn_id"])
	})

	t.Run("invalid url", func(t *testing.T) {
		app, s := newMockedApp(t)

		status, body := do(t, app, jsonRequest("POST", "/api/pesapal/ipn", `{"url":"not a url"}`))

		assert.Equal(t, 400, status)
		assert.Equal(t, constants.ErrCodeValidationFailed, body["code"])
		s.payments.AssertNotCalled(t, "RegisterIPN", mock.Anything, mock.Anything)
	})
}

func TestRoutes_Operational(t *testing.T) {
	app, _ := newMockedApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	status, body := do(t, app, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/Xebarter/Clevers-Website-sub000/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.RecordOrderSubmitted("success")
		m.RecordNotification("ipn_post")
		m.RecordReconciliation("poll", "completed")
		m.RecordDBQuery("select", "applications", "success", time.Millisecond)
		m.RecordGatewayRequest("submit_order", "success", time.Millisecond)
	})
}

func TestMetrics_Recording(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.RecordOrderSubmitted("success")
	m.RecordOrderSubmitted("success")
	m.RecordStatusChange("pending", "completed")
	m.RecordStatusChange("completed", "completed")
	m.RecordSweeperPublished(3)

	assert.Equal(t, float64(2), promtest.ToFloat64(m.OrdersSubmitted.WithLabelValues("success")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.PaymentStatusChanges.WithLabelValues("pending", "completed")))
	assert.Equal(t, 1, promtest.CollectAndCount(m.PaymentStatusChanges), "unchanged status is not a transition")
	assert.Equal(t, float64(3), promtest.ToFloat64(m.SweeperPublished))
}

func TestDatabaseMetricsCollector(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	collector := metrics.NewDatabaseMetricsCollector(m, zap.NewNop(), db)
	require.NoError(t, collector.RegisterCallbacks())

	testutil.SeedApplication(t, db, model.Application{ID: "APP-1"})

	var app model.Application
	require.NoError(t, db.Where("id = ?", "APP-1").First(&app).Error)
	require.Error(t, db.Where("id = ?", "missing").First(&app).Error)

	assert.Equal(t, float64(1), promtest.ToFloat64(m.DBQueriesTotal.WithLabelValues("insert", "applications", "success")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.DBQueriesTotal.WithLabelValues("select", "applications", "success")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.DBQueriesTotal.WithLabelValues("select", "applications", "not_found")))

	assert.NoError(t, collector.HealthCheck(context.Background()))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	app := fiber.New()
	app.Use(metrics.HTTPMetricsMiddleware(m, zap.NewNop()))
	app.Get("/health", metrics.HealthHandler(nil))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Equal(t, float64(1), promtest.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200")))
}

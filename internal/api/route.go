package api

import (
	v1 "github.com/Xebarter/Clevers-Website-sub000/internal/api/v1"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "/api/"

func SetupRoutes(app *fiber.App, handler *v1.Handler, health metrics.HealthChecker, gatherer prometheus.Gatherer) {
	app.Get("/ping", handler.Pong)
	app.Get("/health", metrics.HealthHandler(health))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Post(prefix+"initiate-payment", handler.InitiatePayment)
	app.Post(prefix+"pesapal/checkout", handler.Checkout)
	app.Post(prefix+"pesapal/ipn", handler.RegisterIPN)
	app.Get(prefix+"check-payment-status/:orderTrackingId", handler.CheckPaymentStatus)
	app.Post(prefix+"payment-callback", handler.PaymentCallback)
	app.Get(prefix+"payment-callback", handler.PaymentRedirect)
}

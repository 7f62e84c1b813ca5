package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HTTPMetricsMiddleware creates a middleware that collects HTTP metrics
func HTTPMetricsMiddleware(metrics *Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if metrics == nil {
			return c.Next()
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		err := c.Next()

		duration := time.Since(start)

		method := c.Method()
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())
		responseSize := len(c.Response().Body())

		metrics.RecordHTTPRequest(method, path, statusCode, duration, responseSize)

		if duration > time.Second {
			logger.Warn("Slow HTTP request",
				zap.String("method", method),
				zap.String("path", path),
				zap.String("status_code", statusCode),
				zap.Duration("duration", duration),
				zap.Int("response_size", responseSize),
			)
		}

		return err
	}
}

// HealthChecker is satisfied by DatabaseMetricsCollector.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler answers /health with the database reachability.
func HealthHandler(checker HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "admissions-payments",
			"version":   Version,
		}

		if checker != nil {
			if err := checker.HealthCheck(c.UserContext()); err != nil {
				body["status"] = "unhealthy"
				body["database"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(body)
			}
		}

		return c.Status(fiber.StatusOK).JSON(body)
	}
}

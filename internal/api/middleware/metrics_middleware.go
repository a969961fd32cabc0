package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/metrics"
)

// Metrics records timing and outcome for every request that reaches a
// handler, including failed ones.
func Metrics(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		collector.RecordAPICall(c.Path(), c.Method(), status < 400, time.Since(start))
		if status >= 500 {
			collector.RecordError("server_error", c.Method()+" "+c.Path())
		}
		return err
	}
}

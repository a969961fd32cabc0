package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/promura/backend/internal/metrics"
)

type MetricsHandler struct {
	collector *metrics.Collector
}

func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{collector: collector}
}

func (h *MetricsHandler) Dashboard(c *fiber.Ctx) error {
	return c.JSON(h.collector.Dashboard())
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lostfound-service/internal/service"
)

// StatsHandler serves dashboard statistics.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Summary GET /api/stats and /api/admin/stats.
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.stats.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

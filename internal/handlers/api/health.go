package api

import (
	"github.com/gofiber/fiber/v3"

	"frontdesk/internal/db"
)

// HealthHandler reports service and store health.
type HealthHandler struct {
	db *db.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(database *db.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Check pings the database. A lost store connection is the one fatal
// condition this service has, so it gets its own status code rather than
// blending into not-found responses.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	if err := h.db.Pool.Ping(c.Context()); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	return jsonSuccess(c, fiber.Map{"database": "ok"})
}

package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/nikoh-backend/internal/tariff"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	catalog *tariff.Catalog
	ping    func() error
}

func NewHealthHandler(catalog *tariff.Catalog) *HealthHandler {
	return &HealthHandler{catalog: catalog, ping: database.Ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		TariffCount: len(h.catalog.All()),
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?productId=
// Unknown products report OUT_OF_STOCK.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	avail, err := h.Inv.CheckAvailability(productID)
	if err != nil {
		log.Error(c, "availability.fail", err, map[string]any{"product": productID})
		return jsonError(c, fiber.StatusInternalServerError, "could not check availability")
	}
	return c.JSON(fiber.Map{
		"productId": productID,
		"status":    avail.Status,
		"qty":       avail.Qty,
	})
}

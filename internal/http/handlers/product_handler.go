package handlers

import (
	"snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

const goneMessage = "This item is no longer available"

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return jsonError(c, fiber.StatusNotFound, goneMessage)
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil || p.ID == "" {
		return jsonError(c, fiber.StatusNotFound, goneMessage)
	}
	return c.JSON(p)
}

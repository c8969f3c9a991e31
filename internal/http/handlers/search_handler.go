package handlers

import (
	"strings"

	"snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products?q=&category=&page=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	q := ""
	if strings.TrimSpace(rawQ) != "" {
		var ok bool
		q, ok = validate.Q(rawQ)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return jsonError(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
		}
	}
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.ID(category); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return jsonError(c, fiber.StatusBadRequest, "Invalid category")
		}
	}
	page := c.QueryInt("page", 1)

	products, err := h.Catalog.Search(q, category, page, 24)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Could not load results. Please retry.")
	}
	return c.JSON(fiber.Map{"q": q, "category": category, "products": products, "count": len(products)})
}

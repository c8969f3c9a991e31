package handlers

import (
	"snackstack/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

// GET /api/v1/packs
func (h *CategoryHandler) Packs(c *fiber.Ctx) error {
	packs, err := h.Catalog.VarietyPacks()
	if err != nil {
		return err
	}
	return c.JSON(packs)
}

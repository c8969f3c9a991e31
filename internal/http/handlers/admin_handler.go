package handlers

import (
	"errors"

	applog "snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Nudges *services.NudgeService
	Inv    *services.InventoryService
}

// GET /api/v1/admin/nudges
func (h *AdminHandler) NudgeReport(c *fiber.Ctx) error {
	rep, err := h.Nudges.Report()
	if err != nil {
		applog.Error(c, "admin.nudges.report.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Could not load the nudge report")
	}
	return c.JSON(rep)
}

// GET /api/v1/admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	rows, err := h.Inv.List()
	if err != nil {
		applog.Error(c, "admin.inventory.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Could not load inventory")
	}
	return c.JSON(rows)
}

type stockRequest struct {
	ProductID string `json:"productId"`
	Qty       *int   `json:"qty"`
}

// POST /api/v1/admin/inventory
func (h *AdminHandler) UpdateInventory(c *fiber.Ctx) error {
	var req stockRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid input")
	}
	pid, okID := validate.ID(req.ProductID)
	if !okID || req.Qty == nil || *req.Qty < 0 {
		applog.Security(c, "validation.fail", map[string]any{"field": "inventory"})
		return jsonError(c, fiber.StatusBadRequest, "invalid input")
	}
	err := h.Inv.SetStock(pid, *req.Qty)
	if errors.Is(err, services.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, goneMessage)
	}
	if err != nil {
		applog.Error(c, "admin.inventory.save.fail", err, map[string]any{"product": pid, "qty": *req.Qty})
		return jsonError(c, fiber.StatusBadRequest, "could not save inventory")
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": pid, "qty": *req.Qty})
	return c.JSON(fiber.Map{"productId": pid, "qty": *req.Qty})
}

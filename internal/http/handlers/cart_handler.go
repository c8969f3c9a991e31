package handlers

import (
	"errors"

	"snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart   *services.CartService
	Engine *services.EngineService
}

type cartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// POST /api/v1/cart is the shopper's own add-to-cart. The reply carries
// the nudge it may have opened (the bundle upsell).
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req cartRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return jsonError(c, fiber.StatusBadRequest, "missing productId")
	}
	qty := validate.ClampQty(req.Quantity)

	_, err := h.Engine.AddToCart(sid, productID, qty)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, goneMessage)
	case errors.Is(err, services.ErrOutOfStock):
		return jsonError(c, fiber.StatusConflict, "This item is out of stock")
	case err != nil:
		return err
	}
	cv, err := h.Cart.View(sid)
	if err != nil {
		return err
	}
	s := h.Engine.Session(sid)
	return c.JSON(fiber.Map{"cart": cv, "nudge": s.Active()})
}

// GET /api/v1/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(sid)
	if err != nil {
		return err
	}
	return c.JSON(cv)
}

// PATCH /api/v1/cart/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product")
	}
	var req cartRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	qty := req.Quantity
	if qty > 50 {
		qty = 50
	}
	err := h.Cart.UpdateQuantity(sid, productID, qty)
	if errors.Is(err, services.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "item not in cart")
	}
	if err != nil {
		return err
	}
	return h.View(c)
}

// DELETE /api/v1/cart/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product")
	}
	if err := h.Cart.Remove(sid, productID); err != nil {
		return err
	}
	return h.View(c)
}

// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Cart.Clear(sid); err != nil {
		return err
	}
	return h.View(c)
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"snackstack/internal/domain"
	applog "snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"
)

// UserHandler serves the user contract: profile, order history and the
// nudge telemetry sink.
type UserHandler struct {
	Auth   *services.AuthService
	Orders *services.OrderService
	Nudges *services.NudgeService
}

// GET /api/v1/user/me (behind RequireUser)
func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Please sign in")
	}
	return c.JSON(u.Profile())
}

// GET /api/v1/user/:email
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	email, ok := validate.Email(c.Params("email"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return jsonError(c, fiber.StatusBadRequest, "invalid email")
	}
	p, err := h.Auth.Profile(email)
	if errors.Is(err, services.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// GET /api/v1/user/orders/email/:email
func (h *UserHandler) OrderHistory(c *fiber.Ctx) error {
	email, ok := validate.Email(c.Params("email"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return jsonError(c, fiber.StatusBadRequest, "invalid email")
	}
	orders, err := h.Orders.History(email)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

type nudgeRequest struct {
	UserEmail   string `json:"userEmail"`
	ProductName string `json:"productName"`
	NudgeType   string `json:"nudgeType"`
}

// nudgeEmail names the customer a telemetry report is about.
func nudgeEmail(c *fiber.Ctx) string {
	var req nudgeRequest
	if err := c.BodyParser(&req); err != nil {
		return ""
	}
	return req.UserEmail
}

// POST /api/v1/user/nudge
func (h *UserHandler) ReceiveNudge(c *fiber.Ctx) error {
	var req nudgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid body"})
	}
	email, okEmail := validate.Email(req.UserEmail)
	name, okName := validate.ProductName(req.ProductName)
	if !okEmail || !okName {
		applog.Security(c, "validation.fail", map[string]any{"field": "nudge"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid nudge"})
	}
	err := h.Nudges.Receive(email, name, req.NudgeType)
	if errors.Is(err, services.ErrUnknownNudgeType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "unknown nudge type"})
	}
	if err != nil {
		return err
	}
	applog.Info(c, "nudge.telemetry.recv", map[string]any{"email": email, "type": req.NudgeType})
	return c.JSON(fiber.Map{"success": true, "message": "Nudge recorded"})
}

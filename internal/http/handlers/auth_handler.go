package handlers

import (
	"context"
	"time"

	"snackstack/internal/log"
	"snackstack/internal/services"
	"snackstack/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const badCredentials = "Invalid email or password"

type AuthHandler struct {
	Auth   *services.AuthService
	Engine *services.EngineService
	// Spawn runs the engine login off the request path; nil means a new
	// goroutine.
	Spawn func(func())
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/user/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": badCredentials})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": badCredentials})
	}
	if !validate.Password(req.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": badCredentials})
	}

	u, err := h.Auth.Login(sid, email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": badCredentials})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": u.Email})
	if h.Engine != nil {
		spawn := h.Spawn
		if spawn == nil {
			spawn = func(f func()) { go f() }
		}
		userEmail := u.Email
		spawn(func() { h.Engine.Login(context.Background(), sid, userEmail) })
	}
	return c.JSON(fiber.Map{"success": true, "message": "Login successful"})
}

// POST /api/v1/user/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	if h.Engine != nil {
		h.Engine.Logout(sid)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"snackstack/internal/apiclient"
	"snackstack/internal/domain"
	applog "snackstack/internal/log"
	"snackstack/internal/services"
)

const signInMessage = "Please sign in"

// sessionUser resolves the sid cookie to a signed-in user.
func sessionUser(c *fiber.Ctx, auth *services.AuthService) (*domain.User, bool) {
	sid := c.Cookies("sid")
	if sid == "" {
		return nil, false
	}
	u, err := auth.CurrentUser(sid)
	return u, err == nil && u != nil
}

// RequireUser stores the signed-in user under Locals("user") or answers 401.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := sessionUser(c, auth)
		if !ok {
			return jsonError(c, fiber.StatusUnauthorized, signInMessage)
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireAdmin answers 401 without a session cookie and 403 for any
// session that is not an ADMIN.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies("sid") == "" {
			return jsonError(c, fiber.StatusUnauthorized, signInMessage)
		}
		u, ok := sessionUser(c, auth)
		if !ok || !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return jsonError(c, fiber.StatusForbidden, "Access denied")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireCustomer guards endpoints about one customer. emailOf names that
// customer for the request. A matching service token passes; otherwise the
// caller must be signed in as that customer or as an ADMIN.
func RequireCustomer(auth *services.AuthService, serviceToken string, emailOf func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := c.Get(apiclient.ServiceTokenHeader); tok != "" {
			if serviceToken != "" && subtle.ConstantTimeCompare([]byte(tok), []byte(serviceToken)) == 1 {
				return c.Next()
			}
			applog.Security(c, "access.denied.token", nil)
			return jsonError(c, fiber.StatusForbidden, "Access denied")
		}
		u, ok := sessionUser(c, auth)
		if !ok {
			return jsonError(c, fiber.StatusUnauthorized, signInMessage)
		}
		want := strings.TrimSpace(emailOf(c))
		if !u.IsAdmin() && !strings.EqualFold(want, u.Email) {
			applog.Security(c, "access.denied.user", map[string]any{"email": u.Email, "target": want})
			return jsonError(c, fiber.StatusForbidden, "Access denied")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "snackstack/internal/log"
)

// Limits caps the sensitive endpoints per client IP.
type Limits struct {
	LoginMax     int
	LoginWindow  time.Duration
	AvailMax     int
	AvailWindow  time.Duration
	EventsMax    int
	EventsWindow time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		LoginMax:     5,
		LoginWindow:  10 * time.Minute,
		AvailMax:     15,
		AvailWindow:  30 * time.Second,
		EventsMax:    600,
		EventsWindow: time.Minute,
	}
}

func routeLimiter(name string, max int, window time.Duration, reached func(*fiber.Ctx) error) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+name+".hit", nil)
			return reached(c)
		},
	})
}

// Register mounts the JSON API on app.
func Register(app *fiber.App, d *Deps, l Limits) {
	api := app.Group("/api/v1")

	// User contract
	api.Post("/user/login", routeLimiter("login", l.LoginMax, l.LoginWindow, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "message": "Too many attempts. Please try again later."})
	}), d.AuthHandler.Login)
	api.Post("/user/logout", d.AuthHandler.Logout)
	api.Get("/user/me", RequireUser(d.Auth), d.UserHandler.Me)
	byPath := func(c *fiber.Ctx) string { return c.Params("email") }
	api.Get("/user/orders/email/:email", RequireCustomer(d.Auth, d.ServiceToken, byPath), d.UserHandler.OrderHistory)
	api.Post("/user/nudge", RequireCustomer(d.Auth, d.ServiceToken, nudgeEmail), d.UserHandler.ReceiveNudge)
	api.Get("/user/:email", RequireCustomer(d.Auth, d.ServiceToken, byPath), d.UserHandler.Profile)

	// Catalog
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/packs", d.CategoryHandler.Packs)
	api.Get("/products", d.SearchHandler.Search)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/availability", routeLimiter("availability", l.AvailMax, l.AvailWindow, func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
	}), d.InventoryHandler.Check)

	// Cart
	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart", d.CartHandler.Add)
	api.Patch("/cart/:id", d.CartHandler.Update)
	api.Delete("/cart/:id", d.CartHandler.Remove)
	api.Delete("/cart", d.CartHandler.Clear)

	// Nudge engine
	nudges := api.Group("/nudges")
	nudges.Post("/events", routeLimiter("events", l.EventsMax, l.EventsWindow, func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusTooManyRequests, "slow down")
	}), d.NudgeHandler.Events)
	nudges.Get("/active", d.NudgeHandler.Active)
	nudges.Post("/actions", d.NudgeHandler.Act)
	nudges.Delete("/session", d.NudgeHandler.Teardown)

	// Admin
	admin := api.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/nudges", d.AdminHandler.NudgeReport)
	admin.Get("/inventory", d.AdminHandler.Inventory)
	admin.Post("/inventory", d.AdminHandler.UpdateInventory)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "sessions": d.Engine.Len()})
	})
	app.Use(func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusNotFound, "Not found")
	})
}

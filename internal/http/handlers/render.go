package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "snackstack/internal/log"
)

const friendlyError = "Something went wrong. Please try again."

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler logs the real error and answers with a generic message. Only
// client errors raised with fiber.NewError keep their text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := friendlyError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	return jsonError(c, code, msg)
}

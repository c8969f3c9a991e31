package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"snackstack/internal/domain"
	applog "snackstack/internal/log"
	"snackstack/internal/nudge"
	"snackstack/internal/services"
	"snackstack/internal/validate"
)

const maxEventBatch = 100

type NudgeHandler struct {
	Engine *services.EngineService
}

// eventsRequest accepts one event or a batch under "events".
type eventsRequest struct {
	nudge.Event
	Events []nudge.Event `json:"events"`
}

// POST /api/v1/nudges/events
func (h *NudgeHandler) Events(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req eventsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	events := req.Events
	if len(events) == 0 && req.Type != "" {
		events = []nudge.Event{req.Event}
	}
	if len(events) == 0 || len(events) > maxEventBatch {
		return jsonError(c, fiber.StatusBadRequest, "send between 1 and 100 events")
	}

	for i := range events {
		id, ok := validate.OptionalID(events[i].ProductID)
		if !ok || !validate.Coord(events[i].X) || !validate.Coord(events[i].Y) {
			applog.Security(c, "validation.fail", map[string]any{"field": "event", "index": i})
			return jsonError(c, fiber.StatusBadRequest, "invalid event")
		}
		events[i].ProductID = id
	}

	s := h.Engine.Session(sid)
	absorbed := false
	for _, ev := range events {
		a, err := s.Handle(ev)
		if errors.Is(err, nudge.ErrUnknownEvent) {
			applog.Security(c, "validation.fail", map[string]any{"field": "event", "value": string(ev.Type)})
			return jsonError(c, fiber.StatusBadRequest, "unknown event type")
		}
		if errors.Is(err, nudge.ErrClosed) {
			return jsonError(c, fiber.StatusGone, "session closed")
		}
		if err != nil {
			return err
		}
		absorbed = absorbed || a
	}
	return c.JSON(fiber.Map{"absorbed": absorbed, "nudge": s.Active()})
}

// GET /api/v1/nudges/active reports kind "none" for sessions the engine
// is not running; it never starts one.
func (h *NudgeHandler) Active(c *fiber.Ctx) error {
	s, ok := h.Engine.Lookup(c.Cookies("sid"))
	if !ok {
		return c.JSON(nudge.View{Kind: domain.None.String()})
	}
	return c.JSON(s.Active())
}

// POST /api/v1/nudges/actions
func (h *NudgeHandler) Act(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var a nudge.Action
	if err := c.BodyParser(&a); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	id, ok := validate.OptionalID(a.ProductID)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return jsonError(c, fiber.StatusBadRequest, "invalid productId")
	}
	a.ProductID = id
	s, ok := h.Engine.Lookup(sid)
	if !ok {
		return jsonError(c, fiber.StatusConflict, "no active nudge")
	}
	res, err := s.Act(a)
	switch {
	case errors.Is(err, nudge.ErrNoActiveNudge), errors.Is(err, nudge.ErrKindMismatch):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, nudge.ErrUnknownAction), errors.Is(err, nudge.ErrUnknownProduct):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, nudge.ErrClosed):
		return jsonError(c, fiber.StatusGone, "session closed")
	case err != nil:
		return err
	}
	applog.Info(c, "nudge.action", map[string]any{"action": string(a.Name), "closed": res.Closed})
	return c.JSON(fiber.Map{"result": res, "nudge": s.Active()})
}

// DELETE /api/v1/nudges/session tears the engine down for this browser
// session. The next event starts a fresh one.
func (h *NudgeHandler) Teardown(c *fiber.Ctx) error {
	sid := ensureSID(c)
	h.Engine.Close(sid)
	return c.SendStatus(fiber.StatusNoContent)
}

// Package log writes one JSON object per line through the standard library
// logger, so the destination is whatever log.SetOutput last installed.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelAudit Level = "audit"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type request struct {
	ID     string `json:"id,omitempty"`
	IP     string `json:"ip,omitempty"`
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	Status int    `json:"status,omitempty"`
}

type entry struct {
	TS      string         `json:"ts"`
	Level   Level          `json:"level"`
	Action  string         `json:"action"`
	Session string         `json:"session_id,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Req     *request       `json:"req,omitempty"`
	Err     string         `json:"err,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func requestOf(c *fiber.Ctx) *request {
	r := &request{
		IP:     c.IP(),
		Method: c.Method(),
		Path:   c.Path(),
		Status: c.Response().StatusCode(),
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		r.ID = rid
	}
	return r
}

// write emits one line. c is nil for engine and timer events; those name
// their session in fields["session"]. A "kind" field is lifted to the top
// level so nudge lines can be filtered without digging into fields.
func write(level Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{
		TS:     time.Now().UTC().Format(time.RFC3339),
		Level:  level,
		Action: action,
		Fields: fields,
	}
	if c != nil {
		e.Req = requestOf(c)
		e.Session = c.Cookies("sid")
	}
	if sid, ok := fields["session"].(string); ok && e.Session == "" {
		e.Session = sid
	}
	if k, ok := fields["kind"].(string); ok {
		e.Kind = k
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelInfo, c, action, nil, fields)
}

// Audit records state changes made by an operator.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelAudit, c, action, nil, fields)
}

// Security records rejected or throttled requests. It shares the warn level.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelWarn, c, action, nil, fields)
}

// Warn is for degraded but non-fatal paths (best-effort storage, telemetry).
func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(LevelWarn, c, action, err, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(LevelError, c, action, err, fields)
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"snackstack/internal/config"
	"snackstack/internal/http/handlers"
	"snackstack/internal/nudge"
	"snackstack/internal/repos"
)

type testApp struct {
	app   *fiber.App
	deps  *handlers.Deps
	db    *sqlx.DB
	clock *nudge.ManualScheduler
}

func roomyLimits() handlers.Limits {
	l := handlers.DefaultLimits()
	l.LoginMax = 100
	l.AvailMax = 100
	return l
}

// newTestApp wires the real routes over an in-memory database with a
// manual clock. Engine logins run inline so tests can advance time right
// after the login request returns. opts adjust the config before wiring.
func newTestApp(t *testing.T, limits handlers.Limits, opts ...func(*config.Config)) testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", Nudge: nudge.DefaultConfig()}
	for _, o := range opts {
		o(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	deps := handlers.NewDeps(db, cfg)
	clock := nudge.NewManualScheduler(time.Now())
	deps.Engine.Scheduler = clock
	deps.AuthHandler.Spawn = func(f func()) { f() }
	t.Cleanup(deps.Engine.CloseAll)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB
	app.Use(requestid.New())
	handlers.Register(app, deps, limits)
	return testApp{app: app, deps: deps, db: db, clock: clock}
}

func (ta testApp) do(t *testing.T, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// login signs sid in as email with the seeded password.
func (ta testApp) login(t *testing.T, sid, email string) {
	t.Helper()
	resp := ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": email, "password": "Passw0rd!"}, sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	raw := buf.String()
	mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

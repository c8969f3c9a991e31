package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"snackstack/internal/http/handlers"
	"snackstack/internal/repos"
)

// Seeded passwords are stored as bcrypt hashes, never plaintext.
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

type statusBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	l := handlers.DefaultLimits()
	l.LoginMax = 2
	l.LoginWindow = time.Minute
	ta := newTestApp(t, l)

	bad := ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": "alice@snackstack.test", "password": "Wrongpass1!"}, "sid-1")
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", bad.StatusCode)
	}
	if b := decode[statusBody](t, bad); b.Success || b.Message != "Invalid email or password" {
		t.Fatalf("unexpected body %+v", b)
	}

	good := ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": "alice@snackstack.test", "password": "Passw0rd!"}, "sid-1")
	if good.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on success, got %d", good.StatusCode)
	}
	if b := decode[statusBody](t, good); !b.Success {
		t.Fatalf("unexpected body %+v", b)
	}

	// throttle after 2 attempts
	third := ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": "alice@snackstack.test", "password": "Passw0rd!"}, "sid-1")
	if third.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", third.StatusCode)
	}
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	ta := newTestApp(t, roomyLimits())
	resp := ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": "bob@snackstack.test", "password": "Passw0rd!"}, "")
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie missing")
	}
	me := ta.do(t, "GET", "/api/v1/user/me", nil, sid)
	if me.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for /me, got %d", me.StatusCode)
	}
	if p := decode[map[string]string](t, me); p["firstName"] != "Bob" {
		t.Fatalf("unexpected profile %v", p)
	}

	out := ta.do(t, "POST", "/api/v1/user/logout", nil, sid)
	if out.StatusCode != http.StatusOK {
		t.Fatalf("logout: %d", out.StatusCode)
	}
	if me := ta.do(t, "GET", "/api/v1/user/me", nil, sid); me.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", me.StatusCode)
	}
}

func TestLoginStartsReplenishmentReminder(t *testing.T) {
	ta := newTestApp(t, roomyLimits())
	ta.login(t, "sid-alice", "alice@snackstack.test")

	ta.clock.Advance(5 * time.Second)
	v := decode[map[string]any](t, ta.do(t, "GET", "/api/v1/nudges/active", nil, "sid-alice"))
	if v["kind"] != "replenishment" {
		t.Fatalf("want replenishment after the login delay, got %v", v["kind"])
	}
	items := v["payload"].(map[string]any)["items"].([]any)
	first := items[0].(map[string]any)
	if first["urgency"] != "high" || first["message"] != "Running low!" {
		t.Fatalf("unexpected first item %v", first)
	}

	// Logging out before the delay cancels the reminder.
	ta.login(t, "sid-alice-2", "alice@snackstack.test")
	ta.do(t, "POST", "/api/v1/user/logout", nil, "sid-alice-2")
	ta.clock.Advance(5 * time.Second)
	if s, ok := ta.deps.Engine.Lookup("sid-alice-2"); !ok || s.Active().Kind != "none" {
		t.Fatal("logout must cancel the pending reminder")
	}
}

func TestDismissedReminderStaysDismissedAfterRelogin(t *testing.T) {
	ta := newTestApp(t, roomyLimits())
	ta.login(t, "sid-first", "alice@snackstack.test")
	ta.clock.Advance(5 * time.Second)
	if v := decode[map[string]any](t, ta.do(t, "GET", "/api/v1/nudges/active", nil, "sid-first")); v["kind"] != "replenishment" {
		t.Fatalf("want replenishment before dismissing, got %v", v["kind"])
	}
	if resp := ta.do(t, "POST", "/api/v1/nudges/actions", map[string]any{"action": "dismiss"}, "sid-first"); resp.StatusCode != http.StatusOK {
		t.Fatalf("dismiss: %d", resp.StatusCode)
	}
	ta.do(t, "POST", "/api/v1/user/logout", nil, "sid-first")

	// Signing in again without a cookie gets a brand new session id.
	resp := ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": "alice@snackstack.test", "password": "Passw0rd!"}, "")
	sid := extractCookie(resp, "sid")
	if sid == "" || sid == "sid-first" {
		t.Fatalf("want a fresh sid, got %q", sid)
	}
	ta.clock.Advance(5 * time.Second)
	if v := decode[map[string]any](t, ta.do(t, "GET", "/api/v1/nudges/active", nil, sid)); v["kind"] == "replenishment" {
		t.Fatal("a dismissed reminder must not return within the cooldown after logging in again")
	}
}

package handlers_test

import (
	"testing"
	"time"
)

func TestAuthEventsAreLogged(t *testing.T) {
	ta := newTestApp(t, roomyLimits())

	entries := captureLogs(t, func() {
		ta.do(t, "POST", "/api/v1/user/login", map[string]string{"email": "alice@snackstack.test", "password": "Wrongpass1!"}, "sid-1")
		ta.login(t, "sid-1", "alice@snackstack.test")
		ta.do(t, "POST", "/api/v1/user/logout", nil, "sid-1")
	})
	for _, action := range []string{"auth.login.fail", "auth.login.success", "auth.logout"} {
		if _, ok := findLog(entries, action); !ok {
			t.Fatalf("expected %s log", action)
		}
	}
	for _, e := range entries {
		for _, v := range e.Fields {
			if s, ok := v.(string); ok && s == "Passw0rd!" {
				t.Fatalf("password leaked into %s", e.Action)
			}
		}
	}
}

func TestNudgeLifecycleIsLogged(t *testing.T) {
	ta := newTestApp(t, roomyLimits())
	ta.do(t, "POST", "/api/v1/nudges/events", map[string]any{"type": "page_view", "productId": "3"}, "sid-1")

	entries := captureLogs(t, func() {
		ta.do(t, "POST", "/api/v1/nudges/events", map[string]any{"type": "viewport_leave", "y": -2}, "sid-1")
		ta.do(t, "POST", "/api/v1/nudges/actions", map[string]any{"action": "dismiss"}, "sid-1")
		ta.clock.Advance(time.Second)
	})
	show, ok := findLog(entries, "nudge.show")
	if !ok || show.Fields["kind"] != "exit" || show.Fields["session"] != "sid-1" {
		t.Fatalf("expected nudge.show for the exit nudge, got %+v", entries)
	}
	closed, ok := findLog(entries, "nudge.close")
	if !ok || closed.Fields["outcome"] != "dismissed" {
		t.Fatalf("expected nudge.close dismissed, got %+v", entries)
	}
	if _, ok := findLog(entries, "exit.signal"); !ok {
		t.Fatal("expected exit.signal log")
	}
}

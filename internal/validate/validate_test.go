package validate

import (
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	if got, ok := Email("  alice@snackstack.test "); !ok || got != "alice@snackstack.test" {
		t.Fatalf("trimmed email rejected: %q %v", got, ok)
	}
	for _, bad := range []string{"", "alice", "alice@", "a@b", strings.Repeat("a", 80) + "@x.io"} {
		if _, ok := Email(bad); ok {
			t.Errorf("accepted %q", bad)
		}
	}
}

func TestQ(t *testing.T) {
	if got, ok := Q("Lay's"); !ok || got != "Lay's" {
		t.Fatalf("brand with apostrophe rejected: %q", got)
	}
	if _, ok := Q("jalapeño"); !ok {
		t.Fatal("non-ASCII letters should pass")
	}
	if got, ok := Q(strings.Repeat("x", 80)); !ok || len(got) != 50 {
		t.Fatalf("long query should be cut to 50, got %d", len(got))
	}
	for _, bad := range []string{"   ", "<script>", "chips; DROP"} {
		if _, ok := Q(bad); ok {
			t.Errorf("accepted %q", bad)
		}
	}
}

func TestClampQty(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 7: 7, 50: 50, 51: 50}
	for in, want := range cases {
		if got := ClampQty(in); got != want {
			t.Errorf("ClampQty(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestIDs(t *testing.T) {
	if _, ok := ID("vp-1_a"); !ok {
		t.Fatal("plain id rejected")
	}
	if _, ok := ID(""); ok {
		t.Fatal("empty id accepted")
	}
	if _, ok := ID("../1"); ok {
		t.Fatal("path id accepted")
	}
	if got, ok := OptionalID("  "); !ok || got != "" {
		t.Fatal("blank optional id should pass as empty")
	}
	if _, ok := OptionalID("a b"); ok {
		t.Fatal("optional id with space accepted")
	}
}

func TestCoord(t *testing.T) {
	if !Coord(-2) || !Coord(1920) {
		t.Fatal("ordinary coordinates rejected")
	}
	if Coord(1e9) {
		t.Fatal("absurd coordinate accepted")
	}
}

func TestPassword(t *testing.T) {
	if !Password("Passw0rd!") {
		t.Fatal("seed password rejected")
	}
	for _, bad := range []string{"short1!", "alllowercase1!", "NoDigits!!", "NoSymbol123", strings.Repeat("Aa1!", 6)} {
		if Password(bad) {
			t.Errorf("accepted %q", bad)
		}
	}
}

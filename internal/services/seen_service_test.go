package services_test

import (
	"testing"
	"time"

	"snackstack/internal/repos"
	"snackstack/internal/services"
)

func TestSeenService_UpsellRoundTrip(t *testing.T) {
	db := memdb(t)
	svc := services.NewSeenService(repos.NewStateRepo(db), 0)

	if svc.HasSeenUpsell("sid-1", "3") {
		t.Fatal("nothing marked yet")
	}
	svc.MarkUpsellSeen("sid-1", "3")
	if !svc.HasSeenUpsell("sid-1", "3") {
		t.Fatal("want product 3 seen")
	}
	if svc.HasSeenUpsell("sid-1", "4") {
		t.Fatal("unmarked product must read as not seen")
	}
	if svc.HasSeenUpsell("sid-2", "3") {
		t.Fatal("seen state is per browser session")
	}
}

func TestSeenService_CorruptedDocumentReadsNotSeen(t *testing.T) {
	db := memdb(t)
	state := repos.NewStateRepo(db)
	svc := services.NewSeenService(state, 0)

	if err := state.Put("sid-1", "upsellSeen", `{"3": tru`); err != nil {
		t.Fatal(err)
	}
	if svc.HasSeenUpsell("sid-1", "3") {
		t.Fatal("corrupted JSON must read as not seen")
	}
	if err := state.Put("sid-1", "replenishmentNudgeSeen", `null`); err != nil {
		t.Fatal(err)
	}
	if svc.RecentlySeenReplenishment("sid-1", "3", time.Now()) {
		t.Fatal("null document must read as not seen")
	}

	// Marking again replaces the broken document.
	svc.MarkUpsellSeen("sid-1", "5")
	if !svc.HasSeenUpsell("sid-1", "5") {
		t.Fatal("want product 5 seen after rewrite")
	}
	svc.MarkReplenishmentSeen("sid-1", time.Now(), "3")
	if !svc.RecentlySeenReplenishment("sid-1", "3", time.Now()) {
		t.Fatal("want product 3 in cooldown after rewrite")
	}
}

func TestSeenService_ReplenishmentCooldown(t *testing.T) {
	db := memdb(t)
	svc := services.NewSeenService(repos.NewStateRepo(db), 24*time.Hour)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.MarkReplenishmentSeen("sid-1", at, "1", "3")
	if !svc.RecentlySeenReplenishment("sid-1", "1", at.Add(23*time.Hour)) {
		t.Fatal("within 24h should be suppressed")
	}
	if svc.RecentlySeenReplenishment("sid-1", "1", at.Add(24*time.Hour)) {
		t.Fatal("cooldown should expire after 24h")
	}
	if svc.RecentlySeenReplenishment("sid-1", "8", at) {
		t.Fatal("never shown")
	}

	raw, err := repos.NewStateRepo(db).Get("sid-1", "replenishmentNudgeSeen")
	if err != nil {
		t.Fatal(err)
	}
	want := `{"1":1772355600000,"3":1772355600000}`
	if raw != want {
		t.Fatalf("stored document: want %s, got %s", want, raw)
	}
}

func TestSeenService_ReplenishmentFollowsCustomerAcrossSessions(t *testing.T) {
	db := memdb(t)
	svc := services.NewSeenService(repos.NewStateRepo(db), 24*time.Hour)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.For("sid-1").MarkReplenishmentSeen("Alice@SnackStack.test", at, "1")
	if !svc.For("sid-2").RecentlySeenReplenishment("alice@snackstack.test", "1", at.Add(time.Minute)) {
		t.Fatal("a new browser session for the same customer should still be in cooldown")
	}
	if svc.For("sid-2").RecentlySeenReplenishment("bob@snackstack.test", "1", at.Add(time.Minute)) {
		t.Fatal("another customer must not inherit the cooldown")
	}
	if _, err := repos.NewStateRepo(db).Get(services.CustomerOwner("alice@snackstack.test"), "replenishmentNudgeSeen"); err != nil {
		t.Fatalf("want the document stored under the customer: %v", err)
	}

	// Upsell state stays with the browser session.
	svc.For("sid-1").MarkUpsellSeen("3")
	if svc.For("sid-2").HasSeenUpsell("3") {
		t.Fatal("upsell state must not leak across sessions")
	}
}

package nudge

import (
	"context"
	"time"

	"snackstack/internal/domain"
)

// Catalog is read-only reference data.
type Catalog interface {
	Products() ([]domain.Product, error)
	Packs() ([]domain.VarietyPack, error)
}

// Cart is the session's cart. Add merges into an existing entry for the
// same product.
type Cart interface {
	Add(p domain.Product, qty int, price float64, d *domain.Discount) error
	Len() (int, error)
}

// SeenTracker persists nudge fatigue state. Implementations swallow their
// storage errors and answer "not seen". Upsell state belongs to the browser
// session; replenishment state belongs to the customer, so it outlives logout.
type SeenTracker interface {
	HasSeenUpsell(productID string) bool
	MarkUpsellSeen(productID string)
	RecentlySeenReplenishment(email, productID string, now time.Time) bool
	MarkReplenishmentSeen(email string, now time.Time, productIDs ...string)
}

type OrderHistory interface {
	Orders(ctx context.Context, email string) ([]domain.Order, error)
}

// Telemetry receives shown nudges for authenticated visitors.
type Telemetry interface {
	SendNudge(ctx context.Context, email, productName string, kind domain.Kind) error
}

// Journal records nudge outcomes (shown, accepted, dismissed).
type Journal interface {
	Record(sessionID string, kind domain.Kind, outcome string)
}

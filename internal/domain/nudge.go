package domain

import "time"

// Kind identifies a nudge. The zero value None means no nudge is active.
type Kind string

const (
	None          Kind = ""
	Idle          Kind = "idle"
	Hesitation    Kind = "hesitation"
	Exit          Kind = "exit"
	Bundle        Kind = "bundle"
	Replenishment Kind = "replenishment"
)

func (k Kind) String() string {
	if k == None {
		return "none"
	}
	return string(k)
}

func (k Kind) Valid() bool {
	switch k {
	case Idle, Hesitation, Exit, Bundle, Replenishment:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank orders urgencies high > medium > low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	}
	return 0
}

// ReplenishmentItem is derived per evaluation from order history and is
// never persisted.
type ReplenishmentItem struct {
	Product                 Product   `json:"product"`
	LastPurchaseDate        time.Time `json:"lastPurchaseDate"`
	DaysSinceLastPurchase   int       `json:"daysSinceLastPurchase"`
	ConsumptionPeriod       int       `json:"consumptionPeriod"`
	EstimatedDaysUntilEmpty int       `json:"estimatedDaysUntilEmpty"`
	Urgency                 Urgency   `json:"urgency"`
	PurchaseFrequency       int       `json:"purchaseFrequency,omitempty"` // 0 when fewer than two orders
	Message                 string    `json:"message"`
}

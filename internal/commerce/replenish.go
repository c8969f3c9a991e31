package commerce

import (
	"errors"
	"math"
	"sort"
	"time"

	"snackstack/internal/domain"
)

// consumptionDays is the expected number of days one purchase lasts.
var consumptionDays = map[string]int{
	"chips":     7,
	"popcorn":   10,
	"chocolate": 14,
	"jerky":     14,
	"trail-mix": 21,
	"energy":    21,
}

const (
	DefaultConsumptionDays = 14
	TriggerThreshold       = 0.8
	MaxReplenishmentItems  = 3
	longAbsenceDays        = 60
)

const day = 24 * time.Hour

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var ErrBadOrderDate = errors.New("unrecognised order date")

// ParseOrderDate accepts RFC3339 and the zone-less layouts the backend emits.
// Zone-less values are read as UTC.
func ParseOrderDate(s string) (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadOrderDate
}

func ConsumptionPeriod(category string) int {
	if d, ok := consumptionDays[category]; ok {
		return d
	}
	return DefaultConsumptionDays
}

// DaysBetween counts whole days between a and b, rounding any partial day up.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// Urgency grades how far through its consumption period a purchase is.
//
// DueReplenishments only reports items at or past TriggerThreshold, so
// UrgencyLow never leaves it; the low tier is the caution grade for callers
// asking about an arbitrary point in the period.
func Urgency(daysSince, period int) domain.Urgency {
	if period <= 0 {
		return domain.UrgencyHigh
	}
	ratio := float64(daysSince) / float64(period)
	switch {
	case ratio >= 1.0:
		return domain.UrgencyHigh
	case ratio >= TriggerThreshold:
		return domain.UrgencyMedium
	}
	return domain.UrgencyLow
}

func ReplenishmentMessage(daysSince int, urgency domain.Urgency, hasFrequency bool) string {
	if daysSince > longAbsenceDays {
		return "Been a while - miss it?"
	}
	switch urgency {
	case domain.UrgencyHigh:
		return "Running low!"
	case domain.UrgencyMedium:
		if hasFrequency {
			return "Time for your usual reorder"
		}
		return "Getting low"
	}
	return "Consider restocking"
}

type datedOrder struct {
	domain.Order
	at time.Time
}

// ordersFor returns the orders of productName, most recent first.
// Orders with unparseable dates are ignored.
func ordersFor(orders []domain.Order, productName string) []datedOrder {
	var out []datedOrder
	for _, o := range orders {
		if o.ProductName != productName {
			continue
		}
		at, err := ParseOrderDate(o.OrderDate)
		if err != nil {
			continue
		}
		out = append(out, datedOrder{Order: o, at: at})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.After(out[j].at) })
	return out
}

// PurchaseFrequency is the rounded mean gap in days between consecutive
// orders of productName. It returns 0 with fewer than two orders.
func PurchaseFrequency(orders []domain.Order, productName string) int {
	return frequency(ordersFor(orders, productName))
}

func frequency(history []datedOrder) int {
	if len(history) < 2 {
		return 0
	}
	sum := 0
	for i := 0; i < len(history)-1; i++ {
		sum += DaysBetween(history[i+1].at, history[i].at)
	}
	return int(math.Round(float64(sum) / float64(len(history)-1)))
}

// Evaluate decides whether product is due for reorder at now.
func Evaluate(product domain.Product, orders []domain.Order, now time.Time) (domain.ReplenishmentItem, bool) {
	history := ordersFor(orders, product.DisplayName())
	if len(history) == 0 {
		return domain.ReplenishmentItem{}, false
	}
	last := history[0]
	daysSince := DaysBetween(last.at, now)

	period := ConsumptionPeriod(product.Category)
	freq := frequency(history)
	if freq > 0 && freq < period {
		period = freq
	}

	if float64(daysSince) < float64(period)*TriggerThreshold {
		return domain.ReplenishmentItem{}, false
	}

	urgency := Urgency(daysSince, period)
	remaining := period - daysSince
	if remaining < 0 {
		remaining = 0
	}
	return domain.ReplenishmentItem{
		Product:                 product,
		LastPurchaseDate:        last.at,
		DaysSinceLastPurchase:   daysSince,
		ConsumptionPeriod:       period,
		EstimatedDaysUntilEmpty: remaining,
		Urgency:                 urgency,
		PurchaseFrequency:       freq,
		Message:                 ReplenishmentMessage(daysSince, urgency, freq > 0),
	}, true
}

// DueReplenishments evaluates every in-stock catalog product against the
// order history, drops those recentlySeen reports, sorts by urgency then by
// days since purchase and keeps the top MaxReplenishmentItems.
// recentlySeen may be nil.
func DueReplenishments(catalog []domain.Product, orders []domain.Order, now time.Time, recentlySeen func(productID string) bool) []domain.ReplenishmentItem {
	var items []domain.ReplenishmentItem
	for _, p := range catalog {
		if !p.InStock {
			continue
		}
		if recentlySeen != nil && recentlySeen(p.ID) {
			continue
		}
		if it, ok := Evaluate(p, orders, now); ok {
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Urgency.Rank(), items[j].Urgency.Rank()
		if ri != rj {
			return ri > rj
		}
		return items[i].DaysSinceLastPurchase > items[j].DaysSinceLastPurchase
	})
	if len(items) > MaxReplenishmentItems {
		items = items[:MaxReplenishmentItems]
	}
	return items
}

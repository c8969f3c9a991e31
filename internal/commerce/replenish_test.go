package commerce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackstack/internal/commerce"
	"snackstack/internal/domain"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func orderAt(p domain.Product, daysAgo int) domain.Order {
	return domain.Order{
		UserEmail:   "alice@snackstack.test",
		ProductName: p.DisplayName(),
		Quantity:    1,
		Price:       p.Price,
		TotalPrice:  p.Price,
		Status:      "DELIVERED",
		OrderDate:   now.Add(-time.Duration(daysAgo) * 24 * time.Hour).Format(time.RFC3339),
	}
}

func TestReplenishmentTriggerBoundary(t *testing.T) {
	chips := catalog()[0]
	require.Equal(t, 7, commerce.ConsumptionPeriod(chips.Category))

	_, ok := commerce.Evaluate(chips, []domain.Order{orderAt(chips, 5)}, now)
	assert.False(t, ok, "71%% consumed should not trigger")

	it, ok := commerce.Evaluate(chips, []domain.Order{orderAt(chips, 6)}, now)
	require.True(t, ok)
	assert.Equal(t, domain.UrgencyMedium, it.Urgency)
	assert.Equal(t, "Getting low", it.Message)
	assert.Equal(t, 1, it.EstimatedDaysUntilEmpty)

	it, ok = commerce.Evaluate(chips, []domain.Order{orderAt(chips, 7)}, now)
	require.True(t, ok)
	assert.Equal(t, domain.UrgencyHigh, it.Urgency)
	assert.Equal(t, "Running low!", it.Message)
}

func TestUrgencyLowOnlyFromDirectCalls(t *testing.T) {
	assert.Equal(t, domain.UrgencyLow, commerce.Urgency(5, 7))
	assert.Equal(t, "Consider restocking", commerce.ReplenishmentMessage(5, domain.UrgencyLow, false))

	chips := catalog()[0]
	for days := 0; days < 30; days++ {
		for _, it := range commerce.DueReplenishments(catalog(), []domain.Order{orderAt(chips, days)}, now, nil) {
			assert.NotEqual(t, domain.UrgencyLow, it.Urgency)
		}
	}
}

func TestPersonalFrequencyShortensPeriod(t *testing.T) {
	mix := catalog()[3] // trail-mix, 21 days
	orders := []domain.Order{orderAt(mix, 9), orderAt(mix, 19), orderAt(mix, 29)}
	assert.Equal(t, 10, commerce.PurchaseFrequency(orders, mix.DisplayName()))

	it, ok := commerce.Evaluate(mix, orders, now)
	require.True(t, ok)
	assert.Equal(t, 10, it.ConsumptionPeriod)
	assert.Equal(t, 10, it.PurchaseFrequency)
	assert.Equal(t, domain.UrgencyMedium, it.Urgency)
	assert.Equal(t, "Time for your usual reorder", it.Message)

	// Personal cadence slower than the category never lengthens the period.
	slow := []domain.Order{orderAt(mix, 20), orderAt(mix, 60)}
	it, ok = commerce.Evaluate(mix, slow, now)
	require.True(t, ok)
	assert.Equal(t, 21, it.ConsumptionPeriod)
}

func TestLongAbsenceMessage(t *testing.T) {
	choc := catalog()[2]
	it, ok := commerce.Evaluate(choc, []domain.Order{orderAt(choc, 61)}, now)
	require.True(t, ok)
	assert.Equal(t, "Been a while - miss it?", it.Message)
	assert.Equal(t, 0, it.EstimatedDaysUntilEmpty)
}

func TestDueReplenishmentsSortFilterCap(t *testing.T) {
	cat := catalog()
	orders := []domain.Order{
		orderAt(cat[0], 6),  // chips medium, 6 days
		orderAt(cat[1], 8),  // chips high, 8 days
		orderAt(cat[2], 20), // chocolate high, 20 days
		orderAt(cat[4], 12), // jerky medium, 12 days
		orderAt(cat[5], 30), // out of stock
		orderAt(cat[6], 2),  // popcorn not due
	}

	got := commerce.DueReplenishments(cat, orders, now, nil)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].Product.ID)
	assert.Equal(t, "2", got[1].Product.ID)
	assert.Equal(t, "5", got[2].Product.ID)

	seen := func(id string) bool { return id == "3" }
	got = commerce.DueReplenishments(cat, orders, now, seen)
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].Product.ID)
	assert.Equal(t, "5", got[1].Product.ID)
	assert.Equal(t, "1", got[2].Product.ID)
}

func TestDueReplenishmentsNoHistory(t *testing.T) {
	assert.Empty(t, commerce.DueReplenishments(catalog(), nil, now, nil))
}

func TestParseOrderDateLayouts(t *testing.T) {
	for _, s := range []string{"2026-02-20T10:00:00Z", "2026-02-20T10:00:00", "2026-02-20T10:00:00.123", "2026-02-20"} {
		_, err := commerce.ParseOrderDate(s)
		assert.NoError(t, err, s)
	}
	_, err := commerce.ParseOrderDate("last tuesday")
	assert.ErrorIs(t, err, commerce.ErrBadOrderDate)
}

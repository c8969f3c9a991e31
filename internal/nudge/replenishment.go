package nudge

import (
	"snackstack/internal/commerce"
	"snackstack/internal/domain"
)

// ReplenishmentDetector surfaces reorder reminders after login. The slot
// is only requested when the delay elapses; a busy slot drops the reminder.
type ReplenishmentDetector struct {
	s   *Session
	t   timer
	gen uint64
	// email the visible reminder was computed for; it survives Logout.
	email string
}

// begin starts a new login cycle and returns its generation.
func (d *ReplenishmentDetector) begin() uint64 {
	d.t.stop()
	d.gen++
	return d.gen
}

func (d *ReplenishmentDetector) current(gen uint64) bool { return d.gen == gen }

func (d *ReplenishmentDetector) cancel() {
	d.t.stop()
	d.gen++
}

func (d *ReplenishmentDetector) ready(orders []domain.Order) {
	d.s.arm(&d.t, d.s.cfg.ReplenishmentDelay, func() { d.fire(orders) })
}

func (d *ReplenishmentDetector) fire(orders []domain.Order) {
	s := d.s
	if !s.arb.Free() {
		return
	}
	catalog, ok := s.products()
	if !ok {
		return
	}
	now, email := s.now(), s.email
	due := commerce.DueReplenishments(catalog, orders, now, func(id string) bool {
		return s.deps.Seen.RecentlySeenReplenishment(email, id, now)
	})
	if len(due) == 0 {
		return
	}
	if !s.arb.TryAcquire(domain.Replenishment) {
		return
	}
	d.email = email
	s.show(&ReplenishmentPayload{Items: due, Added: []string{}}, due[0].Product.DisplayName())
}

func (d *ReplenishmentDetector) act(p *ReplenishmentPayload, a Action) (Result, error) {
	switch a.Name {
	case ActionReorder:
		item, ok := findItem(p.Items, a.ProductID)
		if !ok {
			return Result{}, ErrUnknownProduct
		}
		if err := d.s.deps.Cart.Add(item.Product, 1, item.Product.Price, nil); err != nil {
			return Result{}, err
		}
		if !p.added(item.Product.ID) {
			p.Added = append(p.Added, item.Product.ID)
		}
		return Result{}, nil
	case ActionAddAll:
		for _, it := range p.Items {
			if p.added(it.Product.ID) {
				continue
			}
			if err := d.s.deps.Cart.Add(it.Product, 1, it.Product.Price, nil); err != nil {
				return Result{}, err
			}
			p.Added = append(p.Added, it.Product.ID)
		}
		d.close(p, "accepted")
	case ActionDismiss, ActionRemindLater:
		outcome := "dismissed"
		if len(p.Added) > 0 {
			outcome = "accepted"
		}
		d.close(p, outcome)
	default:
		return Result{}, unknownAction(domain.Replenishment, a.Name)
	}
	return Result{Closed: true}, nil
}

// close starts the cooldown for every item that was shown.
func (d *ReplenishmentDetector) close(p *ReplenishmentPayload, outcome string) {
	ids := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.Product.ID)
	}
	d.s.deps.Seen.MarkReplenishmentSeen(d.email, d.s.now(), ids...)
	d.s.hide(outcome)
}

func findItem(items []domain.ReplenishmentItem, id string) (domain.ReplenishmentItem, bool) {
	for _, it := range items {
		if it.Product.ID == id {
			return it, true
		}
	}
	return domain.ReplenishmentItem{}, false
}

package nudge

import (
	"snackstack/internal/commerce"
	"snackstack/internal/domain"
)

// IdleDetector shows a discounted sample of the catalog after a quiet
// period. While its own nudge is visible, activity does not re-arm it.
type IdleDetector struct {
	s     *Session
	t     timer
	shown bool
}

func (d *IdleDetector) arm() {
	d.s.arm(&d.t, d.s.cfg.IdleTimeout, d.fire)
}

func (d *IdleDetector) activity() {
	if d.shown {
		return
	}
	d.arm()
}

// fire runs on expiry. A denied acquire leaves the detector waiting for the
// next activity event.
func (d *IdleDetector) fire() {
	s := d.s
	catalog, ok := s.products()
	if !ok {
		return
	}
	sample := commerce.SampleInStock(catalog, s.cfg.IdleSampleSize, s.deps.Rand)
	if len(sample) == 0 {
		return
	}
	if !s.arb.TryAcquire(domain.Idle) {
		return
	}
	d.shown = true
	s.show(&IdlePayload{Products: sample, DiscountPercent: s.cfg.IdleDiscount}, sample[0].DisplayName())
}

func (d *IdleDetector) act(p *IdlePayload, a Action) (Result, error) {
	switch a.Name {
	case ActionAddAll:
		if err := d.s.addDiscounted(p.Products, p.DiscountPercent, "idle"); err != nil {
			return Result{}, err
		}
		d.close("accepted")
	case ActionAddOne:
		prod, ok := findProduct(p.Products, a.ProductID)
		if !ok {
			return Result{}, ErrUnknownProduct
		}
		if err := d.s.deps.Cart.Add(prod, 1, prod.Price, nil); err != nil {
			return Result{}, err
		}
		d.close("accepted")
	case ActionDismiss:
		d.close("dismissed")
	default:
		return Result{}, unknownAction(domain.Idle, a.Name)
	}
	return Result{Closed: true}, nil
}

func (d *IdleDetector) close(outcome string) {
	d.s.hide(outcome)
	d.shown = false
	d.arm()
}

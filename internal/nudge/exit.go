package nudge

import (
	"snackstack/internal/commerce"
	"snackstack/internal/domain"
	applog "snackstack/internal/log"
)

// MessageFunc picks exit-intent copy for a product.
type MessageFunc func(brand, name string) string

// ExitDetector guards the product page currently mounted. It fires at most
// once per mount; after dismissal it re-arms once the grace window passes,
// or never when the window is zero.
type ExitDetector struct {
	s       *Session
	message MessageFunc
	page    *domain.Product
	latched bool
	rearm   timer
}

func (d *ExitDetector) mount(id string) {
	d.unmount()
	catalog, ok := d.s.products()
	if !ok {
		return
	}
	if p, ok := findProduct(catalog, id); ok {
		d.page = &p
	}
}

func (d *ExitDetector) unmount() {
	d.page = nil
	d.latched = false
	d.rearm.stop()
}

func (d *ExitDetector) viewportLeave(clientY float64) {
	if clientY <= d.s.cfg.ExitTolerance {
		d.signal("viewport_leave")
	}
}

// signal reports whether the exit nudge fired.
func (d *ExitDetector) signal(source string) bool {
	s := d.s
	if d.page == nil || d.latched {
		return false
	}
	if !s.arb.TryAcquire(domain.Exit) {
		return false
	}
	d.latched = true
	msg := d.copyFor(*d.page)
	n, err := s.deps.Cart.Len()
	ready := err == nil && n > 0
	if ready {
		msg = commerce.ExitCartMessage
	}
	f := s.fields(domain.Exit)
	f["source"] = source
	applog.Info(nil, "exit.signal", f)
	s.show(&ExitPayload{Product: *d.page, Message: msg, CartReady: ready}, d.page.DisplayName())
	return true
}

func (d *ExitDetector) copyFor(p domain.Product) string {
	if d.message != nil {
		return d.message(p.Brand, p.Name)
	}
	return commerce.ExitMessage(p.Brand, p.Name)
}

func (d *ExitDetector) act(p *ExitPayload, a Action) (Result, error) {
	res := Result{Closed: true}
	switch a.Name {
	case ActionAddToCart:
		if err := d.s.deps.Cart.Add(p.Product, 1, p.Product.Price, nil); err != nil {
			return Result{}, err
		}
		d.close("accepted")
	case ActionCheckout:
		d.close("accepted")
		res.Navigate = "/cart"
	case ActionDismiss:
		d.close("dismissed")
	default:
		return Result{}, unknownAction(domain.Exit, a.Name)
	}
	return res, nil
}

func (d *ExitDetector) close(outcome string) {
	d.s.hide(outcome)
	if d.s.cfg.ExitRearm > 0 {
		d.s.arm(&d.rearm, d.s.cfg.ExitRearm, func() { d.latched = false })
	}
}

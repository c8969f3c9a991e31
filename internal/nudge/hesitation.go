package nudge

import (
	"math"

	"snackstack/internal/commerce"
	"snackstack/internal/domain"
)

const (
	sampleCapacity   = 10
	hesitationWindow = 6
	relatedCount     = 2
)

// Sample is one pointer position over a product card.
type Sample struct {
	X, Y float64
	T    int64
}

// DetectHesitation inspects the last six samples. It reports true when the
// pointer reversed direction at least once while moving less than maxStep
// pixels per step on average. Fewer than six samples never hesitate.
func DetectHesitation(samples []Sample, maxStep float64) bool {
	if len(samples) < hesitationWindow {
		return false
	}
	w := samples[len(samples)-hesitationWindow:]
	total := 0.0
	reversals := 0
	var pdx, pdy float64
	for i := 1; i < len(w); i++ {
		dx := w[i].X - w[i-1].X
		dy := w[i].Y - w[i-1].Y
		total += math.Hypot(dx, dy)
		if i > 1 && (opposite(dx, pdx) || opposite(dy, pdy)) {
			reversals++
		}
		pdx, pdy = dx, dy
	}
	avg := total / float64(len(w)-1)
	return reversals >= 1 && avg < maxStep
}

func opposite(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

type card struct {
	buf     []Sample
	latched bool
	t       timer
}

func (c *card) push(s Sample) {
	if len(c.buf) == sampleCapacity {
		copy(c.buf, c.buf[1:])
		c.buf = c.buf[:sampleCapacity-1]
	}
	c.buf = append(c.buf, s)
}

// HesitationDetector watches product cards. Guests are sampled for a
// hesitation pattern; signed-in visitors get a fixed hover timer instead.
type HesitationDetector struct {
	s     *Session
	cards map[string]*card
}

func (d *HesitationDetector) cardFor(id string) *card {
	c, ok := d.cards[id]
	if !ok {
		c = &card{buf: make([]Sample, 0, sampleCapacity)}
		d.cards[id] = c
	}
	return c
}

func (d *HesitationDetector) enter(id string) {
	if id == "" {
		return
	}
	c := d.cardFor(id)
	if d.s.email != "" && !c.t.armed() {
		d.s.arm(&c.t, d.s.cfg.HoverDelay, func() { d.fire(id) })
	}
}

func (d *HesitationDetector) move(id string, smp Sample) {
	s := d.s
	if s.email != "" || !s.arb.Free() {
		return
	}
	c := d.cardFor(id)
	if c.latched {
		return
	}
	c.push(smp)
	if !DetectHesitation(c.buf, s.cfg.HesitationMaxStep) {
		return
	}
	c.latched = true
	delay := commerce.UniformDelay(s.deps.Rand, s.cfg.HesitationDelayMin, s.cfg.HesitationDelayMax)
	s.arm(&c.t, delay, func() { d.fire(id) })
}

// leave cancels the pending display and forgets the card's samples.
func (d *HesitationDetector) leave(id string) {
	if c, ok := d.cards[id]; ok {
		c.t.stop()
		delete(d.cards, id)
	}
}

func (d *HesitationDetector) stopAll() {
	for id := range d.cards {
		d.leave(id)
	}
}

// fire re-checks the slot; a loser waits for the pointer to leave and
// re-enter the card.
func (d *HesitationDetector) fire(id string) {
	s := d.s
	catalog, ok := s.products()
	if !ok {
		return
	}
	hovered, ok := findProduct(catalog, id)
	if !ok {
		return
	}
	if !s.arb.TryAcquire(domain.Hesitation) {
		return
	}
	shown := append([]domain.Product{hovered}, commerce.RelatedProducts(hovered, catalog, relatedCount)...)
	s.show(&HesitationPayload{Hovered: hovered, Products: shown, DiscountPercent: s.cfg.HesitationDiscount}, hovered.DisplayName())
}

func (d *HesitationDetector) act(p *HesitationPayload, a Action) (Result, error) {
	switch a.Name {
	case ActionAddAll:
		if err := d.s.addDiscounted(p.Products, p.DiscountPercent, "hesitation"); err != nil {
			return Result{}, err
		}
		d.s.hide("accepted")
	case ActionAddOne:
		prod, ok := findProduct(p.Products, a.ProductID)
		if !ok {
			return Result{}, ErrUnknownProduct
		}
		if err := d.s.deps.Cart.Add(prod, 1, prod.Price, nil); err != nil {
			return Result{}, err
		}
		d.s.hide("accepted")
	case ActionDismiss:
		d.s.hide("dismissed")
	default:
		return Result{}, unknownAction(domain.Hesitation, a.Name)
	}
	return Result{Closed: true}, nil
}

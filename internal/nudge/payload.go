package nudge

import (
	"snackstack/internal/commerce"
	"snackstack/internal/domain"
)

// Payload is the data contract of one visible nudge. The concrete type is
// fixed by Kind (and, for bundles, Mode). clone returns a copy that shares
// no mutable state with the session's live payload.
type Payload interface {
	Kind() domain.Kind
	Mode() string
	clone() Payload
}

// Products inside a payload are immutable catalog snapshots, so cloning
// copies the slices that hold them but not their nested fields.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

type IdlePayload struct {
	Products        []domain.Product `json:"products"`
	DiscountPercent float64          `json:"discountPercent"`
}

func (*IdlePayload) Kind() domain.Kind { return domain.Idle }
func (*IdlePayload) Mode() string      { return "" }
func (p *IdlePayload) clone() Payload {
	c := *p
	c.Products = cloneSlice(p.Products)
	return &c
}

// HesitationPayload lists the hovered product first.
type HesitationPayload struct {
	Hovered         domain.Product   `json:"hovered"`
	Products        []domain.Product `json:"products"`
	DiscountPercent float64          `json:"discountPercent"`
}

func (*HesitationPayload) Kind() domain.Kind { return domain.Hesitation }
func (*HesitationPayload) Mode() string      { return "" }
func (p *HesitationPayload) clone() Payload {
	c := *p
	c.Products = cloneSlice(p.Products)
	return &c
}

type ExitPayload struct {
	Product   domain.Product `json:"product"`
	Message   string         `json:"message"`
	CartReady bool           `json:"cartReady"` // offer checkout instead of add-to-cart
}

func (*ExitPayload) Kind() domain.Kind { return domain.Exit }
func (*ExitPayload) Mode() string      { return "" }
func (p *ExitPayload) clone() Payload {
	c := *p
	return &c
}

const (
	ModeVarietyPack  = "variety_pack"
	ModeSmartPairing = "smart_pairing"
)

type VarietyPackPayload struct {
	Added           domain.Product     `json:"added"`
	Pack            domain.VarietyPack `json:"pack"`
	Members         []domain.Product   `json:"members"` // pack members still to add
	DiscountPercent float64            `json:"discountPercent"`
}

func (*VarietyPackPayload) Kind() domain.Kind { return domain.Bundle }
func (*VarietyPackPayload) Mode() string      { return ModeVarietyPack }
func (p *VarietyPackPayload) clone() Payload {
	c := *p
	c.Members = cloneSlice(p.Members)
	c.Pack.ProductIDs = cloneSlice(p.Pack.ProductIDs)
	return &c
}

type PairingPayload struct {
	Added       domain.Product        `json:"added"`
	Suggestions []domain.Product      `json:"suggestions"`
	Selected    []string              `json:"selected"`
	Quote       *commerce.BundleQuote `json:"quote,omitempty"`
}

func (*PairingPayload) Kind() domain.Kind { return domain.Bundle }
func (*PairingPayload) Mode() string      { return ModeSmartPairing }
func (p *PairingPayload) clone() Payload {
	c := *p
	c.Suggestions = cloneSlice(p.Suggestions)
	c.Selected = cloneSlice(p.Selected)
	if p.Quote != nil {
		q := *p.Quote
		c.Quote = &q
	}
	return &c
}

func (p *PairingPayload) isSelected(id string) bool {
	for _, s := range p.Selected {
		if s == id {
			return true
		}
	}
	return false
}

func (p *PairingPayload) selectedProducts() []domain.Product {
	var out []domain.Product
	for _, s := range p.Suggestions {
		if p.isSelected(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

func (p *PairingPayload) toggle(id string) {
	if p.isSelected(id) {
		kept := p.Selected[:0]
		for _, s := range p.Selected {
			if s != id {
				kept = append(kept, s)
			}
		}
		p.Selected = kept
	} else {
		p.Selected = append(p.Selected, id)
	}
	sel := p.selectedProducts()
	if len(sel) == 0 {
		p.Quote = nil
		return
	}
	q := commerce.CalculateBundleDiscount(append([]domain.Product{p.Added}, sel...), len(sel))
	p.Quote = &q
}

type ReplenishmentPayload struct {
	Items []domain.ReplenishmentItem `json:"items"`
	Added []string                   `json:"added"`
}

func (*ReplenishmentPayload) Kind() domain.Kind { return domain.Replenishment }
func (*ReplenishmentPayload) Mode() string      { return "" }
func (p *ReplenishmentPayload) clone() Payload {
	c := *p
	c.Items = cloneSlice(p.Items)
	c.Added = cloneSlice(p.Added)
	return &c
}

func (p *ReplenishmentPayload) added(id string) bool {
	for _, a := range p.Added {
		if a == id {
			return true
		}
	}
	return false
}

// View is the presentation envelope served to clients.
type View struct {
	Kind    string  `json:"kind"`
	Mode    string  `json:"mode,omitempty"`
	Payload Payload `json:"payload,omitempty"`
}

// viewOf snapshots p. Callers hold the session lock.
func viewOf(p Payload) View {
	if p == nil {
		return View{Kind: domain.None.String()}
	}
	return View{Kind: p.Kind().String(), Mode: p.Mode(), Payload: p.clone()}
}

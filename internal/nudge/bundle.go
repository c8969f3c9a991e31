package nudge

import (
	"snackstack/internal/commerce"
	"snackstack/internal/domain"
	applog "snackstack/internal/log"
)

const pairingCount = 2

// BundleDetector runs right after a user add-to-cart. A product in a
// variety pack is offered the pack upgrade; anything else gets smart
// pairing suggestions.
type BundleDetector struct {
	s *Session
}

func (d *BundleDetector) afterAdd(added domain.Product) {
	s := d.s
	if s.deps.Seen.HasSeenUpsell(added.ID) || !s.arb.Free() {
		return
	}
	catalog, ok := s.products()
	if !ok {
		return
	}
	packs, err := s.deps.Catalog.Packs()
	if err != nil {
		applog.Warn(nil, "bundle.packs.fail", err, s.fields(domain.Bundle))
		packs = nil
	}
	idx := commerce.IndexByID(catalog)

	var p Payload
	if pack, ok := commerce.BestVarietyPack(packs, added.ID); ok {
		members, pct := commerce.PackUpgrade(pack, added.ID, idx)
		if len(members) == 0 {
			return
		}
		p = &VarietyPackPayload{Added: added, Pack: pack, Members: members, DiscountPercent: pct}
	} else {
		suggestions := commerce.FindComplementary(added, catalog, pairingCount)
		if len(suggestions) == 0 {
			return
		}
		p = &PairingPayload{Added: added, Suggestions: suggestions, Selected: []string{}}
	}
	if !s.arb.TryAcquire(domain.Bundle) {
		return
	}
	s.show(p, added.DisplayName())
}

func (d *BundleDetector) actPack(p *VarietyPackPayload, a Action) (Result, error) {
	switch a.Name {
	case ActionUpgrade:
		if err := d.s.addDiscounted(p.Members, p.DiscountPercent, "variety-pack"); err != nil {
			return Result{}, err
		}
		d.close(p.Added.ID, "accepted")
	case ActionDismiss:
		d.close(p.Added.ID, "dismissed")
	default:
		return Result{}, unknownAction(domain.Bundle, a.Name)
	}
	return Result{Closed: true}, nil
}

func (d *BundleDetector) actPairing(p *PairingPayload, a Action) (Result, error) {
	switch a.Name {
	case ActionToggle:
		if _, ok := findProduct(p.Suggestions, a.ProductID); !ok {
			return Result{}, ErrUnknownProduct
		}
		p.toggle(a.ProductID)
		return Result{}, nil
	case ActionConfirm:
		sel := p.selectedProducts()
		if len(sel) == 0 {
			d.close(p.Added.ID, "dismissed")
			break
		}
		pct := commerce.BundleDiscountPercent(len(sel))
		if err := d.s.addDiscounted(sel, pct, "bundle"); err != nil {
			return Result{}, err
		}
		d.close(p.Added.ID, "accepted")
	case ActionDismiss:
		d.close(p.Added.ID, "dismissed")
	default:
		return Result{}, unknownAction(domain.Bundle, a.Name)
	}
	return Result{Closed: true}, nil
}

// close marks the triggering product upsell-seen whatever the outcome.
func (d *BundleDetector) close(addedID, outcome string) {
	d.s.deps.Seen.MarkUpsellSeen(addedID)
	d.s.hide(outcome)
}

package services

import (
	"fmt"
	"math"

	"snackstack/internal/domain"
	"snackstack/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
}

func NewCartService(carts *repos.CartRepo) *CartService {
	return &CartService{Carts: carts}
}

// Add puts qty of p in the session's cart at price, merging with an
// existing line for the same product.
func (s *CartService) Add(sessionID string, p domain.Product, qty int, price float64, d *domain.Discount) error {
	if qty < 1 {
		qty = 1
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return fmt.Errorf("ensure cart: %w", err)
	}
	if err := s.Carts.UpsertItem(cartID, p, qty, price, d); err != nil {
		return fmt.Errorf("add %s: %w", p.ID, err)
	}
	return nil
}

func (s *CartService) Remove(sessionID, productID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Remove(cartID, productID)
}

// UpdateQuantity removes the line when qty <= 0.
func (s *CartService) UpdateQuantity(sessionID, productID string, qty int) error {
	if qty <= 0 {
		return s.Remove(sessionID, productID)
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	ok, err := s.Carts.SetQty(cartID, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

func (s *CartService) Len(sessionID string) (int, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return 0, err
	}
	return s.Carts.Count(cartID)
}

// Combo explains the pricing of entries added together by one nudge.
type Combo struct {
	ComboID    string   `json:"comboId"`
	ProductIDs []string `json:"productIds"`
	Original   float64  `json:"original"`
	Charged    float64  `json:"charged"`
	Savings    float64  `json:"savings"`
}

type CartView struct {
	Items      []domain.CartEntry `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalPrice float64            `json:"totalPrice"`
	Combos     []Combo            `json:"combos"`
}

func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Items: items, Combos: []Combo{}}
	byID := map[string]int{}
	for _, it := range items {
		v.TotalItems += it.Quantity
		v.TotalPrice += it.Subtotal()
		if it.Discount == nil {
			continue
		}
		i, ok := byID[it.Discount.ComboID]
		if !ok {
			i = len(v.Combos)
			byID[it.Discount.ComboID] = i
			v.Combos = append(v.Combos, Combo{ComboID: it.Discount.ComboID})
		}
		c := &v.Combos[i]
		c.ProductIDs = append(c.ProductIDs, it.Product.ID)
		c.Original += it.Discount.OriginalPrice * float64(it.Quantity)
		c.Charged += it.Subtotal()
	}
	for i := range v.Combos {
		v.Combos[i].Savings = round2(v.Combos[i].Original - v.Combos[i].Charged)
	}
	v.TotalPrice = round2(v.TotalPrice)
	return v, nil
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// sessionCart adapts CartService to nudge.Cart for one browser session.
type sessionCart struct {
	s   *CartService
	sid string
}

func (c sessionCart) Add(p domain.Product, qty int, price float64, d *domain.Discount) error {
	return c.s.Add(c.sid, p, qty, price, d)
}

func (c sessionCart) Len() (int, error) { return c.s.Len(c.sid) }

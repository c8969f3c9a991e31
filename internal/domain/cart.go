package domain

// Discount records that a cart entry was added as part of a bundled
// promotion. Entries added together share a ComboID.
type Discount struct {
	OriginalPrice      float64 `json:"originalPrice"`
	DiscountPercentage float64 `json:"discountPercentage"`
	ComboID            string  `json:"comboId"`
}

type CartEntry struct {
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"` // unit price charged, after any discount
	Discount *Discount `json:"discount,omitempty"`
}

func (e CartEntry) Subtotal() float64 { return e.Price * float64(e.Quantity) }

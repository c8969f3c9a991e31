package domain

type Nutrition struct {
	Calories int    `json:"calories" toml:"calories"`
	Protein  string `json:"protein" toml:"protein"`
	Carbs    string `json:"carbs" toml:"carbs"`
	Fat      string `json:"fat" toml:"fat"`
}

type Variant struct {
	ID    string  `json:"id" toml:"id"`
	Name  string  `json:"name" toml:"name"`
	Price float64 `json:"price" toml:"price"`
}

// Product is catalog reference data. Nudges never mutate it; discounted
// prices live on the cart entry.
type Product struct {
	ID          string     `json:"id" toml:"id"`
	Name        string     `json:"name" toml:"name"`
	Brand       string     `json:"brand" toml:"brand"`
	Category    string     `json:"category" toml:"category"`
	Price       float64    `json:"price" toml:"price"`
	Image       string     `json:"image" toml:"image"`
	Images      []string   `json:"images,omitempty" toml:"images"`
	Description string     `json:"description" toml:"description"`
	Tags        []string   `json:"tags" toml:"tags"`
	InStock     bool       `json:"inStock" toml:"-"`
	Nutrition   *Nutrition `json:"nutrition,omitempty" toml:"nutrition"`
	Variants    []Variant  `json:"variants,omitempty" toml:"variants"`
}

// DisplayName is the "Brand Name" form used as productName by the order
// history and nudge telemetry endpoints.
func (p Product) DisplayName() string {
	if p.Brand == "" {
		return p.Name
	}
	return p.Brand + " " + p.Name
}

func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type VarietyPack struct {
	ID          string   `json:"id" toml:"id"`
	Name        string   `json:"name" toml:"name"`
	Description string   `json:"description" toml:"description"`
	Price       float64  `json:"price" toml:"price"`
	Image       string   `json:"image" toml:"image"`
	ProductIDs  []string `json:"productIds" toml:"product_ids"`
	ItemCount   int      `json:"itemCount" toml:"item_count"`
	Tags        []string `json:"tags" toml:"tags"`
	Savings     float64  `json:"savings" toml:"savings"`
}

func (v VarietyPack) Contains(productID string) bool {
	for _, id := range v.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type Category struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Products int    `json:"products" db:"products"`
}

const (
	StockIn  = "IN_STOCK"
	StockLow = "LOW_STOCK"
	StockOut = "OUT_OF_STOCK"
)

type Availability struct {
	Status string `json:"status"`
	Qty    int    `json:"qty,omitempty"`
}

// AvailabilityFor grades a stock level. Below lowStockBelow units the
// product is still sellable but shown as running low.
func AvailabilityFor(qty, lowStockBelow int) Availability {
	switch {
	case qty <= 0:
		return Availability{Status: StockOut}
	case qty < lowStockBelow:
		return Availability{Status: StockLow, Qty: qty}
	default:
		return Availability{Status: StockIn, Qty: qty}
	}
}

package domain

// Order is one line of a user's order history as returned by
// GET /api/v1/user/orders/email/{email}.
type Order struct {
	OrderID     int64   `json:"orderId" db:"id"`
	UserEmail   string  `json:"userEmail" db:"user_email"`
	ProductName string  `json:"productName" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Price       float64 `json:"price" db:"price"`
	TotalPrice  float64 `json:"totalPrice" db:"total_price"`
	Status      string  `json:"status" db:"status"`
	OrderDate   string  `json:"orderDate" db:"order_date"` // RFC3339
}

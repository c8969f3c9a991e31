package commerce

import (
	"fmt"
	"strings"
)

// ExitCartMessage replaces the product copy when the visitor already has
// something in the cart.
const ExitCartMessage = "Your cart is almost ready — want to checkout with 1-click?"

var exitBrandCopy = []struct {
	key  string
	copy string
}{
	{"lay's", "Wait! Before you leave, your favourite Lay's is on a limited-time offer."},
	{"doritos", "Hold on! These Doritos are flying off the shelves — grab yours now!"},
	{"cheetos", "Don't leave yet! Chester's got a special deal on Cheetos just for you."},
}

// ExitMessage picks exit-intent copy for a product by brand, then by a
// spicy/hot name, then falls back to a generic brand line.
func ExitMessage(brand, name string) string {
	lname := strings.ToLower(name)
	lbrand := strings.ToLower(brand)
	for _, b := range exitBrandCopy {
		if lbrand == b.key || strings.Contains(lname, b.key) {
			return b.copy
		}
	}
	if strings.Contains(lname, "spicy") || strings.Contains(lname, "hot") {
		return "Wait! This spicy favourite is on a limited-time offer."
	}
	return fmt.Sprintf("Wait! Before you leave, this %s favourite is on a limited-time offer.", brand)
}

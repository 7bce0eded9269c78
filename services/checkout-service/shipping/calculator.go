// Package shipping computes the delivery charge for a cart.
package shipping

import (
	"strings"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
)

const (
	// FreeShippingThreshold is the subtotal from which delivery is free.
	FreeShippingThreshold = 2000.0

	InsideDhakaCost  = 60
	OutsideDhakaCost = 100

	dhakaDistrict = "dhaka"
)

// Cost returns the shipping charge for subtotal delivered to addr. A nil
// address is charged the outside-Dhaka rate.
func Cost(subtotal float64, addr *models.Address) int {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	if addr != nil && IsDhaka(addr.District) {
		return InsideDhakaCost
	}
	return OutsideDhakaCost
}

// IsDhaka reports whether district names Dhaka, ignoring case and
// surrounding whitespace.
func IsDhaka(district string) bool {
	return strings.EqualFold(strings.TrimSpace(district), dhakaDistrict)
}

// Quote is the breakdown shown next to a cart.
type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	Shipping    int     `json:"shipping"`
	Total       float64 `json:"total"`
	FreeFrom    float64 `json:"freeShippingFrom"`
	InsideDhaka bool    `json:"insideDhaka"`
}

// QuoteFor returns the full breakdown for subtotal and addr.
func QuoteFor(subtotal float64, addr *models.Address) Quote {
	cost := Cost(subtotal, addr)
	return Quote{
		Subtotal:    subtotal,
		Shipping:    cost,
		Total:       subtotal + float64(cost),
		FreeFrom:    FreeShippingThreshold,
		InsideDhaka: addr != nil && IsDhaka(addr.District),
	}
}

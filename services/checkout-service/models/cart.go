package models

import "strings"

// CartMode tells whether a cart lives only in this process or is mirrored
// to the storefront service.
type CartMode string

const (
	CartModeGuest         CartMode = "guest"
	CartModeAuthenticated CartMode = "authenticated"
)

// CartStatus is "error" after a failed load; items and totals are then the
// last known ones.
type CartStatus string

const (
	CartStatusReady CartStatus = "ready"
	CartStatusError CartStatus = "error"
)

// ProductSnapshot keeps what the cart needs to display an item even after
// the product itself changes.
type ProductSnapshot struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// CartItem is one line of a cart.
type CartItem struct {
	// ItemID is assigned by the storefront service; empty for guest items.
	ItemID string `json:"itemId,omitempty"`
	// LocalID keys guest items that have never been persisted.
	LocalID       string          `json:"localId,omitempty"`
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	UnitPrice     float64         `json:"unitPrice"`
	Product       ProductSnapshot `json:"product"`
}

// Key returns the identifier cart operations address the item by.
func (i CartItem) Key() string {
	if i.ItemID != "" {
		return i.ItemID
	}
	return i.LocalID
}

// SameLine reports whether two items are the same product and variant.
// Variant names compare without regard to case.
func (i CartItem) SameLine(productID, size, color string) bool {
	return i.ProductID == productID &&
		strings.EqualFold(i.SelectedSize, size) &&
		strings.EqualFold(i.SelectedColor, color)
}

// Cart is a point-in-time copy of a cart. Totals are derived from Items.
type Cart struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	TotalItems  int        `json:"totalItems"`
	Mode        CartMode   `json:"mode"`
	Initialized bool       `json:"initialized"`
	Status      CartStatus `json:"status"`
	LastError   string     `json:"lastError,omitempty"`
}

// Totals returns Σ unitPrice×quantity and Σ quantity over items.
func Totals(items []CartItem) (amount float64, count int) {
	for _, it := range items {
		amount += it.UnitPrice * float64(it.Quantity)
		count += it.Quantity
	}
	return amount, count
}

// AddItemRequest is what the storefront's POST /cart/add accepts.
type AddItemRequest struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize,omitempty"`
	SelectedColor string `json:"selectedColor,omitempty"`
}

// UpdateItemRequest is what the storefront's PUT /cart/update accepts.
type UpdateItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// RemoteCart is the storefront's cart payload. Its totals are informational
// only; the cart store recomputes them from Items.
type RemoteCart struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	TotalItems  int        `json:"totalItems"`
}

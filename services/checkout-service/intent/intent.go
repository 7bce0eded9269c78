// Package intent records what a guest tried to buy before being sent to log
// in, and replays it once they come back to the same product authenticated.
package intent

import (
	"strings"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

// StorageKey is the key the pending intent lives under.
const StorageKey = "pendingProductSelection"

// Action is what the shopper pressed.
type Action string

const (
	ActionAddToCart Action = "addToCart"
	ActionBuyNow    Action = "buyNow"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionAddToCart || a == ActionBuyNow
}

// Intent is a product selection waiting for the shopper to authenticate.
type Intent struct {
	ProductID     string              `json:"productId"`
	SelectedSize  string              `json:"selectedSize,omitempty"`
	SelectedColor *models.ColorChoice `json:"selectedColor,omitempty"`
	Quantity      int                 `json:"quantity"`
	Action        Action              `json:"action"`
}

// ColorName returns the selected color's name, or "".
func (i Intent) ColorName() string {
	if i.SelectedColor == nil {
		return ""
	}
	return i.SelectedColor.Name
}

func (i *Intent) normalize() error {
	i.ProductID = strings.TrimSpace(i.ProductID)
	if i.ProductID == "" {
		return apperrors.OnField(apperrors.ErrValidation, "productId", "productId is required")
	}
	if !i.Action.Valid() {
		return apperrors.OnField(apperrors.ErrValidation, "action", "action must be addToCart or buyNow")
	}
	if i.Quantity <= 0 {
		i.Quantity = 1
	}
	return nil
}

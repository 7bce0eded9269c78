package models

import "time"

type ProductSnapshot struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type CartItem struct {
	ItemID        string          `json:"itemId"`
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	UnitPrice     float64         `json:"unitPrice"`
	Product       ProductSnapshot `json:"product"`
}

// Cart is what is stored in Redis per user.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartView is the response shape of every /cart endpoint.
type CartView struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	TotalItems  int        `json:"totalItems"`
}

// View computes totals from the items.
func (c *Cart) View() CartView {
	v := CartView{Items: c.Items}
	if v.Items == nil {
		v.Items = []CartItem{}
	}
	for _, it := range c.Items {
		v.TotalAmount += it.UnitPrice * float64(it.Quantity)
		v.TotalItems += it.Quantity
	}
	return v
}

type AddItemRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

type UpdateItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

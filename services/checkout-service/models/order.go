package models

// PaymentMethod tags how an order will be paid. Payment itself happens
// elsewhere.
type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "cod"
	PaymentBkash PaymentMethod = "bkash"
	PaymentNagad PaymentMethod = "nagad"
)

// OrderItem is a frozen copy of a cart line.
type OrderItem struct {
	ProductID     string  `json:"product"`
	Name          string  `json:"name"`
	Image         string  `json:"image,omitempty"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}

// OrderRequest is the payload submitted to POST /orders. Nothing in it
// aliases the cart or the address book it was built from.
type OrderRequest struct {
	IdempotencyKey  string        `json:"idempotencyKey"`
	OrderItems      []OrderItem   `json:"orderItems"`
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	ItemsPrice      float64       `json:"itemsPrice"`
	ShippingPrice   int           `json:"shippingPrice"`
	TotalPrice      float64       `json:"totalPrice"`
}

// Order is the storefront's answer to a submitted OrderRequest.
type Order struct {
	ID         string  `json:"id"`
	Status     string  `json:"status,omitempty"`
	TotalPrice float64 `json:"totalPrice"`
}

package models

import "time"

const (
	OrderStatusPending = "pending"
)

type OrderItem struct {
	ProductID     string  `json:"product" binding:"required"`
	Name          string  `json:"name"`
	Image         string  `json:"image,omitempty"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}

// ShippingAddress is the address copied onto an order.
type ShippingAddress struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required,bdphone"`
	Address  string `json:"address" binding:"required"`
	District string `json:"district" binding:"required"`
	Thana    string `json:"thana" binding:"required"`
	Country  string `json:"country"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	OrderItems      []OrderItem     `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=cod bkash nagad"`
	ItemsPrice      float64         `json:"itemsPrice"`
	ShippingPrice   int             `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
}

type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string          `gorm:"index;not null" json:"userId"`
	IdempotencyKey  *string         `gorm:"uniqueIndex" json:"-"`
	OrderItems      []OrderItem     `gorm:"type:jsonb;serializer:json" json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"type:jsonb;serializer:json" json:"shippingAddress"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	ShippingPrice   int             `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"-"`
}

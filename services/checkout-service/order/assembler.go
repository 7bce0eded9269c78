// Package order turns a cart and a shipping address into an order request.
package order

import (
	"strings"

	"github.com/google/uuid"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/address"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/shipping"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

// SupportedPaymentMethods lists the payment tags an order may carry.
var SupportedPaymentMethods = []models.PaymentMethod{
	models.PaymentCOD,
	models.PaymentBkash,
	models.PaymentNagad,
}

// ParsePaymentMethod normalizes raw and checks it is supported.
func ParsePaymentMethod(raw string) (models.PaymentMethod, error) {
	m := models.PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	for _, supported := range SupportedPaymentMethods {
		if m == supported {
			return m, nil
		}
	}
	return "", apperrors.OnField(apperrors.ErrValidation, "paymentMethod", "Unsupported payment method")
}

// Assemble validates its inputs and builds an order request. The cart and
// address are only read.
func Assemble(cart models.Cart, addr *models.Address, paymentMethod string) (*models.OrderRequest, error) {
	if len(cart.Items) == 0 {
		return nil, apperrors.OnField(apperrors.ErrValidation, "cart", "Your cart is empty")
	}
	if addr == nil {
		return nil, apperrors.OnField(apperrors.ErrValidation, "shippingAddress", "Shipping address is required")
	}
	if err := address.Validate(*addr); err != nil {
		return nil, err
	}
	method, err := ParsePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID:     it.ProductID,
			Name:          it.Product.Name,
			Image:         it.Product.Image,
			Price:         it.UnitPrice,
			Quantity:      it.Quantity,
			SelectedSize:  it.SelectedSize,
			SelectedColor: it.SelectedColor,
		})
	}
	itemsPrice, _ := models.Totals(cart.Items)
	shippingAddress := address.Normalize(*addr)
	shippingPrice := shipping.Cost(itemsPrice, &shippingAddress)

	return &models.OrderRequest{
		IdempotencyKey:  uuid.NewString(),
		OrderItems:      items,
		ShippingAddress: shippingAddress,
		PaymentMethod:   method,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		TotalPrice:      itemsPrice + float64(shippingPrice),
	}, nil
}

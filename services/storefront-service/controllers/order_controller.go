package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayhanbeg/Sajbela-sub000/services/common/middleware"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/services"
)

// IdempotencyHeader deduplicates order submissions.
const IdempotencyHeader = "Idempotency-Key"

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	RegisterValidators()
	return &OrderController{orders: orders}
}

// CreateOrder handles POST /orders. A replayed idempotency key answers 200
// with the original order instead of 201.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	order, created, err := oc.orders.Create(c, c.GetString(middleware.UserIDKey), c.GetHeader(IdempotencyHeader), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, order)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/middleware"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/services"
)

type CartController struct {
	carts  *services.CartService
	logger *zap.Logger
}

func NewCartController(carts *services.CartService, l *zap.Logger) *CartController {
	if l == nil {
		l = zap.NewNop()
	}
	return &CartController{carts: carts, logger: l}
}

// GetCart returns the current cart for a user
func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.carts.Get(c, c.GetString(middleware.UserIDKey))
	if err != nil {
		logger.For(c, cc.logger).Error("get cart failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds an item, merging with a matching line
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	cart, err := cc.carts.Add(c, c.GetString(middleware.UserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	cart, err := cc.carts.Update(c, c.GetString(middleware.UserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem removes a specific item from the cart
func (cc *CartController) RemoveItem(c *gin.Context) {
	cart, err := cc.carts.Remove(c, c.GetString(middleware.UserIDKey), c.Param("item_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart removes all items from the cart
func (cc *CartController) ClearCart(c *gin.Context) {
	cart, err := cc.carts.Clear(c, c.GetString(middleware.UserIDKey))
	if err != nil {
		logger.For(c, cc.logger).Error("clear cart failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

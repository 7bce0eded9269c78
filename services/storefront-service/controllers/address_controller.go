package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayhanbeg/Sajbela-sub000/services/common/middleware"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/services"
)

type AddressController struct {
	addresses *services.AddressService
}

func NewAddressController(addresses *services.AddressService) *AddressController {
	RegisterValidators()
	return &AddressController{addresses: addresses}
}

// ListAddresses handles GET /addresses. The body is a plain array.
func (ac *AddressController) ListAddresses(c *gin.Context) {
	list, err := ac.addresses.List(c, c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ac *AddressController) CreateAddress(c *gin.Context) {
	var in models.Address
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err)
		return
	}
	addr, err := ac.addresses.Create(c, c.GetString(middleware.UserIDKey), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

// SetDefault handles PUT /addresses/:id/default
func (ac *AddressController) SetDefault(c *gin.Context) {
	if err := ac.addresses.SetDefault(c, c.GetString(middleware.UserIDKey), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}

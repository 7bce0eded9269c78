package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/repository"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/services"
)

type ProductController struct {
	products repository.ProductRepository
}

func NewProductController(products repository.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// GetProduct handles GET /products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	p, err := pc.products.FindByID(c, c.Param("id"))
	if err != nil {
		respondError(c, services.NotFound(err, "Product not found"))
		return
	}
	c.JSON(http.StatusOK, p)
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/auth"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/middleware"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/controllers"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Products  *controllers.ProductController
	Carts     *controllers.CartController
	Addresses *controllers.AddressController
	Orders    *controllers.OrderController
}

// NewRouter builds the storefront-service router.
func NewRouter(ctrls Controllers, tokens *auth.TokenParser, metrics awspkg.MetricsRecorder, l *zap.Logger) *gin.Engine {
	if l == nil {
		l = zap.NewNop()
	}

	r := gin.New()
	r.ContextWithFallback = true
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(l))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MetricsMiddleware(metrics, "storefront-service"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "storefront-service"})
	})

	RegisterRoutes(r, ctrls, tokens)
	return r
}

func RegisterRoutes(r *gin.Engine, ctrls Controllers, tokens *auth.TokenParser) {
	// Catalog reads are public
	r.GET("/products/:id", ctrls.Products.GetProduct)

	protected := r.Group("")
	protected.Use(middleware.BearerAuth(tokens))
	{
		cart := protected.Group("/cart")
		cart.GET("", ctrls.Carts.GetCart)
		cart.POST("/add", ctrls.Carts.AddItem)
		cart.PUT("/update", ctrls.Carts.UpdateItem)
		cart.DELETE("/remove/:item_id", ctrls.Carts.RemoveItem)
		cart.DELETE("/clear", ctrls.Carts.ClearCart)

		addresses := protected.Group("/addresses")
		addresses.GET("", ctrls.Addresses.ListAddresses)
		addresses.POST("", ctrls.Addresses.CreateAddress)
		addresses.PUT("/:id/default", ctrls.Addresses.SetDefault)

		protected.POST("/orders", ctrls.Orders.CreateOrder)
	}
}

package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/controllers"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/middleware"
)

// Options configures the edge middleware.
type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBurst     int
	Metrics            awspkg.MetricsRecorder
	Logger             *zap.Logger
}

// NewRouter builds the checkout-service router.
func NewRouter(ctrl *controllers.SessionController, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := gin.New()
	r.ContextWithFallback = true
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.SecurityHeaders())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimitMiddleware(opts.RateLimitPerMinute, opts.RateLimitBurst))
	}
	r.Use(middleware.MetricsMiddleware(opts.Metrics, "checkout-service"))

	RegisterRoutes(r, ctrl)
	return r
}

func RegisterRoutes(r *gin.Engine, ctrl *controllers.SessionController) {
	r.GET("/health", ctrl.Health)

	api := r.Group("/api/v1/sessions")
	api.POST("", ctrl.CreateSession)

	s := api.Group("/:session_id")
	s.Use(ctrl.LoadSession())
	{
		// Cart
		s.GET("/cart", ctrl.GetCart)
		s.POST("/cart/load", ctrl.LoadCart)
		s.POST("/cart/items", ctrl.AddItem)
		s.PUT("/cart/items/:key", ctrl.UpdateItem)
		s.DELETE("/cart/items/:key", ctrl.RemoveItem)
		s.DELETE("/cart", ctrl.ClearCart)

		// Authentication transitions
		s.POST("/login", ctrl.Login)
		s.POST("/logout", ctrl.Logout)

		// Product page
		s.GET("/products/:product_id/availability", ctrl.Availability)
		s.POST("/products/:product_id/add-to-cart", ctrl.AddToCart)
		s.POST("/products/:product_id/buy-now", ctrl.BuyNow)
		s.POST("/products/:product_id/mount", ctrl.MountProduct)

		// Deferred intent
		s.GET("/intent", ctrl.GetIntent)
		s.DELETE("/intent", ctrl.ClearIntent)

		// Checkout
		s.GET("/addresses", ctrl.Addresses)
		s.GET("/shipping", ctrl.Shipping)
		s.POST("/checkout", ctrl.Checkout)
	}
}

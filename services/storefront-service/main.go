package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/auth"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/config"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/controllers"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/database"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/repository"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/routes"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.Initialize(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	// AWS clients
	var (
		snsClient awspkg.SNSPublisher
		metrics   awspkg.MetricsRecorder
	)
	awsCfg, awsErr := awspkg.LoadAWSConfig(context.Background())
	if awsErr != nil {
		log.Warn("AWS config unavailable, SNS and metrics disabled", zap.Error(awsErr))
	} else {
		snsClient = awspkg.NewSNSClient(awsCfg).WithEventType("order.created")
		if mc := awspkg.NewMetricsClient(awsCfg); mc.IsEnabled() {
			metrics = mc
		}
	}

	db, err := database.ConnectPostgres(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient, err := database.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	// Repositories and DI chain
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL)
	productRepo := repository.NewGormProductRepository(db)
	addressRepo := repository.NewGormAddressRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, services.OrderServiceOptions{
		IdempotencyTTL: cfg.IdempotencyTTL,
		SNS:            snsClient,
		SNSTopicArn:    cfg.OrderSNSTopicARN,
		Metrics:        metrics,
		Logger:         log,
	})

	router := routes.NewRouter(routes.Controllers{
		Products:  controllers.NewProductController(productRepo),
		Carts:     controllers.NewCartController(services.NewCartService(cartRepo, productRepo, log), log),
		Addresses: controllers.NewAddressController(services.NewAddressService(addressRepo, log)),
		Orders:    controllers.NewOrderController(orderService),
	}, auth.NewTokenParser(cfg.JWTSecret), metrics, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Storefront service started", zap.String("port", cfg.Port))
	<-quit
	log.Info("Shutting down storefront service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited cleanly")
}

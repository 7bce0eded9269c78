package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/clients"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/config"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/controllers"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/events"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/intent"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/routes"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/session"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/auth"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// ── AWS: CloudWatch Logs + Metrics ──
	var (
		awsCfgLoaded bool
		metrics      awspkg.MetricsRecorder
		cwWriter     *awspkg.CloudWatchLogsClient
	)
	awsCfg, awsErr := awspkg.LoadAWSConfig(context.Background())
	if awsErr == nil {
		awsCfgLoaded = true
		mc := awspkg.NewMetricsClient(awsCfg)
		if mc.IsEnabled() {
			metrics = mc
			if w, err := awspkg.NewCloudWatchLogsClient(context.Background(), awsCfg, "checkout-service"); err == nil {
				cwWriter = w
			}
		}
	}

	var log *zap.Logger
	if cwWriter != nil {
		log, err = logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		log, err = logger.Initialize(cfg.Env)
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if awsErr != nil {
		log.Warn("AWS config unavailable, metrics and SNS disabled", zap.Error(awsErr))
	}

	// ── Deferred intent storage ──
	storage := session.StorageFactory(nil)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		log.Info("Connected to Redis for intent storage")
		storage = func(sessionID string) intent.Storage {
			return intent.NewRedisStorage(redisClient, sessionID, cfg.IntentTTL)
		}
	} else {
		log.Warn("REDIS_URL not set, pending intents are kept in memory")
	}

	// ── Events ──
	var publisher events.Publisher = events.NopPublisher{}
	switch cfg.EventsDriver {
	case "sns":
		if !awsCfgLoaded {
			log.Fatal("EVENTS_DRIVER=sns needs AWS config", zap.Error(awsErr))
		}
		publisher = events.NewSNSPublisher(awspkg.NewSNSClient(awsCfg).WithEventType("checkout"), cfg.SNSTopicARN)
	case "kafka":
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer publisher.Close()

	storefront := clients.NewStorefrontClient(cfg.StorefrontURL, cfg.StorefrontTimeout, log)
	manager := session.NewManager(session.Deps{
		Catalog: storefront,
		Users:   func(token string) session.UserAPI { return storefront.ForUser(token) },
		Tokens:  auth.NewTokenParser(cfg.JWTSecret),
		Events:  publisher,
		Metrics: metrics,
		Logger:  log,
	}, storage, cfg.SessionIdleTimeout)

	evictCtx, stopEvict := context.WithCancel(context.Background())
	defer stopEvict()
	go manager.Run(evictCtx, cfg.EvictInterval)

	router := routes.NewRouter(controllers.NewSessionController(manager, log), routes.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		Metrics:            metrics,
		Logger:             log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Checkout Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
	stopEvict()
	manager.Wait()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	log.Info("Server shutdown complete.")
}

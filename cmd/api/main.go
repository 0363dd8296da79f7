package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/hireloop-backend/internal/auth"
	"github.com/fathima-sithara/hireloop-backend/internal/config"
	"github.com/fathima-sithara/hireloop-backend/internal/kafka"
	"github.com/fathima-sithara/hireloop-backend/internal/logger"
	"github.com/fathima-sithara/hireloop-backend/internal/metrics"
	"github.com/fathima-sithara/hireloop-backend/internal/repository"
	"github.com/fathima-sithara/hireloop-backend/internal/routes"
	"github.com/fathima-sithara/hireloop-backend/internal/service"
	"github.com/fathima-sithara/hireloop-backend/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.Development})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	metrics.Init()

	mc, err := repository.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		zlog.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	var delivery service.DeliveryProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DeliveryTopic)
		defer kp.Close()
		delivery = kp
	}

	validator, err := auth.NewValidator(cfg.JWT.Alg, cfg.JWT.Secret, cfg.JWT.PublicKeyPath)
	if err != nil {
		zlog.Fatalw("jwt validator", "err", err)
	}

	convRepo := repository.NewMongoConversationRepo(db.Collection("conversations"))
	msgRepo := repository.NewMongoMessageRepo(db.Collection("messages"))
	notifRepo := repository.NewMongoNotificationRepo(db.Collection("notifications"))
	userRepo := repository.NewMongoUserRepo(db.Collection("users"))

	hub := ws.NewHub(rdb, ws.Config{
		PingInterval:    cfg.PingInterval,
		PongWait:        cfg.PongWait,
		SendBufferSize:  cfg.WS.SendBufferSize,
		RateLimitPerSec: cfg.WS.RateLimitPerSec,
	}, zlog)

	notifSvc := service.NewNotification(notifRepo, delivery, zlog)
	msgSvc := service.NewMessaging(convRepo, msgRepo, userRepo, notifSvc, hub, zlog)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	routes.Register(app, msgSvc, notifSvc, hub, validator, userRepo, zlog)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()
	zlog.Infow("server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	hub.Shutdown()
	zlog.Info("server stopped")
}

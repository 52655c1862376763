package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/juampibolanio/trofi-chat-service/internal/api"
	"github.com/juampibolanio/trofi-chat-service/internal/cache"
	cfgpkg "github.com/juampibolanio/trofi-chat-service/internal/config"
	"github.com/juampibolanio/trofi-chat-service/internal/events"
	"github.com/juampibolanio/trofi-chat-service/internal/kafka"
	"github.com/juampibolanio/trofi-chat-service/internal/logger"
	"github.com/juampibolanio/trofi-chat-service/internal/repository"
	"github.com/juampibolanio/trofi-chat-service/internal/service"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := cfgpkg.Load("config.yaml")
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()

	mc, err := repository.NewMongoClient(cfg)
	if err != nil {
		zl.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	db := mc.Database(cfg.Mongo.Database)
	repo := repository.NewMongoRepository(
		db.Collection(cfg.Mongo.ChatsCollection),
		db.Collection(cfg.Mongo.MessagesCollection),
		zl,
	)

	var chatCache service.ChatCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(cfg)
		if err != nil {
			zl.Fatalw("redis init", "err", err)
		}
		defer rc.Close()
		chatCache = rc
	}

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageSent)
		defer producer.Close()
	}

	var pub *events.Publisher
	if cfg.Nats.URL != "" {
		pub, err = events.NewPublisher(cfg.Nats.URL)
		if err != nil {
			zl.Fatalw("nats init", "err", err)
		}
		defer pub.Close()
	}

	var mirror *events.Mirror
	if producer != nil || pub != nil {
		mirror = events.NewMirror(producer, pub, zl)
	}

	svc := service.NewChatService(repo, chatCache, mirror, zl)
	app := api.NewServer(cfg, svc, zl)

	go func() {
		if err := app.Listen(":" + cfg.App.PortString()); err != nil {
			zl.Fatalw("server listen", "err", err)
		}
	}()
	zl.Infow("chat-service started", "port", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	zl.Info("chat-service stopped")
}

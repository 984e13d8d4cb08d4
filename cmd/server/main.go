package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/quickchat/internal/api"
	"github.com/fathima-sithara/quickchat/internal/auth"
	"github.com/fathima-sithara/quickchat/internal/config"
	"github.com/fathima-sithara/quickchat/internal/events"
	"github.com/fathima-sithara/quickchat/internal/handlers"
	"github.com/fathima-sithara/quickchat/internal/logger"
	"github.com/fathima-sithara/quickchat/internal/media"
	"github.com/fathima-sithara/quickchat/internal/metrics"
	"github.com/fathima-sithara/quickchat/internal/middleware"
	"github.com/fathima-sithara/quickchat/internal/presence"
	"github.com/fathima-sithara/quickchat/internal/repository"
	"github.com/fathima-sithara/quickchat/internal/service"
	"github.com/fathima-sithara/quickchat/internal/ws"
)

func main() {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	lg, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer lg.Sync()

	metrics.Init()

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWTTTL)

	var msgStore repository.MessageStore
	var userStore repository.UserStore
	switch cfg.Store.Backend {
	case "memory":
		msgStore = repository.NewMemoryMessageStore()
		userStore = repository.NewMemoryUserStore()
		lg.Warnw("using in-memory store, messages will not survive restarts")
	default:
		client, err := repository.NewMongoClient(cfg.Mongo.URI)
		if err != nil {
			lg.Fatalw("mongo connect", "err", err)
		}
		db := client.Database(cfg.Mongo.Database)
		msgStore = repository.NewMongoMessageStore(db.Collection("messages"))
		userStore = repository.NewMongoUserStore(db.Collection("users"))
	}

	var mirror *presence.RedisMirror
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		mirror = presence.NewRedisMirror(rdb, cfg.Redis.Prefix, lg)
	}

	var pub events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageSent, lg)
		defer kp.Close()
		pub = kp
	}

	var uploader *media.Uploader
	if cfg.S3.Bucket != "" {
		store, err := media.NewS3Store(context.Background(), cfg.S3.Region, cfg.S3.Bucket, cfg.S3.PublicRead)
		if err != nil {
			lg.Fatalw("s3 init", "err", err)
		}
		uploader = media.NewUploader(store)
	}

	// a nil *RedisMirror must not end up as a non-nil interface
	var registryMirror ws.PresenceMirror
	if mirror != nil {
		registryMirror = mirror
	}
	registry := ws.NewRegistry(lg, registryMirror)
	wsServer := ws.NewServer(registry, tokens, cfg.PingInterval, cfg.WriteDeadline, cfg.WS.MaxMessageSizeBytes, lg)

	chatSvc := service.NewChatService(msgStore, userStore, registry, pub, uploader, lg)
	userSvc := service.NewUserService(userStore, tokens, uploader, lg)

	app := api.New(api.Deps{
		Auth:        tokens,
		WS:          wsServer,
		Messages:    handlers.NewMessageHandler(chatSvc, lg),
		Users:       handlers.NewUserHandler(userSvc, lg),
		Status:      handlers.NewStatusHandler(mirror),
		Limiter:     middleware.NewIPRateLimiter(cfg.App.RatePerMin, lg),
		BodyLimitMB: cfg.App.BodyLimitMB,
	})

	errs := make(chan error, 1)
	go func() {
		addr := ":" + cfg.App.Port
		lg.Infow("starting quickchat server", "addr", addr, "store", cfg.Store.Backend)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		lg.Fatalw("server error", "err", e)
	case s := <-sig:
		lg.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		lg.Warnw("shutdown", "err", err)
	}
	lg.Infow("shut down")
}

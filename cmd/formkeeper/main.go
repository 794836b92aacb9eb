package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"formkeeper/internal/app"
	"formkeeper/internal/auth"
	"formkeeper/internal/config"
	"formkeeper/internal/ratelimit"
	"formkeeper/internal/server"
	"formkeeper/internal/util"
	"formkeeper/pkg/storage"
	"formkeeper/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	objects, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}

	var sessions store.SessionStore
	if cfg.SessionStrategy == "jwt" {
		sessions, err = store.NewJWTSessionStore(cfg.SessionSecret, sessionTTL)
		if err != nil {
			log.Fatalf("failed to init jwt sessions: %v", err)
		}
	} else {
		sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, sessionTTL)
	}

	tokens, err := store.NewRedisTokenStore(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("failed to init token store: %v", err)
	}

	authSvc, err := auth.New(auth.Config{
		Store:    dataStore,
		Sessions: sessions,
		Tokens:   tokens,
	})
	if err != nil {
		log.Fatalf("failed to init auth service: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store:          dataStore,
		Objects:        objects,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.AuthRateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.AuthRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		Auth:           authSvc,
		AuthLimiter:    limiter,
		TrustForwarded: cfg.TrustForwardedFor,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("formkeeper server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

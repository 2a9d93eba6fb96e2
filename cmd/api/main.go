package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweetshop/inventory-system/internal/api"
	"github.com/sweetshop/inventory-system/internal/core/service"
	"github.com/sweetshop/inventory-system/internal/infrastructure/config"
	mongodb "github.com/sweetshop/inventory-system/internal/infrastructure/db/mongo"
	redisdb "github.com/sweetshop/inventory-system/internal/infrastructure/db/redis"
	"github.com/sweetshop/inventory-system/internal/infrastructure/queue"
	"github.com/sweetshop/inventory-system/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userRepo := mongodb.NewUserRepository(db)
	sweetRepo := mongodb.NewSweetRepository(db)
	movementRepo := mongodb.NewMovementRepository(db)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := sweetRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create sweet indexes")
	}
	if err := movementRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create movement indexes")
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.LoginMaxFailures)
	authService := service.NewAuthService(userRepo, tokens, throttle, cfg.BcryptCost, log)

	movementService := service.NewMovementService(movementRepo, log)
	dispatcher := queue.NewDispatcher(cfg.MovementWorkers, movementService, log)
	// Workers outlive the signal context: movements enqueued while the server
	// drains its last requests must still be recorded before exit.
	dispatcher.Start(context.Background())

	sweetService := service.NewSweetService(sweetRepo, dispatcher, log)

	e := api.NewRouter(api.Dependencies{
		AuthService:     authService,
		SweetService:    sweetService,
		MovementService: movementService,
		TokenVerifier:   tokens,
		UserRepository:  userRepo,
		Mongo:           db,
		Redis:           rdb,
		Logger:          log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// The server no longer accepts requests; drain the remaining movements
	// before disconnecting the stores.
	dispatcher.Stop()
	log.Info().Msg("movement dispatcher drained")
}

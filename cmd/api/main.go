package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prolink/credits-system/internal/api"
	mongodb "github.com/prolink/credits-system/internal/infrastructure/db/mongo"
	redisdb "github.com/prolink/credits-system/internal/infrastructure/db/redis"
	"github.com/prolink/credits-system/internal/pkg/config"
	"github.com/prolink/credits-system/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := ensureIndexes(ctx, mongoClient, mongoDB); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Router & intake dispatcher ---
	router := api.NewRouter(api.Deps{
		MongoClient: mongoClient,
		MongoDB:     mongoDB,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
		Workers:     cfg.IntakeWorkers,
		Logger:      log,
	})
	router.Dispatcher.Start(ctx)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting credits service")
		if err := router.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, client *mongo.Client, db *mongo.Database) error {
	if err := mongodb.NewLedgerRepository(client, db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewUnlockRepository(client, db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewAuthRepository(db).EnsureIndexes(ctx)
}

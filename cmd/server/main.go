package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/cartcompare/backend/config"
	httpDelivery "github.com/cartcompare/backend/internal/delivery/http"
	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/cache"
	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
	"github.com/cartcompare/backend/internal/infrastructure/ratelimit"
	"github.com/cartcompare/backend/internal/infrastructure/session"
	"github.com/cartcompare/backend/internal/infrastructure/stores"
	"github.com/cartcompare/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting cartcompare backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	// Infrastructure
	fetchClient := httpclient.New(cfg.Stores.FetchTimeout, logger)
	colesSessions := session.NewManager(fetchClient, cfg.Session.TTL, logger)
	limiter := ratelimit.New(cfg.Stores.MaxConcurrentPerStore, cfg.Stores.MaxQueueSize)
	responseCache := cache.NewResponseCache(cfg.Cache.ResultTTL, cfg.Cache.MaxEntries)

	adapters := []domain.StoreAdapter{
		stores.NewWoolworthsAdapter(fetchClient, logger),
		stores.NewColesAdapter(fetchClient, colesSessions, logger),
		stores.NewAldiAdapter(fetchClient, logger),
		stores.NewHarrisFarmAdapter(fetchClient, logger),
	}

	// Usecase
	orchestrator := usecase.NewSearchOrchestrator(adapters, limiter, responseCache, usecase.Limits{
		MaxItems:          cfg.Limits.MaxItems,
		MaxItemNameLength: cfg.Limits.MaxItemNameLength,
		MaxQuantity:       cfg.Limits.MaxQuantity,
	}, logger)

	// Delivery
	handler := httpDelivery.NewHandler(orchestrator, logger)
	router := httpDelivery.SetupRouter(cfg, logger, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

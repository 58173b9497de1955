package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/farmops/backend/internal/application/identity"
	partyapp "github.com/farmops/backend/internal/application/party"
	tradeapp "github.com/farmops/backend/internal/application/trade"
	"github.com/farmops/backend/internal/infrastructure/auth"
	"github.com/farmops/backend/internal/infrastructure/cache"
	"github.com/farmops/backend/internal/infrastructure/config"
	"github.com/farmops/backend/internal/infrastructure/logger"
	"github.com/farmops/backend/internal/infrastructure/persistence"
	"github.com/farmops/backend/internal/interfaces/http/handler"
	"github.com/farmops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting farmops backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs token revocation and order idempotency; when it is not
	// reachable the process still starts with in-memory fallbacks, which
	// only hold for a single instance.
	var blacklist auth.TokenBlacklist
	var idempotency cache.IdempotencyStore
	if redisClient, err := cache.NewRedisClient(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist and idempotency store", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
		idempotency = cache.NewInMemoryIdempotencyStore()
	} else {
		defer func() { _ = redisClient.Close() }()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		idempotency = cache.NewRedisIdempotencyStore(redisClient, "")
		log.Info("Redis connected")
	}

	userRepo := persistence.NewGormUserRepository(db.DB)
	farmRepo := persistence.NewGormFarmRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db)
	partyRoleRepo := persistence.NewGormPartyRoleRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db)

	jwtService := auth.NewJWTService(cfg.JWT)

	accessGuard := identityapp.NewAccessGuard(jwtService, blacklist, userRepo, farmRepo, membershipRepo, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	membershipService := identityapp.NewMembershipService(membershipRepo, userRepo, log)
	partyService := partyapp.NewService(partyRepo, log)
	orderService := tradeapp.NewOrderService(orderRepo, catalogRepo, partyRoleRepo, partyRepo, idempotency, log)
	catalogService := tradeapp.NewCatalogService(catalogRepo, log)

	engine := router.Setup(cfg, log, accessGuard, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Party:      handler.NewPartyHandler(partyService),
		Order:      handler.NewOrderHandler(orderService),
		Catalog:    handler.NewCatalogHandler(catalogService),
		Membership: handler.NewMembershipHandler(membershipService),
		Health:     handler.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	log.Info("HTTP server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

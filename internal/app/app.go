package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"couponhub/database"
	"couponhub/internal/auth"
	"couponhub/internal/cache"
	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/handlers"
	"couponhub/internal/logger"
	"couponhub/internal/routes"
	"couponhub/internal/services"
	"couponhub/internal/validator"
	"couponhub/internal/workers"
)

// Run boots the whole application and blocks until SIGINT/SIGTERM.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validator.Init(); err != nil {
		return fmt.Errorf("validator init: %w", err)
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
	} else {
		logger.Warn("redis not configured, claim limits fall back to the database")
	}

	jwtManager, err := auth.NewManager(cfg.JWT.Secret, "couponhub", time.Duration(cfg.JWT.AccessExpiry)*time.Minute)
	if err != nil {
		return fmt.Errorf("jwt manager: %w", err)
	}

	var mailer email.Provider = email.NoopProvider{}
	if cfg.Email.SMTPHost != "" {
		mailer = email.NewSMTPProvider(cfg.Email)
	}

	container := services.NewServiceContainer(db, redisClient, jwtManager, mailer, cfg)

	if err := seedFirstAdmin(db, cfg); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := seedPlans(db); err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	if err := seedBadges(db); err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	appHandlers := handlers.NewAppHandlers(container, jwtManager)

	var rateLimiter cache.RateLimiter
	if redisClient != nil {
		rateLimiter = cache.NewRateLimiter(redisClient)
	}
	routes.SetupRoutes(router, appHandlers, rateLimiter, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.NewCouponExpiryWorker(container.CouponRepo, 10*time.Minute).Run(ctx)
	go workers.NewSubscriptionWorker(container.Subscriptions, time.Hour).Run(ctx)
	go workers.NewTokenCleanupWorker(container.TokenRepo, 6*time.Hour).Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

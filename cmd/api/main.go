package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"kumoney/internal/config"
	"kumoney/internal/database"
	"kumoney/internal/lock"
	"kumoney/internal/logger"
	"kumoney/internal/middleware"
	"kumoney/internal/notifier"
	"kumoney/internal/payment"
	"kumoney/internal/router"
	"kumoney/internal/scheduler"
	"kumoney/internal/validator"
)

// @title           KU-Money API
// @version         1.0
// @description     KU-Money is a personal finance tracker with free, pro and unlimited subscription tiers billed through Xendit.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if appConfig.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", appConfig.RedisAddr, err)
		}
	}

	locker, err := lock.New(appConfig.LimitLockDriver, redisClient)
	if err != nil {
		return err
	}

	sender, err := notifier.New(ctx, appConfig)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}

	if appConfig.XenditSecretKey == "" {
		log.Warn("XENDIT_SECRET_KEY is not set, checkout requests will be rejected by the gateway")
	}
	gateway := payment.NewXenditClient(appConfig.XenditBaseURL, appConfig.XenditSecretKey, appConfig.GatewayTimeout)

	db := dbManager.DB()
	engine := router.New(router.NewServices(db, gateway, appConfig.ClientURL), router.Options{
		Locker:        locker,
		LockWait:      middleware.DefaultLockWait,
		CallbackToken: appConfig.XenditCallbackToken,
		AllowedOrigin: appConfig.ClientURL,
	})

	sweeperDone := make(chan struct{})
	if appConfig.SweeperEnabled {
		sweeper := scheduler.NewExpirySweeper(scheduler.SweeperConfig{
			DB:       db,
			Sender:   sender,
			Location: appConfig.Location(),
			Interval: appConfig.SweepInterval,
			Redis:    redisClient,
		})
		go func() {
			defer close(sweeperDone)
			sweeper.Start(ctx)
		}()
	} else {
		close(sweeperDone)
		log.Info("Expiry sweeper disabled")
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting KU-Money backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			<-sweeperDone
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-sweeperDone
	return nil
}

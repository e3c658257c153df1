// @title           Resource API
// @version         1.0
// @description     Credential authentication and owner-scoped resource CRUD.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/api"
	"github.com/motogear/resource-api/internal/api/middleware"
	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
	"github.com/motogear/resource-api/internal/core/service"
	"github.com/motogear/resource-api/internal/infrastructure/config"
	"github.com/motogear/resource-api/internal/infrastructure/db"
	redisstore "github.com/motogear/resource-api/internal/infrastructure/db/redis"
	"github.com/motogear/resource-api/internal/infrastructure/http/handlers"
	"github.com/motogear/resource-api/internal/infrastructure/queue"
	"github.com/motogear/resource-api/internal/infrastructure/ratelimit"
	"github.com/motogear/resource-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "resource-api"})
		bootLog := logger.Get()
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "resource-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	kinds := domain.BuiltinKinds()

	stores, err := db.Open(ctx, cfg, kinds, logger.Component("storage"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing storage")
		}
	}()

	// --- Core services ---
	tokens, err := service.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, nil)
	if err != nil {
		return err
	}
	hasher := service.NewHasher(cfg.Password.Algo, cfg.Password.BcryptCost)
	authService := service.NewAuthService(stores.Users, hasher, tokens,
		service.AuthConfig{MinPasswordLength: cfg.Password.MinLength}, logger.Component("auth"))

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Handle, cfg.Admin.Password); err != nil {
		return err
	}

	activityService := service.NewActivityService(stores.Activity, logger.Component("activity"))
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, activityService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	resourceServices := make([]ports.ResourceService, 0, len(kinds))
	for _, kind := range kinds {
		resourceServices = append(resourceServices,
			service.NewResourceService(kind, stores.Resources, dispatcher, nil, logger.Component("resources")))
	}

	// --- Login throttle: shared through Redis when configured ---
	health := stores.Health
	var limiter middleware.Limiter = ratelimit.NewLocal(cfg.LoginPerMinute, nil)
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = redisstore.NewWindowLimiter(rdb, cfg.LoginPerMinute, time.Minute)
		health = append(health, handlers.Dependency{Name: "redis", Ping: redisstore.Pinger(rdb)})
	}

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Resources:  resourceServices,
		Activity:   activityService,
		Limiter:    limiter,
		Health:     health,
		Registerer: prometheus.DefaultRegisterer,
		Log:        logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Dur("token_ttl", tokens.TTL()).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

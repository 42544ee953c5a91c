package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ronagung/wedding-registry/internal/api"
	"github.com/ronagung/wedding-registry/internal/api/cookie"
	"github.com/ronagung/wedding-registry/internal/api/handler"
	"github.com/ronagung/wedding-registry/internal/core/service"
	redisdb "github.com/ronagung/wedding-registry/internal/infrastructure/db/redis"
	"github.com/ronagung/wedding-registry/internal/pkg/password"
	"github.com/ronagung/wedding-registry/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	cfg := a.cfg

	rdb, err := redisdb.Connect(ctx, redisdb.Options{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		OpTimeout: cfg.Redis.OpTimeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	proxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}

	hasher := password.NewPool(cfg.Auth.HashWorkers, logger.Component("password"))
	hasher.Start()
	// stopped after e.Shutdown so draining requests can still verify passwords
	defer hasher.Stop()

	sessions := service.NewSessionService(a.sessions, cfg.Auth.SessionTTL, logger.Component("sessions"))
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	auth := service.NewAuthService(a.accounts, sessions, hasher, throttle, logger.Component("auth"))
	gifts := service.NewGiftService(a.gifts, logger.Component("gifts"))

	go service.NewSessionSweeper(sessions, cfg.Auth.SweepInterval, logger.Component("sweeper")).Run(ctx)

	e := api.NewRouter(api.Dependencies{
		Auth:           auth,
		Sessions:       sessions,
		Gifts:          gifts,
		Cookies:        cookie.NewPolicy(cfg.Auth.CookieName, cfg.Auth.CookieDomain, cfg.Auth.CMSOrigin),
		Readiness:      handler.NewHealthDependenciesHandler(a.db, rdb),
		Logger:         logger.Component("http"),
		Production:     cfg.IsProduction(),
		BasePath:       cfg.BasePath,
		AllowedOrigins: cfg.Auth.AllowedOrigin,
		TrustedProxies: proxies,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("base_path", cfg.BasePath).
			Msg("registry API listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

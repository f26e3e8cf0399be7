package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"

	"github.com/okian/liao/internal/adapters/http/api"
	"github.com/okian/liao/internal/adapters/http/swagger"
	"github.com/okian/liao/internal/adapters/session"
	app "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/config"
	"github.com/okian/liao/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP server (default)",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)
	log := logger.Get()

	store, err := openStore(c, cfg.AutoMigrate)
	if err != nil {
		return err
	}

	gate, err := session.NewGate(store, cfg.SessionSecret, session.WithTTL(cfg.SessionTTL()))
	if err != nil {
		_ = store.Close()
		return err
	}

	svc := app.New(
		app.WithStore(store),
		app.WithGate(gate),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLogger(logger.Named("service")),
		app.WithTracer(otel.Tracer("github.com/okian/liao")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newHandler builds the router with the API and docs routes.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	r := chi.NewRouter()

	apiServer := api.NewServer(svc, svc,
		api.WithCookie(cfg.SessionCookie, cfg.SecureCookie),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithTrustProxy(cfg.TrustProxy),
		api.WithLoginLimiter(session.NewIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst)),
		api.WithLogger(logger.Named("api")),
	)
	apiServer.Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/recipebox/internal/accounts"
	"github.com/geocoder89/recipebox/internal/auth"
	"github.com/geocoder89/recipebox/internal/config"
	"github.com/geocoder89/recipebox/internal/db"
	httpx "github.com/geocoder89/recipebox/internal/http"
	"github.com/geocoder89/recipebox/internal/http/handlers"
	"github.com/geocoder89/recipebox/internal/observability"
	"github.com/geocoder89/recipebox/internal/repo/postgres"
	"github.com/geocoder89/recipebox/internal/repo/redisstore"
	"github.com/geocoder89/recipebox/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTelEnabled, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		mctx, cancel := config.WithTimeout(30 * time.Second)
		err := db.Migrate(mctx, pool)
		cancel()
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	readyChecks := map[string]handlers.Check{"postgres": pool.Ping}

	var tokenStore accounts.TokenRepository
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		rdb := redisstore.NewClient(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		tokenStore = redisstore.NewTokensRepo(rdb)
		readyChecks["redis"] = redisstore.Pinger(rdb)
	case config.TokenStorePostgres:
		tokenStore = postgres.NewTokensRepo(pool, prom)
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore)
	}

	creds := accounts.NewCredentialStore(postgres.NewUsersRepo(pool, prom), security.NewHasher(0), tokenStore)
	issuer := accounts.NewTokenIssuer(creds, tokenStore, auth.NewManager(cfg.TokenSecret))

	sctx, cancel := config.WithTimeout(10 * time.Second)
	err = db.EnsureSuperuser(sctx, creds, cfg, log)
	cancel()
	if err != nil {
		return fmt.Errorf("seed superuser: %w", err)
	}

	// set up routers with the log
	router := httpx.NewRouter(log, httpx.Deps{
		Env:                cfg.Env,
		Credentials:        creds,
		Tokens:             issuer,
		Tags:               postgres.NewTagsRepo(pool, prom),
		Ingredients:        postgres.NewIngredientsRepo(pool, prom),
		Recipes:            postgres.NewRecipesRepo(pool, prom),
		ReadyChecks:        readyChecks,
		Prom:               prom,
		Gatherer:           reg,
		OTelEnabled:        cfg.OTelEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "token_store", cfg.TokenStore)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-stop:
	}

	log.Info("server shutting down")

	shutdownCtx, cancelShutdown := config.WithTimeout(10 * time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return nil
	}

	log.Info("shutdown complete")
	return nil
}

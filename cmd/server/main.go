// @title           Client Portal API
// @version         1.0
// @description     Multi-tenant client portal: tenants, users, access control and usage reporting.
// @BasePath        /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
//
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        portal_session
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

	_ "github.com/99minutos/client-portal/docs"
	"github.com/99minutos/client-portal/internal/api"
	"github.com/99minutos/client-portal/internal/api/handler"
	"github.com/99minutos/client-portal/internal/core/access"
	"github.com/99minutos/client-portal/internal/core/credential"
	"github.com/99minutos/client-portal/internal/core/service"
	mongodb "github.com/99minutos/client-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/client-portal/internal/infrastructure/db/redis"
	"github.com/99minutos/client-portal/internal/infrastructure/queue"
	"github.com/99minutos/client-portal/internal/pkg/config"
	"github.com/99minutos/client-portal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "client-portal: %v\n", err)
		os.Exit(1)
	}
}

// run wires and serves the application until a shutdown signal. Returning
// instead of exiting lets every deferred close run.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "client-portal",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting")

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		Timeout:     cfg.Mongo.Timeout,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("disconnect mongodb")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure mongodb indexes: %w", err)
	}
	if ok, err := mongodb.SupportsTransactions(ctx, mongoClient); err != nil {
		log.Warn().Err(err).Msg("could not determine mongodb topology")
	} else if !ok {
		log.Warn().Msg("mongodb is not a replica set; tenant deletion and engineer assignment will fail")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	tenants := mongodb.NewTenantRepository(db)
	audit := mongodb.NewAuditRepository(db)
	usage := mongodb.NewUsageRepository(db)
	txRunner := mongodb.NewTxRunner(mongoClient, logger.Component("tx"))
	sessions := redisdb.NewSessionStore(rdb)
	dedup := redisdb.NewDedupChecker(rdb, cfg.Usage.DedupTTL)

	// --- Access control ---
	codec := credential.NewTokenCodec(cfg.Session.Secret, cfg.Session.TTL)
	resolver := credential.NewResolver(
		logger.Component("credential"),
		credential.NewSessionTokenStrategy(cfg.Session.CookieName, codec, users),
		credential.NewLegacySessionStrategy(cfg.Session.LegacyCookie, sessions, users),
	)
	keyGate := credential.NewAPIKeyGate(cfg.APIKey.Key, cfg.APIKey.AllowQuery, logger.Component("apikey"))
	gate := access.NewGate(users)

	// --- Services ---
	authSvc := service.NewAuthService(users, codec, sessions, cfg.Session.LegacyTTL, logger.Component("auth"))
	tenantSvc := service.NewTenantService(tenants, users, audit, txRunner, sessions, logger.Component("tenants"))
	userSvc := service.NewUserService(users, tenants, audit, sessions, logger.Component("users"))
	usageSvc := service.NewUsageService(tenants, usage, dedup, logger.Component("usage"))

	// Workers outlive the signal context so queued events drain on shutdown.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(cfg.Usage.Workers, usageSvc, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Dependencies{
		Log:        logger.Component("http"),
		Resolver:   resolver,
		KeyGate:    keyGate,
		Gate:       gate,
		Auth:       authSvc,
		Tenants:    tenantSvc,
		Users:      userSvc,
		Usage:      usageSvc,
		Dispatcher: dispatcher,
		Cookies: handler.CookieConfig{
			SessionName: cfg.Session.CookieName,
			LegacyName:  cfg.Session.LegacyCookie,
			Secure:      cfg.Session.CookieSecure,
		},
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		Swagger: cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	dispatcher.Stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}
	log.Info().Msg("stopped")
	return nil
}

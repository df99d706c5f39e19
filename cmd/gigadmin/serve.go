package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gigboard/gigadmin/internal/api"
	"github.com/gigboard/gigadmin/internal/auth"
	"github.com/gigboard/gigadmin/internal/config"
	"github.com/gigboard/gigadmin/internal/db"
	"github.com/gigboard/gigadmin/internal/db/migrations"
	"github.com/gigboard/gigadmin/internal/dbpool"
	"github.com/gigboard/gigadmin/internal/middleware"
	"github.com/gigboard/gigadmin/internal/notify"
	"github.com/gigboard/gigadmin/internal/observer"
	"github.com/gigboard/gigadmin/internal/service"
	"github.com/gigboard/gigadmin/internal/store"
	"github.com/gigboard/gigadmin/internal/ws"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	publishQueueSize  = 1024
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, dbpool.Options{
		URL: cfg.DatabaseURL.Value(), MaxConns: cfg.DBMaxConns, MinConns: 2,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	prometheus.MustRegister(pool.Collectors()...)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	admins := store.NewAdminStore(base)
	users := store.NewUserStore(base)
	projects := store.NewProjectStore(base)

	authSvc := service.NewAuthService(
		admins,
		auth.NewTokenIssuer(cfg.JWTSecret.Value(), cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		auth.NewPasswordHasher(auth.DefaultBcryptCost),
		log,
	)

	if cfg.BootstrapAdminEmail != "" {
		if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword.Value()); err != nil {
			return err
		}
	}

	hub := ws.NewHub(log)
	auditSink := service.NewAuditSink(store.NewAuditStore(base))

	// Observer order matters: the audit row is written before anyone is told.
	observers := []observer.Observer{auditSink, notify.NewMetricsObserver(), hub}

	var publisher *notify.RedisPublisher

	if cfg.RedisEnabled() {
		rc := notify.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword.Value(), cfg.RedisDB)
		defer rc.Close() //nolint:errcheck // shutdown path.

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.WithError(err).Warn("redis unreachable at startup, actions will be retried per publish")
		}
		cancel()

		publisher = notify.NewRedisPublisher(rc, cfg.RedisChannel, publishQueueSize, log)
		observers = append(observers, publisher)
	}

	loginGuard := middleware.NewBruteForceGuard(ctx, log, middleware.LoginPolicy{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginWindow,
		Lockout:     cfg.LoginLockout,
	})

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:          log,
		DB:           pool,
		Hub:          hub,
		Users:        service.NewUserService(users, admins, log, observers...),
		Projects:     service.NewProjectService(projects, log, observers...),
		Progress:     service.NewProgressProjectService(store.NewProgressStore(base), projects, users, log, observers...),
		AutoTasks:    service.NewAutoTaskService(store.NewAutoTaskStore(base), log, observers...),
		Transactions: service.NewTransactionService(store.NewTransactionStore(base), log, observers...),
		Audit:        auditSink,
		Auth:         authSvc,
		LoginGuard:   loginGuard,
		CORSOrigins:  cfg.CORSOrigins,
		Version:      config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			publisher.Run(gctx)
			return nil
		})
	}

	g.Go(func() error { return listen(log, "api", srv) })
	g.Go(func() error { return listen(log, "metrics", metricsSrv) })

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		hub.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	log.WithFields(logrus.Fields{
		"addr":      cfg.Addr(),
		"metrics":   cfg.MetricsAddr(),
		"version":   config.Version,
		"schema":    db.SchemaVersion(),
		"redis":     cfg.RedisEnabled(),
		"observers": len(observers),
	}).Info("gigadmin started")

	return g.Wait()
}

func listen(log *logrus.Logger, name string, srv *http.Server) error {
	log.WithField("addr", srv.Addr).Infof("%s listener starting", name)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s listener: %w", name, err)
	}

	return nil
}

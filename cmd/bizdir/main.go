package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bizdir/bizdir/internal/app"
	"github.com/bizdir/bizdir/internal/audit"
	audithttp "github.com/bizdir/bizdir/internal/audit/http"
	"github.com/bizdir/bizdir/internal/auth"
	"github.com/bizdir/bizdir/internal/biz"
	"github.com/bizdir/bizdir/internal/comments"
	"github.com/bizdir/bizdir/internal/groups"
	"github.com/bizdir/bizdir/internal/observability"
	"github.com/bizdir/bizdir/internal/platform/cache"
	"github.com/bizdir/bizdir/internal/platform/db"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/resource"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbpool, migrations.FS, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	validate := resource.NewValidator()
	auditLogger := shared.NewAuditLogger(dbpool)

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(dbpool), tokens, cfg.DefaultGroups)
	authHandler := auth.NewHandler(logger, authService, validate)

	guard := rbac.Middleware{Registry: rbac.NewRegistry(), Logger: logger, Recorder: metrics}

	bizHandler := biz.NewHandler(biz.Params{
		Biz:       biz.NewBizRepository(dbpool),
		Hours:     biz.NewHoursRepository(dbpool),
		Guard:     guard,
		Validator: validate,
		Logger:    logger,
		Audit:     auditLogger,
	})
	commentsHandler := comments.NewHandler(logger, comments.NewRepository(dbpool), guard, validate, auditLogger)
	groupsHandler := groups.NewHandler(logger, groups.NewService(groups.NewRepository(dbpool), auditLogger, logger), validate, guard)
	auditHandler := audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)), guard)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Resolver:        authService,
		AuthHandler:     authHandler,
		BizHandler:      bizHandler,
		CommentsHandler: commentsHandler,
		AuditHandler:    auditHandler,
		GroupsHandler:   groupsHandler,
		Metrics:         metrics,
		HealthChecks: map[string]app.Pinger{
			"postgres": dbpool,
			"redis": app.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

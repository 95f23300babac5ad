package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/access-service/internal/access"
	httptransport "github.com/spec-kit/access-service/internal/api/http"
	"github.com/spec-kit/access-service/internal/api/http/handlers"
	"github.com/spec-kit/access-service/internal/auth"
	"github.com/spec-kit/access-service/internal/config"
	"github.com/spec-kit/access-service/internal/domain"
	"github.com/spec-kit/access-service/internal/events"
	"github.com/spec-kit/access-service/internal/observability"
	"github.com/spec-kit/access-service/internal/persistence"
	"github.com/spec-kit/access-service/internal/repository"
	"github.com/spec-kit/access-service/internal/service"
	"github.com/spec-kit/access-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	attemptRepo := repository.NewBlockedAttemptRepository(pool)

	protectedRole := domain.Role(cfg.Access.ProtectedRole)

	modeStore := access.NewRedisModeStore(redis.Client)
	coordinator := access.NewCoordinator(modeStore, dispatcher, logger, cfg.Access.EmergencyContact)
	if err := coordinator.Restore(ctx); err != nil {
		logger.Warn("failed to restore availability mode", zap.Error(err))
	}

	lockout := access.NewLockoutTracker(accountRepo, dispatcher, logger, cfg.Access.LockThreshold)

	auditLog := access.NewAuditLog(attemptRepo, logger, cfg.Access.AuditQueueSize, cfg.Access.AuditRetention())
	auditLog.Start(ctx)
	defer auditLog.Close()

	evaluator := access.NewEvaluator(coordinator, lockout, auditLog, metrics, logger, protectedRole)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo: accountRepo,
		Evaluator:   evaluator,
		Logger:      logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		AccountRepo: accountRepo,
		Modes:       coordinator,
		Lockout:     lockout,
		Audit:       auditLog,
		Logger:      logger,
	}, protectedRole)

	worker.StartAlertWorker(service.NewAlertService(dispatcher, logger))

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:            handlers.NewAuthHandler(authService),
		Availability:    handlers.NewAvailabilityHandler(adminService),
		Users:           handlers.NewUsersHandler(adminService),
		BlockedAttempts: handlers.NewBlockedAttemptsHandler(adminService),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/mangoesafterplay/customer-onboarding/internal/api/http"
	"github.com/mangoesafterplay/customer-onboarding/internal/api/http/handlers"
	"github.com/mangoesafterplay/customer-onboarding/internal/client"
	"github.com/mangoesafterplay/customer-onboarding/internal/config"
	"github.com/mangoesafterplay/customer-onboarding/internal/observability"
	"github.com/mangoesafterplay/customer-onboarding/internal/persistence"
	"github.com/mangoesafterplay/customer-onboarding/internal/queue"
	"github.com/mangoesafterplay/customer-onboarding/internal/repository"
	"github.com/mangoesafterplay/customer-onboarding/internal/service"
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

	pool := pg.PoolHandle()
	customerRepo := repository.NewCustomerRepository(pool)
	paramRepo := repository.NewParameterRepository(pool)

	paramsService := service.NewParamsService(paramRepo, redis.Client, logger)
	if _, err := paramsService.Preload(ctx); err != nil {
		logger.Fatal("failed to preload parameters", zap.Error(err))
	}

	publisher := queue.NewPublisher(cfg.Redis, cfg.Queue, logger)
	defer publisher.Close() //nolint:errcheck

	securityClient := client.NewSecurityClient(cfg.Security)

	registrationService := service.NewRegistrationService(service.RegistrationDependencies{
		CustomerRepo: customerRepo,
		Authority:    securityClient,
		Flags:        paramsService,
		Publisher:    publisher,
	}, cfg.Notification.WelcomeSubject, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterCustomerRoutes(app, httptransport.CustomerRouteConfig{
		Health:     handlers.NewHealthHandler("customer-service", cfg.App.Version, pg, redis),
		Customers:  handlers.NewCustomersHandler(registrationService),
		Parameters: handlers.NewParametersHandler(paramsService),
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

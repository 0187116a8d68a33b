package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chainorg/internal/application/dto"
	"chainorg/internal/infrastructure/config"
	"chainorg/internal/infrastructure/di"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		logger.Printf("startup config error code=%s message=%s metadata=%v", cfgErr.Code, cfgErr.Message, cfgErr.Metadata)
		os.Exit(1)
	}
	if !cfg.ReconcilerEnabled {
		logger.Printf("reconciler config error code=CONFIG_RECONCILER_DISABLED message=REGISTRATION_RECONCILER_ENABLED must be true for reconciler runtime")
		os.Exit(1)
	}
	if !cfg.UsesPostgres() {
		logger.Printf("reconciler config error code=CONFIG_RECONCILER_STORE_INVALID message=standalone reconciler requires REGISTRATION_ATTEMPT_STORE=postgres")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, buildErr := di.Build(ctx, cfg, logger)
	if buildErr != nil {
		logger.Printf("dependency wiring error: %v", buildErr)
		os.Exit(1)
	}
	defer container.Close(logger)

	logger.Printf("reconciler persistence initialization starting database_target=%s", cfg.DatabaseTarget)
	persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
		ReadinessTimeout:       cfg.DBReadinessTimeout,
		ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
		SkipMigrations:         true,
	})
	if persistenceErr != nil {
		logger.Printf(
			"reconciler persistence initialization failed code=%s message=%s metadata=%v",
			persistenceErr.Code,
			persistenceErr.Message,
			persistenceErr.Details,
		)
		container.Close(logger)
		os.Exit(1)
	}
	logger.Printf("reconciler persistence initialization completed database_target=%s", cfg.DatabaseTarget)

	container.ReconcilerWorker.Start(ctx)
	logger.Printf("reconciler stopped")
}

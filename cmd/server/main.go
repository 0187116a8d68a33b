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

	"golang.org/x/sync/errgroup"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		logger.Printf("startup config error code=%s message=%s metadata=%v", cfgErr.Code, cfgErr.Message, cfgErr.Metadata)
		os.Exit(1)
	}
	logger.Printf(
		"registration config network=%s attempt_store=%s commitment=%s max_retries=%d timeout=%s reconciler_enabled=%t",
		cfg.SolanaNetwork,
		cfg.AttemptStore,
		cfg.ConfirmCommitment,
		cfg.ConfirmMaxRetries,
		cfg.ConfirmTimeout,
		cfg.ReconcilerEnabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, buildErr := di.Build(ctx, cfg, logger)
	if buildErr != nil {
		logger.Printf("dependency wiring error: %v", buildErr)
		os.Exit(1)
	}
	defer container.Close(logger)

	if container.InitializePersistenceUseCase != nil {
		logger.Printf("persistence initialization starting database_target=%s", cfg.DatabaseTarget)
		persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
			ReadinessTimeout:       cfg.DBReadinessTimeout,
			ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
		})
		if persistenceErr != nil {
			logger.Printf(
				"persistence initialization failed code=%s message=%s metadata=%v",
				persistenceErr.Code,
				persistenceErr.Message,
				persistenceErr.Details,
			)
			container.Close(logger)
			os.Exit(1)
		}
		logger.Printf("persistence initialization completed database_target=%s", cfg.DatabaseTarget)
	} else {
		logger.Printf("persistence initialization skipped attempt_store=%s", cfg.AttemptStore)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return container.Server.Run(groupCtx)
	})
	if container.ReconcilerWorker.Enabled() {
		group.Go(func() error {
			container.ReconcilerWorker.Start(groupCtx)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Printf("server stopped with error: %v", err)
		container.Close(logger)
		os.Exit(1)
	}
	logger.Printf("server stopped")
}

package di

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"chainorg/internal/adapters/inbound/http/controllers"
	httpRouter "chainorg/internal/adapters/inbound/http/router"
	"chainorg/internal/adapters/outbound/docs"
	"chainorg/internal/adapters/outbound/inflightguard"
	"chainorg/internal/adapters/outbound/ledger/solanarpc"
	onboardinghttp "chainorg/internal/adapters/outbound/onboarding/http"
	memorypersistence "chainorg/internal/adapters/outbound/persistence/memory"
	postgresqlbootstrap "chainorg/internal/adapters/outbound/persistence/postgresql/bootstrap"
	postgresqlregistration "chainorg/internal/adapters/outbound/persistence/postgresql/registrationattempt"
	postgresqlshared "chainorg/internal/adapters/outbound/persistence/postgresql/shared"
	"chainorg/internal/adapters/outbound/wallet/deterministic"
	"chainorg/internal/adapters/outbound/wallet/keypair"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/application/use_cases"
	"chainorg/internal/infrastructure/config"
	"chainorg/internal/infrastructure/httpserver"
	"chainorg/internal/infrastructure/metrics"
	"chainorg/internal/infrastructure/reconciler"
	"chainorg/internal/infrastructure/walletkeys"

	"github.com/redis/go-redis/v9"
)

type Container struct {
	Database *sql.DB
	Redis    *redis.Client
	Server   *httpserver.Server
	Metrics  *metrics.RegistrationMetrics

	// InitializePersistenceUseCase is nil for the memory attempt store.
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase
	ReconcilerWorker             *reconciler.Worker
}

type attemptStore interface {
	portsout.RegistrationAttemptRepository
	portsout.RegistrationReconciliationRepository
}

func Build(ctx context.Context, cfg config.Config, logger *log.Logger) (Container, error) {
	container := Container{Metrics: metrics.NewRegistrationMetrics()}

	catalog, keyErr := buildAssetCatalog(cfg)
	if keyErr != nil {
		return Container{}, fmt.Errorf("asset catalog: %w", keyErr)
	}
	deriver := deterministic.NewAddressDeriver(catalog)

	signer, appErr := keypair.NewSigner(keypair.Config{
		KeypairPath: cfg.WalletKeypairPath,
		PrivateKey:  cfg.WalletPrivateKey,
	})
	if appErr != nil {
		return Container{}, fmt.Errorf("wallet signer: %s: %s", appErr.Code, appErr.Message)
	}

	var store attemptStore
	if cfg.UsesPostgres() {
		persistenceGateway := postgresqlbootstrap.NewGateway(
			cfg.DatabaseURL,
			cfg.DatabaseTarget,
			cfg.MigrationsPath,
			logger,
		)
		container.InitializePersistenceUseCase = use_cases.NewInitializePersistenceUseCase(persistenceGateway)
		container.Database = postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)
		store = postgresqlregistration.NewRepository(container.Database, logger)
	} else {
		store = memorypersistence.NewRepository()
	}

	guard, buildErr := buildInFlightGuard(ctx, cfg, &container)
	if buildErr != nil {
		container.Close(logger)
		return Container{}, buildErr
	}

	ledgerGateway := solanarpc.NewGateway(solanarpc.Config{
		RPCURL:              cfg.SolanaRPCURL,
		PreflightCommitment: cfg.ConfirmCommitment,
		HTTPTimeout:         cfg.SolanaRPCTimeout,
	})
	onboardingGateway := onboardinghttp.NewGateway(onboardinghttp.Config{
		BaseURL: cfg.OnboardingBaseURL,
		Token:   cfg.OnboardingToken,
		Timeout: cfg.OnboardingTimeout,
	})

	registrationDeps := use_cases.RegistrationDependencies{
		Repository:   store,
		Guard:        guard,
		Preparation:  onboardingGateway,
		Finalization: onboardingGateway,
		Ledger:       ledgerGateway,
		Signer:       signer,
		Deriver:      deriver,
		Confirmer:    use_cases.NewConfirmTransactionUseCase(ledgerGateway, container.Metrics),
		Metrics:      container.Metrics,
		Clock:        use_cases.NewSystemClock(),
		IDs:          use_cases.NewUUIDGenerator(),
	}
	registrationSettings := use_cases.RegistrationSettings{
		Commitment: cfg.ConfirmCommitment,
		MaxRetries: cfg.ConfirmMaxRetries,
		Timeout:    cfg.ConfirmTimeout,
		GuardTTL:   cfg.InFlightGuardTTL,
	}

	healthUseCase := use_cases.NewGetHealthUseCase(use_cases.HealthDependencies{
		Network: catalog.Network(),
		Ledger:  ledgerGateway,
		Signer:  signer,
	})
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath))
	listAssetsUseCase := use_cases.NewListAssetsUseCase(deriver)
	deriveRoutingUseCase := use_cases.NewDeriveRoutingAddressesUseCase(deriver)
	registerUseCase := use_cases.NewRegisterOrganizationUseCase(registrationDeps, registrationSettings)
	finalizeUseCase := use_cases.NewFinalizeRegistrationUseCase(registrationDeps, registrationSettings)
	getAttemptUseCase := use_cases.NewGetRegistrationAttemptUseCase(store)
	reconcileUseCase := use_cases.NewReconcileRegistrationsUseCase(store, registrationDeps, registrationSettings)

	container.ReconcilerWorker = reconciler.NewWorker(
		cfg.ReconcilerEnabled,
		cfg.ReconcilerPollInterval,
		cfg.ReconcilerBatchSize,
		cfg.ReconcilerWorkerID,
		cfg.ReconcilerLeaseDuration,
		cfg.ReconcilerMinAge,
		reconcileUseCase,
		container.Metrics,
		logger,
	)

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:           controllers.NewHealthController(healthUseCase, logger),
		SwaggerController:          controllers.NewSwaggerController(openAPIUseCase, logger),
		AssetsController:           controllers.NewAssetsController(listAssetsUseCase, logger),
		RegistrationsController:    controllers.NewRegistrationsController(registerUseCase, finalizeUseCase, getAttemptUseCase, logger),
		RoutingAddressesController: controllers.NewRoutingAddressesController(deriveRoutingUseCase, logger),
		MetricsHandler:             container.Metrics.Handler(),
	})
	container.Server = httpserver.New(cfg.Address(), router, cfg.ShutdownTimeout, logger)

	logf(
		logger,
		"dependencies wired attempt_store=%s inflight_guard=%s network=%s assets=%d",
		cfg.AttemptStore,
		guardKind(cfg),
		catalog.Network(),
		len(catalog.Assets()),
	)

	return container, nil
}

// Close releases the database pool and redis client, if any.
func (c Container) Close(logger *log.Logger) {
	if c.Database != nil {
		if err := c.Database.Close(); err != nil {
			logf(logger, "database close warning error=%v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logf(logger, "redis close warning error=%v", err)
		}
	}
}

func buildAssetCatalog(cfg config.Config) (*walletkeys.AssetCatalog, *walletkeys.KeyError) {
	if len(cfg.SupportedAssets) > 0 {
		return walletkeys.NewAssetCatalog(cfg.SolanaNetwork, cfg.SupportedAssets)
	}
	return walletkeys.DefaultAssetCatalog(cfg.SolanaNetwork)
}

func buildInFlightGuard(ctx context.Context, cfg config.Config, container *Container) (portsout.InFlightGuard, error) {
	if cfg.InFlightGuardRedisURL == "" {
		return inflightguard.NewMemoryGuard(), nil
	}

	client, appErr := inflightguard.NewRedisClient(ctx, cfg.InFlightGuardRedisURL)
	if appErr != nil {
		return nil, fmt.Errorf("inflight guard: %s: %s", appErr.Code, appErr.Message)
	}
	container.Redis = client
	return inflightguard.NewRedisGuard(client, ""), nil
}

func guardKind(cfg config.Config) string {
	if cfg.InFlightGuardRedisURL == "" {
		return "memory"
	}
	return "redis"
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

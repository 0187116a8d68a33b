package config

import (
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	valueobjects "chainorg/internal/domain/value_objects"
	"chainorg/internal/infrastructure/walletkeys"
)

const (
	defaultPort                     = "8080"
	defaultOpenAPISpec              = "api/openapi.yaml"
	defaultShutdownTimeout          = 10 * time.Second
	defaultDBReadinessTimeout       = 30 * time.Second
	defaultDBReadinessRetryInterval = 2 * time.Second
	defaultMigrationsPath           = "internal/adapters/outbound/persistence/postgresql/migrations"
	defaultAttemptStore             = AttemptStorePostgres
	defaultInFlightGuardTTL         = 5 * time.Minute
	defaultSolanaNetwork            = walletkeys.NetworkMainnetBeta
	defaultOnboardingTimeout        = 15 * time.Second
	defaultSolanaRPCTimeout         = 10 * time.Second
	defaultConfirmCommitment        = "confirmed"
	defaultConfirmMaxRetries        = 5
	defaultConfirmTimeoutMS         = 60000
	defaultReconcilerPollInterval   = 30 * time.Second
	defaultReconcilerBatchSize      = 20
	defaultReconcilerWorkerID       = "registration-reconciler"
	defaultReconcilerLeaseDuration  = 2 * time.Minute
	defaultReconcilerMinAge         = 2 * time.Minute
)

const (
	AttemptStorePostgres = "postgres"
	AttemptStoreMemory   = "memory"
)

const supportedAssetsEnv = "SUPPORTED_ASSETS_JSON"

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type Config struct {
	Port                     string
	OpenAPISpecPath          string
	ShutdownTimeout          time.Duration
	AttemptStore             string
	DatabaseURL              string
	DatabaseTarget           string
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration
	MigrationsPath           string
	InFlightGuardRedisURL    string
	InFlightGuardTTL         time.Duration
	SolanaRPCURL             string
	SolanaRPCTimeout         time.Duration
	SolanaNetwork            string
	SupportedAssets          []walletkeys.AssetDefinition
	OnboardingBaseURL        string
	OnboardingToken          string
	OnboardingTimeout        time.Duration
	WalletKeypairPath        string
	WalletPrivateKey         string
	ConfirmCommitment        string
	ConfirmMaxRetries        int
	ConfirmTimeout           time.Duration
	ReconcilerEnabled        bool
	ReconcilerPollInterval   time.Duration
	ReconcilerBatchSize      int
	ReconcilerWorkerID       string
	ReconcilerLeaseDuration  time.Duration
	ReconcilerMinAge         time.Duration
}

func LoadConfig() (Config, *ConfigError) {
	attemptStore := strings.ToLower(strings.TrimSpace(os.Getenv("REGISTRATION_ATTEMPT_STORE")))
	if attemptStore == "" {
		attemptStore = defaultAttemptStore
	}
	if attemptStore != AttemptStorePostgres && attemptStore != AttemptStoreMemory {
		return Config{}, &ConfigError{
			Code:     "CONFIG_ATTEMPT_STORE_INVALID",
			Message:  "REGISTRATION_ATTEMPT_STORE must be postgres or memory",
			Metadata: map[string]string{"value": attemptStore},
		}
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	databaseTarget := ""
	if attemptStore == AttemptStorePostgres {
		if databaseURL == "" {
			return Config{}, &ConfigError{
				Code:    "CONFIG_DATABASE_URL_REQUIRED",
				Message: "DATABASE_URL is required for the postgres attempt store",
			}
		}

		target, parseErr := parseDatabaseTarget(databaseURL)
		if parseErr != nil {
			return Config{}, parseErr
		}
		databaseTarget = target
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	openAPISpecPath := os.Getenv("OPENAPI_SPEC_PATH")
	if openAPISpecPath == "" {
		openAPISpecPath = defaultOpenAPISpec
	}

	redisURL := strings.TrimSpace(os.Getenv("INFLIGHT_GUARD_REDIS_URL"))
	if redisURL != "" {
		if _, err := url.Parse(redisURL); err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_INFLIGHT_GUARD_REDIS_URL_INVALID",
				Message: "INFLIGHT_GUARD_REDIS_URL is invalid",
			}
		}
	}
	guardTTL, cfgErr := durationEnv("INFLIGHT_GUARD_TTL", defaultInFlightGuardTTL, "CONFIG_INFLIGHT_GUARD_TTL_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	rpcURL, cfgErr := requiredURLEnv("SOLANA_RPC_URL", "CONFIG_SOLANA_RPC_URL")
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	rpcTimeout, cfgErr := durationEnv("SOLANA_RPC_TIMEOUT", defaultSolanaRPCTimeout, "CONFIG_SOLANA_RPC_TIMEOUT_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	network := strings.ToLower(strings.TrimSpace(os.Getenv("SOLANA_NETWORK")))
	if network == "" {
		network = defaultSolanaNetwork
	}
	switch network {
	case walletkeys.NetworkMainnetBeta, "devnet", "testnet", "localnet":
	default:
		return Config{}, &ConfigError{
			Code:     "CONFIG_SOLANA_NETWORK_INVALID",
			Message:  "SOLANA_NETWORK must be mainnet-beta, devnet, testnet or localnet",
			Metadata: map[string]string{"value": network},
		}
	}

	supportedAssets, cfgErr := parseSupportedAssets(strings.TrimSpace(os.Getenv(supportedAssetsEnv)))
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	if network != walletkeys.NetworkMainnetBeta && len(supportedAssets) == 0 {
		return Config{}, &ConfigError{
			Code:     "CONFIG_SUPPORTED_ASSETS_REQUIRED",
			Message:  supportedAssetsEnv + " is required outside mainnet-beta",
			Metadata: map[string]string{"network": network},
		}
	}

	onboardingBaseURL, cfgErr := requiredURLEnv("ONBOARDING_API_BASE_URL", "CONFIG_ONBOARDING_API_BASE_URL")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	onboardingTimeout, cfgErr := durationEnv("ONBOARDING_API_TIMEOUT", defaultOnboardingTimeout, "CONFIG_ONBOARDING_API_TIMEOUT_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	commitment := strings.ToLower(strings.TrimSpace(os.Getenv("REGISTRATION_CONFIRM_COMMITMENT")))
	if commitment == "" {
		commitment = defaultConfirmCommitment
	}
	if _, appErr := valueobjects.ParseCommitmentLevel(commitment); appErr != nil {
		return Config{}, &ConfigError{
			Code:     "CONFIG_CONFIRM_COMMITMENT_INVALID",
			Message:  "REGISTRATION_CONFIRM_COMMITMENT must be processed, confirmed or finalized",
			Metadata: map[string]string{"value": commitment},
		}
	}
	maxRetries, cfgErr := positiveIntEnv("REGISTRATION_CONFIRM_MAX_RETRIES", defaultConfirmMaxRetries, "CONFIG_CONFIRM_MAX_RETRIES_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	timeoutMS, cfgErr := positiveIntEnv("REGISTRATION_CONFIRM_TIMEOUT_MS", defaultConfirmTimeoutMS, "CONFIG_CONFIRM_TIMEOUT_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	confirmTimeout := time.Duration(timeoutMS) * time.Millisecond

	// The guard must outlive one full registration flow.
	flightBudget := 2*onboardingTimeout + rpcTimeout + confirmTimeout
	if guardTTL <= flightBudget {
		return Config{}, &ConfigError{
			Code:    "CONFIG_INFLIGHT_GUARD_TTL_TOO_SHORT",
			Message: "INFLIGHT_GUARD_TTL must exceed the registration flight budget",
			Metadata: map[string]string{
				"ttl":           guardTTL.String(),
				"flight_budget": flightBudget.String(),
			},
		}
	}

	reconcilerEnabled := false
	rawReconcilerEnabled := strings.TrimSpace(os.Getenv("REGISTRATION_RECONCILER_ENABLED"))
	if rawReconcilerEnabled != "" {
		parsed, err := strconv.ParseBool(rawReconcilerEnabled)
		if err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_RECONCILER_ENABLED_INVALID",
				Message: "REGISTRATION_RECONCILER_ENABLED must be a boolean",
			}
		}
		reconcilerEnabled = parsed
	}
	pollInterval, cfgErr := durationEnv("REGISTRATION_RECONCILER_POLL_INTERVAL", defaultReconcilerPollInterval, "CONFIG_RECONCILER_POLL_INTERVAL_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	batchSize, cfgErr := positiveIntEnv("REGISTRATION_RECONCILER_BATCH_SIZE", defaultReconcilerBatchSize, "CONFIG_RECONCILER_BATCH_SIZE_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	workerID := strings.TrimSpace(os.Getenv("REGISTRATION_RECONCILER_WORKER_ID"))
	if workerID == "" {
		workerID = defaultReconcilerWorkerID
	}
	leaseDuration, cfgErr := durationEnv("REGISTRATION_RECONCILER_LEASE_DURATION", defaultReconcilerLeaseDuration, "CONFIG_RECONCILER_LEASE_DURATION_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}
	minAge, cfgErr := durationEnv("REGISTRATION_RECONCILER_MIN_AGE", defaultReconcilerMinAge, "CONFIG_RECONCILER_MIN_AGE_INVALID")
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	return Config{
		Port:                     port,
		OpenAPISpecPath:          openAPISpecPath,
		ShutdownTimeout:          defaultShutdownTimeout,
		AttemptStore:             attemptStore,
		DatabaseURL:              databaseURL,
		DatabaseTarget:           databaseTarget,
		DBReadinessTimeout:       defaultDBReadinessTimeout,
		DBReadinessRetryInterval: defaultDBReadinessRetryInterval,
		MigrationsPath:           defaultMigrationsPath,
		InFlightGuardRedisURL:    redisURL,
		InFlightGuardTTL:         guardTTL,
		SolanaRPCURL:             rpcURL,
		SolanaRPCTimeout:         rpcTimeout,
		SolanaNetwork:            network,
		SupportedAssets:          supportedAssets,
		OnboardingBaseURL:        onboardingBaseURL,
		OnboardingToken:          strings.TrimSpace(os.Getenv("ONBOARDING_API_TOKEN")),
		OnboardingTimeout:        onboardingTimeout,
		WalletKeypairPath:        strings.TrimSpace(os.Getenv("WALLET_SIGNER_KEYPAIR_PATH")),
		WalletPrivateKey:         strings.TrimSpace(os.Getenv("WALLET_SIGNER_PRIVATE_KEY")),
		ConfirmCommitment:        commitment,
		ConfirmMaxRetries:        maxRetries,
		ConfirmTimeout:           confirmTimeout,
		ReconcilerEnabled:        reconcilerEnabled,
		ReconcilerPollInterval:   pollInterval,
		ReconcilerBatchSize:      batchSize,
		ReconcilerWorkerID:       workerID,
		ReconcilerLeaseDuration:  leaseDuration,
		ReconcilerMinAge:         minAge,
	}, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func (c Config) UsesPostgres() bool {
	return c.AttemptStore == AttemptStorePostgres
}

func parseDatabaseTarget(databaseURL string) (string, *ConfigError) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL is invalid",
		}
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
	default:
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_SCHEME_INVALID",
			Message: "DATABASE_URL must use postgres or postgresql scheme",
		}
	}

	if parsed.Host == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_HOST_MISSING",
			Message: "DATABASE_URL host is required",
		}
	}

	databaseName := strings.TrimPrefix(parsed.Path, "/")
	if databaseName == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_NAME_MISSING",
			Message: "DATABASE_URL database name is required",
		}
	}

	return parsed.Host + "/" + databaseName, nil
}

// requiredURLEnv reads an http(s) URL. codePrefix gets _REQUIRED or
// _INVALID appended.
func requiredURLEnv(name string, codePrefix string) (string, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", &ConfigError{
			Code:    codePrefix + "_REQUIRED",
			Message: name + " is required",
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", &ConfigError{
			Code:    codePrefix + "_INVALID",
			Message: name + " must be an absolute http or https URL",
		}
	}

	return raw, nil
}

func durationEnv(name string, fallback time.Duration, code string) (time.Duration, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, &ConfigError{
			Code:     code,
			Message:  name + " must be a positive duration",
			Metadata: map[string]string{"value": raw},
		}
	}

	return parsed, nil
}

func positiveIntEnv(name string, fallback int, code string) (int, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, &ConfigError{
			Code:     code,
			Message:  name + " must be a positive integer",
			Metadata: map[string]string{"value": raw},
		}
	}

	return parsed, nil
}

func parseSupportedAssets(raw string) ([]walletkeys.AssetDefinition, *ConfigError) {
	if raw == "" {
		return nil, nil
	}

	definitions := []walletkeys.AssetDefinition{}
	if err := json.Unmarshal([]byte(raw), &definitions); err != nil {
		return nil, &ConfigError{
			Code:    "CONFIG_SUPPORTED_ASSETS_INVALID",
			Message: supportedAssetsEnv + " must be a JSON array of {code, mint, token_program, decimals}",
		}
	}
	if len(definitions) == 0 {
		return nil, &ConfigError{
			Code:    "CONFIG_SUPPORTED_ASSETS_EMPTY",
			Message: supportedAssetsEnv + " must define at least one asset",
		}
	}

	for _, definition := range definitions {
		if strings.TrimSpace(definition.Code) == "" || strings.TrimSpace(definition.Mint) == "" {
			return nil, &ConfigError{
				Code:    "CONFIG_SUPPORTED_ASSETS_INVALID",
				Message: supportedAssetsEnv + " entries require code and mint",
			}
		}
	}

	return definitions, nil
}

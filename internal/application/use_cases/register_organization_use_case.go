package use_cases

import (
	"context"
	"strings"
	"time"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/domain/entities"
	"chainorg/internal/domain/policies"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/google/uuid"
)

const (
	DefaultConfirmCommitment = "confirmed"
	DefaultConfirmMaxRetries = 5
	DefaultConfirmTimeout    = 60 * time.Second
	DefaultInFlightGuardTTL  = 5 * time.Minute
)

type IDGenerator func() string

func NewUUIDGenerator() IDGenerator {
	return uuid.NewString
}

type RegistrationSettings struct {
	Commitment string
	MaxRetries int
	Timeout    time.Duration
	GuardTTL   time.Duration
}

func DefaultRegistrationSettings() RegistrationSettings {
	return RegistrationSettings{
		Commitment: DefaultConfirmCommitment,
		MaxRetries: DefaultConfirmMaxRetries,
		Timeout:    DefaultConfirmTimeout,
		GuardTTL:   DefaultInFlightGuardTTL,
	}
}

type RegistrationDependencies struct {
	Repository   portsout.RegistrationAttemptRepository
	Guard        portsout.InFlightGuard
	Preparation  portsout.RegistrationPreparationGateway
	Finalization portsout.RegistrationFinalizationGateway
	Ledger       portsout.LedgerGateway
	Signer       portsout.WalletSigner
	Deriver      portsout.AddressDeriver
	Confirmer    portsin.ConfirmTransactionUseCase
	Metrics      portsout.RegistrationMetrics
	Clock        Clock
	IDs          IDGenerator
}

type registerOrganizationUseCase struct {
	deps      RegistrationDependencies
	settings  RegistrationSettings
	journal   registrationJournal
	finalizer registrationFinalizer
}

func NewRegisterOrganizationUseCase(
	deps RegistrationDependencies,
	settings RegistrationSettings,
) portsin.RegisterOrganizationUseCase {
	deps = withRegistrationDefaults(deps)
	journal := registrationJournal{repository: deps.Repository, metrics: deps.Metrics, clock: deps.Clock}

	return &registerOrganizationUseCase{
		deps:      deps,
		settings:  settings,
		journal:   journal,
		finalizer: registrationFinalizer{gateway: deps.Finalization, journal: journal},
	}
}

func withRegistrationDefaults(deps RegistrationDependencies) RegistrationDependencies {
	if deps.Metrics == nil {
		deps.Metrics = portsout.NoopRegistrationMetrics{}
	}
	if deps.Clock == nil {
		deps.Clock = NewSystemClock()
	}
	if deps.IDs == nil {
		deps.IDs = NewUUIDGenerator()
	}
	return deps
}

func (u *registerOrganizationUseCase) Execute(
	ctx context.Context,
	command dto.RegisterOrganizationCommand,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	if appErr := u.validateDependencies(); appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}
	callerID := strings.TrimSpace(command.CallerID)
	if callerID == "" {
		return dto.RegisterOrganizationOutput{}, apperrors.NewValidation(
			"caller_id_missing",
			"caller id is required",
			nil,
		)
	}
	requestedCreateKey, appErr := normalizeOptionalAccount("create_key", command.RequestedCreateKey)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}
	expectedWallet, appErr := normalizeOptionalAccount("expected_wallet_address", command.ExpectedWalletAddress)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}

	attemptID := u.deps.IDs()
	acquired, appErr := u.deps.Guard.Acquire(ctx, callerID, attemptID, u.settings.GuardTTL)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}
	if !acquired {
		return dto.RegisterOrganizationOutput{}, apperrors.NewConflict(
			"registration_in_flight",
			"a registration is already in progress for this caller",
			map[string]any{"caller_id": callerID},
		)
	}
	defer func() {
		_ = u.deps.Guard.Release(context.WithoutCancel(ctx), callerID, attemptID)
	}()

	// Read under the guard so a flow that just stopped in Finalizing is seen.
	latest, found, appErr := u.deps.Repository.FindLatestByCaller(ctx, callerID)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}
	if found && latest.RetryMode() == policies.RetryModeFinalizeOnly {
		return registrationOutput(latest, nil), apperrors.NewConflict(
			"registration_finalization_pending",
			"a confirmed registration is waiting to be finalized; retry finalization instead",
			map[string]any{
				"attempt_id": latest.ID,
				"create_key": latest.CreateKey,
			},
		)
	}

	attempt, appErr := entities.NewRegistrationAttempt(entities.NewRegistrationAttemptInput{
		ID:                  attemptID,
		CallerID:            callerID,
		CreateKey:           requestedCreateKey,
		OrganizationProfile: command.Organization,
		CreatedAt:           u.deps.Clock.NowUTC(),
	})
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}

	return u.run(ctx, &attempt, expectedWallet)
}

func (u *registerOrganizationUseCase) run(
	ctx context.Context,
	attempt *entities.RegistrationAttempt,
	expectedWallet string,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	if output, appErr := u.journal.advance(ctx, attempt, func() *apperrors.AppError {
		return attempt.BeginPreparing(u.deps.Clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	// A wallet that cannot sign makes the prepared transaction worthless.
	if _, failure := u.resolveSigner(ctx, expectedWallet); failure != nil {
		return u.journal.fail(ctx, attempt, *failure)
	}

	prepared, appErr := u.deps.Preparation.Prepare(ctx, dto.PrepareRegistrationInput{
		RequestedCreateKey: attempt.CreateKey,
		CreatorAddress:     expectedWallet,
		Organization:       attempt.OrganizationProfile,
	})
	if appErr != nil {
		return u.journal.failStage(ctx, attempt, appErr)
	}
	if failure := u.verifyPrepared(attempt, prepared); failure != nil {
		return u.journal.fail(ctx, attempt, *failure)
	}
	if output, appErr := u.journal.advance(ctx, attempt, func() *apperrors.AppError {
		return attempt.RecordPrepared(entities.PreparedRegistration{
			CreateKey:             prepared.CreateKey,
			OrganizationData:      prepared.OrganizationData,
			SerializedTransaction: prepared.SerializedTransaction,
			MultisigAddress:       prepared.MultisigAddress,
			Blockhash:             prepared.Blockhash,
			LastValidBlockHeight:  prepared.LastValidBlockHeight,
		}, u.deps.Clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	signerAddress, failure := u.resolveSigner(ctx, expectedWallet)
	if failure != nil {
		return u.journal.fail(ctx, attempt, *failure)
	}
	signed, appErr := u.deps.Signer.Sign(ctx, dto.SignTransactionInput{
		SignerAddress: signerAddress,
		Transaction:   attempt.PreparedTransaction,
	})
	if appErr != nil {
		return u.journal.failStage(ctx, attempt, appErr)
	}
	if output, appErr := u.journal.advance(ctx, attempt, func() *apperrors.AppError {
		return attempt.RecordSigned(signerAddress, u.deps.Clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	signature, appErr := u.deps.Ledger.SubmitTransaction(ctx, signed)
	if appErr != nil {
		return u.journal.failStage(ctx, attempt, appErr)
	}
	if output, appErr := u.journal.advance(ctx, attempt, func() *apperrors.AppError {
		return attempt.RecordSubmitted(signature, u.deps.Clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	if _, appErr := u.deps.Confirmer.Execute(ctx, dto.ConfirmTransactionCommand{
		Signature:            attempt.Signature,
		Commitment:           u.settings.Commitment,
		MaxRetries:           u.settings.MaxRetries,
		Timeout:              u.settings.Timeout,
		LastValidBlockHeight: attempt.LastValidBlockHeight,
	}); appErr != nil {
		return u.journal.failStage(ctx, attempt, appErr)
	}
	if output, appErr := u.journal.advance(ctx, attempt, func() *apperrors.AppError {
		return attempt.RecordConfirmed(u.deps.Clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	return u.finalizer.finalize(ctx, attempt)
}

// resolveSigner returns the single key able to sign for the caller, or the
// wallet failure that prevents signing.
func (u *registerOrganizationUseCase) resolveSigner(
	ctx context.Context,
	expectedWallet string,
) (string, *valueobjects.RegistrationFailure) {
	status := u.deps.Signer.Status(ctx)
	if len(status.EligibleKeys) > 1 {
		return "", walletFailure("wallet_signer_ambiguous", "wallet has more than one eligible signing key", false)
	}
	if !status.Ready {
		return "", walletFailure("wallet_not_ready", status.Reason, false)
	}
	if len(status.EligibleKeys) == 0 {
		return "", walletFailure("wallet_absent", "wallet has no eligible signing key", false)
	}

	signer := status.EligibleKeys[0]
	if expectedWallet != "" && signer != expectedWallet {
		return "", walletFailure(
			"wallet_binding_mismatch",
			"wallet "+signer+" does not match expected wallet "+expectedWallet,
			true,
		)
	}
	return signer, nil
}

func (u *registerOrganizationUseCase) verifyPrepared(
	attempt *entities.RegistrationAttempt,
	prepared dto.PrepareRegistrationOutput,
) *valueobjects.RegistrationFailure {
	createKey := strings.TrimSpace(prepared.CreateKey)
	if createKey == "" || (attempt.CreateKey != "" && createKey != attempt.CreateKey) {
		return &valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryTransactionSubmission,
			Code:     "create_key_mismatch",
			Cause:    "prepared create key does not match the requested create key",
		}
	}
	if len(prepared.SerializedTransaction) == 0 {
		return &valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryTransactionSubmission,
			Code:     "prepared_transaction_missing",
			Cause:    "prepare returned no transaction",
		}
	}

	derived, appErr := u.deps.Deriver.DeriveMultisig(createKey)
	if appErr != nil {
		return &valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryTransactionSubmission,
			Code:     appErr.Code,
			Cause:    appErr.Message,
		}
	}
	if derived != strings.TrimSpace(prepared.MultisigAddress) {
		return &valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryTransactionSubmission,
			Code:     "multisig_address_mismatch",
			Cause:    "prepared multisig address " + prepared.MultisigAddress + " is not derived from the create key",
		}
	}
	return nil
}

func (u *registerOrganizationUseCase) validateDependencies() *apperrors.AppError {
	return validateRegistrationDependencies(u.deps, true)
}

func validateRegistrationDependencies(deps RegistrationDependencies, full bool) *apperrors.AppError {
	required := map[string]bool{
		"registration_attempt_repository":   deps.Repository != nil,
		"inflight_guard":                    deps.Guard != nil,
		"registration_finalization_gateway": deps.Finalization != nil,
	}
	if full {
		required["registration_preparation_gateway"] = deps.Preparation != nil
		required["ledger_gateway"] = deps.Ledger != nil
		required["wallet_signer"] = deps.Signer != nil
		required["address_deriver"] = deps.Deriver != nil
		required["confirm_transaction_use_case"] = deps.Confirmer != nil
	}
	for name, present := range required {
		if !present {
			return apperrors.NewInternal(
				name+"_missing",
				strings.ReplaceAll(name, "_", " ")+" is required",
				nil,
			)
		}
	}
	return nil
}

func walletFailure(code, cause string, mismatch bool) *valueobjects.RegistrationFailure {
	return &valueobjects.RegistrationFailure{
		Category:       valueobjects.ErrorCategoryWalletNotReady,
		Code:           code,
		Cause:          cause,
		WalletMismatch: mismatch,
	}
}

func normalizeOptionalAccount(field, raw string) (string, *apperrors.AppError) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	key, appErr := valueobjects.NormalizeAccountAddress(field, raw)
	if appErr != nil {
		return "", appErr
	}
	return key.String(), nil
}

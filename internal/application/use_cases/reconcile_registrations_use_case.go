package use_cases

import (
	"context"
	"strings"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/domain/entities"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type reconcileOutcome int

const (
	reconcileSkipped reconcileOutcome = iota
	reconcileFinalized
	reconcileFailed
	reconcileErrored
)

type reconcileRegistrationsUseCase struct {
	claims    portsout.RegistrationReconciliationRepository
	deps      RegistrationDependencies
	settings  RegistrationSettings
	journal   registrationJournal
	finalizer registrationFinalizer
}

// NewReconcileRegistrationsUseCase settles attempts left in flight by a
// process that stopped before the attempt finished.
func NewReconcileRegistrationsUseCase(
	claims portsout.RegistrationReconciliationRepository,
	deps RegistrationDependencies,
	settings RegistrationSettings,
) portsin.ReconcileRegistrationsUseCase {
	deps = withRegistrationDefaults(deps)
	journal := registrationJournal{repository: deps.Repository, metrics: deps.Metrics, clock: deps.Clock}

	return &reconcileRegistrationsUseCase{
		claims:    claims,
		deps:      deps,
		settings:  settings,
		journal:   journal,
		finalizer: registrationFinalizer{gateway: deps.Finalization, journal: journal},
	}
}

func (u *reconcileRegistrationsUseCase) Execute(
	ctx context.Context,
	command dto.ReconcileRegistrationsCommand,
) (dto.ReconcileRegistrationsOutput, *apperrors.AppError) {
	if u.claims == nil {
		return dto.ReconcileRegistrationsOutput{}, apperrors.NewInternal(
			"registration_reconciliation_repository_missing",
			"registration reconciliation repository is required",
			nil,
		)
	}
	if appErr := validateRegistrationDependencies(u.deps, false); appErr != nil {
		return dto.ReconcileRegistrationsOutput{}, appErr
	}
	if u.deps.Ledger == nil {
		return dto.ReconcileRegistrationsOutput{}, apperrors.NewInternal(
			"ledger_gateway_missing",
			"ledger gateway is required",
			nil,
		)
	}
	if command.BatchSize <= 0 {
		return dto.ReconcileRegistrationsOutput{}, apperrors.NewValidation(
			"reconcile_batch_size_invalid",
			"reconcile batch size must be greater than zero",
			map[string]any{"batch_size": command.BatchSize},
		)
	}
	workerID := strings.TrimSpace(command.WorkerID)
	if workerID == "" {
		return dto.ReconcileRegistrationsOutput{}, apperrors.NewValidation(
			"reconcile_worker_id_invalid",
			"reconcile worker id is required",
			nil,
		)
	}
	if command.LeaseDuration <= 0 {
		return dto.ReconcileRegistrationsOutput{}, apperrors.NewValidation(
			"reconcile_lease_duration_invalid",
			"reconcile lease duration must be greater than zero",
			map[string]any{"lease_duration": command.LeaseDuration.String()},
		)
	}
	if command.MinAge < 0 {
		return dto.ReconcileRegistrationsOutput{}, apperrors.NewValidation(
			"reconcile_min_age_invalid",
			"reconcile min age must not be negative",
			map[string]any{"min_age": command.MinAge.String()},
		)
	}

	now := command.Now.UTC()
	if command.Now.IsZero() {
		now = u.deps.Clock.NowUTC()
	}

	attempts, appErr := u.claims.ClaimStalled(
		ctx,
		now,
		now.Add(-command.MinAge),
		command.BatchSize,
		workerID,
		now.Add(command.LeaseDuration),
	)
	if appErr != nil {
		return dto.ReconcileRegistrationsOutput{}, appErr
	}

	output := dto.ReconcileRegistrationsOutput{Claimed: len(attempts)}
	for _, attempt := range attempts {
		switch u.reconcileOne(ctx, attempt, workerID) {
		case reconcileFinalized:
			output.Finalized++
		case reconcileFailed:
			output.Failed++
		case reconcileErrored:
			output.Errors++
		default:
			output.Skipped++
		}
		if releaseErr := u.claims.ReleaseClaim(ctx, attempt.ID, workerID); releaseErr != nil {
			output.Errors++
		}
	}

	return output, nil
}

func (u *reconcileRegistrationsUseCase) reconcileOne(
	ctx context.Context,
	attempt entities.RegistrationAttempt,
	workerID string,
) reconcileOutcome {
	token := workerID + ":" + attempt.ID
	acquired, appErr := u.deps.Guard.Acquire(ctx, attempt.CallerID, token, u.settings.GuardTTL)
	if appErr != nil {
		return reconcileErrored
	}
	if !acquired {
		// The caller has a live flow; it owns the attempt.
		return reconcileSkipped
	}
	defer func() {
		_ = u.deps.Guard.Release(context.WithoutCancel(ctx), attempt.CallerID, token)
	}()

	// The claimed row may predate a flow that finished before the guard was taken.
	attempt, appErr = u.deps.Repository.FindByID(ctx, attempt.ID)
	if appErr != nil {
		return reconcileErrored
	}

	switch attempt.Phase {
	case valueobjects.RegistrationPhasePreparing,
		valueobjects.RegistrationPhaseAwaitingSignature,
		valueobjects.RegistrationPhaseSubmitting:
		return u.settle(u.journal.fail(ctx, &attempt, valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryTransactionSubmission,
			Code:     "registration_abandoned",
			Cause:    "registration stopped before the transaction was submitted",
		}))
	case valueobjects.RegistrationPhaseConfirming:
		return u.reconcileConfirming(ctx, &attempt)
	case valueobjects.RegistrationPhaseFinalizing:
		return u.settle(u.finalizer.finalize(ctx, &attempt))
	default:
		return reconcileSkipped
	}
}

// reconcileConfirming checks the ledger once. A still unknown outcome leaves
// the attempt for a later pass.
func (u *reconcileRegistrationsUseCase) reconcileConfirming(
	ctx context.Context,
	attempt *entities.RegistrationAttempt,
) reconcileOutcome {
	commitment, appErr := valueobjects.ParseCommitmentLevel(u.settings.Commitment)
	if appErr != nil {
		return reconcileErrored
	}
	status, appErr := u.deps.Ledger.GetTransactionStatus(ctx, attempt.Signature, commitment)
	if appErr != nil {
		return reconcileErrored
	}

	switch {
	case status.ExecutionError != "":
		return u.settle(u.journal.fail(ctx, attempt, valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryBlockchainConfirmation,
			Code:     "transaction_failed_on_ledger",
			Cause:    status.ExecutionError,
		}))
	case status.Confirmed:
		if _, appErr := u.journal.advance(ctx, attempt, func() *apperrors.AppError {
			return attempt.RecordConfirmed(u.deps.Clock.NowUTC())
		}); appErr != nil {
			return reconcileErrored
		}
		return u.settle(u.finalizer.finalize(ctx, attempt))
	case !status.Found && attempt.LastValidBlockHeight > 0:
		height, appErr := u.deps.Ledger.GetBlockHeight(ctx, commitment)
		if appErr != nil {
			return reconcileErrored
		}
		if height <= attempt.LastValidBlockHeight {
			return reconcileSkipped
		}
		return u.settle(u.journal.fail(ctx, attempt, valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryBlockchainConfirmation,
			Code:     "transaction_expired",
			Cause:    "transaction blockhash expired before the transaction was seen",
		}))
	default:
		return reconcileSkipped
	}
}

func (u *reconcileRegistrationsUseCase) settle(
	output dto.RegisterOrganizationOutput,
	appErr *apperrors.AppError,
) reconcileOutcome {
	switch {
	case appErr == nil:
		return reconcileFinalized
	case output.Attempt.Phase == valueobjects.RegistrationPhaseFailed.String():
		return reconcileFailed
	default:
		return reconcileErrored
	}
}

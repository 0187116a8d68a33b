package use_cases

import (
	"context"
	"strings"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	"chainorg/internal/domain/entities"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type finalizeRegistrationUseCase struct {
	deps      RegistrationDependencies
	settings  RegistrationSettings
	journal   registrationJournal
	finalizer registrationFinalizer
}

// NewFinalizeRegistrationUseCase resumes an attempt whose ledger side is
// confirmed, finalizing it again with the same create key and signature.
func NewFinalizeRegistrationUseCase(
	deps RegistrationDependencies,
	settings RegistrationSettings,
) portsin.FinalizeRegistrationUseCase {
	deps = withRegistrationDefaults(deps)
	journal := registrationJournal{repository: deps.Repository, metrics: deps.Metrics, clock: deps.Clock}

	return &finalizeRegistrationUseCase{
		deps:      deps,
		settings:  settings,
		journal:   journal,
		finalizer: registrationFinalizer{gateway: deps.Finalization, journal: journal},
	}
}

func (u *finalizeRegistrationUseCase) Execute(
	ctx context.Context,
	command dto.FinalizeRegistrationCommand,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	if appErr := validateRegistrationDependencies(u.deps, false); appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}

	attempt, appErr := findCallerAttempt(ctx, u.deps, command.CallerID, command.AttemptID)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}

	token := u.deps.IDs()
	acquired, appErr := u.deps.Guard.Acquire(ctx, attempt.CallerID, token, u.settings.GuardTTL)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}
	if !acquired {
		return registrationOutput(attempt, nil), apperrors.NewConflict(
			"registration_in_flight",
			"a registration is already in progress for this caller",
			map[string]any{"caller_id": attempt.CallerID},
		)
	}
	defer func() {
		_ = u.deps.Guard.Release(context.WithoutCancel(ctx), attempt.CallerID, token)
	}()

	// Another flow may have moved the attempt on while the guard was held.
	attempt, appErr = u.deps.Repository.FindByID(ctx, attempt.ID)
	if appErr != nil {
		return dto.RegisterOrganizationOutput{}, appErr
	}

	if output, appErr := u.journal.advance(ctx, &attempt, func() *apperrors.AppError {
		return attempt.ResumeFinalizing(u.deps.Clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	return u.finalizer.finalize(ctx, &attempt)
}

// findCallerAttempt loads an attempt owned by callerID. Attempts of other
// callers are reported as not found.
func findCallerAttempt(
	ctx context.Context,
	deps RegistrationDependencies,
	callerID string,
	attemptID string,
) (entities.RegistrationAttempt, *apperrors.AppError) {
	callerID = strings.TrimSpace(callerID)
	attemptID = strings.TrimSpace(attemptID)
	if callerID == "" {
		return entities.RegistrationAttempt{}, apperrors.NewValidation(
			"caller_id_missing",
			"caller id is required",
			nil,
		)
	}
	if attemptID == "" {
		return entities.RegistrationAttempt{}, apperrors.NewValidation(
			"registration_attempt_id_missing",
			"registration attempt id is required",
			nil,
		)
	}

	attempt, appErr := deps.Repository.FindByID(ctx, attemptID)
	if appErr != nil {
		return entities.RegistrationAttempt{}, appErr
	}
	if attempt.CallerID != callerID {
		return entities.RegistrationAttempt{}, apperrors.NewNotFound(
			"registration_attempt_not_found",
			"registration attempt not found",
			map[string]any{"attempt_id": attemptID},
		)
	}
	return attempt, nil
}

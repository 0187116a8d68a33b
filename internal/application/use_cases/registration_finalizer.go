package use_cases

import (
	"context"
	"strings"

	"chainorg/internal/application/dto"
	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/domain/entities"
	"chainorg/internal/domain/policies"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

// registrationJournal persists every phase change of an attempt.
type registrationJournal struct {
	repository portsout.RegistrationAttemptRepository
	metrics    portsout.RegistrationMetrics
	clock      Clock
}

func (j registrationJournal) save(ctx context.Context, attempt *entities.RegistrationAttempt) *apperrors.AppError {
	if appErr := j.repository.Save(ctx, *attempt); appErr != nil {
		if appErr.Type == apperrors.TypeConflict {
			return appErr
		}
		return apperrors.NewInternal(
			"registration_journal_failed",
			"failed to record registration progress",
			map[string]any{
				"attempt_id": attempt.ID,
				"phase":      attempt.Phase.String(),
				"cause":      appErr.Code,
			},
		)
	}
	j.metrics.ObservePhase(attempt.Phase.String())
	return nil
}

// advance applies step and journals the result.
func (j registrationJournal) advance(
	ctx context.Context,
	attempt *entities.RegistrationAttempt,
	step func() *apperrors.AppError,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	if appErr := step(); appErr != nil {
		return registrationOutput(*attempt, nil), appErr
	}
	if appErr := j.save(ctx, attempt); appErr != nil {
		return registrationOutput(*attempt, nil), appErr
	}
	return dto.RegisterOrganizationOutput{}, nil
}

func (j registrationJournal) fail(
	ctx context.Context,
	attempt *entities.RegistrationAttempt,
	failure valueobjects.RegistrationFailure,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	if strings.TrimSpace(failure.Code) == "" {
		failure.Code = failure.Category.String()
	}
	if appErr := attempt.Fail(failure, j.clock.NowUTC()); appErr != nil {
		return registrationOutput(*attempt, nil), appErr
	}
	if appErr := j.save(ctx, attempt); appErr != nil {
		return registrationOutput(*attempt, nil), appErr
	}

	j.metrics.ObserveOutcome("failed", failure.Category.String())
	return registrationOutput(*attempt, nil), registrationFailureError(*attempt)
}

// failStage classifies a raw external error observed in the attempt's
// current phase and fails the attempt with it.
func (j registrationJournal) failStage(
	ctx context.Context,
	attempt *entities.RegistrationAttempt,
	cause *apperrors.AppError,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	raw := cause.Message
	if upstream := cause.DetailString("upstream_message"); upstream != "" {
		raw = raw + ": " + upstream
	}
	return j.fail(ctx, attempt, policies.ClassifyStageFailure(attempt.Phase, cause.Code, raw))
}

// registrationFinalizer runs the finalize step for an attempt that is in the
// finalizing phase. Register, resume and reconciliation share it.
type registrationFinalizer struct {
	gateway portsout.RegistrationFinalizationGateway
	journal registrationJournal
}

func (f registrationFinalizer) finalize(
	ctx context.Context,
	attempt *entities.RegistrationAttempt,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	organization, appErr := f.gateway.Finalize(ctx, dto.FinalizeRegistrationInput{
		OrganizationData: attempt.OrganizationData,
		Signature:        attempt.Signature,
		MultisigAddress:  attempt.ExpectedMultisigAddress,
		CreateKey:        attempt.CreateKey,
	})
	if appErr != nil {
		return f.journal.failStage(ctx, attempt, appErr)
	}
	if organization.CreateKey != "" && organization.CreateKey != attempt.CreateKey {
		return f.journal.fail(ctx, attempt, valueobjects.RegistrationFailure{
			Category: valueobjects.ErrorCategoryFinalization,
			Code:     "organization_create_key_mismatch",
			Cause:    "finalized organization create key does not match the attempt",
		})
	}
	if organization.CreateKey == "" {
		organization.CreateKey = attempt.CreateKey
	}

	if output, appErr := f.journal.advance(ctx, attempt, func() *apperrors.AppError {
		return attempt.RecordFinalized(organization.ID, f.journal.clock.NowUTC())
	}); appErr != nil {
		return output, appErr
	}

	f.journal.metrics.ObserveOutcome("complete", "")
	return registrationOutput(*attempt, &organization), nil
}

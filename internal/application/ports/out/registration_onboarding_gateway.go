package out

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

// RegistrationPreparationGateway asks the onboarding service for the unsigned
// multisig creation transaction. Called at most once per attempt.
type RegistrationPreparationGateway interface {
	Prepare(ctx context.Context, input dto.PrepareRegistrationInput) (dto.PrepareRegistrationOutput, *apperrors.AppError)
}

// RegistrationFinalizationGateway records the organization once the ledger
// side is confirmed. Implementations must be idempotent on the create key.
type RegistrationFinalizationGateway interface {
	Finalize(ctx context.Context, input dto.FinalizeRegistrationInput) (dto.OrganizationResource, *apperrors.AppError)
}

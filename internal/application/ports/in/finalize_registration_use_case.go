package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type FinalizeRegistrationUseCase interface {
	Execute(ctx context.Context, command dto.FinalizeRegistrationCommand) (dto.RegisterOrganizationOutput, *apperrors.AppError)
}

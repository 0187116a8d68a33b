package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type RegisterOrganizationUseCase interface {
	Execute(ctx context.Context, command dto.RegisterOrganizationCommand) (dto.RegisterOrganizationOutput, *apperrors.AppError)
}

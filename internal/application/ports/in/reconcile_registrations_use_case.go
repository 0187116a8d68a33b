package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type ReconcileRegistrationsUseCase interface {
	Execute(ctx context.Context, command dto.ReconcileRegistrationsCommand) (dto.ReconcileRegistrationsOutput, *apperrors.AppError)
}

package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type GetHealthUseCase interface {
	Execute(ctx context.Context, command dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError)
}

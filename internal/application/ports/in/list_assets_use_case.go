package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type ListAssetsUseCase interface {
	Execute(ctx context.Context, query dto.ListAssetsQuery) (dto.ListAssetsOutput, *apperrors.AppError)
}

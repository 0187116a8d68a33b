package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type ConfirmTransactionUseCase interface {
	Execute(ctx context.Context, command dto.ConfirmTransactionCommand) (dto.ConfirmTransactionOutput, *apperrors.AppError)
}

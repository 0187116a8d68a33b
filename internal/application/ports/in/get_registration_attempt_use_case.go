package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type GetRegistrationAttemptUseCase interface {
	Execute(ctx context.Context, query dto.GetRegistrationAttemptQuery) (dto.RegistrationAttemptResource, *apperrors.AppError)
}

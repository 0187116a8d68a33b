package in

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type DeriveRoutingAddressesUseCase interface {
	Execute(ctx context.Context, query dto.DeriveRoutingAddressesQuery) (dto.DeriveRoutingAddressesOutput, *apperrors.AppError)
}

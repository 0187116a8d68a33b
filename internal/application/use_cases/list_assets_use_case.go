package use_cases

import (
	"context"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type listAssetsUseCase struct {
	deriver portsout.AddressDeriver
}

func NewListAssetsUseCase(deriver portsout.AddressDeriver) portsin.ListAssetsUseCase {
	return &listAssetsUseCase{deriver: deriver}
}

func (u *listAssetsUseCase) Execute(_ context.Context, _ dto.ListAssetsQuery) (dto.ListAssetsOutput, *apperrors.AppError) {
	if u.deriver == nil {
		return dto.ListAssetsOutput{}, apperrors.NewInternal(
			"address_deriver_missing",
			"address deriver is required",
			nil,
		)
	}

	return dto.ListAssetsOutput{
		Network: u.deriver.Network(),
		Assets:  u.deriver.SupportedAssets(),
	}, nil
}

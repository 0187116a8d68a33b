package out

import (
	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type AddressDeriver interface {
	Network() string
	SupportedAssets() []dto.AssetResource
	DeriveMultisig(createKey string) (string, *apperrors.AppError)
	DeriveVault(multisigAddress string, index uint32) (string, *apperrors.AppError)
	DeriveAssetAccount(owner string, assetID string, allowOwnerOffCurve bool) (dto.RoutingAddress, *apperrors.AppError)
}

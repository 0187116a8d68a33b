package use_cases

import (
	"context"
	"strings"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type deriveRoutingAddressesUseCase struct {
	deriver portsout.AddressDeriver
}

func NewDeriveRoutingAddressesUseCase(deriver portsout.AddressDeriver) portsin.DeriveRoutingAddressesUseCase {
	return &deriveRoutingAddressesUseCase{deriver: deriver}
}

// Execute derives the vault of a registered multisig and its routing address
// for each requested asset, or for every supported asset when none are named.
func (u *deriveRoutingAddressesUseCase) Execute(
	_ context.Context,
	query dto.DeriveRoutingAddressesQuery,
) (dto.DeriveRoutingAddressesOutput, *apperrors.AppError) {
	if u.deriver == nil {
		return dto.DeriveRoutingAddressesOutput{}, apperrors.NewInternal(
			"address_deriver_missing",
			"address deriver is required",
			nil,
		)
	}
	multisig, appErr := valueobjects.NormalizeAccountAddress("multisig_address", query.MultisigAddress)
	if appErr != nil {
		return dto.DeriveRoutingAddressesOutput{}, appErr
	}

	vault, appErr := u.deriver.DeriveVault(multisig.String(), query.VaultIndex)
	if appErr != nil {
		return dto.DeriveRoutingAddressesOutput{}, appErr
	}

	assets := make([]string, 0, len(query.Assets))
	seen := map[string]bool{}
	for _, asset := range query.Assets {
		if strings.TrimSpace(asset) == "" {
			continue
		}
		normalized, appErr := valueobjects.NormalizeAsset(asset)
		if appErr != nil {
			return dto.DeriveRoutingAddressesOutput{}, appErr
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		assets = append(assets, normalized)
	}
	if len(assets) == 0 {
		for _, asset := range u.deriver.SupportedAssets() {
			assets = append(assets, asset.Code)
		}
	}

	addresses := make([]dto.RoutingAddress, 0, len(assets))
	for _, asset := range assets {
		// Vaults are program-derived, so the owner is always off curve.
		address, appErr := u.deriver.DeriveAssetAccount(vault, asset, true)
		if appErr != nil {
			return dto.DeriveRoutingAddressesOutput{}, appErr
		}
		addresses = append(addresses, address)
	}

	return dto.DeriveRoutingAddressesOutput{
		Network:         u.deriver.Network(),
		MultisigAddress: multisig.String(),
		VaultIndex:      query.VaultIndex,
		VaultAddress:    vault,
		Addresses:       addresses,
	}, nil
}

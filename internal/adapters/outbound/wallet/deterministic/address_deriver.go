package deterministic

import (
	"chainorg/internal/application/dto"
	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/infrastructure/walletkeys"
	apperrors "chainorg/internal/shared_kernel/errors"
)

// AddressDeriver exposes the multisig, vault and routing address derivations
// for one network's asset catalog.
type AddressDeriver struct {
	catalog *walletkeys.AssetCatalog
}

var _ portsout.AddressDeriver = (*AddressDeriver)(nil)

func NewAddressDeriver(catalog *walletkeys.AssetCatalog) *AddressDeriver {
	return &AddressDeriver{catalog: catalog}
}

func (d *AddressDeriver) Network() string {
	return d.catalog.Network()
}

func (d *AddressDeriver) SupportedAssets() []dto.AssetResource {
	assets := d.catalog.Assets()
	resources := make([]dto.AssetResource, 0, len(assets))
	for _, asset := range assets {
		resources = append(resources, dto.AssetResource{
			Code:         asset.Code,
			Mint:         asset.Mint.String(),
			TokenProgram: asset.TokenProgram.String(),
			Decimals:     asset.Decimals,
		})
	}
	return resources
}

func (d *AddressDeriver) DeriveMultisig(createKey string) (string, *apperrors.AppError) {
	key, keyErr := walletkeys.ParseAccount(createKey)
	if keyErr != nil {
		return "", mapKeyError(keyErr, map[string]any{"field": "create_key"})
	}
	multisig, keyErr := walletkeys.DeriveMultisig(key)
	if keyErr != nil {
		return "", mapKeyError(keyErr, nil)
	}
	return multisig.String(), nil
}

func (d *AddressDeriver) DeriveVault(multisigAddress string, index uint32) (string, *apperrors.AppError) {
	multisig, keyErr := walletkeys.ParseAccount(multisigAddress)
	if keyErr != nil {
		return "", mapKeyError(keyErr, map[string]any{"field": "multisig_address"})
	}
	vault, keyErr := walletkeys.DeriveVault(multisig, index)
	if keyErr != nil {
		return "", mapKeyError(keyErr, map[string]any{"vault_index": index})
	}
	return vault.String(), nil
}

func (d *AddressDeriver) DeriveAssetAccount(
	owner string,
	assetID string,
	allowOwnerOffCurve bool,
) (dto.RoutingAddress, *apperrors.AppError) {
	ownerKey, keyErr := walletkeys.ParseAccount(owner)
	if keyErr != nil {
		return dto.RoutingAddress{}, mapKeyError(keyErr, map[string]any{"field": "owner"})
	}
	asset, keyErr := d.catalog.Lookup(assetID)
	if keyErr != nil {
		return dto.RoutingAddress{}, mapKeyError(keyErr, map[string]any{
			"asset":     assetID,
			"network":   d.catalog.Network(),
			"supported": d.supportedCodes(),
		})
	}
	address, keyErr := walletkeys.DeriveTokenAccount(ownerKey, asset.Mint, asset.TokenProgram, allowOwnerOffCurve)
	if keyErr != nil {
		return dto.RoutingAddress{}, mapKeyError(keyErr, map[string]any{"owner": owner})
	}

	return dto.RoutingAddress{
		Asset:        asset.Code,
		Mint:         asset.Mint.String(),
		TokenProgram: asset.TokenProgram.String(),
		Address:      address.String(),
	}, nil
}

func (d *AddressDeriver) supportedCodes() []string {
	assets := d.catalog.Assets()
	codes := make([]string, 0, len(assets))
	for _, asset := range assets {
		codes = append(codes, asset.Code)
	}
	return codes
}

func mapKeyError(keyErr *walletkeys.KeyError, details map[string]any) *apperrors.AppError {
	switch keyErr.Code {
	case walletkeys.CodeInvalidAccountAddress,
		walletkeys.CodeInvalidVaultIndex,
		walletkeys.CodeUnsupportedAsset,
		walletkeys.CodeOwnerOffCurve:
		return apperrors.NewValidation(string(keyErr.Code), keyErr.Message, details)
	default:
		return apperrors.NewInternal(string(keyErr.Code), keyErr.Message, details)
	}
}

package walletkeys

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

const NetworkMainnetBeta = "mainnet-beta"

type Asset struct {
	Code         string
	Mint         solana.PublicKey
	TokenProgram solana.PublicKey
	Decimals     uint8
}

type AssetDefinition struct {
	Code         string `json:"code"`
	Mint         string `json:"mint"`
	TokenProgram string `json:"token_program"`
	Decimals     uint8  `json:"decimals"`
}

// AssetCatalog is the closed set of assets routing addresses are derived for.
// Lookups by code or by mint; anything else is an unsupported asset.
type AssetCatalog struct {
	network string
	ordered []Asset
	byCode  map[string]Asset
	byMint  map[solana.PublicKey]Asset
}

var mainnetAssets = []AssetDefinition{
	{Code: "USDC", Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", TokenProgram: "token", Decimals: 6},
	{Code: "USDT", Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", TokenProgram: "token", Decimals: 6},
	{Code: "PYUSD", Mint: "2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFwgVjV1", TokenProgram: "token-2022", Decimals: 6},
}

// DefaultAssetCatalog returns the built-in stablecoin catalog. Only
// mainnet-beta has built-in mints; other networks must be configured.
func DefaultAssetCatalog(network string) (*AssetCatalog, *KeyError) {
	if network != NetworkMainnetBeta {
		return nil, wrapKeyError(CodeInvalidConfiguration, "no built-in asset catalog for network "+network, nil)
	}
	return NewAssetCatalog(network, mainnetAssets)
}

func NewAssetCatalog(network string, definitions []AssetDefinition) (*AssetCatalog, *KeyError) {
	if len(definitions) == 0 {
		return nil, wrapKeyError(CodeInvalidConfiguration, "asset catalog must define at least one asset", nil)
	}

	catalog := &AssetCatalog{
		network: network,
		ordered: make([]Asset, 0, len(definitions)),
		byCode:  make(map[string]Asset, len(definitions)),
		byMint:  make(map[solana.PublicKey]Asset, len(definitions)),
	}
	for _, definition := range definitions {
		code := strings.ToUpper(strings.TrimSpace(definition.Code))
		if code == "" {
			return nil, wrapKeyError(CodeInvalidConfiguration, "asset code is required", nil)
		}
		mint, keyErr := ParseAccount(definition.Mint)
		if keyErr != nil {
			return nil, wrapKeyError(CodeInvalidConfiguration, "asset "+code+" mint is invalid", keyErr)
		}
		tokenProgram, keyErr := resolveTokenProgram(definition.TokenProgram)
		if keyErr != nil {
			return nil, keyErr
		}
		if _, exists := catalog.byCode[code]; exists {
			return nil, wrapKeyError(CodeInvalidConfiguration, "asset "+code+" is defined twice", nil)
		}
		if _, exists := catalog.byMint[mint]; exists {
			return nil, wrapKeyError(CodeInvalidConfiguration, "asset "+code+" reuses another asset's mint", nil)
		}

		asset := Asset{
			Code:         code,
			Mint:         mint,
			TokenProgram: tokenProgram,
			Decimals:     definition.Decimals,
		}
		catalog.ordered = append(catalog.ordered, asset)
		catalog.byCode[code] = asset
		catalog.byMint[mint] = asset
	}

	return catalog, nil
}

func (c *AssetCatalog) Network() string {
	return c.network
}

func (c *AssetCatalog) Assets() []Asset {
	out := make([]Asset, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Lookup resolves an asset by code (case-insensitive) or mint address.
func (c *AssetCatalog) Lookup(assetID string) (Asset, *KeyError) {
	trimmed := strings.TrimSpace(assetID)
	if asset, ok := c.byCode[strings.ToUpper(trimmed)]; ok {
		return asset, nil
	}
	if mint, err := solana.PublicKeyFromBase58(trimmed); err == nil {
		if asset, ok := c.byMint[mint]; ok {
			return asset, nil
		}
	}
	return Asset{}, wrapKeyError(CodeUnsupportedAsset, "asset "+trimmed+" is not supported", nil)
}

// DeriveAssetAccount returns owner's routing address for assetID.
func (c *AssetCatalog) DeriveAssetAccount(
	owner solana.PublicKey,
	assetID string,
	allowOwnerOffCurve bool,
) (solana.PublicKey, *KeyError) {
	asset, keyErr := c.Lookup(assetID)
	if keyErr != nil {
		return solana.PublicKey{}, keyErr
	}
	return DeriveTokenAccount(owner, asset.Mint, asset.TokenProgram, allowOwnerOffCurve)
}

func resolveTokenProgram(raw string) (solana.PublicKey, *KeyError) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "token", "spl-token":
		return TokenProgramID, nil
	case "token-2022", "token2022":
		return Token2022ProgramID, nil
	}

	program, keyErr := ParseAccount(raw)
	if keyErr != nil {
		return solana.PublicKey{}, wrapKeyError(CodeInvalidConfiguration, "token program "+raw+" is invalid", keyErr)
	}
	if !program.Equals(TokenProgramID) && !program.Equals(Token2022ProgramID) {
		return solana.PublicKey{}, wrapKeyError(CodeInvalidConfiguration, "token program "+raw+" is not a token program", nil)
	}
	return program, nil
}

package dto

type ListAssetsQuery struct{}

type ListAssetsOutput struct {
	Network string          `json:"network"`
	Assets  []AssetResource `json:"assets"`
}

type AssetResource struct {
	Code         string `json:"code"`
	Mint         string `json:"mint"`
	TokenProgram string `json:"token_program"`
	Decimals     uint8  `json:"decimals"`
}

type DeriveRoutingAddressesQuery struct {
	MultisigAddress string
	VaultIndex      uint32
	Assets          []string
}

type DeriveRoutingAddressesOutput struct {
	Network         string           `json:"network"`
	MultisigAddress string           `json:"multisig_address"`
	VaultIndex      uint32           `json:"vault_index"`
	VaultAddress    string           `json:"vault_address"`
	Addresses       []RoutingAddress `json:"addresses"`
}

type RoutingAddress struct {
	Asset        string `json:"asset"`
	Mint         string `json:"mint"`
	TokenProgram string `json:"token_program"`
	Address      string `json:"address"`
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"chainorg/internal/infrastructure/walletkeys"

	"github.com/gagliardetto/solana-go"
)

const (
	targetMultisig = "multisig"
	targetVault    = "vault"
	targetAsset    = "asset"
)

type verifyInput struct {
	Target          string
	Network         string
	CreateKey       string
	Multisig        string
	VaultIndex      uint
	Asset           string
	ExpectedAddress string
}

type verifyResult struct {
	Match           bool   `json:"match"`
	Target          string `json:"target"`
	Network         string `json:"network"`
	Multisig        string `json:"multisig,omitempty"`
	VaultIndex      uint   `json:"vault_index"`
	Asset           string `json:"asset,omitempty"`
	ExpectedAddress string `json:"expected_address"`
	DerivedAddress  string `json:"derived_address"`
	Reason          string `json:"reason,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
}

func main() {
	var input verifyInput
	flag.StringVar(&input.Target, "target", targetVault, "address to derive (multisig|vault|asset)")
	flag.StringVar(&input.Network, "network", walletkeys.NetworkMainnetBeta, "network whose built-in asset catalog is used")
	flag.StringVar(&input.CreateKey, "create-key", "", "create key, required for target=multisig")
	flag.StringVar(&input.Multisig, "multisig", "", "multisig address, required for target=vault|asset")
	flag.UintVar(&input.VaultIndex, "vault-index", 0, "vault index")
	flag.StringVar(&input.Asset, "asset", "", "asset code or mint, required for target=asset")
	flag.StringVar(&input.ExpectedAddress, "expected-address", "", "address the derivation must produce")
	flag.Parse()

	result, exitCode := verifyRoute(input)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"match\":false,\"reason\":\"failed to encode result\",\"error_code\":\"result_encode_failed\"}\n")
		os.Exit(2)
	}

	fmt.Println(string(encoded))
	os.Exit(exitCode)
}

func verifyRoute(input verifyInput) (verifyResult, int) {
	target := strings.ToLower(strings.TrimSpace(input.Target))
	network := strings.ToLower(strings.TrimSpace(input.Network))
	expectedAddress := strings.TrimSpace(input.ExpectedAddress)

	result := verifyResult{
		Target:          target,
		Network:         network,
		Multisig:        strings.TrimSpace(input.Multisig),
		VaultIndex:      input.VaultIndex,
		Asset:           strings.TrimSpace(input.Asset),
		ExpectedAddress: expectedAddress,
	}

	if expectedAddress == "" {
		result.Reason = "missing required field: expected-address"
		result.ErrorCode = "invalid_input"
		return result, 2
	}

	derived, keyErr := deriveAddress(target, network, input)
	if keyErr != nil {
		result.Reason = keyErr.Message
		result.ErrorCode = string(keyErr.Code)
		return result, 2
	}
	result.DerivedAddress = derived.String()

	expected, keyErr := walletkeys.ParseAccount(expectedAddress)
	if keyErr != nil {
		result.Reason = keyErr.Message
		result.ErrorCode = string(keyErr.Code)
		return result, 2
	}
	if !expected.Equals(derived) {
		result.Reason = "derived " + target + " address does not match expected address"
		result.ErrorCode = "address_mismatch"
		return result, 3
	}

	result.Match = true
	return result, 0
}

func deriveAddress(target string, network string, input verifyInput) (solana.PublicKey, *walletkeys.KeyError) {
	if target == targetMultisig {
		createKey, keyErr := walletkeys.ParseAccount(input.CreateKey)
		if keyErr != nil {
			return solana.PublicKey{}, keyErr
		}
		return walletkeys.DeriveMultisig(createKey)
	}

	multisig, keyErr := walletkeys.ParseAccount(input.Multisig)
	if keyErr != nil {
		return solana.PublicKey{}, keyErr
	}
	if input.VaultIndex > 1<<32-1 {
		return solana.PublicKey{}, &walletkeys.KeyError{
			Code:    walletkeys.CodeInvalidVaultIndex,
			Message: "vault index must fit in 32 bits",
		}
	}
	vault, keyErr := walletkeys.DeriveVault(multisig, uint32(input.VaultIndex))
	if keyErr != nil {
		return solana.PublicKey{}, keyErr
	}

	switch target {
	case targetVault:
		return vault, nil
	case targetAsset:
		catalog, keyErr := walletkeys.DefaultAssetCatalog(network)
		if keyErr != nil {
			return solana.PublicKey{}, keyErr
		}
		return catalog.DeriveAssetAccount(vault, input.Asset, true)
	default:
		return solana.PublicKey{}, &walletkeys.KeyError{
			Code:    walletkeys.CodeInvalidConfiguration,
			Message: "target must be multisig, vault or asset",
		}
	}
}

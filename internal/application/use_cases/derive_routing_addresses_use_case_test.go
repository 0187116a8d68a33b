//go:build !integration

package use_cases

import (
	"context"
	"testing"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

func TestDeriveRoutingAddressesUseCaseDefaultsToAllAssets(t *testing.T) {
	useCase := NewDeriveRoutingAddressesUseCase(fakeDeriver{})

	output, appErr := useCase.Execute(context.Background(), dto.DeriveRoutingAddressesQuery{
		MultisigAddress: testMultisig,
		VaultIndex:      0,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.VaultAddress == "" || output.MultisigAddress != testMultisig {
		t.Fatalf("unexpected output: %+v", output)
	}
	if len(output.Addresses) != 3 {
		t.Fatalf("expected one address per supported asset, got %d", len(output.Addresses))
	}
}

func TestDeriveRoutingAddressesUseCaseNormalizesRequestedAssets(t *testing.T) {
	useCase := NewDeriveRoutingAddressesUseCase(fakeDeriver{})

	output, appErr := useCase.Execute(context.Background(), dto.DeriveRoutingAddressesQuery{
		MultisigAddress: testMultisig,
		Assets:          []string{"usdc", " USDC ", "", "pyusd"},
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if len(output.Addresses) != 2 || output.Addresses[0].Asset != "USDC" || output.Addresses[1].Asset != "PYUSD" {
		t.Fatalf("expected USDC and PYUSD, got %+v", output.Addresses)
	}
}

func TestDeriveRoutingAddressesUseCaseRejectsBadInput(t *testing.T) {
	useCase := NewDeriveRoutingAddressesUseCase(fakeDeriver{})

	cases := []struct {
		query dto.DeriveRoutingAddressesQuery
		code  string
	}{
		{query: dto.DeriveRoutingAddressesQuery{MultisigAddress: "0OIl"}, code: "invalid_account_address"},
		{query: dto.DeriveRoutingAddressesQuery{MultisigAddress: testMultisig, VaultIndex: 256}, code: "invalid_vault_index"},
		{query: dto.DeriveRoutingAddressesQuery{MultisigAddress: testMultisig, Assets: []string{"DAI"}}, code: "unsupported_asset"},
	}
	for _, tc := range cases {
		_, appErr := useCase.Execute(context.Background(), tc.query)
		if appErr == nil || appErr.Code != tc.code {
			t.Fatalf("expected %s, got %+v", tc.code, appErr)
		}
		if appErr.Type != apperrors.TypeValidation {
			t.Fatalf("expected validation error for %s, got %s", tc.code, appErr.Type)
		}
	}
}

func TestListAssetsUseCaseReturnsCatalog(t *testing.T) {
	output, appErr := NewListAssetsUseCase(fakeDeriver{}).Execute(context.Background(), dto.ListAssetsQuery{})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.Network != "mainnet-beta" || len(output.Assets) != 3 {
		t.Fatalf("unexpected catalog: %+v", output)
	}

	_, appErr = NewListAssetsUseCase(nil).Execute(context.Background(), dto.ListAssetsQuery{})
	if appErr == nil || appErr.Code != "address_deriver_missing" {
		t.Fatalf("expected address_deriver_missing, got %+v", appErr)
	}
}

package valueobjects

import (
	"strings"

	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

// NormalizeAccountAddress parses a base58 ledger account address.
func NormalizeAccountAddress(field, raw string) (solana.PublicKey, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return solana.PublicKey{}, apperrors.NewValidation(
			"invalid_request",
			field+" is required",
			map[string]any{"field": field},
		)
	}

	key, err := solana.PublicKeyFromBase58(trimmed)
	if err != nil {
		return solana.PublicKey{}, apperrors.NewValidation(
			"invalid_account_address",
			field+" is not a valid account address",
			map[string]any{"field": field},
		)
	}

	return key, nil
}

func NormalizeTransactionSignature(raw string) (solana.Signature, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	signature, err := solana.SignatureFromBase58(trimmed)
	if trimmed == "" || err != nil {
		return solana.Signature{}, apperrors.NewValidation(
			"invalid_transaction_signature",
			"transaction signature is invalid",
			map[string]any{"signature": raw},
		)
	}

	return signature, nil
}

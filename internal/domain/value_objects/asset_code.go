package valueobjects

import (
	"regexp"
	"strings"

	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go"
)

var assetPattern = regexp.MustCompile(`^[A-Z0-9_-]{1,32}$`)

// NormalizeAsset accepts an asset code, upper-cased, or a mint address, kept
// as given.
func NormalizeAsset(raw string) (string, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if _, err := solana.PublicKeyFromBase58(trimmed); err == nil && len(trimmed) > 32 {
		return trimmed, nil
	}

	asset := strings.ToUpper(trimmed)
	if asset == "" || !assetPattern.MatchString(asset) {
		return "", apperrors.NewValidation(
			"invalid_request",
			"asset is invalid",
			map[string]any{"field": "asset", "asset": raw},
		)
	}

	return asset, nil
}

package valueobjects

import apperrors "chainorg/internal/shared_kernel/errors"

type ErrorCategory string

const (
	ErrorCategoryWalletNotReady          ErrorCategory = "wallet_not_ready"
	ErrorCategoryTransactionSubmission   ErrorCategory = "transaction_submission"
	ErrorCategoryBlockchainConfirmation  ErrorCategory = "blockchain_confirmation"
	ErrorCategoryKnownSerializationIssue ErrorCategory = "known_serialization_issue"
	ErrorCategoryFinalization            ErrorCategory = "finalization"
	ErrorCategoryUnknown                 ErrorCategory = "unknown"
)

const walletMismatchMessage = "The connected wallet does not match the wallet registered on your profile. " +
	"Refresh your profile and reconnect the correct wallet, then retry finalization."

var categoryMessages = map[ErrorCategory]string{
	ErrorCategoryWalletNotReady: "Your wallet is not ready. Connect your wallet and try again.",
	ErrorCategoryTransactionSubmission: "The registration transaction could not be submitted. " +
		"Please try again.",
	ErrorCategoryBlockchainConfirmation: "The registration transaction could not be confirmed in time. " +
		"It may still complete on-chain; check again later before trying again.",
	ErrorCategoryKnownSerializationIssue: "The registration transaction hit a known limitation when encoding " +
		"multi-signer transactions. Please try again; contact support if it keeps happening.",
	ErrorCategoryFinalization: "Your account was created on-chain but the organization could not be saved. " +
		"Please retry finalization.",
	ErrorCategoryUnknown: "Something went wrong during registration. Please try again.",
}

func ParseErrorCategory(raw string) (ErrorCategory, *apperrors.AppError) {
	category := ErrorCategory(raw)
	if _, ok := categoryMessages[category]; !ok {
		return "", apperrors.NewInternal(
			"error_category_invalid",
			"error category is invalid",
			map[string]any{"category": raw},
		)
	}
	return category, nil
}

func (c ErrorCategory) String() string {
	return string(c)
}

// RegistrationFailure is the structured outcome of a failed registration attempt.
type RegistrationFailure struct {
	Category       ErrorCategory
	Code           string
	Phase          RegistrationPhase
	WalletMismatch bool
	Cause          string
}

func (f RegistrationFailure) UserMessage() string {
	if f.WalletMismatch {
		return walletMismatchMessage
	}
	if message, ok := categoryMessages[f.Category]; ok {
		return message
	}
	return categoryMessages[ErrorCategoryUnknown]
}

// Retryable reports whether repeating the action without changing account
// state can succeed. Wallet binding mismatches never qualify.
func (f RegistrationFailure) Retryable() bool {
	if f.WalletMismatch {
		return false
	}
	switch f.Category {
	case ErrorCategoryWalletNotReady,
		ErrorCategoryTransactionSubmission,
		ErrorCategoryBlockchainConfirmation,
		ErrorCategoryKnownSerializationIssue,
		ErrorCategoryFinalization,
		ErrorCategoryUnknown:
		return true
	default:
		return false
	}
}

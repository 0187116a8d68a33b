package policies

import (
	"strings"

	valueobjects "chainorg/internal/domain/value_objects"
)

type categoryRule struct {
	category valueobjects.ErrorCategory
	terms    []string
}

// Order is priority: first matching rule wins.
var categoryRules = []categoryRule{
	{category: valueobjects.ErrorCategoryWalletNotReady, terms: []string{"wallet"}},
	{category: valueobjects.ErrorCategoryKnownSerializationIssue, terms: []string{
		"failed to serialize",
		"serialization",
		"encoding overruns",
		"buffer overrun",
	}},
	{category: valueobjects.ErrorCategoryTransactionSubmission, terms: []string{
		"transaction",
		"simulation failed",
		"blockhash",
		"insufficient funds",
	}},
	{category: valueobjects.ErrorCategoryBlockchainConfirmation, terms: []string{
		"blockchain",
		"confirm",
		"commitment",
	}},
	{category: valueobjects.ErrorCategoryFinalization, terms: []string{
		"finaliz",
		"organization",
	}},
}

var walletMismatchTerms = []string{
	"mismatch",
	"does not match",
	"doesn't match",
	"not a required signer",
}

// ClassifyRawError maps a raw failure message to a category. It is total:
// anything unmatched is ErrorCategoryUnknown.
func ClassifyRawError(raw string) valueobjects.ErrorCategory {
	normalized := strings.ToLower(raw)
	for _, rule := range categoryRules {
		if containsAny(normalized, rule.terms) {
			return rule.category
		}
	}
	return valueobjects.ErrorCategoryUnknown
}

// IndicatesWalletMismatch reports whether raw describes a signing wallet that
// does not match the wallet the external system expects.
func IndicatesWalletMismatch(raw string) bool {
	return containsAny(strings.ToLower(raw), walletMismatchTerms)
}

// ClassifyStageFailure converts a raw external error observed in phase into a
// structured failure. Wallet and serialization signals override the phase
// default; everything else is attributed to the phase that failed.
func ClassifyStageFailure(phase valueobjects.RegistrationPhase, code, raw string) valueobjects.RegistrationFailure {
	failure := valueobjects.RegistrationFailure{
		Code:  code,
		Phase: phase,
		Cause: raw,
	}

	signal := raw + " " + code
	matched := ClassifyRawError(signal)
	mismatch := IndicatesWalletMismatch(signal)

	switch {
	case phase == valueobjects.RegistrationPhaseFinalizing:
		failure.Category = valueobjects.ErrorCategoryFinalization
		failure.WalletMismatch = mismatch
	case matched == valueobjects.ErrorCategoryWalletNotReady,
		matched == valueobjects.ErrorCategoryKnownSerializationIssue:
		failure.Category = matched
		failure.WalletMismatch = mismatch && matched == valueobjects.ErrorCategoryWalletNotReady
	default:
		failure.Category = defaultCategoryForPhase(phase, matched)
	}

	return failure
}

func defaultCategoryForPhase(
	phase valueobjects.RegistrationPhase,
	matched valueobjects.ErrorCategory,
) valueobjects.ErrorCategory {
	switch phase {
	case valueobjects.RegistrationPhasePreparing, valueobjects.RegistrationPhaseSubmitting:
		return valueobjects.ErrorCategoryTransactionSubmission
	case valueobjects.RegistrationPhaseAwaitingSignature:
		return valueobjects.ErrorCategoryWalletNotReady
	case valueobjects.RegistrationPhaseConfirming:
		return valueobjects.ErrorCategoryBlockchainConfirmation
	default:
		return matched
	}
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

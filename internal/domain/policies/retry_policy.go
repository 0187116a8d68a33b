package policies

import (
	"strings"

	valueobjects "chainorg/internal/domain/value_objects"
)

type RetryMode string

const (
	// RetryModeNone: nothing to retry, either complete or still running.
	RetryModeNone RetryMode = "none"
	// RetryModeNewAttempt: start over with a fresh create key.
	RetryModeNewAttempt RetryMode = "new_attempt"
	// RetryModeFinalizeOnly: the ledger side succeeded; only finalize may be
	// repeated, with the same create key and signature.
	RetryModeFinalizeOnly RetryMode = "finalize_only"
)

// ResolveRetryMode decides how an attempt may be retried from its last known
// phase. failedPhase is the phase the attempt was in when it failed and is
// only consulted when phase is failed.
func ResolveRetryMode(
	phase valueobjects.RegistrationPhase,
	failedPhase valueobjects.RegistrationPhase,
	signature string,
) RetryMode {
	hasSignature := strings.TrimSpace(signature) != ""

	switch phase {
	case valueobjects.RegistrationPhaseComplete, valueobjects.RegistrationPhaseIdle:
		return RetryModeNone
	case valueobjects.RegistrationPhaseFinalizing:
		if hasSignature {
			return RetryModeFinalizeOnly
		}
		return RetryModeNone
	case valueobjects.RegistrationPhaseFailed:
		if failedPhase == valueobjects.RegistrationPhaseFinalizing && hasSignature {
			return RetryModeFinalizeOnly
		}
		return RetryModeNewAttempt
	default:
		return RetryModeNone
	}
}

func (m RetryMode) String() string {
	return string(m)
}

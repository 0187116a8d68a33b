package valueobjects

import apperrors "chainorg/internal/shared_kernel/errors"

type RegistrationPhase string

const (
	RegistrationPhaseIdle              RegistrationPhase = "idle"
	RegistrationPhasePreparing         RegistrationPhase = "preparing"
	RegistrationPhaseAwaitingSignature RegistrationPhase = "awaiting_signature"
	RegistrationPhaseSubmitting        RegistrationPhase = "submitting"
	RegistrationPhaseConfirming        RegistrationPhase = "confirming"
	RegistrationPhaseFinalizing        RegistrationPhase = "finalizing"
	RegistrationPhaseComplete          RegistrationPhase = "complete"
	RegistrationPhaseFailed            RegistrationPhase = "failed"
)

var registrationTransitions = map[RegistrationPhase]RegistrationPhase{
	RegistrationPhaseIdle:              RegistrationPhasePreparing,
	RegistrationPhasePreparing:         RegistrationPhaseAwaitingSignature,
	RegistrationPhaseAwaitingSignature: RegistrationPhaseSubmitting,
	RegistrationPhaseSubmitting:        RegistrationPhaseConfirming,
	RegistrationPhaseConfirming:        RegistrationPhaseFinalizing,
	RegistrationPhaseFinalizing:        RegistrationPhaseComplete,
}

func ParseRegistrationPhase(raw string) (RegistrationPhase, *apperrors.AppError) {
	phase := RegistrationPhase(raw)
	switch phase {
	case RegistrationPhaseIdle,
		RegistrationPhasePreparing,
		RegistrationPhaseAwaitingSignature,
		RegistrationPhaseSubmitting,
		RegistrationPhaseConfirming,
		RegistrationPhaseFinalizing,
		RegistrationPhaseComplete,
		RegistrationPhaseFailed:
		return phase, nil
	default:
		return "", apperrors.NewInternal(
			"registration_phase_invalid",
			"registration phase is invalid",
			map[string]any{"phase": raw},
		)
	}
}

// CanTransitionTo reports whether next is a legal successor of p.
// Failed is reachable from every phase except idle and the terminal phases.
func (p RegistrationPhase) CanTransitionTo(next RegistrationPhase) bool {
	if next == RegistrationPhaseFailed {
		return !p.IsTerminal() && p != RegistrationPhaseIdle
	}

	expected, ok := registrationTransitions[p]
	return ok && expected == next
}

func (p RegistrationPhase) IsTerminal() bool {
	return p == RegistrationPhaseComplete || p == RegistrationPhaseFailed
}

// IsInFlight reports whether an attempt in phase p is still owned by a running flow.
func (p RegistrationPhase) IsInFlight() bool {
	return p != RegistrationPhaseIdle && !p.IsTerminal()
}

func (p RegistrationPhase) String() string {
	return string(p)
}

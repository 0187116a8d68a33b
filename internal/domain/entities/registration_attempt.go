package entities

import (
	"strings"
	"time"

	"chainorg/internal/domain/policies"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

// RegistrationAttempt is the state of one organization registration. Its
// create key is fixed once prepared and identifies the attempt from then on.
// It is owned by a single flow at a time.
type RegistrationAttempt struct {
	ID                      string
	CallerID                string
	CreateKey               string
	Phase                   valueobjects.RegistrationPhase
	OrganizationProfile     map[string]any
	OrganizationData        map[string]any
	PreparedTransaction     []byte
	ExpectedMultisigAddress string
	Blockhash               string
	LastValidBlockHeight    uint64
	SignerAddress           string
	Signature               string
	OrganizationID          string
	Failure                 *valueobjects.RegistrationFailure
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type NewRegistrationAttemptInput struct {
	ID                  string
	CallerID            string
	CreateKey           string
	OrganizationProfile map[string]any
	CreatedAt           time.Time
}

type PreparedRegistration struct {
	CreateKey             string
	OrganizationData      map[string]any
	SerializedTransaction []byte
	MultisigAddress       string
	Blockhash             string
	LastValidBlockHeight  uint64
}

func NewRegistrationAttempt(input NewRegistrationAttemptInput) (RegistrationAttempt, *apperrors.AppError) {
	if strings.TrimSpace(input.ID) == "" {
		return RegistrationAttempt{}, apperrors.NewInternal(
			"registration_attempt_id_missing",
			"registration attempt id is required",
			nil,
		)
	}
	if strings.TrimSpace(input.CallerID) == "" {
		return RegistrationAttempt{}, apperrors.NewValidation(
			"caller_id_missing",
			"caller id is required",
			nil,
		)
	}

	createdAt := input.CreatedAt.UTC()
	return RegistrationAttempt{
		ID:                  input.ID,
		CallerID:            strings.TrimSpace(input.CallerID),
		CreateKey:           strings.TrimSpace(input.CreateKey),
		Phase:               valueobjects.RegistrationPhaseIdle,
		OrganizationProfile: cloneMap(input.OrganizationProfile),
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}, nil
}

func (a *RegistrationAttempt) BeginPreparing(now time.Time) *apperrors.AppError {
	return a.transition(valueobjects.RegistrationPhasePreparing, now)
}

func (a *RegistrationAttempt) RecordPrepared(prepared PreparedRegistration, now time.Time) *apperrors.AppError {
	createKey := strings.TrimSpace(prepared.CreateKey)
	if createKey == "" {
		return apperrors.NewInternal(
			"create_key_missing",
			"create key is required",
			map[string]any{"attempt_id": a.ID},
		)
	}
	if a.CreateKey != "" && a.CreateKey != createKey {
		return apperrors.NewInternal(
			"create_key_changed",
			"create key cannot change within an attempt",
			map[string]any{"attempt_id": a.ID},
		)
	}
	if appErr := a.transition(valueobjects.RegistrationPhaseAwaitingSignature, now); appErr != nil {
		return appErr
	}

	a.CreateKey = createKey
	a.OrganizationData = cloneMap(prepared.OrganizationData)
	a.PreparedTransaction = append([]byte(nil), prepared.SerializedTransaction...)
	a.ExpectedMultisigAddress = prepared.MultisigAddress
	a.Blockhash = prepared.Blockhash
	a.LastValidBlockHeight = prepared.LastValidBlockHeight
	return nil
}

func (a *RegistrationAttempt) RecordSigned(signerAddress string, now time.Time) *apperrors.AppError {
	if appErr := a.transition(valueobjects.RegistrationPhaseSubmitting, now); appErr != nil {
		return appErr
	}

	a.SignerAddress = signerAddress
	return nil
}

func (a *RegistrationAttempt) RecordSubmitted(signature string, now time.Time) *apperrors.AppError {
	if strings.TrimSpace(signature) == "" {
		return apperrors.NewInternal(
			"transaction_signature_missing",
			"submitted transaction signature is required",
			map[string]any{"attempt_id": a.ID},
		)
	}
	if appErr := a.transition(valueobjects.RegistrationPhaseConfirming, now); appErr != nil {
		return appErr
	}

	a.Signature = signature
	return nil
}

func (a *RegistrationAttempt) RecordConfirmed(now time.Time) *apperrors.AppError {
	return a.transition(valueobjects.RegistrationPhaseFinalizing, now)
}

func (a *RegistrationAttempt) RecordFinalized(organizationID string, now time.Time) *apperrors.AppError {
	if appErr := a.transition(valueobjects.RegistrationPhaseComplete, now); appErr != nil {
		return appErr
	}

	a.OrganizationID = organizationID
	a.Failure = nil
	return nil
}

// Fail moves the attempt to the failed phase, stamping the phase it failed in.
func (a *RegistrationAttempt) Fail(failure valueobjects.RegistrationFailure, now time.Time) *apperrors.AppError {
	failedPhase := a.Phase
	if appErr := a.transition(valueobjects.RegistrationPhaseFailed, now); appErr != nil {
		return appErr
	}

	failure.Phase = failedPhase
	a.Failure = &failure
	return nil
}

// ResumeFinalizing reopens an attempt for a finalize-only retry.
func (a *RegistrationAttempt) ResumeFinalizing(now time.Time) *apperrors.AppError {
	if mode := a.RetryMode(); mode != policies.RetryModeFinalizeOnly {
		return apperrors.NewConflict(
			"registration_retry_requires_new_attempt",
			"registration can only be retried with a new create key",
			map[string]any{
				"attempt_id": a.ID,
				"phase":      a.Phase.String(),
				"retry_mode": mode.String(),
			},
		)
	}

	a.Phase = valueobjects.RegistrationPhaseFinalizing
	a.Failure = nil
	a.UpdatedAt = now.UTC()
	return nil
}

func (a RegistrationAttempt) RetryMode() policies.RetryMode {
	failedPhase := valueobjects.RegistrationPhase("")
	if a.Failure != nil {
		failedPhase = a.Failure.Phase
	}
	return policies.ResolveRetryMode(a.Phase, failedPhase, a.Signature)
}

func (a *RegistrationAttempt) transition(next valueobjects.RegistrationPhase, now time.Time) *apperrors.AppError {
	if !a.Phase.CanTransitionTo(next) {
		return apperrors.NewInternal(
			"registration_transition_invalid",
			"registration attempt cannot move to the requested phase",
			map[string]any{
				"attempt_id": a.ID,
				"from":       a.Phase.String(),
				"to":         next.String(),
			},
		)
	}

	a.Phase = next
	a.UpdatedAt = now.UTC()
	return nil
}

func cloneMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

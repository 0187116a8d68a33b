package use_cases

import (
	"chainorg/internal/application/dto"
	"chainorg/internal/domain/entities"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

func toRegistrationAttemptResource(attempt entities.RegistrationAttempt) dto.RegistrationAttemptResource {
	resource := dto.RegistrationAttemptResource{
		ID:                   attempt.ID,
		CallerID:             attempt.CallerID,
		CreateKey:            attempt.CreateKey,
		Phase:                attempt.Phase.String(),
		MultisigAddress:      attempt.ExpectedMultisigAddress,
		SignerAddress:        attempt.SignerAddress,
		Signature:            attempt.Signature,
		LastValidBlockHeight: attempt.LastValidBlockHeight,
		OrganizationID:       attempt.OrganizationID,
		RetryMode:            attempt.RetryMode().String(),
		CreatedAt:            attempt.CreatedAt,
		UpdatedAt:            attempt.UpdatedAt,
	}
	if attempt.Failure != nil {
		resource.Failure = &dto.RegistrationFailureResource{
			Category:       attempt.Failure.Category.String(),
			Code:           attempt.Failure.Code,
			Phase:          attempt.Failure.Phase.String(),
			Message:        attempt.Failure.UserMessage(),
			Retryable:      attempt.Failure.Retryable(),
			WalletMismatch: attempt.Failure.WalletMismatch,
		}
	}
	return resource
}

func registrationOutput(
	attempt entities.RegistrationAttempt,
	organization *dto.OrganizationResource,
) dto.RegisterOrganizationOutput {
	return dto.RegisterOrganizationOutput{
		Attempt:      toRegistrationAttemptResource(attempt),
		Organization: organization,
	}
}

// registrationFailureError renders a failed attempt as the error returned to
// callers. The message is the user-facing one for the failure category.
func registrationFailureError(attempt entities.RegistrationAttempt) *apperrors.AppError {
	failure := attempt.Failure
	if failure == nil {
		return apperrors.NewInternal(
			"registration_failure_missing",
			"registration attempt failed without a recorded failure",
			map[string]any{"attempt_id": attempt.ID},
		)
	}

	errType := apperrors.TypeInternal
	switch failure.Category {
	case valueobjects.ErrorCategoryWalletNotReady:
		errType = apperrors.TypeConflict
	case valueobjects.ErrorCategoryTransactionSubmission, valueobjects.ErrorCategoryKnownSerializationIssue:
		errType = apperrors.TypeUpstream
	case valueobjects.ErrorCategoryBlockchainConfirmation:
		errType = apperrors.TypeUpstream
		if failure.Code == "confirmation_timeout" {
			errType = apperrors.TypeTimeout
		}
	case valueobjects.ErrorCategoryFinalization:
		errType = apperrors.TypeUpstream
		if failure.WalletMismatch {
			errType = apperrors.TypeConflict
		}
	}

	return &apperrors.AppError{
		Type:    errType,
		Code:    failure.Code,
		Message: failure.UserMessage(),
		Details: map[string]any{
			"attempt_id":      attempt.ID,
			"create_key":      attempt.CreateKey,
			"category":        failure.Category.String(),
			"phase":           failure.Phase.String(),
			"retryable":       failure.Retryable(),
			"wallet_mismatch": failure.WalletMismatch,
			"retry_mode":      attempt.RetryMode().String(),
		},
	}
}

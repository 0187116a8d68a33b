package use_cases

import (
	"context"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type getRegistrationAttemptUseCase struct {
	repository portsout.RegistrationAttemptRepository
}

func NewGetRegistrationAttemptUseCase(
	repository portsout.RegistrationAttemptRepository,
) portsin.GetRegistrationAttemptUseCase {
	return &getRegistrationAttemptUseCase{repository: repository}
}

func (u *getRegistrationAttemptUseCase) Execute(
	ctx context.Context,
	query dto.GetRegistrationAttemptQuery,
) (dto.RegistrationAttemptResource, *apperrors.AppError) {
	if u.repository == nil {
		return dto.RegistrationAttemptResource{}, apperrors.NewInternal(
			"registration_attempt_repository_missing",
			"registration attempt repository is required",
			nil,
		)
	}

	attempt, appErr := findCallerAttempt(
		ctx,
		RegistrationDependencies{Repository: u.repository},
		query.CallerID,
		query.AttemptID,
	)
	if appErr != nil {
		return dto.RegistrationAttemptResource{}, appErr
	}
	return toRegistrationAttemptResource(attempt), nil
}

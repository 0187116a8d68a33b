package out

import (
	"context"
	"time"

	"chainorg/internal/domain/entities"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type RegistrationAttemptRepository interface {
	Save(ctx context.Context, attempt entities.RegistrationAttempt) *apperrors.AppError
	FindByID(ctx context.Context, id string) (entities.RegistrationAttempt, *apperrors.AppError)
	FindLatestByCaller(ctx context.Context, callerID string) (entities.RegistrationAttempt, bool, *apperrors.AppError)
}

type RegistrationReconciliationRepository interface {
	ClaimStalled(
		ctx context.Context,
		now time.Time,
		staleBefore time.Time,
		limit int,
		leaseOwner string,
		leaseUntil time.Time,
	) ([]entities.RegistrationAttempt, *apperrors.AppError)
	ReleaseClaim(ctx context.Context, id string, leaseOwner string) *apperrors.AppError
}

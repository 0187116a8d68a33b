package out

import (
	"context"

	apperrors "chainorg/internal/shared_kernel/errors"
)

type PersistenceBootstrapGateway interface {
	CheckReadiness(ctx context.Context) *apperrors.AppError
	RunMigrations(ctx context.Context) *apperrors.AppError
	ValidateJournalIntegrity(ctx context.Context) *apperrors.AppError
}

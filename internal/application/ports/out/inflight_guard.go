package out

import (
	"context"
	"time"

	apperrors "chainorg/internal/shared_kernel/errors"
)

// InFlightGuard grants one caller at most one running registration flow.
// token identifies the holder; Release only succeeds for the holder.
type InFlightGuard interface {
	Acquire(ctx context.Context, callerID string, token string, ttl time.Duration) (bool, *apperrors.AppError)
	Release(ctx context.Context, callerID string, token string) *apperrors.AppError
}

package out

import (
	"context"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type WalletSigner interface {
	Status(ctx context.Context) dto.WalletSignerStatus
	Sign(ctx context.Context, input dto.SignTransactionInput) ([]byte, *apperrors.AppError)
}

package out

import (
	"context"

	"chainorg/internal/application/dto"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type LedgerGateway interface {
	SubmitTransaction(ctx context.Context, signedTransaction []byte) (string, *apperrors.AppError)
	GetTransactionStatus(
		ctx context.Context,
		signature string,
		commitment valueobjects.CommitmentLevel,
	) (dto.TransactionStatus, *apperrors.AppError)
	GetBlockHeight(ctx context.Context, commitment valueobjects.CommitmentLevel) (uint64, *apperrors.AppError)
}

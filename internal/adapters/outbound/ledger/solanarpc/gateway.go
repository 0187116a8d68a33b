package solanarpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chainorg/internal/application/dto"
	portsout "chainorg/internal/application/ports/out"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/gagliardetto/solana-go/rpc"
)

const defaultHTTPTimeout = 10 * time.Second

type Config struct {
	RPCURL string
	// PreflightCommitment is the commitment the node simulates against
	// before accepting a transaction.
	PreflightCommitment string
	HTTPTimeout         time.Duration
}

// Gateway submits transactions and reads their status over Solana JSON-RPC.
type Gateway struct {
	client              *rpc.Client
	preflightCommitment rpc.CommitmentType
	httpTimeout         time.Duration
}

var _ portsout.LedgerGateway = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	httpTimeout := cfg.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = defaultHTTPTimeout
	}
	preflight := rpc.CommitmentConfirmed
	if level, appErr := valueobjects.ParseCommitmentLevel(cfg.PreflightCommitment); appErr == nil {
		preflight = toRPCCommitment(level)
	}

	return &Gateway{
		client:              rpc.New(strings.TrimSpace(cfg.RPCURL)),
		preflightCommitment: preflight,
		httpTimeout:         httpTimeout,
	}
}

func (g *Gateway) SubmitTransaction(ctx context.Context, signedTransaction []byte) (string, *apperrors.AppError) {
	if len(signedTransaction) == 0 {
		return "", apperrors.NewValidation(
			"signed_transaction_missing",
			"signed transaction is required",
			nil,
		)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.httpTimeout)
	defer cancel()

	signature, err := g.client.SendRawTransactionWithOpts(callCtx, signedTransaction, rpc.TransactionOpts{
		PreflightCommitment: g.preflightCommitment,
	})
	if err != nil {
		return "", rpcError("ledger_submit_failed", "sendTransaction", err)
	}
	return signature.String(), nil
}

// GetTransactionStatus reports whether signature has reached commitment.
// A signature the node does not know yet is reported as not found.
func (g *Gateway) GetTransactionStatus(
	ctx context.Context,
	signature string,
	commitment valueobjects.CommitmentLevel,
) (dto.TransactionStatus, *apperrors.AppError) {
	parsed, appErr := valueobjects.NormalizeTransactionSignature(signature)
	if appErr != nil {
		return dto.TransactionStatus{}, appErr
	}

	callCtx, cancel := context.WithTimeout(ctx, g.httpTimeout)
	defer cancel()

	result, err := g.client.GetSignatureStatuses(callCtx, true, parsed)
	if err != nil {
		return dto.TransactionStatus{}, rpcError("ledger_status_query_failed", "getSignatureStatuses", err)
	}
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return dto.TransactionStatus{}, nil
	}

	return toTransactionStatus(result.Value[0], commitment), nil
}

func (g *Gateway) GetBlockHeight(ctx context.Context, commitment valueobjects.CommitmentLevel) (uint64, *apperrors.AppError) {
	callCtx, cancel := context.WithTimeout(ctx, g.httpTimeout)
	defer cancel()

	height, err := g.client.GetBlockHeight(callCtx, toRPCCommitment(commitment))
	if err != nil {
		return 0, rpcError("ledger_block_height_failed", "getBlockHeight", err)
	}
	return height, nil
}

func toTransactionStatus(
	status *rpc.SignatureStatusesResult,
	required valueobjects.CommitmentLevel,
) dto.TransactionStatus {
	reached := valueobjects.CommitmentLevel(status.ConfirmationStatus)
	// Rooted transactions have no confirmation count and may omit the status.
	if reached == "" && status.Confirmations == nil {
		reached = valueobjects.CommitmentFinalized
	}

	out := dto.TransactionStatus{
		Found:      true,
		Commitment: reached.String(),
		Slot:       status.Slot,
		Confirmed:  reached.Satisfies(required),
	}
	if status.Err != nil {
		out.ExecutionError = describeExecutionError(status.Err)
	}
	return out
}

func describeExecutionError(raw any) string {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return string(encoded)
}

func toRPCCommitment(level valueobjects.CommitmentLevel) rpc.CommitmentType {
	switch level {
	case valueobjects.CommitmentProcessed:
		return rpc.CommitmentProcessed
	case valueobjects.CommitmentFinalized:
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

func rpcError(code string, method string, err error) *apperrors.AppError {
	return apperrors.NewUpstream(
		code,
		"ledger rpc "+method+" failed",
		map[string]any{
			"method":           method,
			"upstream_message": err.Error(),
		},
	)
}

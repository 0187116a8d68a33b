package use_cases

import (
	"context"
	"errors"
	"strings"
	"time"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	portsout "chainorg/internal/application/ports/out"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/cenkalti/backoff/v4"
)

const (
	ConfirmationOutcomeConfirmed      = "confirmed"
	ConfirmationOutcomeFailedOnLedger = "failed_on_ledger"
	ConfirmationOutcomeExpired        = "expired"
	ConfirmationOutcomeTimeout        = "timeout"
)

var (
	errConfirmationPending = errors.New("transaction confirmation pending")
	errExecutionFailed     = errors.New("transaction failed on ledger")
	errBlockhashExpired    = errors.New("transaction blockhash expired")
)

type confirmTransactionUseCase struct {
	ledger  portsout.LedgerGateway
	metrics portsout.RegistrationMetrics
}

func NewConfirmTransactionUseCase(
	ledger portsout.LedgerGateway,
	metrics portsout.RegistrationMetrics,
) portsin.ConfirmTransactionUseCase {
	if metrics == nil {
		metrics = portsout.NoopRegistrationMetrics{}
	}

	return &confirmTransactionUseCase{ledger: ledger, metrics: metrics}
}

// Execute polls the ledger at a constant interval of Timeout/MaxRetries until
// the transaction is confirmed at the requested commitment, fails on-ledger,
// or the poll budget or wall-clock timeout runs out. It never issues more
// than MaxRetries status queries.
func (u *confirmTransactionUseCase) Execute(
	ctx context.Context,
	command dto.ConfirmTransactionCommand,
) (dto.ConfirmTransactionOutput, *apperrors.AppError) {
	if u.ledger == nil {
		return dto.ConfirmTransactionOutput{}, apperrors.NewInternal(
			"ledger_gateway_missing",
			"ledger gateway is required",
			nil,
		)
	}
	signature := strings.TrimSpace(command.Signature)
	if _, appErr := valueobjects.NormalizeTransactionSignature(signature); appErr != nil {
		return dto.ConfirmTransactionOutput{}, appErr
	}
	commitment, appErr := valueobjects.ParseCommitmentLevel(command.Commitment)
	if appErr != nil {
		return dto.ConfirmTransactionOutput{}, appErr
	}
	if command.MaxRetries <= 0 {
		return dto.ConfirmTransactionOutput{}, apperrors.NewValidation(
			"confirmation_max_retries_invalid",
			"confirmation max retries must be greater than zero",
			map[string]any{"max_retries": command.MaxRetries},
		)
	}
	if command.Timeout <= 0 {
		return dto.ConfirmTransactionOutput{}, apperrors.NewValidation(
			"confirmation_timeout_invalid",
			"confirmation timeout must be greater than zero",
			map[string]any{"timeout": command.Timeout.String()},
		)
	}

	pollCtx, cancel := context.WithTimeout(ctx, command.Timeout)
	defer cancel()

	interval := command.Timeout / time.Duration(command.MaxRetries)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(command.MaxRetries-1)),
		pollCtx,
	)

	output := dto.ConfirmTransactionOutput{
		Signature:  signature,
		Commitment: commitment.String(),
	}
	var lastQueryErr *apperrors.AppError
	startedAt := time.Now()

	operation := func() error {
		output.Polls++
		status, queryErr := u.ledger.GetTransactionStatus(pollCtx, signature, commitment)
		if queryErr != nil {
			lastQueryErr = queryErr
			return errConfirmationPending
		}
		if status.ExecutionError != "" {
			output.ExecutionError = status.ExecutionError
			return backoff.Permanent(errExecutionFailed)
		}
		if status.Confirmed {
			return nil
		}
		if !status.Found && u.blockhashExpired(pollCtx, commitment, command.LastValidBlockHeight) {
			return backoff.Permanent(errBlockhashExpired)
		}
		return errConfirmationPending
	}

	err := backoff.Retry(operation, policy)
	output.Elapsed = time.Since(startedAt)

	switch {
	case err == nil:
		output.Outcome = ConfirmationOutcomeConfirmed
	case errors.Is(err, errExecutionFailed):
		output.Outcome = ConfirmationOutcomeFailedOnLedger
	case errors.Is(err, errBlockhashExpired):
		output.Outcome = ConfirmationOutcomeExpired
	default:
		output.Outcome = ConfirmationOutcomeTimeout
	}
	u.metrics.ObserveConfirmation(output.Outcome, output.Polls, output.Elapsed)

	details := map[string]any{
		"signature":  signature,
		"polls":      output.Polls,
		"commitment": commitment.String(),
	}
	switch output.Outcome {
	case ConfirmationOutcomeConfirmed:
		return output, nil
	case ConfirmationOutcomeFailedOnLedger:
		details["ledger_error"] = output.ExecutionError
		return output, apperrors.NewUpstream(
			"transaction_failed_on_ledger",
			"transaction was committed with an execution error",
			details,
		)
	case ConfirmationOutcomeExpired:
		details["last_valid_block_height"] = command.LastValidBlockHeight
		return output, apperrors.NewUpstream(
			"transaction_expired",
			"transaction blockhash expired before the transaction was seen",
			details,
		)
	default:
		details["timeout"] = command.Timeout.String()
		details["max_retries"] = command.MaxRetries
		if lastQueryErr != nil {
			details["last_query_error"] = lastQueryErr.Code
		}
		return output, apperrors.NewTimeout(
			"confirmation_timeout",
			"transaction confirmation outcome is unknown",
			details,
		)
	}
}

// blockhashExpired reports whether the ledger has moved past the last block
// height at which the transaction could still land. Query failures count as
// not expired.
func (u *confirmTransactionUseCase) blockhashExpired(
	ctx context.Context,
	commitment valueobjects.CommitmentLevel,
	lastValidBlockHeight uint64,
) bool {
	if lastValidBlockHeight == 0 {
		return false
	}

	height, appErr := u.ledger.GetBlockHeight(ctx, commitment)
	if appErr != nil {
		return false
	}
	return height > lastValidBlockHeight
}

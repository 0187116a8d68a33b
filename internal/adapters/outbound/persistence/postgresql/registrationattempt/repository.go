package registrationattempt

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"log"
	"strings"
	"time"

	portsout "chainorg/internal/application/ports/out"
	"chainorg/internal/domain/entities"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const attemptColumns = `
  id,
  caller_id,
  create_key,
  phase,
  organization_profile,
  organization_data,
  prepared_transaction,
  expected_multisig_address,
  blockhash,
  last_valid_block_height,
  signer_address,
  signature,
  organization_id,
  failure,
  created_at,
  updated_at`

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

var (
	_ portsout.RegistrationAttemptRepository        = (*Repository)(nil)
	_ portsout.RegistrationReconciliationRepository = (*Repository)(nil)
)

func NewRepository(db *sql.DB, logger *log.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Save upserts the attempt. Caller and creation time never change after the
// first write, and an active reconcile lease is left in place.
func (r *Repository) Save(ctx context.Context, attempt entities.RegistrationAttempt) *apperrors.AppError {
	const query = `
INSERT INTO app.registration_attempts (` + attemptColumns + `
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
)
ON CONFLICT (id) DO UPDATE SET
  create_key = EXCLUDED.create_key,
  phase = EXCLUDED.phase,
  organization_profile = EXCLUDED.organization_profile,
  organization_data = EXCLUDED.organization_data,
  prepared_transaction = EXCLUDED.prepared_transaction,
  expected_multisig_address = EXCLUDED.expected_multisig_address,
  blockhash = EXCLUDED.blockhash,
  last_valid_block_height = EXCLUDED.last_valid_block_height,
  signer_address = EXCLUDED.signer_address,
  signature = EXCLUDED.signature,
  organization_id = EXCLUDED.organization_id,
  failure = EXCLUDED.failure,
  updated_at = EXCLUDED.updated_at
WHERE app.registration_attempts.caller_id = EXCLUDED.caller_id
`

	row, appErr := toAttemptRow(attempt)
	if appErr != nil {
		return appErr
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		row.ID,
		row.CallerID,
		row.CreateKey,
		row.Phase,
		row.OrganizationProfile,
		row.OrganizationData,
		row.PreparedTransaction,
		row.ExpectedMultisigAddress,
		row.Blockhash,
		row.LastValidBlockHeight,
		row.SignerAddress,
		row.Signature,
		row.OrganizationID,
		row.Failure,
		row.CreatedAt,
		row.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict(
				"registration_create_key_conflict",
				"create key already belongs to another registration attempt",
				map[string]any{"attempt_id": attempt.ID, "create_key": attempt.CreateKey},
			)
		}
		r.logf("registration attempt save failed attempt_id=%s phase=%s error=%v", attempt.ID, attempt.Phase, err)
		return apperrors.NewInternal(
			"registration_attempt_save_failed",
			"failed to save registration attempt",
			map[string]any{"attempt_id": attempt.ID, "error": err.Error()},
		)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return apperrors.NewConflict(
			"registration_attempt_owner_mismatch",
			"registration attempt belongs to a different caller",
			map[string]any{"attempt_id": attempt.ID},
		)
	}

	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (entities.RegistrationAttempt, *apperrors.AppError) {
	query := `SELECT` + attemptColumns + `
FROM app.registration_attempts
WHERE id = $1
`

	attempt, err := scanAttempt(r.db.QueryRowContext(ctx, query, strings.TrimSpace(id)))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.RegistrationAttempt{}, apperrors.NewNotFound(
			"registration_attempt_not_found",
			"registration attempt not found",
			map[string]any{"attempt_id": id},
		)
	}
	if err != nil {
		return entities.RegistrationAttempt{}, queryFailed("failed to load registration attempt", err)
	}

	return attempt, nil
}

func (r *Repository) FindLatestByCaller(
	ctx context.Context,
	callerID string,
) (entities.RegistrationAttempt, bool, *apperrors.AppError) {
	query := `SELECT` + attemptColumns + `
FROM app.registration_attempts
WHERE caller_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`

	attempt, err := scanAttempt(r.db.QueryRowContext(ctx, query, strings.TrimSpace(callerID)))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.RegistrationAttempt{}, false, nil
	}
	if err != nil {
		return entities.RegistrationAttempt{}, false, queryFailed("failed to load latest registration attempt", err)
	}

	return attempt, true, nil
}

// ClaimStalled leases in-flight attempts untouched since staleBefore. Rows
// leased by another worker are skipped until the lease expires.
func (r *Repository) ClaimStalled(
	ctx context.Context,
	now time.Time,
	staleBefore time.Time,
	limit int,
	leaseOwner string,
	leaseUntil time.Time,
) ([]entities.RegistrationAttempt, *apperrors.AppError) {
	query := `
WITH candidates AS (
  SELECT id
  FROM app.registration_attempts
  WHERE phase IN ('preparing', 'awaiting_signature', 'submitting', 'confirming', 'finalizing')
    AND updated_at <= $2
    AND (reconcile_lease_until IS NULL OR reconcile_lease_until <= $1)
  ORDER BY updated_at ASC, id ASC
  LIMIT $3
  FOR UPDATE SKIP LOCKED
)
UPDATE app.registration_attempts AS ra
SET
  reconcile_lease_owner = $4,
  reconcile_lease_until = $5
FROM candidates
WHERE ra.id = candidates.id
RETURNING` + prefixedColumns("ra") + `
`

	rows, err := r.db.QueryContext(
		ctx,
		query,
		now.UTC(),
		staleBefore.UTC(),
		limit,
		strings.TrimSpace(leaseOwner),
		leaseUntil.UTC(),
	)
	if err != nil {
		return nil, queryFailed("failed to claim stalled registration attempts", err)
	}
	defer rows.Close()

	attempts := make([]entities.RegistrationAttempt, 0, limit)
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, queryFailed("failed to parse registration attempt row", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("failed while iterating registration attempts", err)
	}

	return attempts, nil
}

func (r *Repository) ReleaseClaim(ctx context.Context, id string, leaseOwner string) *apperrors.AppError {
	const query = `
UPDATE app.registration_attempts
SET
  reconcile_lease_owner = NULL,
  reconcile_lease_until = NULL
WHERE id = $1
  AND reconcile_lease_owner = $2
`

	if _, err := r.db.ExecContext(ctx, query, strings.TrimSpace(id), strings.TrimSpace(leaseOwner)); err != nil {
		return queryFailed("failed to release registration attempt lease", err)
	}
	return nil
}

func (r *Repository) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}

// attemptRow is the column form of an attempt.
type attemptRow struct {
	ID                      string
	CallerID                string
	CreateKey               sql.NullString
	Phase                   string
	OrganizationProfile     []byte
	OrganizationData        []byte
	PreparedTransaction     []byte
	ExpectedMultisigAddress sql.NullString
	Blockhash               sql.NullString
	LastValidBlockHeight    int64
	SignerAddress           sql.NullString
	Signature               sql.NullString
	OrganizationID          sql.NullString
	Failure                 []byte
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type failureDocument struct {
	Category       string `json:"category"`
	Code           string `json:"code"`
	Phase          string `json:"phase"`
	WalletMismatch bool   `json:"wallet_mismatch"`
	Cause          string `json:"cause,omitempty"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func toAttemptRow(attempt entities.RegistrationAttempt) (attemptRow, *apperrors.AppError) {
	profile, err := json.Marshal(nonNilMap(attempt.OrganizationProfile))
	if err != nil {
		return attemptRow{}, encodeFailed("organization_profile", err)
	}
	data, err := json.Marshal(nonNilMap(attempt.OrganizationData))
	if err != nil {
		return attemptRow{}, encodeFailed("organization_data", err)
	}

	var failure []byte
	if attempt.Failure != nil {
		failure, err = json.Marshal(failureDocument{
			Category:       attempt.Failure.Category.String(),
			Code:           attempt.Failure.Code,
			Phase:          attempt.Failure.Phase.String(),
			WalletMismatch: attempt.Failure.WalletMismatch,
			Cause:          attempt.Failure.Cause,
		})
		if err != nil {
			return attemptRow{}, encodeFailed("failure", err)
		}
	}

	return attemptRow{
		ID:                      attempt.ID,
		CallerID:                attempt.CallerID,
		CreateKey:               nullString(attempt.CreateKey),
		Phase:                   attempt.Phase.String(),
		OrganizationProfile:     profile,
		OrganizationData:        data,
		PreparedTransaction:     attempt.PreparedTransaction,
		ExpectedMultisigAddress: nullString(attempt.ExpectedMultisigAddress),
		Blockhash:               nullString(attempt.Blockhash),
		LastValidBlockHeight:    int64(attempt.LastValidBlockHeight),
		SignerAddress:           nullString(attempt.SignerAddress),
		Signature:               nullString(attempt.Signature),
		OrganizationID:          nullString(attempt.OrganizationID),
		Failure:                 failure,
		CreatedAt:               attempt.CreatedAt.UTC(),
		UpdatedAt:               attempt.UpdatedAt.UTC(),
	}, nil
}

func fromAttemptRow(row attemptRow) (entities.RegistrationAttempt, error) {
	phase, appErr := valueobjects.ParseRegistrationPhase(row.Phase)
	if appErr != nil {
		return entities.RegistrationAttempt{}, appErr
	}

	attempt := entities.RegistrationAttempt{
		ID:                      row.ID,
		CallerID:                row.CallerID,
		CreateKey:               row.CreateKey.String,
		Phase:                   phase,
		PreparedTransaction:     row.PreparedTransaction,
		ExpectedMultisigAddress: row.ExpectedMultisigAddress.String,
		Blockhash:               row.Blockhash.String,
		LastValidBlockHeight:    uint64(row.LastValidBlockHeight),
		SignerAddress:           row.SignerAddress.String,
		Signature:               row.Signature.String,
		OrganizationID:          row.OrganizationID.String,
		CreatedAt:               row.CreatedAt.UTC(),
		UpdatedAt:               row.UpdatedAt.UTC(),
	}

	if err := decodeMap(row.OrganizationProfile, &attempt.OrganizationProfile); err != nil {
		return entities.RegistrationAttempt{}, err
	}
	if err := decodeMap(row.OrganizationData, &attempt.OrganizationData); err != nil {
		return entities.RegistrationAttempt{}, err
	}

	if len(row.Failure) > 0 {
		var document failureDocument
		if err := json.Unmarshal(row.Failure, &document); err != nil {
			return entities.RegistrationAttempt{}, err
		}
		category, appErr := valueobjects.ParseErrorCategory(document.Category)
		if appErr != nil {
			return entities.RegistrationAttempt{}, appErr
		}
		failedPhase, appErr := valueobjects.ParseRegistrationPhase(document.Phase)
		if appErr != nil {
			return entities.RegistrationAttempt{}, appErr
		}
		attempt.Failure = &valueobjects.RegistrationFailure{
			Category:       category,
			Code:           document.Code,
			Phase:          failedPhase,
			WalletMismatch: document.WalletMismatch,
			Cause:          document.Cause,
		}
	}

	return attempt, nil
}

func scanAttempt(scanner rowScanner) (entities.RegistrationAttempt, error) {
	var row attemptRow
	if err := scanner.Scan(
		&row.ID,
		&row.CallerID,
		&row.CreateKey,
		&row.Phase,
		&row.OrganizationProfile,
		&row.OrganizationData,
		&row.PreparedTransaction,
		&row.ExpectedMultisigAddress,
		&row.Blockhash,
		&row.LastValidBlockHeight,
		&row.SignerAddress,
		&row.Signature,
		&row.OrganizationID,
		&row.Failure,
		&row.CreatedAt,
		&row.UpdatedAt,
	); err != nil {
		return entities.RegistrationAttempt{}, err
	}
	return fromAttemptRow(row)
}

func prefixedColumns(alias string) string {
	columns := strings.Split(strings.TrimSpace(attemptColumns), ",")
	for i, column := range columns {
		columns[i] = "\n  " + alias + "." + strings.TrimSpace(column)
	}
	return strings.Join(columns, ",")
}

func decodeMap(raw []byte, target *map[string]any) error {
	if len(raw) == 0 {
		*target = map[string]any{}
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return err
	}
	if *target == nil {
		*target = map[string]any{}
	}
	return nil
}

func nonNilMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	return input
}

func nullString(value string) sql.NullString {
	trimmed := strings.TrimSpace(value)
	return sql.NullString{String: trimmed, Valid: trimmed != ""}
}

func encodeFailed(field string, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"registration_attempt_encode_failed",
		"failed to encode registration attempt",
		map[string]any{"field": field, "error": err.Error()},
	)
}

func queryFailed(message string, err error) *apperrors.AppError {
	return apperrors.NewInternal(
		"registration_attempt_query_failed",
		message,
		map[string]any{"error": err.Error()},
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !stderrors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == "23505"
}

package bootstrap

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"
	"path/filepath"
	"strings"

	portsout "chainorg/internal/application/ports/out"
	valueobjects "chainorg/internal/domain/value_objects"
	apperrors "chainorg/internal/shared_kernel/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const maxReportedViolations = 20

type Gateway struct {
	databaseURL    string
	databaseTarget string
	migrationsPath string
	logger         *log.Logger
}

var _ portsout.PersistenceBootstrapGateway = (*Gateway)(nil)

func NewGateway(
	databaseURL string,
	databaseTarget string,
	migrationsPath string,
	logger *log.Logger,
) *Gateway {
	return &Gateway{
		databaseURL:    databaseURL,
		databaseTarget: databaseTarget,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

func (g *Gateway) CheckReadiness(ctx context.Context) *apperrors.AppError {
	db, err := sql.Open("pgx", g.databaseURL)
	if err != nil {
		g.logf("database connection initialization failed target=%s error=%v", g.databaseTarget, err)
		return apperrors.NewInternal(
			"DB_CONNECT_INIT_FAILED",
			"failed to initialize database connection",
			map[string]any{"database_target": g.databaseTarget},
		)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		g.logf("database readiness check failed target=%s error=%v", g.databaseTarget, err)
		return apperrors.NewInternal(
			"DB_CONNECT_FAILED",
			"failed to connect to database",
			map[string]any{"database_target": g.databaseTarget},
		)
	}

	g.logf("database readiness check succeeded target=%s", g.databaseTarget)
	return nil
}

func (g *Gateway) RunMigrations(ctx context.Context) *apperrors.AppError {
	if err := ctx.Err(); err != nil {
		return apperrors.NewInternal(
			"DB_MIGRATION_CONTEXT_CANCELED",
			"migration context canceled",
			map[string]any{"database_target": g.databaseTarget},
		)
	}

	sourceURL, appErr := migrationSourceURL(g.migrationsPath)
	if appErr != nil {
		return appErr
	}

	migrationRunner, err := migrate.New(sourceURL, g.databaseURL)
	if err != nil {
		return apperrors.NewInternal(
			"DB_MIGRATION_SETUP_FAILED",
			"failed to initialize migration runner",
			map[string]any{
				"database_target": g.databaseTarget,
				"migrations_path": g.migrationsPath,
			},
		)
	}

	defer func() {
		sourceErr, dbErr := migrationRunner.Close()
		if sourceErr != nil {
			g.logf("migration source close warning path=%s error=%v", g.migrationsPath, sourceErr)
		}
		if dbErr != nil {
			g.logf("migration db close warning target=%s error=%v", g.databaseTarget, dbErr)
		}
	}()

	err = migrationRunner.Up()
	if err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		g.logf("database migrations failed target=%s error=%v", g.databaseTarget, err)
		return apperrors.NewInternal(
			"DB_MIGRATION_APPLY_FAILED",
			"failed to apply migrations",
			map[string]any{
				"database_target": g.databaseTarget,
				"migrations_path": g.migrationsPath,
			},
		)
	}

	if stderrors.Is(err, migrate.ErrNoChange) {
		g.logf("database migrations up to date target=%s", g.databaseTarget)
	} else {
		g.logf("database migrations applied target=%s", g.databaseTarget)
	}

	return nil
}

// ValidateJournalIntegrity refuses to start on attempts that the
// orchestrator or the reconciler could not resume safely.
func (g *Gateway) ValidateJournalIntegrity(ctx context.Context) *apperrors.AppError {
	const query = `
SELECT
  id,
  phase,
  COALESCE(create_key, ''),
  COALESCE(signature, ''),
  failure IS NOT NULL,
  COALESCE(failure->>'category', ''),
  COALESCE(failure->>'phase', '')
FROM app.registration_attempts
WHERE phase NOT IN ('idle', 'complete')
ORDER BY updated_at ASC, id ASC
`

	db, err := sql.Open("pgx", g.databaseURL)
	if err != nil {
		return apperrors.NewInternal(
			"DB_CONNECT_INIT_FAILED",
			"failed to initialize database connection",
			map[string]any{"database_target": g.databaseTarget},
		)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return apperrors.NewInternal(
			"registration_journal_query_failed",
			"failed to read registration journal",
			map[string]any{"error": err.Error()},
		)
	}
	defer rows.Close()

	checked := 0
	violations := make([]string, 0)
	for rows.Next() {
		var row journalRow
		if err := rows.Scan(
			&row.ID,
			&row.Phase,
			&row.CreateKey,
			&row.Signature,
			&row.HasFailure,
			&row.FailureCategory,
			&row.FailurePhase,
		); err != nil {
			return apperrors.NewInternal(
				"registration_journal_query_failed",
				"failed to parse registration journal row",
				map[string]any{"error": err.Error()},
			)
		}

		checked++
		for _, reason := range validateJournalRow(row) {
			if len(violations) < maxReportedViolations {
				violations = append(violations, row.ID+":"+reason)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewInternal(
			"registration_journal_query_failed",
			"failed while iterating registration journal",
			map[string]any{"error": err.Error()},
		)
	}

	if len(violations) > 0 {
		g.logf("registration journal validation failed checked=%d violations=%s", checked, strings.Join(violations, ","))
		return apperrors.NewInternal(
			"registration_journal_integrity_failed",
			"registration journal holds attempts that cannot be resumed",
			map[string]any{"checked": checked, "violations": violations},
		)
	}

	g.logf("registration journal validation passed checked=%d", checked)
	return nil
}

type journalRow struct {
	ID              string
	Phase           string
	CreateKey       string
	Signature       string
	HasFailure      bool
	FailureCategory string
	FailurePhase    string
}

func validateJournalRow(row journalRow) []string {
	phase, appErr := valueobjects.ParseRegistrationPhase(row.Phase)
	if appErr != nil {
		return []string{"phase_invalid"}
	}

	reasons := make([]string, 0)
	switch phase {
	case valueobjects.RegistrationPhaseAwaitingSignature, valueobjects.RegistrationPhaseSubmitting:
		if row.CreateKey == "" {
			reasons = append(reasons, "create_key_missing")
		}
	case valueobjects.RegistrationPhaseConfirming, valueobjects.RegistrationPhaseFinalizing:
		if row.CreateKey == "" {
			reasons = append(reasons, "create_key_missing")
		}
		if row.Signature == "" {
			reasons = append(reasons, "signature_missing")
		}
	case valueobjects.RegistrationPhaseFailed:
		if !row.HasFailure {
			return append(reasons, "failure_missing")
		}
		if _, appErr := valueobjects.ParseErrorCategory(row.FailureCategory); appErr != nil {
			reasons = append(reasons, "failure_category_invalid")
		}
		failedPhase, appErr := valueobjects.ParseRegistrationPhase(row.FailurePhase)
		if appErr != nil || !failedPhase.IsInFlight() {
			reasons = append(reasons, "failure_phase_invalid")
		}
		if failedPhase == valueobjects.RegistrationPhaseFinalizing && row.Signature == "" {
			reasons = append(reasons, "signature_missing")
		}
	}
	if phase != valueobjects.RegistrationPhaseFailed && row.HasFailure {
		reasons = append(reasons, "failure_unexpected")
	}

	return reasons
}

func migrationSourceURL(migrationsPath string) (string, *apperrors.AppError) {
	if strings.TrimSpace(migrationsPath) == "" {
		return "", apperrors.NewInternal(
			"DB_MIGRATION_PATH_RESOLVE_FAILED",
			"failed to resolve migration path",
			map[string]any{"migrations_path": migrationsPath},
		)
	}

	migrationsAbsPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return "", apperrors.NewInternal(
			"DB_MIGRATION_PATH_RESOLVE_FAILED",
			"failed to resolve migration path",
			map[string]any{"migrations_path": migrationsPath},
		)
	}

	return "file://" + filepath.ToSlash(migrationsAbsPath), nil
}

func (g *Gateway) logf(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}

//go:build !integration

package use_cases

import (
	"context"
	"testing"
	"time"

	"chainorg/internal/application/dto"
	apperrors "chainorg/internal/shared_kernel/errors"
)

func TestInitializePersistenceUseCaseExecuteSuccess(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})

	if appErr != nil {
		t.Fatalf("expected no error, got %v", appErr)
	}

	if fakeGateway.readinessChecks != 1 {
		t.Fatalf("expected one readiness check, got %d", fakeGateway.readinessChecks)
	}

	if fakeGateway.migrationRuns != 1 {
		t.Fatalf("expected one migration run, got %d", fakeGateway.migrationRuns)
	}

	if fakeGateway.integrityChecks != 1 {
		t.Fatalf("expected one journal integrity check, got %d", fakeGateway.integrityChecks)
	}
}

func TestInitializePersistenceUseCaseExecuteRetryThenSuccess(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		readinessErrors: []*apperrors.AppError{
			apperrors.NewInternal("DB_CONNECT_FAILED", "failed", nil),
			nil,
		},
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       100 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})

	if appErr != nil {
		t.Fatalf("expected no error, got %v", appErr)
	}

	if fakeGateway.readinessChecks < 2 {
		t.Fatalf("expected at least two readiness checks, got %d", fakeGateway.readinessChecks)
	}
}

func TestInitializePersistenceUseCaseExecuteReadinessTimeout(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		readinessErrors: []*apperrors.AppError{
			apperrors.NewInternal("DB_CONNECT_FAILED", "failed", nil),
		},
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       30 * time.Millisecond,
		ReadinessRetryInterval: 10 * time.Millisecond,
	})

	if appErr == nil {
		t.Fatalf("expected timeout error")
	}

	if appErr.Code != "DB_READINESS_TIMEOUT" {
		t.Fatalf("expected DB_READINESS_TIMEOUT, got %s", appErr.Code)
	}

	if fakeGateway.migrationRuns != 0 {
		t.Fatalf("expected migrations not to run on timeout, got %d", fakeGateway.migrationRuns)
	}
}

func TestInitializePersistenceUseCaseExecuteMigrationFailure(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		runMigrationErr: apperrors.NewInternal("DB_MIGRATION_APPLY_FAILED", "failed", nil),
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})

	if appErr == nil {
		t.Fatalf("expected migration error")
	}

	if appErr.Code != "DB_MIGRATION_APPLY_FAILED" {
		t.Fatalf("expected DB_MIGRATION_APPLY_FAILED, got %s", appErr.Code)
	}

	if fakeGateway.readinessChecks != 1 {
		t.Fatalf("expected migrations to run after one readiness check, got %d", fakeGateway.readinessChecks)
	}
}

func TestInitializePersistenceUseCaseExecuteJournalIntegrityFailure(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		integrityErr: apperrors.NewInternal("registration_journal_integrity_failed", "failed", nil),
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})
	if appErr == nil || appErr.Code != "registration_journal_integrity_failed" {
		t.Fatalf("expected registration_journal_integrity_failed, got %+v", appErr)
	}
}

func TestInitializePersistenceUseCaseExecuteMigrationFailureSkipsIntegrity(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		runMigrationErr: apperrors.NewInternal("DB_MIGRATION_APPLY_FAILED", "failed", nil),
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	_ = useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})
	if fakeGateway.integrityChecks != 0 {
		t.Fatalf("expected integrity check to be skipped, got %d", fakeGateway.integrityChecks)
	}
}

func TestInitializePersistenceUseCaseExecuteMissingGateway(t *testing.T) {
	useCase := NewInitializePersistenceUseCase(nil)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})
	if appErr == nil || appErr.Code != "persistence_gateway_missing" {
		t.Fatalf("expected persistence_gateway_missing, got %+v", appErr)
	}
}

func TestInitializePersistenceUseCaseExecuteInvalidCommand(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{})
	if appErr == nil {
		t.Fatalf("expected validation error")
	}

	if appErr.Type != apperrors.TypeValidation {
		t.Fatalf("expected validation error type, got %s", appErr.Type)
	}
}

func TestInitializePersistenceUseCaseSkipsMigrations(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{}
	useCase := NewInitializePersistenceUseCase(fakeGateway)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
		SkipMigrations:         true,
	})
	if appErr != nil {
		t.Fatalf("expected no error, got %v", appErr)
	}
	if fakeGateway.migrationRuns != 0 {
		t.Fatalf("expected migrations to be skipped, got %d runs", fakeGateway.migrationRuns)
	}
	if fakeGateway.integrityChecks != 1 {
		t.Fatalf("expected journal integrity check, got %d", fakeGateway.integrityChecks)
	}
}

type fakePersistenceGateway struct {
	readinessErrors []*apperrors.AppError
	runMigrationErr *apperrors.AppError
	integrityErr    *apperrors.AppError
	readinessChecks int
	migrationRuns   int
	integrityChecks int
}

func (f *fakePersistenceGateway) CheckReadiness(_ context.Context) *apperrors.AppError {
	f.readinessChecks++

	if len(f.readinessErrors) == 0 {
		return nil
	}

	index := f.readinessChecks - 1
	if index >= len(f.readinessErrors) {
		return f.readinessErrors[len(f.readinessErrors)-1]
	}

	return f.readinessErrors[index]
}

func (f *fakePersistenceGateway) RunMigrations(_ context.Context) *apperrors.AppError {
	f.migrationRuns++
	return f.runMigrationErr
}

func (f *fakePersistenceGateway) ValidateJournalIntegrity(_ context.Context) *apperrors.AppError {
	f.integrityChecks++
	return f.integrityErr
}

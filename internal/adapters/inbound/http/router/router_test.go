//go:build !integration

package router

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chainorg/internal/adapters/inbound/http/controllers"
	"chainorg/internal/adapters/outbound/docs"
	"chainorg/internal/application/dto"
	"chainorg/internal/application/use_cases"
	"chainorg/internal/infrastructure/metrics"
	apperrors "chainorg/internal/shared_kernel/errors"
)

func TestRouterHealthAndSwaggerRoutes(t *testing.T) {
	openAPISpecPath := writeTempOpenAPISpec(t)
	mux := newTestRouter(openAPISpecPath)

	t.Run("healthz returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Fatalf("expected body to contain status ok, got %s", rec.Body.String())
		}
	})

	t.Run("swagger root redirects to index", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/swagger", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusTemporaryRedirect {
			t.Fatalf("expected status %d, got %d", http.StatusTemporaryRedirect, rec.Code)
		}

		location := rec.Header().Get("Location")
		if location != "/swagger/index.html" {
			t.Fatalf("expected redirect location /swagger/index.html, got %q", location)
		}
	})

	t.Run("openapi spec is served with version 3.0.3", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/swagger/openapi.yaml", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		if !strings.Contains(rec.Body.String(), "openapi: 3.0.3") {
			t.Fatalf("expected openapi version 3.0.3 in body, got %s", rec.Body.String())
		}
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "go_goroutines") {
			t.Fatalf("expected go collector series in body")
		}
	})
}

func TestRouterRegistrationRoutes(t *testing.T) {
	mux := newTestRouter(writeTempOpenAPISpec(t))

	t.Run("register returns 201", func(t *testing.T) {
		body := bytes.NewBufferString(`{"organization":{"name":"Acme"}}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/organizations/registrations", body)
		req.Header.Set("X-Principal-ID", "caller-1")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d body=%s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Location") != "/v1/organizations/registrations/attempt-1" {
			t.Fatalf("unexpected Location header %q", rec.Header().Get("Location"))
		}
	})

	t.Run("get attempt passes path id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/organizations/registrations/attempt-9", nil)
		req.Header.Set("X-Principal-ID", "caller-1")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"attempt-9"`) {
			t.Fatalf("expected attempt-9, got %d body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("finalize maps upstream failure to 502", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/organizations/registrations/attempt-9/finalize", nil)
		req.Header.Set("X-Principal-ID", "caller-1")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected status 502, got %d body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("routing addresses route returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/multisigs/msig-1/routing-addresses?vault_index=2&asset=USDC,USDT", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"vault_index":2`) || !strings.Contains(rec.Body.String(), `"multisig_address":"msig-1"`) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}

func TestRouterHealthzRejectsNonGET(t *testing.T) {
	openAPISpecPath := writeTempOpenAPISpec(t)
	mux := newTestRouter(openAPISpecPath)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatalf("expected non-200 status for POST /healthz, got %d", rec.Code)
	}
}

func newTestRouter(openAPISpecPath string) *http.ServeMux {
	logger := log.New(io.Discard, "", 0)

	healthUseCase := use_cases.NewGetHealthUseCase(use_cases.HealthDependencies{})
	openAPIReadModel := docs.NewFileOpenAPISpecReadModel(openAPISpecPath)
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(openAPIReadModel)

	return New(Dependencies{
		HealthController:  controllers.NewHealthController(healthUseCase, logger),
		SwaggerController: controllers.NewSwaggerController(openAPIUseCase, logger),
		AssetsController:  controllers.NewAssetsController(stubListAssetsUseCase{}, logger),
		RegistrationsController: controllers.NewRegistrationsController(
			stubRegisterUseCase{},
			stubFinalizeUseCase{},
			stubGetAttemptUseCase{},
			logger,
		),
		RoutingAddressesController: controllers.NewRoutingAddressesController(stubRoutingUseCase{}, logger),
		MetricsHandler:             metrics.NewRegistrationMetrics().Handler(),
	})
}

func writeTempOpenAPISpec(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.yaml")

	content := []byte("openapi: 3.0.3\ninfo:\n  title: test\n  version: 1.0.0\npaths:\n  /healthz:\n    get:\n      responses:\n        '200':\n          description: ok\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp openapi file: %v", err)
	}

	return path
}

type stubListAssetsUseCase struct{}

func (stubListAssetsUseCase) Execute(_ context.Context, _ dto.ListAssetsQuery) (dto.ListAssetsOutput, *apperrors.AppError) {
	return dto.ListAssetsOutput{Network: "mainnet-beta", Assets: []dto.AssetResource{}}, nil
}

type stubRegisterUseCase struct{}

func (stubRegisterUseCase) Execute(
	_ context.Context,
	command dto.RegisterOrganizationCommand,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	return dto.RegisterOrganizationOutput{
		Attempt: dto.RegistrationAttemptResource{ID: "attempt-1", CallerID: command.CallerID, Phase: "complete"},
	}, nil
}

type stubFinalizeUseCase struct{}

func (stubFinalizeUseCase) Execute(
	_ context.Context,
	command dto.FinalizeRegistrationCommand,
) (dto.RegisterOrganizationOutput, *apperrors.AppError) {
	return dto.RegisterOrganizationOutput{}, apperrors.NewUpstream(
		"organization_finalize_failed",
		"finalize failed",
		map[string]any{"attempt_id": command.AttemptID},
	)
}

type stubGetAttemptUseCase struct{}

func (stubGetAttemptUseCase) Execute(
	_ context.Context,
	query dto.GetRegistrationAttemptQuery,
) (dto.RegistrationAttemptResource, *apperrors.AppError) {
	return dto.RegistrationAttemptResource{ID: query.AttemptID, CallerID: query.CallerID, Phase: "confirming"}, nil
}

type stubRoutingUseCase struct{}

func (stubRoutingUseCase) Execute(
	_ context.Context,
	query dto.DeriveRoutingAddressesQuery,
) (dto.DeriveRoutingAddressesOutput, *apperrors.AppError) {
	return dto.DeriveRoutingAddressesOutput{
		Network:         "mainnet-beta",
		MultisigAddress: query.MultisigAddress,
		VaultIndex:      query.VaultIndex,
	}, nil
}

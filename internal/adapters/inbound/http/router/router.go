package router

import (
	"net/http"

	"chainorg/internal/adapters/inbound/http/controllers"
)

type Dependencies struct {
	HealthController           *controllers.HealthController
	SwaggerController          *controllers.SwaggerController
	AssetsController           *controllers.AssetsController
	RegistrationsController    *controllers.RegistrationsController
	RoutingAddressesController *controllers.RoutingAddressesController
	MetricsHandler             http.Handler
}

func New(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)
	mux.HandleFunc("GET /v1/assets", deps.AssetsController.ListAssets)
	mux.HandleFunc("POST /v1/organizations/registrations", deps.RegistrationsController.Register)
	mux.HandleFunc("GET /v1/organizations/registrations/{id}", deps.RegistrationsController.GetAttempt)
	mux.HandleFunc("POST /v1/organizations/registrations/{id}/finalize", deps.RegistrationsController.Finalize)
	mux.HandleFunc("GET /v1/multisigs/{address}/routing-addresses", deps.RoutingAddressesController.DeriveRoutingAddresses)
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	return mux
}

package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	apperrors "chainorg/internal/shared_kernel/errors"
)

const headerPrincipalID = "X-Principal-ID"

type RegistrationsController struct {
	registerUseCase portsin.RegisterOrganizationUseCase
	finalizeUseCase portsin.FinalizeRegistrationUseCase
	getUseCase      portsin.GetRegistrationAttemptUseCase
	logger          *log.Logger
}

type registerOrganizationPayload struct {
	CreateKey     string         `json:"create_key,omitempty"`
	WalletAddress string         `json:"wallet_address,omitempty"`
	Organization  map[string]any `json:"organization"`
}

func NewRegistrationsController(
	registerUseCase portsin.RegisterOrganizationUseCase,
	finalizeUseCase portsin.FinalizeRegistrationUseCase,
	getUseCase portsin.GetRegistrationAttemptUseCase,
	logger *log.Logger,
) *RegistrationsController {
	return &RegistrationsController{
		registerUseCase: registerUseCase,
		finalizeUseCase: finalizeUseCase,
		getUseCase:      getUseCase,
		logger:          logger,
	}
}

func (c *RegistrationsController) Register(w http.ResponseWriter, r *http.Request) {
	payload, appErr := parseRegisterOrganizationPayload(r.Body)
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	output, appErr := c.registerUseCase.Execute(r.Context(), dto.RegisterOrganizationCommand{
		CallerID:              strings.TrimSpace(r.Header.Get(headerPrincipalID)),
		RequestedCreateKey:    payload.CreateKey,
		ExpectedWalletAddress: payload.WalletAddress,
		Organization:          payload.Organization,
	})
	if appErr != nil {
		c.logger.Printf(
			"request error path=/v1/organizations/registrations method=%s code=%s attempt_id=%s message=%s",
			r.Method,
			appErr.Code,
			appErr.DetailString("attempt_id"),
			appErr.Message,
		)
		writeAppError(w, appErr)
		return
	}

	w.Header().Set("Location", "/v1/organizations/registrations/"+output.Attempt.ID)
	writeJSON(w, http.StatusCreated, output)
}

func (c *RegistrationsController) Finalize(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.finalizeUseCase.Execute(r.Context(), dto.FinalizeRegistrationCommand{
		CallerID:  strings.TrimSpace(r.Header.Get(headerPrincipalID)),
		AttemptID: r.PathValue("id"),
	})
	if appErr != nil {
		c.logger.Printf(
			"request error path=/v1/organizations/registrations/{id}/finalize method=%s code=%s attempt_id=%s message=%s",
			r.Method,
			appErr.Code,
			r.PathValue("id"),
			appErr.Message,
		)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (c *RegistrationsController) GetAttempt(w http.ResponseWriter, r *http.Request) {
	resource, appErr := c.getUseCase.Execute(r.Context(), dto.GetRegistrationAttemptQuery{
		CallerID:  strings.TrimSpace(r.Header.Get(headerPrincipalID)),
		AttemptID: r.PathValue("id"),
	})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/organizations/registrations/{id} method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

func parseRegisterOrganizationPayload(body io.Reader) (registerOrganizationPayload, *apperrors.AppError) {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()

	payload := registerOrganizationPayload{}
	if err := decoder.Decode(&payload); err != nil {
		return registerOrganizationPayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must be valid JSON",
			map[string]any{"error": err.Error()},
		)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return registerOrganizationPayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must contain a single JSON object",
			nil,
		)
	}

	if len(payload.Organization) == 0 {
		return registerOrganizationPayload{}, apperrors.NewValidation(
			"invalid_request",
			"organization is required",
			map[string]any{"field": "organization"},
		)
	}

	return payload, nil
}

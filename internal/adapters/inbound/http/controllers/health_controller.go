package controllers

import (
	"log"
	"net/http"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	valueobjects "chainorg/internal/domain/value_objects"
)

type HealthController struct {
	useCase portsin.GetHealthUseCase
	logger  *log.Logger
}

func NewHealthController(useCase portsin.GetHealthUseCase, logger *log.Logger) *HealthController {
	return &HealthController{
		useCase: useCase,
		logger:  logger,
	}
}

// GetHealth answers 200 while the process is serving; dependency state is
// reported in the body and does not change the status code.
func (c *HealthController) GetHealth(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCase.Execute(r.Context(), dto.GetHealthCommand{})
	if appErr != nil {
		c.logger.Printf("request error path=/healthz method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}
	if output.Status != valueobjects.HealthStatusOK.String() {
		c.logger.Printf("health degraded checks=%v", output.Checks)
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, output)
}

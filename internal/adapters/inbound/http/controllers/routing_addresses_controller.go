package controllers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"chainorg/internal/application/dto"
	portsin "chainorg/internal/application/ports/in"
	apperrors "chainorg/internal/shared_kernel/errors"
)

type RoutingAddressesController struct {
	useCase portsin.DeriveRoutingAddressesUseCase
	logger  *log.Logger
}

func NewRoutingAddressesController(useCase portsin.DeriveRoutingAddressesUseCase, logger *log.Logger) *RoutingAddressesController {
	return &RoutingAddressesController{useCase: useCase, logger: logger}
}

// DeriveRoutingAddresses accepts repeated or comma separated asset query
// parameters; no assets means every supported asset.
func (c *RoutingAddressesController) DeriveRoutingAddresses(w http.ResponseWriter, r *http.Request) {
	vaultIndex, appErr := parseVaultIndex(r.URL.Query().Get("vault_index"))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	assets := make([]string, 0)
	for _, raw := range r.URL.Query()["asset"] {
		for _, asset := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(asset); trimmed != "" {
				assets = append(assets, trimmed)
			}
		}
	}

	output, appErr := c.useCase.Execute(r.Context(), dto.DeriveRoutingAddressesQuery{
		MultisigAddress: r.PathValue("address"),
		VaultIndex:      vaultIndex,
		Assets:          assets,
	})
	if appErr != nil {
		c.logger.Printf("request error path=/v1/multisigs/{address}/routing-addresses method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func parseVaultIndex(raw string) (uint32, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}

	value, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, apperrors.NewValidation(
			"invalid_vault_index",
			"vault_index must be a non-negative integer",
			map[string]any{"vault_index": raw},
		)
	}
	return uint32(value), nil
}

package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"chainorg/internal/application/dto"
	portsout "chainorg/internal/application/ports/out"
	apperrors "chainorg/internal/shared_kernel/errors"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxResponseBytes   = 1 << 20
	maxErrorBodyBytes  = 1024

	preparePath  = "/v1/organizations/prepare"
	finalizePath = "/v1/organizations/finalize"
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Gateway calls the onboarding service that prepares the multisig creation
// transaction and records the organization once it is confirmed.
type Gateway struct {
	baseURL string
	token   string
	client  *nethttp.Client
}

var (
	_ portsout.RegistrationPreparationGateway  = (*Gateway)(nil)
	_ portsout.RegistrationFinalizationGateway = (*Gateway)(nil)
)

func NewGateway(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &Gateway{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:   strings.TrimSpace(cfg.Token),
		client: &nethttp.Client{
			Timeout: timeout,
		},
	}
}

type prepareRequest struct {
	CreateKey      string         `json:"createKey,omitempty"`
	CreatorAddress string         `json:"creatorAddress,omitempty"`
	Organization   map[string]any `json:"organization"`
}

type prepareResponse struct {
	OrganizationData map[string]any `json:"organizationData"`
	MultisigData     struct {
		SerializedTransaction string `json:"serializedTransaction"`
		MultisigAddress       string `json:"multisigAddress"`
		CreateKey             string `json:"createKey"`
		Blockhash             string `json:"blockhash"`
		LastValidBlockHeight  uint64 `json:"lastValidBlockHeight"`
	} `json:"multisigData"`
}

type finalizeRequest struct {
	OrganizationData map[string]any `json:"organizationData"`
	Signature        string         `json:"signature"`
	MultisigAddress  string         `json:"multisigAddress"`
	CreateKey        string         `json:"createKey"`
}

type organizationResponse struct {
	ID              string     `json:"id"`
	CreateKey       string     `json:"createKey"`
	MultisigAddress string     `json:"multisigAddress"`
	Signature       string     `json:"signature"`
	CreatedAt       *time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gateway) Prepare(
	ctx context.Context,
	input dto.PrepareRegistrationInput,
) (dto.PrepareRegistrationOutput, *apperrors.AppError) {
	var response prepareResponse
	if _, appErr := g.post(ctx, "prepare", preparePath, prepareRequest{
		CreateKey:      input.RequestedCreateKey,
		CreatorAddress: input.CreatorAddress,
		Organization:   input.Organization,
	}, &response); appErr != nil {
		return dto.PrepareRegistrationOutput{}, appErr
	}

	transaction, err := base64.StdEncoding.DecodeString(response.MultisigData.SerializedTransaction)
	if err != nil || len(transaction) == 0 {
		return dto.PrepareRegistrationOutput{}, apperrors.NewUpstream(
			"onboarding_prepare_invalid_response",
			"onboarding prepare response has no decodable transaction",
			nil,
		)
	}

	return dto.PrepareRegistrationOutput{
		OrganizationData:      response.OrganizationData,
		SerializedTransaction: transaction,
		MultisigAddress:       response.MultisigData.MultisigAddress,
		CreateKey:             response.MultisigData.CreateKey,
		Blockhash:             response.MultisigData.Blockhash,
		LastValidBlockHeight:  response.MultisigData.LastValidBlockHeight,
	}, nil
}

func (g *Gateway) Finalize(
	ctx context.Context,
	input dto.FinalizeRegistrationInput,
) (dto.OrganizationResource, *apperrors.AppError) {
	var response organizationResponse
	raw, appErr := g.post(ctx, "finalize", finalizePath, finalizeRequest{
		OrganizationData: input.OrganizationData,
		Signature:        input.Signature,
		MultisigAddress:  input.MultisigAddress,
		CreateKey:        input.CreateKey,
	}, &response)
	if appErr != nil {
		return dto.OrganizationResource{}, appErr
	}
	if strings.TrimSpace(response.ID) == "" {
		return dto.OrganizationResource{}, apperrors.NewUpstream(
			"onboarding_finalize_invalid_response",
			"onboarding finalize response has no organization id",
			nil,
		)
	}

	data := map[string]any{}
	_ = json.Unmarshal(raw, &data)

	return dto.OrganizationResource{
		ID:              response.ID,
		CreateKey:       response.CreateKey,
		MultisigAddress: response.MultisigAddress,
		Signature:       response.Signature,
		Data:            data,
		CreatedAt:       response.CreatedAt,
	}, nil
}

func (g *Gateway) post(
	ctx context.Context,
	operation string,
	path string,
	payload any,
	out any,
) ([]byte, *apperrors.AppError) {
	if g == nil || g.client == nil || g.baseURL == "" {
		return nil, apperrors.NewInternal(
			"onboarding_gateway_not_configured",
			"onboarding gateway is not configured",
			nil,
		)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternal(
			"onboarding_request_encode_failed",
			"failed to encode onboarding request",
			map[string]any{"operation": operation, "error": err.Error()},
		)
	}

	request, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternal(
			"onboarding_request_build_failed",
			"failed to build onboarding request",
			map[string]any{"operation": operation, "error": err.Error()},
		)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if g.token != "" {
		request.Header.Set("Authorization", "Bearer "+g.token)
	}

	response, err := g.client.Do(request)
	if err != nil {
		return nil, apperrors.NewUpstream(
			"onboarding_unavailable",
			"onboarding "+operation+" request could not be sent",
			map[string]any{"operation": operation, "upstream_message": err.Error()},
		)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, upstreamError(operation, response)
	}

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewUpstream(
			"onboarding_response_read_failed",
			"failed to read onboarding "+operation+" response",
			map[string]any{"operation": operation, "upstream_message": err.Error()},
		)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, apperrors.NewUpstream(
			"onboarding_"+operation+"_invalid_response",
			"onboarding "+operation+" response is not valid json",
			map[string]any{"operation": operation},
		)
	}
	return raw, nil
}

func upstreamError(operation string, response *nethttp.Response) *apperrors.AppError {
	raw, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))

	var decoded errorResponse
	code := "onboarding_" + operation + "_failed"
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Code != "" {
		code = decoded.Error.Code
		message = decoded.Error.Message
	}

	return apperrors.NewUpstream(
		code,
		"onboarding "+operation+" request failed",
		map[string]any{
			"operation":        operation,
			"status_code":      response.StatusCode,
			"upstream_code":    decoded.Error.Code,
			"upstream_message": message,
		},
	)
}

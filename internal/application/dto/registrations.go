package dto

import "time"

type RegisterOrganizationCommand struct {
	CallerID              string
	RequestedCreateKey    string
	ExpectedWalletAddress string
	Organization          map[string]any
}

type RegisterOrganizationOutput struct {
	Attempt      RegistrationAttemptResource `json:"attempt"`
	Organization *OrganizationResource       `json:"organization,omitempty"`
}

type FinalizeRegistrationCommand struct {
	CallerID  string
	AttemptID string
}

type GetRegistrationAttemptQuery struct {
	CallerID  string
	AttemptID string
}

type RegistrationAttemptResource struct {
	ID                   string                       `json:"id"`
	CallerID             string                       `json:"caller_id"`
	CreateKey            string                       `json:"create_key,omitempty"`
	Phase                string                       `json:"phase"`
	MultisigAddress      string                       `json:"multisig_address,omitempty"`
	SignerAddress        string                       `json:"signer_address,omitempty"`
	Signature            string                       `json:"signature,omitempty"`
	LastValidBlockHeight uint64                       `json:"last_valid_block_height,omitempty"`
	OrganizationID       string                       `json:"organization_id,omitempty"`
	RetryMode            string                       `json:"retry_mode"`
	Failure              *RegistrationFailureResource `json:"failure,omitempty"`
	CreatedAt            time.Time                    `json:"created_at"`
	UpdatedAt            time.Time                    `json:"updated_at"`
}

type RegistrationFailureResource struct {
	Category       string `json:"category"`
	Code           string `json:"code"`
	Phase          string `json:"phase"`
	Message        string `json:"message"`
	Retryable      bool   `json:"retryable"`
	WalletMismatch bool   `json:"wallet_mismatch"`
}

type OrganizationResource struct {
	ID              string         `json:"id"`
	CreateKey       string         `json:"create_key"`
	MultisigAddress string         `json:"multisig_address"`
	Signature       string         `json:"signature,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
}

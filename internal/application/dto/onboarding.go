package dto

type PrepareRegistrationInput struct {
	RequestedCreateKey string
	CreatorAddress     string
	Organization       map[string]any
}

type PrepareRegistrationOutput struct {
	OrganizationData      map[string]any
	SerializedTransaction []byte
	MultisigAddress       string
	CreateKey             string
	Blockhash             string
	LastValidBlockHeight  uint64
}

type FinalizeRegistrationInput struct {
	OrganizationData map[string]any
	Signature        string
	MultisigAddress  string
	CreateKey        string
}

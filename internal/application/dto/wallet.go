package dto

type WalletSignerStatus struct {
	Ready        bool
	Reason       string
	EligibleKeys []string
}

type SignTransactionInput struct {
	SignerAddress string
	Transaction   []byte
}

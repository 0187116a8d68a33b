package dto

import "time"

// TransactionStatus is the ledger's view of a submitted transaction at the
// requested commitment.
type TransactionStatus struct {
	Found          bool
	Confirmed      bool
	Commitment     string
	Slot           uint64
	ExecutionError string
}

type ConfirmTransactionCommand struct {
	Signature            string
	Commitment           string
	MaxRetries           int
	Timeout              time.Duration
	LastValidBlockHeight uint64
}

type ConfirmTransactionOutput struct {
	Signature      string
	Outcome        string
	Polls          int
	Elapsed        time.Duration
	Commitment     string
	ExecutionError string
}

package entities

import "time"

// Organization is the durable record created by the external finalize step.
// CreateKey is its idempotency key: one organization per create key.
type Organization struct {
	ID              string
	CreateKey       string
	MultisigAddress string
	Signature       string
	Data            map[string]any
	CreatedAt       time.Time
}

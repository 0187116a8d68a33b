package dto

import "time"

type InitializePersistenceCommand struct {
	ReadinessTimeout       time.Duration
	ReadinessRetryInterval time.Duration
	// SkipMigrations leaves schema changes to the API server and only checks
	// that the registration journal is usable.
	SkipMigrations bool
}

package dto

import "time"

type ReconcileRegistrationsCommand struct {
	Now           time.Time
	BatchSize     int
	WorkerID      string
	LeaseDuration time.Duration
	MinAge        time.Duration
}

type ReconcileRegistrationsOutput struct {
	Claimed   int
	Finalized int
	Failed    int
	Skipped   int
	Errors    int
}

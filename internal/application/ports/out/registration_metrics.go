package out

import "time"

type RegistrationMetrics interface {
	ObservePhase(phase string)
	ObserveOutcome(outcome string, category string)
	ObserveConfirmation(outcome string, polls int, elapsed time.Duration)
}

type NoopRegistrationMetrics struct{}

func (NoopRegistrationMetrics) ObservePhase(string)                            {}
func (NoopRegistrationMetrics) ObserveOutcome(string, string)                  {}
func (NoopRegistrationMetrics) ObserveConfirmation(string, int, time.Duration) {}

package valueobjects

type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthStatusFromChecks is ok only when every dependency check passed.
func HealthStatusFromChecks(passed ...bool) HealthStatus {
	for _, ok := range passed {
		if !ok {
			return HealthStatusDegraded
		}
	}
	return HealthStatusOK
}

func (h HealthStatus) String() string {
	return string(h)
}

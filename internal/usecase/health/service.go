package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates a required component is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Check is one named dependency probe.
type Check struct {
	Name     string
	Required bool
	Probe    func(ctx context.Context) error
}

// Store probes a required store.
func Store(p Pinger) Check {
	return Check{Name: "database", Required: true, Probe: p.Ping}
}

// Embedding probes an optional embedding provider.
func Embedding(e EmbeddingChecker) Check {
	return Check{Name: "embedding", Probe: e.HealthCheck}
}

// Service coordinates health checks.
type Service struct {
	checks []Check
}

// New creates a Service. With no checks it always reports Healthy.
func New(checks ...Check) *Service {
	return &Service{checks: checks}
}

// Check runs every probe.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	status := Healthy

	for _, c := range s.checks {
		if err := c.Probe(ctx); err != nil {
			checks[c.Name] = CheckError
			if c.Required {
				status = Unhealthy
			} else if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[c.Name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}

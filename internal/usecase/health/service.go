package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search keeps answering with
	// empty results.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckUnavailable marks a search backend that never became ready.
	CheckUnavailable CheckResult = "unavailable"
)

// Check names.
const (
	CheckSearch   = "search"
	CheckEntities = "entities"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend  Backend
	entities Pinger
}

// New creates a Service. entities can be nil.
func New(backend Backend, entities Pinger) *Service {
	return &Service{backend: backend, entities: entities}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	switch {
	case !s.backend.Available():
		checks[CheckSearch] = CheckUnavailable
	case s.backend.Ping(ctx) != nil:
		checks[CheckSearch] = CheckError
	default:
		checks[CheckSearch] = CheckOK
	}

	if s.entities != nil {
		if err := s.entities.Ping(ctx); err != nil {
			checks[CheckEntities] = CheckError
		} else {
			checks[CheckEntities] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

package health

import (
	"context"
	"sort"
	"time"
)

const checkTimeout = 2 * time.Second

// Check tests one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Report is the health payload.
type Report struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	checks map[string]Check
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]Check{}}
}

// Register adds a named dependency check.
func (s *Service) Register(name string, check Check) {
	if check != nil {
		s.checks[name] = check
	}
}

// Status runs every check and reports ok only when all pass.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true}
	if len(s.checks) == 0 {
		return report
	}
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report.Components = make(map[string]string, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Components[name] = "error: " + err.Error()
			continue
		}
		report.Components[name] = "ok"
	}
	return report
}

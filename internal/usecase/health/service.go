package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates a table that has not been migrated.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// DefaultTimeout bounds a whole Check.
const DefaultTimeout = 2 * time.Second

// Service pings the database and verifies that required tables exist.
type Service struct {
	db      DBPinger
	schema  SchemaChecker
	tables  []string
	timeout time.Duration
}

// New creates a Service. schema can be nil; tables are checked only when it
// is set.
func New(db DBPinger, schema SchemaChecker, tables ...string) *Service {
	return &Service{db: db, schema: schema, tables: tables, timeout: DefaultTimeout}
}

// WithTimeout returns a copy whose checks give up after d. A check that
// times out reports the component as failed.
func (s *Service) WithTimeout(d time.Duration) *Service {
	c := *s
	c.timeout = d
	return &c
}

// Check pings the database, then checks each table. A database failure
// skips the table checks and reports Unhealthy; a missing or unreadable
// table reports Degraded.
func (s *Service) Check(ctx context.Context) Report {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	checks := make(map[string]CheckResult, len(s.tables)+1)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	status := Healthy
	if s.schema != nil {
		for _, t := range s.tables {
			ok, err := s.schema.TableExists(ctx, t)
			switch {
			case err != nil:
				checks["table:"+t] = CheckError
				status = Degraded
			case !ok:
				checks["table:"+t] = CheckMissing
				status = Degraded
			default:
				checks["table:"+t] = CheckOK
			}
		}
	}

	return Report{Status: status, Checks: checks}
}

package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks geo index availability.
type IndexChecker interface {
	HealthCheck(ctx context.Context) error
}

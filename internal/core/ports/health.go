package ports

import "context"

// HealthChecker is implemented by every backing store the health endpoint probes.
type HealthChecker interface {
	// Ping returns nil when the dependency is reachable.
	Ping(ctx context.Context) error
	// Name is the key reported in the health payload, e.g. "postgresql".
	Name() string
}

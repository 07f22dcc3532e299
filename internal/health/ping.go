package health

import "context"

// Pinger is implemented by components that expose a liveness probe.
// HealthPing must return nil when the component is healthy.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

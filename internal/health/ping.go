package health

import "context"

// HealthPinger is the cheap connectivity probe a store driver may expose.
// The store health checker prefers it over issuing a real read; nil means
// the backing store answered.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

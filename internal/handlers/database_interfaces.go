package handlers

import (
	"context"
)

// HealthChecker reports whether the database answers
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

package constants

import "time"

// HTTP server timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database timeouts
const (
	DBConnectionTimeout   = 30 * time.Second
	DBQueryTimeout        = 15 * time.Second
	DBHealthCheckTimeout  = 5 * time.Second
	DBConnMaxLifetime     = 1 * time.Hour
	DBConnMaxIdleTime     = 30 * time.Minute
	DBMaintenanceInterval = 1 * time.Hour

	// MaintenanceTimeout bounds one maintenance pass.
	MaintenanceTimeout = 5 * time.Minute
)

const (
	// SessionTokenValidity is the fixed lifetime of an issued session token.
	SessionTokenValidity = 14 * 24 * time.Hour

	// NotificationTimeout bounds a single fire-and-forget email delivery.
	NotificationTimeout = 10 * time.Second

	// StorageTimeout bounds a single blob storage call made outside a request.
	StorageTimeout = 30 * time.Second

	// RateLimitCleanupInterval is how often idle rate limit buckets are evicted.
	RateLimitCleanupInterval = 10 * time.Minute

	// RateLimitIdleTTL is how long a bucket may sit unused before eviction.
	RateLimitIdleTTL = 30 * time.Minute
)

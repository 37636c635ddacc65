package ports

import (
	"context"
	"time"
)

// Logger is a tiny façade to avoid vendor lock-in.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Clock allows deterministic tests.
type Clock interface {
	Now() time.Time
}

// Entropy produces random bytes on demand. Read must fill p completely or
// return an error.
type Entropy interface {
	Read(p []byte) (int, error)
}

// IDGen generates unique IDs.
type IDGen interface {
	New() string
}

// Validator defines the interface for input validation.
type Validator interface {
	Validate(ctx context.Context, value any) error
	ValidateStruct(ctx context.Context, obj any) error
}

// Labels is a simple key:value map for metric dimensions.
type Labels map[string]string

// MetricsRecorder captures generation counters.
type MetricsRecorder interface {
	IncCounter(name string, labels Labels)
}

// HealthChecker defines the interface for individual health checks.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) HealthResult
}

// HealthResult represents the result of a health check.
type HealthResult struct {
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message,omitempty"`
	Details   any           `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// HealthStatus represents the status of a health check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// DetailedHealthResponse represents a detailed health response with individual checks.
type DetailedHealthResponse struct {
	Status    HealthStatus            `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Checks    map[string]HealthResult `json:"checks"`
	Summary   HealthSummary           `json:"summary"`
}

// HealthSummary provides a summary of all health checks.
type HealthSummary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Degraded  int `json:"degraded"`
	Unknown   int `json:"unknown"`
}

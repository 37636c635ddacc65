package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aatuh/ulid-toolkit/ports"
)

// Manager runs registered health checkers and aggregates their results.
type Manager struct {
	timeout  time.Duration
	checkers map[string]ports.HealthChecker
	mu       sync.RWMutex
}

// New creates a manager whose checks share a single timeout.
func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{
		timeout:  timeout,
		checkers: make(map[string]ports.HealthChecker),
	}
}

// RegisterChecker registers a single health checker.
func (m *Manager) RegisterChecker(checker ports.HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[checker.Name()] = checker
}

// RegisterCheckers registers multiple health checkers.
func (m *Manager) RegisterCheckers(checkers ...ports.HealthChecker) {
	for _, checker := range checkers {
		m.RegisterChecker(checker)
	}
}

// GetDetailedHealth runs every checker in name order.
func (m *Manager) GetDetailedHealth(ctx context.Context) ports.DetailedHealthResponse {
	m.mu.RLock()
	names := make([]string, 0, len(m.checkers))
	for name := range m.checkers {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	checks := make(map[string]ports.HealthResult, len(names))
	summary := ports.HealthSummary{Total: len(names)}
	for _, name := range names {
		result := m.performCheck(ctx, name)
		checks[name] = result

		switch result.Status {
		case ports.HealthStatusHealthy:
			summary.Healthy++
		case ports.HealthStatusUnhealthy:
			summary.Unhealthy++
		case ports.HealthStatusDegraded:
			summary.Degraded++
		default:
			summary.Unknown++
		}
	}

	var overall ports.HealthStatus
	switch {
	case summary.Unhealthy > 0:
		overall = ports.HealthStatusUnhealthy
	case summary.Degraded > 0:
		overall = ports.HealthStatusDegraded
	case summary.Healthy > 0:
		overall = ports.HealthStatusHealthy
	default:
		overall = ports.HealthStatusUnknown
	}

	return ports.DetailedHealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Checks:    checks,
		Summary:   summary,
	}
}

func (m *Manager) performCheck(ctx context.Context, name string) ports.HealthResult {
	m.mu.RLock()
	checker, exists := m.checkers[name]
	m.mu.RUnlock()

	if !exists {
		return ports.HealthResult{
			Status:    ports.HealthStatusUnknown,
			Message:   fmt.Sprintf("Checker '%s' not found", name),
			Timestamp: time.Now(),
		}
	}
	if err := ctx.Err(); err != nil {
		return ports.HealthResult{
			Status:    ports.HealthStatusUnknown,
			Message:   fmt.Sprintf("Check skipped: %v", err),
			Timestamp: time.Now(),
		}
	}

	start := time.Now()
	result := checker.Check(ctx)
	result.Duration = time.Since(start)
	result.Timestamp = time.Now()
	return result
}

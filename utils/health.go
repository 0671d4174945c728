package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthCheck pings one external dependency.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Dependencies map[string]bool `json:"dependencies"`
	CheckedAt    time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// RedisCheck adapts a redis client to a HealthCheck.
func RedisCheck(name string, client *redis.Client) HealthCheck {
	return HealthCheck{Name: name, Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// RunHealthChecks performs one round of checks and stores the snapshot.
func RunHealthChecks(ctx context.Context, checks []HealthCheck) HealthStatus {
	status := HealthStatus{Dependencies: make(map[string]bool, len(checks))}
	for _, hc := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status.Dependencies[hc.Name] = hc.Check(checkCtx) == nil
		cancel()
	}
	status.CheckedAt = time.Now()

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, checks []HealthCheck) {
	RunHealthChecks(ctx, checks)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				RunHealthChecks(ctx, checks)
			}
		}
	}()
}

package api

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ignite/speaker-registry/internal/pkg/httputil"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string                    `json:"status"` // "ok" or "unavailable"
	Storage string                    `json:"storage"`
	Checks  map[string]ComponentCheck `json:"checks,omitempty"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up" or "down"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker runs the registered dependency checks.
type HealthChecker struct {
	storage string
	mu      sync.RWMutex
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthChecker(storageType string) *HealthChecker {
	return &HealthChecker{
		storage: storageType,
		checks:  make(map[string]HealthCheck),
		timeout: 3 * time.Second,
	}
}

// Add registers check under name, replacing any previous one.
func (hc *HealthChecker) Add(name string, check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// HandleHealth reports 200 when every check passes and 503 otherwise.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := hc.Run(r.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	httputil.JSON(w, code, status)
}

// Run executes every check with a shared timeout.
func (hc *HealthChecker) Run(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(hc.checks))
	for k, v := range hc.checks {
		checks[k] = v
	}
	hc.mu.RUnlock()
	sort.Strings(names)

	status := HealthStatus{Status: "ok", Storage: hc.storage}
	if len(names) == 0 {
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	status.Checks = make(map[string]ComponentCheck, len(names))
	for _, name := range names {
		start := time.Now()
		err := checks[name](ctx)
		c := ComponentCheck{Status: "up", Latency: time.Since(start).Round(time.Microsecond).String()}
		if err != nil {
			logger.Warn("health check failed", "component", name, "error", err)
			c.Status = "down"
			c.Message = "unreachable"
			status.Status = "unavailable"
		}
		status.Checks[name] = c
	}
	return status
}

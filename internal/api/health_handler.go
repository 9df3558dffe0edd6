package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/cubo-visits/internal/pkg/httputil"
)

// Component and overall states reported by the health endpoints.
const (
	stateUp       = "up"
	stateDown     = "down"
	stateDegraded = "degraded"
	stateDisabled = "disabled"

	overallHealthy   = "healthy"
	overallDegraded  = "degraded"
	overallUnhealthy = "unhealthy"
)

const (
	storePingTimeout = 2 * time.Second
	slowPing         = 500 * time.Millisecond
	healthVersion    = "1.0.0"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string                    `json:"status"`
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck is the verdict for one dependency.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker reports on the session store and export archival.
type HealthChecker struct {
	store     Pinger
	archiving bool
	started   time.Time
}

// NewHealthChecker creates a new HealthChecker. A nil store means sessions
// live in process memory.
func NewHealthChecker(store Pinger, archiving bool) *HealthChecker {
	return &HealthChecker{store: store, archiving: archiving, started: time.Now()}
}

func (hc *HealthChecker) uptime() string {
	return time.Since(hc.started).Truncate(time.Second).String()
}

// HandleHealth always answers 200; the status field carries the verdict.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.checks(r.Context())
	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  hc.uptime(),
		Checks:  checks,
	})
}

// HandleLiveness answers 200 while the process runs.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "alive", "uptime": hc.uptime()})
}

// HandleReadiness answers 503 while the session store is unreachable.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.checks(r.Context())
	overall := determineOverallStatus(checks)

	code := http.StatusOK
	if overall == overallUnhealthy {
		code = http.StatusServiceUnavailable
	}
	httputil.JSON(w, code, map[string]any{
		"ready":  code == http.StatusOK,
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) checks(ctx context.Context) map[string]ComponentCheck {
	archive := ComponentCheck{Status: stateDisabled, Message: "no bucket configured"}
	if hc.archiving {
		archive = ComponentCheck{Status: stateUp, Message: "configured"}
	}
	return map[string]ComponentCheck{
		"session_store":  hc.pingStore(ctx),
		"export_archive": archive,
	}
}

func (hc *HealthChecker) pingStore(ctx context.Context) ComponentCheck {
	if hc.store == nil {
		return ComponentCheck{Status: stateUp, Message: "in-memory"}
	}

	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	start := time.Now()
	err := hc.store.Ping(ctx)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		return ComponentCheck{Status: stateDown, Latency: elapsed.String(), Message: fmt.Sprintf("ping failed: %v", err)}
	case elapsed > slowPing:
		return ComponentCheck{Status: stateDegraded, Latency: elapsed.String(), Message: "slow response"}
	default:
		return ComponentCheck{Status: stateUp, Latency: elapsed.String(), Message: "connected"}
	}
}

// determineOverallStatus treats the session store as the only hard
// dependency; anything else that is down only degrades the service.
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if checks["session_store"].Status == stateDown {
		return overallUnhealthy
	}
	for _, c := range checks {
		if c.Status == stateDown || c.Status == stateDegraded {
			return overallDegraded
		}
	}
	return overallHealthy
}

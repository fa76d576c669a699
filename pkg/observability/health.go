package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yomikata/yomikata/pkg/extension"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker provides liveness and readiness probes. The extension
// repository is an optional dependency: the server serves installed sources
// fine without it, so an unreachable repository degrades readiness instead of
// failing it.
type HealthChecker struct {
	index   *extension.IndexClient
	repoURL string
}

// NewHealthChecker creates a health checker. repoURL may be empty, in which
// case the repository check is skipped.
func NewHealthChecker(index *extension.IndexClient, repoURL string) *HealthChecker {
	return &HealthChecker{
		index:   index,
		repoURL: repoURL,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Liveness always returns 200 while the process serves requests.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	})
}

// Readiness checks dependencies with a short timeout.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(status)
}

// Check reports dependency health.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Dependencies: make(map[string]DependencyStatus),
	}

	if h.repoURL != "" {
		if _, err := h.index.FetchIndex(ctx, h.repoURL); err != nil {
			status.Status = StatusDegraded
			status.Dependencies["extension_repository"] = DependencyStatus{
				Status:  StatusUnhealthy,
				Message: err.Error(),
			}
		} else {
			status.Dependencies["extension_repository"] = DependencyStatus{
				Status: StatusHealthy,
			}
		}
	}

	return status
}

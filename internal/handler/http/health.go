// Package http provides the operational HTTP surface of the notifier: health
// and metrics endpoints plus middleware that reports handler panics.
package http

import (
	"net/http"
	"time"

	"errnotice/internal/handler/http/respond"
	"errnotice/internal/usecase/notify"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version,omitempty"`
}

// CheckStatus is the result of one health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthSource exposes the delivery path state. *notify.Service implements it.
type HealthSource interface {
	Health() notify.HealthStatus
}

// HealthHandler reports whether notices can currently reach the tracker.
// An open circuit breaker makes the endpoint answer 503.
type HealthHandler struct {
	Source  HealthSource
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]CheckStatus)
	healthy := true

	if h.Source == nil {
		checks["delivery"] = CheckStatus{Status: "unhealthy", Message: "not configured"}
		healthy = false
	} else {
		hs := h.Source.Health()
		check := CheckStatus{
			Status: "healthy",
			Details: map[string]any{
				"circuit_breaker": hs.Breaker,
				"state":           hs.State,
				"excluded_types":  hs.ExcludedTypes,
			},
		}
		if hs.CircuitBreakerOpen {
			check.Status = "unhealthy"
			check.Message = "circuit breaker open"
			healthy = false
		}
		checks["delivery"] = check
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

// Package metrics defines the custom Prometheus metrics for the bus ticket
// client. It is the single source of truth for metric names, labels and help
// strings.
//
// All metrics are registered with the default registry through promauto when
// the package is loaded; /metrics serves them via echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "busticket"

// ── Session metrics ───────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard evaluations.
// Labels:
//   - access: "authenticated" or "admin"
//   - outcome: "allowed", "redirect_login" or "redirect_home"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by required access and outcome.",
	},
	[]string{"access", "outcome"},
)

// AuthOperationsTotal counts login, logout and register attempts.
// Labels:
//   - operation: "login", "logout" or "register"
//   - result: "success", "failure" or "superseded"
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures round trips to the booking backend.
// Labels:
//   - method: HTTP method
//   - endpoint: path with ids collapsed (e.g. "/booking/:id")
//   - status: HTTP status code, or "error" when no response arrived
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the booking backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "endpoint", "status"},
)

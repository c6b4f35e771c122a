// Package metrics defines the portal's custom Prometheus metrics. It is the
// single source of truth for metric names, labels, and help strings.
//
// Metrics register themselves with the default registry at init; the
// echoprometheus middleware in the router adds HTTP-level request metrics on
// top of these.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userportal"

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "success", "validation_error", "conflict", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// DeletionsTotal counts deletion attempts by outcome.
// Label:
//   - result: "success", "not_found", "admin_refused", or "error"
var DeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletions_total",
		Help:      "Total number of user deletion attempts, by result.",
	},
	[]string{"result"},
)

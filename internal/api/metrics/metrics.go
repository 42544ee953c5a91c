// Package metrics defines and registers the custom Prometheus metrics of the
// registry API. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default Prometheus registry at package
// init; the echoprometheus request metrics share that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registry"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "invalid_payload", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of CMS login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logout requests. Logout always succeeds for the caller.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of CMS logout requests.",
	},
)

// SessionChecksTotal counts session gate decisions.
// Label:
//   - result: "valid", "missing", "invalid" or "error"
var SessionChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_checks_total",
		Help:      "Total number of session gate checks, by result.",
	},
	[]string{"result"},
)

// SessionSlideFailuresTotal counts gated requests that kept their old expiry
// because the sliding update failed.
var SessionSlideFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_slide_failures_total",
		Help:      "Total number of failed session expiry extensions.",
	},
)

// ── Gift metrics ──────────────────────────────────────────────────────────────

// GiftMutationsTotal counts successful gift writes.
// Label:
//   - op: "create", "purchased", "unpurchased" or "delete"
var GiftMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gift_mutations_total",
		Help:      "Total number of gift registry writes, by operation.",
	},
	[]string{"op"},
)

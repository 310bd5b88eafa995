// Package metrics defines and registers all custom Prometheus metrics for the
// client portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Access metrics ────────────────────────────────────────────────────────────

// CredentialResolutionsTotal counts identity resolutions per request.
// Label:
//   - channel: "session_token", "legacy_session" or "none"
var CredentialResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_resolutions_total",
		Help:      "Total number of credential resolutions, by the channel that resolved the caller.",
	},
	[]string{"channel"},
)

// AccessDenialsTotal counts requests stopped by the role authority or tenant gate.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AccessDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denials_total",
		Help:      "Total number of denied access decisions, by reason.",
	},
	[]string{"reason"},
)

// APIKeyChecksTotal counts external API key gate decisions.
// Labels:
//   - result: "ok", "missing" or "invalid"
//   - transport: "header", "query" or "none"
var APIKeyChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_key_checks_total",
		Help:      "Total number of ingestion API key checks, by result and transport.",
	},
	[]string{"result", "transport"},
)

// ── Tenant metrics ────────────────────────────────────────────────────────────

// TenantDeletionsTotal counts cascading tenant deletions.
// Label:
//   - result: "committed", "aborted" or "not_found"
var TenantDeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenant_deletions_total",
		Help:      "Total number of tenant deletions, by outcome.",
	},
	[]string{"result"},
)

// CascadeDeletedUsersTotal counts client users removed by committed tenant deletions.
var CascadeDeletedUsersTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deleted_users_total",
		Help:      "Total number of client users removed by committed tenant deletions.",
	},
)

// ── Usage ingestion metrics ───────────────────────────────────────────────────

// UsageEventsProcessedTotal counts usage events persisted successfully.
// Label:
//   - metric: the reported usage metric (e.g. "workflow_runs")
var UsageEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_events_processed_total",
		Help:      "Total number of usage events successfully processed.",
	},
	[]string{"metric"},
)

// UsageEventsErrorsTotal counts usage events that failed processing.
// Label:
//   - reason: "tenant_not_found" or "insert_failed"
var UsageEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_events_errors_total",
		Help:      "Total number of usage events that failed processing.",
	},
	[]string{"reason"},
)

// UsageEventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var UsageEventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "usage_events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// UsageQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var UsageQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "usage_queue_depth",
		Help:      "Current number of usage events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

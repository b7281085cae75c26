package worker

import (
	"catchup-feed/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the worker component's own
// configuration loading. Per-source and per-article metrics (crawl
// durations, dedup/enrichment counts) live in internal/observability/metrics
// and are recorded directly by internal/scheduler and internal/enrichment,
// since those packages run many independent cron entries rather than one
// global cron job the way the teacher's worker did.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
type WorkerMetrics struct {
	*config.ConfigMetrics
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics initialized.
// Metrics are created but not registered with Prometheus. Call MustRegister() to register.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

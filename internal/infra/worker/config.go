package worker

import (
	"catchup-feed/internal/pkg/config"
	"fmt"
	"log/slog"
)

// WorkerConfig holds the configuration for the worker component. The
// collection cadence itself is not part of this struct: each Source
// carries its own crawl interval (internal/scheduler applies per-source
// jitter), and the discovery loop's scan/validate cadence is fixed
// (internal/discovery.ScanCycleInterval / ValidateCycleInterval). What
// remains configurable here is pool sizing and the health endpoint.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have sensible defaults and validation rules to ensure
// the worker can operate safely even with invalid or missing configuration.
//
// Example usage:
//
//	// Use defaults
//	config := DefaultConfig()
//
//	// Load from environment with fallback
//	config, err := LoadConfigFromEnv(logger, metrics)
//	if err != nil {
//	    // This should never happen with fail-open strategy
//	    log.Fatal("Unexpected configuration error: %v", err)
//	}
//
//	// Validate before use (optional, LoadConfigFromEnv already validates)
//	if err := config.Validate(); err != nil {
//	    log.Fatal("Invalid configuration: %v", err)
//	}
type WorkerConfig struct {
	// EnrichmentWorkers is the size of the enrichment engine's bounded
	// worker pool (internal/enrichment.Engine). See spec.md §4.7.
	// Range: 1-100
	// Default: internal/enrichment.DefaultWorkers (4)
	EnrichmentWorkers int

	// WebhookWorkers is the size of the webhook dispatch worker pool
	// (internal/webhook.Sender).
	// Range: 1-100
	// Default: 4
	WebhookWorkers int

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with sensible default values.
//
// Returns:
//   - WorkerConfig with production-ready default values
//
// Example:
//
//	config := DefaultConfig()
//	config.EnrichmentWorkers = 8 // Customize pool size
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		EnrichmentWorkers: 4,
		WebhookWorkers:    4,
		HealthPort:        9091, // Standard Prometheus exporter port
	}
}

// Validate checks if the configuration values are valid.
// This method validates each field using the reusable validators from internal/pkg/config.
// If multiple fields are invalid, all errors are collected and returned together.
//
// Validation rules:
//   - EnrichmentWorkers: Must be between 1 and 100 (inclusive)
//   - WebhookWorkers: Must be between 1 and 100 (inclusive)
//   - HealthPort: Must be between 1024 and 65535 (avoid privileged ports)
//
// Returns:
//   - error: nil if configuration is valid, aggregated error if any validation fails
//
// Example:
//
//	config := DefaultConfig()
//	if err := config.Validate(); err != nil {
//	    log.Fatal("Invalid configuration: %v", err)
//	}
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateIntRange(c.EnrichmentWorkers, 1, 100); err != nil {
		errors = append(errors, fmt.Errorf("enrichment workers: %w", err))
	}

	if err := config.ValidateIntRange(c.WebhookWorkers, 1, 100); err != nil {
		errors = append(errors, fmt.Errorf("webhook workers: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use default value, log warning, increment metrics
//  5. Never return error - always return a valid configuration
//
// Environment variables:
//   - ENRICHMENT_WORKERS: Integer 1-100 (default: 4)
//   - WEBHOOK_WORKERS: Integer 1-100 (default: 4)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Metrics updated:
//   - ValidationErrorsTotal: Incremented for each validation failure
//   - FallbacksTotal: Incremented for each fallback applied
//   - FallbackActive: Set to 1 if any fallback is active, 0 otherwise
//   - LoadTimestamp: Set to current time after successful load
//
// Parameters:
//   - logger: Structured logger for warnings
//   - metrics: Metrics instance for tracking fallbacks
//
// Returns:
//   - *WorkerConfig: Valid configuration (never nil)
//   - error: Always nil (fail-open strategy)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvInt("ENRICHMENT_WORKERS", cfg.EnrichmentWorkers, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.EnrichmentWorkers = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("enrichment_workers")
		metrics.RecordFallback("enrichment_workers", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "EnrichmentWorkers"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WEBHOOK_WORKERS", cfg.WebhookWorkers, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.WebhookWorkers = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("webhook_workers")
		metrics.RecordFallback("webhook_workers", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "WebhookWorkers"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

// Package obs carries the ambient observability stack: structured logging
// (log/slog, matching the teacher's key/value attribute style) and the
// Prometheus counters/histograms the evaluator and full-pipeline adapter
// expose, grounded on the teacher's internal/server/metrics.go.
package obs

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Logger is the package-level structured logger every component logs
// through, so log format stays consistent without each package building
// its own handler.
var Logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// LogStageError logs a contained (non-fatal) error at the given stage, the
// convention every preprocessing/engine/postprocess step uses instead of
// panicking on recoverable input, per spec §7.
func LogStageError(stage, operation string, err error) {
	Logger.Warn("stage error", "stage", stage, "operation", operation, "error", err)
}

var (
	// ImagesProcessedTotal counts evaluator images processed, labeled by
	// engine kind and outcome.
	ImagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrcore_images_processed_total",
			Help: "Total number of images processed by the evaluator",
		},
		[]string{"engine", "outcome"},
	)

	// EngineLatencySeconds records per-engine ExtractText latency.
	EngineLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocrcore_engine_latency_seconds",
			Help:    "Per-engine recognition latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// ErrorCategoryTotal counts evaluator results by textmetrics error
	// category (perfect/low/medium/high).
	ErrorCategoryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrcore_error_category_total",
			Help: "Evaluator results bucketed by CER error category",
		},
		[]string{"engine", "category"},
	)

	// DateParseSuccessTotal counts date-parse attempts by outcome.
	DateParseSuccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrcore_date_parse_total",
			Help: "Full-pipeline date parse attempts by outcome",
		},
		[]string{"outcome"}, // found, not_found
	)
)

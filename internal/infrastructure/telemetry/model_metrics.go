// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ModelMetrics provides business metrics for the projection service.
// It tracks projection runs, diagnostic warnings, cache activity and
// report rendering.
type ModelMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	runsTotal     *Counter
	warningsTotal *Counter
	cacheTotal    *Counter
	rendersTotal  *Counter

	// Histogram metrics (distributions)
	solveDuration  *Histogram
	renderDuration *Histogram
	yearsRequested *Histogram

	// Gauge metrics (point-in-time values)
	cacheEntries *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	cacheProvider CacheStatsProvider
	cacheBackend  string
}

// CacheStatsProvider provides result-cache state for periodic metrics
// collection. The interface keeps the telemetry layer from depending on the
// cache implementation directly.
type CacheStatsProvider interface {
	// EntryCount returns the number of cached projection results
	EntryCount(ctx context.Context) (int64, error)
}

// ModelMetricsConfig holds configuration for projection metrics.
type ModelMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	CacheProvider   CacheStatsProvider
	CacheBackend    string
}

// NewModelMetrics creates a new ModelMetrics instance.
func NewModelMetrics(cfg ModelMetricsConfig) (*ModelMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mm := &ModelMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		cacheProvider: cfg.CacheProvider,
		cacheBackend:  cfg.CacheBackend,
	}

	var err error

	// Projection run metrics
	mm.runsTotal, err = NewCounter(
		cfg.Meter,
		"corpfin_projection_runs_total",
		"Total number of projection runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	mm.warningsTotal, err = NewCounter(
		cfg.Meter,
		"corpfin_projection_warnings_total",
		"Total number of diagnostic warnings emitted by projection runs",
		"{warnings}",
	)
	if err != nil {
		return nil, err
	}

	mm.solveDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "corpfin_projection_solve_duration_seconds",
		Description: "Duration of projection solves including the financing fixed point",
		Unit:        "s",
		Boundaries:  ModelDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	mm.yearsRequested, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "corpfin_projection_years",
		Description: "Distribution of projection horizon lengths requested",
		Unit:        "{years}",
		Boundaries:  []float64{1, 2, 3, 5, 10, 20, 50},
	})
	if err != nil {
		return nil, err
	}

	// Cache metrics
	mm.cacheTotal, err = NewCounter(
		cfg.Meter,
		"corpfin_result_cache_requests_total",
		"Total number of result cache lookups",
		"{lookups}",
	)
	if err != nil {
		return nil, err
	}

	mm.cacheEntries, err = NewGauge(
		cfg.Meter,
		"corpfin_result_cache_entries",
		"Current number of cached projection results",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	// Report rendering metrics
	mm.rendersTotal, err = NewCounter(
		cfg.Meter,
		"corpfin_report_renders_total",
		"Total number of PDF report renders",
		"{renders}",
	)
	if err != nil {
		return nil, err
	}

	mm.renderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "corpfin_report_render_duration_seconds",
		Description: "Duration of PDF report renders",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// =============================================================================
// Projection Run Metrics
// =============================================================================

// RunStatus represents the outcome of a projection run for metrics labeling.
type RunStatus string

const (
	RunStatusOK            RunStatus = "ok"
	RunStatusInvalidInput  RunStatus = "invalid_input"
	RunStatusImpossibility RunStatus = "financial_impossibility"
)

// RecordRun records a completed projection run.
// This should be called from the application layer after each run, whether it
// succeeded or was rejected by validation.
func (mm *ModelMetrics) RecordRun(ctx context.Context, years int, duration time.Duration, status RunStatus) {
	mm.runsTotal.Inc(ctx, AttrRunStatus.String(string(status)))
	if status == RunStatusOK {
		mm.solveDuration.RecordDuration(ctx, duration)
		mm.yearsRequested.Record(ctx, float64(years))
	}
}

// RecordWarnings records the diagnostic warnings produced by a run, one
// increment per warning code occurrence.
func (mm *ModelMetrics) RecordWarnings(ctx context.Context, codes []string) {
	for _, code := range codes {
		mm.warningsTotal.Inc(ctx, AttrWarningCode.String(code))
	}
}

// =============================================================================
// Cache Metrics
// =============================================================================

// CacheResult represents the outcome of a cache lookup for metrics labeling.
type CacheResult string

const (
	CacheResultHit    CacheResult = "hit"
	CacheResultMiss   CacheResult = "miss"
	CacheResultBypass CacheResult = "bypass"
)

// RecordCacheLookup records a result-cache lookup outcome.
func (mm *ModelMetrics) RecordCacheLookup(ctx context.Context, result CacheResult) {
	mm.cacheTotal.Inc(ctx,
		AttrCacheBackend.String(mm.cacheBackend),
		AttrCacheResult.String(string(result)),
	)
}

// =============================================================================
// Report Rendering Metrics
// =============================================================================

// RenderStatus represents the outcome of a report render for metrics labeling.
type RenderStatus string

const (
	RenderStatusSuccess RenderStatus = "success"
	RenderStatusFailed  RenderStatus = "failed"
)

// RecordRender records a PDF report render.
func (mm *ModelMetrics) RecordRender(ctx context.Context, engine string, status RenderStatus, duration time.Duration) {
	mm.rendersTotal.Inc(ctx,
		AttrRenderEngine.String(engine),
		AttrRenderStatus.String(string(status)),
	)
	if status == RenderStatusSuccess {
		mm.renderDuration.RecordDuration(ctx, duration)
	}
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It samples the result-cache entry count every interval (default: 1 minute).
// This is non-blocking - use Stop() to stop collection.
func (mm *ModelMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	mm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go mm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (mm *ModelMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	mm.collectCacheMetrics(ctx)

	for {
		select {
		case <-mm.stopChan:
			mm.logger.Info("Stopping periodic model metrics collection")
			return
		case <-ctx.Done():
			mm.logger.Info("Context cancelled, stopping periodic model metrics collection")
			return
		case <-ticker.C:
			mm.collectCacheMetrics(ctx)
		}
	}
}

// collectCacheMetrics samples the result-cache gauge metrics.
func (mm *ModelMetrics) collectCacheMetrics(ctx context.Context) {
	if mm.cacheProvider == nil {
		mm.logger.Debug("No cache provider configured, skipping cache metrics collection")
		return
	}

	count, err := mm.cacheProvider.EntryCount(ctx)
	if err != nil {
		mm.logger.Warn("Failed to get cache entry count", zap.Error(err))
		return
	}

	mm.cacheEntries.Record(ctx, count, AttrCacheBackend.String(mm.cacheBackend))
}

// Stop stops the periodic collection.
func (mm *ModelMetrics) Stop() {
	mm.stopOnce.Do(func() {
		close(mm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewModelMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Projection metrics attribute keys not already defined in metrics.go
var (
	AttrRunStatus    = attribute.Key("run_status")
	AttrRenderStatus = attribute.Key("render_status")
)

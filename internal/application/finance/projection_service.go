package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/corpfin/backend/internal/domain/finance"
	"github.com/corpfin/backend/internal/domain/shared"
	"github.com/corpfin/backend/internal/infrastructure/cache"
	"github.com/corpfin/backend/internal/infrastructure/logger"
	"github.com/corpfin/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectionService runs the three-statement model for API and CLI callers.
// It owns everything around the pure domain computation: request validation,
// run identity, result caching, tracing and metrics.
type ProjectionService struct {
	solverIterations int
	maxYears         int
	resultCache      cache.ResultCache
	cacheTTL         time.Duration
	metrics          *telemetry.ModelMetrics
	logger           *zap.Logger
}

// ProjectionServiceConfig holds the dependencies for a ProjectionService.
// Cache may be nil when result caching is disabled; Metrics may be nil when
// telemetry is off.
type ProjectionServiceConfig struct {
	// SolverIterations is the fixed number of circular-resolution rounds.
	// Zero means the domain default.
	SolverIterations int

	// MaxProjectionYears caps the accepted horizon. Zero means no cap beyond
	// the domain's own validation.
	MaxProjectionYears int

	Cache    cache.ResultCache
	CacheTTL time.Duration
	Metrics  *telemetry.ModelMetrics
	Logger   *zap.Logger
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(cfg ProjectionServiceConfig) *ProjectionService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	iterations := cfg.SolverIterations
	if iterations <= 0 {
		iterations = finance.DefaultSolverIterations
	}
	return &ProjectionService{
		solverIterations: iterations,
		maxYears:         cfg.MaxProjectionYears,
		resultCache:      cfg.Cache,
		cacheTTL:         cfg.CacheTTL,
		metrics:          cfg.Metrics,
		logger:           log,
	}
}

// cacheKeyMaterial is hashed into the result-cache key. Solver iterations are
// part of it because two deployments with different iteration counts may
// legitimately produce different statements for the same request.
type cacheKeyMaterial struct {
	BaseYear         finance.BaseYear         `json:"base_year"`
	Assumptions      finance.ModelAssumptions `json:"assumptions"`
	SolverIterations int                      `json:"solver_iterations"`
}

// Run executes the projection and returns the full statement set.
// Identical requests are served from the result cache when one is configured.
func (s *ProjectionService) Run(ctx context.Context, req RunProjectionRequest) (*ProjectionResponse, error) {
	start := time.Now()
	years := req.Years()

	runID := uuid.New().String()
	ctx, log := logger.WithRunID(ctx, s.logger, runID)

	ctx, span := telemetry.StartServiceSpan(ctx, "ProjectionService", "Run",
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID),
		telemetry.WithAttribute(telemetry.SpanAttrProjectionYears, years),
		telemetry.WithAttribute(telemetry.SpanAttrSolverRounds, s.solverIterations),
	)
	defer span.End()

	input := finance.ModelInput{
		BaseYear:    req.BaseYear,
		Assumptions: req.Assumptions,
	}
	if err := s.validateInput(input); err != nil {
		s.recordRun(ctx, years, time.Since(start), err)
		telemetry.RecordError(span, err)
		log.Info("projection rejected", zap.Error(err))
		return nil, err
	}

	// Cache lookup
	key, cached := s.cacheLookup(ctx, input, log)
	if cached != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrCacheResult, "hit")
		telemetry.SetOK(span)
		log.Info("projection served from cache",
			zap.Int("years", years),
			zap.Int("warnings", len(cached.Warnings)),
		)
		return toProjectionResponse(runID, cached, true), nil
	}

	// Run the model under profiling labels so flame graphs separate solver
	// time from request plumbing
	var (
		result *finance.ProjectionResult
		runErr error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("model_run", nil), func(ctx context.Context) {
		result, runErr = finance.BuildThreeStatementModelWithIterations(input, s.solverIterations)
	})
	if runErr != nil {
		s.recordRun(ctx, years, time.Since(start), runErr)
		telemetry.RecordError(span, runErr)
		log.Warn("projection failed", zap.Error(runErr))
		return nil, runErr
	}

	s.recordRun(ctx, years, time.Since(start), nil)
	if s.metrics != nil {
		s.metrics.RecordWarnings(ctx, warningCodes(result.Warnings))
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrWarningCount, len(result.Warnings))
	telemetry.SetOK(span)

	s.cacheStore(ctx, key, result, log)

	log.Info("projection complete",
		zap.Int("years", years),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int64("elapsed_ms", result.ExecutionDurationMs),
	)

	return toProjectionResponse(runID, result, false), nil
}

// Validate checks a request without running the model. It applies the same
// horizon cap and domain validation as Run, so a passing preflight implies
// Run will not reject the request as invalid.
func (s *ProjectionService) Validate(ctx context.Context, req RunProjectionRequest) (*ValidationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ProjectionService", "Validate",
		telemetry.WithAttribute(telemetry.SpanAttrProjectionYears, req.Years()),
	)
	defer span.End()

	input := finance.ModelInput{
		BaseYear:    req.BaseYear,
		Assumptions: req.Assumptions,
	}
	if err := s.validateInput(input); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return &ValidationResponse{Valid: true, Years: req.Years()}, nil
}

// SolverIterations returns the configured circular-resolution round count
func (s *ProjectionService) SolverIterations() int {
	return s.solverIterations
}

// validateInput applies the service-level horizon cap, then domain validation
func (s *ProjectionService) validateInput(input finance.ModelInput) error {
	if s.maxYears > 0 && input.Assumptions.Years() > s.maxYears {
		return shared.NewInvalidInput("assumptions.growth_rates",
			fmt.Sprintf("projection horizon of %d years exceeds the maximum of %d", input.Assumptions.Years(), s.maxYears))
	}
	return input.Validate()
}

// cacheLookup derives the request key and attempts a cache read. It returns
// the key for the later store and the cached result on a hit. Cache failures
// degrade to a miss; the model run must never depend on cache health.
func (s *ProjectionService) cacheLookup(ctx context.Context, input finance.ModelInput, log *zap.Logger) (string, *finance.ProjectionResult) {
	if s.resultCache == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(ctx, telemetry.CacheResultBypass)
		}
		return "", nil
	}

	key, err := cache.RequestKey(cacheKeyMaterial{
		BaseYear:         input.BaseYear,
		Assumptions:      input.Assumptions,
		SolverIterations: s.solverIterations,
	})
	if err != nil {
		log.Warn("failed to derive cache key", zap.Error(err))
		return "", nil
	}

	payload, found, err := s.resultCache.Get(ctx, key)
	if err != nil {
		log.Warn("result cache read failed", zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(ctx, telemetry.CacheResultMiss)
		}
		return key, nil
	}
	if !found {
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(ctx, telemetry.CacheResultMiss)
		}
		return key, nil
	}

	var result finance.ProjectionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(ctx, telemetry.CacheResultMiss)
		}
		return key, nil
	}

	if s.metrics != nil {
		s.metrics.RecordCacheLookup(ctx, telemetry.CacheResultHit)
	}
	return key, &result
}

// cacheStore writes a fresh result to the cache. Failures are logged and
// otherwise ignored.
func (s *ProjectionService) cacheStore(ctx context.Context, key string, result *finance.ProjectionResult, log *zap.Logger) {
	if s.resultCache == nil || key == "" {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Warn("failed to serialize result for cache", zap.Error(err))
		return
	}
	if err := s.resultCache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		log.Warn("result cache write failed", zap.Error(err))
	}
}

// recordRun maps an outcome to a metrics status and records it
func (s *ProjectionService) recordRun(ctx context.Context, years int, duration time.Duration, err error) {
	if s.metrics == nil {
		return
	}

	status := telemetry.RunStatusOK
	if err != nil {
		status = telemetry.RunStatusInvalidInput
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "FINANCIAL_IMPOSSIBILITY" {
			status = telemetry.RunStatusImpossibility
		}
	}
	s.metrics.RecordRun(ctx, years, duration, status)
}

func warningCodes(warnings []finance.Warning) []string {
	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = string(w.Code)
	}
	return codes
}

package finance

import (
	"github.com/corpfin/backend/internal/domain/finance"
)

// =============================================================================
// Projection DTOs
// =============================================================================

// RunProjectionRequest carries everything the model needs for one run: the
// audited base-year snapshot and the assumption set. The domain types bind
// directly; decimal fields accept JSON numbers or strings.
type RunProjectionRequest struct {
	BaseYear    finance.BaseYear         `json:"base_year" binding:"required"`
	Assumptions finance.ModelAssumptions `json:"assumptions" binding:"required"`
}

// Years returns the projection horizon implied by the growth-rate vector
func (r RunProjectionRequest) Years() int {
	return r.Assumptions.Years()
}

// ProjectionResponse is the full projection payload returned to callers.
// RunID identifies this request; on a cache hit the statements come from an
// earlier identical run and ElapsedMs reports that run's compute time.
type ProjectionResponse struct {
	RunID string `json:"run_id"`

	IncomeStatements   []finance.IncomeStatement   `json:"income_statements"`
	BalanceSheets      []finance.BalanceSheet      `json:"balance_sheets"`
	CashFlowStatements []finance.CashFlowStatement `json:"cash_flow_statements"`

	Summary  finance.ProjectionSummary `json:"summary"`
	Warnings []finance.Warning         `json:"warnings"`

	Methodology string `json:"methodology"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	CacheHit    bool   `json:"cache_hit"`
}

// ValidationResponse reports a successful validation-only preflight
type ValidationResponse struct {
	Valid bool `json:"valid"`
	Years int  `json:"years"`
}

// toProjectionResponse converts a domain projection result into the response DTO
func toProjectionResponse(runID string, result *finance.ProjectionResult, cacheHit bool) *ProjectionResponse {
	return &ProjectionResponse{
		RunID:              runID,
		IncomeStatements:   result.IncomeStatements,
		BalanceSheets:      result.BalanceSheets,
		CashFlowStatements: result.CashFlowStatements,
		Summary:            result.Summary,
		Warnings:           result.Warnings,
		Methodology:        result.Methodology,
		ElapsedMs:          result.ExecutionDurationMs,
		CacheHit:           cacheHit,
	}
}

package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WarningSeverity grades a diagnostic finding.
type WarningSeverity string

const (
	// SeverityWarning flags a stressed but plausible projection.
	SeverityWarning WarningSeverity = "WARNING"
	// SeverityCritical flags an internal inconsistency in the model itself.
	SeverityCritical WarningSeverity = "CRITICAL"
)

// IsValid checks if the severity is one of the defined grades.
func (s WarningSeverity) IsValid() bool {
	return s == SeverityWarning || s == SeverityCritical
}

// String returns the string representation of the severity.
func (s WarningSeverity) String() string {
	return string(s)
}

// WarningCode identifies the diagnostic rule that fired.
type WarningCode string

const (
	// WarnHighLeverage fires when total debt exceeds the leverage ceiling
	// as a multiple of EBITDA.
	WarnHighLeverage WarningCode = "HIGH_LEVERAGE"
	// WarnLowInterestCoverage fires when EBIT covers interest expense by
	// less than the coverage floor.
	WarnLowInterestCoverage WarningCode = "LOW_INTEREST_COVERAGE"
	// WarnNegativeFreeCashFlow fires when the year burns cash after capex.
	WarnNegativeFreeCashFlow WarningCode = "NEGATIVE_FREE_CASH_FLOW"
	// WarnRevolverDraw fires when the minimum cash floor forced new borrowing.
	WarnRevolverDraw WarningCode = "REVOLVER_DRAW"
	// WarnBalanceCheckFailed fires when assets and liabilities plus equity
	// diverge beyond tolerance. It signals a modeling bug, not a stressed
	// scenario, and is always critical.
	WarnBalanceCheckFailed WarningCode = "BALANCE_CHECK_FAILED"
)

// Diagnostic thresholds. A projection that trips one is still returned
// in full; warnings annotate, they never abort.
var (
	// LeverageCeiling is the total debt / EBITDA multiple above which
	// leverage is flagged.
	LeverageCeiling = decimal.NewFromInt(6)
	// CoverageFloor is the EBIT / interest multiple below which coverage
	// is flagged.
	CoverageFloor = decimal.NewFromInt(2)
	// BalanceTolerance is the absolute difference allowed between total
	// assets and total liabilities plus equity.
	BalanceTolerance = decimal.NewFromFloat(0.01)
)

// Warning is a single diagnostic finding for one projected year.
type Warning struct {
	Code     WarningCode     `json:"code"`
	Severity WarningSeverity `json:"severity"`
	Year     int             `json:"year"`
	Message  string          `json:"message"`
	Value    decimal.Decimal `json:"value"`
}

// CheckPeriod runs every diagnostic rule against one assembled year and
// returns the findings, empty when the year is clean. Leverage is only
// measured against positive EBITDA and coverage only against a real
// interest charge; degenerate denominators produce no finding.
func CheckPeriod(year int, income IncomeStatement, balance BalanceSheet, cashFlow CashFlowStatement) []Warning {
	var warnings []Warning

	if income.EBITDA.IsPositive() {
		leverage := balance.TotalDebt.Div(income.EBITDA)
		if leverage.GreaterThan(LeverageCeiling) {
			warnings = append(warnings, Warning{
				Code:     WarnHighLeverage,
				Severity: SeverityWarning,
				Year:     year,
				Message: fmt.Sprintf("total debt is %sx EBITDA, above the %sx ceiling",
					leverage.StringFixed(2), LeverageCeiling.StringFixed(1)),
				Value: leverage,
			})
		}
	}

	if income.InterestExpense.IsPositive() {
		coverage := income.EBIT.Div(income.InterestExpense)
		if coverage.LessThan(CoverageFloor) {
			warnings = append(warnings, Warning{
				Code:     WarnLowInterestCoverage,
				Severity: SeverityWarning,
				Year:     year,
				Message: fmt.Sprintf("EBIT covers interest only %sx, below the %sx floor",
					coverage.StringFixed(2), CoverageFloor.StringFixed(1)),
				Value: coverage,
			})
		}
	}

	if cashFlow.FreeCashFlow.IsNegative() {
		warnings = append(warnings, Warning{
			Code:     WarnNegativeFreeCashFlow,
			Severity: SeverityWarning,
			Year:     year,
			Message:  fmt.Sprintf("free cash flow is %s after capex", cashFlow.FreeCashFlow.StringFixed(2)),
			Value:    cashFlow.FreeCashFlow,
		})
	}

	if cashFlow.NewDebt.IsPositive() {
		warnings = append(warnings, Warning{
			Code:     WarnRevolverDraw,
			Severity: SeverityWarning,
			Year:     year,
			Message:  fmt.Sprintf("minimum cash floor required a revolver draw of %s", cashFlow.NewDebt.StringFixed(2)),
			Value:    cashFlow.NewDebt,
		})
	}

	difference := balance.TotalAssets.Sub(balance.TotalLiabilitiesAndEquity)
	if difference.Abs().GreaterThan(BalanceTolerance) {
		warnings = append(warnings, Warning{
			Code:     WarnBalanceCheckFailed,
			Severity: SeverityCritical,
			Year:     year,
			Message: fmt.Sprintf("balance sheet out of balance by %s; assets %s vs liabilities and equity %s",
				difference.StringFixed(4), balance.TotalAssets.StringFixed(2), balance.TotalLiabilitiesAndEquity.StringFixed(2)),
			Value: difference,
		})
	}

	return warnings
}

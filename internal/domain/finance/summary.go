package finance

import (
	"github.com/corpfin/backend/internal/domain/shared/decimalmath"
	"github.com/shopspring/decimal"
)

// ProjectionSummary condenses a full projection into the headline
// metrics a reviewer scans before opening the statements.
type ProjectionSummary struct {
	RevenueCAGR            decimal.Decimal `json:"revenue_cagr"`
	AverageEBITDAMargin    decimal.Decimal `json:"average_ebitda_margin"`
	AverageNetMargin       decimal.Decimal `json:"average_net_margin"`
	EndingLeverage         decimal.Decimal `json:"ending_leverage"`
	CumulativeFreeCashFlow decimal.Decimal `json:"cumulative_free_cash_flow"`
	EndingCash             decimal.Decimal `json:"ending_cash"`
	EndingDebt             decimal.Decimal `json:"ending_debt"`
}

// BuildSummary aggregates the assembled statements into summary metrics.
// Revenue CAGR is the n-th root of final over base revenue minus one,
// taken over the projected years. Ratios with degenerate denominators
// (zero base revenue, non-positive final EBITDA) report as zero rather
// than poisoning the summary.
func BuildSummary(baseRevenue decimal.Decimal, incomes []IncomeStatement, balances []BalanceSheet, cashFlows []CashFlowStatement) ProjectionSummary {
	years := len(incomes)
	if years == 0 {
		return ProjectionSummary{}
	}

	final := incomes[years-1]
	finalBalance := balances[years-1]

	var cagr decimal.Decimal
	if baseRevenue.IsPositive() && final.Revenue.IsPositive() {
		ratio := final.Revenue.Div(baseRevenue)
		cagr = decimalmath.NthRoot(ratio, int64(years)).Sub(one)
	}

	var ebitdaMarginSum, netMarginSum decimal.Decimal
	for _, income := range incomes {
		ebitdaMarginSum = ebitdaMarginSum.Add(income.EBITDAMargin)
		netMarginSum = netMarginSum.Add(income.NetMargin)
	}
	yearCount := decimal.NewFromInt(int64(years))

	var endingLeverage decimal.Decimal
	if final.EBITDA.IsPositive() {
		endingLeverage = finalBalance.TotalDebt.Div(final.EBITDA)
	}

	var cumulativeFCF decimal.Decimal
	for _, cashFlow := range cashFlows {
		cumulativeFCF = cumulativeFCF.Add(cashFlow.FreeCashFlow)
	}

	return ProjectionSummary{
		RevenueCAGR:            cagr,
		AverageEBITDAMargin:    ebitdaMarginSum.Div(yearCount),
		AverageNetMargin:       netMarginSum.Div(yearCount),
		EndingLeverage:         endingLeverage,
		CumulativeFreeCashFlow: cumulativeFCF,
		EndingCash:             finalBalance.Cash,
		EndingDebt:             finalBalance.TotalDebt,
	}
}

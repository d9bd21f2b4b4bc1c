package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildSummary(t *testing.T) {
	t.Run("computes CAGR from uniform growth", func(t *testing.T) {
		// Three years at 10% growth: 1000 -> 1331, so CAGR is exactly 10%.
		incomes := []IncomeStatement{
			{Year: 1, Revenue: decimal.NewFromInt(1100)},
			{Year: 2, Revenue: decimal.NewFromInt(1210)},
			{Year: 3, Revenue: decimal.NewFromInt(1331)},
		}
		balances := []BalanceSheet{{Year: 1}, {Year: 2}, {Year: 3}}
		cashFlows := []CashFlowStatement{{Year: 1}, {Year: 2}, {Year: 3}}

		summary := BuildSummary(decimal.NewFromInt(1000), incomes, balances, cashFlows)

		assertWithin(t, decimal.NewFromFloat(0.10), summary.RevenueCAGR, "0.000001")
	})

	t.Run("averages margins across years", func(t *testing.T) {
		incomes := []IncomeStatement{
			{Year: 1, Revenue: decimal.NewFromInt(1000), EBITDAMargin: decimal.NewFromFloat(0.20), NetMargin: decimal.NewFromFloat(0.08)},
			{Year: 2, Revenue: decimal.NewFromInt(1000), EBITDAMargin: decimal.NewFromFloat(0.30), NetMargin: decimal.NewFromFloat(0.12)},
		}
		balances := []BalanceSheet{{Year: 1}, {Year: 2}}
		cashFlows := []CashFlowStatement{{Year: 1}, {Year: 2}}

		summary := BuildSummary(decimal.NewFromInt(1000), incomes, balances, cashFlows)

		assert.True(t, decimal.NewFromFloat(0.25).Equal(summary.AverageEBITDAMargin))
		assert.True(t, decimal.NewFromFloat(0.10).Equal(summary.AverageNetMargin))
	})

	t.Run("reports ending leverage from the final year", func(t *testing.T) {
		incomes := []IncomeStatement{
			{Year: 1, Revenue: decimal.NewFromInt(1000), EBITDA: decimal.NewFromInt(300)},
			{Year: 2, Revenue: decimal.NewFromInt(1000), EBITDA: decimal.NewFromInt(200)},
		}
		balances := []BalanceSheet{
			{Year: 1, TotalDebt: decimal.NewFromInt(900)},
			{Year: 2, TotalDebt: decimal.NewFromInt(500), Cash: decimal.NewFromInt(75)},
		}
		cashFlows := []CashFlowStatement{{Year: 1}, {Year: 2}}

		summary := BuildSummary(decimal.NewFromInt(1000), incomes, balances, cashFlows)

		assert.True(t, decimal.NewFromFloat(2.5).Equal(summary.EndingLeverage))
		assert.True(t, decimal.NewFromInt(75).Equal(summary.EndingCash))
		assert.True(t, decimal.NewFromInt(500).Equal(summary.EndingDebt))
	})

	t.Run("reports zero leverage when final EBITDA is not positive", func(t *testing.T) {
		incomes := []IncomeStatement{{Year: 1, Revenue: decimal.NewFromInt(1000), EBITDA: decimal.NewFromInt(-50)}}
		balances := []BalanceSheet{{Year: 1, TotalDebt: decimal.NewFromInt(400)}}
		cashFlows := []CashFlowStatement{{Year: 1}}

		summary := BuildSummary(decimal.NewFromInt(1000), incomes, balances, cashFlows)

		assert.True(t, summary.EndingLeverage.IsZero())
	})

	t.Run("accumulates free cash flow", func(t *testing.T) {
		incomes := []IncomeStatement{{Year: 1, Revenue: decimal.NewFromInt(1000)}, {Year: 2, Revenue: decimal.NewFromInt(1000)}}
		balances := []BalanceSheet{{Year: 1}, {Year: 2}}
		cashFlows := []CashFlowStatement{
			{Year: 1, FreeCashFlow: decimal.NewFromFloat(120.5)},
			{Year: 2, FreeCashFlow: decimal.NewFromFloat(-20.5)},
		}

		summary := BuildSummary(decimal.NewFromInt(1000), incomes, balances, cashFlows)

		assert.True(t, decimal.NewFromInt(100).Equal(summary.CumulativeFreeCashFlow))
	})

	t.Run("reports zero CAGR for a zero revenue base", func(t *testing.T) {
		incomes := []IncomeStatement{{Year: 1, Revenue: decimal.NewFromInt(1100)}}
		balances := []BalanceSheet{{Year: 1}}
		cashFlows := []CashFlowStatement{{Year: 1}}

		summary := BuildSummary(decimal.Zero, incomes, balances, cashFlows)

		assert.True(t, summary.RevenueCAGR.IsZero())
	})

	t.Run("handles an empty series", func(t *testing.T) {
		summary := BuildSummary(decimal.NewFromInt(1000), nil, nil, nil)

		assert.True(t, summary.RevenueCAGR.IsZero())
		assert.True(t, summary.AverageEBITDAMargin.IsZero())
		assert.True(t, summary.CumulativeFreeCashFlow.IsZero())
	})
}

package finance

import (
	"testing"

	"github.com/corpfin/backend/internal/domain/shared/decimalmath"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSolveFinancing(t *testing.T) {
	t.Run("charges no interest when debt free", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		opening.TotalDebt = decimal.Zero
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.DebtRepaymentPct = decimal.Zero
		assumptions.MinimumCash = decimal.Zero
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)

		assert.True(t, sol.InterestExpense.IsZero())
		assert.True(t, sol.ClosingDebt.IsZero())
		assert.True(t, sol.NewDebt.IsZero())
	})

	t.Run("taxes only positive pretax income", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		assumptions := steadyAssumptions(1, 0)
		// Depreciation swamps EBITDA, so the year runs a pretax loss.
		assumptions.DepreciationPct = decimal.NewFromFloat(0.90)
		proj := ProjectPeriod(opening, assumptions, decimal.Zero)

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)

		assert.True(t, sol.EBT.IsNegative())
		assert.True(t, sol.Taxes.IsZero())
		assert.True(t, sol.NetIncome.Equal(sol.EBT))
		assert.True(t, sol.Dividends.IsZero(), "a loss year pays no dividend")
	})

	t.Run("draws the revolver up to the cash floor exactly", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		opening.Cash = decimal.NewFromInt(100)
		assumptions := steadyAssumptions(1, 0.10)
		assumptions.CapexPct = decimal.NewFromFloat(0.25)
		assumptions.DebtRepaymentPct = decimal.NewFromFloat(0.15)
		assumptions.DividendPayoutPct = decimal.NewFromFloat(0.50)
		assumptions.MinimumCash = decimal.NewFromInt(100)
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)

		assert.True(t, sol.NewDebt.IsPositive())
		assert.True(t, sol.ExtraPaydown.IsZero(), "a draw year never also pays down early")
		assert.True(t, sol.ClosingCash.Equal(assumptions.MinimumCash))
		assert.True(t, sol.ClosingDebt.GreaterThan(opening.TotalDebt.Sub(sol.ScheduledRepayment)))
	})

	t.Run("caps early paydown at the remaining balance", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		opening.Cash = decimal.NewFromInt(1000)
		opening.TotalDebt = decimal.NewFromInt(100)
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.CapexPct = decimal.NewFromFloat(0.02)
		assumptions.DividendPayoutPct = decimal.Zero
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)

		capacity := opening.TotalDebt.Sub(sol.ScheduledRepayment)
		assert.True(t, sol.ExtraPaydown.Equal(capacity), "surplus far exceeds the debt left to retire")
		assert.True(t, sol.ClosingDebt.IsZero())
		assert.True(t, sol.ClosingCash.GreaterThan(assumptions.MinimumCash))
	})

	t.Run("keeps interest consistent with average debt", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		assumptions := steadyAssumptions(1, 0.05)
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)

		implied := decimalmath.Average(opening.TotalDebt, sol.ClosingDebt).Mul(assumptions.InterestRate)
		assertWithin(t, implied, sol.InterestExpense, "0.01")
	})

	t.Run("reported values come from one coherent pass", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		assumptions := steadyAssumptions(1, 0.05)
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)
		replay := financingPass(proj, opening, assumptions, sol.ScheduledRepayment, sol.InterestExpense)

		assert.Equal(t, replay, sol)
	})

	t.Run("non-positive iteration count falls back to the default", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		assumptions := steadyAssumptions(1, 0.05)
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		assert.Equal(t,
			SolveFinancing(proj, opening, assumptions, DefaultSolverIterations),
			SolveFinancing(proj, opening, assumptions, -1))
	})

	t.Run("never reports negative debt or sub-floor cash", func(t *testing.T) {
		opening := NewPeriodState(balancedBase())
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.DebtRepaymentPct = decimal.NewFromInt(1)
		proj := ProjectPeriod(opening, assumptions, assumptions.GrowthRates[0])

		sol := SolveFinancing(proj, opening, assumptions, DefaultSolverIterations)

		assert.False(t, sol.ClosingDebt.IsNegative())
		assert.True(t, sol.ClosingCash.GreaterThanOrEqual(assumptions.MinimumCash))
	})
}

package finance

import (
	"github.com/corpfin/backend/internal/domain/shared/decimalmath"
	"github.com/shopspring/decimal"
)

// DefaultSolverIterations is the fixed-point iteration count for the
// interest/debt/cash circularity. Five rounds bring the average-balance
// interest charge well inside the balance-check tolerance for realistic
// rate levels; the loop never tests convergence.
const DefaultSolverIterations = 5

// FinancingSolution is the resolved financing picture for one year:
// the circular quantities (interest, taxes, net income, dividends) plus
// the cash sweep against the revolver and scheduled amortization.
type FinancingSolution struct {
	InterestExpense decimal.Decimal
	EBT             decimal.Decimal
	Taxes           decimal.Decimal
	NetIncome       decimal.Decimal
	Dividends       decimal.Decimal

	CashFromOperations decimal.Decimal

	ScheduledRepayment decimal.Decimal
	ExtraPaydown       decimal.Decimal
	TotalRepayment     decimal.Decimal
	NewDebt            decimal.Decimal

	ClosingDebt decimal.Decimal
	ClosingCash decimal.Decimal
}

// SolveFinancing resolves the circular dependency between interest
// expense, closing debt and closing cash. Interest is charged on the
// average of opening and closing debt, but closing debt depends on the
// cash available after interest, so the solver iterates: each round
// recomputes the year with the current interest estimate, then refreshes
// the estimate from the resulting closing debt. After the fixed number
// of rounds one final pass produces the reported figures, so the
// returned interest is always consistent with the returned debt path.
func SolveFinancing(proj PeriodProjection, opening PeriodState, a ModelAssumptions, iterations int) FinancingSolution {
	if iterations <= 0 {
		iterations = DefaultSolverIterations
	}

	scheduled := opening.TotalDebt.Mul(a.DebtRepaymentPct)
	interest := opening.TotalDebt.Mul(a.InterestRate)

	for i := 0; i < iterations; i++ {
		pass := financingPass(proj, opening, a, scheduled, interest)
		interest = decimalmath.Average(opening.TotalDebt, pass.ClosingDebt).Mul(a.InterestRate)
	}

	return financingPass(proj, opening, a, scheduled, interest)
}

// financingPass computes one year of financing with interest held fixed.
//
// Order matters: taxes are charged only on positive pre-tax income,
// dividends only on positive net income, and the revolver tops cash up
// to exactly the minimum balance. Surplus cash above the minimum pays
// debt down early, but never beyond what remains after the scheduled
// repayment, and debt never goes negative.
func financingPass(proj PeriodProjection, opening PeriodState, a ModelAssumptions, scheduled, interest decimal.Decimal) FinancingSolution {
	ebt := proj.EBIT.Sub(interest)
	taxes := decimal.Max(decimal.Zero, ebt).Mul(a.TaxRate)
	netIncome := ebt.Sub(taxes)
	dividends := decimal.Max(decimal.Zero, netIncome).Mul(a.DividendPayoutPct)

	cfo := netIncome.
		Add(proj.Depreciation).
		Sub(proj.DeltaReceivables).
		Sub(proj.DeltaInventory).
		Add(proj.DeltaPayables)

	preliminaryCash := opening.Cash.
		Add(cfo).
		Sub(proj.Capex).
		Sub(scheduled).
		Sub(dividends)

	var newDebt, extraPaydown decimal.Decimal
	if preliminaryCash.LessThan(a.MinimumCash) {
		newDebt = a.MinimumCash.Sub(preliminaryCash)
	} else {
		surplus := preliminaryCash.Sub(a.MinimumCash)
		capacity := decimal.Max(decimal.Zero, opening.TotalDebt.Sub(scheduled))
		extraPaydown = decimal.Min(surplus, capacity)
	}

	closingDebt := decimal.Max(decimal.Zero,
		opening.TotalDebt.Sub(scheduled).Sub(extraPaydown).Add(newDebt))
	closingCash := preliminaryCash.Sub(extraPaydown).Add(newDebt)

	return FinancingSolution{
		InterestExpense: interest,
		EBT:             ebt,
		Taxes:           taxes,
		NetIncome:       netIncome,
		Dividends:       dividends,

		CashFromOperations: cfo,

		ScheduledRepayment: scheduled,
		ExtraPaydown:       extraPaydown,
		TotalRepayment:     scheduled.Add(extraPaydown),
		NewDebt:            newDebt,

		ClosingDebt: closingDebt,
		ClosingCash: closingCash,
	}
}

package finance

import (
	"github.com/corpfin/backend/internal/domain/shared/decimalmath"
	"github.com/shopspring/decimal"
)

// AssemblePeriod folds one year's projection and financing solution into
// the three statements and the closing state the next year opens from.
//
// The balance sheet's cash and the cash flow statement's ending cash are
// both the solver's closing cash, never re-derived, so the statements
// cannot drift apart. Equity rolls forward with retained earnings only;
// no share issuance or buybacks are modeled.
func AssemblePeriod(year int, opening PeriodState, proj PeriodProjection, sol FinancingSolution, a ModelAssumptions) (IncomeStatement, BalanceSheet, CashFlowStatement, PeriodState) {
	income := IncomeStatement{
		Year: year,

		Revenue:     proj.Revenue,
		COGS:        proj.COGS,
		GrossProfit: proj.GrossProfit,
		SGA:         proj.SGA,
		RD:          proj.RD,
		EBITDA:      proj.EBITDA,

		Depreciation:    proj.Depreciation,
		EBIT:            proj.EBIT,
		InterestExpense: sol.InterestExpense,
		EBT:             sol.EBT,
		Taxes:           sol.Taxes,
		NetIncome:       sol.NetIncome,

		GrossMargin:     decimalmath.SafeDiv(proj.GrossProfit, proj.Revenue),
		EBITDAMargin:    decimalmath.SafeDiv(proj.EBITDA, proj.Revenue),
		OperatingMargin: decimalmath.SafeDiv(proj.EBIT, proj.Revenue),
		NetMargin:       decimalmath.SafeDiv(sol.NetIncome, proj.Revenue),
	}

	// Current portion of debt is next year's scheduled amortization,
	// capped at the debt actually outstanding.
	currentDebt := decimal.Min(sol.ClosingDebt.Mul(a.DebtRepaymentPct), sol.ClosingDebt)
	longTermDebt := sol.ClosingDebt.Sub(currentDebt)

	equity := opening.ShareholdersEquity.Add(sol.NetIncome).Sub(sol.Dividends)
	retained := opening.RetainedEarnings.Add(sol.NetIncome).Sub(sol.Dividends)

	currentAssets := sol.ClosingCash.Add(proj.Receivables).Add(proj.Inventory)
	totalAssets := currentAssets.Add(proj.ClosingNetPPE)
	totalLiabilities := proj.Payables.Add(sol.ClosingDebt)

	balance := BalanceSheet{
		Year: year,

		Cash:               sol.ClosingCash,
		Receivables:        proj.Receivables,
		Inventory:          proj.Inventory,
		TotalCurrentAssets: currentAssets,
		NetPPE:             proj.ClosingNetPPE,
		TotalAssets:        totalAssets,

		Payables:         proj.Payables,
		CurrentDebt:      currentDebt,
		LongTermDebt:     longTermDebt,
		TotalDebt:        sol.ClosingDebt,
		TotalLiabilities: totalLiabilities,

		ShareholdersEquity: equity,
		RetainedEarnings:   retained,

		TotalLiabilitiesAndEquity: totalLiabilities.Add(equity),
	}

	cashFromInvesting := proj.Capex.Neg()
	cashFromFinancing := sol.NewDebt.Sub(sol.TotalRepayment).Sub(sol.Dividends)
	freeCashFlow := sol.CashFromOperations.Sub(proj.Capex)

	cashFlow := CashFlowStatement{
		Year: year,

		NetIncome:           sol.NetIncome,
		Depreciation:        proj.Depreciation,
		ChangeInReceivables: proj.DeltaReceivables,
		ChangeInInventory:   proj.DeltaInventory,
		ChangeInPayables:    proj.DeltaPayables,
		CashFromOperations:  sol.CashFromOperations,

		Capex:             proj.Capex,
		CashFromInvesting: cashFromInvesting,

		NewDebt:           sol.NewDebt,
		DebtRepayment:     sol.TotalRepayment,
		Dividends:         sol.Dividends,
		CashFromFinancing: cashFromFinancing,

		NetChangeInCash: sol.CashFromOperations.Add(cashFromInvesting).Add(cashFromFinancing),
		OpeningCash:     opening.Cash,
		EndingCash:      sol.ClosingCash,

		FreeCashFlow:         freeCashFlow,
		FreeCashFlowToEquity: freeCashFlow.Sub(sol.TotalRepayment).Add(sol.NewDebt),
	}

	closing := PeriodState{
		Revenue:            proj.Revenue,
		Receivables:        proj.Receivables,
		Inventory:          proj.Inventory,
		Payables:           proj.Payables,
		NetPPE:             proj.ClosingNetPPE,
		TotalDebt:          sol.ClosingDebt,
		Cash:               sol.ClosingCash,
		ShareholdersEquity: equity,
		RetainedEarnings:   retained,
	}

	return income, balance, cashFlow, closing
}

package finance

import "github.com/shopspring/decimal"

// IncomeStatement is one projected year's P&L, revenue through net
// income, with the margin ratios analysts read first.
type IncomeStatement struct {
	Year int `json:"year"`

	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	SGA         decimal.Decimal `json:"sga"`
	RD          decimal.Decimal `json:"rd"`
	EBITDA      decimal.Decimal `json:"ebitda"`

	Depreciation    decimal.Decimal `json:"depreciation"`
	EBIT            decimal.Decimal `json:"ebit"`
	InterestExpense decimal.Decimal `json:"interest_expense"`
	EBT             decimal.Decimal `json:"ebt"`
	Taxes           decimal.Decimal `json:"taxes"`
	NetIncome       decimal.Decimal `json:"net_income"`

	GrossMargin     decimal.Decimal `json:"gross_margin"`
	EBITDAMargin    decimal.Decimal `json:"ebitda_margin"`
	OperatingMargin decimal.Decimal `json:"operating_margin"`
	NetMargin       decimal.Decimal `json:"net_margin"`
}

// BalanceSheet is one projected year's closing position. Total debt is
// split into a current portion (next year's scheduled repayment) and the
// long-term remainder.
type BalanceSheet struct {
	Year int `json:"year"`

	Cash               decimal.Decimal `json:"cash"`
	Receivables        decimal.Decimal `json:"receivables"`
	Inventory          decimal.Decimal `json:"inventory"`
	TotalCurrentAssets decimal.Decimal `json:"total_current_assets"`
	NetPPE             decimal.Decimal `json:"net_ppe"`
	TotalAssets        decimal.Decimal `json:"total_assets"`

	Payables         decimal.Decimal `json:"payables"`
	CurrentDebt      decimal.Decimal `json:"current_debt"`
	LongTermDebt     decimal.Decimal `json:"long_term_debt"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`

	ShareholdersEquity decimal.Decimal `json:"shareholders_equity"`
	RetainedEarnings   decimal.Decimal `json:"retained_earnings"`

	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
}

// CashFlowStatement is one projected year's cash reconciliation across
// the operating, investing and financing sections, plus the free cash
// flow measures derived from them. Working-capital changes are recorded
// as balance deltas (positive when the balance grew).
type CashFlowStatement struct {
	Year int `json:"year"`

	NetIncome           decimal.Decimal `json:"net_income"`
	Depreciation        decimal.Decimal `json:"depreciation"`
	ChangeInReceivables decimal.Decimal `json:"change_in_receivables"`
	ChangeInInventory   decimal.Decimal `json:"change_in_inventory"`
	ChangeInPayables    decimal.Decimal `json:"change_in_payables"`
	CashFromOperations  decimal.Decimal `json:"cash_from_operations"`

	Capex             decimal.Decimal `json:"capex"`
	CashFromInvesting decimal.Decimal `json:"cash_from_investing"`

	NewDebt           decimal.Decimal `json:"new_debt"`
	DebtRepayment     decimal.Decimal `json:"debt_repayment"`
	Dividends         decimal.Decimal `json:"dividends"`
	CashFromFinancing decimal.Decimal `json:"cash_from_financing"`

	NetChangeInCash decimal.Decimal `json:"net_change_in_cash"`
	OpeningCash     decimal.Decimal `json:"opening_cash"`
	EndingCash      decimal.Decimal `json:"ending_cash"`

	FreeCashFlow         decimal.Decimal `json:"free_cash_flow"`
	FreeCashFlowToEquity decimal.Decimal `json:"free_cash_flow_to_equity"`
}

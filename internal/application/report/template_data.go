package report

import (
	"fmt"
	"time"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	"github.com/corpfin/backend/internal/domain/finance"
	"github.com/corpfin/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// ReportData is the payload bound to the projection report template.
// Statement figures stay decimals so the template's formatting functions
// control presentation; summary cards are preformatted.
type ReportData struct {
	Title        string
	Subtitle     string
	RunID        string
	GeneratedAt  string
	Years        int
	PeriodLabels []string
	Summary      []SummaryCard
	Statements   []StatementTable
	Warnings     []WarningView
	Methodology  string
}

// SummaryCard is one headline metric shown above the statements
type SummaryCard struct {
	Label string
	Value string
}

// StatementTable is one statement rendered as a year-by-year table
type StatementTable struct {
	Title      string
	LineHeader string
	Rows       []StatementRow
}

// StatementRow is one line item across all projected years
type StatementRow struct {
	Label  string
	Indent bool
	Total  bool
	Values []decimal.Decimal
}

// WarningView is a diagnostic finding formatted for the report
type WarningView struct {
	Code     string
	Message  string
	Critical bool
}

// DefaultReportTitle is used when the caller does not name the report
const DefaultReportTitle = "Three-Statement Projection"

// BuildReportData converts a projection into the template payload
func BuildReportData(resp *financeapp.ProjectionResponse, opts report.RenderOptions) ReportData {
	years := len(resp.IncomeStatements)

	title := opts.Title
	if title == "" {
		title = DefaultReportTitle
	}

	data := ReportData{
		Title:        title,
		Subtitle:     fmt.Sprintf("Linked income statement, balance sheet and cash flow over %d years", years),
		RunID:        resp.RunID,
		GeneratedAt:  time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		Years:        years,
		PeriodLabels: periodLabels(years),
		Summary:      summaryCards(resp.Summary),
		Statements: []StatementTable{
			incomeStatementTable(resp.IncomeStatements),
			balanceSheetTable(resp.BalanceSheets),
			cashFlowTable(resp.CashFlowStatements),
		},
		Methodology: resp.Methodology,
	}

	if opts.IncludeDiagnostics {
		data.Warnings = warningViews(resp.Warnings)
	}

	return data
}

func periodLabels(years int) []string {
	labels := make([]string, years)
	for i := 0; i < years; i++ {
		labels[i] = fmt.Sprintf("Year %d", i+1)
	}
	return labels
}

func summaryCards(s finance.ProjectionSummary) []SummaryCard {
	return []SummaryCard{
		{Label: "Revenue CAGR", Value: formatPercent(s.RevenueCAGR)},
		{Label: "Avg EBITDA Margin", Value: formatPercent(s.AverageEBITDAMargin)},
		{Label: "Avg Net Margin", Value: formatPercent(s.AverageNetMargin)},
		{Label: "Ending Leverage", Value: s.EndingLeverage.StringFixed(2) + "x"},
		{Label: "Cumulative FCF", Value: formatMoney(s.CumulativeFreeCashFlow)},
		{Label: "Ending Cash", Value: formatMoney(s.EndingCash)},
		{Label: "Ending Debt", Value: formatMoney(s.EndingDebt)},
	}
}

func incomeStatementTable(incomes []finance.IncomeStatement) StatementTable {
	rows := []StatementRow{
		{Label: "Revenue", Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.Revenue })},
		{Label: "Cost of Goods Sold", Indent: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.COGS })},
		{Label: "Gross Profit", Total: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.GrossProfit })},
		{Label: "SG&A", Indent: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.SGA })},
		{Label: "R&D", Indent: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.RD })},
		{Label: "EBITDA", Total: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.EBITDA })},
		{Label: "Depreciation", Indent: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.Depreciation })},
		{Label: "EBIT", Total: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.EBIT })},
		{Label: "Interest Expense", Indent: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.InterestExpense })},
		{Label: "Pre-Tax Income", Total: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.EBT })},
		{Label: "Taxes", Indent: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.Taxes })},
		{Label: "Net Income", Total: true, Values: pick(incomes, func(s finance.IncomeStatement) decimal.Decimal { return s.NetIncome })},
	}
	return StatementTable{Title: "Income Statement", LineHeader: "Line Item", Rows: rows}
}

func balanceSheetTable(balances []finance.BalanceSheet) StatementTable {
	rows := []StatementRow{
		{Label: "Cash", Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.Cash })},
		{Label: "Receivables", Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.Receivables })},
		{Label: "Inventory", Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.Inventory })},
		{Label: "Total Current Assets", Total: true, Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.TotalCurrentAssets })},
		{Label: "Net PP&E", Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.NetPPE })},
		{Label: "Total Assets", Total: true, Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.TotalAssets })},
		{Label: "Payables", Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.Payables })},
		{Label: "Current Portion of Debt", Indent: true, Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.CurrentDebt })},
		{Label: "Long-Term Debt", Indent: true, Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.LongTermDebt })},
		{Label: "Total Liabilities", Total: true, Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.TotalLiabilities })},
		{Label: "Shareholders' Equity", Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.ShareholdersEquity })},
		{Label: "Total Liabilities & Equity", Total: true, Values: pick(balances, func(s finance.BalanceSheet) decimal.Decimal { return s.TotalLiabilitiesAndEquity })},
	}
	return StatementTable{Title: "Balance Sheet", LineHeader: "Position", Rows: rows}
}

func cashFlowTable(cashFlows []finance.CashFlowStatement) StatementTable {
	rows := []StatementRow{
		{Label: "Net Income", Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.NetIncome })},
		{Label: "Depreciation", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.Depreciation })},
		{Label: "Change in Receivables", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.ChangeInReceivables })},
		{Label: "Change in Inventory", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.ChangeInInventory })},
		{Label: "Change in Payables", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.ChangeInPayables })},
		{Label: "Cash from Operations", Total: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.CashFromOperations })},
		{Label: "Capital Expenditure", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.Capex })},
		{Label: "Cash from Investing", Total: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.CashFromInvesting })},
		{Label: "New Debt Drawn", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.NewDebt })},
		{Label: "Debt Repayment", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.DebtRepayment })},
		{Label: "Dividends Paid", Indent: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.Dividends })},
		{Label: "Cash from Financing", Total: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.CashFromFinancing })},
		{Label: "Net Change in Cash", Total: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.NetChangeInCash })},
		{Label: "Ending Cash", Total: true, Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.EndingCash })},
		{Label: "Free Cash Flow", Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.FreeCashFlow })},
		{Label: "Free Cash Flow to Equity", Values: pick(cashFlows, func(s finance.CashFlowStatement) decimal.Decimal { return s.FreeCashFlowToEquity })},
	}
	return StatementTable{Title: "Cash Flow Statement", LineHeader: "Flow", Rows: rows}
}

func warningViews(warnings []finance.Warning) []WarningView {
	views := make([]WarningView, len(warnings))
	for i, w := range warnings {
		views[i] = WarningView{
			Code:     fmt.Sprintf("%s (Year %d)", w.Code, w.Year),
			Message:  w.Message,
			Critical: w.Severity == finance.SeverityCritical,
		}
	}
	return views
}

// pick projects one field of each statement into a values slice
func pick[T any](statements []T, field func(T) decimal.Decimal) []decimal.Decimal {
	values := make([]decimal.Decimal, len(statements))
	for i, s := range statements {
		values[i] = field(s)
	}
	return values
}

var hundred = decimal.NewFromInt(100)

func formatPercent(v decimal.Decimal) string {
	return v.Mul(hundred).StringFixed(1) + "%"
}

func formatMoney(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-$" + v.Abs().StringFixed(0)
	}
	return "$" + v.StringFixed(0)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	financeapp "github.com/corpfin/backend/internal/application/finance"
)

var hundred = decimal.NewFromInt(100)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printProjection renders the three statements, the summary and any
// diagnostics as fixed-width tables.
func printProjection(w io.Writer, scenario *financeapp.Scenario, resp *financeapp.ProjectionResponse) {
	if scenario.Name != "" {
		fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
	}
	fmt.Fprintf(w, "Run:      %s\n", resp.RunID)
	fmt.Fprintf(w, "Solver:   %s\n", resp.Methodology)

	printIncomeStatements(w, resp)
	printBalanceSheets(w, resp)
	printCashFlows(w, resp)
	printSummary(w, resp)
	printWarnings(w, resp)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
}

func printIncomeStatements(w io.Writer, resp *financeapp.ProjectionResponse) {
	fmt.Fprintln(w, "\nINCOME STATEMENT")
	tw := newTable(w)
	fmt.Fprintln(tw, "Year\tRevenue\tEBITDA\tEBIT\tInterest\tNet Income\tNet Margin\t")
	for i := range resp.IncomeStatements {
		is := &resp.IncomeStatements[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			is.Year, money(is.Revenue), money(is.EBITDA), money(is.EBIT),
			money(is.InterestExpense), money(is.NetIncome), percent(is.NetMargin))
	}
	tw.Flush()
}

func printBalanceSheets(w io.Writer, resp *financeapp.ProjectionResponse) {
	fmt.Fprintln(w, "\nBALANCE SHEET")
	tw := newTable(w)
	fmt.Fprintln(tw, "Year\tCash\tTotal Assets\tTotal Debt\tEquity\tCheck\t")
	for i := range resp.BalanceSheets {
		bs := &resp.BalanceSheets[i]
		// Check is assets minus liabilities and equity, zero when articulated.
		diff := bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			bs.Year, money(bs.Cash), money(bs.TotalAssets), money(bs.TotalDebt),
			money(bs.ShareholdersEquity), money(diff))
	}
	tw.Flush()
}

func printCashFlows(w io.Writer, resp *financeapp.ProjectionResponse) {
	fmt.Fprintln(w, "\nCASH FLOW")
	tw := newTable(w)
	fmt.Fprintln(tw, "Year\tCFO\tCapex\tCFF\tNet Change\tEnding Cash\tFCF\t")
	for i := range resp.CashFlowStatements {
		cf := &resp.CashFlowStatements[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			cf.Year, money(cf.CashFromOperations), money(cf.Capex), money(cf.CashFromFinancing),
			money(cf.NetChangeInCash), money(cf.EndingCash), money(cf.FreeCashFlow))
	}
	tw.Flush()
}

func printSummary(w io.Writer, resp *financeapp.ProjectionResponse) {
	s := resp.Summary
	fmt.Fprintln(w, "\nSUMMARY")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Revenue CAGR\t%s\n", percent(s.RevenueCAGR))
	fmt.Fprintf(tw, "Avg EBITDA margin\t%s\n", percent(s.AverageEBITDAMargin))
	fmt.Fprintf(tw, "Avg net margin\t%s\n", percent(s.AverageNetMargin))
	fmt.Fprintf(tw, "Ending leverage\t%sx\n", s.EndingLeverage.StringFixed(2))
	fmt.Fprintf(tw, "Cumulative FCF\t%s\n", money(s.CumulativeFreeCashFlow))
	fmt.Fprintf(tw, "Ending cash\t%s\n", money(s.EndingCash))
	fmt.Fprintf(tw, "Ending debt\t%s\n", money(s.EndingDebt))
	tw.Flush()
}

func printWarnings(w io.Writer, resp *financeapp.ProjectionResponse) {
	if len(resp.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\nDIAGNOSTICS (%d)\n", len(resp.Warnings))
	for _, warn := range resp.Warnings {
		fmt.Fprintf(w, "  [%s] year %d %s: %s\n", warn.Severity, warn.Year, warn.Code, warn.Message)
	}
}

// money formats a monetary amount with two decimal places.
func money(d decimal.Decimal) string { return d.StringFixed(2) }

// percent formats a ratio as a percentage with one decimal place.
func percent(d decimal.Decimal) string { return d.Mul(hundred).StringFixed(1) + "%" }

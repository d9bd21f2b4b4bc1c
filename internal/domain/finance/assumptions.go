package finance

import (
	"fmt"

	"github.com/corpfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ModelAssumptions holds the full assumption set for one projection run.
// One instance drives every projected year; it is never mutated after
// validation. All percentages are plain ratios (0.60 means 60%).
type ModelAssumptions struct {
	// GrowthRates carries one revenue growth rate per projected year.
	// Its length defines the projection horizon.
	GrowthRates []decimal.Decimal `json:"growth_rates"`

	// Cost structure as a share of revenue.
	COGSPct decimal.Decimal `json:"cogs_pct"`
	SGAPct  decimal.Decimal `json:"sga_pct"`
	RDPct   decimal.Decimal `json:"rd_pct"`

	// DepreciationPct is applied to opening net PP&E each year.
	DepreciationPct decimal.Decimal `json:"depreciation_pct"`

	InterestRate decimal.Decimal `json:"interest_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`

	// Working-capital day counts (converted with a 365-day year).
	DSODays decimal.Decimal `json:"dso_days"`
	DIODays decimal.Decimal `json:"dio_days"`
	DPODays decimal.Decimal `json:"dpo_days"`

	// CapexPct is applied to the year's revenue.
	CapexPct decimal.Decimal `json:"capex_pct"`

	// DebtRepaymentPct sets the mandatory amortization of opening debt.
	DebtRepaymentPct decimal.Decimal `json:"debt_repayment_pct"`

	// DividendPayoutPct is applied to positive net income.
	DividendPayoutPct decimal.Decimal `json:"dividend_payout_pct"`

	// MinimumCash is the floor below which the revolver draws.
	MinimumCash decimal.Decimal `json:"minimum_cash"`
}

// Years returns the projection horizon implied by the growth-rate vector.
func (a ModelAssumptions) Years() int {
	return len(a.GrowthRates)
}

var one = decimal.NewFromInt(1)

// Validate checks every assumption before any projection runs. Rates
// (growth rates included) must lie in [0,1], day counts and the minimum
// cash floor must be non-negative, and the cost structure must not exceed
// revenue. The first violation is returned; nothing is projected on error.
func (a ModelAssumptions) Validate() error {
	if len(a.GrowthRates) == 0 {
		return shared.NewInvalidInput("growth_rates", "at least one projection year is required")
	}
	for i, g := range a.GrowthRates {
		if !isRate(g) {
			return shared.NewInvalidInput(fmt.Sprintf("growth_rates[%d]", i), "must be between 0 and 1")
		}
	}

	rates := []struct {
		field string
		value decimal.Decimal
	}{
		{"cogs_pct", a.COGSPct},
		{"sga_pct", a.SGAPct},
		{"rd_pct", a.RDPct},
		{"depreciation_pct", a.DepreciationPct},
		{"interest_rate", a.InterestRate},
		{"tax_rate", a.TaxRate},
		{"capex_pct", a.CapexPct},
		{"debt_repayment_pct", a.DebtRepaymentPct},
		{"dividend_payout_pct", a.DividendPayoutPct},
	}
	for _, r := range rates {
		if !isRate(r.value) {
			return shared.NewInvalidInput(r.field, "must be between 0 and 1")
		}
	}

	days := []struct {
		field string
		value decimal.Decimal
	}{
		{"dso_days", a.DSODays},
		{"dio_days", a.DIODays},
		{"dpo_days", a.DPODays},
	}
	for _, d := range days {
		if d.value.IsNegative() {
			return shared.NewInvalidInput(d.field, "must not be negative")
		}
	}

	if a.MinimumCash.IsNegative() {
		return shared.NewInvalidInput("minimum_cash", "must not be negative")
	}

	costShare := a.COGSPct.Add(a.SGAPct).Add(a.RDPct)
	if costShare.GreaterThan(one) {
		return shared.NewFinancialImpossibility(
			fmt.Sprintf("cogs_pct + sga_pct + rd_pct consume %s of revenue; the cost structure cannot exceed 100%%",
				costShare.StringFixed(4)))
	}

	return nil
}

// isRate reports whether v is a valid percentage in [0,1].
func isRate(v decimal.Decimal) bool {
	return !v.IsNegative() && !v.GreaterThan(one)
}

package testutil

import (
	"github.com/shopspring/decimal"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	"github.com/corpfin/backend/internal/domain/finance"
)

// BaseYearFixture returns an audited base-year position whose balance sheet
// articulates: assets of 810000 against liabilities and equity of 810000.
func BaseYearFixture() finance.BaseYear {
	return finance.BaseYear{
		Revenue:            Dec(1000000),
		Receivables:        Dec(120000),
		Inventory:          Dec(90000),
		Payables:           Dec(70000),
		NetPPE:             Dec(400000),
		TotalDebt:          Dec(300000),
		ShareholdersEquity: Dec(440000),
		Cash:               Dec(200000),
	}
}

// AssumptionsFixture returns a moderate-growth assumption set. The growth
// vector defaults to three years when none is given; its length sets the
// projection horizon.
func AssumptionsFixture(growthRates ...float64) finance.ModelAssumptions {
	if len(growthRates) == 0 {
		growthRates = []float64{0.08, 0.07, 0.06}
	}
	rates := make([]decimal.Decimal, len(growthRates))
	for i, g := range growthRates {
		rates[i] = decimal.NewFromFloat(g)
	}

	return finance.ModelAssumptions{
		GrowthRates:       rates,
		COGSPct:           Dec(0.55),
		SGAPct:            Dec(0.18),
		RDPct:             Dec(0.04),
		DepreciationPct:   Dec(0.10),
		InterestRate:      Dec(0.06),
		TaxRate:           Dec(0.25),
		DSODays:           Dec(45),
		DIODays:           Dec(38),
		DPODays:           Dec(30),
		CapexPct:          Dec(0.07),
		DebtRepaymentPct:  Dec(0.10),
		DividendPayoutPct: Dec(0.30),
		MinimumCash:       Dec(50000),
	}
}

// ProjectionRequest assembles a complete valid projection request.
func ProjectionRequest(growthRates ...float64) financeapp.RunProjectionRequest {
	return financeapp.RunProjectionRequest{
		BaseYear:    BaseYearFixture(),
		Assumptions: AssumptionsFixture(growthRates...),
	}
}

// Dec converts a float to a decimal for fixture literals.
func Dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

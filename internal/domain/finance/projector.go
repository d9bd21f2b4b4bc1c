package finance

import "github.com/shopspring/decimal"

var daysPerYear = decimal.NewFromInt(365)

// PeriodProjection holds everything about one projected year that does
// not depend on financing: the operating P&L down to EBIT, the closing
// working-capital levels with their year-over-year deltas, and capex.
// Interest, taxes and the cash sweep are resolved afterwards by the
// financing solver.
type PeriodProjection struct {
	Revenue      decimal.Decimal
	COGS         decimal.Decimal
	GrossProfit  decimal.Decimal
	SGA          decimal.Decimal
	RD           decimal.Decimal
	EBITDA       decimal.Decimal
	Depreciation decimal.Decimal
	EBIT         decimal.Decimal

	// Closing working-capital levels.
	Receivables decimal.Decimal
	Inventory   decimal.Decimal
	Payables    decimal.Decimal

	// Deltas against the opening position; positive means the balance grew.
	DeltaReceivables decimal.Decimal
	DeltaInventory   decimal.Decimal
	DeltaPayables    decimal.Decimal

	Capex         decimal.Decimal
	ClosingNetPPE decimal.Decimal
}

// ProjectPeriod derives one year's operating results from the opening
// state and the year's growth rate. Working capital follows the day-count
// conventions: receivables from revenue via DSO, inventory and payables
// from COGS via DIO and DPO. Depreciation is charged on opening net PP&E
// and capex is reinvested before the closing PP&E balance is struck.
func ProjectPeriod(opening PeriodState, a ModelAssumptions, growth decimal.Decimal) PeriodProjection {
	revenue := opening.Revenue.Mul(one.Add(growth))

	cogs := revenue.Mul(a.COGSPct)
	sga := revenue.Mul(a.SGAPct)
	rd := revenue.Mul(a.RDPct)

	grossProfit := revenue.Sub(cogs)
	ebitda := grossProfit.Sub(sga).Sub(rd)

	depreciation := opening.NetPPE.Mul(a.DepreciationPct)
	ebit := ebitda.Sub(depreciation)

	receivables := revenue.Mul(a.DSODays).Div(daysPerYear)
	inventory := cogs.Mul(a.DIODays).Div(daysPerYear)
	payables := cogs.Mul(a.DPODays).Div(daysPerYear)

	capex := revenue.Mul(a.CapexPct)

	return PeriodProjection{
		Revenue:      revenue,
		COGS:         cogs,
		GrossProfit:  grossProfit,
		SGA:          sga,
		RD:           rd,
		EBITDA:       ebitda,
		Depreciation: depreciation,
		EBIT:         ebit,

		Receivables:      receivables,
		Inventory:        inventory,
		Payables:         payables,
		DeltaReceivables: receivables.Sub(opening.Receivables),
		DeltaInventory:   inventory.Sub(opening.Inventory),
		DeltaPayables:    payables.Sub(opening.Payables),

		Capex:         capex,
		ClosingNetPPE: opening.NetPPE.Add(capex).Sub(depreciation),
	}
}

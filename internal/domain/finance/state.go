package finance

import (
	"github.com/corpfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BaseYear is the actual (year 0) financial position the projection
// rolls forward from. Balances are reported levels, not deltas.
type BaseYear struct {
	Revenue            decimal.Decimal `json:"revenue"`
	Receivables        decimal.Decimal `json:"receivables"`
	Inventory          decimal.Decimal `json:"inventory"`
	Payables           decimal.Decimal `json:"payables"`
	NetPPE             decimal.Decimal `json:"net_ppe"`
	TotalDebt          decimal.Decimal `json:"total_debt"`
	ShareholdersEquity decimal.Decimal `json:"shareholders_equity"`
	Cash               decimal.Decimal `json:"cash"`
}

// Validate rejects negative base balances. A projection can drive a
// balance negative on its own, but it never starts from one.
func (b BaseYear) Validate() error {
	balances := []struct {
		field string
		value decimal.Decimal
	}{
		{"revenue", b.Revenue},
		{"receivables", b.Receivables},
		{"inventory", b.Inventory},
		{"payables", b.Payables},
		{"net_ppe", b.NetPPE},
		{"total_debt", b.TotalDebt},
		{"shareholders_equity", b.ShareholdersEquity},
		{"cash", b.Cash},
	}
	for _, bal := range balances {
		if bal.value.IsNegative() {
			return shared.NewInvalidInput(bal.field, "must not be negative")
		}
	}
	return nil
}

// PeriodState is the closing position of one period, which becomes the
// opening position of the next. The projection loop threads a single
// PeriodState value through all years.
type PeriodState struct {
	Revenue            decimal.Decimal
	Receivables        decimal.Decimal
	Inventory          decimal.Decimal
	Payables           decimal.Decimal
	NetPPE             decimal.Decimal
	TotalDebt          decimal.Decimal
	Cash               decimal.Decimal
	ShareholdersEquity decimal.Decimal

	// RetainedEarnings accumulates projected net income less dividends,
	// starting from zero at the base year.
	RetainedEarnings decimal.Decimal
}

// NewPeriodState seeds the projection state from the base year.
func NewPeriodState(base BaseYear) PeriodState {
	return PeriodState{
		Revenue:            base.Revenue,
		Receivables:        base.Receivables,
		Inventory:          base.Inventory,
		Payables:           base.Payables,
		NetPPE:             base.NetPPE,
		TotalDebt:          base.TotalDebt,
		Cash:               base.Cash,
		ShareholdersEquity: base.ShareholdersEquity,
		RetainedEarnings:   decimal.Zero,
	}
}

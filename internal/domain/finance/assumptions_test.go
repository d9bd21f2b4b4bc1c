package finance

import (
	"testing"

	"github.com/corpfin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDomainError(t *testing.T, err error) *shared.DomainError {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr
}

func TestModelAssumptions_Validate(t *testing.T) {
	t.Run("accepts a complete assumption set", func(t *testing.T) {
		assert.NoError(t, steadyAssumptions(3, 0.05).Validate())
	})

	t.Run("accepts boundary rates", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 1.0)
		assumptions.TaxRate = decimal.Zero
		assumptions.DividendPayoutPct = decimal.NewFromInt(1)
		assumptions.DSODays = decimal.Zero

		assert.NoError(t, assumptions.Validate())
	})

	t.Run("accepts a cost structure of exactly 100 percent", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.COGSPct = decimal.NewFromFloat(0.70)
		assumptions.SGAPct = decimal.NewFromFloat(0.20)
		assumptions.RDPct = decimal.NewFromFloat(0.10)

		assert.NoError(t, assumptions.Validate())
	})

	t.Run("rejects an empty growth vector", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.GrowthRates = []decimal.Decimal{}

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		assert.Equal(t, "growth_rates", domainErr.Field)
	})

	t.Run("rejects negative growth", func(t *testing.T) {
		assumptions := steadyAssumptions(3, 0.05)
		assumptions.GrowthRates[2] = decimal.NewFromFloat(-0.10)

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "growth_rates[2]", domainErr.Field)
	})

	t.Run("rejects a percentage above one", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.TaxRate = decimal.NewFromFloat(1.2)

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		assert.Equal(t, "tax_rate", domainErr.Field)
	})

	t.Run("rejects a negative percentage", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.CapexPct = decimal.NewFromFloat(-0.01)

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "capex_pct", domainErr.Field)
	})

	t.Run("rejects a negative day count", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.DPODays = decimal.NewFromInt(-5)

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "dpo_days", domainErr.Field)
	})

	t.Run("rejects negative minimum cash", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.MinimumCash = decimal.NewFromInt(-1)

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "minimum_cash", domainErr.Field)
	})

	t.Run("rejects a cost structure above revenue", func(t *testing.T) {
		assumptions := steadyAssumptions(1, 0.05)
		assumptions.COGSPct = decimal.NewFromFloat(0.60)
		assumptions.SGAPct = decimal.NewFromFloat(0.30)
		assumptions.RDPct = decimal.NewFromFloat(0.20)

		domainErr := requireDomainError(t, assumptions.Validate())
		assert.Equal(t, "FINANCIAL_IMPOSSIBILITY", domainErr.Code)
		assert.Empty(t, domainErr.Field)
	})
}

func TestModelAssumptions_Years(t *testing.T) {
	assert.Equal(t, 0, ModelAssumptions{}.Years())
	assert.Equal(t, 4, steadyAssumptions(4, 0.05).Years())
}

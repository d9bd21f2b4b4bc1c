package finance

import (
	"fmt"
	"io"
	"os"

	"github.com/corpfin/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Scenario is the YAML form of a projection request, used by the CLI. Field
// names mirror the HTTP request DTO. Numbers decode as float64 and are
// converted to decimals before the model sees them; scenario files carry
// human-scale figures where float64 round-trips exactly.
type Scenario struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	BaseYear    ScenarioBaseYear    `yaml:"base_year"`
	Assumptions ScenarioAssumptions `yaml:"assumptions"`
}

// ScenarioBaseYear is the YAML form of the audited base-year snapshot
type ScenarioBaseYear struct {
	Revenue            float64 `yaml:"revenue"`
	Receivables        float64 `yaml:"receivables"`
	Inventory          float64 `yaml:"inventory"`
	Payables           float64 `yaml:"payables"`
	NetPPE             float64 `yaml:"net_ppe"`
	TotalDebt          float64 `yaml:"total_debt"`
	ShareholdersEquity float64 `yaml:"shareholders_equity"`
	Cash               float64 `yaml:"cash"`
}

// ScenarioAssumptions is the YAML form of the assumption set
type ScenarioAssumptions struct {
	GrowthRates       []float64 `yaml:"growth_rates"`
	COGSPct           float64   `yaml:"cogs_pct"`
	SGAPct            float64   `yaml:"sga_pct"`
	RDPct             float64   `yaml:"rd_pct"`
	DepreciationPct   float64   `yaml:"depreciation_pct"`
	InterestRate      float64   `yaml:"interest_rate"`
	TaxRate           float64   `yaml:"tax_rate"`
	DSODays           float64   `yaml:"dso_days"`
	DIODays           float64   `yaml:"dio_days"`
	DPODays           float64   `yaml:"dpo_days"`
	CapexPct          float64   `yaml:"capex_pct"`
	DebtRepaymentPct  float64   `yaml:"debt_repayment_pct"`
	DividendPayoutPct float64   `yaml:"dividend_payout_pct"`
	MinimumCash       float64   `yaml:"minimum_cash"`
}

// LoadScenario reads and parses a scenario file
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()

	scenario, err := ParseScenario(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario from YAML. Unknown fields are rejected so
// a typo in an assumption name fails loudly instead of silently defaulting
// to zero.
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var scenario Scenario
	if err := dec.Decode(&scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// ToRequest converts the scenario into the projection request DTO
func (s *Scenario) ToRequest() RunProjectionRequest {
	growthRates := make([]decimal.Decimal, len(s.Assumptions.GrowthRates))
	for i, g := range s.Assumptions.GrowthRates {
		growthRates[i] = decimal.NewFromFloat(g)
	}

	return RunProjectionRequest{
		BaseYear: finance.BaseYear{
			Revenue:            decimal.NewFromFloat(s.BaseYear.Revenue),
			Receivables:        decimal.NewFromFloat(s.BaseYear.Receivables),
			Inventory:          decimal.NewFromFloat(s.BaseYear.Inventory),
			Payables:           decimal.NewFromFloat(s.BaseYear.Payables),
			NetPPE:             decimal.NewFromFloat(s.BaseYear.NetPPE),
			TotalDebt:          decimal.NewFromFloat(s.BaseYear.TotalDebt),
			ShareholdersEquity: decimal.NewFromFloat(s.BaseYear.ShareholdersEquity),
			Cash:               decimal.NewFromFloat(s.BaseYear.Cash),
		},
		Assumptions: finance.ModelAssumptions{
			GrowthRates:       growthRates,
			COGSPct:           decimal.NewFromFloat(s.Assumptions.COGSPct),
			SGAPct:            decimal.NewFromFloat(s.Assumptions.SGAPct),
			RDPct:             decimal.NewFromFloat(s.Assumptions.RDPct),
			DepreciationPct:   decimal.NewFromFloat(s.Assumptions.DepreciationPct),
			InterestRate:      decimal.NewFromFloat(s.Assumptions.InterestRate),
			TaxRate:           decimal.NewFromFloat(s.Assumptions.TaxRate),
			DSODays:           decimal.NewFromFloat(s.Assumptions.DSODays),
			DIODays:           decimal.NewFromFloat(s.Assumptions.DIODays),
			DPODays:           decimal.NewFromFloat(s.Assumptions.DPODays),
			CapexPct:          decimal.NewFromFloat(s.Assumptions.CapexPct),
			DebtRepaymentPct:  decimal.NewFromFloat(s.Assumptions.DebtRepaymentPct),
			DividendPayoutPct: decimal.NewFromFloat(s.Assumptions.DividendPayoutPct),
			MinimumCash:       decimal.NewFromFloat(s.Assumptions.MinimumCash),
		},
	}
}

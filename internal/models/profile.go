package models

import "github.com/shopspring/decimal"

// InvestorProfile captures the family's risk tolerance and objectives.
// It is configuration data, edited rarely and read on every render.
type InvestorProfile struct {
	Name                string          `json:"name"`
	Age                 int             `json:"age"`
	HorizonYears        int             `json:"investment_horizon_years"`
	RiskTolerance       string          `json:"risk_tolerance"` // conservative, moderate, aggressive, very_aggressive
	Objective           string          `json:"objective"`      // preservation, moderate_growth, aggressive_growth
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	Restrictions        []string        `json:"restrictions,omitempty"` // e.g. "no_crypto"
}

// RiskProfile describes a named allocation template
type RiskProfile struct {
	Name          string                         `json:"name"`
	Description   string                         `json:"description"`
	Allocation    map[AssetClass]decimal.Decimal `json:"allocation"` // fractions, sum to 1
	MaxVolatility decimal.Decimal                `json:"max_volatility"`
}

// RiskProfiles holds the allocation templates the profile's tolerance
// selects from. Fractions, not percentages.
var RiskProfiles = map[string]RiskProfile{
	"conservative": {
		Name:        "Conservative",
		Description: "Prioritizes capital preservation with moderate growth",
		Allocation: map[AssetClass]decimal.Decimal{
			AssetClassEquities:    decimal.NewFromFloat(0.30),
			AssetClassFixedIncome: decimal.NewFromFloat(0.50),
			AssetClassGold:        decimal.NewFromFloat(0.10),
			AssetClassCrypto:      decimal.NewFromFloat(0.00),
			AssetClassCash:        decimal.NewFromFloat(0.10),
		},
		MaxVolatility: decimal.NewFromInt(10),
	},
	"moderate": {
		Name:        "Moderate",
		Description: "Balance between growth and protection",
		Allocation: map[AssetClass]decimal.Decimal{
			AssetClassEquities:    decimal.NewFromFloat(0.50),
			AssetClassFixedIncome: decimal.NewFromFloat(0.30),
			AssetClassGold:        decimal.NewFromFloat(0.08),
			AssetClassCrypto:      decimal.NewFromFloat(0.02),
			AssetClassCash:        decimal.NewFromFloat(0.10),
		},
		MaxVolatility: decimal.NewFromInt(15),
	},
	"aggressive": {
		Name:        "Aggressive",
		Description: "Maximizes growth accepting higher volatility",
		Allocation: map[AssetClass]decimal.Decimal{
			AssetClassEquities:    decimal.NewFromFloat(0.70),
			AssetClassFixedIncome: decimal.NewFromFloat(0.15),
			AssetClassGold:        decimal.NewFromFloat(0.05),
			AssetClassCrypto:      decimal.NewFromFloat(0.05),
			AssetClassCash:        decimal.NewFromFloat(0.05),
		},
		MaxVolatility: decimal.NewFromInt(25),
	},
	"very_aggressive": {
		Name:        "Very Aggressive",
		Description: "Maximum exposure to high-growth assets",
		Allocation: map[AssetClass]decimal.Decimal{
			AssetClassEquities:    decimal.NewFromFloat(0.75),
			AssetClassFixedIncome: decimal.NewFromFloat(0.05),
			AssetClassGold:        decimal.NewFromFloat(0.05),
			AssetClassCrypto:      decimal.NewFromFloat(0.10),
			AssetClassCash:        decimal.NewFromFloat(0.05),
		},
		MaxVolatility: decimal.NewFromInt(35),
	},
}

// TargetAllocation returns the allocation template for the profile's
// tolerance, defaulting to moderate for unknown values.
func (p *InvestorProfile) TargetAllocation() map[AssetClass]decimal.Decimal {
	profile, ok := RiskProfiles[p.RiskTolerance]
	if !ok {
		profile = RiskProfiles["moderate"]
	}
	return profile.Allocation
}

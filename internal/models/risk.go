package models

import "github.com/shopspring/decimal"

// RiskCategory buckets the composite 1-10 risk score for display
type RiskCategory string

const (
	RiskCategoryLow      RiskCategory = "low"
	RiskCategoryModerate RiskCategory = "moderate"
	RiskCategoryHigh     RiskCategory = "high"
	RiskCategoryVeryHigh RiskCategory = "very_high"
)

// RiskMetrics is the standardized risk profile of the portfolio.
// All percentage and ratio fields are rounded to 2 decimal places at
// construction and never mutated afterwards.
type RiskMetrics struct {
	AnnualVolatilityPct  decimal.Decimal `json:"annual_volatility_pct"`
	SharpeRatio          decimal.Decimal `json:"sharpe_ratio"`
	MaxDrawdownPct       decimal.Decimal `json:"max_drawdown_pct"`
	Beta                 decimal.Decimal `json:"beta"`
	VaR95DailyPct        decimal.Decimal `json:"var_95_daily_pct"`
	ConcentrationTop3Pct decimal.Decimal `json:"concentration_top3_pct"`
	RiskScore            int             `json:"risk_score"` // 1..10
	RiskCategory         RiskCategory    `json:"risk_category"`
}

// RiskCategoryStyle holds display attributes for a risk category
type RiskCategoryStyle struct {
	Label     string `json:"label"`
	Color     string `json:"color"`
	Emoji     string `json:"emoji"`
	Narrative string `json:"narrative"`
}

// RiskCategoryStyles maps categories to the labels the dashboard shows
var RiskCategoryStyles = map[RiskCategory]RiskCategoryStyle{
	RiskCategoryLow: {
		Label:     "Low",
		Color:     "#10B981",
		Emoji:     "🟢",
		Narrative: "Conservative profile focused on capital preservation.",
	},
	RiskCategoryModerate: {
		Label:     "Moderate",
		Color:     "#3B82F6",
		Emoji:     "🔵",
		Narrative: "Balanced profile with measured growth exposure.",
	},
	RiskCategoryHigh: {
		Label:     "High",
		Color:     "#F59E0B",
		Emoji:     "🟠",
		Narrative: "Growth profile that accepts meaningful drawdowns.",
	},
	RiskCategoryVeryHigh: {
		Label:     "Very High",
		Color:     "#EF4444",
		Emoji:     "🔴",
		Narrative: "Speculative profile exposed to severe swings.",
	},
}

// Style returns the display style for the category
func (c RiskCategory) Style() RiskCategoryStyle {
	if s, ok := RiskCategoryStyles[c]; ok {
		return s
	}
	return RiskCategoryStyles[RiskCategoryModerate]
}

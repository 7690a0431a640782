package risk

// Interpretation labels for the dashboard. Band boundaries use strict
// comparison throughout; boundary values land in the higher band.

// VolatilityBand labels an annualized volatility percentage
func VolatilityBand(volatilityPct float64) string {
	switch {
	case volatilityPct < 10:
		return "Low"
	case volatilityPct < 20:
		return "Medium"
	default:
		return "High"
	}
}

// SharpeBand labels a Sharpe ratio
func SharpeBand(sharpe float64) string {
	switch {
	case sharpe > 1:
		return "Excellent"
	case sharpe > 0.5:
		return "Good"
	case sharpe > 0:
		return "Fair"
	default:
		return "Negative"
	}
}

// BetaBand labels a portfolio beta
func BetaBand(beta float64) string {
	switch {
	case beta < 0.8:
		return "Defensive"
	case beta < 1.2:
		return "Neutral"
	default:
		return "Aggressive"
	}
}

// ConcentrationBand labels a top-3 concentration percentage
func ConcentrationBand(concentrationPct float64) string {
	switch {
	case concentrationPct < 50:
		return "Diversified"
	case concentrationPct < 70:
		return "Concentrated"
	default:
		return "VeryConcentrated"
	}
}

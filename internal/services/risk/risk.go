// Package risk computes the portfolio's standardized risk profile from
// its asset-class distribution and position values. All calculations
// are pure and deterministic: stateful data (prices, allocations) is
// supplied by the caller, and the class assumptions are an immutable
// value injected at construction so alternate assumption sets stay
// testable.
package risk

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

// Assumptions holds the per-class constants the engine works from.
// Treat as immutable; build alternates with DefaultAssumptions() as a
// base rather than mutating a shared value.
type Assumptions struct {
	// Annualized volatility (%) per asset class
	Volatility map[models.AssetClass]float64
	// Market beta per asset class
	Beta map[models.AssetClass]float64

	DefaultVolatility float64
	DefaultBeta       float64

	// Flat inflation factor approximating positive cross-asset
	// correlation. The aggregation sums per-class variance terms
	// rather than using a covariance matrix; this is a modeling
	// approximation kept for compatibility, not a correctness bug.
	CorrelationFactor float64

	RiskFreeRatePct float64
}

// DefaultAssumptions returns the standard long-term assumption set
func DefaultAssumptions() Assumptions {
	return Assumptions{
		Volatility: map[models.AssetClass]float64{
			models.AssetClassEquities:    18.0,
			models.AssetClassFixedIncome: 5.0,
			models.AssetClassGold:        15.0,
			models.AssetClassCrypto:      60.0,
			models.AssetClassCash:        0.5,
		},
		Beta: map[models.AssetClass]float64{
			models.AssetClassEquities:    1.0,
			models.AssetClassFixedIncome: 0.1,
			models.AssetClassGold:        0.0,
			models.AssetClassCrypto:      1.5,
			models.AssetClassCash:        0.0,
		},
		DefaultVolatility: 15.0,
		DefaultBeta:       1.0,
		CorrelationFactor: 1.3,
		RiskFreeRatePct:   3.5,
	}
}

const (
	tradingDaysPerYear = 252
	z95                = 1.645 // one-tailed 95% z-score
	maxDrawdownCapPct  = 80.0
)

// Service is the risk analytics engine. Safe for concurrent use: it
// holds no mutable state.
type Service struct {
	assumptions Assumptions
}

// NewService creates a risk engine with the given assumptions
func NewService(a Assumptions) *Service {
	return &Service{assumptions: a}
}

// NewDefaultService creates a risk engine with DefaultAssumptions
func NewDefaultService() *Service {
	return NewService(DefaultAssumptions())
}

// classVolatility returns the annualized volatility constant for a class
func (s *Service) classVolatility(class models.AssetClass) float64 {
	if v, ok := s.assumptions.Volatility[class]; ok {
		return v
	}
	return s.assumptions.DefaultVolatility
}

// classBeta returns the beta constant for a class
func (s *Service) classBeta(class models.AssetClass) float64 {
	if b, ok := s.assumptions.Beta[class]; ok {
		return b
	}
	return s.assumptions.DefaultBeta
}

// CalculateVolatility estimates annualized portfolio volatility (%)
// from the asset-class weights. Per class the weighted volatility is
// squared and summed, the root taken, then scaled by the correlation
// factor. Empty distribution yields 0; the result is never negative
// and unbounded above.
func (s *Service) CalculateVolatility(dist models.Distribution) float64 {
	variance := 0.0
	for class, alloc := range dist {
		weight := alloc.ActualPct.InexactFloat64() / 100
		term := weight * s.classVolatility(class)
		variance += term * term
	}
	if variance == 0 {
		return 0
	}
	return math.Sqrt(variance) * s.assumptions.CorrelationFactor
}

// CalculateSharpeRatio computes the risk-adjusted excess return.
// Returns 0 when volatility is zero or negative.
func (s *Service) CalculateSharpeRatio(realizedReturnPct, volatilityPct float64) float64 {
	if volatilityPct <= 0 {
		return 0
	}
	return (realizedReturnPct - s.assumptions.RiskFreeRatePct) / volatilityPct
}

// CalculateBeta computes the linear weighted portfolio beta. Unlike
// volatility, no inflation factor applies.
func (s *Service) CalculateBeta(dist models.Distribution) float64 {
	beta := 0.0
	for class, alloc := range dist {
		weight := alloc.ActualPct.InexactFloat64() / 100
		beta += weight * s.classBeta(class)
	}
	return beta
}

// CalculateVaR95 computes the parametric one-day 95% Value-at-Risk (%)
// assuming normally distributed returns. Linear in volatility.
func (s *Service) CalculateVaR95(volatilityPct float64) float64 {
	dailyVol := volatilityPct / math.Sqrt(tradingDaysPerYear)
	return dailyVol * z95
}

// CalculateConcentration returns the share (%) of total value held in
// the three largest positions. Empty or all-zero inputs yield 0; with
// three or fewer positions the result is always 100.
func (s *Service) CalculateConcentration(positions map[string]models.PositionValue) float64 {
	if len(positions) == 0 {
		return 0
	}

	values := make([]float64, 0, len(positions))
	total := 0.0
	for _, p := range positions {
		v := p.Value.InexactFloat64()
		values = append(values, v)
		total += v
	}
	if total <= 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	top := 0.0
	for i := 0; i < len(values) && i < 3; i++ {
		top += values[i]
	}
	return top / total * 100
}

// EstimateMaxDrawdown estimates a worst-case peak-to-trough loss (%)
// as four monthly-sigma events scaled by market sensitivity, capped
// at 80. An empirical heuristic, not a historical measurement.
func (s *Service) EstimateMaxDrawdown(volatilityPct, beta float64) float64 {
	monthlyVol := volatilityPct / math.Sqrt(12)
	drawdown := monthlyVol * 4 * (0.5 + 0.5*beta)
	if drawdown > maxDrawdownCapPct {
		return maxDrawdownCapPct
	}
	return drawdown
}

// CalculateRiskScore blends volatility, beta and concentration into a
// 1-10 score plus category. The floor of 1 is deliberate: even an
// all-cash portfolio never displays 0/10.
func (s *Service) CalculateRiskScore(volatilityPct, beta, concentrationPct float64) (int, models.RiskCategory) {
	volScore := math.Min(volatilityPct/5, 10)
	betaScore := math.Min(beta*5, 10)
	concScore := math.Min(concentrationPct/10, 10)

	score := int(math.Round(0.5*volScore + 0.3*betaScore + 0.2*concScore))
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	return score, scoreCategory(score)
}

func scoreCategory(score int) models.RiskCategory {
	switch {
	case score <= 3:
		return models.RiskCategoryLow
	case score <= 5:
		return models.RiskCategoryModerate
	case score <= 7:
		return models.RiskCategoryHigh
	default:
		return models.RiskCategoryVeryHigh
	}
}

// CalculateRiskMetrics runs the full pipeline: volatility, Sharpe,
// beta, VaR, concentration, drawdown, and the composite score, in
// that order. Every numeric field is rounded to 2 decimals.
func (s *Service) CalculateRiskMetrics(dist models.Distribution, positions map[string]models.PositionValue, realizedReturnPct float64) models.RiskMetrics {
	volatility := s.CalculateVolatility(dist)
	sharpe := s.CalculateSharpeRatio(realizedReturnPct, volatility)
	beta := s.CalculateBeta(dist)
	varDaily := s.CalculateVaR95(volatility)
	concentration := s.CalculateConcentration(positions)
	drawdown := s.EstimateMaxDrawdown(volatility, beta)
	score, category := s.CalculateRiskScore(volatility, beta, concentration)

	return models.RiskMetrics{
		AnnualVolatilityPct:  round2(volatility),
		SharpeRatio:          round2(sharpe),
		MaxDrawdownPct:       round2(drawdown),
		Beta:                 round2(beta),
		VaR95DailyPct:        round2(varDaily),
		ConcentrationTop3Pct: round2(concentration),
		RiskScore:            score,
		RiskCategory:         category,
	}
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

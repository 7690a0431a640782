package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a single holding in the family portfolio.
// CurrentValue and CostBasis are in EUR, the portfolio base currency;
// positions quoted in USD are converted at valuation time.
type Position struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Ticker       string          `json:"ticker,omitempty"`
	AssetType    string          `json:"asset_type"` // ETF, Stock, Bond Fund, Mixed Fund, Crypto, Cash
	Category     AssetClass      `json:"category"`
	Shares       decimal.Decimal `json:"shares"`
	Currency     string          `json:"currency"` // EUR or USD
	Account      string          `json:"account"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	CurrentValue decimal.Decimal `json:"current_value"`
	PurchaseDate time.Time       `json:"purchase_date"`

	// Composition splits a mixed fund across classes, fractions summing
	// to 1. Nil for single-class positions.
	Composition map[AssetClass]decimal.Decimal `json:"composition,omitempty"`
}

// PnL returns the unrealized gain/loss in EUR
func (p *Position) PnL() decimal.Decimal {
	return p.CurrentValue.Sub(p.CostBasis)
}

// PnLPercent returns the unrealized gain/loss as a percentage
func (p *Position) PnLPercent() decimal.Decimal {
	if p.CostBasis.IsZero() {
		return decimal.Zero
	}
	return p.PnL().Div(p.CostBasis).Mul(decimal.NewFromInt(100)).Round(2)
}

// PositionValue is the minimal view the concentration calculation needs.
// Callers may pass distribution buckets as a position proxy when
// individual positions are unavailable.
type PositionValue struct {
	Value decimal.Decimal `json:"value"`
	Label string          `json:"label,omitempty"`
}

// ClassAllocation describes one slice of the asset-class distribution
type ClassAllocation struct {
	ActualPct decimal.Decimal `json:"actual_pct"`
	TargetPct decimal.Decimal `json:"target_pct"`
	Value     decimal.Decimal `json:"value"`
}

// Distribution maps each asset class to its current and target share.
// A missing key means zero allocation to that class. Constructed fresh
// per valuation and replaced wholesale, never mutated in place.
type Distribution map[AssetClass]ClassAllocation

// Portfolio is the unified family portfolio: the investor profile plus
// every position across all accounts.
type Portfolio struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Profile     InvestorProfile `json:"profile"`
	Positions   []Position      `json:"positions"`
	LastUpdated time.Time       `json:"last_updated"`
}

// TotalValue returns the portfolio value in EUR
func (p *Portfolio) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Positions {
		total = total.Add(p.Positions[i].CurrentValue)
	}
	return total
}

// TotalCost returns the total cost basis in EUR
func (p *Portfolio) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Positions {
		total = total.Add(p.Positions[i].CostBasis)
	}
	return total
}

// TotalPnL returns the unrealized gain/loss in EUR
func (p *Portfolio) TotalPnL() decimal.Decimal {
	return p.TotalValue().Sub(p.TotalCost())
}

// TotalPnLPercent returns the unrealized gain/loss as a percentage
func (p *Portfolio) TotalPnLPercent() decimal.Decimal {
	cost := p.TotalCost()
	if cost.IsZero() {
		return decimal.Zero
	}
	return p.TotalPnL().Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
}

// CalculateDistribution computes the current asset-class distribution,
// splitting mixed funds by their composition. Target percentages come
// from the investor profile's allocation template.
func (p *Portfolio) CalculateDistribution() Distribution {
	hundred := decimal.NewFromInt(100)
	total := p.TotalValue()
	target := p.Profile.TargetAllocation()

	values := make(map[AssetClass]decimal.Decimal, len(AllAssetClasses()))
	for _, class := range AllAssetClasses() {
		values[class] = decimal.Zero
	}

	for i := range p.Positions {
		pos := &p.Positions[i]
		if len(pos.Composition) > 0 {
			for class, fraction := range pos.Composition {
				if _, ok := values[class]; ok {
					values[class] = values[class].Add(pos.CurrentValue.Mul(fraction))
				}
			}
			continue
		}
		if _, ok := values[pos.Category]; ok {
			values[pos.Category] = values[pos.Category].Add(pos.CurrentValue)
		}
	}

	dist := make(Distribution, len(values))
	for class, value := range values {
		actual := decimal.Zero
		if total.IsPositive() {
			actual = value.Div(total).Mul(hundred).Round(2)
		}
		dist[class] = ClassAllocation{
			ActualPct: actual,
			TargetPct: target[class].Mul(hundred).Round(2),
			Value:     value.Round(2),
		}
	}
	return dist
}

// Deviation describes how far a class drifted from its target
type Deviation struct {
	ActualPct    decimal.Decimal `json:"actual_pct"`
	TargetPct    decimal.Decimal `json:"target_pct"`
	DeviationPct decimal.Decimal `json:"deviation_pct"`
}

// CalculateDeviations compares the current distribution against the
// profile's target allocation.
func (p *Portfolio) CalculateDeviations() map[AssetClass]Deviation {
	dist := p.CalculateDistribution()

	deviations := make(map[AssetClass]Deviation, len(dist))
	for class, alloc := range dist {
		deviations[class] = Deviation{
			ActualPct:    alloc.ActualPct,
			TargetPct:    alloc.TargetPct,
			DeviationPct: alloc.ActualPct.Sub(alloc.TargetPct),
		}
	}
	return deviations
}

// NeedsRebalancing reports whether any class drifted beyond the
// threshold (in percentage points).
func (p *Portfolio) NeedsRebalancing(thresholdPct decimal.Decimal) bool {
	for _, d := range p.CalculateDeviations() {
		if d.DeviationPct.Abs().GreaterThan(thresholdPct) {
			return true
		}
	}
	return false
}

// PositionValues converts the position list into the value map the
// concentration calculation consumes.
func (p *Portfolio) PositionValues() map[string]PositionValue {
	values := make(map[string]PositionValue, len(p.Positions))
	for i := range p.Positions {
		pos := &p.Positions[i]
		values[pos.ID] = PositionValue{Value: pos.CurrentValue, Label: pos.Name}
	}
	return values
}

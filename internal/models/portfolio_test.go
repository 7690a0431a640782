package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func samplePortfolio() *Portfolio {
	return &Portfolio{
		ID:      "family",
		Name:    "Family Portfolio",
		Profile: InvestorProfile{RiskTolerance: "moderate"},
		Positions: []Position{
			{
				ID: "etf", Name: "MSCI World ETF", Category: AssetClassEquities,
				CostBasis: decimal.NewFromInt(8000), CurrentValue: decimal.NewFromInt(10000),
			},
			{
				ID: "bonds", Name: "Euro Bond Fund", Category: AssetClassFixedIncome,
				CostBasis: decimal.NewFromInt(6000), CurrentValue: decimal.NewFromInt(6000),
			},
			{
				ID: "cash", Name: "Cuenta corriente", Category: AssetClassCash,
				CostBasis: decimal.NewFromInt(4000), CurrentValue: decimal.NewFromInt(4000),
			},
		},
	}
}

func TestPortfolio_Totals(t *testing.T) {
	p := samplePortfolio()

	if !p.TotalValue().Equal(decimal.NewFromInt(20000)) {
		t.Errorf("TotalValue = %s, want 20000", p.TotalValue())
	}
	if !p.TotalCost().Equal(decimal.NewFromInt(18000)) {
		t.Errorf("TotalCost = %s, want 18000", p.TotalCost())
	}
	if !p.TotalPnL().Equal(decimal.NewFromInt(2000)) {
		t.Errorf("TotalPnL = %s, want 2000", p.TotalPnL())
	}
	// 2000/18000 = 11.11%
	if !p.TotalPnLPercent().Equal(decimal.NewFromFloat(11.11)) {
		t.Errorf("TotalPnLPercent = %s, want 11.11", p.TotalPnLPercent())
	}
}

func TestPortfolio_TotalPnLPercent_ZeroCost(t *testing.T) {
	p := &Portfolio{}
	if !p.TotalPnLPercent().IsZero() {
		t.Errorf("TotalPnLPercent of empty portfolio = %s, want 0", p.TotalPnLPercent())
	}
}

func TestPosition_PnL(t *testing.T) {
	pos := Position{
		CostBasis:    decimal.NewFromInt(1000),
		CurrentValue: decimal.NewFromInt(1250),
	}

	if !pos.PnL().Equal(decimal.NewFromInt(250)) {
		t.Errorf("PnL = %s, want 250", pos.PnL())
	}
	if !pos.PnLPercent().Equal(decimal.NewFromInt(25)) {
		t.Errorf("PnLPercent = %s, want 25", pos.PnLPercent())
	}
}

func TestPortfolio_CalculateDistribution(t *testing.T) {
	p := samplePortfolio()
	dist := p.CalculateDistribution()

	// 10000/20000 equities
	if !dist[AssetClassEquities].ActualPct.Equal(decimal.NewFromInt(50)) {
		t.Errorf("equities actual = %s, want 50", dist[AssetClassEquities].ActualPct)
	}
	// 6000/20000 fixed income
	if !dist[AssetClassFixedIncome].ActualPct.Equal(decimal.NewFromInt(30)) {
		t.Errorf("fixed income actual = %s, want 30", dist[AssetClassFixedIncome].ActualPct)
	}
	// moderate target for equities is 50%
	if !dist[AssetClassEquities].TargetPct.Equal(decimal.NewFromInt(50)) {
		t.Errorf("equities target = %s, want 50", dist[AssetClassEquities].TargetPct)
	}
	// Every class present even with zero allocation
	if _, ok := dist[AssetClassCrypto]; !ok {
		t.Error("distribution should include crypto with zero allocation")
	}
}

func TestPortfolio_CalculateDistribution_MixedFund(t *testing.T) {
	p := &Portfolio{
		Profile: InvestorProfile{RiskTolerance: "moderate"},
		Positions: []Position{
			{
				ID: "mixed", Name: "Balanced Fund", Category: AssetClassEquities,
				CurrentValue: decimal.NewFromInt(10000),
				Composition: map[AssetClass]decimal.Decimal{
					AssetClassEquities:    decimal.NewFromFloat(0.60),
					AssetClassFixedIncome: decimal.NewFromFloat(0.40),
				},
			},
		},
	}

	dist := p.CalculateDistribution()
	if !dist[AssetClassEquities].Value.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("equities value = %s, want 6000", dist[AssetClassEquities].Value)
	}
	if !dist[AssetClassFixedIncome].Value.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("fixed income value = %s, want 4000", dist[AssetClassFixedIncome].Value)
	}
}

func TestPortfolio_CalculateDistribution_Empty(t *testing.T) {
	p := &Portfolio{Profile: InvestorProfile{RiskTolerance: "moderate"}}

	dist := p.CalculateDistribution()
	for class, alloc := range dist {
		if !alloc.ActualPct.IsZero() {
			t.Errorf("empty portfolio should have zero actual for %s, got %s", class, alloc.ActualPct)
		}
	}
}

func TestPortfolio_NeedsRebalancing(t *testing.T) {
	p := samplePortfolio()

	// equities 50% vs target 50%, cash 20% vs target 10%: drift is 10pts
	if !p.NeedsRebalancing(decimal.NewFromInt(5)) {
		t.Error("Expected rebalancing needed at 5pt threshold")
	}
	if p.NeedsRebalancing(decimal.NewFromInt(15)) {
		t.Error("Expected no rebalancing needed at 15pt threshold")
	}
}

func TestPortfolio_PositionValues(t *testing.T) {
	p := samplePortfolio()
	values := p.PositionValues()

	if len(values) != 3 {
		t.Fatalf("Expected 3 position values, got %d", len(values))
	}
	if !values["etf"].Value.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("etf value = %s, want 10000", values["etf"].Value)
	}
}

func TestInvestorProfile_TargetAllocation_UnknownTolerance(t *testing.T) {
	profile := InvestorProfile{RiskTolerance: "reckless"}

	target := profile.TargetAllocation()
	// Falls back to moderate: 50% equities
	if !target[AssetClassEquities].Equal(decimal.NewFromFloat(0.50)) {
		t.Errorf("fallback equities = %s, want 0.5", target[AssetClassEquities])
	}
}

func TestAssetClass_Style_Unknown(t *testing.T) {
	style := AssetClass("commodities").Style()
	if style.Color == "" {
		t.Error("Unknown class should still get a style")
	}
}

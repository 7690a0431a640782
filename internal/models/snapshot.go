package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotDateLayout is the date key format for stored snapshots
const SnapshotDateLayout = "2006-01-02"

// PositionSnapshot is the frozen view of one position inside a snapshot
type PositionSnapshot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Ticker    string          `json:"ticker,omitempty"`
	Category  AssetClass      `json:"category"`
	Account   string          `json:"account"`
	Value     decimal.Decimal `json:"value"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	PnL       decimal.Decimal `json:"pnl"`
	PnLPct    decimal.Decimal `json:"pnl_pct"`
}

// PortfolioSnapshot is an immutable point-in-time valuation of the
// whole portfolio, identified by Date. Written once per day (or on
// demand) and never modified afterwards.
type PortfolioSnapshot struct {
	Timestamp   time.Time                      `json:"timestamp"`
	Date        string                         `json:"date"` // YYYY-MM-DD
	TotalValue  decimal.Decimal                `json:"total_value"`
	TotalCost   decimal.Decimal                `json:"total_cost"`
	TotalPnL    decimal.Decimal                `json:"total_pnl"`
	TotalPnLPct decimal.Decimal                `json:"total_pnl_pct"`
	ByCategory  map[AssetClass]decimal.Decimal `json:"by_category"`
	ByAccount   map[string]decimal.Decimal     `json:"by_account"`
	Positions   []PositionSnapshot             `json:"positions"`
}

// NewSnapshot freezes the portfolio's current state
func NewSnapshot(p *Portfolio, at time.Time) *PortfolioSnapshot {
	snap := &PortfolioSnapshot{
		Timestamp:   at.UTC(),
		Date:        at.UTC().Format(SnapshotDateLayout),
		TotalValue:  p.TotalValue().Round(2),
		TotalCost:   p.TotalCost().Round(2),
		TotalPnL:    p.TotalPnL().Round(2),
		TotalPnLPct: p.TotalPnLPercent(),
		ByCategory:  make(map[AssetClass]decimal.Decimal),
		ByAccount:   make(map[string]decimal.Decimal),
		Positions:   make([]PositionSnapshot, 0, len(p.Positions)),
	}

	for i := range p.Positions {
		pos := &p.Positions[i]
		snap.ByCategory[pos.Category] = snap.ByCategory[pos.Category].Add(pos.CurrentValue)
		snap.ByAccount[pos.Account] = snap.ByAccount[pos.Account].Add(pos.CurrentValue)
		snap.Positions = append(snap.Positions, PositionSnapshot{
			ID:        pos.ID,
			Name:      pos.Name,
			Ticker:    pos.Ticker,
			Category:  pos.Category,
			Account:   pos.Account,
			Value:     pos.CurrentValue.Round(2),
			CostBasis: pos.CostBasis.Round(2),
			PnL:       pos.PnL().Round(2),
			PnLPct:    pos.PnLPercent(),
		})
	}

	return snap
}

// Valid reports whether the snapshot carries a usable valuation
func (s *PortfolioSnapshot) Valid() bool {
	return s != nil && s.TotalValue.IsPositive() && s.TotalCost.IsPositive()
}

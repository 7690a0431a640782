// Package performance reconciles the live portfolio valuation against
// historical snapshots to produce total, year-to-date and daily
// returns. The computation is pure: historical closes arrive
// pre-fetched in a PriceTable, so the engine itself never touches the
// network and is safe to call concurrently.
package performance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

// PriceTable holds pre-fetched historical closes: ticker -> date
// (YYYY-MM-DD) -> closing price in the instrument's own currency.
type PriceTable map[string]map[string]decimal.Decimal

// Set records a close for a ticker on a day
func (t PriceTable) Set(ticker string, day time.Time, close decimal.Decimal) {
	key := day.UTC().Format(models.SnapshotDateLayout)
	if t[ticker] == nil {
		t[ticker] = make(map[string]decimal.Decimal)
	}
	t[ticker][key] = close
}

// Close looks up the close for a ticker on a day
func (t PriceTable) Close(ticker string, day time.Time) (decimal.Decimal, bool) {
	closes, ok := t[ticker]
	if !ok {
		return decimal.Zero, false
	}
	c, ok := closes[day.UTC().Format(models.SnapshotDateLayout)]
	return c, ok
}

// PreviousTradingDay walks one calendar day back and keeps walking
// while the day falls on a weekend. No holiday calendar: a known
// simplification.
func PreviousTradingDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// YearStart returns January 1st of t's year in UTC
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// ExistedBefore reports whether the position was already held at the
// baseline date.
func ExistedBefore(pos *models.Position, baseline time.Time) bool {
	return !pos.PurchaseDate.IsZero() && pos.PurchaseDate.Before(baseline)
}

// BaselineValue computes one position's contribution to a baseline
// total. A position not yet held at the baseline contributes its
// purchase cost (it had no market value then); one that was held
// contributes the historical close times shares, converted to EUR for
// USD-quoted instruments. A missing close degrades to purchase cost
// rather than failing.
func BaselineValue(pos *models.Position, baseline time.Time, table PriceTable, eurPerUSD decimal.Decimal) decimal.Decimal {
	if !ExistedBefore(pos, baseline) {
		return pos.CostBasis
	}
	if pos.Ticker == "" || pos.Shares.IsZero() {
		return pos.CostBasis
	}

	close, ok := table.Close(pos.Ticker, baseline)
	if !ok {
		return pos.CostBasis
	}

	value := close.Mul(pos.Shares)
	if pos.Currency == "USD" {
		value = value.Mul(eurPerUSD)
	}
	return value
}

// Reconcile computes the full performance record. current must be the
// freshly computed snapshot; history is the stored snapshot sequence
// (any order, deduplicated by date) used for best/worst day. Zero or
// negative baselines yield zero percentages rather than dividing.
func Reconcile(current *models.PortfolioSnapshot, positions []models.Position, table PriceTable, eurPerUSD decimal.Decimal, now time.Time, history []*models.PortfolioSnapshot) models.PerformanceMetrics {
	ytdDate := YearStart(now)
	yesterday := PreviousTradingDay(now)

	ytdStart := decimal.Zero
	yesterdayValue := decimal.Zero
	for i := range positions {
		pos := &positions[i]
		ytdStart = ytdStart.Add(BaselineValue(pos, ytdDate, table, eurPerUSD))
		yesterdayValue = yesterdayValue.Add(BaselineValue(pos, yesterday, table, eurPerUSD))
	}

	currentValue := current.TotalValue
	totalCost := current.TotalCost

	metrics := models.PerformanceMetrics{
		TotalReturn:    currentValue.Sub(totalCost).Round(2),
		TotalReturnPct: percentChange(currentValue, totalCost),

		YTDReturn:     currentValue.Sub(ytdStart).Round(2),
		YTDReturnPct:  percentChange(currentValue, ytdStart),
		YTDStartValue: ytdStart.Round(2),

		DailyReturn:    currentValue.Sub(yesterdayValue).Round(2),
		DailyReturnPct: percentChange(currentValue, yesterdayValue),
		YesterdayValue: yesterdayValue.Round(2),
	}

	metrics.BestDay, metrics.WorstDay = dayExtremes(history)

	return metrics
}

// percentChange returns (value-baseline)/baseline*100, or zero when
// the baseline is not positive.
func percentChange(value, baseline decimal.Decimal) decimal.Decimal {
	if !baseline.IsPositive() {
		return decimal.Zero
	}
	return value.Sub(baseline).Div(baseline).Mul(decimal.NewFromInt(100)).Round(2)
}

// dayExtremes scans consecutive snapshot pairs for the best and worst
// single-day moves.
func dayExtremes(history []*models.PortfolioSnapshot) (best, worst models.DayChange) {
	ordered := make([]*models.PortfolioSnapshot, 0, len(history))
	seen := make(map[string]bool, len(history))
	for _, s := range history {
		if s == nil || seen[s.Date] {
			continue
		}
		seen[s.Date] = true
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Date < ordered[j].Date })

	first := true
	for i := 1; i < len(ordered); i++ {
		prev, curr := ordered[i-1], ordered[i]
		if !prev.TotalValue.IsPositive() {
			continue
		}
		change := percentChange(curr.TotalValue, prev.TotalValue)
		if first {
			best = models.DayChange{Date: curr.Date, ChangePct: change}
			worst = best
			first = false
			continue
		}
		if change.GreaterThan(best.ChangePct) {
			best = models.DayChange{Date: curr.Date, ChangePct: change}
		}
		if change.LessThan(worst.ChangePct) {
			worst = models.DayChange{Date: curr.Date, ChangePct: change}
		}
	}
	return best, worst
}

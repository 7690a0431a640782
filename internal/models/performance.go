package models

import "github.com/shopspring/decimal"

// PerformanceMetrics holds period returns reconciled against stored
// snapshots: total since inception, year-to-date, and since the
// previous trading day. Baselines of zero yield zero percentages.
type PerformanceMetrics struct {
	TotalReturn    decimal.Decimal `json:"total_return"`
	TotalReturnPct decimal.Decimal `json:"total_return_pct"`

	YTDReturn     decimal.Decimal `json:"ytd_return"`
	YTDReturnPct  decimal.Decimal `json:"ytd_return_pct"`
	YTDStartValue decimal.Decimal `json:"ytd_start_value"`

	DailyReturn    decimal.Decimal `json:"daily_return"`
	DailyReturnPct decimal.Decimal `json:"daily_return_pct"`
	YesterdayValue decimal.Decimal `json:"yesterday_value"`

	BestDay  DayChange `json:"best_day"`
	WorstDay DayChange `json:"worst_day"`
}

// DayChange records the percentage move between two consecutive
// stored snapshots.
type DayChange struct {
	Date      string          `json:"date,omitempty"` // YYYY-MM-DD
	ChangePct decimal.Decimal `json:"change_pct"`
}

package performance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

// HistoricalPriceSource supplies historical closes. A false second
// return means no data; implementations must not panic on unknown
// tickers or dates.
type HistoricalPriceSource interface {
	HistoricalClose(ctx context.Context, ticker string, date time.Time) (decimal.Decimal, bool)
}

// RateSource supplies the EUR-per-USD conversion rate
type RateSource interface {
	ExchangeRate(ctx context.Context) decimal.Decimal
}

// SnapshotSource is the read side of the snapshot store
type SnapshotSource interface {
	ListDates(ctx context.Context) ([]string, error)
	Get(ctx context.Context, date string) (*models.PortfolioSnapshot, error)
}

// Fetcher builds PriceTables from a historical price source. Lookups
// run sequentially with a pacing delay between calls to respect the
// upstream rate limit, and each lookup gets its own timeout; a timed
// out lookup is treated exactly like missing data.
type Fetcher struct {
	source  HistoricalPriceSource
	pace    time.Duration
	timeout time.Duration
}

// NewFetcher creates a fetcher with the given pacing and per-lookup
// timeout. Zero values select the defaults.
func NewFetcher(source HistoricalPriceSource, pace, timeout time.Duration) *Fetcher {
	if pace <= 0 {
		pace = 200 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{source: source, pace: pace, timeout: timeout}
}

// BuildPriceTable fetches closes for every position ticker on every
// requested date. Failures leave gaps in the table; the reconciliation
// falls back to purchase cost for those positions, so a partial table
// is always usable.
func (f *Fetcher) BuildPriceTable(ctx context.Context, positions []models.Position, dates ...time.Time) PriceTable {
	table := make(PriceTable)

	seen := make(map[string]bool, len(positions))
	for i := range positions {
		ticker := positions[i].Ticker
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		for _, date := range dates {
			if ctx.Err() != nil {
				return table
			}

			lookupCtx, cancel := context.WithTimeout(ctx, f.timeout)
			close, ok := f.source.HistoricalClose(lookupCtx, ticker, date)
			cancel()
			if ok {
				table.Set(ticker, date, close)
			}

			select {
			case <-time.After(f.pace):
			case <-ctx.Done():
				return table
			}
		}
	}

	return table
}

// Service ties the pure reconciliation to its collaborators: the
// snapshot store for history and the market-data provider for
// historical closes and FX.
type Service struct {
	snapshots SnapshotSource
	fetcher   *Fetcher
	rates     RateSource
}

// NewService creates a performance service
func NewService(snapshots SnapshotSource, fetcher *Fetcher, rates RateSource) *Service {
	return &Service{snapshots: snapshots, fetcher: fetcher, rates: rates}
}

// Metrics computes the performance record for the portfolio as of now.
// Store failures degrade to an empty history (no best/worst day)
// rather than aborting; per-position price failures degrade to cost
// basis inside the reconciliation.
func (s *Service) Metrics(ctx context.Context, portfolio *models.Portfolio, current *models.PortfolioSnapshot, now time.Time) models.PerformanceMetrics {
	ytdDate := YearStart(now)
	yesterday := PreviousTradingDay(now)

	table := s.fetcher.BuildPriceTable(ctx, portfolio.Positions, ytdDate, yesterday)
	rate := s.rates.ExchangeRate(ctx)

	history := s.loadHistory(ctx)

	return Reconcile(current, portfolio.Positions, table, rate, now, history)
}

func (s *Service) loadHistory(ctx context.Context) []*models.PortfolioSnapshot {
	dates, err := s.snapshots.ListDates(ctx)
	if err != nil {
		return nil
	}

	history := make([]*models.PortfolioSnapshot, 0, len(dates))
	for _, date := range dates {
		snap, err := s.snapshots.Get(ctx, date)
		if err != nil || snap == nil {
			continue
		}
		history = append(history, snap)
	}
	return history
}

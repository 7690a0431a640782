package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

func TestNewService(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})
	if svc == nil {
		t.Fatal("Expected service to be created")
	}
}

func TestService_GetQuote(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	quote, err := svc.GetQuote(context.Background(), "IWDA.AS")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if quote == nil {
		t.Fatal("Expected quote to be returned")
	}

	if quote.Ticker != "IWDA.AS" {
		t.Errorf("Expected ticker IWDA.AS, got %s", quote.Ticker)
	}

	if quote.Price.IsZero() {
		t.Error("Expected non-zero price")
	}
}

func TestService_GetQuote_Cached(t *testing.T) {
	svc := NewService(Config{
		Provider: ProviderMock,
		CacheTTL: 1 * time.Hour,
	})

	// First call
	quote1, err := svc.GetQuote(context.Background(), "IWDA.AS")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Second call should return cached
	quote2, err := svc.GetQuote(context.Background(), "IWDA.AS")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !quote1.Price.Equal(quote2.Price) {
		t.Error("Expected cached quote to return same price")
	}
}

func TestService_GetQuotes(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	tickers := []string{"IWDA.AS", "VWCE.DE", "BTC-EUR"}
	quotes, err := svc.GetQuotes(context.Background(), tickers)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(quotes) != len(tickers) {
		t.Errorf("Expected %d quotes, got %d", len(tickers), len(quotes))
	}

	for _, ticker := range tickers {
		if _, ok := quotes[ticker]; !ok {
			t.Errorf("Missing quote for %s", ticker)
		}
	}
}

func TestService_ExchangeRate_MockFallback(t *testing.T) {
	svc := NewService(Config{
		Provider:          ProviderMock,
		FallbackEURPerUSD: decimal.NewFromFloat(0.92),
	})

	rate := svc.ExchangeRate(context.Background())
	if !rate.Equal(decimal.NewFromFloat(0.92)) {
		t.Errorf("Expected fallback rate 0.92, got %s", rate)
	}
}

func TestService_HistoricalClose_Mock(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	close, ok := svc.HistoricalClose(context.Background(), "IWDA.AS", day)
	if !ok {
		t.Fatal("Expected mock close to be available")
	}
	if close.IsZero() || close.IsNegative() {
		t.Errorf("Expected positive close, got %s", close)
	}

	// Same day must return the identical close
	again, ok := svc.HistoricalClose(context.Background(), "IWDA.AS", day)
	if !ok || !again.Equal(close) {
		t.Errorf("Expected stable close for a given day, got %s then %s", close, again)
	}
}

func TestService_RefreshPortfolio(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	portfolio := &models.Portfolio{
		Positions: []models.Position{
			{
				ID:     "etf",
				Ticker: "IWDA.AS",
				Shares: decimal.NewFromInt(10),
			},
			{
				ID:        "cash",
				Name:      "Cuenta corriente",
				CostBasis: decimal.NewFromInt(5000),
			},
		},
	}
	portfolio.Positions[1].CurrentValue = decimal.NewFromInt(5000)

	err := svc.RefreshPortfolio(context.Background(), portfolio)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if portfolio.Positions[0].CurrentValue.IsZero() {
		t.Error("Position with ticker should have a refreshed value")
	}
	if !portfolio.Positions[1].CurrentValue.Equal(decimal.NewFromInt(5000)) {
		t.Error("Position without ticker should keep its stored value")
	}
	if portfolio.LastUpdated.IsZero() {
		t.Error("Portfolio last updated should be set")
	}
}

func TestService_RefreshPortfolio_Nil(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	if err := svc.RefreshPortfolio(context.Background(), nil); err != nil {
		t.Errorf("Expected no error for nil portfolio, got: %v", err)
	}

	if err := svc.RefreshPortfolio(context.Background(), &models.Portfolio{}); err != nil {
		t.Errorf("Expected no error for empty portfolio, got: %v", err)
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	closes := []decimal.Decimal{
		decimal.NewFromInt(100),
		decimal.NewFromInt(102),
		decimal.NewFromInt(101),
		decimal.NewFromInt(103),
		decimal.NewFromInt(102),
	}

	vol, err := AnnualizedVolatility(closes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if vol.IsZero() || vol.IsNegative() {
		t.Errorf("Expected positive volatility, got %s", vol)
	}
}

func TestAnnualizedVolatility_Flat(t *testing.T) {
	closes := []decimal.Decimal{
		decimal.NewFromInt(100),
		decimal.NewFromInt(100),
		decimal.NewFromInt(100),
		decimal.NewFromInt(100),
	}

	vol, err := AnnualizedVolatility(closes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !vol.IsZero() {
		t.Errorf("Flat series should have zero volatility, got %s", vol)
	}
}

func TestAnnualizedVolatility_TooShort(t *testing.T) {
	if _, err := AnnualizedVolatility([]decimal.Decimal{decimal.NewFromInt(100)}); err == nil {
		t.Error("Expected error for too short a series")
	}
}

func TestRealizedVolatility(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	vol, err := svc.RealizedVolatility(context.Background(), "IWDA.AS", 30)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if vol.IsNegative() {
		t.Errorf("Expected non-negative volatility, got %s", vol)
	}
}

func TestMockBasePrice(t *testing.T) {
	svc := NewService(Config{Provider: ProviderMock})

	knownTickers := map[string]float64{
		"IWDA.AS": 95.00,
		"VWCE.DE": 120.00,
		"QQQ":     400.00,
	}

	for ticker, expectedPrice := range knownTickers {
		price := svc.mockBasePrice(ticker)
		if !price.Equal(decimal.NewFromFloat(expectedPrice)) {
			t.Errorf("Expected %s price to be %.2f, got %s", ticker, expectedPrice, price.String())
		}
	}

	unknownPrice := svc.mockBasePrice("UNKNOWN")
	if unknownPrice.IsZero() || unknownPrice.IsNegative() {
		t.Error("Unknown ticker should have positive price")
	}
}

package advisor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

func testPortfolio() *models.Portfolio {
	return &models.Portfolio{
		ID:   "family",
		Name: "Family Portfolio",
		Profile: models.InvestorProfile{
			RiskTolerance: "moderate",
		},
		Positions: []models.Position{
			{
				ID: "etf", Name: "MSCI World ETF", Ticker: "IWDA.AS",
				Category:  models.AssetClassEquities,
				CostBasis: decimal.NewFromInt(8000), CurrentValue: decimal.NewFromInt(10000),
			},
			{
				ID: "cash", Name: "Cuenta corriente",
				Category:  models.AssetClassCash,
				CostBasis: decimal.NewFromInt(5000), CurrentValue: decimal.NewFromInt(5000),
			},
		},
	}
}

func testRiskMetrics() *models.RiskMetrics {
	return &models.RiskMetrics{
		AnnualVolatilityPct: decimal.NewFromFloat(15.6),
		SharpeRatio:         decimal.NewFromFloat(0.78),
		Beta:                decimal.NewFromFloat(0.67),
		RiskScore:           5,
		RiskCategory:        models.RiskCategoryModerate,
	}
}

func TestService_Ask_StaticWithoutAPIKey(t *testing.T) {
	svc := NewService(&Config{CacheTTL: time.Hour})

	answer, err := svc.Ask(context.Background(), &Question{Text: "How risky is my portfolio?"}, testPortfolio(), testRiskMetrics())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if answer.Model != "static" {
		t.Errorf("Expected static model without API key, got %s", answer.Model)
	}
	if answer.Text == "" {
		t.Error("Expected non-empty answer")
	}
	if !strings.Contains(answer.Text, "risk score of 5/10") {
		t.Errorf("Expected risk score in static answer, got: %s", answer.Text)
	}
	if len(answer.Disclaimers) == 0 {
		t.Error("Expected disclaimers on every answer")
	}
}

func TestService_Ask_EmptyQuestion(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.Ask(context.Background(), &Question{Text: "   "}, testPortfolio(), nil)
	if err == nil {
		t.Error("Expected error for empty question")
	}
}

func TestService_Ask_Cached(t *testing.T) {
	svc := NewService(&Config{CacheTTL: time.Hour})

	first, err := svc.Ask(context.Background(), &Question{Text: "Summarize my allocation"}, testPortfolio(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("First answer should not be cached")
	}

	second, err := svc.Ask(context.Background(), &Question{Text: "summarize my allocation  "}, testPortfolio(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("Second answer should come from cache")
	}
	if second.Text != first.Text {
		t.Error("Cached answer should match the original")
	}
}

func TestService_InvalidateCache(t *testing.T) {
	svc := NewService(&Config{CacheTTL: time.Hour})

	svc.Ask(context.Background(), &Question{Text: "Summarize my allocation"}, testPortfolio(), nil)
	svc.InvalidateCache()

	answer, err := svc.Ask(context.Background(), &Question{Text: "Summarize my allocation"}, testPortfolio(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer.Cached {
		t.Error("Answer after invalidation should not be cached")
	}
}

func TestService_BuildSystemPrompt(t *testing.T) {
	svc := NewService(nil)

	prompt := svc.buildSystemPrompt(testPortfolio(), testRiskMetrics())

	for _, want := range []string{
		"MSCI World ETF",
		"Total Value: EUR 15000.00",
		"Risk Score: 5/10",
		"NEVER provide specific buy/sell recommendations",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestService_Ask_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewService(&Config{APIKey: "test-key", BaseURL: server.URL, MaxRetries: 0})

	_, err := svc.Ask(context.Background(), &Question{Text: "How risky is my portfolio?"}, testPortfolio(), nil)
	if err == nil {
		t.Fatal("Expected error from failing API")
	}
	if !strings.Contains(err.Error(), "API error 503") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

func TestService_Ask_APISuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Your allocation is balanced."}}]}`))
	}))
	defer server.Close()

	svc := NewService(&Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini"})

	answer, err := svc.Ask(context.Background(), &Question{Text: "Summarize my allocation"}, testPortfolio(), testRiskMetrics())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer.Text != "Your allocation is balanced." {
		t.Errorf("Unexpected answer text: %s", answer.Text)
	}
	if answer.Model != "gpt-4o-mini" {
		t.Errorf("Expected configured model, got %s", answer.Model)
	}
}

func TestService_StaticAnswer_EmptyPortfolio(t *testing.T) {
	svc := NewService(nil)

	text := svc.staticAnswer(&models.Portfolio{}, nil)
	if !strings.Contains(text, "No positions") {
		t.Errorf("Expected empty-portfolio message, got: %s", text)
	}
}

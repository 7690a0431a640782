// Package advisor generates portfolio commentary from an LLM, with a
// deterministic fallback when no API key is configured.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ravila/patrimonio/internal/models"
)

// Config holds advisor configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	CacheTTL    time.Duration
	MaxRetries  int
}

// DefaultConfig returns sensible defaults for the OpenAI API
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		MaxTokens:   800,
		Temperature: 0.4,
		Timeout:     30 * time.Second,
		CacheTTL:    1 * time.Hour,
		MaxRetries:  2,
	}
}

// Service provides AI-backed portfolio commentary
type Service struct {
	cfg        *Config
	httpClient *http.Client
	cache      *answerCache
}

// NewService creates a new advisor service
func NewService(cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Service{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: newAnswerCache(cfg.CacheTTL),
	}
}

// Question is a user question about the portfolio
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Answer is the advisor's response
type Answer struct {
	ID           string    `json:"id"`
	QuestionID   string    `json:"question_id"`
	Text         string    `json:"text"`
	Model        string    `json:"model"`
	Disclaimers  []string  `json:"disclaimers"`
	Cached       bool      `json:"cached"`
	ProcessingMs int64     `json:"processing_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// Ask answers a question with the portfolio and its risk metrics as
// context. Without an API key a static summary is returned instead of
// an error so the endpoint stays usable offline.
func (s *Service) Ask(ctx context.Context, question *Question, portfolio *models.Portfolio, risk *models.RiskMetrics) (*Answer, error) {
	startTime := time.Now()

	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	question.Timestamp = time.Now()

	if strings.TrimSpace(question.Text) == "" {
		return nil, fmt.Errorf("question text is required")
	}

	if cached := s.cache.get(question.Text); cached != nil {
		cached.Cached = true
		cached.QuestionID = question.ID
		cached.ProcessingMs = time.Since(startTime).Milliseconds()
		return cached, nil
	}

	var text string
	var model string
	var err error

	if s.cfg.APIKey == "" {
		text = s.staticAnswer(portfolio, risk)
		model = "static"
	} else {
		text, err = s.callChatAPI(ctx, s.buildSystemPrompt(portfolio, risk), question.Text)
		if err != nil {
			return nil, fmt.Errorf("advisor API error: %w", err)
		}
		model = s.cfg.Model
	}

	answer := &Answer{
		ID:           uuid.NewString(),
		QuestionID:   question.ID,
		Text:         text,
		Model:        model,
		Disclaimers:  disclaimers(),
		Cached:       false,
		ProcessingMs: time.Since(startTime).Milliseconds(),
		Timestamp:    time.Now(),
	}

	s.cache.set(question.Text, answer)

	return answer, nil
}

// buildSystemPrompt assembles portfolio context and guardrails
func (s *Service) buildSystemPrompt(portfolio *models.Portfolio, risk *models.RiskMetrics) string {
	var sb strings.Builder

	sb.WriteString(`You are a portfolio analysis assistant for a family investment dashboard.

## Your Role
- Provide factual, data-driven commentary on the family's portfolio
- Explain allocation, risk and diversification clearly
- Cite specific positions and numbers when answering

## Critical Rules
1. NEVER provide specific buy/sell recommendations for individual securities
2. NEVER guarantee returns or predict specific price movements
3. NEVER provide tax advice
4. If you don't have data to answer accurately, say so clearly

All amounts are in EUR.

`)

	if portfolio != nil && len(portfolio.Positions) > 0 {
		total := portfolio.TotalValue()
		sb.WriteString("## Current Portfolio\n")
		sb.WriteString(fmt.Sprintf("- Total Value: EUR %s\n", total.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("- Total P&L: EUR %s (%s%%)\n",
			portfolio.TotalPnL().StringFixed(2), portfolio.TotalPnLPercent().StringFixed(2)))
		sb.WriteString(fmt.Sprintf("- Positions: %d\n", len(portfolio.Positions)))

		sb.WriteString("\n### Positions\n")
		for i := range portfolio.Positions {
			p := &portfolio.Positions[i]
			pct := "0.00"
			if total.IsPositive() {
				pct = p.CurrentValue.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(2)
			}
			sb.WriteString(fmt.Sprintf("- %s (%s): EUR %s (%s%%)\n",
				p.Name, p.Category.DisplayName(), p.CurrentValue.StringFixed(2), pct))
		}

		sb.WriteString("\n### Asset Class Distribution\n")
		for class, alloc := range portfolio.CalculateDistribution() {
			sb.WriteString(fmt.Sprintf("- %s: %s%% (target %s%%)\n",
				class.DisplayName(), alloc.ActualPct.StringFixed(2), alloc.TargetPct.StringFixed(2)))
		}
	}

	if risk != nil {
		sb.WriteString("\n### Risk Metrics\n")
		sb.WriteString(fmt.Sprintf("- Annual Volatility: %s%%\n", risk.AnnualVolatilityPct.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("- Sharpe Ratio: %s\n", risk.SharpeRatio.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("- Beta: %s\n", risk.Beta.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("- Risk Score: %d/10 (%s)\n", risk.RiskScore, risk.RiskCategory.Style().Label))
	}

	return sb.String()
}

// callChatAPI makes a chat-completions request
func (s *Service) callChatAPI(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":       s.cfg.Model,
		"max_tokens":  s.cfg.MaxTokens,
		"temperature": s.cfg.Temperature,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	var resp *http.Response
	var body []byte
	for i := 0; i <= s.cfg.MaxRetries; i++ {
		req, reqErr := http.NewRequestWithContext(ctx, "POST", s.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
		if reqErr != nil {
			return "", reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

		resp, err = s.httpClient.Do(req)
		if err == nil {
			// Drain before any retry; the last body carries the error detail
			body, err = io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return "", err
			}
			if resp.StatusCode < 500 {
				break
			}
		}
		if i < s.cfg.MaxRetries {
			select {
			case <-time.After(time.Duration(i+1) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return result.Choices[0].Message.Content, nil
}

// staticAnswer builds a deterministic summary from the portfolio data
func (s *Service) staticAnswer(portfolio *models.Portfolio, risk *models.RiskMetrics) string {
	var sb strings.Builder

	sb.WriteString("AI commentary is not configured; here is a data summary instead.\n\n")

	if portfolio != nil && len(portfolio.Positions) > 0 {
		sb.WriteString(fmt.Sprintf("The portfolio holds %d positions worth EUR %s in total",
			len(portfolio.Positions), portfolio.TotalValue().StringFixed(2)))
		sb.WriteString(fmt.Sprintf(", with an unrealized P&L of EUR %s (%s%%).\n",
			portfolio.TotalPnL().StringFixed(2), portfolio.TotalPnLPercent().StringFixed(2)))

		if portfolio.NeedsRebalancing(decimal.NewFromInt(5)) {
			sb.WriteString("At least one asset class has drifted more than 5 points from its target allocation.\n")
		}
	} else {
		sb.WriteString("No positions are loaded yet.\n")
	}

	if risk != nil {
		style := risk.RiskCategory.Style()
		sb.WriteString(fmt.Sprintf("Estimated annual volatility is %s%% with a risk score of %d/10 (%s). %s\n",
			risk.AnnualVolatilityPct.StringFixed(2), risk.RiskScore, style.Label, style.Narrative))
	}

	return sb.String()
}

// InvalidateCache drops cached answers, called after positions change
func (s *Service) InvalidateCache() {
	s.cache.clear()
}

func disclaimers() []string {
	return []string{
		"This information is AI-generated and for educational purposes only.",
		"This does not constitute investment, tax, or legal advice.",
		"Past performance does not guarantee future results.",
	}
}

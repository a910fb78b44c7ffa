// Package marketdata fetches per-symbol research data, guarded by the
// cache, retry, and circuit breaker layers.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/finsight-ai/finsight/pkg/models"
)

// Source is the upstream market-data API. Implementations fetch one
// category per call and return an error on any transport or data failure;
// the guarded client above them decides how failures degrade.
type Source interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Financials(ctx context.Context, symbol string) (*models.Financials, error)
	Technicals(ctx context.Context, symbol string) (*models.Technicals, error)
	News(ctx context.Context, symbol string) (*models.NewsSummary, error)
	AnalystViews(ctx context.Context, symbol string) (*models.AnalystViews, error)
}

// HTTPSource is a thin JSON client for a market-data HTTP API.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSource creates an HTTPSource. apiKey may be empty for providers
// that need none.
func NewHTTPSource(baseURL, apiKey string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) getJSON(ctx context.Context, path, symbol string, out any) error {
	target, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("invalid market data URL: %w", err)
	}

	q := url.Values{"symbol": {symbol}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String()+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("market data %s: status %d: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (s *HTTPSource) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var q models.Quote
	if err := s.getJSON(ctx, "/v1/quote", symbol, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *HTTPSource) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	var f models.Financials
	if err := s.getJSON(ctx, "/v1/financials", symbol, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *HTTPSource) Technicals(ctx context.Context, symbol string) (*models.Technicals, error) {
	var t models.Technicals
	if err := s.getJSON(ctx, "/v1/technicals", symbol, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *HTTPSource) News(ctx context.Context, symbol string) (*models.NewsSummary, error) {
	var n models.NewsSummary
	if err := s.getJSON(ctx, "/v1/news", symbol, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *HTTPSource) AnalystViews(ctx context.Context, symbol string) (*models.AnalystViews, error) {
	var a models.AnalystViews
	if err := s.getJSON(ctx, "/v1/analysts", symbol, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

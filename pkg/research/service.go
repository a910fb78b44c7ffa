// Package research runs the end-to-end pipeline: guarded data fetches, a
// model call through the provider chain, confidence scoring, and
// persistence.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/finsight-ai/finsight/pkg/confidence"
	"github.com/finsight-ai/finsight/pkg/marketdata"
	"github.com/finsight-ai/finsight/pkg/models"
	"github.com/finsight-ai/finsight/pkg/provider"
	"github.com/finsight-ai/finsight/pkg/store"
)

// Service orchestrates one research query at a time. All dependencies are
// injected; the service owns none of their lifecycles.
type Service struct {
	client *marketdata.Client
	chain  *provider.Chain
	scorer *confidence.Scorer
	store  *store.Store
}

// New creates a Service. store may be nil to disable persistence.
func New(client *marketdata.Client, chain *provider.Chain, scorer *confidence.Scorer, st *store.Store) *Service {
	return &Service{client: client, chain: chain, scorer: scorer, store: st}
}

// Research answers one query about a symbol. Data categories that fail
// after retries degrade to unavailable markers and lower the confidence
// score; only an invalid symbol or full provider exhaustion fails the
// request.
func (s *Service) Research(ctx context.Context, symbol, query string) (*models.Report, error) {
	symbol = marketdata.NormalizeSymbol(symbol)
	if err := marketdata.ValidateSymbol(symbol); err != nil {
		return nil, fmt.Errorf("invalid symbol: %w", err)
	}

	data := s.client.FetchAll(ctx, symbol)

	backend, err := s.chain.Acquire("")
	if err != nil {
		return nil, fmt.Errorf("acquire model backend: %w", err)
	}

	prompt := buildPrompt(symbol, query, data)

	start := time.Now()
	analysis, tokens, err := backend.Complete(ctx, prompt)
	latency := time.Since(start)
	current := s.chain.Current()
	if err != nil {
		s.chain.RecordFailure(current)
		return nil, fmt.Errorf("generate analysis: %w", err)
	}
	s.chain.RecordSuccess(current, tokens, latency)

	conf := s.scorer.Score(data, analysis, symbol)

	report := &models.Report{
		Symbol:     symbol,
		Query:      query,
		Analysis:   analysis + "\n" + confidence.FormatReport(conf),
		Confidence: conf,
		Provider:   current,
		Model:      backend.Model(),
		Data:       data,
		CreatedAt:  time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveReport(ctx, report); err != nil {
			log.Printf("save report error: %v", err)
		}
		usage := models.UsageRecord{
			Provider:    current,
			Model:       backend.Model(),
			Symbol:      symbol,
			TotalTokens: tokens,
			LatencyMs:   latency.Milliseconds(),
		}
		if err := s.store.RecordUsage(ctx, usage); err != nil {
			log.Printf("record usage error: %v", err)
		}
	}

	return report, nil
}

// buildPrompt assembles the data bundle and the user's question into a
// single prompt. The reasoning itself belongs to the model; this only
// frames the inputs.
func buildPrompt(symbol, query string, data models.ResearchData) string {
	dataJSON, _ := json.MarshalIndent(data, "", "  ")
	return fmt.Sprintf(
		"You are a stock research assistant coordinating fundamental, technical, risk, and comparison analyses.\n"+
			"Symbol: %s\n"+
			"Question: %s\n\n"+
			"Fetched data (categories with an \"error\" field were unavailable; do not invent their contents):\n%s\n\n"+
			"Write a research report answering the question. State clearly when a conclusion rests on incomplete data.",
		symbol, query, dataJSON)
}

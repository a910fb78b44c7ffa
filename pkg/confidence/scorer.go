// Package confidence quantifies the reliability of a generated analysis from
// the data that fed it.
package confidence

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/models"
)

// Phrases scanned in the analysis text for the agent-agreement factor.
var (
	consensusPhrases = []string{
		"all agents agree",
		"unanimous",
		"consistent",
		"aligned",
		"agreement",
	}
	disagreementPhrases = []string{
		"however",
		"but",
		"conflicting",
		"disagreement",
		"mixed signals",
		"contradictory",
	}
)

// Caveats emitted when a factor falls below its threshold. The thresholds
// are independent of the composite tier boundaries; a single weak factor
// can generate a caveat without lowering the overall tier.
const (
	caveatCompleteness = "Limited data availability - some analysis aspects may be incomplete"
	caveatFreshness    = "Data may not be fully current - verify latest information"
	caveatAgreement    = "Mixed signals from different analysis perspectives - higher uncertainty"
	caveatSignal       = "Weak technical/fundamental signals - market may be unclear"
	caveatHistorical   = "Limited track record for this symbol - exercise additional caution"
)

const historyLimit = 100

type outcome struct {
	symbol  string
	correct bool
}

// Scorer computes composite confidence scores. The weights are fixed at
// construction and validated to sum to 1.0. Scoring is a pure function of
// its inputs plus the bounded prediction history.
type Scorer struct {
	weights           config.WeightsConfig
	defaultHistorical float64

	mu      sync.Mutex
	history []outcome
}

// New creates a Scorer. The weights must sum to 1.0 and the default
// historical prior must be in [0,1]; anything else is a construction error,
// never a call-time one.
func New(cfg config.ConfidenceConfig) (*Scorer, error) {
	if sum := cfg.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("confidence weights must sum to 1.0, got %.4f", sum)
	}
	if cfg.DefaultHistorical < 0 || cfg.DefaultHistorical > 1 {
		return nil, fmt.Errorf("default historical accuracy must be in [0,1], got %.2f", cfg.DefaultHistorical)
	}
	return &Scorer{
		weights:           cfg.Weights,
		defaultHistorical: cfg.DefaultHistorical,
	}, nil
}

// Score computes the composite confidence for one analysis. Missing or
// error-flagged data categories lower the factors; they never cause an
// error.
func (s *Scorer) Score(data models.ResearchData, analysis, symbol string) models.ConfidenceResult {
	factors := models.ConfidenceFactors{
		DataCompleteness:   dataCompleteness(data),
		DataFreshness:      dataFreshness(data),
		AgentAgreement:     agentAgreement(analysis),
		SignalStrength:     signalStrength(data),
		HistoricalAccuracy: s.historicalAccuracy(symbol),
	}

	score := factors.DataCompleteness*s.weights.DataCompleteness +
		factors.DataFreshness*s.weights.DataFreshness +
		factors.AgentAgreement*s.weights.AgentAgreement +
		factors.SignalStrength*s.weights.SignalStrength +
		factors.HistoricalAccuracy*s.weights.HistoricalAccuracy

	var level models.ConfidenceLevel
	var interpretation string
	switch {
	case score >= 0.8:
		level = models.ConfidenceHigh
		interpretation = "Strong confidence in this analysis"
	case score >= 0.6:
		level = models.ConfidenceModerate
		interpretation = "Reasonable confidence with some uncertainty"
	default:
		level = models.ConfidenceLow
		interpretation = "Limited confidence, use caution"
	}

	return models.ConfidenceResult{
		OverallScore:   score,
		Level:          level,
		Interpretation: interpretation,
		Factors:        factors,
		Caveats:        caveats(factors),
	}
}

// RecordOutcome records whether a past prediction for a symbol proved
// correct. The history is bounded to the most recent entries.
func (s *Scorer) RecordOutcome(symbol, prediction string, correct bool) {
	_ = prediction // retained by callers that persist outcomes; accuracy only needs correctness
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, outcome{symbol: symbol, correct: correct})
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// historicalAccuracy is the fraction of recorded predictions for this symbol
// marked correct, or the configured prior when no history exists. The prior
// is deliberately optimistic and tunable; it does not encode real
// calibration.
func (s *Scorer) historicalAccuracy(symbol string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total, correct int
	for _, o := range s.history {
		if o.symbol != symbol {
			continue
		}
		total++
		if o.correct {
			correct++
		}
	}
	if total == 0 {
		return s.defaultHistorical
	}
	return float64(correct) / float64(total)
}

// dataCompleteness is the fraction of the five required categories present
// with non-trivial, error-free content.
func dataCompleteness(data models.ResearchData) float64 {
	const total = 5
	available := 0

	if q := data.Quote; q != nil && q.Err == "" && q.CurrentPrice > 0 {
		available++
	}
	if f := data.Financials; f != nil && f.Err == "" && populatedFinancialFields(f) > 1 {
		available++
	}
	if t := data.Technicals; t != nil && t.Err == "" && t.TrendSignal != "" {
		available++
	}
	if n := data.News; n != nil && n.Err == "" && len(n.Headlines) > 0 {
		available++
	}
	if a := data.Analysts; a != nil && a.Err == "" && a.RecommendationKey != "" {
		available++
	}

	return float64(available) / float64(total)
}

func populatedFinancialFields(f *models.Financials) int {
	n := 0
	for _, v := range []float64{f.Revenue, f.NetIncome, f.TotalAssets, f.TotalLiabilities, f.OperatingCashFlow, f.FreeCashFlow} {
		if v != 0 {
			n++
		}
	}
	return n
}

// dataFreshness infers freshness from presence: 0.5 base, +0.3 for an
// error-free current quote, +0.2 for error-free recent news, capped at 1.0.
// No timestamp comparison is done; presence stands in for recency.
func dataFreshness(data models.ResearchData) float64 {
	score := 0.5
	if data.Quote != nil && data.Quote.Err == "" {
		score += 0.3
	}
	if data.News != nil && data.News.Err == "" {
		score += 0.2
	}
	return math.Min(1.0, score)
}

// agentAgreement scans the analysis text for consensus and disagreement
// phrases: 0.7 base, +0.1 per consensus phrase, -0.15 per disagreement
// phrase, clamped to [0,1].
func agentAgreement(analysis string) float64 {
	lower := strings.ToLower(analysis)

	score := 0.7
	for _, p := range consensusPhrases {
		if strings.Contains(lower, p) {
			score += 0.1
		}
	}
	for _, p := range disagreementPhrases {
		if strings.Contains(lower, p) {
			score -= 0.15
		}
	}
	return math.Max(0.0, math.Min(1.0, score))
}

// signalStrength starts at 0.5 and adds for strong or mild trend signals,
// extreme RSI, and strong analyst conviction, capped at 1.0.
func signalStrength(data models.ResearchData) float64 {
	score := 0.5

	if t := data.Technicals; t != nil && t.Err == "" {
		switch t.TrendSignal {
		case models.TrendStrongBullish, models.TrendStrongBearish:
			score += 0.2
		case models.TrendBullish, models.TrendBearish:
			score += 0.1
		}
		if t.RSI != 0 && (t.RSI < 30 || t.RSI > 70) {
			score += 0.1
		}
	}

	if a := data.Analysts; a != nil && a.Err == "" {
		switch a.RecommendationKey {
		case models.RecommendationStrongBuy, models.RecommendationStrongSell:
			score += 0.2
		}
	}

	return math.Min(1.0, score)
}

func caveats(f models.ConfidenceFactors) []string {
	var out []string
	if f.DataCompleteness < 0.7 {
		out = append(out, caveatCompleteness)
	}
	if f.DataFreshness < 0.6 {
		out = append(out, caveatFreshness)
	}
	if f.AgentAgreement < 0.6 {
		out = append(out, caveatAgreement)
	}
	if f.SignalStrength < 0.5 {
		out = append(out, caveatSignal)
	}
	if f.HistoricalAccuracy < 0.5 {
		out = append(out, caveatHistorical)
	}
	return out
}

package confidence

import (
	"math"
	"strings"
	"testing"

	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/models"
)

func defaultScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(config.Default().Confidence)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// historicalOnlyScorer puts all weight on the historical factor so the
// composite equals the prior exactly. Useful for probing tier boundaries.
func historicalOnlyScorer(t *testing.T, prior float64) *Scorer {
	t.Helper()
	s, err := New(config.ConfidenceConfig{
		Weights:           config.WeightsConfig{HistoricalAccuracy: 1.0},
		DefaultHistorical: prior,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func fullData() models.ResearchData {
	return models.ResearchData{
		Quote: &models.Quote{Symbol: "AAPL", CurrentPrice: 185.50},
		Financials: &models.Financials{
			Symbol:    "AAPL",
			Revenue:   383_285_000_000,
			NetIncome: 96_995_000_000,
		},
		Technicals: &models.Technicals{Symbol: "AAPL", TrendSignal: models.TrendBullish, RSI: 55},
		News:       &models.NewsSummary{Symbol: "AAPL", Headlines: []string{"Apple ships new product"}},
		Analysts:   &models.AnalystViews{Symbol: "AAPL", RecommendationKey: "buy"},
	}
}

func TestRejectsInvalidWeights(t *testing.T) {
	_, err := New(config.ConfidenceConfig{
		Weights:           config.WeightsConfig{DataCompleteness: 0.5, DataFreshness: 0.4},
		DefaultHistorical: 0.7,
	})
	if err == nil {
		t.Error("expected error for weights not summing to 1.0")
	}

	_, err = New(config.ConfidenceConfig{
		Weights:           config.WeightsConfig{HistoricalAccuracy: 1.0},
		DefaultHistorical: 1.5,
	})
	if err == nil {
		t.Error("expected error for out-of-range historical prior")
	}
}

func TestCompleteDataScoresHigherThanPartial(t *testing.T) {
	s := defaultScorer(t)
	analysis := "The outlook is positive."

	full := s.Score(fullData(), analysis, "AAPL")

	partial := fullData()
	partial.News = nil
	partial.Analysts = &models.AnalystViews{Symbol: "AAPL", Err: "rate limited"}
	degraded := s.Score(partial, analysis, "AAPL")

	if degraded.OverallScore >= full.OverallScore {
		t.Errorf("partial data scored %f, full data %f; expected strictly lower",
			degraded.OverallScore, full.OverallScore)
	}
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		prior float64
		want  models.ConfidenceLevel
	}{
		{0.8, models.ConfidenceHigh},
		{0.79999, models.ConfidenceModerate},
		{0.6, models.ConfidenceModerate},
		{0.59999, models.ConfidenceLow},
	}
	for _, tt := range tests {
		s := historicalOnlyScorer(t, tt.prior)
		got := s.Score(models.ResearchData{}, "", "TEST")
		if got.Level != tt.want {
			t.Errorf("prior %.5f: got level %s, want %s", tt.prior, got.Level, tt.want)
		}
		if math.Abs(got.OverallScore-tt.prior) > 1e-9 {
			t.Errorf("prior %.5f: composite %f should equal the prior", tt.prior, got.OverallScore)
		}
	}
}

func TestAgentAgreementPhrases(t *testing.T) {
	tests := []struct {
		analysis string
		want     float64
	}{
		{"plain text with no signal words", 0.7},
		{"all agents agree on the outlook", 0.8},
		{"however, the picture is mixed signals", 0.4},
		{"ALL AGENTS AGREE", 0.8}, // matching is case-insensitive
	}
	for _, tt := range tests {
		got := agentAgreement(tt.analysis)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("agentAgreement(%q) = %f, want %f", tt.analysis, got, tt.want)
		}
	}

	// Heavy disagreement clamps at zero, never goes negative.
	worst := agentAgreement("however but conflicting disagreement mixed signals contradictory")
	if worst != 0 {
		t.Errorf("expected clamp at 0, got %f", worst)
	}
}

func TestDataFreshness(t *testing.T) {
	empty := dataFreshness(models.ResearchData{})
	if empty != 0.5 {
		t.Errorf("expected base 0.5, got %f", empty)
	}

	both := dataFreshness(models.ResearchData{
		Quote: &models.Quote{CurrentPrice: 1},
		News:  &models.NewsSummary{Headlines: []string{"h"}},
	})
	if both != 1.0 {
		t.Errorf("expected 1.0 with quote and news, got %f", both)
	}

	errored := dataFreshness(models.ResearchData{
		Quote: &models.Quote{Err: "timeout"},
	})
	if errored != 0.5 {
		t.Errorf("errored quote must not count toward freshness, got %f", errored)
	}
}

func TestSignalStrength(t *testing.T) {
	base := signalStrength(models.ResearchData{})
	if base != 0.5 {
		t.Errorf("expected base 0.5, got %f", base)
	}

	strong := signalStrength(models.ResearchData{
		Technicals: &models.Technicals{TrendSignal: models.TrendStrongBullish, RSI: 25},
		Analysts:   &models.AnalystViews{RecommendationKey: models.RecommendationStrongBuy},
	})
	if strong != 1.0 {
		t.Errorf("expected 1.0 for strong trend, extreme RSI, and strong_buy, got %f", strong)
	}

	mild := signalStrength(models.ResearchData{
		Technicals: &models.Technicals{TrendSignal: models.TrendBearish, RSI: 50},
	})
	if math.Abs(mild-0.6) > 1e-9 {
		t.Errorf("expected 0.6 for mild trend alone, got %f", mild)
	}
}

func TestCaveats(t *testing.T) {
	s := defaultScorer(t)

	// Nothing fetched: completeness and agreement caveats do not fire on
	// empty analysis (agreement base is 0.7), but completeness does.
	r := s.Score(models.ResearchData{}, "", "TEST")
	found := false
	for _, c := range r.Caveats {
		if strings.Contains(c, "Limited data availability") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a completeness caveat, got %v", r.Caveats)
	}

	// Strongly disagreeing analysis triggers the agreement caveat.
	r = s.Score(fullData(), "however the signals are conflicting and contradictory", "AAPL")
	found = false
	for _, c := range r.Caveats {
		if strings.Contains(c, "Mixed signals") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an agreement caveat, got %v", r.Caveats)
	}

	// Full data with neutral analysis produces none of the data caveats.
	r = s.Score(fullData(), "steady performance across the board", "AAPL")
	if len(r.Caveats) != 0 {
		t.Errorf("expected no caveats for full data, got %v", r.Caveats)
	}
}

func TestHistoricalAccuracyFromOutcomes(t *testing.T) {
	s := historicalOnlyScorer(t, 0.7)

	// No history: the prior applies.
	if got := s.Score(models.ResearchData{}, "", "AAPL").OverallScore; got != 0.7 {
		t.Fatalf("expected prior 0.7, got %f", got)
	}

	s.RecordOutcome("AAPL", "bullish", true)
	s.RecordOutcome("AAPL", "bullish", true)
	s.RecordOutcome("AAPL", "bearish", false)
	s.RecordOutcome("MSFT", "bullish", false) // other symbols don't count

	got := s.Score(models.ResearchData{}, "", "AAPL").OverallScore
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected accuracy %f, got %f", want, got)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s := historicalOnlyScorer(t, 0.7)

	// Fill the window with failures, then push them out with successes.
	for i := 0; i < historyLimit; i++ {
		s.RecordOutcome("AAPL", "bearish", false)
	}
	for i := 0; i < historyLimit; i++ {
		s.RecordOutcome("AAPL", "bullish", true)
	}

	if got := s.Score(models.ResearchData{}, "", "AAPL").OverallScore; got != 1.0 {
		t.Errorf("old outcomes should have aged out of the window, got %f", got)
	}
}

func TestScoreEndToEnd(t *testing.T) {
	s := defaultScorer(t)

	// Hand-computed composite. Full data gives completeness 1.0 and
	// freshness 1.0; "all agents agree" gives agreement 0.8; bullish trend
	// with neutral RSI gives signal 0.6; no history gives the 0.7 prior.
	// 0.25*1.0 + 0.15*1.0 + 0.30*0.8 + 0.20*0.6 + 0.10*0.7 = 0.83
	r := s.Score(fullData(), "all agents agree the outlook is strong", "AAPL")

	if math.Abs(r.OverallScore-0.83) > 1e-9 {
		t.Errorf("expected composite 0.83, got %f", r.OverallScore)
	}
	if r.Level != models.ConfidenceHigh {
		t.Errorf("expected HIGH, got %s", r.Level)
	}
	if len(r.Caveats) != 0 {
		t.Errorf("expected no caveats, got %v", r.Caveats)
	}
}

func TestFormatReport(t *testing.T) {
	s := defaultScorer(t)
	r := s.Score(models.ResearchData{}, "however the data is conflicting", "TEST")

	out := FormatReport(r)
	for _, want := range []string{
		"CONFIDENCE ASSESSMENT",
		"Overall Confidence:",
		"Data Completeness",
		"Historical Accuracy",
		"Caveats:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

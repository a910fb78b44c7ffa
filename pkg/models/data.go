package models

import "time"

// Quote holds current price data for a symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name,omitempty"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     int64   `json:"market_cap,omitempty"`
	PERatio       float64 `json:"pe_ratio,omitempty"`
	WeekHigh52    float64 `json:"52_week_high,omitempty"`
	WeekLow52     float64 `json:"52_week_low,omitempty"`
	Volume        int64   `json:"volume,omitempty"`
	AvgVolume     int64   `json:"avg_volume,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
	Err           string  `json:"error,omitempty"`
}

// Financials holds key financial statement figures.
type Financials struct {
	Symbol            string  `json:"symbol"`
	Revenue           float64 `json:"revenue,omitempty"`
	NetIncome         float64 `json:"net_income,omitempty"`
	TotalAssets       float64 `json:"total_assets,omitempty"`
	TotalLiabilities  float64 `json:"total_liabilities,omitempty"`
	OperatingCashFlow float64 `json:"operating_cash_flow,omitempty"`
	FreeCashFlow      float64 `json:"free_cash_flow,omitempty"`
	Err               string  `json:"error,omitempty"`
}

// Trend signal values reported by the technical indicators source.
const (
	TrendStrongBullish = "strong_bullish"
	TrendBullish       = "bullish"
	TrendNeutral       = "neutral"
	TrendBearish       = "bearish"
	TrendStrongBearish = "strong_bearish"
)

// Technicals holds computed technical indicators for a symbol.
type Technicals struct {
	Symbol      string  `json:"symbol"`
	TrendSignal string  `json:"trend_signal,omitempty"`
	RSI         float64 `json:"rsi,omitempty"`
	SMA20       float64 `json:"sma_20,omitempty"`
	SMA50       float64 `json:"sma_50,omitempty"`
	MACD        float64 `json:"macd,omitempty"`
	Err         string  `json:"error,omitempty"`
}

// NewsSummary holds recent news headlines and aggregate sentiment.
type NewsSummary struct {
	Symbol    string   `json:"symbol"`
	Headlines []string `json:"headlines,omitempty"`
	Sentiment string   `json:"sentiment,omitempty"`
	Err       string   `json:"error,omitempty"`
}

// Analyst recommendation keys with strong conviction.
const (
	RecommendationStrongBuy  = "strong_buy"
	RecommendationStrongSell = "strong_sell"
)

// AnalystViews holds aggregated analyst recommendations.
type AnalystViews struct {
	Symbol            string  `json:"symbol"`
	RecommendationKey string  `json:"recommendation_key,omitempty"`
	TargetMean        float64 `json:"target_mean,omitempty"`
	NumberOfAnalysts  int     `json:"number_of_analysts,omitempty"`
	Err               string  `json:"error,omitempty"`
}

// ResearchData bundles the fetched categories for one research query.
// A nil category means the fetch was never attempted or failed entirely;
// a non-nil category with Err set means the fetch surfaced an error.
type ResearchData struct {
	Quote      *Quote        `json:"quote,omitempty"`
	Financials *Financials   `json:"financials,omitempty"`
	Technicals *Technicals   `json:"technicals,omitempty"`
	News       *NewsSummary  `json:"news,omitempty"`
	Analysts   *AnalystViews `json:"analysts,omitempty"`
	FetchedAt  time.Time     `json:"fetched_at"`
}

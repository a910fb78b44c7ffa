package models

import "time"

// Report is a completed research report persisted for later review.
type Report struct {
	ID         string           `json:"id"`
	Symbol     string           `json:"symbol"`
	Query      string           `json:"query"`
	Analysis   string           `json:"analysis"`
	Confidence ConfidenceResult `json:"confidence"`
	Provider   string           `json:"provider"`
	Model      string           `json:"model"`
	Data       ResearchData     `json:"data"`
	CreatedAt  time.Time        `json:"created_at"`
}

// FeedbackEntry is a user rating for a research report.
type FeedbackEntry struct {
	ID             int64     `json:"id"`
	ReportID       string    `json:"report_id"`
	Rating         int       `json:"rating"`
	HelpfulAspects []string  `json:"helpful_aspects,omitempty"`
	MissingAspects []string  `json:"missing_aspects,omitempty"`
	Comments       string    `json:"comments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FeedbackSummary aggregates feedback across reports.
type FeedbackSummary struct {
	TotalFeedback  int            `json:"total_feedback"`
	AverageRating  float64        `json:"average_rating"`
	HelpfulAspects map[string]int `json:"helpful_aspects,omitempty"`
	MissingAspects map[string]int `json:"missing_aspects,omitempty"`
}

// UsageRecord tracks token usage for one model call.
type UsageRecord struct {
	ID          int64     `json:"id"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Symbol      string    `json:"symbol"`
	TotalTokens int       `json:"total_tokens"`
	LatencyMs   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// UsageSummary aggregates usage grouped by provider and model.
type UsageSummary struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	RequestCount int    `json:"request_count"`
	TotalTokens  int    `json:"total_tokens"`
}

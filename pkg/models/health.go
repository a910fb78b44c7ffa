package models

import "time"

// BreakerStatus is a point-in-time snapshot of one circuit breaker.
type BreakerStatus struct {
	Name          string    `json:"name"`
	State         string    `json:"state"`
	FailureCount  int       `json:"failure_count"`
	SuccessCount  int       `json:"success_count"`
	TotalCalls    int64     `json:"total_calls"`
	TotalFailures int64     `json:"total_failures"`
	SuccessRate   float64   `json:"success_rate"`
	LastFailure   time.Time `json:"last_failure,omitempty"`
	LastSuccess   time.Time `json:"last_success,omitempty"`
}

// ProviderStats is a snapshot of one model candidate's running statistics.
type ProviderStats struct {
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	Attempts    int64     `json:"attempts"`
	Successes   int64     `json:"successes"`
	Failures    int64     `json:"failures"`
	SuccessRate float64   `json:"success_rate"`
	TotalTokens int64     `json:"total_tokens"`
	TotalCost   float64   `json:"total_cost"`
	AvgLatency  float64   `json:"avg_latency_seconds"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastFailure time.Time `json:"last_failure,omitempty"`
}

// ChainStats is a snapshot of the whole provider chain.
type ChainStats struct {
	CurrentProvider string          `json:"current_provider,omitempty"`
	Providers       []ProviderStats `json:"providers"`
}

// CacheStats reports cache performance counters.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// ComponentHealth describes one component in a health snapshot.
type ComponentHealth struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthSnapshot is the result of one system-wide health check.
type HealthSnapshot struct {
	Timestamp     time.Time                  `json:"timestamp"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Status        string                     `json:"status"`
	Components    map[string]ComponentHealth `json:"components"`
	Breakers      []BreakerStatus            `json:"breakers"`
	Chain         ChainStats                 `json:"chain"`
	Caches        map[string]CacheStats      `json:"caches"`
	Alerts        []string                   `json:"alerts,omitempty"`
}

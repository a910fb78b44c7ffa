// Package provider selects a working LLM backend from an ordered list of
// candidates, with automatic fallback and per-candidate statistics.
package provider

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/models"
)

// ErrExhausted is returned when every candidate fails to initialize. It is
// fatal for the current request; the chain never retries internally.
var ErrExhausted = errors.New("all model providers failed to initialize")

// BackendFunc constructs a backend for a candidate. apiKey is empty when the
// candidate requires no credential.
type BackendFunc func(cfg config.ProviderConfig, apiKey string) (Backend, error)

// Chain tries candidates in ascending priority order and tracks running
// statistics per candidate. One Chain instance is shared by all callers and
// is safe for concurrent use.
type Chain struct {
	mu         sync.Mutex
	candidates []config.ProviderConfig
	stats      map[string]*candidateStats
	current    string
	newBackend BackendFunc
}

type candidateStats struct {
	attempts    int64
	successes   int64
	failures    int64
	totalTokens int64
	totalCost   float64
	avgLatency  float64
	lastSuccess time.Time
	lastFailure time.Time
}

// NewChain creates a Chain from configured candidates, sorted by priority.
func NewChain(candidates []config.ProviderConfig) *Chain {
	return NewChainWithBackend(candidates, NewOpenAIBackend)
}

// NewChainWithBackend creates a Chain using a custom backend constructor.
func NewChainWithBackend(candidates []config.ProviderConfig, fn BackendFunc) *Chain {
	sorted := make([]config.ProviderConfig, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	stats := make(map[string]*candidateStats, len(sorted))
	for _, c := range sorted {
		stats[c.Name] = &candidateStats{}
	}
	return &Chain{candidates: sorted, stats: stats, newBackend: fn}
}

// Acquire returns a working backend. With force empty, candidates are tried
// in priority order: an initialization failure (missing credential or
// constructor error) records a failure stat and moves on; the first success
// becomes the current provider and records a success stat. When every
// candidate fails, ErrExhausted is returned. A non-empty force names a
// single candidate to use, bypassing the chain.
func (c *Chain) Acquire(force string) (Backend, error) {
	if force != "" {
		for _, cand := range c.candidates {
			if cand.Name != force {
				continue
			}
			b, err := c.initialize(cand)
			if err != nil {
				c.RecordFailure(cand.Name)
				return nil, fmt.Errorf("provider %q: %w", cand.Name, err)
			}
			c.markCurrent(cand.Name)
			return b, nil
		}
		return nil, fmt.Errorf("provider %q is not configured", force)
	}

	for _, cand := range c.candidates {
		b, err := c.initialize(cand)
		if err != nil {
			log.Printf("provider %s failed to initialize: %v, trying next", cand.Name, err)
			c.RecordFailure(cand.Name)
			continue
		}
		log.Printf("using model provider: %s (%s)", cand.Name, cand.Model)
		c.markCurrent(cand.Name)
		c.RecordSuccess(cand.Name, 0, 0)
		return b, nil
	}

	return nil, ErrExhausted
}

func (c *Chain) initialize(cand config.ProviderConfig) (Backend, error) {
	var apiKey string
	if cand.RequiresKey {
		apiKey = os.Getenv(cand.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%s not set in environment", cand.APIKeyEnv)
		}
	}
	return c.newBackend(cand, apiKey)
}

func (c *Chain) markCurrent(name string) {
	c.mu.Lock()
	c.current = name
	c.mu.Unlock()
}

// RecordSuccess records a successful use of a candidate: token and cost
// accounting plus the running average latency, updated as a two-point
// average (old+new)/2. The average is an operational heuristic, not a true
// moving average.
func (c *Chain) RecordSuccess(name string, tokens int, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stats[name]
	if !ok {
		return
	}
	s.attempts++
	s.successes++
	s.totalTokens += int64(tokens)
	s.lastSuccess = time.Now()

	secs := latency.Seconds()
	if s.avgLatency == 0 {
		s.avgLatency = secs
	} else {
		s.avgLatency = (s.avgLatency + secs) / 2
	}

	for _, cand := range c.candidates {
		if cand.Name == name {
			s.totalCost += float64(tokens) / 1000 * cand.CostPer1K
			break
		}
	}
}

// RecordFailure records a failed attempt for a candidate.
func (c *Chain) RecordFailure(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stats[name]
	if !ok {
		return
	}
	s.attempts++
	s.failures++
	s.lastFailure = time.Now()
}

// Current returns the name of the most recently acquired provider, or empty
// if none has been acquired yet.
func (c *Chain) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Stats returns a snapshot of every candidate's statistics in priority order.
func (c *Chain) Stats() models.ChainStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := models.ChainStats{CurrentProvider: c.current}
	for _, cand := range c.candidates {
		s := c.stats[cand.Name]
		rate := 0.0
		if s.attempts > 0 {
			rate = float64(s.successes) / float64(s.attempts)
		}
		out.Providers = append(out.Providers, models.ProviderStats{
			Name:        cand.Name,
			Model:       cand.Model,
			Attempts:    s.attempts,
			Successes:   s.successes,
			Failures:    s.failures,
			SuccessRate: rate,
			TotalTokens: s.totalTokens,
			TotalCost:   s.totalCost,
			AvgLatency:  s.avgLatency,
			LastSuccess: s.lastSuccess,
			LastFailure: s.lastFailure,
		})
	}
	return out
}

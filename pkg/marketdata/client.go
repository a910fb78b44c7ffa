package marketdata

import (
	"context"
	"time"

	"github.com/finsight-ai/finsight/pkg/breaker"
	"github.com/finsight-ai/finsight/pkg/cache"
	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/guard"
	"github.com/finsight-ai/finsight/pkg/models"
	"github.com/finsight-ai/finsight/pkg/retry"
)

// BreakerName is the stable dependency name for the market-data API.
const BreakerName = "market_data"

// Client wraps a Source with per-category guards. Quotes, technicals, news,
// and analyst views share the standard TTL; financial statements get a
// longer-lived cache of their own. All categories share one breaker since
// they hit the same upstream dependency.
type Client struct {
	src Source

	priceGuard   *guard.Guard
	finGuard     *guard.Guard
	techGuard    *guard.Guard
	newsGuard    *guard.Guard
	analystGuard *guard.Guard

	priceCache *cache.Cache
	finCache   *cache.Cache
	techCache  *cache.Cache
}

// NewClient builds the guarded client from configuration. The breaker comes
// from the shared registry so the health surface sees it.
func NewClient(src Source, cfg *config.Config, reg *breaker.Registry) *Client {
	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		MinWait:     cfg.Retry.MinWait,
		MaxWait:     cfg.Retry.MaxWait,
	}
	b := reg.Get(BreakerName)

	priceCache := cache.New(cfg.Cache.MaxSize, cfg.Cache.TTL)
	finCache := cache.New(cfg.Cache.MaxSize, cfg.Cache.FinancialsTTL)
	techCache := cache.New(cfg.Cache.MaxSize, cfg.Cache.TTL)

	return &Client{
		src:          src,
		priceGuard:   guard.New(priceCache, b, policy),
		finGuard:     guard.New(finCache, b, policy),
		techGuard:    guard.New(techCache, b, policy),
		newsGuard:    guard.New(priceCache, b, policy),
		analystGuard: guard.New(priceCache, b, policy),
		priceCache:   priceCache,
		finCache:     finCache,
		techCache:    techCache,
	}
}

// Quote fetches current price data through the guard stack.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return guard.Do(c.priceGuard, cache.Key("quote", symbol), func() (*models.Quote, error) {
		return c.src.Quote(ctx, symbol)
	})
}

// Financials fetches financial statements through the guard stack.
func (c *Client) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	return guard.Do(c.finGuard, cache.Key("financials", symbol), func() (*models.Financials, error) {
		return c.src.Financials(ctx, symbol)
	})
}

// Technicals fetches technical indicators through the guard stack.
func (c *Client) Technicals(ctx context.Context, symbol string) (*models.Technicals, error) {
	return guard.Do(c.techGuard, cache.Key("technicals", symbol), func() (*models.Technicals, error) {
		return c.src.Technicals(ctx, symbol)
	})
}

// News fetches recent news through the guard stack.
func (c *Client) News(ctx context.Context, symbol string) (*models.NewsSummary, error) {
	return guard.Do(c.newsGuard, cache.Key("news", symbol), func() (*models.NewsSummary, error) {
		return c.src.News(ctx, symbol)
	})
}

// AnalystViews fetches analyst recommendations through the guard stack.
func (c *Client) AnalystViews(ctx context.Context, symbol string) (*models.AnalystViews, error) {
	return guard.Do(c.analystGuard, cache.Key("analysts", symbol), func() (*models.AnalystViews, error) {
		return c.src.AnalystViews(ctx, symbol)
	})
}

// FetchAll gathers every category for a symbol. A category that fails after
// retries, or is rejected by the open breaker, degrades to an entry with Err
// set; FetchAll itself never fails.
func (c *Client) FetchAll(ctx context.Context, symbol string) models.ResearchData {
	data := models.ResearchData{FetchedAt: time.Now()}

	if q, err := c.Quote(ctx, symbol); err != nil {
		data.Quote = &models.Quote{Symbol: symbol, Err: err.Error()}
	} else {
		data.Quote = q
	}

	if f, err := c.Financials(ctx, symbol); err != nil {
		data.Financials = &models.Financials{Symbol: symbol, Err: err.Error()}
	} else {
		data.Financials = f
	}

	if t, err := c.Technicals(ctx, symbol); err != nil {
		data.Technicals = &models.Technicals{Symbol: symbol, Err: err.Error()}
	} else {
		data.Technicals = t
	}

	if n, err := c.News(ctx, symbol); err != nil {
		data.News = &models.NewsSummary{Symbol: symbol, Err: err.Error()}
	} else {
		data.News = n
	}

	if a, err := c.AnalystViews(ctx, symbol); err != nil {
		data.Analysts = &models.AnalystViews{Symbol: symbol, Err: err.Error()}
	} else {
		data.Analysts = a
	}

	return data
}

// CacheStats reports per-cache counters for the health surface.
func (c *Client) CacheStats() map[string]models.CacheStats {
	return map[string]models.CacheStats{
		"prices":     c.priceCache.Stats(),
		"financials": c.finCache.Stats(),
		"technicals": c.techCache.Stats(),
	}
}

// ClearCaches empties every data cache. Operator action only.
func (c *Client) ClearCaches() {
	c.priceCache.Clear()
	c.finCache.Clear()
	c.techCache.Clear()
}

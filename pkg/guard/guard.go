// Package guard composes the cache, circuit breaker, and retry executor
// around a fallible operation.
//
// Ordering is cache -> breaker -> retry -> operation: the cache sits
// outermost so retries never bypass a warm entry, and the breaker wraps the
// retry loop so it counts retry-exhausted failures rather than every
// individual attempt.
package guard

import (
	"github.com/finsight-ai/finsight/pkg/breaker"
	"github.com/finsight-ai/finsight/pkg/cache"
	"github.com/finsight-ai/finsight/pkg/retry"
)

// Guard is an explicitly composed protection stack for one class of
// operations sharing a cache and a breaker.
type Guard struct {
	cache   *cache.Cache
	breaker *breaker.Breaker
	policy  retry.Policy
}

// New creates a Guard. cache may be nil to disable caching for the class.
func New(c *cache.Cache, b *breaker.Breaker, p retry.Policy) *Guard {
	return &Guard{cache: c, breaker: b, policy: p}
}

// Do runs op through g under the given cache key. A breaker rejection
// surfaces as breaker.ErrOpen unchanged so callers can treat it as
// data-unavailable without counting it as a fresh dependency failure.
func Do[T any](g *Guard, key string, op func() (T, error)) (T, error) {
	if g.cache != nil {
		if v, ok := g.cache.Get(key); ok {
			return v.(T), nil
		}
	}

	var result T
	err := g.breaker.Do(func() error {
		return retry.Do(g.policy, func() error {
			v, err := op()
			if err != nil {
				return err
			}
			result = v
			return nil
		})
	})
	if err != nil {
		var zero T
		return zero, err
	}

	if g.cache != nil {
		g.cache.Set(key, result)
	}
	return result, nil
}

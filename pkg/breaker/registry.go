package breaker

import (
	"sort"
	"sync"

	"github.com/finsight-ai/finsight/pkg/models"
)

// Registry creates and looks up breakers by stable dependency name. It is
// constructed explicitly and passed to the components that need it; there is
// no package-level instance.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	breakers map[string]*Breaker
}

// NewRegistry creates a Registry whose breakers use cfg.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it lazily on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[name]
	if !ok {
		b = New(name, r.cfg)
		r.breakers[name] = b
	}
	return b
}

// AllStatus returns snapshots of every breaker, sorted by name.
func (r *Registry) AllStatus() []models.BreakerStatus {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	statuses := make([]models.BreakerStatus, 0, len(breakers))
	for _, b := range breakers {
		statuses = append(statuses, b.Status())
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// ResetAll forces every breaker closed.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	for _, b := range breakers {
		b.Reset()
	}
}

// Package health aggregates component status into one system snapshot.
package health

import (
	"fmt"
	"strings"
	"time"

	"github.com/finsight-ai/finsight/pkg/breaker"
	"github.com/finsight-ai/finsight/pkg/marketdata"
	"github.com/finsight-ai/finsight/pkg/models"
	"github.com/finsight-ai/finsight/pkg/provider"
)

// Component status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Monitor performs on-demand health checks over the breaker registry, the
// provider chain, and the data caches.
type Monitor struct {
	start  time.Time
	reg    *breaker.Registry
	chain  *provider.Chain
	client *marketdata.Client
}

// NewMonitor creates a Monitor. The uptime clock starts now.
func NewMonitor(reg *breaker.Registry, chain *provider.Chain, client *marketdata.Client) *Monitor {
	return &Monitor{start: time.Now(), reg: reg, chain: chain, client: client}
}

// Check returns a point-in-time health snapshot. The system is degraded
// when any circuit is open or no provider has been acquired yet.
func (m *Monitor) Check() models.HealthSnapshot {
	now := time.Now()
	snap := models.HealthSnapshot{
		Timestamp:     now,
		UptimeSeconds: now.Sub(m.start).Seconds(),
		Components:    make(map[string]models.ComponentHealth),
		Breakers:      m.reg.AllStatus(),
		Chain:         m.chain.Stats(),
		Caches:        m.client.CacheStats(),
	}

	var open []string
	for _, b := range snap.Breakers {
		if b.State == string(breaker.StateOpen) {
			open = append(open, b.Name)
		}
	}
	if len(open) > 0 {
		snap.Components["circuit_breakers"] = models.ComponentHealth{
			Status: StatusDegraded,
			Detail: "open circuits: " + strings.Join(open, ", "),
		}
		snap.Alerts = append(snap.Alerts, fmt.Sprintf("circuit breakers open: %s", strings.Join(open, ", ")))
	} else {
		snap.Components["circuit_breakers"] = models.ComponentHealth{Status: StatusHealthy}
	}

	if snap.Chain.CurrentProvider == "" {
		snap.Components["model_provider"] = models.ComponentHealth{
			Status: StatusDegraded,
			Detail: "no provider acquired yet",
		}
	} else {
		snap.Components["model_provider"] = models.ComponentHealth{
			Status: StatusHealthy,
			Detail: snap.Chain.CurrentProvider,
		}
	}

	snap.Components["caches"] = models.ComponentHealth{Status: StatusHealthy}

	snap.Status = StatusHealthy
	for _, c := range snap.Components {
		if c.Status != StatusHealthy {
			snap.Status = StatusDegraded
			break
		}
	}
	return snap
}

// Package metrics exposes prometheus collectors for the unit core.
//
// All methods are safe on a nil *Collector, so instrumentation points in
// the core stay unconditional while metrics remain opt-in.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the counters maintained by the unit core.
type Collector struct {
	lockContention     prometheus.Counter
	cacheInvalidations prometheus.Counter
	cacheMisses        prometheus.Counter
	revisionsAppended  prometheus.Counter
}

// NewCollector builds and registers the core counters. A nil registerer
// defaults to the prometheus default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lockContention: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modrun_unit_lock_contention_total",
			Help: "Number of ownership lock acquisitions rejected because another owner holds the lock",
		}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modrun_unit_header_cache_invalidations_total",
			Help: "Number of wholesale localized header cache invalidations",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modrun_unit_header_cache_misses_total",
			Help: "Number of localized header computations",
		}),
		revisionsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modrun_unit_revisions_appended_total",
			Help: "Number of revisions appended across all units",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(c.lockContention, c.cacheInvalidations, c.cacheMisses, c.revisionsAppended)
	return c
}

// IncLockContention counts a fail-fast lock rejection.
func (c *Collector) IncLockContention() {
	if c == nil {
		return
	}
	c.lockContention.Inc()
}

// IncCacheInvalidation counts a wholesale header cache clear.
func (c *Collector) IncCacheInvalidation() {
	if c == nil {
		return
	}
	c.cacheInvalidations.Inc()
}

// IncCacheMiss counts a localized header computation.
func (c *Collector) IncCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

// IncRevisionAppended counts an appended revision.
func (c *Collector) IncRevisionAppended() {
	if c == nil {
		return
	}
	c.revisionsAppended.Inc()
}

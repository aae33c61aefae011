// Package rgmetrics exports budget.Manager, profiler.Profiler, and
// aliasing.Engine state as Prometheus gauges/counters. It is pull-style: a
// single Collector implements prometheus.Collector and reads the live
// sources at scrape time, rather than pushing a value on every allocation,
// so the hot render-graph path never touches a Prometheus client call.
package rgmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/rendergraph/aliasing"
	"github.com/gogpu/rendergraph/budget"
	"github.com/gogpu/rendergraph/profiler"
)

// Collector gathers metrics from a graph's budget manager, profiler, and
// aliasing engine on every Prometheus scrape.
type Collector struct {
	budget   *budget.Manager
	profiler *profiler.Profiler
	aliasing *aliasing.Engine

	budgetCurrent    *prometheus.Desc
	budgetPeak       *prometheus.Desc
	budgetAllocCount *prometheus.Desc
	budgetMax        *prometheus.Desc

	frameStackBytes *prometheus.Desc
	frameHeapBytes  *prometheus.Desc
	frameVRAMBytes  *prometheus.Desc
	frameVRAMPeak   *prometheus.Desc

	aliasAttempts    *prometheus.Desc
	aliasSuccesses   *prometheus.Desc
	aliasFailures    *prometheus.Desc
	aliasBytesSaved  *prometheus.Desc
}

// New returns a Collector reading from the given budget manager, profiler,
// and aliasing engine. Any of the three may be nil, in which case the
// metrics it would have produced are simply omitted from each scrape.
func New(b *budget.Manager, p *profiler.Profiler, a *aliasing.Engine) *Collector {
	return &Collector{
		budget:   b,
		profiler: p,
		aliasing: a,

		budgetCurrent: prometheus.NewDesc(
			"rendergraph_budget_current_bytes", "Current accounted bytes per resource type.",
			[]string{"resource_type"}, nil),
		budgetPeak: prometheus.NewDesc(
			"rendergraph_budget_peak_bytes", "Peak accounted bytes per resource type.",
			[]string{"resource_type"}, nil),
		budgetAllocCount: prometheus.NewDesc(
			"rendergraph_budget_allocation_count", "Live allocation count per resource type.",
			[]string{"resource_type"}, nil),
		budgetMax: prometheus.NewDesc(
			"rendergraph_budget_max_bytes", "Configured budget ceiling per resource type (0 = unlimited).",
			[]string{"resource_type"}, nil),

		frameStackBytes: prometheus.NewDesc(
			"rendergraph_frame_stack_bytes", "Stack-allocated bytes in the most recent profiled frame.", nil, nil),
		frameHeapBytes: prometheus.NewDesc(
			"rendergraph_frame_heap_bytes", "Heap-allocated bytes in the most recent profiled frame.", nil, nil),
		frameVRAMBytes: prometheus.NewDesc(
			"rendergraph_frame_vram_bytes", "VRAM-allocated bytes in the most recent profiled frame.", nil, nil),
		frameVRAMPeak: prometheus.NewDesc(
			"rendergraph_frame_vram_peak_bytes", "Peak per-node VRAM usage in the most recent profiled frame.", nil, nil),

		aliasAttempts: prometheus.NewDesc(
			"rendergraph_aliasing_attempts_total", "Total alias-fit attempts.", nil, nil),
		aliasSuccesses: prometheus.NewDesc(
			"rendergraph_aliasing_successes_total", "Total successful alias-fit attempts.", nil, nil),
		aliasFailures: prometheus.NewDesc(
			"rendergraph_aliasing_failures_total", "Total failed alias-fit attempts.", nil, nil),
		aliasBytesSaved: prometheus.NewDesc(
			"rendergraph_aliasing_bytes_saved_total", "Total bytes avoided via aliasing.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.budgetCurrent
	ch <- c.budgetPeak
	ch <- c.budgetAllocCount
	ch <- c.budgetMax
	ch <- c.frameStackBytes
	ch <- c.frameHeapBytes
	ch <- c.frameVRAMBytes
	ch <- c.frameVRAMPeak
	ch <- c.aliasAttempts
	ch <- c.aliasSuccesses
	ch <- c.aliasFailures
	ch <- c.aliasBytesSaved
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.budget != nil {
		for _, rt := range c.budget.ResourceTypes() {
			u := c.budget.GetUsage(rt)
			ch <- prometheus.MustNewConstMetric(c.budgetCurrent, prometheus.GaugeValue, float64(u.CurrentBytes), rt)
			ch <- prometheus.MustNewConstMetric(c.budgetPeak, prometheus.GaugeValue, float64(u.PeakBytes), rt)
			ch <- prometheus.MustNewConstMetric(c.budgetAllocCount, prometheus.GaugeValue, float64(u.AllocationCount), rt)
			if b, ok := c.budget.GetBudget(rt); ok {
				ch <- prometheus.MustNewConstMetric(c.budgetMax, prometheus.GaugeValue, float64(b.MaxBytes), rt)
			}
		}
	}

	if c.profiler != nil {
		if fn, ok := c.profiler.LatestFrameNumber(); ok {
			fs := c.profiler.GetFrameStats(fn)
			ch <- prometheus.MustNewConstMetric(c.frameStackBytes, prometheus.GaugeValue, float64(fs.Totals.StackBytesUsed))
			ch <- prometheus.MustNewConstMetric(c.frameHeapBytes, prometheus.GaugeValue, float64(fs.Totals.HeapBytesUsed))
			ch <- prometheus.MustNewConstMetric(c.frameVRAMBytes, prometheus.GaugeValue, float64(fs.Totals.VRAMBytesUsed))
			ch <- prometheus.MustNewConstMetric(c.frameVRAMPeak, prometheus.GaugeValue, float64(fs.PeakVRAMUsage))
		}
	}

	if c.aliasing != nil {
		s := c.aliasing.Stats()
		ch <- prometheus.MustNewConstMetric(c.aliasAttempts, prometheus.CounterValue, float64(s.TotalAliasAttempts))
		ch <- prometheus.MustNewConstMetric(c.aliasSuccesses, prometheus.CounterValue, float64(s.SuccessfulAliases))
		ch <- prometheus.MustNewConstMetric(c.aliasFailures, prometheus.CounterValue, float64(s.FailedAliases))
		ch <- prometheus.MustNewConstMetric(c.aliasBytesSaved, prometheus.CounterValue, float64(s.TotalBytesSaved))
	}
}

// MustRegister registers c on reg, the explicit registry the driver owns
// (never the global prometheus default registry, so importing this package
// has no side effect on processes that don't opt in).
func MustRegister(reg *prometheus.Registry, c *Collector) {
	reg.MustRegister(c)
}

package rgmetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/rendergraph/aliasing"
	"github.com/gogpu/rendergraph/budget"
	"github.com/gogpu/rendergraph/profiler"
	"github.com/gogpu/rendergraph/rgmetrics"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}

func TestCollectorExportsBudgetUsage(t *testing.T) {
	b := budget.NewManager()
	b.SetBudget("DeviceMemory", budget.Budget{MaxBytes: 1 << 20, Strict: true})
	b.RecordAllocation("DeviceMemory", 4096)

	reg := prometheus.NewRegistry()
	rgmetrics.MustRegister(reg, rgmetrics.New(b, nil, nil))

	f := gatherFamily(t, reg, "rendergraph_budget_current_bytes")
	require.Len(t, f.Metric, 1)
	require.Equal(t, float64(4096), f.Metric[0].GetGauge().GetValue())
}

func TestCollectorExportsLatestFrameStats(t *testing.T) {
	p := profiler.New()
	p.BeginFrame(1)
	p.RecordAllocation(1, "ShadowPass", profiler.LocationVRAM, 2048, false)
	p.EndFrame()

	reg := prometheus.NewRegistry()
	rgmetrics.MustRegister(reg, rgmetrics.New(nil, p, nil))

	f := gatherFamily(t, reg, "rendergraph_frame_vram_bytes")
	require.Equal(t, float64(2048), f.Metric[0].GetGauge().GetValue())
}

func TestCollectorExportsAliasingStats(t *testing.T) {
	e := aliasing.NewEngine()

	reg := prometheus.NewRegistry()
	rgmetrics.MustRegister(reg, rgmetrics.New(nil, nil, e))

	f := gatherFamily(t, reg, "rendergraph_aliasing_attempts_total")
	require.Equal(t, float64(0), f.Metric[0].GetCounter().GetValue())
}

func TestCollectorOmitsNilSources(t *testing.T) {
	reg := prometheus.NewRegistry()
	rgmetrics.MustRegister(reg, rgmetrics.New(nil, nil, nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

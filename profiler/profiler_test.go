package profiler_test

import (
	"strings"
	"testing"

	"github.com/gogpu/rendergraph/profiler"
)

func TestBeginEndFrameAggregatesPerNodeStats(t *testing.T) {
	p := profiler.New()
	p.BeginFrame(1)
	p.RecordAllocation(1, "ShadowPass", profiler.LocationVRAM, 4096, false)
	p.RecordAllocation(1, "ShadowPass", profiler.LocationVRAM, 2048, true)
	p.RecordAllocation(2, "GBufferPass", profiler.LocationHeap, 1024, false)
	p.EndFrame()

	stats := p.GetFrameStats(1)
	if stats.Totals.VRAMBytesUsed != 4096 {
		t.Fatalf("want 4096 fresh VRAM bytes, got %d", stats.Totals.VRAMBytesUsed)
	}
	if stats.Totals.BytesSavedViaAliasing != 2048 {
		t.Fatalf("want 2048 bytes saved via aliasing, got %d", stats.Totals.BytesSavedViaAliasing)
	}
	if len(stats.NodeStats) != 2 {
		t.Fatalf("want 2 node entries, got %d", len(stats.NodeStats))
	}
}

func TestRollingWindowEvictsOldFrames(t *testing.T) {
	p := profiler.New()
	p.SetMaxFrameHistory(3)
	for i := uint64(1); i <= 5; i++ {
		p.BeginFrame(i)
		p.RecordAllocation(1, "n", profiler.LocationHeap, 100, false)
		p.EndFrame()
	}

	if stats := p.GetFrameStats(1); stats.FrameNumber != 0 {
		t.Fatalf("expected frame 1 to be evicted, got %+v", stats)
	}
	if stats := p.GetFrameStats(5); stats.FrameNumber != 5 {
		t.Fatal("expected frame 5 to still be tracked")
	}
}

func TestExportAsTextIncludesNodeName(t *testing.T) {
	p := profiler.New()
	p.BeginFrame(1)
	p.RecordAllocation(1, "ShadowPass", profiler.LocationVRAM, 4096, false)
	p.EndFrame()

	text := p.ExportAsText(1)
	if !strings.Contains(text, "ShadowPass") {
		t.Fatalf("expected text export to mention node name, got %q", text)
	}
}

func TestExportAsJSONRoundTrips(t *testing.T) {
	p := profiler.New()
	p.BeginFrame(1)
	p.RecordAllocation(1, "ShadowPass", profiler.LocationVRAM, 4096, false)
	p.EndFrame()

	js, err := p.ExportAsJSON(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(js, "ShadowPass") {
		t.Fatalf("expected JSON export to mention node name, got %q", js)
	}
}

func TestRecordReleaseReducesUsage(t *testing.T) {
	p := profiler.New()
	p.BeginFrame(1)
	p.RecordAllocation(1, "n", profiler.LocationHeap, 1000, false)
	p.RecordRelease(1, "n", profiler.LocationHeap, 400)
	p.EndFrame()

	stats := p.GetFrameStats(1)
	if stats.Totals.HeapBytesUsed != 600 {
		t.Fatalf("want 600, got %d", stats.Totals.HeapBytesUsed)
	}
}

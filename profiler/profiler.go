// Package profiler records per-node, per-frame resource allocation and
// release activity over a bounded rolling window, and exports the result
// as text or JSON for offline analysis.
package profiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Location classifies where a tracked allocation lives.
type Location int

const (
	LocationStack Location = iota
	LocationHeap
	LocationVRAM
)

// NodeStats accumulates one node's allocation activity within a frame.
type NodeStats struct {
	NodeID   uint32
	NodeName string

	StackAllocations uint32
	HeapAllocations  uint32
	VRAMAllocations  uint32

	StackBytesUsed uint64
	HeapBytesUsed  uint64
	VRAMBytesUsed  uint64

	AliasedAllocations  uint32
	BytesSavedViaAliasing uint64
}

// TotalBytes returns bytes used across all three locations.
func (s NodeStats) TotalBytes() uint64 {
	return s.StackBytesUsed + s.HeapBytesUsed + s.VRAMBytesUsed
}

// TotalAllocations returns the allocation count across all three locations.
func (s NodeStats) TotalAllocations() uint32 {
	return s.StackAllocations + s.HeapAllocations + s.VRAMAllocations
}

// AliasingEfficiency returns the percentage of VRAM bytes that were
// avoided via aliasing, relative to what would have been allocated
// without it.
func (s NodeStats) AliasingEfficiency() float64 {
	denom := s.VRAMBytesUsed + s.BytesSavedViaAliasing
	if denom == 0 {
		return 0
	}
	return 100 * float64(s.BytesSavedViaAliasing) / float64(denom)
}

func (s *NodeStats) merge(other NodeStats) {
	s.StackAllocations += other.StackAllocations
	s.HeapAllocations += other.HeapAllocations
	s.VRAMAllocations += other.VRAMAllocations
	s.StackBytesUsed += other.StackBytesUsed
	s.HeapBytesUsed += other.HeapBytesUsed
	s.VRAMBytesUsed += other.VRAMBytesUsed
	s.AliasedAllocations += other.AliasedAllocations
	s.BytesSavedViaAliasing += other.BytesSavedViaAliasing
}

// FrameStats aggregates every node's activity within one frame.
type FrameStats struct {
	FrameNumber uint64
	Totals      NodeStats
	NodeStats   []NodeStats

	PeakStackUsage uint64
	PeakHeapUsage  uint64
	PeakVRAMUsage  uint64
}

type frame struct {
	stats    FrameStats
	byNodeID map[uint32]*NodeStats
	order    []uint32
}

// Profiler is the rolling-window per-node allocation tracker. The default
// history length is 120 frames (2 seconds at 60 FPS), matching the source
// profiler's default.
type Profiler struct {
	mu sync.Mutex

	maxFrameHistory int
	frames          map[uint64]*frame
	frameOrder      []uint64

	current *frame
}

// New returns a Profiler with the default 120-frame history.
func New() *Profiler {
	return &Profiler{
		maxFrameHistory: 120,
		frames:          make(map[uint64]*frame),
	}
}

// SetMaxFrameHistory configures how many frames of history are retained.
func (p *Profiler) SetMaxFrameHistory(frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxFrameHistory = frames
	p.evictLocked()
}

// BeginFrame starts tracking frameNumber, discarding any existing record
// for it.
func (p *Profiler) BeginFrame(frameNumber uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := &frame{
		stats:    FrameStats{FrameNumber: frameNumber},
		byNodeID: make(map[uint32]*NodeStats),
	}
	if _, exists := p.frames[frameNumber]; !exists {
		p.frameOrder = append(p.frameOrder, frameNumber)
	}
	p.frames[frameNumber] = f
	p.current = f
	p.evictLocked()
}

// EndFrame finalizes the frame started by the matching BeginFrame,
// computing its peak-usage fields from the per-node totals recorded.
func (p *Profiler) EndFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	f := p.current
	var totals NodeStats
	nodeStats := make([]NodeStats, 0, len(f.order))
	for _, id := range f.order {
		ns := *f.byNodeID[id]
		nodeStats = append(nodeStats, ns)
		totals.merge(ns)
		if ns.StackBytesUsed > f.stats.PeakStackUsage {
			f.stats.PeakStackUsage = ns.StackBytesUsed
		}
		if ns.HeapBytesUsed > f.stats.PeakHeapUsage {
			f.stats.PeakHeapUsage = ns.HeapBytesUsed
		}
		if ns.VRAMBytesUsed > f.stats.PeakVRAMUsage {
			f.stats.PeakVRAMUsage = ns.VRAMBytesUsed
		}
	}
	f.stats.Totals = totals
	f.stats.NodeStats = nodeStats
	p.current = nil
}

func (p *Profiler) nodeEntry(f *frame, nodeID uint32, nodeName string) *NodeStats {
	ns, ok := f.byNodeID[nodeID]
	if !ok {
		ns = &NodeStats{NodeID: nodeID, NodeName: nodeName}
		f.byNodeID[nodeID] = ns
		f.order = append(f.order, nodeID)
	}
	return ns
}

// RecordAllocation attributes an allocation of bytes at location to
// nodeID/nodeName within the currently open frame. wasAliased marks the
// allocation as reused memory, crediting BytesSavedViaAliasing rather than
// a fresh VRAMBytesUsed charge.
func (p *Profiler) RecordAllocation(nodeID uint32, nodeName string, location Location, bytes uint64, wasAliased bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	ns := p.nodeEntry(p.current, nodeID, nodeName)
	switch location {
	case LocationStack:
		ns.StackAllocations++
		ns.StackBytesUsed += bytes
	case LocationHeap:
		ns.HeapAllocations++
		ns.HeapBytesUsed += bytes
	case LocationVRAM:
		ns.VRAMAllocations++
		if wasAliased {
			ns.AliasedAllocations++
			ns.BytesSavedViaAliasing += bytes
		} else {
			ns.VRAMBytesUsed += bytes
		}
	}
}

// RecordRelease attributes a release of bytes to nodeID/nodeName within
// the currently open frame. The bytes are subtracted from the node's byte
// counter for location, clamped at zero; allocation counts and aliasing
// savings are left unchanged.
func (p *Profiler) RecordRelease(nodeID uint32, nodeName string, location Location, bytes uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	ns := p.nodeEntry(p.current, nodeID, nodeName)
	switch location {
	case LocationStack:
		ns.StackBytesUsed = subClamp(ns.StackBytesUsed, bytes)
	case LocationHeap:
		ns.HeapBytesUsed = subClamp(ns.HeapBytesUsed, bytes)
	case LocationVRAM:
		ns.VRAMBytesUsed = subClamp(ns.VRAMBytesUsed, bytes)
	}
}

func subClamp(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// GetFrameStats returns the finalized stats for frameNumber, or a zero
// value if that frame was never recorded (or was evicted by the rolling
// window).
func (p *Profiler) GetFrameStats(frameNumber uint64) FrameStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.frames[frameNumber]
	if !ok {
		return FrameStats{}
	}
	return f.stats
}

// LatestFrameNumber returns the most recently added frame number still in
// the rolling window and true, or false if no frame has been recorded yet. rgmetrics
// uses this to find the freshest FrameStats worth exporting on each scrape.
func (p *Profiler) LatestFrameNumber() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frameOrder) == 0 {
		return 0, false
	}
	return p.frameOrder[len(p.frameOrder)-1], true
}

// GetAverageStats averages the Totals field over the most recent
// frameCount frames in history.
func (p *Profiler) GetAverageStats(frameCount int) FrameStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.frameOrder)
	if frameCount > n {
		frameCount = n
	}
	if frameCount <= 0 {
		return FrameStats{}
	}
	start := n - frameCount
	var totals NodeStats
	for _, fn := range p.frameOrder[start:] {
		totals.merge(p.frames[fn].stats.Totals)
	}
	avg := NodeStats{
		StackAllocations:      totals.StackAllocations / uint32(frameCount),
		HeapAllocations:       totals.HeapAllocations / uint32(frameCount),
		VRAMAllocations:       totals.VRAMAllocations / uint32(frameCount),
		StackBytesUsed:        totals.StackBytesUsed / uint64(frameCount),
		HeapBytesUsed:         totals.HeapBytesUsed / uint64(frameCount),
		VRAMBytesUsed:         totals.VRAMBytesUsed / uint64(frameCount),
		AliasedAllocations:    totals.AliasedAllocations / uint32(frameCount),
		BytesSavedViaAliasing: totals.BytesSavedViaAliasing / uint64(frameCount),
	}
	return FrameStats{Totals: avg}
}

func (p *Profiler) evictLocked() {
	for len(p.frameOrder) > p.maxFrameHistory && p.maxFrameHistory > 0 {
		oldest := p.frameOrder[0]
		p.frameOrder = p.frameOrder[1:]
		delete(p.frames, oldest)
	}
}

// ExportAsText renders frameNumber's stats as a human-readable report.
func (p *Profiler) ExportAsText(frameNumber uint64) string {
	stats := p.GetFrameStats(frameNumber)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Frame %d: stack=%d heap=%d vram=%d bytes (peak vram=%d), aliasing saved %d bytes\n",
		stats.FrameNumber, stats.Totals.StackBytesUsed, stats.Totals.HeapBytesUsed,
		stats.Totals.VRAMBytesUsed, stats.PeakVRAMUsage, stats.Totals.BytesSavedViaAliasing)

	nodes := append([]NodeStats(nil), stats.NodeStats...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].NodeName < nodes[j].NodeName })
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %-24s allocs=%-4d bytes=%-10d aliasing=%.1f%%\n",
			n.NodeName, n.TotalAllocations(), n.TotalBytes(), n.AliasingEfficiency())
	}
	return buf.String()
}

// ExportAsJSON renders frameNumber's stats as JSON.
func (p *Profiler) ExportAsJSON(frameNumber uint64) (string, error) {
	stats := p.GetFrameStats(frameNumber)
	b, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("profiler: marshal frame %d: %w", frameNumber, err)
	}
	return string(b), nil
}

// Package stack tracks per-frame CPU allocation pressure for node
// Execute hooks that favor fixed-capacity, value-typed containers
// (BoundedArray) over heap-backed slices on hot paths, and reports when
// that pressure approaches configured thresholds.
//
// Go has no stack-allocation primitive a library can control the way C++
// local arrays do; here "stack" means a fixed-capacity container whose
// capacity is set at construction (Go generics have no const-integer
// parameter). The Tracker counts the bytes reported to it (RequestHandle
// reports each stack-backed handle) against the same WARNING/CRITICAL/MAX
// thresholds the source tracker uses.
package stack

import "sync"

// Byte thresholds per frame, matching the source tracker's defaults: warn
// at 75% of the safe limit, flag critical at 87.5%.
const (
	MaxPerFrame       = 64 * 1024
	WarningThreshold  = 48 * 1024
	CriticalThreshold = 56 * 1024

	maxHistoryFrames = 300
)

// Allocation records one tracked stack-shaped allocation.
type Allocation struct {
	ResourceHash uint64
	SizeBytes    uint64
	NodeID       uint32
}

// FrameUsage is one frame's tracked stack allocation activity.
type FrameUsage struct {
	FrameNumber     uint64
	TotalStackUsed  uint64
	PeakStackUsed   uint64
	AllocationCount uint32
	Allocations     []Allocation
}

// UsageStats summarizes tracked history.
type UsageStats struct {
	AverageStackPerFrame uint64
	PeakStackUsage       uint64
	MinStackUsage        uint64
	FramesTracked        uint32
	WarningFrames        uint32
	CriticalFrames       uint32
}

// Tracker accumulates stack-shaped allocation activity per frame and keeps
// a bounded rolling history (default 300 frames, 5s at 60fps).
type Tracker struct {
	mu      sync.Mutex
	current FrameUsage
	history []FrameUsage
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// BeginFrame resets the current frame's usage record.
func (t *Tracker) BeginFrame(frameNumber uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = FrameUsage{FrameNumber: frameNumber}
}

// EndFrame appends the current frame to history, evicting the oldest
// entry once the 300-frame cap is reached.
func (t *Tracker) EndFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, t.current)
	if len(t.history) > maxHistoryFrames {
		t.history = t.history[len(t.history)-maxHistoryFrames:]
	}
}

// TrackAllocation registers a stack-shaped allocation of sizeBytes made by
// nodeID within the currently open frame.
func (t *Tracker) TrackAllocation(resourceHash uint64, sizeBytes uint64, nodeID uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.Allocations = append(t.current.Allocations, Allocation{
		ResourceHash: resourceHash,
		SizeBytes:    sizeBytes,
		NodeID:       nodeID,
	})
	t.current.AllocationCount++
	t.current.TotalStackUsed += sizeBytes
	if t.current.TotalStackUsed > t.current.PeakStackUsed {
		t.current.PeakStackUsed = t.current.TotalStackUsed
	}
}

// CurrentFrameUsage returns a copy of the currently open frame's usage.
func (t *Tracker) CurrentFrameUsage() FrameUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// History returns the retained frame history, oldest first.
func (t *Tracker) History() []FrameUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]FrameUsage(nil), t.history...)
}

// IsOverWarningThreshold reports whether the current frame's usage has
// crossed WarningThreshold.
func (t *Tracker) IsOverWarningThreshold() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.TotalStackUsed > WarningThreshold
}

// IsOverCriticalThreshold reports whether the current frame's usage has
// crossed CriticalThreshold.
func (t *Tracker) IsOverCriticalThreshold() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.TotalStackUsed > CriticalThreshold
}

// Stats computes aggregate statistics across the retained history.
func (t *Tracker) Stats() UsageStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.history) == 0 {
		return UsageStats{}
	}
	var sum, peak uint64
	min := t.history[0].TotalStackUsed
	var warn, crit uint32
	for _, f := range t.history {
		sum += f.TotalStackUsed
		if f.TotalStackUsed > peak {
			peak = f.TotalStackUsed
		}
		if f.TotalStackUsed < min {
			min = f.TotalStackUsed
		}
		if f.TotalStackUsed > WarningThreshold {
			warn++
		}
		if f.TotalStackUsed > CriticalThreshold {
			crit++
		}
	}
	return UsageStats{
		AverageStackPerFrame: sum / uint64(len(t.history)),
		PeakStackUsage:       peak,
		MinStackUsage:        min,
		FramesTracked:        uint32(len(t.history)),
		WarningFrames:        warn,
		CriticalFrames:       crit,
	}
}

// ClearHistory discards all retained frame history without touching the
// currently open frame.
func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
}

// Package aliasing implements best-fit memory reuse across resources with
// non-overlapping lifetimes: a resource released by one node can hand its
// memory to a later resource instead of the runtime allocating fresh
// device memory, the same way a stack frame reuses bytes its callee freed.
package aliasing

import (
	"sort"
	"sync"

	"github.com/gogpu/rendergraph/lifetime"
	"github.com/gogpu/rendergraph/resource"
)

// MemoryRequirements mirrors the subset of VkMemoryRequirements the
// best-fit search needs: size, alignment, and the bitset of compatible
// memory types.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// compatible reports whether a candidate's requirements can satisfy a
// request's requirements: enough size, sufficient alignment, and an
// overlapping memory-type mask.
func (required MemoryRequirements) compatible(available MemoryRequirements) bool {
	if available.Size < required.Size {
		return false
	}
	if available.Alignment != 0 && required.Alignment != 0 && available.Alignment%required.Alignment != 0 {
		return false
	}
	return available.MemoryTypeBits&required.MemoryTypeBits != 0
}

// candidate is one registered resource tracked for potential aliasing.
type candidate struct {
	resourceID   uint64
	bytes        uint64
	lifetime     resource.Lifetime
	requirements MemoryRequirements
	interval     lifetime.Interval
	releaseFrame uint64
}

// Stats reports aliasing engine performance, mirroring the source's
// AliasingStats.
type Stats struct {
	TotalAliasAttempts uint64
	SuccessfulAliases  uint64
	FailedAliases      uint64
	TotalBytesSaved    uint64
	TotalBytesAllocated uint64
}

// SuccessRate returns SuccessfulAliases/TotalAliasAttempts, or 0 if no
// attempts have been made.
func (s Stats) SuccessRate() float64 {
	if s.TotalAliasAttempts == 0 {
		return 0
	}
	return float64(s.SuccessfulAliases) / float64(s.TotalAliasAttempts)
}

// SavingsPercentage returns 100*TotalBytesSaved/TotalBytesAllocated, or 0
// if nothing has been allocated yet.
func (s Stats) SavingsPercentage() float64 {
	if s.TotalBytesAllocated == 0 {
		return 0
	}
	return 100 * float64(s.TotalBytesSaved) / float64(s.TotalBytesAllocated)
}

// Engine tracks released resources available for reuse and finds best-fit
// candidates for new allocations whose lifetime does not overlap an
// available resource's lifetime.
type Engine struct {
	mu sync.Mutex

	active    map[uint64]candidate
	available []candidate // sorted by bytes ascending on demand

	minimumAliasingSize uint64
	stats               Stats
}

// NewEngine returns an Engine with the default 1 MiB minimum aliasing size.
func NewEngine() *Engine {
	return &Engine{
		active:              make(map[uint64]candidate),
		minimumAliasingSize: 1 << 20,
	}
}

// SetMinimumAliasingSize configures the smallest resource size considered
// worth aliasing; resources below this threshold always get a fresh
// allocation since tracking overhead would outweigh the savings.
func (e *Engine) SetMinimumAliasingSize(bytes uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minimumAliasingSize = bytes
}

// MinimumAliasingSize returns the current threshold.
func (e *Engine) MinimumAliasingSize() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.minimumAliasingSize
}

// RegisterForAliasing tracks resourceID as a live allocation with the given
// requirements, lifetime tag, and topological interval, available for
// reuse once MarkReleased is called.
func (e *Engine) RegisterForAliasing(resourceID uint64, req MemoryRequirements, lt resource.Lifetime, iv lifetime.Interval) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active[resourceID] = candidate{
		resourceID:   resourceID,
		bytes:        req.Size,
		lifetime:     lt,
		requirements: req,
		interval:     iv,
	}
	e.stats.TotalBytesAllocated += req.Size
}

// MarkReleased moves resourceID from the active pool to the available
// pool, making it a candidate for future FindAlias calls.
func (e *Engine) MarkReleased(resourceID uint64, frameNumber uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.active[resourceID]
	if !ok {
		return
	}
	delete(e.active, resourceID)
	c.releaseFrame = frameNumber
	e.available = append(e.available, c)
}

// FindAlias searches the available pool for the smallest resource that
// satisfies req, has non-overlapping lifetime with iv, and meets the
// minimum aliasing size threshold. On success it removes the candidate
// from the available pool (the caller now owns its memory) and returns its
// resourceID. Persistent resources are never offered for aliasing.
func (e *Engine) FindAlias(req MemoryRequirements, lt resource.Lifetime, iv lifetime.Interval) (resourceID uint64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.TotalAliasAttempts++

	if req.Size < e.minimumAliasingSize || lt == resource.LifetimePersistent {
		e.stats.FailedAliases++
		return 0, false
	}

	sort.Slice(e.available, func(i, j int) bool { return e.available[i].bytes < e.available[j].bytes })

	for i, c := range e.available {
		if c.lifetime == resource.LifetimePersistent {
			continue
		}
		if !req.compatible(c.requirements) {
			continue
		}
		if c.interval.Overlaps(iv) {
			continue
		}

		e.available = append(e.available[:i], e.available[i+1:]...)
		e.stats.SuccessfulAliases++
		e.stats.TotalBytesSaved += req.Size
		return c.resourceID, true
	}

	e.stats.FailedAliases++
	return 0, false
}

// ClearReleasedResources drops every available candidate released strictly
// before olderThanFrame, preventing unbounded growth of the available
// pool across a long-running process.
func (e *Engine) ClearReleasedResources(olderThanFrame uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.available[:0]
	for _, c := range e.available {
		if c.releaseFrame >= olderThanFrame {
			kept = append(kept, c)
		}
	}
	e.available = kept
}

// Stats returns a snapshot of the engine's running statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// ResetStats zeroes all counters without touching the active/available
// pools.
func (e *Engine) ResetStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats = Stats{}
}

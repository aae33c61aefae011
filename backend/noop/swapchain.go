package noop

import (
	"context"
	"sync"

	"github.com/gogpu/rendergraph/backend"
)

// Swapchain is a no-op backend.Swapchain that cycles through a fixed pool
// of in-memory images. Recreate replaces the pool; AcquireNextImage always
// succeeds and round-robins the index, never returning
// ErrSwapchainOutOfDate on its own (tests trigger that explicitly via
// ForceOutOfDate).
type Swapchain struct {
	mu           sync.Mutex
	desc         backend.SwapchainDescriptor
	images       []backend.Image
	next         uint32
	outOfDate    bool
	acquireCount uint64
}

// NewSwapchain creates a Swapchain matching desc.
func NewSwapchain(desc backend.SwapchainDescriptor) *Swapchain {
	sc := &Swapchain{}
	_ = sc.Recreate(desc)
	return sc
}

func (s *Swapchain) Destroy() {}

func (s *Swapchain) AcquireNextImage(ctx context.Context, signal backend.Semaphore) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquireCount++
	if s.outOfDate {
		return 0, backend.ErrSwapchainOutOfDate
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	return idx, nil
}

// AcquireCount returns how many times AcquireNextImage has been called, for
// tests asserting a frame was skipped without attempting an acquire.
func (s *Swapchain) AcquireCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquireCount
}

func (s *Swapchain) Images() []backend.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images
}

func (s *Swapchain) Recreate(desc backend.SwapchainDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desc = desc
	s.images = make([]backend.Image, desc.ImageCount)
	for i := range s.images {
		s.images[i] = &Image{desc: backend.ImageDescriptor{
			Width:  desc.Width,
			Height: desc.Height,
			Format: desc.Format,
			Usage:  "swapchain",
		}}
	}
	s.next = 0
	s.outOfDate = false
	return nil
}

// ForceOutOfDate makes the next AcquireNextImage return
// ErrSwapchainOutOfDate, simulating a window resize. Recreate clears it.
func (s *Swapchain) ForceOutOfDate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outOfDate = true
}

package noop

import (
	"sync"

	"github.com/gogpu/rendergraph/backend"
)

// Surface is a no-op backend.Surface whose capabilities are fixed at
// construction but can be overridden with SetCapabilities to simulate a
// resize or a format/present-mode change mid-test.
type Surface struct {
	mu   sync.Mutex
	caps backend.SurfaceCapabilities
}

// NewSurface returns a Surface reporting caps until overridden.
func NewSurface(caps backend.SurfaceCapabilities) *Surface {
	return &Surface{caps: caps}
}

func (s *Surface) Destroy() {}

func (s *Surface) Capabilities(device backend.Device) (backend.SurfaceCapabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps, nil
}

// SetCapabilities replaces the reported capabilities, e.g. to simulate a
// window resize ahead of the next swapchain recreation.
func (s *Surface) SetCapabilities(caps backend.SurfaceCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps = caps
}

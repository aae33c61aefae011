package node

import (
	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/backend"
)

// Context carries everything a node's Setup or Compile hook needs: a
// logger scoped to this instance and the backend device it runs against.
// Surface is nil for nodes that never present (frame-sync, compute-only
// passes); nodes that own a swapchain (nodes/swapchain) read it at Compile
// and Recreate.
type Context struct {
	Logger  *zap.Logger
	Device  backend.Device
	Surface backend.Surface
}

// ExecuteContext extends Context with the per-frame state a node's Execute
// hook needs: the frame index (for ring-buffered resources) and the
// command buffer to record into.
type ExecuteContext struct {
	Context
	FrameIndex    uint64
	CommandBuffer backend.CommandBuffer
}

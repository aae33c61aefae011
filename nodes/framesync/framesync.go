// Package framesync implements the frame-in-flight synchronization core
// node: it owns the fences and semaphores that keep the CPU from racing
// ahead of the GPU by more than MaxFramesInFlight frames, and the
// per-swapchain-image fences/semaphores used around present.
package framesync

import (
	"context"
	"fmt"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/node"
	"github.com/gogpu/rendergraph/resource"
	"github.com/gogpu/rendergraph/stack"
	"github.com/gogpu/rendergraph/types"
)

// TypeID is this node type's stable numeric identity.
const TypeID uint32 = 100

// TypeName is this node type's display name.
const TypeName = "FrameSync"

// Default ring-buffer sizes, matching the source's typical Vulkan
// double/triple-buffering configuration.
const (
	DefaultMaxFramesInFlight  = 2
	DefaultMaxSwapchainImages = 3
)

// ParamMaxFramesInFlight and ParamMaxSwapchainImages override the default
// ring sizes via Instance.SetParam before Setup.
const (
	ParamMaxFramesInFlight  = "maxFramesInFlight"
	ParamMaxSwapchainImages = "maxSwapchainImages"
)

// Output slot indices, matching NewType's OutputSchema order.
const (
	OutCurrentFrameIndex = iota
	OutInFlightFence
	OutImageAvailableSemaphores
	OutRenderCompleteSemaphores
	OutPresentFences
)

// NewType returns the FrameSync node.Type. typeID lets a caller assign a
// non-default identity when a graph hosts more than one frame-sync node
// (e.g. per-viewport synchronization); pass TypeID for the common case.
func NewType(typeID uint32) *node.Type {
	typ := &node.Type{
		TypeID:   typeID,
		TypeName: TypeName,
		OutputSchema: []node.SlotSchema{
			{Name: "current_frame_index", DataType: "uint32", Role: types.RoleExecute, ArrayMode: types.Single},
			{Name: "in_flight_fence", DataType: "backend.Fence", Role: types.RoleExecute, ArrayMode: types.Single},
			{Name: "image_available_semaphores", DataType: "backend.Semaphore", Role: types.RoleExecute, ArrayMode: types.Array},
			{Name: "render_complete_semaphores", DataType: "backend.Semaphore", Role: types.RoleExecute, ArrayMode: types.Array},
			{Name: "present_fences", DataType: "backend.Fence", Role: types.RoleExecute, ArrayMode: types.Array},
		},
		PipelineType: types.PipelineTransfer,
		Capabilities: types.CapNone,
		Workload:     types.DefaultWorkloadMetrics(),
	}
	typ.NewInstance = func(instanceName string) *node.Instance {
		n := &Node{}
		inst := node.NewInstance(instanceName, typ, n)
		n.inst = inst
		return inst
	}
	return typ
}

// Node is the FrameSync node's LifecycleImpl: it manages the ring buffers
// of in-flight fences and acquire/present synchronization primitives and
// advances current_frame_index once per Execute.
type Node struct {
	inst *node.Instance

	maxFramesInFlight  int
	maxSwapchainImages int

	inFlightFences *stack.BoundedArray[backend.Fence]
	imageAvailable *stack.BoundedArray[backend.Semaphore]
	renderComplete *stack.BoundedArray[backend.Semaphore]
	presentFences  *stack.BoundedArray[backend.Fence]

	frameIndexOut     *resource.Handle[uint32]
	inFlightFenceOut  *resource.Handle[backend.Fence]
	imageAvailOut     []*resource.Handle[backend.Semaphore]
	renderCompleteOut []*resource.Handle[backend.Semaphore]
	presentFencesOut  []*resource.Handle[backend.Fence]

	currentFrameIndex uint32
	created           bool
}

func (n *Node) SetupImpl(ctx *node.Context) error {
	ctx.Logger.Debug("framesync: setup (graph-scope initialization)")
	return nil
}

// CompileImpl creates the fence/semaphore ring buffers from ctx.Device and
// publishes the initial frame-sync state as outputs.
func (n *Node) CompileImpl(ctx *node.Context) error {
	n.maxFramesInFlight = DefaultMaxFramesInFlight
	if p, ok := n.inst.Param(ParamMaxFramesInFlight); ok {
		if v, ok := p.Int(); ok {
			n.maxFramesInFlight = int(v)
		}
	}
	n.maxSwapchainImages = DefaultMaxSwapchainImages
	if p, ok := n.inst.Param(ParamMaxSwapchainImages); ok {
		if v, ok := p.Int(); ok {
			n.maxSwapchainImages = int(v)
		}
	}

	n.inFlightFences = stack.NewBoundedArray[backend.Fence](n.maxFramesInFlight)
	for i := 0; i < n.maxFramesInFlight; i++ {
		f, err := ctx.Device.CreateFence(true)
		if err != nil {
			return fmt.Errorf("framesync: create in-flight fence %d: %w", i, err)
		}
		if err := n.inFlightFences.Add(f); err != nil {
			return fmt.Errorf("framesync: %w", err)
		}
	}

	n.imageAvailable = stack.NewBoundedArray[backend.Semaphore](n.maxFramesInFlight)
	for i := 0; i < n.maxFramesInFlight; i++ {
		s, err := ctx.Device.CreateSemaphore()
		if err != nil {
			return fmt.Errorf("framesync: create image-available semaphore %d: %w", i, err)
		}
		if err := n.imageAvailable.Add(s); err != nil {
			return fmt.Errorf("framesync: %w", err)
		}
	}

	n.renderComplete = stack.NewBoundedArray[backend.Semaphore](n.maxSwapchainImages)
	for i := 0; i < n.maxSwapchainImages; i++ {
		s, err := ctx.Device.CreateSemaphore()
		if err != nil {
			return fmt.Errorf("framesync: create render-complete semaphore %d: %w", i, err)
		}
		if err := n.renderComplete.Add(s); err != nil {
			return fmt.Errorf("framesync: %w", err)
		}
	}

	n.presentFences = stack.NewBoundedArray[backend.Fence](n.maxSwapchainImages)
	for i := 0; i < n.maxSwapchainImages; i++ {
		f, err := ctx.Device.CreateFence(true)
		if err != nil {
			return fmt.Errorf("framesync: create present fence %d: %w", i, err)
		}
		if err := n.presentFences.Add(f); err != nil {
			return fmt.Errorf("framesync: %w", err)
		}
	}

	n.created = true
	n.currentFrameIndex = 0

	n.publishFrameState()
	n.publishRingArrays()
	return nil
}

// ExecuteImpl advances current_frame_index, blocks until that slot's fence
// is signaled, resets it, then republishes the frame-index and fence
// outputs for this frame.
func (n *Node) ExecuteImpl(ctx *node.ExecuteContext) error {
	n.currentFrameIndex = (n.currentFrameIndex + 1) % uint32(n.maxFramesInFlight)

	fence, ok := n.inFlightFences.At(int(n.currentFrameIndex))
	if !ok {
		return fmt.Errorf("framesync: no in-flight fence for frame index %d", n.currentFrameIndex)
	}
	if err := fence.Wait(context.Background()); err != nil {
		return fmt.Errorf("framesync: wait in-flight fence: %w", err)
	}
	if err := fence.Reset(); err != nil {
		return fmt.Errorf("framesync: reset in-flight fence: %w", err)
	}

	n.publishFrameState()
	return nil
}

// CleanupImpl destroys every owned fence and semaphore.
func (n *Node) CleanupImpl(ctx *node.Context) error {
	if !n.created {
		return nil
	}
	n.inFlightFences.ForEach(func(f backend.Fence) { f.Destroy() })
	n.imageAvailable.ForEach(func(s backend.Semaphore) { s.Destroy() })
	n.renderComplete.ForEach(func(s backend.Semaphore) { s.Destroy() })
	n.presentFences.ForEach(func(f backend.Fence) { f.Destroy() })

	n.inFlightFences.Clear()
	n.imageAvailable.Clear()
	n.renderComplete.Clear()
	n.presentFences.Clear()

	n.currentFrameIndex = 0
	n.created = false
	return nil
}

// CurrentFrameIndex returns the index last published on
// OutCurrentFrameIndex, for tests and diagnostics.
func (n *Node) CurrentFrameIndex() uint32 { return n.currentFrameIndex }

func (n *Node) publishFrameState() {
	if n.frameIndexOut == nil {
		n.frameIndexOut = resource.New[uint32](resource.Key{SlotIndex: OutCurrentFrameIndex}, resource.LifetimeGraphLocal, nil)
	}
	n.frameIndexOut.Set(n.currentFrameIndex, 0, "")
	_ = n.inst.SetOutput(OutCurrentFrameIndex, 0, n.frameIndexOut)

	fence, _ := n.inFlightFences.At(int(n.currentFrameIndex))
	if n.inFlightFenceOut == nil {
		n.inFlightFenceOut = resource.New[backend.Fence](resource.Key{SlotIndex: OutInFlightFence}, resource.LifetimeGraphLocal, nil)
	}
	n.inFlightFenceOut.Set(fence, 0, "")
	_ = n.inst.SetOutput(OutInFlightFence, 0, n.inFlightFenceOut)
}

func (n *Node) publishRingArrays() {
	n.imageAvailOut = make([]*resource.Handle[backend.Semaphore], n.maxFramesInFlight)
	for i := 0; i < n.maxFramesInFlight; i++ {
		s, _ := n.imageAvailable.At(i)
		h := resource.New[backend.Semaphore](resource.Key{SlotIndex: OutImageAvailableSemaphores, ArrayIndex: uint32(i)}, resource.LifetimeGraphLocal, nil)
		h.Set(s, 0, "")
		n.imageAvailOut[i] = h
		_ = n.inst.SetOutput(OutImageAvailableSemaphores, i, h)
	}

	n.renderCompleteOut = make([]*resource.Handle[backend.Semaphore], n.maxSwapchainImages)
	for i := 0; i < n.maxSwapchainImages; i++ {
		s, _ := n.renderComplete.At(i)
		h := resource.New[backend.Semaphore](resource.Key{SlotIndex: OutRenderCompleteSemaphores, ArrayIndex: uint32(i)}, resource.LifetimeGraphLocal, nil)
		h.Set(s, 0, "")
		n.renderCompleteOut[i] = h
		_ = n.inst.SetOutput(OutRenderCompleteSemaphores, i, h)
	}

	n.presentFencesOut = make([]*resource.Handle[backend.Fence], n.maxSwapchainImages)
	for i := 0; i < n.maxSwapchainImages; i++ {
		f, _ := n.presentFences.At(i)
		h := resource.New[backend.Fence](resource.Key{SlotIndex: OutPresentFences, ArrayIndex: uint32(i)}, resource.LifetimeGraphLocal, nil)
		h.Set(f, 0, "")
		n.presentFencesOut[i] = h
		_ = n.inst.SetOutput(OutPresentFences, i, h)
	}
}

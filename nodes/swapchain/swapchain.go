// Package swapchain implements the swapchain node: it wraps the platform
// presentation surface, publishes the acquired image/view each frame, and
// owns the per-image uniform-buffer companion resources. It also provides
// CommandBufferTracker, the dirty/ready bookkeeping renderable nodes use to
// decide whether to re-record or replay their per-image command buffers.
package swapchain

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
const TypeID uint32 = 101

// TypeName is this node type's display name.
const TypeName = "Swapchain"

// DefaultUBOSize is the per-image uniform buffer's size when ParamUBOSize
// is not set.
const DefaultUBOSize = 256

// Param keys.
const (
	ParamFramebufferResized = "framebufferResized"
	ParamPreferredFormat    = "preferredFormat"
	ParamWindowWidth        = "windowWidth"
	ParamWindowHeight       = "windowHeight"
	ParamUBOSize            = "uboSize"
)

// Input slot indices.
const (
	InFrameIndex = iota
	InImageAvailableSemaphores
)

// Output slot indices.
const (
	OutImageIndex = iota
	OutCurrentImage
	OutCurrentImageView
	OutImages
	OutImageViews
	OutPerImageUBO
)

var presentModePriority = []string{"immediate", "mailbox", "fifo"}

// preferredFallback is chosen when a surface reports the format "undefined", matching Vulkan's VK_FORMAT_UNDEFINED convention:
// the driver is free to pick, and BGRA8 UNORM is the common swapchain
// format on desktop presentation engines.
const (
	formatUndefined   = "undefined"
	preferredFallback = "bgra8_unorm"
)

// NewType returns the Swapchain node.Type.
func NewType(typeID uint32) *node.Type {
	typ := &node.Type{
		TypeID:   typeID,
		TypeName: TypeName,
		InputSchema: []node.SlotSchema{
			{Name: "frame_index", DataType: "uint32", Role: types.RoleExecute, ArrayMode: types.Single},
			{Name: "image_available_semaphores", DataType: "backend.Semaphore", Role: types.RoleExecute, ArrayMode: types.Array},
		},
		OutputSchema: []node.SlotSchema{
			{Name: "image_index", DataType: "uint32", Role: types.RoleExecute, ArrayMode: types.Single},
			{Name: "current_image", DataType: "backend.Image", Role: types.RoleExecute, ArrayMode: types.Single},
			{Name: "current_image_view", DataType: "backend.ImageView", Role: types.RoleExecute, ArrayMode: types.Single},
			{Name: "images", DataType: "backend.Image", Role: types.RoleDependency, ArrayMode: types.Array},
			{Name: "image_views", DataType: "backend.ImageView", Role: types.RoleDependency, ArrayMode: types.Array},
			{Name: "per_image_ubo", DataType: "backend.Buffer", Role: types.RoleDependency, ArrayMode: types.Array},
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

// Node is the Swapchain node's LifecycleImpl.
type Node struct {
	inst    *node.Instance
	surface backend.Surface

	format      string
	presentMode string
	extent      backend.Extent2D
	imageCount  int

	sc         backend.Swapchain
	images     *stack.BoundedArray[backend.Image]
	imageViews *stack.BoundedArray[backend.ImageView]
	ubos       *stack.BoundedArray[backend.Buffer]

	tracker *CommandBufferTracker

	imageIndexOut       *resource.Handle[uint32]
	currentImageOut     *resource.Handle[backend.Image]
	currentImageViewOut *resource.Handle[backend.ImageView]
	imagesOut           []*resource.Handle[backend.Image]
	imageViewsOut       []*resource.Handle[backend.ImageView]
	ubosOut             []*resource.Handle[backend.Buffer]

	currentImageIndex uint32
	created           bool
}

func (n *Node) SetupImpl(ctx *node.Context) error {
	if ctx.Surface == nil {
		return fmt.Errorf("swapchain: no Surface in node.Context")
	}
	n.surface = ctx.Surface
	return nil
}

// CompileImpl queries the surface's capabilities, chooses a present mode,
// format and extent, creates the swapchain, its image views, and one
// uniform buffer per image, and publishes every output.
func (n *Node) CompileImpl(ctx *node.Context) error {
	caps, err := n.surface.Capabilities(ctx.Device)
	if err != nil {
		return fmt.Errorf("swapchain: query surface capabilities: %w", err)
	}

	n.presentMode = choosePresentMode(caps.SupportedPresentModes)
	n.format = chooseFormat(caps.SupportedFormats, n.preferredFormatParam())
	n.extent = chooseExtent(caps.CurrentExtent, n.windowExtentParam())
	n.imageCount = chooseImageCount(caps.MinImageCount, caps.MaxImageCount)

	if err := n.createSwapchainResources(ctx); err != nil {
		return err
	}

	n.tracker = NewCommandBufferTracker(n.imageCount)
	n.created = true

	n.publishStaticArrays()
	return nil
}

// ExecuteImpl handles an externally-requested recreation (e.g. a window
// resize callback setting ParamFramebufferResized) first; if one happens,
// this frame is skipped entirely — no acquire, no published image_index.
// Otherwise it acquires the next image, recreating and skipping the frame
// on backend.ErrSwapchainOutOfDate instead of propagating the error. Every
// other acquire error is returned; the backend reports no separate
// suboptimal status, so nothing else triggers a recreation here.
func (n *Node) ExecuteImpl(ctx *node.ExecuteContext) error {
	if p, ok := n.inst.Param(ParamFramebufferResized); ok {
		if resized, _ := p.Bool(); resized {
			n.inst.SetParam(ParamFramebufferResized, node.BoolParam(false))
			return n.recreate(&ctx.Context)
		}
	}

	_, sem, err := n.acquireInputs()
	if err != nil {
		return err
	}

	imageIndex, err := n.sc.AcquireNextImage(context.Background(), sem)
	switch {
	case err == nil:
	case err == backend.ErrSwapchainOutOfDate:
		return n.recreate(&ctx.Context)
	default:
		return fmt.Errorf("swapchain: acquire next image: %w", err)
	}

	n.currentImageIndex = imageIndex
	n.publishFrameState()
	return nil
}

// CleanupImpl destroys the image views, the swapchain itself, and the
// per-image uniform buffers. The surface is released separately by the
// driver, never by this node.
func (n *Node) CleanupImpl(ctx *node.Context) error {
	if !n.created {
		return nil
	}
	n.destroySwapchainResources()
	n.created = false
	return nil
}

// NodeFor recovers the concrete *Node behind inst's LifecycleImpl seam, for
// tests and diagnostics that need node-type-specific state (image count,
// the command-buffer tracker) the generic Instance API does not expose.
func NodeFor(inst *node.Instance) (*Node, bool) {
	n, ok := inst.Impl().(*Node)
	return n, ok
}

// ImageCount returns the number of swapchain images as of the last
// successful Compile/Recreate, for tests and diagnostics.
func (n *Node) ImageCount() int { return n.imageCount }

// Tracker returns the command-buffer dirty/ready tracker sized to the
// current image count. Renderable nodes downstream of this one share it to
// decide whether to re-record or replay their per-image command buffer.
func (n *Node) Tracker() *CommandBufferTracker { return n.tracker }

func (n *Node) preferredFormatParam() string {
	if p, ok := n.inst.Param(ParamPreferredFormat); ok {
		if s, ok := p.String(); ok {
			return s
		}
	}
	return ""
}

func (n *Node) windowExtentParam() backend.Extent2D {
	var e backend.Extent2D
	if p, ok := n.inst.Param(ParamWindowWidth); ok {
		if v, ok := p.Uint(); ok {
			e.Width = uint32(v)
		}
	}
	if p, ok := n.inst.Param(ParamWindowHeight); ok {
		if v, ok := p.Uint(); ok {
			e.Height = uint32(v)
		}
	}
	return e
}

func (n *Node) uboSizeParam() uint64 {
	if p, ok := n.inst.Param(ParamUBOSize); ok {
		if v, ok := p.Uint(); ok {
			return v
		}
	}
	return DefaultUBOSize
}

func (n *Node) acquireInputs() (frameIndex uint32, sem backend.Semaphore, err error) {
	frameIdxRes := n.inst.Input(InFrameIndex, 0)
	h, ok := resource.As[uint32](frameIdxRes)
	if !ok {
		return 0, nil, fmt.Errorf("swapchain: frame_index input not bound")
	}
	frameIndex, err = h.Value()
	if err != nil {
		return 0, nil, fmt.Errorf("swapchain: frame_index: %w", err)
	}

	semRes := n.inst.Input(InImageAvailableSemaphores, int(frameIndex))
	sh, ok := resource.As[backend.Semaphore](semRes)
	if !ok {
		return 0, nil, fmt.Errorf("swapchain: image_available_semaphores[%d] input not bound", frameIndex)
	}
	sem, err = sh.Value()
	if err != nil {
		return 0, nil, fmt.Errorf("swapchain: image_available_semaphores[%d]: %w", frameIndex, err)
	}
	return frameIndex, sem, nil
}

// createSwapchainResources creates the swapchain, its images/views, and the
// per-image UBOs from the node's currently-chosen format/presentMode/extent/
// imageCount, without destroying anything first (used by CompileImpl; see
// recreate for the teardown-then-rebuild path).
func (n *Node) createSwapchainResources(ctx *node.Context) error {
	desc := backend.SwapchainDescriptor{
		Width:       n.extent.Width,
		Height:      n.extent.Height,
		ImageCount:  uint32(n.imageCount),
		Format:      n.format,
		PresentMode: n.presentMode,
	}
	sc, err := ctx.Device.CreateSwapchain(n.surface, desc)
	if err != nil {
		return fmt.Errorf("swapchain: create swapchain: %w", err)
	}
	n.sc = sc

	images := sc.Images()
	n.images = stack.NewBoundedArray[backend.Image](len(images))
	n.imageViews = stack.NewBoundedArray[backend.ImageView](len(images))
	n.ubos = stack.NewBoundedArray[backend.Buffer](len(images))

	for _, img := range images {
		if err := n.images.Add(img); err != nil {
			return fmt.Errorf("swapchain: %w", err)
		}
		view, err := ctx.Device.CreateImageView(img, n.format)
		if err != nil {
			return fmt.Errorf("swapchain: create image view: %w", err)
		}
		if err := n.imageViews.Add(view); err != nil {
			return fmt.Errorf("swapchain: %w", err)
		}
		ubo, err := ctx.Device.CreateBuffer(n.uboSizeParam(), "uniform")
		if err != nil {
			return fmt.Errorf("swapchain: create per-image ubo: %w", err)
		}
		if err := n.ubos.Add(ubo); err != nil {
			return fmt.Errorf("swapchain: %w", err)
		}
	}

	n.imageCount = len(images)
	return nil
}

func (n *Node) destroySwapchainResources() {
	if n.imageViews != nil {
		n.imageViews.ForEach(func(v backend.ImageView) { v.Destroy() })
	}
	if n.ubos != nil {
		n.ubos.ForEach(func(b backend.Buffer) { b.Destroy() })
	}
	if n.sc != nil {
		n.sc.Destroy()
		n.sc = nil
	}
	n.images = nil
	n.imageViews = nil
	n.ubos = nil
}

// recreate implements the Recreate operation: wait device idle, tear down
// image views/UBOs/swapchain (the surface is untouched), re-query
// capabilities and rebuild, then mark every per-image command buffer dirty
// since all of them reference destroyed images/views.
func (n *Node) recreate(ctx *node.Context) error {
	if err := ctx.Device.WaitIdle(context.Background()); err != nil {
		return fmt.Errorf("swapchain: wait idle before recreate: %w", err)
	}
	n.destroySwapchainResources()

	caps, err := n.surface.Capabilities(ctx.Device)
	if err != nil {
		return fmt.Errorf("swapchain: query surface capabilities on recreate: %w", err)
	}
	n.presentMode = choosePresentMode(caps.SupportedPresentModes)
	n.format = chooseFormat(caps.SupportedFormats, n.preferredFormatParam())
	n.extent = chooseExtent(caps.CurrentExtent, n.windowExtentParam())
	n.imageCount = chooseImageCount(caps.MinImageCount, caps.MaxImageCount)

	if err := n.createSwapchainResources(ctx); err != nil {
		return err
	}

	n.tracker.Resize(n.imageCount)
	n.tracker.MarkAllDirty()

	n.publishStaticArrays()
	return nil
}

func (n *Node) publishStaticArrays() {
	n.imagesOut = make([]*resource.Handle[backend.Image], n.imageCount)
	n.imageViewsOut = make([]*resource.Handle[backend.ImageView], n.imageCount)
	n.ubosOut = make([]*resource.Handle[backend.Buffer], n.imageCount)

	for i := 0; i < n.imageCount; i++ {
		img, _ := n.images.At(i)
		ih := resource.New[backend.Image](resource.Key{SlotIndex: OutImages, ArrayIndex: uint32(i)}, resource.LifetimeGraphLocal, nil)
		ih.Set(img, 0, "")
		n.imagesOut[i] = ih
		_ = n.inst.SetOutput(OutImages, i, ih)

		view, _ := n.imageViews.At(i)
		vh := resource.New[backend.ImageView](resource.Key{SlotIndex: OutImageViews, ArrayIndex: uint32(i)}, resource.LifetimeGraphLocal, nil)
		vh.Set(view, 0, "")
		n.imageViewsOut[i] = vh
		_ = n.inst.SetOutput(OutImageViews, i, vh)

		ubo, _ := n.ubos.At(i)
		uh := resource.New[backend.Buffer](resource.Key{SlotIndex: OutPerImageUBO, ArrayIndex: uint32(i)}, resource.LifetimeGraphLocal, nil)
		uh.Set(ubo, ubo.SizeBytes(), "HostVisible")
		n.ubosOut[i] = uh
		_ = n.inst.SetOutput(OutPerImageUBO, i, uh)
	}
}

func (n *Node) publishFrameState() {
	if n.imageIndexOut == nil {
		n.imageIndexOut = resource.New[uint32](resource.Key{SlotIndex: OutImageIndex}, resource.LifetimeGraphLocal, nil)
	}
	n.imageIndexOut.Set(n.currentImageIndex, 0, "")
	_ = n.inst.SetOutput(OutImageIndex, 0, n.imageIndexOut)

	img, _ := n.images.At(int(n.currentImageIndex))
	if n.currentImageOut == nil {
		n.currentImageOut = resource.New[backend.Image](resource.Key{SlotIndex: OutCurrentImage}, resource.LifetimeGraphLocal, nil)
	}
	n.currentImageOut.Set(img, 0, "")
	_ = n.inst.SetOutput(OutCurrentImage, 0, n.currentImageOut)

	view, _ := n.imageViews.At(int(n.currentImageIndex))
	if n.currentImageViewOut == nil {
		n.currentImageViewOut = resource.New[backend.ImageView](resource.Key{SlotIndex: OutCurrentImageView}, resource.LifetimeGraphLocal, nil)
	}
	n.currentImageViewOut.Set(view, 0, "")
	_ = n.inst.SetOutput(OutCurrentImageView, 0, n.currentImageViewOut)
}

// choosePresentMode implements the IMMEDIATE > MAILBOX > FIFO priority.
func choosePresentMode(supported []string) string {
	for _, want := range presentModePriority {
		for _, have := range supported {
			if have == want {
				return want
			}
		}
	}
	return "fifo"
}

// chooseFormat honors an explicit preference if the surface supports it;
// otherwise falls back to the BGRA8 UNORM convention when the surface
// reports "undefined", or else the first supported format.
func chooseFormat(supported []string, preferred string) string {
	if preferred != "" {
		for _, f := range supported {
			if f == preferred {
				return preferred
			}
		}
	}
	if len(supported) == 1 && supported[0] == formatUndefined {
		return preferredFallback
	}
	if len(supported) > 0 {
		return supported[0]
	}
	return preferredFallback
}

// chooseExtent uses the surface's current extent unless it is the
// undefined sentinel, in which case the caller-provided window size wins.
func chooseExtent(current, window backend.Extent2D) backend.Extent2D {
	if current.Width == backend.UndefinedExtent || current.Height == backend.UndefinedExtent {
		return window
	}
	return current
}

// chooseImageCount picks minImageCount+1, clamped to maxImageCount when the
// surface bounds it (0 means unbounded).
func chooseImageCount(minImageCount, maxImageCount uint32) int {
	count := minImageCount + 1
	if maxImageCount > 0 && count > maxImageCount {
		count = maxImageCount
	}
	return int(count)
}

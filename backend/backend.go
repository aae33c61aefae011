// Package backend declares the collaborator interfaces the render-graph
// runtime issues commands to: a Vulkan-1.2-class device, its queues,
// swapchain, synchronization primitives, and resources. The runtime never
// links a concrete driver; per the specification the Vulkan driver itself
// and GLSL->SPIR-V shader compilation are external collaborators. backend
// is the seam a real binding plugs into; package backend/noop provides the
// implementation used by tests and dry-run drivers.
package backend

import "context"

// Resource is the base interface every GPU-owned object implements.
type Resource interface {
	// Destroy releases the underlying GPU object. Calling Destroy more
	// than once is undefined behavior, matching the teacher's own
	// hal.Resource contract.
	Destroy()
}

// Device is an opened logical GPU device.
type Device interface {
	// Capabilities reports which optional features this device exposes.
	Capabilities() uint32

	// Queue returns the device's primary command queue.
	Queue() Queue

	// CreateFence creates a fence, signaled if initiallySignaled is true.
	CreateFence(initiallySignaled bool) (Fence, error)

	// CreateSemaphore creates a binary semaphore.
	CreateSemaphore() (Semaphore, error)

	// CreateCommandBuffer allocates a command buffer from the device's
	// default command pool.
	CreateCommandBuffer() (CommandBuffer, error)

	// CreateBuffer allocates a GPU buffer of the given size and usage tag.
	CreateBuffer(sizeBytes uint64, usage string) (Buffer, error)

	// CreateImage allocates a GPU image per desc.
	CreateImage(desc ImageDescriptor) (Image, error)

	// CreateImageView creates a view of image, e.g. for use as a swapchain
	// render target.
	CreateImageView(image Image, format string) (ImageView, error)

	// CreateSwapchain creates a swapchain for surface per desc.
	CreateSwapchain(surface Surface, desc SwapchainDescriptor) (Swapchain, error)

	// WaitIdle blocks until all submitted work on this device completes.
	WaitIdle(ctx context.Context) error

	Destroy()
}

// Extent2D is a 2D pixel size. UndefinedExtent is Vulkan's sentinel for "the
// surface extent tracks the window, query the window directly".
type Extent2D struct {
	Width, Height uint32
}

// UndefinedExtent is the CurrentExtent value a Surface reports when its
// extent is not implicitly determined by the platform (0xFFFFFFFF, matching
// VkSurfaceCapabilitiesKHR::currentExtent's documented sentinel).
const UndefinedExtent = 0xFFFFFFFF

// SurfaceCapabilities reports what a Surface supports, queried fresh at
// swapchain (re)creation.
type SurfaceCapabilities struct {
	CurrentExtent          Extent2D
	MinImageCount          uint32
	MaxImageCount          uint32 // 0 means unbounded
	SupportedFormats       []string
	SupportedPresentModes  []string
}

// Surface is a platform presentation target (a window). The render-graph
// runtime never creates one; it is handed in by the driver and queried for
// capabilities and used to create/recreate a Swapchain.
type Surface interface {
	Resource
	// Capabilities queries the surface's current capabilities against
	// device. Capabilities can change across calls (e.g. after a resize).
	Capabilities(device Device) (SurfaceCapabilities, error)
}

// Queue submits recorded command buffers and presents swapchain images.
type Queue interface {
	// Submit submits cmd for execution. waitSemaphores are waited on
	// before execution begins; signalSemaphores are signaled on
	// completion; signalFence is signaled once the submission retires.
	Submit(cmd CommandBuffer, waitSemaphores []Semaphore, signalSemaphores []Semaphore, signalFence Fence) error

	// Present presents image on the given swapchain, waiting on
	// waitSemaphores first. Returns ErrSwapchainOutOfDate if the
	// swapchain must be recreated before the next acquire.
	Present(sc Swapchain, imageIndex uint32, waitSemaphores []Semaphore) error
}

// Fence is a GPU-to-CPU synchronization primitive.
type Fence interface {
	Resource
	// Wait blocks until the fence is signaled or ctx is done.
	Wait(ctx context.Context) error
	// Reset clears the signaled state.
	Reset() error
	// Signaled reports the fence's current state without blocking.
	Signaled() (bool, error)
}

// Semaphore is a GPU-to-GPU synchronization primitive.
type Semaphore interface {
	Resource
}

// Buffer is a GPU-visible linear memory allocation.
type Buffer interface {
	Resource
	SizeBytes() uint64
}

// ImageDescriptor describes the properties of an Image to create.
type ImageDescriptor struct {
	Width, Height uint32
	Format        string
	Usage         string
	MipLevels     uint32
}

// Image is a GPU texture.
type Image interface {
	Resource
	Descriptor() ImageDescriptor
}

// ImageView is a typed view into an Image.
type ImageView interface {
	Resource
}

// CommandBuffer records GPU commands for later submission.
type CommandBuffer interface {
	Resource
	// Begin opens the buffer for recording, discarding any prior contents.
	Begin() error
	// End closes recording; the buffer becomes submittable.
	End() error
}

// SwapchainDescriptor describes how to (re)create a Swapchain.
type SwapchainDescriptor struct {
	Width, Height uint32
	ImageCount    uint32
	Format        string
	PresentMode   string
}

// Swapchain manages the set of presentable images for a surface.
type Swapchain interface {
	Resource
	// AcquireNextImage returns the index of the next presentable image,
	// signaling signal once it is safe to render into. Returns
	// ErrSwapchainOutOfDate if Recreate must be called first.
	AcquireNextImage(ctx context.Context, signal Semaphore) (imageIndex uint32, err error)
	// Images returns the current backing images, one per swapchain slot.
	Images() []Image
	// Recreate rebuilds the swapchain per desc, e.g. after a resize.
	Recreate(desc SwapchainDescriptor) error
}

// ShaderCompiler turns shader source into a backend-loadable module. No
// in-module implementation is provided; this interface exists purely as
// the wiring point a real GLSL->SPIR-V pipeline would satisfy.
type ShaderCompiler interface {
	Compile(source string, stage string) ([]byte, error)
}

// TextureLoader decodes an encoded image into upload-ready pixel data. No
// in-module implementation is provided, for the same reason as
// ShaderCompiler.
type TextureLoader interface {
	Load(path string) (pixels []byte, width, height uint32, err error)
}

// Package noop implements package backend's interfaces with inert,
// always-succeeding stand-ins. It is the backend used by unit tests and by
// a driver run in dry-run mode, mirroring the teacher's own hal/noop
// backend used for cross-backend conformance testing without real GPU
// hardware.
package noop

import (
	"context"
	"sync"

	"github.com/gogpu/rendergraph/backend"
)

// Device is a no-op backend.Device. All operations succeed immediately.
type Device struct {
	caps  uint32
	queue *Queue

	mu            sync.Mutex
	lastSwapchain backend.Swapchain
}

// NewDevice returns a Device exposing the given capability bitset.
func NewDevice(caps uint32) *Device {
	return &Device{caps: caps, queue: &Queue{}}
}

func (d *Device) Capabilities() uint32 { return d.caps }
func (d *Device) Queue() backend.Queue { return d.queue }

func (d *Device) CreateFence(initiallySignaled bool) (backend.Fence, error) {
	return &Fence{signaled: initiallySignaled}, nil
}

func (d *Device) CreateSemaphore() (backend.Semaphore, error) {
	return &Semaphore{}, nil
}

func (d *Device) CreateCommandBuffer() (backend.CommandBuffer, error) {
	return &CommandBuffer{}, nil
}

func (d *Device) CreateBuffer(sizeBytes uint64, usage string) (backend.Buffer, error) {
	return &Buffer{size: sizeBytes, usage: usage}, nil
}

func (d *Device) CreateImage(desc backend.ImageDescriptor) (backend.Image, error) {
	return &Image{desc: desc}, nil
}

func (d *Device) CreateImageView(image backend.Image, format string) (backend.ImageView, error) {
	return &ImageView{image: image, format: format}, nil
}

func (d *Device) CreateSwapchain(surface backend.Surface, desc backend.SwapchainDescriptor) (backend.Swapchain, error) {
	sc := NewSwapchain(desc)
	d.mu.Lock()
	d.lastSwapchain = sc
	d.mu.Unlock()
	return sc, nil
}

// LastSwapchain returns the most recently created swapchain, for tests
// asserting on acquire counts and recreation without threading a reference
// through the node under test.
func (d *Device) LastSwapchain() backend.Swapchain {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSwapchain
}

func (d *Device) WaitIdle(ctx context.Context) error { return nil }
func (d *Device) Destroy()                           {}

// Queue is a no-op backend.Queue: Submit and Present always succeed and
// signal their fence/semaphores synchronously.
type Queue struct {
	mu          sync.Mutex
	submitCount uint64
}

func (q *Queue) Submit(cmd backend.CommandBuffer, wait []backend.Semaphore, signal []backend.Semaphore, signalFence backend.Fence) error {
	q.mu.Lock()
	q.submitCount++
	q.mu.Unlock()
	if f, ok := signalFence.(*Fence); ok && f != nil {
		f.mu.Lock()
		f.signaled = true
		f.mu.Unlock()
	}
	return nil
}

func (q *Queue) Present(sc backend.Swapchain, imageIndex uint32, wait []backend.Semaphore) error {
	return nil
}

// SubmitCount returns how many times Submit has been called, for tests.
func (q *Queue) SubmitCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitCount
}

// Fence is a no-op backend.Fence backed by a plain bool.
type Fence struct {
	mu       sync.Mutex
	signaled bool
}

func (f *Fence) Destroy() {}

func (f *Fence) Wait(ctx context.Context) error { return nil }

func (f *Fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signaled = false
	return nil
}

func (f *Fence) Signaled() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled, nil
}

// Semaphore is a no-op backend.Semaphore.
type Semaphore struct{}

func (s *Semaphore) Destroy() {}

// Buffer is a no-op backend.Buffer.
type Buffer struct {
	size  uint64
	usage string
}

func (b *Buffer) Destroy()           {}
func (b *Buffer) SizeBytes() uint64 { return b.size }

// Image is a no-op backend.Image.
type Image struct {
	desc backend.ImageDescriptor
}

func (i *Image) Destroy()                            {}
func (i *Image) Descriptor() backend.ImageDescriptor { return i.desc }

// ImageView is a no-op backend.ImageView.
type ImageView struct {
	image  backend.Image
	format string
}

func (v *ImageView) Destroy() {}

// CommandBuffer is a no-op backend.CommandBuffer.
type CommandBuffer struct{}

func (c *CommandBuffer) Destroy()    {}
func (c *CommandBuffer) Begin() error { return nil }
func (c *CommandBuffer) End() error   { return nil }

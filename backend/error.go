package backend

import "errors"

// ErrSwapchainOutOfDate is returned by Swapchain.AcquireNextImage and
// Queue.Present when the swapchain no longer matches the surface (e.g.
// after a window resize) and must be recreated before use.
var ErrSwapchainOutOfDate = errors.New("backend: swapchain out of date")

// ErrSwapchainLost is returned when the underlying surface was destroyed
// and the swapchain cannot be recreated.
var ErrSwapchainLost = errors.New("backend: swapchain lost")

// ErrTimeout is returned by blocking calls that exceeded their deadline.
var ErrTimeout = errors.New("backend: timeout")

// ErrDeviceLost is returned when the device has entered an unrecoverable
// error state (the Vulkan analogue of VK_ERROR_DEVICE_LOST).
var ErrDeviceLost = errors.New("backend: device lost")

// ErrSurfaceLost is returned by Surface.Capabilities and
// Device.CreateSwapchain when the underlying presentation surface has been
// destroyed (e.g. the window closed) and cannot be recovered by recreating
// the swapchain alone.
var ErrSurfaceLost = errors.New("backend: surface lost")

package stack

import (
	"errors"
	"fmt"
)

// Location reports where a Handle's backing storage lives.
type Location int

const (
	LocationStack Location = iota
	LocationHeap
)

func (l Location) String() string {
	if l == LocationStack {
		return "Stack"
	}
	return "Heap"
}

// ErrInvalidSize is returned by RequestHandle when capacity is zero or
// negative.
var ErrInvalidSize = errors.New("stack: invalid allocation size")

// Handle is a stack-or-heap sum type: a uniform push/clear/iterate
// interface over a value backed either by a BoundedArray (Stack) or a
// plain growable slice (Heap), chosen once at construction by
// RequestHandle's fallback policy. Exactly one of the two backings is
// non-nil, selected by Location.
type Handle[T any] struct {
	location Location
	stack    *BoundedArray[T]
	heap     []T

	name   string
	nodeID uint32
}

// newStackHandle builds a Handle backed by a BoundedArray of the given
// capacity, and records the allocation with tracker.
func newStackHandle[T any](name string, nodeID uint32, capacity int, tracker *Tracker, elemBytes uint64) *Handle[T] {
	h := &Handle[T]{
		location: LocationStack,
		stack:    NewBoundedArray[T](capacity),
		name:     name,
		nodeID:   nodeID,
	}
	if tracker != nil {
		hash := resourceHash(name, nodeID)
		tracker.TrackAllocation(hash, elemBytes*uint64(capacity), nodeID)
	}
	return h
}

// newHeapHandle builds a Handle backed by a plain slice reserved to
// capacity, used when the stack budget for this frame is already
// exhausted.
func newHeapHandle[T any](name string, nodeID uint32, capacity int) *Handle[T] {
	return &Handle[T]{
		location: LocationHeap,
		heap:     make([]T, 0, capacity),
		name:     name,
		nodeID:   nodeID,
	}
}

func resourceHash(name string, nodeID uint32) uint64 {
	h := uint64(14695981039346656037)
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= 1099511628211
	}
	return h ^ (uint64(nodeID) * 1099511628211)
}

// RequestHandle implements the fallback allocation policy: if tracker's
// current frame usage plus this request's bytes would stay at or below
// MaxPerFrame, the handle is stack-backed and the allocation is tracked;
// otherwise it silently falls back to a heap-backed handle. Returns
// ErrInvalidSize if capacity <= 0.
func RequestHandle[T any](name string, nodeID uint32, capacity int, elemBytes uint64, tracker *Tracker) (*Handle[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("stack: %s: %w", name, ErrInvalidSize)
	}
	requestBytes := elemBytes * uint64(capacity)
	if tracker != nil {
		current := tracker.CurrentFrameUsage().TotalStackUsed
		if current+requestBytes <= MaxPerFrame {
			return newStackHandle[T](name, nodeID, capacity, tracker, elemBytes), nil
		}
	}
	return newHeapHandle[T](name, nodeID, capacity), nil
}

// IsStack reports whether this handle is stack-backed.
func (h *Handle[T]) IsStack() bool { return h.location == LocationStack }

// IsHeap reports whether this handle is heap-backed.
func (h *Handle[T]) IsHeap() bool { return h.location == LocationHeap }

// GetLocation returns where this handle's storage lives.
func (h *Handle[T]) GetLocation() Location { return h.location }

// Add appends value to the backing storage. For a stack-backed handle
// this can return ErrCapacityExceeded; a heap-backed handle never fails.
func (h *Handle[T]) Add(value T) error {
	if h.IsStack() {
		return h.stack.Add(value)
	}
	h.heap = append(h.heap, value)
	return nil
}

// Clear empties the backing storage without changing its capacity.
func (h *Handle[T]) Clear() {
	if h.IsStack() {
		h.stack.Clear()
		return
	}
	h.heap = h.heap[:0]
}

// Len returns the number of elements currently held.
func (h *Handle[T]) Len() int {
	if h.IsStack() {
		return h.stack.Len()
	}
	return len(h.heap)
}

// At returns the element at index, or ok=false if out of range.
func (h *Handle[T]) At(index int) (value T, ok bool) {
	if h.IsStack() {
		return h.stack.At(index)
	}
	if index < 0 || index >= len(h.heap) {
		return value, false
	}
	return h.heap[index], true
}

// ForEach calls fn for every held element, in order.
func (h *Handle[T]) ForEach(fn func(T)) {
	if h.IsStack() {
		h.stack.ForEach(fn)
		return
	}
	for _, v := range h.heap {
		fn(v)
	}
}

// Name returns the handle's debug name.
func (h *Handle[T]) Name() string { return h.name }

// NodeID returns the node that requested this handle.
func (h *Handle[T]) NodeID() uint32 { return h.nodeID }

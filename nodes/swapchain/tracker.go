package swapchain

// CommandBufferTracker implements the command-buffer dirty/ready discipline:
// one dirty flag and one last-seen generation per swapchain image. A
// renderable node that owns per-image command buffers consults Dirty before
// Execute decides whether to re-record or replay, and calls Record once it
// has finished re-recording.
//
// The three events that must set a dirty flag — a Dependency-role input
// changing identity, a producer's generation advancing past the last-seen
// value, and the swapchain being recreated — map onto CheckIdentity,
// CheckDependency, and MarkAllDirty respectively.
type CommandBufferTracker struct {
	dirty   []bool
	lastGen []uint64
	lastKey []uint64
}

// NewCommandBufferTracker returns a tracker for imageCount images, every one
// starting dirty (nothing has ever been recorded).
func NewCommandBufferTracker(imageCount int) *CommandBufferTracker {
	t := &CommandBufferTracker{
		dirty:   make([]bool, imageCount),
		lastGen: make([]uint64, imageCount),
		lastKey: make([]uint64, imageCount),
	}
	t.MarkAllDirty()
	return t
}

// Resize grows or shrinks the tracker to imageCount, preserving state for
// images that survive and marking any newly-added image dirty. Called after
// a swapchain recreation changes image_count.
func (t *CommandBufferTracker) Resize(imageCount int) {
	dirty := make([]bool, imageCount)
	gen := make([]uint64, imageCount)
	key := make([]uint64, imageCount)
	copy(dirty, t.dirty)
	copy(gen, t.lastGen)
	copy(key, t.lastKey)
	for i := len(t.dirty); i < imageCount; i++ {
		dirty[i] = true
	}
	t.dirty, t.lastGen, t.lastKey = dirty, gen, key
}

// MarkAllDirty sets every image's dirty flag, e.g. because the swapchain was
// just recreated and every pre-recorded command buffer references a
// destroyed image/view.
func (t *CommandBufferTracker) MarkAllDirty() {
	for i := range t.dirty {
		t.dirty[i] = true
	}
}

// CheckDependency marks imageIndex dirty if gen is newer than the
// generation last baked into that image's recording.
func (t *CommandBufferTracker) CheckDependency(imageIndex int, gen uint64) {
	if imageIndex < 0 || imageIndex >= len(t.dirty) {
		return
	}
	if gen > t.lastGen[imageIndex] {
		t.dirty[imageIndex] = true
	}
}

// CheckIdentity marks imageIndex dirty if key (a resource.Key.Hash() or
// equivalent stable identity) differs from the identity last baked into
// that image's recording — a Dependency-role input was rewired to a
// different resource entirely, not just advanced in place.
func (t *CommandBufferTracker) CheckIdentity(imageIndex int, key uint64) {
	if imageIndex < 0 || imageIndex >= len(t.dirty) {
		return
	}
	if key != t.lastKey[imageIndex] {
		t.dirty[imageIndex] = true
	}
}

// Dirty reports whether imageIndex needs re-recording before its next use.
func (t *CommandBufferTracker) Dirty(imageIndex int) bool {
	if imageIndex < 0 || imageIndex >= len(t.dirty) {
		return false
	}
	return t.dirty[imageIndex]
}

// Record clears imageIndex's dirty flag and remembers gen/key as what is now
// baked into its command buffer. Call this immediately after re-recording.
func (t *CommandBufferTracker) Record(imageIndex int, gen, key uint64) {
	if imageIndex < 0 || imageIndex >= len(t.dirty) {
		return
	}
	t.dirty[imageIndex] = false
	t.lastGen[imageIndex] = gen
	t.lastKey[imageIndex] = key
}

// ImageCount returns how many images this tracker currently covers.
func (t *CommandBufferTracker) ImageCount() int { return len(t.dirty) }

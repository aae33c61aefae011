package framesync_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/backend/noop"
	"github.com/gogpu/rendergraph/node"
	"github.com/gogpu/rendergraph/nodes/framesync"
	"github.com/gogpu/rendergraph/resource"
)

func setupCompiledInstance(t *testing.T, maxFramesInFlight, maxSwapchainImages int64) (*node.Instance, *node.Context, *node.ExecuteContext) {
	t.Helper()
	typ := framesync.NewType(framesync.TypeID)
	inst := typ.NewInstance("framesync0")
	inst.SetLogger(zap.NewNop())
	inst.SetParam(framesync.ParamMaxFramesInFlight, node.IntParam(maxFramesInFlight))
	inst.SetParam(framesync.ParamMaxSwapchainImages, node.IntParam(maxSwapchainImages))

	dev := noop.NewDevice(0)
	ctx := &node.Context{Logger: inst.Logger(), Device: dev}
	if err := inst.Setup(ctx); err != nil {
		t.Fatalf("unexpected setup error: %v", err)
	}
	if err := inst.Compile(ctx); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	cmd, _ := dev.CreateCommandBuffer()
	ectx := &node.ExecuteContext{Context: *ctx, FrameIndex: 0, CommandBuffer: cmd}
	return inst, ctx, ectx
}

// TestFrameSyncRingBuffer is the literal end-to-end scenario from the
// testable-properties section: with MAX_FRAMES_IN_FLIGHT = 2, three Execute
// calls observe the current_frame_index sequence 1, 0, 1.
func TestFrameSyncRingBuffer(t *testing.T) {
	inst, ctx, ectx := setupCompiledInstance(t, 2, 3)

	var observed []uint32
	for i := 0; i < 3; i++ {
		if err := inst.Execute(ectx); err != nil {
			t.Fatalf("unexpected execute error at iteration %d: %v", i, err)
		}
		out := inst.Output(framesync.OutCurrentFrameIndex, 0)
		h, ok := resource.As[uint32](out)
		if !ok {
			t.Fatal("expected current_frame_index output to resolve to *resource.Handle[uint32]")
		}
		v, err := h.Value()
		if err != nil {
			t.Fatalf("unexpected error reading current_frame_index: %v", err)
		}
		observed = append(observed, v)
	}

	want := []uint32{1, 0, 1}
	for i, w := range want {
		if observed[i] != w {
			t.Fatalf("frame index sequence: want %v, got %v", want, observed)
		}
	}

	if err := inst.Cleanup(ctx); err != nil {
		t.Fatalf("unexpected cleanup error: %v", err)
	}
}

func TestFrameSyncPublishesRingArrays(t *testing.T) {
	inst, _, _ := setupCompiledInstance(t, 2, 3)

	for i := 0; i < 2; i++ {
		if inst.Output(framesync.OutImageAvailableSemaphores, i) == nil {
			t.Fatalf("expected image_available_semaphores[%d] to be bound", i)
		}
	}
	for i := 0; i < 3; i++ {
		if inst.Output(framesync.OutRenderCompleteSemaphores, i) == nil {
			t.Fatalf("expected render_complete_semaphores[%d] to be bound", i)
		}
		if inst.Output(framesync.OutPresentFences, i) == nil {
			t.Fatalf("expected present_fences[%d] to be bound", i)
		}
	}
}

func TestFrameSyncInFlightFenceIsResetEachFrame(t *testing.T) {
	inst, _, ectx := setupCompiledInstance(t, 2, 3)

	if err := inst.Execute(ectx); err != nil {
		t.Fatalf("unexpected execute error: %v", err)
	}
	out := inst.Output(framesync.OutInFlightFence, 0)
	h, ok := resource.As[backend.Fence](out)
	if !ok {
		t.Fatal("expected in_flight_fence output to resolve")
	}
	fence, err := h.Value()
	if err != nil {
		t.Fatalf("unexpected error reading in_flight_fence: %v", err)
	}
	signaled, err := fence.Signaled()
	if err != nil {
		t.Fatalf("unexpected error querying fence: %v", err)
	}
	if signaled {
		t.Fatal("expected fence to be reset (unsignaled) after Execute")
	}
}

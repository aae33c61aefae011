package stack_test

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/stack"
)

func TestBoundedArrayAddRespectsCapacity(t *testing.T) {
	a := stack.NewBoundedArray[int](2)
	if err := a.Add(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Add(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Add(3); !errors.Is(err, stack.ErrCapacityExceeded) {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}
	if a.Len() != 2 {
		t.Fatalf("want len 2, got %d", a.Len())
	}
}

func TestBoundedArrayPopAndClear(t *testing.T) {
	a := stack.NewBoundedArray[string](4)
	_ = a.Add("a")
	_ = a.Add("b")

	v, ok := a.Pop()
	if !ok || v != "b" {
		t.Fatalf("want b, got %q ok=%v", v, ok)
	}
	a.Clear()
	if !a.Empty() {
		t.Fatal("expected array to be empty after Clear")
	}
}

func TestTrackerThresholds(t *testing.T) {
	tr := stack.NewTracker()
	tr.BeginFrame(1)
	tr.TrackAllocation(1, stack.WarningThreshold+1, 0)

	if !tr.IsOverWarningThreshold() {
		t.Fatal("expected warning threshold to be crossed")
	}
	if tr.IsOverCriticalThreshold() {
		t.Fatal("did not expect critical threshold to be crossed")
	}
	tr.EndFrame()

	history := tr.History()
	if len(history) != 1 || history[0].FrameNumber != 1 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestTrackerHistoryRollingWindow(t *testing.T) {
	// Exercises the tracker's own bounded ring buffer of frame history,
	// the same fixed-window discipline the frame-sync node applies to its
	// fence/semaphore arrays.
	tr := stack.NewTracker()
	for i := uint64(1); i <= 305; i++ {
		tr.BeginFrame(i)
		tr.TrackAllocation(i, 1024, 0)
		tr.EndFrame()
	}

	history := tr.History()
	if len(history) != 300 {
		t.Fatalf("want history capped at 300 frames, got %d", len(history))
	}
	if history[0].FrameNumber != 6 {
		t.Fatalf("want oldest retained frame to be 6, got %d", history[0].FrameNumber)
	}
}

func TestRequestHandleFallsBackToHeapWhenStackBudgetExhausted(t *testing.T) {
	tr := stack.NewTracker()
	tr.BeginFrame(1)
	tr.TrackAllocation(1, stack.MaxPerFrame, 0) // exhaust the frame's stack budget

	h, err := stack.RequestHandle[int]("writes", 7, 32, 8, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.IsHeap() {
		t.Fatalf("want heap fallback once budget is exhausted, got %s", h.GetLocation())
	}
}

func TestRequestHandleUsesStackWhenBudgetAvailable(t *testing.T) {
	tr := stack.NewTracker()
	tr.BeginFrame(1)

	h, err := stack.RequestHandle[int]("writes", 7, 32, 8, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.IsStack() {
		t.Fatalf("want stack allocation, got %s", h.GetLocation())
	}
	_ = h.Add(42)
	if h.Len() != 1 {
		t.Fatalf("want len 1, got %d", h.Len())
	}
}

func TestRequestHandleRejectsInvalidSize(t *testing.T) {
	_, err := stack.RequestHandle[int]("writes", 0, 0, 8, nil)
	if !errors.Is(err, stack.ErrInvalidSize) {
		t.Fatalf("want ErrInvalidSize, got %v", err)
	}
}

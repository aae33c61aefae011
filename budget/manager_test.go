package budget_test

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/budget"
)

func TestBudgetStrictFailure(t *testing.T) {
	m := budget.NewManager()
	m.SetBudget("DeviceMemory", budget.Budget{MaxBytes: 1024, Strict: true})

	if err := m.TryAllocate("DeviceMemory", 512); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordAllocation("DeviceMemory", 512)

	err := m.TryAllocate("DeviceMemory", 600)
	var exceeded *budget.ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("want ExceededError, got %v", err)
	}
}

func TestSoftBudgetAllowsOverage(t *testing.T) {
	m := budget.NewManager()
	m.SetBudget("HostMemory", budget.Budget{MaxBytes: 100, Strict: false})

	m.RecordAllocation("HostMemory", 150)
	if err := m.TryAllocate("HostMemory", 50); err != nil {
		t.Fatalf("soft budget must not reject: %v", err)
	}
	if !m.IsOverBudget("HostMemory") {
		t.Fatal("expected IsOverBudget to report true")
	}
}

func TestWarningThreshold(t *testing.T) {
	m := budget.NewManager()
	m.SetBudget("DeviceMemory", budget.Budget{MaxBytes: 1000, WarningThreshold: 800})

	m.RecordAllocation("DeviceMemory", 700)
	if m.IsNearWarningThreshold("DeviceMemory") {
		t.Fatal("expected not near warning yet")
	}
	m.RecordAllocation("DeviceMemory", 200)
	if !m.IsNearWarningThreshold("DeviceMemory") {
		t.Fatal("expected near warning after crossing threshold")
	}
}

func TestRecordDeallocationReducesUsage(t *testing.T) {
	m := budget.NewManager()
	m.RecordAllocation("Descriptors", 300)
	m.RecordDeallocation("Descriptors", 100)

	u := m.GetUsage("Descriptors")
	if u.CurrentBytes != 200 {
		t.Fatalf("want 200, got %d", u.CurrentBytes)
	}
	if u.AllocationCount != 0 {
		t.Fatalf("want allocation count to fall back to 0, got %d", u.AllocationCount)
	}
}

func TestPeakBytesTracksMaximum(t *testing.T) {
	m := budget.NewManager()
	m.RecordAllocation("DeviceMemory", 500)
	m.RecordDeallocation("DeviceMemory", 500)
	m.RecordAllocation("DeviceMemory", 100)

	u := m.GetUsage("DeviceMemory")
	if u.PeakBytes != 500 {
		t.Fatalf("want peak of 500 retained, got %d", u.PeakBytes)
	}
}

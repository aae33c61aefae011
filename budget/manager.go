// Package budget tracks and enforces per-resource-type memory limits:
// soft budgets that only emit a warning, and strict budgets that reject an
// allocation outright. Manager satisfies resource.BudgetSink, so every
// resource.Handle[T] can report its allocations here without resource
// importing this package.
package budget

import (
	"fmt"
	"sync"
)

// Budget configures the limit enforced for one resource type. MaxBytes
// zero means unlimited; WarningThreshold zero disables the warning check.
type Budget struct {
	MaxBytes         uint64
	WarningThreshold uint64
	Strict           bool
}

// Usage is a point-in-time snapshot of a resource type's accounted memory.
type Usage struct {
	CurrentBytes    uint64
	PeakBytes       uint64
	AllocationCount uint32
}

// ExceededError is returned by TryAllocate when a Strict budget would be
// exceeded by the requested allocation.
type ExceededError struct {
	ResourceType       string
	RequestedBytes     uint64
	CurrentBytes       uint64
	MaxBytes           uint64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget: %s: allocating %d bytes would exceed budget (current=%d, max=%d)",
		e.ResourceType, e.RequestedBytes, e.CurrentBytes, e.MaxBytes)
}

// Manager tracks usage against configured budgets, keyed by resource-type
// string ("DeviceMemory", "HostMemory", "CommandBuffers", "Descriptors",
// or any caller-defined tag).
type Manager struct {
	mu      sync.Mutex
	budgets map[string]Budget
	usage   map[string]Usage
}

// NewManager returns an empty Manager with no configured budgets (every
// resource type is implicitly unlimited until SetBudget is called).
func NewManager() *Manager {
	return &Manager{
		budgets: make(map[string]Budget),
		usage:   make(map[string]Usage),
	}
}

// SetBudget installs or replaces the budget for resourceType.
func (m *Manager) SetBudget(resourceType string, b Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[resourceType] = b
}

// GetBudget returns the configured budget for resourceType, if any.
func (m *Manager) GetBudget(resourceType string) (Budget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[resourceType]
	return b, ok
}

// TryAllocate reports whether bytes can be allocated against resourceType
// without violating a Strict budget, returning an *ExceededError if not.
// It does not itself record the allocation — call RecordAllocation after a
// successful TryAllocate, the same two-step the teacher's hal.Device
// allocation paths use (check, then commit).
func (m *Manager) TryAllocate(resourceType string, bytes uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, hasBudget := m.budgets[resourceType]
	if !hasBudget || b.MaxBytes == 0 {
		return nil
	}
	u := m.usage[resourceType]
	if b.Strict && u.CurrentBytes+bytes > b.MaxBytes {
		return &ExceededError{
			ResourceType:   resourceType,
			RequestedBytes: bytes,
			CurrentBytes:   u.CurrentBytes,
			MaxBytes:       b.MaxBytes,
		}
	}
	return nil
}

// RecordAllocation accounts bytes against resourceType, updating current
// and peak usage and the allocation count. It satisfies
// resource.BudgetSink.
func (m *Manager) RecordAllocation(resourceType string, bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.usage[resourceType]
	u.CurrentBytes += bytes
	u.AllocationCount++
	if u.CurrentBytes > u.PeakBytes {
		u.PeakBytes = u.CurrentBytes
	}
	m.usage[resourceType] = u
}

// RecordDeallocation reverses a prior RecordAllocation of bytes against
// resourceType. It satisfies resource.BudgetSink.
func (m *Manager) RecordDeallocation(resourceType string, bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.usage[resourceType]
	if bytes > u.CurrentBytes {
		u.CurrentBytes = 0
	} else {
		u.CurrentBytes -= bytes
	}
	if u.AllocationCount > 0 {
		u.AllocationCount--
	}
	m.usage[resourceType] = u
}

// GetUsage returns the current usage snapshot for resourceType.
func (m *Manager) GetUsage(resourceType string) Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage[resourceType]
}

// IsOverBudget reports whether resourceType's current usage exceeds its
// configured MaxBytes (no effect if unbudgeted).
func (m *Manager) IsOverBudget(resourceType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[resourceType]
	if !ok || b.MaxBytes == 0 {
		return false
	}
	return m.usage[resourceType].CurrentBytes > b.MaxBytes
}

// IsNearWarningThreshold reports whether resourceType's current usage has
// reached its configured WarningThreshold.
func (m *Manager) IsNearWarningThreshold(resourceType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[resourceType]
	if !ok || b.WarningThreshold == 0 {
		return false
	}
	return m.usage[resourceType].CurrentBytes >= b.WarningThreshold
}

// ResourceTypes returns every resource type with a configured budget or
// recorded usage, in no particular order. rgmetrics uses this to discover
// what to export without hard-coding the tag set.
func (m *Manager) ResourceTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{}, len(m.budgets)+len(m.usage))
	for t := range m.budgets {
		seen[t] = struct{}{}
	}
	for t := range m.usage {
		seen[t] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	return out
}

// Reset clears every configured budget and usage record.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets = make(map[string]Budget)
	m.usage = make(map[string]Usage)
}

// ResetUsage zeroes the usage record for resourceType without touching its
// configured budget.
func (m *Manager) ResetUsage(resourceType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.usage, resourceType)
}

package node

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/resource"
	"github.com/gogpu/rendergraph/types"
)

// InstanceState tracks where an Instance sits in the Setup -> Compile ->
// Execute -> Cleanup lifecycle.
type InstanceState int

const (
	Created InstanceState = iota
	StateReady
	Compiled
	Executing
	Complete
	StateError
)

func (s InstanceState) String() string {
	switch s {
	case Created:
		return "Created"
	case StateReady:
		return "Ready"
	case Compiled:
		return "Compiled"
	case Executing:
		return "Executing"
	case Complete:
		return "Complete"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Stats accumulates per-instance timing and call counts, surfaced by the
// profiler.
type Stats struct {
	LastCompileDuration time.Duration
	LastExecuteDuration time.Duration
	ExecuteCount        uint64
	CompileCount        uint64
}

// LifecycleImpl is the virtual-dispatch seam every concrete node type
// implements. Instance handles state bookkeeping, logging, and slot
// storage; LifecycleImpl holds only the node-type-specific behavior.
type LifecycleImpl interface {
	SetupImpl(ctx *Context) error
	CompileImpl(ctx *Context) error
	ExecuteImpl(ctx *ExecuteContext) error
	CleanupImpl(ctx *Context) error
}

// Instance is a single instantiation of a node Type within a graph. It owns
// its bound input/output slots, its configuration params, and delegates
// lifecycle behavior to a LifecycleImpl supplied by the concrete node-type
// package (nodes/framesync, nodes/swapchain, ...).
type Instance struct {
	name string
	typ  *Type
	impl LifecycleImpl

	state     InstanceState
	execOrder int
	logger    *zap.Logger

	inputs  [][]resource.Resource
	outputs [][]resource.Resource
	params  map[string]Param

	stats Stats

	// lastDepGen caches, per dependency-role input slot, the generation
	// observed at the instance's last successful Compile. Graph.Compile
	// compares this against the producer's current generation to decide
	// whether to re-run this instance's Compile; Execute does not check it.
	lastDepGen map[int]uint64
}

// NewInstance allocates an Instance for typ, sized for its schema's slots,
// with impl installed as the lifecycle delegate.
func NewInstance(name string, typ *Type, impl LifecycleImpl) *Instance {
	inputs := make([][]resource.Resource, len(typ.InputSchema))
	for i, s := range typ.InputSchema {
		size := 1
		if s.ArrayMode != types.Single {
			size = 0
		}
		inputs[i] = make([]resource.Resource, size)
	}
	outputs := make([][]resource.Resource, len(typ.OutputSchema))
	for i, s := range typ.OutputSchema {
		size := 1
		if s.ArrayMode != types.Single {
			size = 0
		}
		outputs[i] = make([]resource.Resource, size)
	}
	return &Instance{
		name:       name,
		typ:        typ,
		impl:       impl,
		state:      Created,
		inputs:     inputs,
		outputs:    outputs,
		params:     make(map[string]Param),
		lastDepGen: make(map[int]uint64),
	}
}

func (n *Instance) Name() string        { return n.name }
func (n *Instance) Type() *Type         { return n.typ }
func (n *Instance) State() InstanceState { return n.state }
func (n *Instance) Stats() Stats        { return n.stats }

func (n *Instance) ExecutionOrder() int       { return n.execOrder }
func (n *Instance) SetExecutionOrder(o int)   { n.execOrder = o }

func (n *Instance) Logger() *zap.Logger { return n.logger }

// Impl returns the concrete LifecycleImpl backing this instance. Graph and
// node-package-internal code never needs this; it exists for tests and
// diagnostics that must recover node-type-specific state (e.g. a
// swapchain's image count) that the generic Instance API does not expose.
func (n *Instance) Impl() LifecycleImpl { return n.impl }

// SetLogger installs the instance's scoped logger. Called once by the graph
// during AddNode, named after the owning root logger the same way the
// teacher's hal package scopes loggers per backend via zap's Named.
func (n *Instance) SetLogger(l *zap.Logger) {
	n.logger = l.Named(n.name)
}

// SetParam stores a configuration value under key, overwriting any prior
// value.
func (n *Instance) SetParam(key string, p Param) {
	n.params[key] = p
}

// Param returns the configuration value stored under key.
func (n *Instance) Param(key string) (Param, bool) {
	p, ok := n.params[key]
	return p, ok
}

// SetInput binds a resource to an input slot. arrayIndex is 0 for
// Single-mode slots; for Array/Variadic slots it grows the backing slice
// as needed.
func (n *Instance) SetInput(slotIndex, arrayIndex int, r resource.Resource) error {
	return setSlot(&n.inputs, n.typ.InputSchema, slotIndex, arrayIndex, r)
}

// SetOutput binds a resource to an output slot, by the same rules as
// SetInput.
func (n *Instance) SetOutput(slotIndex, arrayIndex int, r resource.Resource) error {
	return setSlot(&n.outputs, n.typ.OutputSchema, slotIndex, arrayIndex, r)
}

func setSlot(slots *[][]resource.Resource, schema []SlotSchema, slotIndex, arrayIndex int, r resource.Resource) error {
	if slotIndex < 0 || slotIndex >= len(schema) {
		return fmt.Errorf("node: slot index %d out of range", slotIndex)
	}
	s := schema[slotIndex]
	bucket := (*slots)[slotIndex]
	if s.ArrayMode == types.Single {
		if arrayIndex != 0 {
			return fmt.Errorf("node: slot %q is Single, got array index %d", s.Name, arrayIndex)
		}
		if len(bucket) == 0 {
			bucket = make([]resource.Resource, 1)
		}
		bucket[0] = r
		(*slots)[slotIndex] = bucket
		return nil
	}
	for len(bucket) <= arrayIndex {
		bucket = append(bucket, nil)
	}
	bucket[arrayIndex] = r
	(*slots)[slotIndex] = bucket
	return nil
}

// Input returns the resource bound at slotIndex/arrayIndex, or nil if
// unbound.
func (n *Instance) Input(slotIndex, arrayIndex int) resource.Resource {
	return getSlot(n.inputs, slotIndex, arrayIndex)
}

// Output returns the resource bound at slotIndex/arrayIndex, or nil if
// unbound.
func (n *Instance) Output(slotIndex, arrayIndex int) resource.Resource {
	return getSlot(n.outputs, slotIndex, arrayIndex)
}

// InputSlot returns every resource bound to an Array/Variadic input slot.
func (n *Instance) InputSlot(slotIndex int) []resource.Resource {
	if slotIndex < 0 || slotIndex >= len(n.inputs) {
		return nil
	}
	return n.inputs[slotIndex]
}

func getSlot(slots [][]resource.Resource, slotIndex, arrayIndex int) resource.Resource {
	if slotIndex < 0 || slotIndex >= len(slots) {
		return nil
	}
	bucket := slots[slotIndex]
	if arrayIndex < 0 || arrayIndex >= len(bucket) {
		return nil
	}
	return bucket[arrayIndex]
}

// CachedDependencyGeneration returns the producer generation this instance
// observed for inputSlot at its last Compile.
func (n *Instance) CachedDependencyGeneration(inputSlot int) uint64 {
	return n.lastDepGen[inputSlot]
}

// SetCachedDependencyGeneration records the producer generation observed
// for inputSlot as of the compile currently running.
func (n *Instance) SetCachedDependencyGeneration(inputSlot int, gen uint64) {
	n.lastDepGen[inputSlot] = gen
}

// Setup runs once: the first transition out of Created. Subsequent calls
// are no-ops, matching the spec's "Setup runs exactly once per instance"
// invariant.
func (n *Instance) Setup(ctx *Context) error {
	if n.state != Created {
		return nil
	}
	if err := n.impl.SetupImpl(ctx); err != nil {
		n.state = StateError
		return fmt.Errorf("node %q: setup: %w", n.name, err)
	}
	n.state = StateReady
	return nil
}

// Compile runs the node's compile-time work: resource declaration,
// pipeline/descriptor creation. The graph decides when a re-run is
// necessary (first compile, or an Outdated dependency) and calls Compile
// again in that case.
func (n *Instance) Compile(ctx *Context) error {
	t0 := time.Now()
	if err := n.impl.CompileImpl(ctx); err != nil {
		n.state = StateError
		return fmt.Errorf("node %q: compile: %w", n.name, err)
	}
	n.stats.LastCompileDuration = time.Since(t0)
	n.stats.CompileCount++
	n.state = Compiled
	return nil
}

// Execute runs the node's per-frame work.
func (n *Instance) Execute(ctx *ExecuteContext) error {
	n.state = Executing
	t0 := time.Now()
	if err := n.impl.ExecuteImpl(ctx); err != nil {
		n.state = StateError
		return fmt.Errorf("node %q: execute: %w", n.name, err)
	}
	n.stats.LastExecuteDuration = time.Since(t0)
	n.stats.ExecuteCount++
	n.state = Complete
	return nil
}

// Cleanup releases the node's resources regardless of current state.
func (n *Instance) Cleanup(ctx *Context) error {
	if err := n.impl.CleanupImpl(ctx); err != nil {
		return fmt.Errorf("node %q: cleanup: %w", n.name, err)
	}
	return nil
}

// Validate reports ErrMissingRequiredInput if any Required input slot has
// no bound resource. Optional slots are not checked.
func (n *Instance) Validate() error {
	for i, s := range n.typ.InputSchema {
		bucket := n.inputs[i]
		bound := false
		for _, r := range bucket {
			if r != nil {
				bound = true
				break
			}
		}
		if !bound && s.Nullability == types.Required {
			return fmt.Errorf("node %q: input %q: %w", n.name, s.Name, ErrMissingRequiredInput)
		}
	}
	return nil
}

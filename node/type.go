package node

import "github.com/gogpu/rendergraph/types"

// SlotSchema describes one named input or output slot on a node Type: its
// wire data type, nullability, recompile role, mutability, visibility
// scope, and whether it accepts a single value or an array/variadic run.
type SlotSchema struct {
	Name        string
	DataType    types.DataType
	Nullability types.SlotNullability
	Role        types.SlotRole
	Mutability  types.SlotMutability
	Scope       types.SlotScope
	ArrayMode   types.SlotArrayMode
}

// Factory constructs a fresh Instance of a node Type under the given
// instance name. Factories are registered once per process and invoked by
// Registry.CreateInstance for every node a graph assembles.
type Factory func(instanceName string) *Instance

// Type is a node-type schema: a stable numeric identity, its input/output
// slot contracts, the pipeline it targets, the device capabilities it
// requires, an estimated workload, and the factory that builds instances of
// it. Type is the compile-time contract a graph validates wiring against
// before any instance runs.
type Type struct {
	TypeID       uint32
	TypeName     string
	InputSchema  []SlotSchema
	OutputSchema []SlotSchema
	PipelineType types.PipelineType
	Capabilities types.DeviceCapability
	Workload     types.WorkloadMetrics
	NewInstance  Factory
}

// InputIndex returns the slot index of the named input, or false if no
// input slot carries that name.
func (t *Type) InputIndex(name string) (int, bool) {
	for i, s := range t.InputSchema {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// OutputIndex returns the slot index of the named output, or false if no
// output slot carries that name.
func (t *Type) OutputIndex(name string) (int, bool) {
	for i, s := range t.OutputSchema {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

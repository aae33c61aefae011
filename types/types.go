// Package types holds the plain value types shared across the render graph
// runtime: pipeline kinds, device capability flags, workload metrics, and
// the slot-schema enumerations used to describe node inputs and outputs.
package types

// PipelineType identifies which GPU pipeline a node type targets.
type PipelineType int

const (
	PipelineGraphics PipelineType = iota
	PipelineCompute
	PipelineRayTracing
	PipelineTransfer
)

func (p PipelineType) String() string {
	switch p {
	case PipelineGraphics:
		return "Graphics"
	case PipelineCompute:
		return "Compute"
	case PipelineRayTracing:
		return "RayTracing"
	case PipelineTransfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// DeviceCapability is a bitset of backend features a node type requires.
type DeviceCapability uint32

const (
	CapNone DeviceCapability = 0

	CapGraphics            DeviceCapability = 1 << 0
	CapCompute             DeviceCapability = 1 << 1
	CapTransfer            DeviceCapability = 1 << 2
	CapRayTracing          DeviceCapability = 1 << 3
	CapGeometryShader      DeviceCapability = 1 << 4
	CapTessellationShader  DeviceCapability = 1 << 5
	CapMeshShader          DeviceCapability = 1 << 6
	CapMultiDrawIndirect   DeviceCapability = 1 << 7
	CapDepthClamp          DeviceCapability = 1 << 8
	CapFillModeNonSolid    DeviceCapability = 1 << 9
)

// Has reports whether all bits of check are present in flags.
func (flags DeviceCapability) Has(check DeviceCapability) bool {
	return flags&check == check
}

// WorkloadMetrics describes a node type's estimated resource footprint.
// The values are descriptive: nothing in this module reads them, and
// Graph.Execute runs every node sequentially.
type WorkloadMetrics struct {
	// EstimatedMemoryFootprint is the estimated peak byte footprint.
	EstimatedMemoryFootprint uint64
	// EstimatedComputeCost is relative to a simple pass (1.0 baseline).
	EstimatedComputeCost float32
	// EstimatedBandwidthCost is relative to a simple pass (1.0 baseline).
	EstimatedBandwidthCost float32
	// CanRunInParallel marks the node type as safe to run alongside
	// siblings at the same topological tier; no scheduler here acts on it.
	CanRunInParallel bool
	// PreferredBatchSize hints at instanced-operation batching.
	PreferredBatchSize uint32
}

// DefaultWorkloadMetrics returns the metrics used when a node type omits
// them: a single, non-parallel, baseline-cost node.
func DefaultWorkloadMetrics() WorkloadMetrics {
	return WorkloadMetrics{
		EstimatedComputeCost:   1.0,
		EstimatedBandwidthCost: 1.0,
		CanRunInParallel:       false,
		PreferredBatchSize:     1,
	}
}

// SlotRole classifies how a slot participates in recompilation.
type SlotRole int

const (
	// RoleDependency edges force recompilation of the consumer when the
	// producer changes (new wire, or generation advance).
	RoleDependency SlotRole = iota
	// RoleExecute edges are consumed only during Execute; changes never
	// force a recompile.
	RoleExecute
	// RoleExecuteOnly is a narrower form of RoleExecute reserved for slots
	// that a node never reads during Compile, only Execute.
	RoleExecuteOnly
)

func (r SlotRole) String() string {
	switch r {
	case RoleDependency:
		return "Dependency"
	case RoleExecute:
		return "Execute"
	case RoleExecuteOnly:
		return "ExecuteOnly"
	default:
		return "Unknown"
	}
}

// ForcesRecompile reports whether a generation change on a slot with this
// role makes Graph.Compile re-run the consumer's Compile.
func (r SlotRole) ForcesRecompile() bool {
	return r == RoleDependency
}

// SlotNullability controls whether a wiring-validation pass requires a slot
// to be connected.
type SlotNullability int

const (
	Required SlotNullability = iota
	Optional
)

// SlotMutability describes how a node is allowed to use a slot's resource.
type SlotMutability int

const (
	ReadOnly SlotMutability = iota
	ReadWrite
	WriteOnly
)

// SlotScope controls the visibility of a slot's resource.
type SlotScope int

const (
	NodeLevel SlotScope = iota
	GraphLevel
)

// SlotArrayMode describes the shape a slot accepts or produces.
type SlotArrayMode int

const (
	Single SlotArrayMode = iota
	Array
	Variadic
)

// Admits reports whether this array mode can bind a producer of the given
// shape. Single admits only Single; Array and Variadic both admit Array,
// Variadic, and Single (a lone value can always populate an array slot with
// one element).
func (m SlotArrayMode) Admits(produced SlotArrayMode) bool {
	switch m {
	case Single:
		return produced == Single
	case Array, Variadic:
		return true
	default:
		return false
	}
}

// DataType tags the wire type carried by a slot. Nodes outside this module
// define their own concrete payload types; DataType is only compared for
// equality during wiring validation, so an opaque comparable tag
// (typically a string such as "vk.Buffer" or "vk.ImageView") is sufficient
// and avoids forcing every node package to share one closed enum.
type DataType string

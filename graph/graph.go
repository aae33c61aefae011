// Package graph assembles node.Instance values into a directed acyclic
// render graph, validates wiring against each node type's slot schema,
// and drives the Setup -> Compile -> Execute -> Cleanup lifecycle in
// dependency order.
package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/node"
)

type wire struct {
	fromNode, toNode             string
	fromSlot, fromArrayIndex     int
	toSlot, toArrayIndex         int
}

// Graph owns a set of named node.Instance values and the edges wiring
// their output slots to downstream input slots.
type Graph struct {
	mu      sync.Mutex
	logger  *zap.Logger
	device  backend.Device
	surface backend.Surface

	nodes     map[string]*node.Instance
	order     []string // insertion order: Setup's order, and Cleanup's before the first Compile
	adjacency map[string][]string
	wires     []wire

	compiled  bool
	topoOrder []string
}

// New returns an empty Graph. logger is the root logger each added node is
// scoped under via Instance.SetLogger; device is handed to every node's
// Setup/Compile/Execute context.
func New(logger *zap.Logger, device backend.Device) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Graph{
		logger:    logger,
		device:    device,
		nodes:     make(map[string]*node.Instance),
		adjacency: make(map[string][]string),
	}
}

// SetSurface installs the presentation surface handed to every node's
// Context from this point on (nil for graphs with no swapchain node).
func (g *Graph) SetSurface(surface backend.Surface) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.surface = surface
}

// AddNode registers inst under name. Returns ErrDuplicateNode if name is
// already taken.
func (g *Graph) AddNode(name string, inst *node.Instance) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("graph: node %q: %w", name, ErrDuplicateNode)
	}
	inst.SetLogger(g.logger)
	g.nodes[name] = inst
	g.order = append(g.order, name)
	g.compiled = false
	return nil
}

// Node returns the instance registered under name.
func (g *Graph) Node(name string) (*node.Instance, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	return n, ok
}

// Connect wires fromNode's output slot to toNode's input slot. It validates
// the DataType tags match, the consumer's array mode can admit the
// producer's shape, and that the new edge does not create a cycle.
func (g *Graph) Connect(fromNode string, fromSlot, fromArrayIndex int, toNode string, toSlot, toArrayIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	from, ok := g.nodes[fromNode]
	if !ok {
		return fmt.Errorf("graph: %q: %w", fromNode, ErrUnknownNode)
	}
	to, ok := g.nodes[toNode]
	if !ok {
		return fmt.Errorf("graph: %q: %w", toNode, ErrUnknownNode)
	}

	fromSchema := from.Type().OutputSchema
	if fromSlot < 0 || fromSlot >= len(fromSchema) {
		return &SlotIndexError{Node: fromNode, Slot: fromSlot, Bound: len(fromSchema)}
	}
	toSchema := to.Type().InputSchema
	if toSlot < 0 || toSlot >= len(toSchema) {
		return &SlotIndexError{Node: toNode, Slot: toSlot, Bound: len(toSchema)}
	}

	producer := fromSchema[fromSlot]
	consumer := toSchema[toSlot]

	if producer.DataType != consumer.DataType {
		return &TypeMismatchError{
			FromNode: fromNode, FromSlot: producer.Name,
			ToNode: toNode, ToSlot: consumer.Name,
			Produced: string(producer.DataType), Expected: string(consumer.DataType),
		}
	}
	if !consumer.ArrayMode.Admits(producer.ArrayMode) {
		return &ArrayShapeMismatchError{
			FromNode: fromNode, FromSlot: producer.Name,
			ToNode: toNode, ToSlot: consumer.Name,
		}
	}
	if fromNode == toNode || g.reaches(toNode, fromNode) {
		return &WouldCreateCycleError{FromNode: fromNode, ToNode: toNode}
	}

	g.adjacency[fromNode] = append(g.adjacency[fromNode], toNode)
	g.wires = append(g.wires, wire{
		fromNode: fromNode, toNode: toNode,
		fromSlot: fromSlot, fromArrayIndex: fromArrayIndex,
		toSlot: toSlot, toArrayIndex: toArrayIndex,
	})
	g.compiled = false
	return nil
}

// reaches reports whether a path exists from start to target over the
// current adjacency (a plain BFS).
func (g *Graph) reaches(start, target string) bool {
	if start == target {
		return true
	}
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.adjacency[cur] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// topoSort runs Kahn's algorithm over the current node set and adjacency,
// breaking ties between simultaneously-ready nodes by (node-type id,
// instance name) ascending so that compile/execute order is deterministic
// across runs. Returns CycleDetectedError if nodes remain unprocessed.
func (g *Graph) topoSort() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		indegree[name] = 0
	}
	for _, targets := range g.adjacency {
		for _, to := range targets {
			indegree[to]++
		}
	}

	var ready []string
	for name, d := range indegree {
		if d == 0 {
			ready = append(ready, name)
		}
	}

	var out []string
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			ni, nj := g.nodes[ready[i]], g.nodes[ready[j]]
			if ni.Type().TypeID != nj.Type().TypeID {
				return ni.Type().TypeID < nj.Type().TypeID
			}
			return ready[i] < ready[j]
		})
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		for _, to := range g.adjacency[next] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(out) != len(g.nodes) {
		var remaining []string
		for name, d := range indegree {
			if d > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return nil, &CycleDetectedError{Nodes: remaining}
	}
	return out, nil
}

// Setup runs every node's one-time Setup hook. Nodes are independent at
// this stage, so failures are aggregated rather than short-circuiting.
func (g *Graph) Setup(ctx context.Context) error {
	g.mu.Lock()
	names := append([]string(nil), g.order...)
	device := g.device
	surface := g.surface
	g.mu.Unlock()

	var errs *multierror.Error
	nctx := &node.Context{Logger: g.logger, Device: device, Surface: surface}
	for _, name := range names {
		n, _ := g.Node(name)
		if err := n.Setup(nctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Compile topologically sorts the graph, propagates each edge's producer
// resource into its consumer's input slot, and recompiles any node whose
// Dependency-role input generation has advanced since its last Compile (or
// which has never compiled). Compile stops at the first node-level
// failure, since downstream nodes depend on upstream compiled state.
func (g *Graph) Compile(ctx context.Context) error {
	g.mu.Lock()
	order, err := g.topoSort()
	device := g.device
	surface := g.surface
	wires := append([]wire(nil), g.wires...)
	g.mu.Unlock()
	if err != nil {
		return err
	}

	nctx := &node.Context{Logger: g.logger, Device: device, Surface: surface}
	for _, name := range order {
		consumer, _ := g.Node(name)

		for _, w := range wires {
			if w.toNode != name {
				continue
			}
			producer, _ := g.Node(w.fromNode)
			out := producer.Output(w.fromSlot, w.fromArrayIndex)
			if err := consumer.SetInput(w.toSlot, w.toArrayIndex, out); err != nil {
				return fmt.Errorf("graph: propagating %s -> %s: %w", w.fromNode, name, err)
			}
		}

		if err := consumer.Validate(); err != nil {
			return err
		}

		if g.nodeNeedsCompile(consumer) {
			if err := consumer.Compile(nctx); err != nil {
				return err
			}
			g.cacheDependencyGenerations(consumer)
		}
	}

	g.mu.Lock()
	g.topoOrder = order
	g.compiled = true
	g.mu.Unlock()
	return nil
}

// TopoOrder returns the node names in the order established by the last
// successful Compile, or nil if the graph has never compiled.
func (g *Graph) TopoOrder() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.topoOrder...)
}

func (g *Graph) nodeNeedsCompile(n *node.Instance) bool {
	if n.State() == node.Created || n.State() == node.StateReady {
		return true
	}
	schema := n.Type().InputSchema
	for i, s := range schema {
		if !s.Role.ForcesRecompile() {
			continue
		}
		r := n.Input(i, 0)
		if r == nil {
			continue
		}
		if r.Generation() != n.CachedDependencyGeneration(i) {
			return true
		}
	}
	return false
}

func (g *Graph) cacheDependencyGenerations(n *node.Instance) {
	schema := n.Type().InputSchema
	for i, s := range schema {
		if !s.Role.ForcesRecompile() {
			continue
		}
		if r := n.Input(i, 0); r != nil {
			n.SetCachedDependencyGeneration(i, r.Generation())
		}
	}
}

// Execute runs every node's Execute hook, in the order Compile established.
// It stops at the first failure: a frame that fails partway through is not
// salvageable.
func (g *Graph) Execute(ctx context.Context, frameIndex uint64, cmd backend.CommandBuffer) error {
	g.mu.Lock()
	if !g.compiled {
		g.mu.Unlock()
		return ErrNotCompiled
	}
	order := append([]string(nil), g.topoOrder...)
	device := g.device
	surface := g.surface
	g.mu.Unlock()

	ectx := &node.ExecuteContext{
		Context:       node.Context{Logger: g.logger, Device: device, Surface: surface},
		FrameIndex:    frameIndex,
		CommandBuffer: cmd,
	}
	for _, name := range order {
		n, _ := g.Node(name)
		if err := n.Execute(ectx); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup runs every node's Cleanup hook in reverse topological order,
// aggregating failures so a single node's cleanup error does not prevent
// releasing the rest.
func (g *Graph) Cleanup(ctx context.Context) error {
	g.mu.Lock()
	order := append([]string(nil), g.topoOrder...)
	if len(order) == 0 {
		order = append([]string(nil), g.order...)
	}
	device := g.device
	surface := g.surface
	g.mu.Unlock()

	nctx := &node.Context{Logger: g.logger, Device: device, Surface: surface}
	var errs *multierror.Error
	for i := len(order) - 1; i >= 0; i-- {
		n, ok := g.Node(order[i])
		if !ok {
			continue
		}
		if err := n.Cleanup(nctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

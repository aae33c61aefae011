package graph_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/backend/noop"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/node"
	"github.com/gogpu/rendergraph/resource"
	"github.com/gogpu/rendergraph/types"
)

// producerImpl backs a node whose single output slot holds the int 1, set
// once when the instance is created; its lifecycle hooks do nothing.
type producerImpl struct {
	n int
}

func (p *producerImpl) SetupImpl(ctx *node.Context) error   { return nil }
func (p *producerImpl) CleanupImpl(ctx *node.Context) error { return nil }
func (p *producerImpl) CompileImpl(ctx *node.Context) error { return nil }
func (p *producerImpl) ExecuteImpl(ctx *node.ExecuteContext) error { return nil }

func newProducerType(id uint32, name string) *node.Type {
	impl := &producerImpl{}
	typ := &node.Type{
		TypeID:   id,
		TypeName: name,
		OutputSchema: []node.SlotSchema{
			{Name: "value", DataType: "int", ArrayMode: types.Single},
		},
	}
	typ.NewInstance = func(instName string) *node.Instance {
		inst := node.NewInstance(instName, typ, impl)
		h := resource.New[int](resource.Key{}, resource.LifetimeGraphLocal, nil)
		h.Set(1, 0, "")
		_ = inst.SetOutput(0, 0, h)
		return inst
	}
	return typ
}

type consumerImpl struct {
	compiled, executed int
}

func (c *consumerImpl) SetupImpl(ctx *node.Context) error   { return nil }
func (c *consumerImpl) CleanupImpl(ctx *node.Context) error { return nil }
func (c *consumerImpl) CompileImpl(ctx *node.Context) error { c.compiled++; return nil }
func (c *consumerImpl) ExecuteImpl(ctx *node.ExecuteContext) error {
	c.executed++
	return nil
}

func newConsumerType(id uint32, name string, impl *consumerImpl) *node.Type {
	typ := &node.Type{
		TypeID:   id,
		TypeName: name,
		InputSchema: []node.SlotSchema{
			{Name: "value", DataType: "int", Nullability: types.Required, Role: types.RoleDependency, ArrayMode: types.Single},
		},
	}
	typ.NewInstance = func(instName string) *node.Instance {
		return node.NewInstance(instName, typ, impl)
	}
	return typ
}

func TestLinearTwoNodeGraph(t *testing.T) {
	dev := noop.NewDevice(0)
	g := graph.New(zap.NewNop(), dev)

	producerType := newProducerType(1, "Producer")
	consumerImplV := &consumerImpl{}
	consumerType := newConsumerType(2, "Consumer", consumerImplV)

	producer := producerType.NewInstance("producer0")
	consumer := consumerType.NewInstance("consumer0")

	if err := g.AddNode("producer0", producer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddNode("consumer0", consumer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Connect("producer0", 0, 0, "consumer0", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := g.Setup(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Compile(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumerImplV.compiled != 1 {
		t.Fatalf("want consumer compiled once, got %d", consumerImplV.compiled)
	}

	cmd, _ := dev.CreateCommandBuffer()
	if err := g.Execute(ctx, 0, cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumerImplV.executed != 1 {
		t.Fatalf("want consumer executed once, got %d", consumerImplV.executed)
	}

	if err := g.Cleanup(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnectRejectsTypeMismatch(t *testing.T) {
	dev := noop.NewDevice(0)
	g := graph.New(zap.NewNop(), dev)

	producerType := newProducerType(1, "Producer")
	strictConsumer := &node.Type{
		TypeID:   2,
		TypeName: "StrictConsumer",
		InputSchema: []node.SlotSchema{
			{Name: "value", DataType: "string", ArrayMode: types.Single},
		},
	}
	strictConsumer.NewInstance = func(n string) *node.Instance {
		return node.NewInstance(n, strictConsumer, &consumerImpl{})
	}

	_ = g.AddNode("p", producerType.NewInstance("p"))
	_ = g.AddNode("c", strictConsumer.NewInstance("c"))

	err := g.Connect("p", 0, 0, "c", 0, 0)
	var mismatch *graph.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("want TypeMismatchError, got %v", err)
	}
}

func TestConnectRejectsCycle(t *testing.T) {
	dev := noop.NewDevice(0)
	g := graph.New(zap.NewNop(), dev)

	a := &node.Type{TypeID: 1, TypeName: "A",
		InputSchema:  []node.SlotSchema{{Name: "in", DataType: "int", ArrayMode: types.Single}},
		OutputSchema: []node.SlotSchema{{Name: "out", DataType: "int", ArrayMode: types.Single}},
	}
	a.NewInstance = func(n string) *node.Instance { return node.NewInstance(n, a, &consumerImpl{}) }
	b := &node.Type{TypeID: 2, TypeName: "B",
		InputSchema:  []node.SlotSchema{{Name: "in", DataType: "int", ArrayMode: types.Single}},
		OutputSchema: []node.SlotSchema{{Name: "out", DataType: "int", ArrayMode: types.Single}},
	}
	b.NewInstance = func(n string) *node.Instance { return node.NewInstance(n, b, &consumerImpl{}) }

	_ = g.AddNode("a", a.NewInstance("a"))
	_ = g.AddNode("b", b.NewInstance("b"))
	if err := g.Connect("a", 0, 0, "b", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := g.Connect("b", 0, 0, "a", 0, 0)
	var cyc *graph.WouldCreateCycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("want WouldCreateCycleError, got %v", err)
	}
}

func TestExecuteBeforeCompileReturnsErrNotCompiled(t *testing.T) {
	dev := noop.NewDevice(0)
	g := graph.New(zap.NewNop(), dev)
	var cmd backend.CommandBuffer
	if err := g.Execute(context.Background(), 0, cmd); !errors.Is(err, graph.ErrNotCompiled) {
		t.Fatalf("want ErrNotCompiled, got %v", err)
	}
}

func TestRecompileSkippedWhenDependencyGenerationUnchanged(t *testing.T) {
	dev := noop.NewDevice(0)
	g := graph.New(zap.NewNop(), dev)

	producerType := newProducerType(1, "Producer")
	consumerImplV := &consumerImpl{}
	consumerType := newConsumerType(2, "Consumer", consumerImplV)

	producer := producerType.NewInstance("p")
	consumer := consumerType.NewInstance("c")
	_ = g.AddNode("p", producer)
	_ = g.AddNode("c", consumer)
	_ = g.Connect("p", 0, 0, "c", 0, 0)

	ctx := context.Background()
	_ = g.Setup(ctx)
	_ = g.Compile(ctx)
	_ = g.Compile(ctx)

	if consumerImplV.compiled != 1 {
		t.Fatalf("want consumer compiled exactly once across two Compile calls, got %d", consumerImplV.compiled)
	}
}

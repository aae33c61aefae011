package node_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gogpu/rendergraph/node"
	"github.com/gogpu/rendergraph/resource"
	"github.com/gogpu/rendergraph/types"
)

type fakeImpl struct {
	setupCalls, compileCalls, executeCalls, cleanupCalls int
	failSetup                                            error
}

func (f *fakeImpl) SetupImpl(ctx *node.Context) error {
	f.setupCalls++
	return f.failSetup
}
func (f *fakeImpl) CompileImpl(ctx *node.Context) error       { f.compileCalls++; return nil }
func (f *fakeImpl) ExecuteImpl(ctx *node.ExecuteContext) error { f.executeCalls++; return nil }
func (f *fakeImpl) CleanupImpl(ctx *node.Context) error        { f.cleanupCalls++; return nil }

func testType(impl *fakeImpl) *node.Type {
	typ := &node.Type{
		TypeID:   1,
		TypeName: "Test",
		InputSchema: []node.SlotSchema{
			{Name: "in0", Nullability: types.Required, Role: types.RoleDependency, ArrayMode: types.Single},
		},
		OutputSchema: []node.SlotSchema{
			{Name: "out0", ArrayMode: types.Single},
		},
	}
	typ.NewInstance = func(name string) *node.Instance {
		return node.NewInstance(name, typ, impl)
	}
	return typ
}

func TestSetupRunsExactlyOnce(t *testing.T) {
	impl := &fakeImpl{}
	typ := testType(impl)
	inst := node.NewInstance("a", typ, impl)

	if err := inst.Setup(&node.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := inst.Setup(&node.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if impl.setupCalls != 1 {
		t.Fatalf("want SetupImpl called once, got %d", impl.setupCalls)
	}
}

func TestSetupFailureSetsErrorState(t *testing.T) {
	wantErr := errors.New("boom")
	impl := &fakeImpl{failSetup: wantErr}
	typ := testType(impl)
	inst := node.NewInstance("a", typ, impl)

	err := inst.Setup(&node.Context{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
	if inst.State() != node.StateError {
		t.Fatalf("want StateError, got %v", inst.State())
	}
}

func TestValidateReportsMissingRequiredInput(t *testing.T) {
	impl := &fakeImpl{}
	typ := testType(impl)
	inst := node.NewInstance("a", typ, impl)

	if err := inst.Validate(); !errors.Is(err, node.ErrMissingRequiredInput) {
		t.Fatalf("want ErrMissingRequiredInput, got %v", err)
	}

	h := resource.New[int](resource.Key{}, resource.LifetimeTransient, nil)
	h.Set(1, 0, "")
	if err := inst.SetInput(0, 0, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := inst.Validate(); err != nil {
		t.Fatalf("unexpected error after binding required input: %v", err)
	}
}

func TestSetOutputAndRetrieveViaAs(t *testing.T) {
	impl := &fakeImpl{}
	typ := testType(impl)
	inst := node.NewInstance("a", typ, impl)

	h := resource.New[string](resource.Key{}, resource.LifetimeGraphLocal, nil)
	h.Set("hello", 0, "")
	if err := inst.SetOutput(0, 0, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := inst.Output(0, 0)
	typed, ok := resource.As[string](got)
	if !ok {
		t.Fatal("expected resource.As to recover *Handle[string]")
	}
	v, err := typed.Value()
	if err != nil || v != "hello" {
		t.Fatalf("want hello, got %q err=%v", v, err)
	}
}

func TestRegistryDuplicateAndUnknownTypeID(t *testing.T) {
	r := node.NewRegistry()
	impl := &fakeImpl{}
	typ := testType(impl)

	if err := r.Register(typ); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(typ); !errors.Is(err, node.ErrDuplicateTypeID) {
		t.Fatalf("want ErrDuplicateTypeID, got %v", err)
	}

	if _, err := r.CreateInstance(999, "x"); !errors.Is(err, node.ErrUnknownTypeID) {
		t.Fatalf("want ErrUnknownTypeID, got %v", err)
	}

	inst, err := r.CreateInstance(1, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Name() != "a" {
		t.Fatalf("want name a, got %s", inst.Name())
	}
}

func TestSetLoggerNamesChild(t *testing.T) {
	impl := &fakeImpl{}
	typ := testType(impl)
	inst := node.NewInstance("framesync0", typ, impl)

	core, logs := observer.New(zap.DebugLevel)
	inst.SetLogger(zap.New(core))
	if inst.Logger() == nil {
		t.Fatal("expected logger to be set")
	}
	inst.Logger().Info("x")
	entries := logs.All()
	if len(entries) != 1 || entries[0].LoggerName != "framesync0" {
		t.Fatalf("want one entry from logger framesync0, got %+v", entries)
	}
}

func TestParamRoundTrip(t *testing.T) {
	impl := &fakeImpl{}
	typ := testType(impl)
	inst := node.NewInstance("a", typ, impl)

	inst.SetParam("scale", node.FloatParam(2.5))
	p, ok := inst.Param("scale")
	if !ok {
		t.Fatal("expected param to be present")
	}
	f, ok := p.Float()
	if !ok || f != 2.5 {
		t.Fatalf("want 2.5, got %v ok=%v", f, ok)
	}
}

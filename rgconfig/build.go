package rgconfig

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/budget"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/node"
)

// Build assembles a graph.Graph from s: it creates one node.Instance per
// NodeSpec via registry, binds their params, wires every WireSpec, and
// installs device/surface. It does not call Setup/Compile — the caller
// drives the lifecycle (cmd/rgctl's "run" subcommand does this after
// Build returns).
func Build(s *Scene, registry *node.Registry, logger *zap.Logger, device backend.Device, surface backend.Surface) (*graph.Graph, error) {
	g := graph.New(logger, device)
	g.SetSurface(surface)

	for _, ns := range s.Nodes {
		typ, ok := registry.LookupByName(ns.TypeName)
		if !ok {
			return nil, fmt.Errorf("rgconfig: node %q: unknown type %q", ns.Name, ns.TypeName)
		}
		inst := typ.NewInstance(ns.Name)
		for _, ps := range ns.Params {
			p, err := toParam(ps)
			if err != nil {
				return nil, fmt.Errorf("rgconfig: node %q: param %q: %w", ns.Name, ps.Name, err)
			}
			inst.SetParam(ps.Name, p)
		}
		if err := g.AddNode(ns.Name, inst); err != nil {
			return nil, fmt.Errorf("rgconfig: %w", err)
		}
	}

	for _, w := range s.Wires {
		fromInst, ok := g.Node(w.FromNode)
		if !ok {
			return nil, fmt.Errorf("rgconfig: wire %s.%s -> %s.%s: unknown node %q", w.FromNode, w.FromSlot, w.ToNode, w.ToSlot, w.FromNode)
		}
		toInst, ok := g.Node(w.ToNode)
		if !ok {
			return nil, fmt.Errorf("rgconfig: wire %s.%s -> %s.%s: unknown node %q", w.FromNode, w.FromSlot, w.ToNode, w.ToSlot, w.ToNode)
		}
		fromSlot, ok := fromInst.Type().OutputIndex(w.FromSlot)
		if !ok {
			return nil, fmt.Errorf("rgconfig: node %q has no output slot %q", w.FromNode, w.FromSlot)
		}
		toSlot, ok := toInst.Type().InputIndex(w.ToSlot)
		if !ok {
			return nil, fmt.Errorf("rgconfig: node %q has no input slot %q", w.ToNode, w.ToSlot)
		}
		if err := g.Connect(w.FromNode, fromSlot, w.FromArrayIndex, w.ToNode, toSlot, w.ToArrayIndex); err != nil {
			return nil, fmt.Errorf("rgconfig: %w", err)
		}
	}

	return g, nil
}

// BuildBudgets installs every BudgetSpec in s onto m.
func BuildBudgets(s *Scene, m *budget.Manager) {
	for _, b := range s.Budgets {
		m.SetBudget(b.ResourceType, budget.Budget{
			MaxBytes:         b.MaxBytes,
			WarningThreshold: b.WarningThreshold,
			Strict:           b.Strict,
		})
	}
}

func toParam(ps ParamSpec) (node.Param, error) {
	switch ps.Kind {
	case "int":
		return node.IntParam(ps.IntValue), nil
	case "uint":
		return node.UintParam(ps.UintValue), nil
	case "float":
		return node.FloatParam(ps.FloatValue), nil
	case "bool":
		return node.BoolParam(ps.BoolValue), nil
	case "string":
		return node.StringParam(ps.StringValue), nil
	default:
		return node.Param{}, fmt.Errorf("unknown param kind %q", ps.Kind)
	}
}

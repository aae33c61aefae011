package main

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/aliasing"
	"github.com/gogpu/rendergraph/backend"
	"github.com/gogpu/rendergraph/backend/noop"
	"github.com/gogpu/rendergraph/budget"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/node"
	"github.com/gogpu/rendergraph/nodes/framesync"
	"github.com/gogpu/rendergraph/nodes/swapchain"
	"github.com/gogpu/rendergraph/profiler"
	"github.com/gogpu/rendergraph/rgconfig"
	"github.com/gogpu/rendergraph/rglog"
)

// app bundles the objects every subcommand needs: the loaded scene, the
// assembled graph, and the supporting runtime services (budget, profiler,
// aliasing). rgctl only ever drives the noop backend: a real Vulkan device
// is an external collaborator the runtime accepts through backend.Device,
// never one this CLI links, so every run is a dry run over the no-op
// stand-in used throughout the test suite.
type app struct {
	logger   *zap.Logger
	scene    *rgconfig.Scene
	graph    *graph.Graph
	device   backend.Device
	budget   *budget.Manager
	profiler *profiler.Profiler
	aliasing *aliasing.Engine
}

func newApp(scenePath, logLevel string, jsonLogs bool) (*app, error) {
	scene, err := rgconfig.Load(scenePath)
	if err != nil {
		return nil, fmt.Errorf("rgctl: %w", err)
	}
	if logLevel != "" {
		scene.LogLevel = logLevel
	}

	logger, err := rglog.New(scene.LogLevel, jsonLogs)
	if err != nil {
		return nil, fmt.Errorf("rgctl: %w", err)
	}
	logger = logger.With(zap.String("run_id", uuid.New().String()))
	rglog.SetRoot(logger)

	registry := node.NewRegistry()
	if err := registry.Register(framesync.NewType(framesync.TypeID)); err != nil {
		return nil, fmt.Errorf("rgctl: %w", err)
	}
	if err := registry.Register(swapchain.NewType(swapchain.TypeID)); err != nil {
		return nil, fmt.Errorf("rgctl: %w", err)
	}

	device := noop.NewDevice(0)
	surface := noop.NewSurface(backend.SurfaceCapabilities{
		CurrentExtent:         backend.Extent2D{Width: 1920, Height: 1080},
		MinImageCount:         2,
		SupportedFormats:      []string{"bgra8_unorm"},
		SupportedPresentModes: []string{"fifo", "mailbox"},
	})
	g, err := rgconfig.Build(scene, registry, logger, device, surface)
	if err != nil {
		return nil, fmt.Errorf("rgctl: %w", err)
	}

	budgetMgr := budget.NewManager()
	rgconfig.BuildBudgets(scene, budgetMgr)

	return &app{
		logger:   logger,
		scene:    scene,
		graph:    g,
		device:   device,
		budget:   budgetMgr,
		profiler: profiler.New(),
		aliasing: aliasing.NewEngine(),
	}, nil
}

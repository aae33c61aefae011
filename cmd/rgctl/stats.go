package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run the scene's graph and print profiler/aliasing/budget statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(flagScenePath, flagLogLevel, flagJSONLogs)
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	ctx := context.Background()
	if err := a.graph.Setup(ctx); err != nil {
		return fmt.Errorf("rgctl: setup: %w", err)
	}
	if err := a.graph.Compile(ctx); err != nil {
		return fmt.Errorf("rgctl: compile: %w", err)
	}

	var lastFrame uint64
	for frame := uint64(0); frame < a.scene.FrameCount; frame++ {
		a.profiler.BeginFrame(frame)
		cmdBuf, err := a.device.CreateCommandBuffer()
		if err != nil {
			a.profiler.EndFrame()
			return fmt.Errorf("rgctl: frame %d: create command buffer: %w", frame, err)
		}
		if err := a.graph.Execute(ctx, frame, cmdBuf); err != nil {
			a.profiler.EndFrame()
			return fmt.Errorf("rgctl: frame %d: execute: %w", frame, err)
		}
		a.profiler.EndFrame()
		lastFrame = frame
	}

	if err := a.graph.Cleanup(ctx); err != nil {
		return fmt.Errorf("rgctl: cleanup: %w", err)
	}

	cmd.Print(a.profiler.ExportAsText(lastFrame))

	as := a.aliasing.Stats()
	cmd.Printf("aliasing: %d/%d succeeded (%.1f%%), %d bytes saved (%.1f%%)\n",
		as.SuccessfulAliases, as.TotalAliasAttempts, 100*as.SuccessRate(),
		as.TotalBytesSaved, as.SavingsPercentage())

	for _, rt := range a.budget.ResourceTypes() {
		u := a.budget.GetUsage(rt)
		cmd.Printf("budget %-16s current=%d peak=%d allocations=%d\n", rt, u.CurrentBytes, u.PeakBytes, u.AllocationCount)
	}
	return nil
}

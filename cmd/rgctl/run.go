package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compile the scene's graph and execute it for frame_count frames",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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
		a.logger.Info("frame complete", zap.Uint64("frame", frame))
	}

	if err := a.graph.Cleanup(ctx); err != nil {
		return fmt.Errorf("rgctl: cleanup: %w", err)
	}

	cmd.Printf("ran %d frame(s)\n", a.scene.FrameCount)
	return nil
}

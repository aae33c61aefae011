package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Compile the scene's graph and print its topological execution order",
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	for i, name := range a.graph.TopoOrder() {
		cmd.Printf("%2d  %s\n", i, name)
	}
	return nil
}

package main

import (
	"github.com/spf13/cobra"
)

var (
	flagScenePath string
	flagLogLevel  string
	flagJSONLogs  bool
)

var rootCmd = &cobra.Command{
	Use:   "rgctl",
	Short: "Drive a render graph assembled from a scene description",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagScenePath, "scene", "", "path to a scene file (YAML/JSON/TOML); empty reads config from environment variables only")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "overrides the scene's log_level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLogs, "json-logs", false, "emit JSON-encoded logs instead of the console encoder")

	rootCmd.AddCommand(runCmd, graphCmd, statsCmd)
}

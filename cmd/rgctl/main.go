// Command rgctl drives a render graph assembled from a scene file: compile
// and execute it for a fixed frame count, print its topological order, or
// dump profiler/aliasing/budget statistics. It always runs against the
// no-op backend (backend/noop) — a real Vulkan device is an external
// collaborator this driver never links.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

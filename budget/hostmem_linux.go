//go:build linux

package budget

import "golang.org/x/sys/unix"

// DetectHostMemoryBytes returns the total physical RAM reported by the
// kernel, or 0 if the query fails. Nothing in this module calls it; no
// default HostMemory budget is installed from it.
func DetectHostMemoryBytes() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}

package util

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// SystemInfo holds a snapshot of host information shown at job-queue startup.
type SystemInfo struct {
	Hostname string
	Cores    int
}

// GetSystemInfo returns basic host information for display.
func GetSystemInfo() SystemInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return SystemInfo{Hostname: hostname, Cores: runtime.NumCPU()}
}

// PhysicalCores returns the number of logical CPUs visible to the process.
// Go's runtime does not distinguish physical from logical (SMT) cores, so
// this is the same value LogicalCores reports.
func PhysicalCores() int {
	return runtime.NumCPU()
}

// LogicalCores returns the number of logical CPUs visible to the process.
func LogicalCores() int {
	return runtime.NumCPU()
}

// AvailableMemoryBytes returns an estimate of available system memory.
// Returns 0 if it cannot be determined.
func AvailableMemoryBytes() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Freeram) * uint64(info.Unit)
}

package degrade

import (
	"golang.org/x/sys/unix"
)

// lowMemoryFraction flags pressure when free memory drops below this
// share of total.
const lowMemoryFraction = 0.1

// ResourceConstraints snapshots the resources available to a recovery
// decision.
type ResourceConstraints struct {
	LowMemory       bool
	FreeMemoryBytes uint64
}

// ProbeResources reads the current memory state. Probe failures report
// no constraints so recovery falls back to the plain policy order.
func ProbeResources() ResourceConstraints {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return ResourceConstraints{}
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	free := (uint64(info.Freeram) + uint64(info.Bufferram)) * unit
	total := uint64(info.Totalram) * unit
	constraints := ResourceConstraints{FreeMemoryBytes: free}
	if total > 0 && float64(free)/float64(total) < lowMemoryFraction {
		constraints.LowMemory = true
	}
	return constraints
}

//go:build !debug

package debug

// EnableAllocationTracking is a no-op outside debug builds.
func EnableAllocationTracking() {}

// DisableAllocationTracking is a no-op outside debug builds.
func DisableAllocationTracking() {}

// ResetAllocationTracking is a no-op outside debug builds.
func ResetAllocationTracking() {}

// CheckAllocation64 is a no-op outside debug builds.
func CheckAllocation64(buffer []float64, name string) {}

// StartFrame is a no-op outside debug builds.
func StartFrame() {}

// EndFrame is a no-op outside debug builds.
func EndFrame() (checks uint64, bytes uint64) {
	return 0, 0
}

// Report returns an empty string outside debug builds.
func Report() string {
	return ""
}

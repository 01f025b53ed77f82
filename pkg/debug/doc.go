// Package debug asserts, in test builds, that Engine.Render never touches
// unallocated memory on the audio thread.
//
// Usage:
//
//	// go test -tags debug ./pkg/engine/...
//
//	debug.EnableAllocationTracking()
//	defer debug.DisableAllocationTracking()
//
//	debug.StartFrame()
//	debug.CheckAllocation64(output, "render.output")
//	debug.CheckAllocation64(scratch, "render.scratch")
//	checks, bytes := debug.EndFrame()
//
// Without the 'debug' tag every function here is a no-op.
package debug

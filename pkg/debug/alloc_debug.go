//go:build debug

// Package debug instruments the real-time render path by checking that
// the buffers it uses are pre-allocated (non-nil, non-zero capacity) and
// counting those checks; it does not observe heap allocations themselves.
// The tracking calls below are only active when built with the 'debug'
// tag; see alloc_nodebug.go for the zero-overhead default used otherwise.
package debug

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type allocationInfo struct {
	name  string
	count uint64
	bytes uint64
}

// tracker aggregates per-buffer access counts across a render session.
type tracker struct {
	mu          sync.RWMutex
	buffers     map[string]*allocationInfo
	enabled     atomic.Bool
	frameChecks atomic.Uint64
	frameBytes  atomic.Uint64
}

var globalTracker = &tracker{buffers: make(map[string]*allocationInfo)}

// EnableAllocationTracking turns on tracking for the process lifetime.
func EnableAllocationTracking() {
	globalTracker.enabled.Store(true)
}

// DisableAllocationTracking turns tracking back off.
func DisableAllocationTracking() {
	globalTracker.enabled.Store(false)
}

// ResetAllocationTracking clears all tracked buffers and counters.
func ResetAllocationTracking() {
	globalTracker.mu.Lock()
	defer globalTracker.mu.Unlock()
	globalTracker.buffers = make(map[string]*allocationInfo)
	globalTracker.frameChecks.Store(0)
	globalTracker.frameBytes.Store(0)
}

// CheckAllocation64 asserts that a mono float64 buffer is pre-allocated
// (non-nil, non-zero capacity) and records the check. Engine.Render calls
// this once per render on its output and scratch buffers.
func CheckAllocation64(buffer []float64, name string) {
	if !globalTracker.enabled.Load() {
		return
	}
	if buffer == nil {
		panic(fmt.Sprintf("debug: buffer %q is nil in the render path", name))
	}
	if cap(buffer) == 0 {
		panic(fmt.Sprintf("debug: buffer %q has zero capacity in the render path", name))
	}

	globalTracker.mu.Lock()
	info, ok := globalTracker.buffers[name]
	if !ok {
		info = &allocationInfo{name: name}
		globalTracker.buffers[name] = info
	}
	info.count++
	info.bytes += uint64(cap(buffer)) * 8
	globalTracker.mu.Unlock()

	globalTracker.frameChecks.Add(1)
	globalTracker.frameBytes.Add(uint64(cap(buffer)) * 8)
}

// StartFrame marks the beginning of one Engine.Render call.
func StartFrame() {
	globalTracker.frameChecks.Store(0)
	globalTracker.frameBytes.Store(0)
}

// EndFrame reports how many buffers were checked and their total
// capacity in bytes during the frame just completed.
func EndFrame() (checks uint64, bytes uint64) {
	return globalTracker.frameChecks.Load(), globalTracker.frameBytes.Load()
}

// Report summarizes every buffer seen since the last reset.
func Report() string {
	globalTracker.mu.RLock()
	defer globalTracker.mu.RUnlock()

	out := fmt.Sprintf("tracked buffers: %d\n", len(globalTracker.buffers))
	for _, info := range globalTracker.buffers {
		out += fmt.Sprintf("  %s: checks=%d bytes=%d\n", info.name, info.count, info.bytes)
	}
	return out
}

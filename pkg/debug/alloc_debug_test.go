//go:build debug

package debug

import (
	"strings"
	"testing"
)

func TestCheckAllocation64PanicsOnNilBuffer(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()
	defer ResetAllocationTracking()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil buffer")
		}
	}()
	CheckAllocation64(nil, "nil_buffer")
}

func TestCheckAllocation64PanicsOnZeroCapacity(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()
	defer ResetAllocationTracking()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for zero-capacity buffer")
		}
	}()
	buffer := make([]float64, 0)
	CheckAllocation64(buffer, "zero_cap_buffer")
}

func TestCheckAllocation64TracksAccessCount(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()
	ResetAllocationTracking()

	buf := make([]float64, 512)
	CheckAllocation64(buf, "render.output")
	CheckAllocation64(buf, "render.output")

	report := Report()
	if !strings.Contains(report, "render.output") {
		t.Error("report should mention render.output")
	}
	if !strings.Contains(report, "checks=2") {
		t.Errorf("expected two checks recorded, got: %s", report)
	}
}

func TestFrameCountersResetPerFrame(t *testing.T) {
	EnableAllocationTracking()
	defer DisableAllocationTracking()
	ResetAllocationTracking()

	StartFrame()
	buf := make([]float64, 128)
	CheckAllocation64(buf, "frame_buffer")
	checks, bytes := EndFrame()
	if checks != 1 {
		t.Errorf("expected 1 check in frame, got %d", checks)
	}
	if bytes != 128*8 {
		t.Errorf("expected %d bytes, got %d", 128*8, bytes)
	}

	StartFrame()
	checks, _ = EndFrame()
	if checks != 0 {
		t.Errorf("expected frame counters to reset, got %d", checks)
	}
}

func TestDisabledTrackingIsANoop(t *testing.T) {
	DisableAllocationTracking()
	ResetAllocationTracking()
	CheckAllocation64(nil, "should_not_panic")
}

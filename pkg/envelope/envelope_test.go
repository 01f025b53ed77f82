package envelope

import "testing"

var sr = 48000.0

func TestAttackRampsToOne(t *testing.T) {
	e := New()
	e.SetAttack(0.01)
	e.NoteOn()

	var last float64
	steps := int(0.01 * sr)
	for i := 0; i < steps; i++ {
		v := e.Process(sr)
		if v < last-1e-9 {
			t.Fatalf("attack not monotonically non-decreasing at step %d: %f -> %f", i, last, v)
		}
		last = v
	}
	if last < 0.99 {
		t.Fatalf("expected attack to approach 1.0, got %f", last)
	}
}

func TestDecayRampsToSustain(t *testing.T) {
	e := New()
	e.SetAttack(0.0001)
	e.SetDecay(0.01)
	e.SetSustain(0.4)
	e.NoteOn()

	for i := 0; i < int(0.0002*sr); i++ {
		e.Process(sr)
	}
	var last = 1.0
	for i := 0; i < int(0.01*sr)+2; i++ {
		v := e.Process(sr)
		if v > last+1e-9 {
			t.Fatalf("decay not monotonically non-increasing: %f -> %f", last, v)
		}
		last = v
	}
	if e.GetStage() != StageSustain {
		t.Fatalf("expected sustain stage, got %v", e.GetStage())
	}
	if e.Level() != 0.4 {
		t.Fatalf("expected sustain level 0.4, got %f", e.Level())
	}
}

func TestRetriggerHasNoDiscontinuity(t *testing.T) {
	e := New()
	e.SetAttack(0.05)
	e.SetDecay(0.05)
	e.SetSustain(0.5)
	e.NoteOn()
	for i := 0; i < int(0.02*sr); i++ {
		e.Process(sr)
	}
	preRetrigger := e.Process(sr)

	e.NoteOn()
	postRetrigger := e.Process(sr)

	maxStep := (1.0 - preRetrigger) / (e.attack * sr)
	diff := postRetrigger - preRetrigger
	if diff < 0 || diff > maxStep+1e-6 {
		t.Fatalf("retrigger discontinuity: pre=%f post=%f maxStep=%f", preRetrigger, postRetrigger, maxStep)
	}
}

func TestNoteOffEntersRelease(t *testing.T) {
	e := New()
	e.SetRelease(0.1)
	e.NoteOn()
	for i := 0; i < int(0.2*sr); i++ {
		e.Process(sr)
	}
	e.NoteOff()
	if e.GetStage() != StageRelease {
		t.Fatalf("expected release stage, got %v", e.GetStage())
	}
	for i := 0; i < int(0.2*sr); i++ {
		e.Process(sr)
	}
	if e.IsActive() {
		t.Fatalf("expected envelope idle after release window")
	}
}

func TestWatchdogForcesIdle(t *testing.T) {
	e := New()
	e.attack = 1e9 // pathological, bypasses the setter floor intentionally
	e.NoteOn()
	for i := 0; i < int(11*sr); i++ {
		e.Process(sr)
	}
	if e.IsActive() {
		t.Fatalf("expected watchdog to force idle after 10s")
	}
}

func TestLevelNeverLeavesUnitRange(t *testing.T) {
	e := New()
	e.SetAttack(0.001)
	e.SetDecay(0.001)
	e.SetSustain(1.5) // will clamp to 1.0 via setter
	e.NoteOn()
	for i := 0; i < int(sr); i++ {
		v := e.Process(sr)
		if v < 0 || v > 1 {
			t.Fatalf("level escaped [0,1]: %f", v)
		}
	}
}

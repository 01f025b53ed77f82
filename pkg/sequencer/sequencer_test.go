package sequencer

import "testing"

type fakeEvents struct {
	onCalls  []int
	offCalls []int
}

func (f *fakeEvents) NoteOn(note int)  { f.onCalls = append(f.onCalls, note) }
func (f *fakeEvents) NoteOff(note int) { f.offCalls = append(f.offCalls, note) }

func TestDefaultStepsAscendCMajor(t *testing.T) {
	s := New(48000)
	if s.steps[0].Note != 60 || s.steps[7].Note != 72 {
		t.Fatalf("unexpected default step table: %+v", s.steps)
	}
}

func TestStepsEmitGatedNoteEvents(t *testing.T) {
	s := New(48000)
	var ev fakeEvents
	s.SetEnabled(true, &ev)
	s.SetTempo(120)
	s.SetStepLength(Quarter)

	stepSamples := int((60.0 / 120.0) * 1.0 * 48000)
	s.Advance(stepSamples+1, &ev)

	if len(ev.onCalls) != 1 || ev.onCalls[0] != 60 {
		t.Fatalf("expected one note-on for step 0, got %v", ev.onCalls)
	}
	if len(ev.offCalls) != 1 {
		t.Fatalf("expected gated note-off before step advance, got %v", ev.offCalls)
	}
}

func TestInactiveStepEmitsNoNote(t *testing.T) {
	s := New(48000)
	var ev fakeEvents
	s.SetStep(0, 60, false)
	s.SetEnabled(true, &ev)
	s.SetTempo(120)

	stepSamples := int((60.0/120.0)*1.0*48000) / 2
	s.Advance(stepSamples, &ev)
	if len(ev.onCalls) != 0 {
		t.Fatalf("expected no note-on for inactive step, got %v", ev.onCalls)
	}
}

func TestSetMeasuresPreservesOverlap(t *testing.T) {
	s := New(48000)
	s.SetStep(0, 99, true)
	s.SetMeasures(2)
	if s.steps[0].Note != 99 {
		t.Fatalf("expected step 0 preserved across resize, got %+v", s.steps[0])
	}
	if len(s.steps) != 16 {
		t.Fatalf("expected 16 steps for 2 measures at Eighth, got %d", len(s.steps))
	}
}

func TestSetStepLengthResizesStepTable(t *testing.T) {
	s := New(48000)
	s.SetStep(0, 99, true)

	s.SetStepLength(Quarter)
	if len(s.steps) != 4 {
		t.Fatalf("expected 4 steps per measure at Quarter, got %d", len(s.steps))
	}
	if s.steps[0].Note != 99 {
		t.Fatalf("expected step 0 preserved across step-length resize, got %+v", s.steps[0])
	}

	s.SetStepLength(Half)
	if len(s.steps) != 2 {
		t.Fatalf("expected 2 steps per measure at Half, got %d", len(s.steps))
	}

	s.SetStepLength(Whole)
	if len(s.steps) != 1 {
		t.Fatalf("expected 1 step per measure at Whole, got %d", len(s.steps))
	}

	s.SetStepLength(Eighth)
	if len(s.steps) != 8 {
		t.Fatalf("expected 8 steps per measure at Eighth, got %d", len(s.steps))
	}
	if s.steps[0].Note != 99 {
		t.Fatalf("expected step 0 still preserved after growing back to Eighth, got %+v", s.steps[0])
	}
}

func TestOutOfRangeStepWriteIsNoop(t *testing.T) {
	s := New(48000)
	before := append([]Step(nil), s.steps...)
	s.SetStep(999, 10, true)
	for i := range s.steps {
		if s.steps[i] != before[i] {
			t.Fatalf("expected out-of-range SetStep to be a no-op")
		}
	}
}

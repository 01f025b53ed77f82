package engine

import (
	"math"
	"testing"
)

func TestRenderProducesBoundedOutput(t *testing.T) {
	e := New(48000)
	e.NoteOn(60)

	buf := make([]float64, 512)
	for block := 0; block < 20; block++ {
		if err := e.Render(buf, len(buf), 48000); err != nil {
			t.Fatalf("render error: %v", err)
		}
	}
	for i, v := range buf {
		if math.IsNaN(v) || math.Abs(v) > 1.0001 {
			t.Fatalf("output out of range at %d: %f", i, v)
		}
	}
}

func TestSilentEngineProducesZero(t *testing.T) {
	e := New(48000)
	buf := make([]float64, 256)
	if err := e.Render(buf, len(buf), 48000); err != nil {
		t.Fatalf("render error: %v", err)
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected silence with no notes held, got %f at %d", v, i)
		}
	}
}

func TestNoteOnThenOffEventuallySilences(t *testing.T) {
	e := New(48000)
	e.NoteOn(60)

	buf := make([]float64, 512)
	e.Render(buf, len(buf), 48000)
	e.NoteOff(60)

	for block := 0; block < 200; block++ {
		e.Render(buf, len(buf), 48000)
	}

	allZero := true
	for _, v := range buf {
		if v != 0 {
			allZero = false
			break
		}
	}
	if !allZero {
		t.Fatalf("expected voice to fully release after many blocks")
	}
}

func TestArpeggiatorModeCapturesHeldNotesInsteadOfTriggeringVoices(t *testing.T) {
	e := New(48000)
	e.SetArpeggiatorEnabled(true)
	e.NoteOn(60)

	buf := make([]float64, 128)
	e.Render(buf, len(buf), 48000)

	held := e.arp.HeldNotes()
	if len(held) != 1 || held[0] != 60 {
		t.Fatalf("expected external note-on captured into arp held set, got %v", held)
	}
}

func TestSequencerTakesPrecedenceOverArpeggiator(t *testing.T) {
	e := New(48000)
	e.SetArpeggiatorEnabled(true)
	e.SetSequencerEnabled(true)
	e.NoteOn(50)

	buf := make([]float64, 128)
	e.Render(buf, len(buf), 48000)
	e.Render(buf, len(buf), 48000)

	if !e.seq.Enabled() {
		t.Fatalf("expected sequencer enabled")
	}
	has60, has50 := false, false
	for _, v := range e.voices.Voices() {
		switch v.MidiNote() {
		case 60:
			has60 = true
		case 50:
			has50 = true
		}
	}
	if !has60 || has50 {
		t.Fatalf("expected the sequencer's first step (60) to sound and the arp's held note (50) not to, got 60=%v 50=%v", has60, has50)
	}
}

func TestVoicePoolSizedToEightPerSpec(t *testing.T) {
	e := New(48000)
	if e.voices.Size() != 8 {
		t.Fatalf("expected voice pool fixed at 8 voices, got %d", e.voices.Size())
	}
}

func TestNinthSimultaneousNoteStealsRatherThanGrowingPool(t *testing.T) {
	e := New(48000)
	buf := make([]float64, 64)

	notes := []int{60, 61, 62, 63, 64, 65, 66, 67, 68}
	for _, n := range notes {
		e.NoteOn(n)
		e.Render(buf, len(buf), 48000)
	}

	if e.voices.Size() != 8 {
		t.Fatalf("expected pool to remain fixed at 8 voices under 9 simultaneous notes, got %d", e.voices.Size())
	}

	active := 0
	for _, v := range e.voices.Voices() {
		if v.IsNoteActive() {
			active++
		}
	}
	if active != 8 {
		t.Fatalf("expected exactly 8 active voices after the 9th note steals one, got %d", active)
	}
}

func TestRenderRecoversFromPanic(t *testing.T) {
	e := New(48000)
	e.voices = nil // force a nil-pointer panic inside Render

	buf := make([]float64, 64)
	if err := e.Render(buf, len(buf), 48000); err == nil {
		t.Fatalf("expected Render to return an error after recovering from panic")
	}
}

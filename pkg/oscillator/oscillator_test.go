package oscillator

import (
	"math"
	"testing"

	"github.com/cwbudde/subtractive-engine/pkg/waveform"
)

func TestWaveformsStayInRange(t *testing.T) {
	o := New()
	o.SetFrequency(440, 48000)
	for _, w := range []waveform.Waveform{waveform.Sine, waveform.Sawtooth, waveform.Square, waveform.Triangle} {
		o.Reset()
		for i := 0; i < 1000; i++ {
			v := o.Next(w)
			if v < -1.0001 || v > 1.0001 {
				t.Fatalf("waveform %v escaped [-1,1]: %f", w, v)
			}
		}
	}
}

func TestNoteToFrequencyA4(t *testing.T) {
	freq := NoteToFrequency(69)
	if math.Abs(freq-440.0) > 1.0 {
		t.Fatalf("expected ~440Hz for note 69, got %f", freq)
	}
}

func TestNoteToFrequencyOctaveDoubling(t *testing.T) {
	low := NoteToFrequency(60)
	high := NoteToFrequency(72)
	ratio := high / low
	if math.Abs(ratio-2.0) > 0.02 {
		t.Fatalf("expected one octave (ratio 2.0), got %f", ratio)
	}
}

// Package oscillator provides the phase-accumulator oscillator used by each voice.
package oscillator

import (
	"math"

	approx "github.com/cwbudde/algo-approx"

	"github.com/cwbudde/subtractive-engine/pkg/waveform"
)

const (
	a4Freq = 440.0
	a4Note = 69
	ln2    = 0.69314718055994530942
)

// Oscillator generates one of four analytic waveforms from a phase accumulator.
type Oscillator struct {
	phase    float64
	phaseInc float64
}

// New creates an oscillator with phase at 0.
func New() *Oscillator {
	return &Oscillator{}
}

// SetFrequency sets the oscillator frequency in Hz.
func (o *Oscillator) SetFrequency(freq, sampleRate float64) {
	o.phaseInc = freq / sampleRate
}

// SetPhase sets the phase directly, wrapped to [0,1).
func (o *Oscillator) SetPhase(phase float64) {
	o.phase = phase - math.Floor(phase)
}

// Reset returns the oscillator to phase 0.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Next generates the next sample for the given waveform and advances phase.
func (o *Oscillator) Next(w waveform.Waveform) float64 {
	t := o.phase
	var sample float64
	switch w {
	case waveform.Sine:
		sample = math.Sin(2 * math.Pi * t)
	case waveform.Sawtooth:
		sample = 2*t - 1
	case waveform.Square:
		if t < 0.5 {
			sample = 1
		} else {
			sample = -1
		}
	case waveform.Triangle:
		if t < 0.5 {
			sample = 4*t - 1
		} else {
			sample = 3 - 4*t
		}
	}

	o.phase += o.phaseInc
	if o.phase >= 1.0 {
		o.phase -= math.Floor(o.phase)
	}
	return sample
}

// NoteToFrequency converts a MIDI note number to Hz using a fast power-of-two
// approximation rather than math.Pow, since this runs on every note-on.
func NoteToFrequency(note int) float64 {
	exponent := float64(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

func pow2Approx(x float64) float64 {
	return float64(approx.FastExp(float32(x) * float32(ln2)))
}

// Package voice implements a single synthesizer voice and the fixed-size
// pool that allocates and steals them under polyphony.
package voice

import (
	"github.com/cwbudde/subtractive-engine/pkg/envelope"
	"github.com/cwbudde/subtractive-engine/pkg/filter"
	"github.com/cwbudde/subtractive-engine/pkg/oscillator"
	"github.com/cwbudde/subtractive-engine/pkg/waveform"
)

const (
	clickSuppressionSamples = 96
	stopFadeoutSamples      = 48
)

// Voice owns one oscillator, an amplitude envelope, a filter envelope and
// a filter, plus the short fade counters that make retriggers and voice
// stealing click-free.
type Voice struct {
	osc       *oscillator.Oscillator
	ampEnv    *envelope.ADSR
	filterEnv *envelope.ADSR
	filt      *filter.SVF

	midiNote int
	waveform waveform.Waveform
	freq     float64

	filterEnvAmount float64
	keyHeld         bool

	clickSuppressionRemaining int
	stopFadeoutRemaining      int
}

// New creates a fully idle voice.
func New() *Voice {
	return &Voice{
		osc:       oscillator.New(),
		ampEnv:    envelope.New(),
		filterEnv: envelope.New(),
		filt:      filter.New(),
		midiNote:  -1,
	}
}

// MidiNote returns the currently assigned note, or -1 if idle.
func (v *Voice) MidiNote() int {
	return v.midiNote
}

// SetFilterEnvelopeAmount sets how strongly the filter envelope drives cutoff modulation.
func (v *Voice) SetFilterEnvelopeAmount(amount float64) {
	v.filterEnvAmount = clamp01(amount)
}

// AmpEnvelope exposes the amplitude envelope for shared parameter propagation.
func (v *Voice) AmpEnvelope() *envelope.ADSR { return v.ampEnv }

// FilterEnvelope exposes the filter envelope for shared parameter propagation.
func (v *Voice) FilterEnvelope() *envelope.ADSR { return v.filterEnv }

// Filter exposes the filter for shared parameter propagation.
func (v *Voice) Filter() *filter.SVF { return v.filt }

// NoteOn assigns this voice to a MIDI note and waveform, starting or
// retriggering both envelopes. If the note differs from the previously
// assigned one, the filter is soft-reset, the oscillator phase returns
// to 0 and a short click-suppression fade-in is armed.
func (v *Voice) NoteOn(midiNote int, w waveform.Waveform, sampleRate float64) {
	retrigger := v.midiNote != midiNote
	v.midiNote = midiNote
	v.waveform = w
	v.freq = oscillator.NoteToFrequency(midiNote)
	v.osc.SetFrequency(v.freq, sampleRate)
	v.keyHeld = true

	v.ampEnv.NoteOn()
	v.filterEnv.NoteOn()

	if retrigger {
		v.filt.Reset()
		v.osc.SetPhase(0)
		v.clickSuppressionRemaining = clickSuppressionSamples
	}
	v.stopFadeoutRemaining = stopFadeoutSamples
}

// NoteOff releases the key without clearing the voice; the voice keeps
// sounding through its release tail.
func (v *Voice) NoteOff() {
	v.keyHeld = false
	v.ampEnv.NoteOff()
	v.filterEnv.NoteOff()
}

// Process renders one sample and advances all internal state.
func (v *Voice) Process(sampleRate float64, lfo float64) float64 {
	if !v.ampEnv.IsActive() && !v.filterEnv.IsActive() {
		if v.stopFadeoutRemaining > 0 {
			v.stopFadeoutRemaining--
		}
		if v.stopFadeoutRemaining <= 0 {
			v.midiNote = -1
			return 0
		}
	}

	raw := v.osc.Next(v.waveform)

	if v.clickSuppressionRemaining > 0 {
		fadeIn := 1.0 - float64(v.clickSuppressionRemaining)/clickSuppressionSamples
		raw *= fadeIn
		v.clickSuppressionRemaining--
	}
	if v.stopFadeoutRemaining > 0 && v.stopFadeoutRemaining < stopFadeoutSamples {
		raw *= float64(v.stopFadeoutRemaining) / stopFadeoutSamples
	}

	ampLevel := v.ampEnv.Process(sampleRate)
	filterLevel := v.filterEnv.Process(sampleRate)

	filterMod := filterLevel*v.filterEnvAmount + lfo
	filtered := v.filt.Process(raw, sampleRate, filterMod)

	return filtered * ampLevel
}

// IsNoteActive reports whether the amplitude envelope is still producing sound.
func (v *Voice) IsNoteActive() bool {
	return v.ampEnv.IsActive()
}

// IsProducingAudio reports whether the voice is audible or will become
// audible again without a new NoteOn (key held, envelope active, or a
// fade counter still running).
func (v *Voice) IsProducingAudio() bool {
	return v.keyHeld || v.ampEnv.IsActive() || v.filterEnv.IsActive() ||
		v.clickSuppressionRemaining > 0 || v.stopFadeoutRemaining > 0
}

// CanBeStolen reports whether this voice is a safe candidate for voice stealing.
func (v *Voice) CanBeStolen() bool {
	return !v.keyHeld && v.ampEnv.Level() < 0.1
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

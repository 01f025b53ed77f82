package voice

import "github.com/cwbudde/subtractive-engine/pkg/waveform"

// Pool is a fixed-size set of voices with a deterministic allocation and
// stealing order: retrigger an already-assigned note, then the first idle
// voice, then the first voice that isn't producing audio, then the
// quietest currently-sounding voice.
type Pool struct {
	voices []*Voice
}

// NewPool creates a pool of n fully idle voices.
func NewPool(n int) *Pool {
	voices := make([]*Voice, n)
	for i := range voices {
		voices[i] = New()
	}
	return &Pool{voices: voices}
}

// Voices exposes the underlying voice slice for iteration by the engine's
// render loop and for propagating shared parameter changes.
func (p *Pool) Voices() []*Voice {
	return p.voices
}

// Size reports the fixed number of voices in the pool.
func (p *Pool) Size() int {
	return len(p.voices)
}

// NoteOn allocates (or retriggers) a voice for midiNote.
func (p *Pool) NoteOn(midiNote int, w waveform.Waveform, sampleRate float64) {
	for _, v := range p.voices {
		if v.MidiNote() == midiNote {
			v.NoteOn(midiNote, w, sampleRate)
			return
		}
	}

	for _, v := range p.voices {
		if v.MidiNote() == -1 {
			v.NoteOn(midiNote, w, sampleRate)
			return
		}
	}

	for _, v := range p.voices {
		if !v.IsProducingAudio() {
			v.NoteOn(midiNote, w, sampleRate)
			return
		}
	}

	if stolen := p.quietest(); stolen != nil {
		stolen.NoteOn(midiNote, w, sampleRate)
	}
}

// NoteOff releases the voice currently holding midiNote, if any.
func (p *Pool) NoteOff(midiNote int) {
	for _, v := range p.voices {
		if v.MidiNote() == midiNote {
			v.NoteOff()
			return
		}
	}
}

// quietest picks the safest voice to steal: the quietest voice that
// CanBeStolen reports safe, falling back to the overall quietest voice
// if every voice is held or above the safe-to-steal level.
func (p *Pool) quietest() *Voice {
	if best := p.quietestMatching(func(v *Voice) bool { return v.CanBeStolen() }); best != nil {
		return best
	}
	return p.quietestMatching(func(*Voice) bool { return true })
}

func (p *Pool) quietestMatching(match func(*Voice) bool) *Voice {
	var best *Voice
	var bestLevel float64
	for _, v := range p.voices {
		if !match(v) {
			continue
		}
		if best == nil || v.AmpEnvelope().Level() < bestLevel {
			best = v
			bestLevel = v.AmpEnvelope().Level()
		}
	}
	return best
}

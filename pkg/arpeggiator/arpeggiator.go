// Package arpeggiator turns a set of held notes into a repeating
// gated note sequence driven by the audio thread's sample clock.
package arpeggiator

// Pattern selects how held notes are stepped through.
type Pattern int

const (
	Up Pattern = iota
	Down
	UpDown
	Random
)

// NoteEvents receives the note-on/note-off pairs the arpeggiator emits.
// The engine wires this to its voice pool under a re-entrancy guard so
// these internally generated events never loop back into HeldNotes.
type NoteEvents interface {
	NoteOn(note int)
	NoteOff(note int)
}

// Arpeggiator steps through a held-note set at a rate derived from BPM
// and emits NoteOn/NoteOff pairs with a fixed gate length.
type Arpeggiator struct {
	heldNotes []int

	enabled     bool
	pattern     Pattern
	bpm         float64
	gate        float64
	multiplier  float64
	sampleRate  float64

	counter     float64
	idx         int
	current     int
	noteActive  bool
	stepStarted bool

	randState uint32
}

// New creates an arpeggiator for the given sample rate.
func New(sampleRate float64) *Arpeggiator {
	return &Arpeggiator{
		bpm:        120,
		gate:       0.5,
		multiplier: 1.0,
		sampleRate: sampleRate,
		randState:  1,
	}
}

// SetEnabled enables or disables the arpeggiator, resetting its
// internal stepping state either way.
func (a *Arpeggiator) SetEnabled(enabled bool, events NoteEvents) {
	if a.enabled && !enabled && a.noteActive {
		events.NoteOff(a.current)
	}
	a.enabled = enabled
	a.counter = 0
	a.idx = 0
	a.noteActive = false
	a.stepStarted = false
}

// HeldNotes returns a copy of the currently held note set, in insertion order.
func (a *Arpeggiator) HeldNotes() []int {
	return append([]int(nil), a.heldNotes...)
}

// Enabled reports whether the arpeggiator is currently running.
func (a *Arpeggiator) Enabled() bool {
	return a.enabled
}

// SetPattern selects the stepping pattern.
func (a *Arpeggiator) SetPattern(p Pattern) {
	a.pattern = p
}

// SetRate sets tempo in BPM, clamped to a minimum of 20.
func (a *Arpeggiator) SetRate(bpm float64) {
	if bpm < 20 {
		bpm = 20
	}
	a.bpm = bpm
}

// SetGate sets the gate fraction, clamped to [0.05,1].
func (a *Arpeggiator) SetGate(gate float64) {
	if gate < 0.05 {
		gate = 0.05
	}
	if gate > 1 {
		gate = 1
	}
	a.gate = gate
}

// SetSubdivision sets the step-length multiplier relative to a quarter note.
func (a *Arpeggiator) SetSubdivision(sub int) {
	switch sub {
	case 0:
		a.multiplier = 2.0 // half note
	case 1:
		a.multiplier = 1.0
	case 2:
		a.multiplier = 0.5
	case 3:
		a.multiplier = 0.25
	default:
		a.multiplier = 1.0
	}
}

// HeldNoteOn adds a note to the held set, deduplicated, preserving
// insertion order.
func (a *Arpeggiator) HeldNoteOn(note int) {
	for _, n := range a.heldNotes {
		if n == note {
			return
		}
	}
	a.heldNotes = append(a.heldNotes, note)
}

// HeldNoteOff removes a note from the held set.
func (a *Arpeggiator) HeldNoteOff(note int) {
	for i, n := range a.heldNotes {
		if n == note {
			a.heldNotes = append(a.heldNotes[:i], a.heldNotes[i+1:]...)
			return
		}
	}
}

func (a *Arpeggiator) nextRandom() uint32 {
	a.randState = a.randState*1664525 + 1013904223
	return a.randState
}

func (a *Arpeggiator) stepIndex(n int) int {
	switch a.pattern {
	case Down:
		return n - 1 - (a.idx % n)
	case UpDown:
		if n == 1 {
			return 0
		}
		cycle := 2*n - 2
		p := a.idx % cycle
		if p < n {
			return p
		}
		return cycle - p
	case Random:
		return int(a.nextRandom() % uint32(n))
	default: // Up
		return a.idx % n
	}
}

// Advance steps the arpeggiator by frames samples, emitting NoteOn/NoteOff
// pairs through events under the engine's suppressArpCapture guard.
func (a *Arpeggiator) Advance(frames int, events NoteEvents) {
	if !a.enabled {
		return
	}
	n := len(a.heldNotes)
	if n == 0 {
		if a.noteActive {
			events.NoteOff(a.current)
			a.noteActive = false
		}
		a.counter = 0
		a.stepStarted = false
		return
	}

	a.counter += float64(frames)
	stepSamples := (60.0 / a.bpm) * a.multiplier * a.sampleRate
	gateSamples := stepSamples * a.gate

	if !a.stepStarted {
		i := a.stepIndex(n)
		if i < 0 || i >= n {
			i = 0
		}
		note := a.heldNotes[i]
		if a.noteActive {
			events.NoteOff(a.current)
		}
		events.NoteOn(note)
		a.current = note
		a.noteActive = true
		a.stepStarted = true
	}

	if a.noteActive && a.counter >= gateSamples {
		events.NoteOff(a.current)
		a.noteActive = false
	}

	if a.counter >= stepSamples {
		if a.noteActive {
			events.NoteOff(a.current)
			a.noteActive = false
		}
		a.counter -= stepSamples
		a.idx = (a.idx + 1) % n
		a.stepStarted = false
	}
}

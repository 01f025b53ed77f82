// Package sequencer implements the synth's fixed-length step sequencer.
package sequencer

// StepLength selects the duration of one step relative to a quarter note.
type StepLength int

const (
	Eighth StepLength = iota
	Quarter
	Half
	Whole
)

func (s StepLength) multiplier() float64 {
	switch s {
	case Eighth:
		return 0.5
	case Half:
		return 2
	case Whole:
		return 4
	default:
		return 1
	}
}

// stepsPerMeasure returns the step-table entries one measure contributes
// at this step length: Eighth=8, Quarter=4, Half=2, Whole=1.
func (s StepLength) stepsPerMeasure() int {
	switch s {
	case Eighth:
		return 8
	case Half:
		return 2
	case Whole:
		return 1
	default:
		return 4
	}
}

// Step is a single entry in the step table.
type Step struct {
	Note   int
	Active bool
}

// NoteEvents receives the note-on/note-off pairs the sequencer emits.
type NoteEvents interface {
	NoteOn(note int)
	NoteOff(note int)
}

var defaultNotes = [8]int{60, 62, 64, 65, 67, 69, 71, 72}

// Sequencer plays a fixed step table, gated at a fraction of the step.
type Sequencer struct {
	steps []Step

	enabled    bool
	tempo      float64
	stepLength StepLength
	measures   int

	counter     float64
	currentStep int
	current     int
	noteActive  bool
	stepStarted bool
	sampleRate  float64
}

// New creates a sequencer seeded with one measure of an ascending
// C-major line, repeated to fill measures·stepsPerMeasure entries.
func New(sampleRate float64) *Sequencer {
	s := &Sequencer{
		tempo:      120,
		stepLength: Eighth,
		measures:   1,
		sampleRate: sampleRate,
	}
	s.seed(1)
	return s
}

func (s *Sequencer) seed(measures int) {
	total := measures * s.stepLength.stepsPerMeasure()
	steps := make([]Step, total)
	for i := range steps {
		steps[i] = Step{Note: defaultNotes[i%len(defaultNotes)], Active: true}
	}
	s.steps = steps
}

// resize grows or shrinks the step table to total entries, preserving the
// overlapping prefix and reseeding any new trailing entries with the
// default scale.
func (s *Sequencer) resize(total int) {
	next := make([]Step, total)
	for i := range next {
		if i < len(s.steps) {
			next[i] = s.steps[i]
		} else {
			next[i] = Step{Note: defaultNotes[i%len(defaultNotes)], Active: true}
		}
	}
	s.steps = next
}

// SetEnabled enables or disables the sequencer.
func (s *Sequencer) SetEnabled(enabled bool, events NoteEvents) {
	if s.enabled && !enabled && s.noteActive {
		events.NoteOff(s.current)
	}
	s.enabled = enabled
	s.counter = 0
	s.currentStep = 0
	s.noteActive = false
	s.stepStarted = false
}

// Enabled reports whether the sequencer is currently running.
func (s *Sequencer) Enabled() bool {
	return s.enabled
}

// SetTempo sets BPM, clamped to a minimum of 20.
func (s *Sequencer) SetTempo(bpm float64) {
	if bpm < 20 {
		bpm = 20
	}
	s.tempo = bpm
}

// SetStepLength sets the per-step duration, resizing the step table to
// measures·stepsPerMeasure(length) entries and reseeding any new steps
// while preserving the overlap with the previous table.
func (s *Sequencer) SetStepLength(length StepLength) {
	s.stepLength = length
	s.resize(s.measures * length.stepsPerMeasure())
}

// SetMeasures resizes the step table, reseeding new steps while
// preserving the overlap with the previous table.
func (s *Sequencer) SetMeasures(measures int) {
	if measures < 1 {
		measures = 1
	}
	s.measures = measures
	s.resize(measures * s.stepLength.stepsPerMeasure())
}

// SetStep writes a single step, ignoring out-of-range indices.
func (s *Sequencer) SetStep(i, note int, active bool) {
	if i < 0 || i >= len(s.steps) {
		return
	}
	s.steps[i] = Step{Note: note, Active: active}
}

// Advance steps the sequencer by frames samples, emitting NoteOn/NoteOff
// pairs through events under the engine's suppression guard.
func (s *Sequencer) Advance(frames int, events NoteEvents) {
	if !s.enabled || len(s.steps) == 0 {
		return
	}

	s.counter += float64(frames)
	stepSamples := (60.0 / s.tempo) * s.stepLength.multiplier() * s.sampleRate
	gateSamples := stepSamples * 0.9

	if !s.stepStarted {
		step := s.steps[s.currentStep%len(s.steps)]
		if step.Active {
			events.NoteOn(step.Note)
			s.current = step.Note
			s.noteActive = true
		}
		s.stepStarted = true
	}

	if s.noteActive && s.counter >= gateSamples {
		events.NoteOff(s.current)
		s.noteActive = false
	}

	if s.counter >= stepSamples {
		if s.noteActive {
			events.NoteOff(s.current)
			s.noteActive = false
		}
		s.counter -= stepSamples
		s.currentStep = (s.currentStep + 1) % len(s.steps)
		s.stepStarted = false
	}
}

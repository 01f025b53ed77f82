// Package control implements the lock-free bridge between the UI
// control thread and the real-time audio thread.
package control

// Kind identifies the command carried in a Command value.
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	SetWaveform
	SetFilterCutoff
	SetFilterResonance
	SetAttack
	SetDecay
	SetSustain
	SetRelease
	SetFilterAttack
	SetFilterDecay
	SetFilterSustain
	SetFilterRelease
	SetFilterEnvelopeAmount
	SetLFORate
	SetLFOAmount
	SetDelayEnabled
	SetDelayTime
	SetDelayFeedback
	SetDelayMix
	SetChorusEnabled
	SetChorusRate
	SetChorusDepth
	SetChorusMix
	SetReverbEnabled
	SetReverbSize
	SetReverbDamping
	SetReverbMix
	SetArpeggiatorEnabled
	SetArpeggiatorPattern
	SetArpeggiatorRate
	SetArpeggiatorGate
	SetArpeggiatorSubdivision
	SetSequencerEnabled
	SetSequencerTempo
	SetSequencerStepLength
	SetSequencerMeasures
	SetSequencerStep
)

// isNoteEvent reports whether a Kind must never be dropped on overflow.
func (k Kind) isNoteEvent() bool {
	return k == NoteOn || k == NoteOff
}

// Command is a single control-thread request queued for the audio thread.
// It carries a flat union of fields rather than an interface value so
// that pushing one never allocates.
type Command struct {
	Kind    Kind
	Int1    int
	Int2    int
	Float   float64
	Bool    bool
}

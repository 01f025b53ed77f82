// Package envelope provides click-free ADSR envelope generation for audio synthesis.
package envelope

import "math"

// Stage represents the current envelope stage.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

const watchdogSeconds = 10.0

// ADSR is a linear Attack-Decay-Sustain-Release envelope generator.
//
// Unlike an exponential envelope, NoteOn and NoteOff memoize the level at
// the moment of the transition (attackStartLevel, releaseStartLevel) so a
// retriggered or released note ramps from wherever it currently is instead
// of jumping — this is what keeps retriggers click-free.
type ADSR struct {
	attack  float64
	decay   float64
	sustain float64
	release float64

	stage             Stage
	level             float64
	time              float64
	attackStartLevel  float64
	releaseStartLevel float64
}

// New creates an idle envelope with reasonable defaults.
func New() *ADSR {
	return &ADSR{
		attack:  0.01,
		decay:   0.1,
		sustain: 0.7,
		release: 0.3,
		stage:   StageIdle,
	}
}

// SetAttack sets the attack time in seconds, floored at 0.0001s.
func (e *ADSR) SetAttack(seconds float64) {
	e.attack = math.Max(0.0001, seconds)
}

// SetDecay sets the decay time in seconds, floored at 0.0001s.
func (e *ADSR) SetDecay(seconds float64) {
	e.decay = math.Max(0.0001, seconds)
}

// SetSustain sets the sustain level, clamped to [0,1].
func (e *ADSR) SetSustain(level float64) {
	e.sustain = math.Max(0.0, math.Min(1.0, level))
}

// SetRelease sets the release time in seconds, floored at 0.005s.
func (e *ADSR) SetRelease(seconds float64) {
	e.release = math.Max(0.005, seconds)
}

// NoteOn starts (or retriggers) the envelope from its current level.
func (e *ADSR) NoteOn() {
	e.attackStartLevel = e.level
	e.stage = StageAttack
	e.time = 0
}

// NoteOff begins the release stage, memoizing the level it releases from.
// A no-op if the envelope is already Idle or in Release.
func (e *ADSR) NoteOff() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.releaseStartLevel = e.level
	e.stage = StageRelease
	e.time = 0
}

// IsActive reports whether the envelope is producing non-idle output.
func (e *ADSR) IsActive() bool {
	return e.stage != StageIdle
}

// GetStage returns the current envelope stage.
func (e *ADSR) GetStage() Stage {
	return e.stage
}

// Level returns the current envelope level without advancing it.
func (e *ADSR) Level() float64 {
	return e.level
}

// Process advances the envelope by one sample and returns its level, clamped to [0,1].
func (e *ADSR) Process(sampleRate float64) float64 {
	if e.stage != StageIdle && e.stage != StageSustain {
		e.time += 1.0 / sampleRate
		if e.time > watchdogSeconds {
			e.stage = StageIdle
			e.level = 0
			return 0
		}
	}

	switch e.stage {
	case StageAttack:
		if e.attack <= 0 {
			e.level = 1.0
		} else {
			e.level = e.attackStartLevel + (1.0-e.attackStartLevel)*(e.time/e.attack)
		}
		if e.time >= e.attack {
			e.level = 1.0
			e.stage = StageDecay
			e.time = 0
		}

	case StageDecay:
		if e.decay <= 0 {
			e.level = e.sustain
		} else {
			e.level = 1.0 - (1.0-e.sustain)*(e.time/e.decay)
		}
		if e.time >= e.decay {
			e.level = e.sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.level = e.sustain

	case StageRelease:
		if e.release <= 0 {
			e.level = 0
		} else {
			e.level = e.releaseStartLevel * (1.0 - e.time/e.release)
		}
		if e.time >= e.release || e.level <= 1e-4 {
			e.level = 0
			e.stage = StageIdle
		}

	case StageIdle:
		e.level = 0
	}

	if e.level < 0 {
		e.level = 0
	} else if e.level > 1 {
		e.level = 1
	}
	return e.level
}

// Reset forces the envelope immediately to Idle with zero level.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.time = 0
}

// Package engine wires the voice pool, modulation sources, effects chain,
// arpeggiator and sequencer into the real-time render callback.
package engine

import (
	"fmt"
	"log"
	"math"
	"os"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/subtractive-engine/pkg/arpeggiator"
	"github.com/cwbudde/subtractive-engine/pkg/chorus"
	"github.com/cwbudde/subtractive-engine/pkg/control"
	"github.com/cwbudde/subtractive-engine/pkg/debug"
	"github.com/cwbudde/subtractive-engine/pkg/delay"
	"github.com/cwbudde/subtractive-engine/pkg/effects"
	"github.com/cwbudde/subtractive-engine/pkg/interpolation"
	"github.com/cwbudde/subtractive-engine/pkg/lfo"
	"github.com/cwbudde/subtractive-engine/pkg/reverb"
	"github.com/cwbudde/subtractive-engine/pkg/sequencer"
	"github.com/cwbudde/subtractive-engine/pkg/voice"
	"github.com/cwbudde/subtractive-engine/pkg/waveform"
)

// logger reports panics recovered in Render. That recovery path is the
// only place the engine logs, since logging can allocate and block.
var logger = log.New(os.Stderr, "[engine] ", log.LstdFlags)

const (
	maxPolyphony     = 8
	outputGain       = 0.55
	limiterThreshold = 0.9
	limiterKnee      = 0.2
	polyGainSmooth   = 0.001
	maxEffectTailSec = 2.0
)

// Engine owns every piece of real-time audio-path state and exposes the
// control-thread API declared in SetXxx methods below; calls on this API
// from outside Render are only safe because they queue through bridge.
type Engine struct {
	sampleRate float64

	voices *voice.Pool
	lfo    *lfo.LFO
	chain  *effects.Chain

	chorusFX *chorus.Chorus
	delayFX  *delay.Line
	reverbFX *reverb.Schroeder

	arp *arpeggiator.Arpeggiator
	seq *sequencer.Sequencer

	waveform waveform.Waveform
	polyGain float64

	bridge             *control.Bridge
	suppressArpCapture bool
	arpEvents          arpEventSink
	seqEvents          seqEventSink

	scratch []float64
}

// defaultScratchFrames covers any realistic host block size; Render falls
// back to a one-time allocation only if a caller asks for more.
const defaultScratchFrames = 8192

type arpEventSink struct{ e *Engine }

func (s arpEventSink) NoteOn(note int)  { s.e.suppressedNoteOn(note) }
func (s arpEventSink) NoteOff(note int) { s.e.suppressedNoteOff(note) }

type seqEventSink struct{ e *Engine }

func (s seqEventSink) NoteOn(note int)  { s.e.suppressedNoteOn(note) }
func (s seqEventSink) NoteOff(note int) { s.e.suppressedNoteOff(note) }

// New creates an engine sized for sampleRate with maxPolyphony voices and
// all buffers preallocated, satisfying the real-time no-allocation rule
// for everything reachable from Render.
func New(sampleRate float64) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		voices:     voice.NewPool(maxPolyphony),
		lfo:        lfo.New(),
		chorusFX:   chorus.New(maxEffectTailSec, sampleRate),
		delayFX:    delay.New(maxEffectTailSec, sampleRate),
		reverbFX:   reverb.New(sampleRate),
		arp:        arpeggiator.New(sampleRate),
		seq:        sequencer.New(sampleRate),
		polyGain:   1.0,
		bridge:     control.NewBridge(256),
		scratch:    make([]float64, defaultScratchFrames),
	}
	e.arpEvents = arpEventSink{e}
	e.seqEvents = seqEventSink{e}

	e.chain = effects.NewChain().Add(e.chorusFX).Add(e.delayFX).Add(e.reverbFX)
	return e
}

func (e *Engine) suppressedNoteOn(note int) {
	e.suppressArpCapture = true
	e.applyCommand(control.Command{Kind: control.NoteOn, Int1: note})
	e.suppressArpCapture = false
}

func (e *Engine) suppressedNoteOff(note int) {
	e.suppressArpCapture = true
	e.applyCommand(control.Command{Kind: control.NoteOff, Int1: note})
	e.suppressArpCapture = false
}

// --- Control-thread API: every call below queues onto the bridge and is
// safe to invoke from outside the audio thread. ---

func (e *Engine) NoteOn(note int) {
	e.bridge.Push(control.Command{Kind: control.NoteOn, Int1: note})
}

func (e *Engine) NoteOff(note int) {
	e.bridge.Push(control.Command{Kind: control.NoteOff, Int1: note})
}

func (e *Engine) SetWaveform(w int) {
	e.bridge.Push(control.Command{Kind: control.SetWaveform, Int1: w})
}

func (e *Engine) SetFilterCutoff(x float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterCutoff, Float: x})
}
func (e *Engine) SetFilterResonance(x float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterResonance, Float: x})
}
func (e *Engine) SetAttack(s float64)  { e.bridge.Push(control.Command{Kind: control.SetAttack, Float: s}) }
func (e *Engine) SetDecay(s float64)   { e.bridge.Push(control.Command{Kind: control.SetDecay, Float: s}) }
func (e *Engine) SetSustain(s float64) { e.bridge.Push(control.Command{Kind: control.SetSustain, Float: s}) }
func (e *Engine) SetRelease(s float64) { e.bridge.Push(control.Command{Kind: control.SetRelease, Float: s}) }

func (e *Engine) SetFilterAttack(s float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterAttack, Float: s})
}
func (e *Engine) SetFilterDecay(s float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterDecay, Float: s})
}
func (e *Engine) SetFilterSustain(s float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterSustain, Float: s})
}
func (e *Engine) SetFilterRelease(s float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterRelease, Float: s})
}
func (e *Engine) SetFilterEnvelopeAmount(x float64) {
	e.bridge.Push(control.Command{Kind: control.SetFilterEnvelopeAmount, Float: x})
}

func (e *Engine) SetLFORate(hz float64) { e.bridge.Push(control.Command{Kind: control.SetLFORate, Float: hz}) }
func (e *Engine) SetLFOAmount(x float64) {
	e.bridge.Push(control.Command{Kind: control.SetLFOAmount, Float: x})
}

func (e *Engine) SetDelayEnabled(on bool) {
	e.bridge.Push(control.Command{Kind: control.SetDelayEnabled, Bool: on})
}
func (e *Engine) SetDelayTime(t float64) { e.bridge.Push(control.Command{Kind: control.SetDelayTime, Float: t}) }
func (e *Engine) SetDelayFeedback(fb float64) {
	e.bridge.Push(control.Command{Kind: control.SetDelayFeedback, Float: fb})
}
func (e *Engine) SetDelayMix(m float64) { e.bridge.Push(control.Command{Kind: control.SetDelayMix, Float: m}) }

func (e *Engine) SetChorusEnabled(on bool) {
	e.bridge.Push(control.Command{Kind: control.SetChorusEnabled, Bool: on})
}
func (e *Engine) SetChorusRate(hz float64) {
	e.bridge.Push(control.Command{Kind: control.SetChorusRate, Float: hz})
}
func (e *Engine) SetChorusDepth(d float64) {
	e.bridge.Push(control.Command{Kind: control.SetChorusDepth, Float: d})
}
func (e *Engine) SetChorusMix(m float64) { e.bridge.Push(control.Command{Kind: control.SetChorusMix, Float: m}) }

func (e *Engine) SetReverbEnabled(on bool) {
	e.bridge.Push(control.Command{Kind: control.SetReverbEnabled, Bool: on})
}
func (e *Engine) SetReverbSize(s float64) { e.bridge.Push(control.Command{Kind: control.SetReverbSize, Float: s}) }
func (e *Engine) SetReverbDamping(d float64) {
	e.bridge.Push(control.Command{Kind: control.SetReverbDamping, Float: d})
}
func (e *Engine) SetReverbMix(m float64) { e.bridge.Push(control.Command{Kind: control.SetReverbMix, Float: m}) }

func (e *Engine) SetArpeggiatorEnabled(on bool) {
	e.bridge.Push(control.Command{Kind: control.SetArpeggiatorEnabled, Bool: on})
}
func (e *Engine) SetArpeggiatorPattern(p int) {
	e.bridge.Push(control.Command{Kind: control.SetArpeggiatorPattern, Int1: p})
}
func (e *Engine) SetArpeggiatorRate(bpm float64) {
	e.bridge.Push(control.Command{Kind: control.SetArpeggiatorRate, Float: bpm})
}
func (e *Engine) SetArpeggiatorGate(g float64) {
	e.bridge.Push(control.Command{Kind: control.SetArpeggiatorGate, Float: g})
}
func (e *Engine) SetArpeggiatorSubdivision(sub int) {
	e.bridge.Push(control.Command{Kind: control.SetArpeggiatorSubdivision, Int1: sub})
}

func (e *Engine) SetSequencerEnabled(on bool) {
	e.bridge.Push(control.Command{Kind: control.SetSequencerEnabled, Bool: on})
}
func (e *Engine) SetSequencerTempo(bpm float64) {
	e.bridge.Push(control.Command{Kind: control.SetSequencerTempo, Float: bpm})
}
func (e *Engine) SetSequencerStepLength(l int) {
	e.bridge.Push(control.Command{Kind: control.SetSequencerStepLength, Int1: l})
}
func (e *Engine) SetSequencerMeasures(m int) {
	e.bridge.Push(control.Command{Kind: control.SetSequencerMeasures, Int1: m})
}
func (e *Engine) SetSequencerStep(i, note int, active bool) {
	e.bridge.Push(control.Command{Kind: control.SetSequencerStep, Int1: i, Int2: note, Bool: active})
}

// applyCommand runs one drained command against real audio-path state.
// It is called only from the audio thread, inside Render.
func (e *Engine) applyCommand(cmd control.Command) {
	switch cmd.Kind {
	case control.NoteOn:
		if !e.suppressArpCapture && e.arpOrSeqCapturesInput() {
			e.arp.HeldNoteOn(cmd.Int1)
			return
		}
		e.voices.NoteOn(cmd.Int1, e.waveform, e.sampleRate)
	case control.NoteOff:
		if !e.suppressArpCapture && e.arpOrSeqCapturesInput() {
			e.arp.HeldNoteOff(cmd.Int1)
			return
		}
		e.voices.NoteOff(cmd.Int1)
	case control.SetWaveform:
		e.waveform = waveform.FromIndex(cmd.Int1)
	case control.SetFilterCutoff:
		for _, v := range e.voices.Voices() {
			v.Filter().SetCutoff(cmd.Float)
		}
	case control.SetFilterResonance:
		for _, v := range e.voices.Voices() {
			v.Filter().SetResonance(cmd.Float)
		}
	case control.SetAttack:
		for _, v := range e.voices.Voices() {
			v.AmpEnvelope().SetAttack(cmd.Float)
		}
	case control.SetDecay:
		for _, v := range e.voices.Voices() {
			v.AmpEnvelope().SetDecay(cmd.Float)
		}
	case control.SetSustain:
		for _, v := range e.voices.Voices() {
			v.AmpEnvelope().SetSustain(cmd.Float)
		}
	case control.SetRelease:
		for _, v := range e.voices.Voices() {
			v.AmpEnvelope().SetRelease(cmd.Float)
		}
	case control.SetFilterAttack:
		for _, v := range e.voices.Voices() {
			v.FilterEnvelope().SetAttack(cmd.Float)
		}
	case control.SetFilterDecay:
		for _, v := range e.voices.Voices() {
			v.FilterEnvelope().SetDecay(cmd.Float)
		}
	case control.SetFilterSustain:
		for _, v := range e.voices.Voices() {
			v.FilterEnvelope().SetSustain(cmd.Float)
		}
	case control.SetFilterRelease:
		for _, v := range e.voices.Voices() {
			v.FilterEnvelope().SetRelease(cmd.Float)
		}
	case control.SetFilterEnvelopeAmount:
		for _, v := range e.voices.Voices() {
			v.SetFilterEnvelopeAmount(cmd.Float)
		}
	case control.SetLFORate:
		e.lfo.SetRate(cmd.Float)
	case control.SetLFOAmount:
		e.lfo.SetAmount(cmd.Float)
	case control.SetDelayEnabled:
		e.delayFX.SetEnabled(cmd.Bool)
	case control.SetDelayTime:
		e.delayFX.SetTime(cmd.Float)
	case control.SetDelayFeedback:
		e.delayFX.SetFeedback(cmd.Float)
	case control.SetDelayMix:
		e.delayFX.SetMix(cmd.Float)
	case control.SetChorusEnabled:
		e.chorusFX.SetEnabled(cmd.Bool)
	case control.SetChorusRate:
		e.chorusFX.SetRate(cmd.Float)
	case control.SetChorusDepth:
		e.chorusFX.SetDepth(cmd.Float)
	case control.SetChorusMix:
		e.chorusFX.SetMix(cmd.Float)
	case control.SetReverbEnabled:
		e.reverbFX.SetEnabled(cmd.Bool)
	case control.SetReverbSize:
		e.reverbFX.SetSize(cmd.Float)
	case control.SetReverbDamping:
		e.reverbFX.SetDamping(cmd.Float)
	case control.SetReverbMix:
		e.reverbFX.SetMix(cmd.Float)
	case control.SetArpeggiatorEnabled:
		e.arp.SetEnabled(cmd.Bool, e.arpEvents)
	case control.SetArpeggiatorPattern:
		e.arp.SetPattern(arpeggiator.Pattern(cmd.Int1))
	case control.SetArpeggiatorRate:
		e.arp.SetRate(cmd.Float)
	case control.SetArpeggiatorGate:
		e.arp.SetGate(cmd.Float)
	case control.SetArpeggiatorSubdivision:
		e.arp.SetSubdivision(cmd.Int1)
	case control.SetSequencerEnabled:
		e.seq.SetEnabled(cmd.Bool, e.seqEvents)
	case control.SetSequencerTempo:
		e.seq.SetTempo(cmd.Float)
	case control.SetSequencerStepLength:
		e.seq.SetStepLength(sequencer.StepLength(cmd.Int1))
	case control.SetSequencerMeasures:
		e.seq.SetMeasures(cmd.Int1)
	case control.SetSequencerStep:
		e.seq.SetStep(cmd.Int1, cmd.Int2, cmd.Bool)
	}
}

func (e *Engine) arpOrSeqCapturesInput() bool {
	return e.seq.Enabled() || e.arp.Enabled()
}

// Render fills output with frames mono samples in [-1,1]. It is the sole
// entry point the audio thread calls, and the only place that mutates
// voice, effect, arpeggiator and sequencer state.
func (e *Engine) Render(output []float64, frames int, sampleRate float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: render panic recovered: %v", r)
			logger.Printf("recovered panic in Render: %v", r)
			for i := range output[:frames] {
				output[i] = 0
			}
		}
	}()

	debug.StartFrame()
	debug.CheckAllocation64(output, "render.output")

	for i := 0; i < frames; i++ {
		output[i] = 0
	}

	e.bridge.Drain(e.applyCommand)

	if e.seq.Enabled() {
		e.seq.Advance(frames, e.seqEvents)
	} else if e.arp.Enabled() {
		e.arp.Advance(frames, e.arpEvents)
	}

	for i := 0; i < frames; i++ {
		lfoVal := e.lfo.Process(sampleRate)

		var sum float64
		active := 0
		for _, v := range e.voices.Voices() {
			if v.IsNoteActive() {
				active++
			}
			sum += v.Process(sampleRate, lfoVal)
		}

		targetPolyGain := 1.0
		if active > 0 {
			targetPolyGain = 1.0 / math.Sqrt(float64(active))
		}
		e.polyGain = interpolation.Smooth(e.polyGain, targetPolyGain, polyGainSmooth)
		output[i] = sum * e.polyGain
	}

	e.chain.Process(output[:frames])

	if cap(e.scratch) < frames {
		// Only reached if the host requests a block larger than
		// defaultScratchFrames; off the fast path for typical block sizes.
		e.scratch = make([]float64, frames)
	}
	scratch := e.scratch[:frames]
	debug.CheckAllocation64(scratch, "render.scratch")
	vecmath.ScaleBlock(scratch, output[:frames], outputGain)
	copy(output[:frames], scratch)

	for i := 0; i < frames; i++ {
		s := output[i]
		if math.Abs(s) > limiterThreshold {
			sign := 1.0
			if s < 0 {
				sign = -1.0
			}
			s = sign * (limiterThreshold + (math.Abs(s)-limiterThreshold)*limiterKnee)
		}
		s = math.Tanh(s * 0.5)
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		output[i] = s
	}

	debug.EndFrame()
	return nil
}

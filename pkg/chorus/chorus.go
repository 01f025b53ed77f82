// Package chorus implements the synth's dual-tap modulated delay chorus effect.
package chorus

import (
	"math"

	"github.com/cwbudde/subtractive-engine/pkg/interpolation"
)

const (
	baseDelayMs  = 12.0
	depthRangeMs = 8.0
)

// Chorus is a two-tap modulated delay with independent LFO phases per tap,
// offset by a quarter cycle so the taps never move in lockstep.
type Chorus struct {
	buffer     []float64
	writePos   int
	sampleRate float64

	rate  float64
	depth float64
	mix   float64

	phase1, phase2 float64
	enabled        bool
}

// New creates a chorus sized for up to maxSeconds of delay at sampleRate.
func New(maxSeconds, sampleRate float64) *Chorus {
	size := int(maxSeconds*sampleRate) + 1
	return &Chorus{
		buffer:     make([]float64, size),
		sampleRate: sampleRate,
		rate:       0.5,
		depth:      0.5,
		mix:        0.3,
		phase1:     0.0,
		phase2:     0.25,
	}
}

// SetRate sets the modulation rate in Hz.
func (c *Chorus) SetRate(hz float64) {
	c.rate = math.Max(0.01, hz)
}

// SetDepth sets modulation depth, clamped to [0,1].
func (c *Chorus) SetDepth(depth float64) {
	c.depth = clamp01(depth)
}

// SetMix sets wet/dry mix, clamped to [0,1].
func (c *Chorus) SetMix(mix float64) {
	c.mix = clamp01(mix)
}

// SetEnabled toggles bypass.
func (c *Chorus) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// Process runs the buffer through the chorus in place.
func (c *Chorus) Process(buffer []float64) {
	if !c.enabled {
		return
	}
	n := len(c.buffer)

	for i, input := range buffer {
		mod1 := math.Sin(2 * math.Pi * c.phase1)
		mod2 := math.Sin(2 * math.Pi * c.phase2)

		tap1 := c.readTap(baseDelayMs+depthRangeMs*c.depth*mod1, n)
		tap2 := c.readTap(baseDelayMs+depthRangeMs*c.depth*mod2, n)
		wet := (tap1 + tap2) * 0.5

		c.buffer[c.writePos] = input
		c.writePos = (c.writePos + 1) % n

		c.phase1 += c.rate / c.sampleRate
		if c.phase1 >= 1.0 {
			c.phase1 -= math.Floor(c.phase1)
		}
		c.phase2 += c.rate / c.sampleRate
		if c.phase2 >= 1.0 {
			c.phase2 -= math.Floor(c.phase2)
		}

		buffer[i] = input*(1-c.mix) + wet*c.mix
	}
}

func (c *Chorus) readTap(delayMs float64, n int) float64 {
	delaySamples := delayMs * c.sampleRate / 1000.0
	readPos := float64(c.writePos) - delaySamples
	for readPos < 0 {
		readPos += float64(n)
	}

	idx := int(readPos)
	frac := readPos - float64(idx)
	idx1 := idx % n
	idx2 := (idx + 1) % n
	return interpolation.Linear(c.buffer[idx1], c.buffer[idx2], frac)
}

// Reset clears the chorus delay buffer and phases.
func (c *Chorus) Reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.writePos = 0
	c.phase1 = 0
	c.phase2 = 0.25
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

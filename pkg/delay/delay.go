// Package delay implements the synth's mono feedback delay line.
package delay

import "math"

// Line is a mono feedback delay with a ring buffer sized to the maximum
// supported delay time.
type Line struct {
	buffer     []float64
	writePos   int
	sampleRate float64

	time     float64 // seconds
	feedback float64
	mix      float64
	enabled  bool
}

// New creates a delay line sized for up to maxSeconds of delay at sampleRate.
func New(maxSeconds, sampleRate float64) *Line {
	size := int(maxSeconds*sampleRate) + 1
	return &Line{
		buffer:     make([]float64, size),
		sampleRate: sampleRate,
		time:       0.25,
		feedback:   0.3,
		mix:        0.3,
	}
}

// SetTime sets the delay time in seconds, floored at 0.
func (d *Line) SetTime(seconds float64) {
	d.time = math.Max(0, seconds)
}

// SetFeedback sets feedback, clamped to [0, 0.99].
func (d *Line) SetFeedback(fb float64) {
	d.feedback = clamp(fb, 0, 0.99)
}

// SetMix sets wet/dry mix, clamped to [0,1].
func (d *Line) SetMix(mix float64) {
	d.mix = clamp(mix, 0, 1)
}

// SetEnabled toggles bypass; a disabled delay passes input through unchanged.
func (d *Line) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Process runs the buffer through the delay in place.
func (d *Line) Process(buffer []float64) {
	if !d.enabled {
		return
	}
	n := len(d.buffer)
	delaySamples := int(clamp(d.time*d.sampleRate, 1, float64(n-1)))

	for i, input := range buffer {
		readPos := (d.writePos + n - delaySamples) % n
		wet := d.buffer[readPos]

		d.buffer[d.writePos] = input + wet*d.feedback
		d.writePos = (d.writePos + 1) % n

		buffer[i] = input*(1-d.mix) + wet*d.mix
	}
}

// Reset clears the delay buffer.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

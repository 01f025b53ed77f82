// Package reverb implements the synth's Schroeder-style reverb: four
// parallel damped comb filters feeding two series all-pass filters.
package reverb

import "math"

var combTuningsSeconds = [4]float64{0.0297, 0.0371, 0.0411, 0.0437}
var allpassTuningsSeconds = [2]float64{0.005, 0.0017}

type comb struct {
	buffer      []float64
	index       int
	feedback    float64
	damp        float64
	filterStore float64
}

func newComb(length int) *comb {
	return &comb{buffer: make([]float64, length)}
}

func (c *comb) process(input float64) float64 {
	d := c.buffer[c.index]
	c.filterStore = d*(1-c.damp) + c.filterStore*c.damp
	c.buffer[c.index] = input + c.filterStore*c.feedback
	c.index = (c.index + 1) % len(c.buffer)
	return d
}

func (c *comb) reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.index = 0
	c.filterStore = 0
}

type allpass struct {
	buffer []float64
	index  int
}

func newAllpass(length int) *allpass {
	return &allpass{buffer: make([]float64, length)}
}

func (a *allpass) process(x float64) float64 {
	b := a.buffer[a.index]
	y := -x + b
	a.buffer[a.index] = x + b*0.5
	a.index = (a.index + 1) % len(a.buffer)
	return y
}

func (a *allpass) reset() {
	for i := range a.buffer {
		a.buffer[i] = 0
	}
	a.index = 0
}

// Schroeder is a classic four-comb, two-allpass reverb.
type Schroeder struct {
	combs     [4]*comb
	allpasses [2]*allpass

	size    float64
	damping float64
	mix     float64
	enabled bool
}

// New creates a Schroeder reverb sized for sampleRate.
func New(sampleRate float64) *Schroeder {
	s := &Schroeder{size: 0.5, damping: 0.5, mix: 0.3}
	for i := 0; i < 4; i++ {
		s.combs[i] = newComb(int(combTuningsSeconds[i] * sampleRate))
	}
	for i := 0; i < 2; i++ {
		s.allpasses[i] = newAllpass(int(allpassTuningsSeconds[i] * sampleRate))
	}
	s.updateInternalParameters()
	return s
}

// SetSize sets room size, clamped to [0,1].
func (s *Schroeder) SetSize(size float64) {
	s.size = clamp01(size)
	s.updateInternalParameters()
}

// SetDamping sets high-frequency damping, clamped to [0,1].
func (s *Schroeder) SetDamping(damping float64) {
	s.damping = clamp01(damping)
	s.updateInternalParameters()
}

// SetMix sets wet/dry mix, clamped to [0,1].
func (s *Schroeder) SetMix(mix float64) {
	s.mix = clamp01(mix)
}

// SetEnabled toggles bypass.
func (s *Schroeder) SetEnabled(enabled bool) {
	s.enabled = enabled
}

func (s *Schroeder) updateInternalParameters() {
	damp := 0.2 + 0.75*s.damping
	feedback := 0.7 * (0.3 + 0.7*s.size)
	for _, c := range s.combs {
		c.damp = damp
		c.feedback = feedback
	}
}

// Process runs the buffer through the reverb in place.
func (s *Schroeder) Process(buffer []float64) {
	if !s.enabled {
		return
	}
	for i, input := range buffer {
		var sum float64
		for _, c := range s.combs {
			sum += c.process(input)
		}
		y := sum * 0.25
		for _, a := range s.allpasses {
			y = a.process(y)
		}

		buffer[i] = input*(1-s.mix) + y*s.mix
	}
}

// Reset clears all comb and all-pass state.
func (s *Schroeder) Reset() {
	for _, c := range s.combs {
		c.reset()
	}
	for _, a := range s.allpasses {
		a.reset()
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// Package effects composes the synth's post-voice effects into a single
// serial signal path.
package effects

// Processor is a DSP block that can be chained. Process runs in place over
// a mono buffer; Reset clears any internal state (delay lines, filter
// memory, LFO phase).
type Processor interface {
	Process(buffer []float64)
	Reset()
}

// ProcessorFunc adapts a plain function to Processor. Reset is a no-op,
// so it is only suitable for stateless stages.
type ProcessorFunc func([]float64)

func (f ProcessorFunc) Process(buffer []float64) { f(buffer) }
func (f ProcessorFunc) Reset()                    {}

// Chain runs a fixed, ordered sequence of processors over a buffer.
// The engine's effects send is Chorus -> Delay -> Reverb; because none of
// the three reads another's state for the same sample, running each stage
// across the whole buffer in turn is equivalent to interleaving them
// sample-by-sample, and considerably cheaper for the branch predictor.
type Chain struct {
	stages []Processor
	bypass bool
}

// NewChain creates an empty effects chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a stage to the end of the chain and returns the chain for
// fluent construction.
func (c *Chain) Add(stage Processor) *Chain {
	c.stages = append(c.stages, stage)
	return c
}

// Process runs the buffer through every stage in order.
func (c *Chain) Process(buffer []float64) {
	if c.bypass {
		return
	}
	for _, stage := range c.stages {
		stage.Process(buffer)
	}
}

// Reset clears state in every stage.
func (c *Chain) Reset() {
	for _, stage := range c.stages {
		stage.Reset()
	}
}

// SetBypass mutes the entire chain without discarding stage state.
func (c *Chain) SetBypass(bypass bool) {
	c.bypass = bypass
}

package filter

import "math"

import "testing"

const sr = 48000.0

func TestStatesStayBounded(t *testing.T) {
	s := New()
	s.SetCutoff(0.9)
	s.SetResonance(1.0)
	for i := 0; i < 100000; i++ {
		in := math.Sin(float64(i) * 0.3)
		out := s.Process(in, sr, 0)
		if math.Abs(out) > stateClamp {
			t.Fatalf("output escaped state clamp at sample %d: %f", i, out)
		}
	}
}

func TestZeroResonanceNoOvershoot(t *testing.T) {
	s := New()
	s.SetCutoff(0.5)
	s.SetResonance(0.0)
	var maxOut float64
	for i := 0; i < 2000; i++ {
		out := s.Process(1.0, sr, 0) // step input
		if out > maxOut {
			maxOut = out
		}
	}
	if maxOut > 1.01 {
		t.Fatalf("step response overshot with zero resonance: %f", maxOut)
	}
}

func TestCutoffModulationClamped(t *testing.T) {
	s := New()
	s.SetCutoff(0.9)
	for i := 0; i < 1000; i++ {
		out := s.Process(1.0, sr, 5.0) // absurd modulation, must clamp internally
		if math.IsNaN(out) || math.Abs(out) > stateClamp {
			t.Fatalf("filter misbehaved under extreme modulation: %f", out)
		}
	}
}

func TestResetSoftlyDecays(t *testing.T) {
	s := New()
	s.SetCutoff(0.8)
	for i := 0; i < 1000; i++ {
		s.Process(1.0, sr, 0)
	}
	before := s.lp
	s.Reset()
	if s.lp != before*0.1 {
		t.Fatalf("expected reset to scale lp by 0.1, got %f from %f", s.lp, before)
	}
}

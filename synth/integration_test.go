package synth

import (
	"math"
	"math/cmplx"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

func TestLongRenderHasNoNaNOrInf(t *testing.T) {
	p := NewDefaultParams()
	p.Oscillators[1].Level = 0.5
	p.Sub.Level = 0.4
	p.NoiseLevel = 0.1
	p.DCBlock = true
	p.Routes = append(p.Routes,
		ModRoute{Source: SourceLFO1, Target: TargetOsc1Freq, Amount: 0.01, Polarity: Bipolar},
		ModRoute{Source: SourceEnv1, Target: TargetLFO2Freq, Amount: 0.3},
		ModRoute{Source: SourceLFO2, Target: TargetOsc2Timbre, Amount: 0.8, Polarity: Monopolar},
		ModRoute{Source: SourceNoise, Target: TargetSubLevel, Amount: 0.1, Polarity: Bipolar},
	)
	s, err := NewSynth(48000, p, nil)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}

	const numBlocks = 600
	const blockSize = 128
	for b := 0; b < numBlocks; b++ {
		var ev []Event
		switch b % 40 {
		case 0:
			ev = []Event{NoteOn(5, 0, uint8(36+b%48), 0.9), NoteOn(70, 1, uint8(60+b%24), 0.5)}
		case 10:
			ev = []Event{PitchBend(0, 0, float32(b%7)/6), ChannelPressure(20, 1, 0.6)}
		case 25:
			ev = []Event{NoteOff(3, 0, uint8(36+(b-25)%48)), Choke(90, 1, uint8(60+(b-25)%24))}
		}
		out := s.Process(ev, blockSize)
		for j, v := range out {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("non-finite sample at block %d sample %d: %v", b, j, v)
			}
		}
	}
}

func TestRenderedSpectrumPeaksAtNotePitch(t *testing.T) {
	const sr = 48000
	const fftSize = 8192
	s := newTestSynth(t, func(p *Params) {
		p.Envelopes[0] = ADSRParams{Attack: 0.001, Decay: 0.001, Sustain: 1, Release: 0.1}
	})
	left := renderLeft(s, []Event{NoteOn(0, 0, 69, 1)}, fftSize/256+4, 256)

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}
	buf := make([]float64, fftSize)
	for i := range buf {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		buf[i] = float64(left[1024+i]) * w
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	best := 1
	for k := 1; k < fftSize/2; k++ {
		if cmplx.Abs(spec[k]) > cmplx.Abs(spec[best]) {
			best = k
		}
	}
	binHz := float64(sr) / fftSize
	if got := float64(best) * binHz; math.Abs(got-440) > 2*binHz {
		t.Fatalf("spectral peak at %.1f Hz, want 440", got)
	}
}

func TestAlgoFFTConvolveRealMatchesDirect(t *testing.T) {
	// a short rendered grain convolved with a small kernel
	s := newTestSynth(t, nil)
	grain := renderLeft(s, []Event{NoteOn(0, 0, 60, 1)}, 1, 64)
	kernel := []float32{0.5, -0.25, 0.125}
	got := make([]float32, len(grain)+len(kernel)-1)
	if err := algofft.ConvolveReal(got, grain, kernel); err != nil {
		t.Fatalf("ConvolveReal error: %v", err)
	}
	for i := range got {
		var want float32
		for j := range kernel {
			if k := i - j; k >= 0 && k < len(grain) {
				want += grain[k] * kernel[j]
			}
		}
		if math.Abs(float64(got[i]-want)) > 1e-4 {
			t.Fatalf("fft convolution mismatch at %d: got=%f want=%f", i, got[i], want)
		}
	}
}

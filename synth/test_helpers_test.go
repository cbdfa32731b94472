package synth

import "math"

func approxEqual(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

// bufferSource is a fixed modulation buffer.
type bufferSource struct {
	buf      []float32
	polarity Polarity
}

func (b bufferSource) SourceBuffer() ([]float32, Polarity) {
	return b.buf, b.polarity
}

func constBuffer(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// renderLeft runs blocks of blockSize frames and returns the left channel.
func renderLeft(s *Synth, first []Event, blocks, blockSize int) []float32 {
	out := make([]float32, 0, blocks*blockSize)
	for b := 0; b < blocks; b++ {
		var ev []Event
		if b == 0 {
			ev = first
		}
		block := s.Process(ev, blockSize)
		for i := 0; i < blockSize; i++ {
			out = append(out, block[i*2])
		}
	}
	return out
}

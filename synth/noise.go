package synth

import (
	"math/rand"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

const (
	noiseChunkLen = 512
	noiseChunks   = 128
	noiseSeed     = 0x5eed
)

var (
	noisePoolOnce sync.Once
	noisePool     [][]float32
)

// sharedNoise returns the process-wide pool of white-noise chunks. It is
// generated once and never written afterwards.
func sharedNoise() [][]float32 {
	noisePoolOnce.Do(func() {
		gen := signal.NewGeneratorWithOptions(
			[]core.ProcessorOption{core.WithSampleRate(48000)},
			signal.WithSeed(noiseSeed),
		)
		raw, err := gen.WhiteNoise(1, noiseChunks*noiseChunkLen)
		if err != nil {
			panic("synth: noise pool: " + err.Error())
		}
		noisePool = make([][]float32, noiseChunks)
		for c := range noisePool {
			chunk := make([]float32, noiseChunkLen)
			for i := range chunk {
				chunk[i] = float32(raw[c*noiseChunkLen+i])
			}
			noisePool[c] = chunk
		}
	})
	return noisePool
}

// NoiseOscillator walks the shared noise pool one chunk at a time, jumping
// to a random chunk at every chunk boundary.
type NoiseOscillator struct {
	Level  Param
	pool   [][]float32
	chunk  int
	sample int
	rng    *rand.Rand
	buf    []float32
}

func NewNoiseOscillator(level float32, seed int64) NoiseOscillator {
	n := NoiseOscillator{
		Level: NewParam(level, levelRange),
		pool:  sharedNoise(),
		rng:   rand.New(rand.NewSource(seed)),
	}
	n.Restart()
	return n
}

// Restart jumps to a fresh random chunk.
func (n *NoiseOscillator) Restart() {
	n.chunk = n.rng.Intn(len(n.pool))
	n.sample = 0
}

func (n *NoiseOscillator) next() float32 {
	n.sample++
	if n.sample >= noiseChunkLen {
		n.sample = 0
		n.chunk = n.rng.Intn(len(n.pool))
	}
	return n.pool[n.chunk][n.sample]
}

func (n *NoiseOscillator) Render(numFrames int) {
	n.buf = growBuffer(n.buf, numFrames)
	for i := range n.buf {
		n.buf[i] = n.next()
	}
}

func (n *NoiseOscillator) SourceBuffer() ([]float32, Polarity) {
	return n.buf, Bipolar
}

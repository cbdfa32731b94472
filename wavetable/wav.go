package wavetable

import (
	"fmt"

	"github.com/cwbudde/algo-wavesynth/internal/audioio"
)

// LoadWAV reads a single-cycle wavetable export (channels averaged) and
// builds a table from it. The file's sample rate is irrelevant.
func LoadWAV(path string, sliceLen int, opts ...Option) (*Wavetable, error) {
	raw, _, err := audioio.ReadWAVMono32(path)
	if err != nil {
		return nil, err
	}
	w, err := Build(raw, sliceLen, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

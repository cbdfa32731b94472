package wavetable

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-wavesynth/internal/audioio"
)

func TestLoadWAVBuildsSlices(t *testing.T) {
	const sliceLen = 1024
	raw := make([]float32, 3*sliceLen)
	for i := range raw {
		raw[i] = float32(i/sliceLen) * 0.25
	}
	path := filepath.Join(t.TempDir(), "table.wav")
	if err := audioio.WriteMonoWAV(path, raw, 44100); err != nil {
		t.Fatalf("write wav: %v", err)
	}

	w, err := LoadWAV(path, sliceLen)
	if err != nil {
		t.Fatalf("LoadWAV: %v", err)
	}
	if w.Slices() != 3 {
		t.Fatalf("expected 3 slices, got %d", w.Slices())
	}
	if got := w.Sample(0.5, 1); got < 0.49 || got > 0.51 {
		t.Fatalf("last row should hold the last slice level, got %f", got)
	}
}

func TestLoadWAVReportsBadLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")
	if err := audioio.WriteMonoWAV(path, make([]float32, 1500), 44100); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	_, err := LoadWAV(path, DefaultSliceLen)
	if !errors.Is(err, ErrSourceLength) {
		t.Fatalf("expected ErrSourceLength, got %v", err)
	}
}

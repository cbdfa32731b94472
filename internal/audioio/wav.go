// Package audioio reads and writes the WAV files the command-line tools
// exchange: reference recordings, wavetable sources and renders.
package audioio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAVMono32 decodes path and averages all channels into one.
func ReadWAVMono32(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	if frames == 0 {
		return nil, 0, fmt.Errorf("empty wav data: %s", path)
	}
	out := make([]float32, frames)
	inv := 1 / float32(ch)
	for i := range out {
		var sum float32
		for c := 0; c < ch; c++ {
			sum += buf.Data[i*ch+c]
		}
		out[i] = sum * inv
	}
	return out, buf.Format.SampleRate, nil
}

// ReadWAVMono is ReadWAVMono32 widened for analysis.
func ReadWAVMono(path string) ([]float64, int, error) {
	mono, sr, err := ReadWAVMono32(path)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float64, len(mono))
	for i, v := range mono {
		out[i] = float64(v)
	}
	return out, sr, nil
}

func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

func WriteStereoInterleavedWAV(path string, samples []float32, sampleRate int) error {
	return writeWAV(path, samples, sampleRate, 2)
}

func WriteMonoWAV(path string, data []float32, sampleRate int) error {
	return writeWAV(path, data, sampleRate, 1)
}

func writeWAV(path string, data []float32, sampleRate int, channels int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

func StereoToMono64(st []float32) []float64 {
	if len(st) < 2 {
		return nil
	}
	n := len(st) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 0.5 * (float64(st[i*2]) + float64(st[i*2+1]))
	}
	return out
}

func StereoRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}

	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(interleaved)))
}

// Package wavetable builds and samples two-dimensional interpolated
// wavetables.
//
// A table is built offline from a flat mono waveform split into equally
// sized slices. Each slice becomes one timbre snapshot; the finished grid is
// Size×Size samples indexed by (slice, phase), both in [0,1). Tables are
// immutable once built and are shared between voices through a Handle.
package wavetable

import (
	"errors"
	"fmt"
	"math"

	dspinterp "github.com/cwbudde/algo-dsp/dsp/interp"
)

const (
	// Size is the resolution of both table axes.
	Size = 2048
	// SliceResolution is the number of samples each source slice is reduced
	// to before upsampling.
	SliceResolution = 512
	// DefaultSliceLen is the slice length of the usual single-cycle
	// wavetable exports (2048 samples per frame).
	DefaultSliceLen = 2048
)

var (
	// ErrEmptySource is returned when the raw waveform has no samples.
	ErrEmptySource = errors.New("wavetable source is empty")
	// ErrSliceLength is returned when the slice length is not a positive
	// multiple of SliceResolution.
	ErrSliceLength = errors.New("invalid wavetable slice length")
	// ErrSourceLength is returned when the source does not split into whole
	// slices.
	ErrSourceLength = errors.New("wavetable source is not a whole number of slices")
)

// Interpolation selects how a slice is upsampled to Size samples.
type Interpolation int

const (
	// InterpLinear blends neighbouring samples linearly.
	InterpLinear Interpolation = iota
	// InterpCubic uses 4-point Hermite interpolation.
	InterpCubic
)

// Wavetable is an immutable Size×Size grid of amplitude samples.
type Wavetable struct {
	data   []float32
	slices int
}

type buildConfig struct {
	interp     Interpolation
	removeMean bool
}

// Option configures Build.
type Option func(*buildConfig)

// WithInterpolation selects the slice upsampling kernel.
func WithInterpolation(i Interpolation) Option {
	return func(c *buildConfig) {
		c.interp = i
	}
}

// WithMeanRemoval subtracts each slice's mean before upsampling so that
// sliced recordings with a DC offset do not leak it into the output.
func WithMeanRemoval() Option {
	return func(c *buildConfig) {
		c.removeMean = true
	}
}

// ValidateSource reports whether raw can be built with the given slice
// length without doing any of the work.
func ValidateSource(n int, sliceLen int) error {
	if n == 0 {
		return ErrEmptySource
	}
	if sliceLen < SliceResolution || sliceLen%SliceResolution != 0 {
		return fmt.Errorf("%w: %d (must be a multiple of %d)", ErrSliceLength, sliceLen, SliceResolution)
	}
	if n%sliceLen != 0 {
		return fmt.Errorf("%w: %d samples, slice length %d", ErrSourceLength, n, sliceLen)
	}
	return nil
}

// Build turns a raw waveform into a table. raw is split into slices of
// sliceLen samples; each slice is box-averaged down to SliceResolution
// samples, upsampled to Size samples around its circular phase and the
// resulting rows are blended linearly across the slice axis.
//
// On error no table is produced.
func Build(raw []float32, sliceLen int, opts ...Option) (*Wavetable, error) {
	if err := ValidateSource(len(raw), sliceLen); err != nil {
		return nil, err
	}
	cfg := buildConfig{interp: InterpLinear}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ratio := sliceLen / SliceResolution
	numSlices := len(raw) / sliceLen
	upsampled := make([][]float32, numSlices)
	reduced := make([]float64, SliceResolution)
	for s := 0; s < numSlices; s++ {
		src := raw[s*sliceLen : (s+1)*sliceLen]
		downsampleSlice(reduced, src, ratio)
		if cfg.removeMean {
			removeMean(reduced)
		}
		upsampled[s] = upsampleSlice(reduced, cfg.interp)
	}

	return fromRows(upsampled), nil
}

// FromSlices builds a table directly from slices that are already
// SliceResolution samples long.
func FromSlices(slices [][]float32, opts ...Option) (*Wavetable, error) {
	if len(slices) == 0 {
		return nil, ErrEmptySource
	}
	raw := make([]float32, 0, len(slices)*SliceResolution)
	for i, s := range slices {
		if len(s) != SliceResolution {
			return nil, fmt.Errorf("%w: slice %d has %d samples, want %d", ErrSliceLength, i, len(s), SliceResolution)
		}
		raw = append(raw, s...)
	}
	return Build(raw, SliceResolution, opts...)
}

// Slices reports how many source slices the table was built from.
func (w *Wavetable) Slices() int {
	return w.slices
}

// Sample looks up the table at (phase, slice). Both coordinates map to an
// index with floor(x*Size) clamped to [0, Size-1]; values outside [0,1)
// land on the nearest edge and never wrap.
func (w *Wavetable) Sample(phase, slice float32) float32 {
	return w.data[remapIndex(slice)*Size+remapIndex(phase)]
}

// Row returns a read-only view of one timbre row.
func (w *Wavetable) Row(slice float32) []float32 {
	r := remapIndex(slice)
	return w.data[r*Size : (r+1)*Size]
}

func remapIndex(x float32) int {
	// NaN fails every comparison and lands on 0
	if !(x > 0) {
		return 0
	}
	f := float64(x) * Size
	if f >= Size-1 {
		return Size - 1
	}
	return int(f)
}

func downsampleSlice(dst []float64, src []float32, ratio int) {
	inv := 1.0 / float64(ratio)
	for i := range dst {
		var sum float64
		for _, v := range src[i*ratio : (i+1)*ratio] {
			sum += float64(v)
		}
		dst[i] = sum * inv
	}
}

func removeMean(x []float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

func upsampleSlice(slice []float64, mode Interpolation) []float32 {
	const r = Size / SliceResolution
	n := len(slice)
	out := make([]float32, Size)
	lin := dspinterp.NewLagrangeInterpolator(1)
	pair := make([]float64, 2)
	for i := 0; i < n; i++ {
		x0 := slice[i]
		x1 := slice[(i+1)%n]
		for j := 0; j < r; j++ {
			frac := float64(j) / r
			var v float64
			switch mode {
			case InterpCubic:
				xm1 := slice[(i+n-1)%n]
				x2 := slice[(i+2)%n]
				v = dspinterp.Hermite4(frac, xm1, x0, x1, x2)
			default:
				pair[0], pair[1] = x0, x1
				v = lin.Interpolate(pair, frac)
			}
			out[i*r+j] = float32(v)
		}
	}
	return out
}

func fromRows(rows [][]float32) *Wavetable {
	w := &Wavetable{
		data:   make([]float32, Size*Size),
		slices: len(rows),
	}
	if len(rows) == 1 {
		for r := 0; r < Size; r++ {
			copy(w.data[r*Size:(r+1)*Size], rows[0])
		}
		return w
	}

	last := len(rows) - 1
	for r := 0; r < Size; r++ {
		pos := float64(r) / float64(Size-1) * float64(last)
		j := int(math.Floor(pos))
		if j > last-1 {
			j = last - 1
		}
		frac := float32(pos - float64(j))
		a := rows[j]
		b := rows[j+1]
		row := w.data[r*Size : (r+1)*Size]
		for i := range row {
			row[i] = a[i]*(1-frac) + b[i]*frac
		}
	}
	return w
}

package synth

import "math"

// RangeKind selects the mapping between raw units and normalized [0,1].
type RangeKind int

const (
	RangeLinear RangeKind = iota
	RangeExponential
	RangeExponentialToZero
)

// ParamRange is a clamped bijection between a parameter's raw units and
// [0,1]. Exponential ranges make equal normalized steps sound equally large
// anywhere on the range.
type ParamRange struct {
	Kind RangeKind
	// Min is the virtual minimum for RangeExponentialToZero.
	Min float32
	Max float32
}

func Linear(min, max float32) ParamRange {
	return ParamRange{Kind: RangeLinear, Min: min, Max: max}
}

// Exponential maps ln(x/min)/ln(max/min). min must be > 0.
func Exponential(min, max float32) ParamRange {
	return ParamRange{Kind: RangeExponential, Min: min, Max: max}
}

// ExponentialToZero is an exponential range shifted by virtualMin so that a
// raw value of 0 normalizes to exactly 0.
func ExponentialToZero(virtualMin, max float32) ParamRange {
	return ParamRange{Kind: RangeExponentialToZero, Min: virtualMin, Max: max}
}

// Lo returns the smallest raw value of the range.
func (r ParamRange) Lo() float32 {
	if r.Kind == RangeExponentialToZero {
		return 0
	}
	return r.Min
}

// Clamp limits x to the raw range.
func (r ParamRange) Clamp(x float32) float32 {
	lo := r.Lo()
	if !(x > lo) {
		return lo
	}
	if x > r.Max {
		return r.Max
	}
	return x
}

// Normalize maps a raw value to [0,1].
func (r ParamRange) Normalize(x float32) float32 {
	x = r.Clamp(x)
	var y float64
	switch r.Kind {
	case RangeExponential:
		if r.Min <= 0 || r.Max <= r.Min {
			return 0
		}
		y = math.Log(float64(x)/float64(r.Min)) / math.Log(float64(r.Max)/float64(r.Min))
	case RangeExponentialToZero:
		if r.Min <= 0 || r.Max <= 0 {
			return 0
		}
		vmin := float64(r.Min)
		y = math.Log((float64(x)+vmin)/vmin) / math.Log((float64(r.Max)+vmin)/vmin)
	default:
		if r.Max == r.Min {
			return 0
		}
		y = float64(x-r.Min) / float64(r.Max-r.Min)
	}
	return clampUnit(float32(y))
}

// Denormalize maps y in [0,1] back to raw units. y is clamped first.
func (r ParamRange) Denormalize(y float32) float32 {
	y = clampUnit(y)
	switch r.Kind {
	case RangeExponential:
		if r.Min <= 0 || r.Max <= r.Min {
			return r.Min
		}
		base := math.Log(float64(r.Max) / float64(r.Min))
		return r.Clamp(float32(float64(r.Min) * math.Exp(float64(y)*base)))
	case RangeExponentialToZero:
		if r.Min <= 0 || r.Max <= 0 {
			return 0
		}
		vmin := float64(r.Min)
		base := math.Log((float64(r.Max) + vmin) / vmin)
		return r.Clamp(float32(vmin*math.Exp(float64(y)*base) - vmin))
	default:
		return r.Min + (r.Max-r.Min)*y
	}
}

func clampUnit(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

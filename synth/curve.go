package synth

import "github.com/cwbudde/algo-approx"

// interpolateUnity bends unit progress x by curvature k. The sign of k picks
// the direction and |k| the strength: positive k reaches 1 early (ease-out),
// negative k lingers near 0 (ease-in), zero is linear. The end points 0 and
// 1 are fixed for every k.
func interpolateUnity(x, k float32) float32 {
	x = clampUnit(x)
	switch {
	case k == 0:
		return x
	case k > 0:
		return x + (1-x)*(1-approx.FastExp(-k*x))
	default:
		return x - x*(1-approx.FastExp(-k*(x-1)))
	}
}

// Curve is a per-stage curvature setting.
type Curve float32

func (c Curve) apply(x float32) float32 {
	return interpolateUnity(x, float32(c))
}

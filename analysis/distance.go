// Package analysis measures how close a rendered voice is to a reference
// recording and inspects the harmonic content of wavetable rows.
package analysis

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

const (
	envFrame = 256
	envHop   = 128
)

// Metrics contains distance and similarity measurements between two audio signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefAttackS      float64 `json:"ref_attack_s"`
	CandAttackS     float64 `json:"cand_attack_s"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in [0,1].
// Both signals are level-matched and aligned by cross-correlation first, so
// the score reflects envelope shape and timbre rather than gain or latency.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		return m
	}

	ref := trimLeadingSilence(reference, 1e-6)
	cand := trimLeadingSilence(candidate, 1e-6)
	if len(ref) == 0 || len(cand) == 0 {
		return m
	}

	ref = normalizeRMS(ref, 0.1)
	cand = normalizeRMS(cand, 0.1)

	maxLag := min(sampleRate/2, len(ref)-1, len(cand)-1)
	m.LagSamples = estimateLag(ref, cand, max(maxLag, 1))

	refA, candA := alignByLag(ref, cand, m.LagSamples)
	n := min(len(refA), len(candA))
	if n < 2*envFrame {
		return m
	}
	n = min(n, sampleRate*12)
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	refEnv := Envelope(refA, envFrame, envHop)
	candEnv := Envelope(candA, envFrame, envHop)
	m.EnvelopeRMSEDB = EnvelopeRMSEDB(refEnv, candEnv)
	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	hopSec := float64(envHop) / float64(sampleRate)
	m.RefAttackS = AttackTime(refEnv, hopSec)
	m.CandAttackS = AttackTime(candEnv, hopSec)
	m.RefDecayDBPerS = decaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = decaySlopeDBPerS(candEnv, hopSec)
	if isFinite(m.RefDecayDBPerS) && isFinite(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	attNorm := clamp01(math.Abs(m.RefAttackS-m.CandAttackS) / 0.25)
	decNorm := clamp01(m.DecayDiffDBPerS / 40.0)
	m.Score = clamp01(0.45*envNorm + 0.25*specNorm + 0.15*attNorm + 0.15*decNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))

	return m
}

// Envelope returns the frame RMS of x using the given frame and hop sizes.
func Envelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := range out {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

// EnvelopeRMSEDB is the RMS difference in dB between two envelopes over
// their common length.
func EnvelopeRMSEDB(ref, cand []float64) float64 {
	n := min(len(ref), len(cand))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := linToDB(ref[i]) - linToDB(cand[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// AttackTime is the time from the first frame above -40 dB of the peak to
// the peak itself.
func AttackTime(env []float64, hopSec float64) float64 {
	if len(env) == 0 {
		return 0
	}
	peakIdx := 0
	for i, v := range env {
		if v > env[peakIdx] {
			peakIdx = i
		}
	}
	floor := env[peakIdx] * 0.01
	start := 0
	for start < peakIdx && env[start] < floor {
		start++
	}
	return float64(peakIdx-start) * hopSec
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := range x {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	r := rms1(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

// estimateLag finds the shift of cand against ref in [-maxLag, maxLag] that
// maximizes their cross-correlation, computed via FFT.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	size := nextPow2(len(ref) + len(cand))
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0
	}
	a := make([]complex128, size)
	b := make([]complex128, size)
	for i, v := range ref {
		a[i] = complex(v, 0)
	}
	for i, v := range cand {
		b[i] = complex(v, 0)
	}
	fa := make([]complex128, size)
	fb := make([]complex128, size)
	if plan.Forward(fa, a) != nil || plan.Forward(fb, b) != nil {
		return 0
	}
	for i := range fa {
		re, im := real(fb[i]), -imag(fb[i])
		fa[i] *= complex(re, im)
	}
	xc := a
	if plan.Inverse(xc, fa) != nil {
		return 0
	}

	// xc[k] = sum ref[i+k]*cand[i]; negative lags wrap to the end.
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		idx := lag
		if idx < 0 {
			idx += size
		}
		if v := real(xc[idx]); v > best {
			best = v
			bestLag = lag
		}
	}
	return bestLag
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func spectralRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 512 {
		return 0
	}
	n = min(prevPow2(n), 4096)
	ma, err := magnitudeSpectrum(a[:n])
	if err != nil {
		return 0
	}
	mb, err := magnitudeSpectrum(b[:n])
	if err != nil {
		return 0
	}
	var sum float64
	for k := 1; k < len(ma); k++ {
		d := linToDB(ma[k]) - linToDB(mb[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(ma)-1))
}

// magnitudeSpectrum returns the Hann-windowed magnitudes of bins 0..n/2-1.
func magnitudeSpectrum(x []float64) ([]float64, error) {
	n := len(x)
	w, err := window.Hann(n)
	if err != nil {
		return nil, err
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, err
	}
	in := make([]float64, n)
	for i := range x {
		in[i] = x[i] * w[i]
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, in)
	out := make([]float64, n/2)
	for k := range out {
		out[k] = math.Hypot(real(spec[k]), imag(spec[k]))
	}
	return out, nil
}

func linToDB(x float64) float64 {
	return 20.0 * math.Log10(max(x, 1e-12))
}

func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak := -math.MaxFloat64
	peakIdx := 0
	for i, v := range env {
		if db := linToDB(v); db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}

	threshold := peak - 60.0
	end := len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < threshold {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func prevPow2(n int) int {
	p := 1
	for p*2 <= n {
		p <<= 1
	}
	return p
}

func clamp01(x float64) float64 {
	return dspcore.Clamp(x, 0, 1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/internal/render"
	"github.com/cwbudde/algo-wavesynth/synth"
	"github.com/cwbudde/algo-wavesynth/wavetable"
	"github.com/cwbudde/mayfly"
)

type optimizationConfig struct {
	reference        []float64
	baseParams       *synth.Params
	baseRender       renderSettings
	table            *wavetable.Handle
	defs             []knobDef
	initCandidate    candidate
	note             uint8
	sampleRate       int
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	checkpointEvery  int
	decayDBFS        float64
	minDuration      float64
	maxDuration      float64
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int
	checkpoint       func(best candidate, m analysis.Metrics, evals int, elapsed float64) error
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	evals       int
	elapsed     float64
}

type optimizationState struct {
	mu          sync.Mutex
	best        candidate
	bestMetrics analysis.Metrics
}

// renderCandidate plays the fitted note once and returns the mono mix.
func renderCandidate(cfg *optimizationConfig, p *synth.Params, rs renderSettings) ([]float64, error) {
	s, err := synth.NewSynth(cfg.sampleRate, p, cfg.table)
	if err != nil {
		return nil, err
	}
	o := render.DefaultOptions()
	o.Notes = []uint8{cfg.note}
	o.Velocity = float32(rs.velocity) / 127
	o.ReleaseAfter = rs.releaseAfter
	o.DecayDBFS = cfg.decayDBFS
	o.MinDuration = cfg.minDuration
	o.MaxDuration = cfg.maxDuration
	st, err := render.Notes(s, o)
	if err != nil {
		return nil, err
	}
	return audioio.StereoToMono64(st), nil
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	evaluate := func(c candidate) (analysis.Metrics, error) {
		p, rs := applyCandidate(cfg.baseParams, cfg.baseRender, cfg.defs, c)
		mono, err := renderCandidate(cfg, p, rs)
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(cfg.reference, mono, cfg.sampleRate), nil
	}

	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))
	variant := strings.ToLower(cfg.mayflyVariant)

	best := cloneCandidate(cfg.initCandidate)
	bestM, err := evaluate(best)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", bestM.Score, bestM.Similarity*100.0)

	state := &optimizationState{best: best, bestMetrics: bestM}
	var evals int64 = 1
	var rounds int64
	var improves int64
	var outputMu sync.Mutex

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(workers, 1)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) && atomic.LoadInt64(&evals) < int64(cfg.maxEvals) {
				round := int(atomic.AddInt64(&rounds, 1))
				remaining := cfg.maxEvals - int(atomic.LoadInt64(&evals))
				if remaining <= 0 {
					return
				}
				budget := min(cfg.mayflyRoundEvals, remaining)
				iters := max(1, budget/(2*cfg.mayflyPop))

				mc, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), iters)
				if err != nil {
					fmt.Fprintf(os.Stderr, "mayfly round %d setup failed: %v\n", round, err)
					return
				}
				mc.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
				mc.ObjectiveFunc = func(pos []float64) float64 {
					if time.Now().After(deadline) {
						return currentBestScore(state) + 1.0
					}
					evalNum, ok := reserveEval(&evals, cfg.maxEvals)
					if !ok {
						return currentBestScore(state) + 1.0
					}

					cand := fromNormalized(pos, cfg.defs)
					m, err := evaluate(cand)
					if err != nil {
						return currentBestScore(state) + 0.8
					}

					state.mu.Lock()
					improved := m.Score < state.bestMetrics.Score
					var improveNum int64
					if improved {
						state.best = cloneCandidate(cand)
						state.bestMetrics = m
						improveNum = atomic.AddInt64(&improves, 1)
					}
					snapshot := cloneCandidate(state.best)
					snapshotM := state.bestMetrics
					state.mu.Unlock()

					if improved {
						fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%%\n", improveNum, evalNum, snapshotM.Score, snapshotM.Similarity*100.0)
						if cfg.checkpoint != nil && cfg.checkpointEvery > 0 && improveNum%int64(cfg.checkpointEvery) == 0 {
							outputMu.Lock()
							if err := cfg.checkpoint(snapshot, snapshotM, int(evalNum), time.Since(start).Seconds()); err != nil {
								fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
							}
							outputMu.Unlock()
						}
					}
					if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
						fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n", round, evalNum, time.Since(start).Seconds(), snapshotM.Score)
					}
					return m.Score
				}

				if _, err := runMayfly(mc); err != nil {
					fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
				}
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	return &optimizationResult{
		best:        cloneCandidate(state.best),
		bestMetrics: state.bestMetrics,
		evals:       int(atomic.LoadInt64(&evals)),
		elapsed:     time.Since(start).Seconds(),
	}, nil
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.bestMetrics.Score
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// NC/2 parent pairs are drawn from both populations.
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

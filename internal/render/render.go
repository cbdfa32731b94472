// Package render drives a Synth offline for the command-line tools.
package render

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/synth"
)

const DefaultBlockSize = 128

// Options describes one offline render: a chord (optionally strummed)
// held for ReleaseAfter seconds.
type Options struct {
	Notes    []uint8
	Velocity float32
	Channel  uint8
	// Strum delays each successive note by this many seconds.
	Strum        float64
	ReleaseAfter float64

	// Duration is the fixed render length used when DecayDBFS is +Inf.
	Duration float64
	// DecayDBFS enables auto-stop once the block RMS stays below it for
	// DecayHoldBlocks blocks, bounded by MinDuration and MaxDuration.
	DecayDBFS       float64
	DecayHoldBlocks int
	MinDuration     float64
	MaxDuration     float64

	BlockSize int
}

// DefaultOptions renders A4 at velocity 0.8 for two seconds.
func DefaultOptions() Options {
	return Options{
		Notes:           []uint8{69},
		Velocity:        0.8,
		ReleaseAfter:    1.0,
		Duration:        2.0,
		DecayDBFS:       math.Inf(1),
		DecayHoldBlocks: 6,
		MinDuration:     0.5,
		MaxDuration:     20,
		BlockSize:       DefaultBlockSize,
	}
}

type timedEvent struct {
	frame int
	ev    synth.Event
}

// Notes renders the configured notes on s and returns interleaved stereo
// frames. s is reset first.
func Notes(s *synth.Synth, o Options) ([]float32, error) {
	if len(o.Notes) == 0 {
		return nil, fmt.Errorf("no notes to render")
	}
	if o.BlockSize < 1 {
		o.BlockSize = DefaultBlockSize
	}
	if o.DecayHoldBlocks < 1 {
		o.DecayHoldBlocks = 1
	}
	sr := float64(s.SampleRate())
	s.Reset()

	schedule := make([]timedEvent, 0, 2*len(o.Notes))
	for i, n := range o.Notes {
		on := int(math.Max(0, o.Strum) * float64(i) * sr)
		off := on + int(math.Max(0, o.ReleaseAfter)*sr)
		schedule = append(schedule,
			timedEvent{on, synth.NoteOn(0, o.Channel, n, o.Velocity)},
			timedEvent{off, synth.NoteOff(0, o.Channel, n)},
		)
	}

	autoStop := !math.IsInf(o.DecayDBFS, 1)
	maxFrames := max(int(sr*o.Duration), 1)
	minFrames := 0
	if autoStop {
		minFrames = int(sr * o.MinDuration)
		maxFrames = max(int(sr*o.MaxDuration), minFrames, o.BlockSize)
	}
	threshold := math.Pow(10.0, o.DecayDBFS/20.0)

	out := make([]float32, 0, min(maxFrames, max(minFrames, o.BlockSize))*2)
	events := make([]synth.Event, 0, len(schedule))
	below := 0
	for pos := 0; pos < maxFrames; {
		n := min(o.BlockSize, maxFrames-pos)
		events = events[:0]
		for _, te := range schedule {
			if te.frame >= pos && te.frame < pos+n {
				ev := te.ev
				ev.Offset = te.frame - pos
				events = append(events, ev)
			}
		}
		block := s.Process(events, n)
		out = append(out, block...)
		pos += n

		if autoStop && pos >= minFrames {
			if audioio.StereoRMS(block) < threshold {
				below++
				if below >= o.DecayHoldBlocks {
					break
				}
			} else {
				below = 0
			}
		}
	}
	return out, nil
}

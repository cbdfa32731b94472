package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/internal/render"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/synth"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

func main() {
	notes := flag.String("notes", "69", "Comma-separated MIDI notes played as a chord (69 = A4 = 440 Hz)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (1-127)")
	strum := flag.Float64("strum", 0, "Delay between successive chord notes in seconds")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when stereo block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (default: built-in preset)")
	tablePath := flag.String("wavetable", "", "Wavetable WAV path override (optional)")
	sliceLen := flag.Int("slice-len", 0, "Wavetable slice length override (default: preset value)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	p := preset.NewDefault()
	if *presetPath != "" {
		var err error
		p, err = preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *tablePath != "" {
		p.Wavetable.Path = *tablePath
	}
	if *sliceLen > 0 {
		p.Wavetable.SliceLen = *sliceLen
	}

	chord, err := parseNotes(*notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -notes: %v\n", err)
		os.Exit(1)
	}
	if *velocity < 1 || *velocity > 127 {
		fmt.Fprintf(os.Stderr, "velocity must be in [1, 127]\n")
		os.Exit(1)
	}

	table := wavetable.NewHandle(nil)
	tableName := "built-in"
	if p.Wavetable.Path != "" {
		w, err := wavetable.LoadWAV(p.Wavetable.Path, p.Wavetable.SliceLen, p.Wavetable.BuildOptions()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading wavetable: %v\n", err)
			os.Exit(1)
		}
		table.Store(w)
		tableName = fmt.Sprintf("%s (%d slices)", p.Wavetable.Path, w.Slices())
	}

	s, err := synth.NewSynth(*sampleRate, p.Params, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating synth: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendering notes %v, velocity %d at %d Hz (wavetable: %s)...\n", chord, *velocity, *sampleRate, tableName)

	opts := render.DefaultOptions()
	opts.Notes = chord
	opts.Velocity = float32(*velocity) / 127
	opts.Strum = *strum
	opts.ReleaseAfter = *releaseAfter
	opts.Duration = *duration
	opts.DecayDBFS = *decayDBFS
	opts.DecayHoldBlocks = *decayHoldBlocks
	opts.MinDuration = *minDuration
	opts.MaxDuration = *maxDuration

	samples, err := render.Notes(s, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}
	frames := len(samples) / 2
	if !math.IsInf(*decayDBFS, 1) {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", frames, float64(frames)/float64(*sampleRate), *decayDBFS)
	}

	if err := audioio.WriteStereoInterleavedWAV(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames, peak %.3f, rms %.4f)\n", *output, frames, s.Peak(), audioio.StereoRMS(samples))
}

func parseNotes(raw string) ([]uint8, error) {
	parts := strings.Split(raw, ",")
	out := make([]uint8, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a note number", part)
		}
		if n < 0 || n > 127 {
			return nil, fmt.Errorf("note %d out of range [0, 127]", n)
		}
		out = append(out, uint8(n))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return out, nil
}

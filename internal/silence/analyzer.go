// Package silence detects quiet stretches in decoded audio and turns
// per-track findings into a cross-track removal plan.
package silence

import (
	"math"

	"github.com/petems/trackdeck/internal/interval"
)

// WindowSeconds is the fixed RMS window length.
const WindowSeconds = 0.05

// Config controls what counts as silence.
type Config struct {
	// Threshold is the RMS level below which a window is quiet.
	Threshold float64
	// MinDuration is the shortest quiet run reported, in seconds.
	// Zero means every quiet window is reported.
	MinDuration float64
	// Padding is the margin kept on both sides of a cut, in seconds.
	Padding float64
}

// DefaultConfig matches the tuning the cleanup pipeline ships with.
func DefaultConfig() Config {
	return Config{
		Threshold:   0.01,
		MinDuration: 1.5,
		Padding:     0.3,
	}
}

// Report holds the silence intervals found in one track, sorted by start
// and non-overlapping.
type Report struct {
	Intervals []interval.Interval
}

// Analyze scans a mono sample buffer for quiet runs. The buffer is
// partitioned into fixed 50ms windows; a window is quiet when its RMS is
// below cfg.Threshold, and consecutive quiet windows form a run. Runs
// shorter than cfg.MinDuration are discarded. A run still open at buffer
// end is emitted under the same duration test.
func Analyze(samples []float32, sampleRate int, cfg Config) Report {
	if len(samples) == 0 || sampleRate <= 0 {
		return Report{}
	}

	windowSize := int(float64(sampleRate) * WindowSeconds)
	if windowSize < 1 {
		windowSize = 1
	}

	var (
		intervals []interval.Interval
		inRun     bool
		runStart  float64
	)

	endRun := func(runEnd float64) {
		if !inRun {
			return
		}
		inRun = false
		// MinDuration of zero means every quiet window counts.
		if cfg.MinDuration <= 0 || runEnd-runStart >= cfg.MinDuration {
			if runStart < runEnd {
				intervals = append(intervals, interval.Interval{Start: runStart, End: runEnd})
			}
		}
	}

	for off := 0; off < len(samples); off += windowSize {
		end := off + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		t := float64(off) / float64(sampleRate)
		if rms(samples[off:end]) < cfg.Threshold {
			if !inRun {
				inRun = true
				runStart = t
			}
		} else {
			endRun(t)
		}
	}
	endRun(float64(len(samples)) / float64(sampleRate))

	return Report{Intervals: intervals}
}

func rms(window []float32) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, s := range window {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(window)))
}

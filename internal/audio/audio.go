// Package audio defines the live capture boundary: sources that deliver
// PCM frames and the sample parameters the rest of the pipeline assumes.
package audio

import "context"

const (
	// DefaultSampleRate is the capture and mixdown rate.
	DefaultSampleRate = 44100
	// BitDepth of every persisted sample.
	BitDepth = 16
)

// Source delivers live PCM frames from one participant. Frames are
// interleaved float32 in [-1, 1], pushed to out in capture order until
// ctx is cancelled or the stream ends. A Source closes out when the
// stream ends on its own (participant left, device unplugged).
type Source interface {
	Start(ctx context.Context, sampleRate int, out chan<- []float32) error
	Channels() int
	Close() error
}

// Device describes an available audio input.
type Device struct {
	ID      string
	Name    string
	Default bool
}

// DownmixInterleaved merges interleaved multi-channel frames to mono by
// averaging channels. A mono input is copied, never aliased.
func DownmixInterleaved(samples []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	frames := len(samples) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[f*channels+c]
		}
		out[f] = sum / float32(channels)
	}
	return out
}

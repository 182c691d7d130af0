// Package export mixes finalized track files down to one delivery file
// through FFmpeg. This package decides the exact input list, merge
// instruction, and encode parameters; FFmpeg does the actual work.
package export

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ErrEmptyInput reports an export job with no input files.
var ErrEmptyInput = errors.New("export: no input files")

// ErrUnknownFormat reports a format outside the supported table.
var ErrUnknownFormat = errors.New("export: unknown format")

// TranscodeError wraps a failed FFmpeg run with its output, surfaced
// verbatim to the caller.
type TranscodeError struct {
	Output string
	Err    error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("export: transcode failed: %v\n%s", e.Err, e.Output)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// Format is a supported delivery format.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatM4A Format = "m4a"
	FormatWAV Format = "wav"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatMP3:
		return FormatMP3, nil
	case FormatM4A:
		return FormatM4A, nil
	case FormatWAV:
		return FormatWAV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Job describes one export: at least one input file, an output path,
// and a target format. Created on the user's export action, consumed
// once.
type Job struct {
	Inputs     []string
	OutputPath string
	Format     Format
}

// Encode parameters are fixed per format, not configurable per call.
var codecArgs = map[Format][]string{
	FormatMP3: {"-codec:a", "libmp3lame", "-b:a", "192k"},
	FormatM4A: {"-codec:a", "aac", "-b:a", "192k"},
	FormatWAV: {"-codec:a", "pcm_s16le"},
}

// Runner executes the external transcoding utility.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Exporter drives FFmpeg export jobs.
type Exporter struct {
	runner Runner
	log    zerolog.Logger
}

// New returns an Exporter that shells out to ffmpeg.
func New(log zerolog.Logger) *Exporter {
	return NewWithRunner(execRunner{}, log)
}

// NewWithRunner injects the process runner; tests use this to capture
// the argument list instead of spawning FFmpeg.
func NewWithRunner(r Runner, log zerolog.Logger) *Exporter {
	return &Exporter{runner: r, log: log}
}

// CheckFFmpeg verifies the transcoder is installed.
func (e *Exporter) CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH: %w", err)
	}
	return nil
}

// Export runs the job and returns the output path. A single input is
// re-encoded as-is; multiple inputs are amplitude-merged into one
// stream before encoding, never concatenated end to end.
func (e *Exporter) Export(job Job) (string, error) {
	args, err := BuildArgs(job)
	if err != nil {
		return "", err
	}

	e.log.Info().
		Int("inputs", len(job.Inputs)).
		Str("format", string(job.Format)).
		Str("output", job.OutputPath).
		Msg("Export starting")

	out, err := e.runner.Run("ffmpeg", args...)
	if err != nil {
		return "", &TranscodeError{Output: string(out), Err: err}
	}

	e.log.Info().Str("output", job.OutputPath).Msg("Export complete")
	return job.OutputPath, nil
}

// BuildArgs translates a job into the FFmpeg argument list.
func BuildArgs(job Job) ([]string, error) {
	if len(job.Inputs) == 0 {
		return nil, ErrEmptyInput
	}
	codec, ok := codecArgs[job.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, job.Format)
	}

	var args []string
	for _, in := range job.Inputs {
		args = append(args, "-i", in)
	}

	if n := len(job.Inputs); n > 1 {
		filter := fmt.Sprintf("amix=inputs=%d:duration=longest:dropout_transition=0[mix]", n)
		args = append(args, "-filter_complex", filter, "-map", "[mix]")
	}

	args = append(args, codec...)
	args = append(args, "-ac", "2", "-ar", "44100")
	args = append(args, "-loglevel", "error", "-y", job.OutputPath)
	return args, nil
}

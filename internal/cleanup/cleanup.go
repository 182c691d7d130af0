// Package cleanup removes cross-track dead air from a set of recorded
// track files: decode, analyze each track for silence, intersect the
// findings, cut, and rewrite.
package cleanup

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/petems/trackdeck/internal/interval"
	"github.com/petems/trackdeck/internal/silence"
	"github.com/petems/trackdeck/internal/store"
	"github.com/petems/trackdeck/internal/wav"
)

// EditedSuffix is appended to the base name of every rewritten file, so
// originals survive until the user deletes them.
const EditedSuffix = "_edited"

// Result reports what a cleanup run did.
type Result struct {
	// Plan is the dead-air removal plan that was applied.
	Plan silence.Plan
	// Edited maps each input path to the rewritten file, when cuts were
	// applied.
	Edited map[string]string
	// Warnings holds per-file decode failures. An unreadable track is
	// treated as "never silent", which empties the plan rather than
	// blocking cleanup; the caller sees why here.
	Warnings map[string]error
	// RemovedSeconds is the total duration cut from each track.
	RemovedSeconds float64
}

// Pipeline runs dead-air cleanup over finalized track files.
type Pipeline struct {
	cfg   silence.Config
	files *store.Store
	log   zerolog.Logger
}

// New builds a cleanup pipeline with the given silence tuning.
func New(cfg silence.Config, files *store.Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, files: files, log: log}
}

// Run analyzes every track, computes the cross-track dead-air plan, and
// rewrites each readable track with the plan's ranges removed. Tracks
// are analyzed concurrently; they share nothing.
func (p *Pipeline) Run(paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("cleanup: no track files given")
	}

	result := &Result{
		Edited:   make(map[string]string),
		Warnings: make(map[string]error),
	}

	buffers := make([]*wav.Buffer, len(paths))
	reports := make([]silence.Report, len(paths))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			buf, err := wav.DecodeFile(path)
			if err != nil {
				p.log.Warn().Err(err).Str("file", path).Msg("Track unreadable, assuming no silence")
				mu.Lock()
				result.Warnings[path] = err
				mu.Unlock()
				return
			}
			buffers[i] = buf
			reports[i] = silence.Analyze(buf.FirstChannel(), buf.SampleRate, p.cfg)
		}(i, path)
	}
	wg.Wait()

	result.Plan = silence.Aggregate(reports, p.cfg.Padding)
	if result.Plan.Empty() {
		p.log.Info().Int("tracks", len(paths)).Msg("No dead air found")
		return result, nil
	}

	for _, cut := range result.Plan.Cuts {
		result.RemovedSeconds += cut.Duration()
	}
	p.log.Info().
		Int("cuts", len(result.Plan.Cuts)).
		Float64("seconds", result.RemovedSeconds).
		Msg("Applying dead-air cuts")

	for i, path := range paths {
		if buffers[i] == nil {
			continue
		}
		buf := buffers[i]
		edited := RemoveRanges(buf.Samples, buf.Channels, buf.SampleRate, result.Plan.Cuts)
		outPath := editedPath(path)
		data := wav.Encode(edited, buf.SampleRate, buf.Channels)
		if _, err := p.files.Write(filepath.Dir(outPath), filepath.Base(outPath), data); err != nil {
			return result, fmt.Errorf("cleanup: rewriting %s: %w", path, err)
		}
		result.Edited[path] = outPath
	}
	return result, nil
}

// RemoveRanges cuts the given time ranges out of an interleaved sample
// buffer. Cuts are applied from the latest range to the earliest:
// removing an earlier range would shift every later timestamp.
func RemoveRanges(samples []float32, channels, sampleRate int, cuts []interval.Interval) []float32 {
	if channels < 1 {
		channels = 1
	}
	out := append([]float32(nil), samples...)

	ordered := append([]interval.Interval(nil), cuts...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	frames := len(samples) / channels
	for _, cut := range ordered {
		start := int(cut.Start * float64(sampleRate))
		end := int(cut.End * float64(sampleRate))
		if start < 0 {
			start = 0
		}
		if end > frames {
			end = frames
		}
		if start >= end {
			continue
		}
		out = append(out[:start*channels], out[end*channels:]...)
		frames -= end - start
	}
	return out
}

func editedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + EditedSuffix + ext
}

// Package recorder implements per-participant capture and the session
// that coordinates every participant's lifecycle.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/trackdeck/internal/audio"
	"github.com/petems/trackdeck/internal/wav"
)

var (
	// ErrInvalidStateTransition reports a lifecycle call made from a
	// state that forbids it. Always a caller defect, never retried.
	ErrInvalidStateTransition = errors.New("recorder: invalid state transition")
	// ErrCaptureFailure reports a live stream that failed mid-session.
	ErrCaptureFailure = errors.New("recorder: capture failure")
	// ErrFlushTimeout reports a stop whose flush never completed.
	ErrFlushTimeout = errors.New("recorder: flush timed out")
)

// State of a single track recorder.
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ID identifies one participant's track for the lifetime of a session.
type ID string

// NewID returns a fresh track identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Short returns the first six characters of the id, used in filenames.
func (id ID) Short() string {
	s := string(id)
	if len(s) > 6 {
		s = s[:6]
	}
	return s
}

// FinalizedTrack is the complete encoded audio of one participant.
// Encoded holds the concatenated chunk payload: interleaved 16-bit LE
// PCM with no container header. Ownership transfers to whoever persists
// it.
type FinalizedTrack struct {
	ID          ID
	DisplayName string
	Encoded     []byte
	SampleRate  int
	Channels    int
}

// WAV wraps the encoded payload in a RIFF container.
func (t *FinalizedTrack) WAV() []byte {
	out := make([]byte, 0, 44+len(t.Encoded))
	out = append(out, wav.Header(len(t.Encoded), t.SampleRate, t.Channels)...)
	out = append(out, t.Encoded...)
	return out
}

// DefaultChunkInterval is the encoder's delivery cadence.
const DefaultChunkInterval = time.Second

// Options configures one TrackRecorder. MonoDownmix merges the source's
// channels to one before encoding; it cannot be changed after
// construction.
type Options struct {
	ID            ID
	DisplayName   string
	Source        audio.Source
	SampleRate    int
	MonoDownmix   bool
	ChunkInterval time.Duration
	Logger        zerolog.Logger
}

type stopResult struct {
	track *FinalizedTrack
	err   error
}

// TrackRecorder wraps one live stream and turns it into an ordered
// sequence of encoded chunks. Lifecycle:
//
//	Idle --Start--> Recording --Pause--> Paused --Resume--> Recording --Stop--> Stopped
//
// Stop is also valid from Paused. A stopped (or never-started) recorder
// cannot be restarted. All lifecycle methods must be called by the
// owning Session only.
type TrackRecorder struct {
	id         ID
	name       string
	src        audio.Source
	sampleRate int
	channels   int
	mono       bool
	chunkEvery time.Duration
	log        zerolog.Logger

	mu         sync.Mutex
	state      State
	stopping   bool
	chunks     [][]byte
	captureErr error
	result     *stopResult

	cancel context.CancelFunc
	stopCh chan struct{}
	done   chan struct{}
}

// New builds an Idle recorder for the given live source.
func New(opts Options) *TrackRecorder {
	if opts.ID == "" {
		opts.ID = NewID()
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}
	if opts.ChunkInterval <= 0 {
		opts.ChunkInterval = DefaultChunkInterval
	}
	channels := 1
	if opts.Source != nil {
		channels = opts.Source.Channels()
	}
	if opts.MonoDownmix {
		channels = 1
	}
	return &TrackRecorder{
		id:         opts.ID,
		name:       opts.DisplayName,
		src:        opts.Source,
		sampleRate: opts.SampleRate,
		channels:   channels,
		mono:       opts.MonoDownmix,
		chunkEvery: opts.ChunkInterval,
		log:        opts.Logger.With().Str("track", string(opts.ID)).Logger(),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// ID returns the track identifier.
func (r *TrackRecorder) ID() ID { return r.id }

// DisplayName returns the participant's display name.
func (r *TrackRecorder) DisplayName() string { return r.name }

// State returns the current lifecycle state.
func (r *TrackRecorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins capturing and encoding the live stream. The encoder
// delivers a chunk on every tick of the configured cadence rather than
// all at once.
func (r *TrackRecorder) Start() error {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidStateTransition, state)
	}
	if r.src == nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: no source", ErrCaptureFailure)
	}
	r.state = StateRecording
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan []float32, 16)
	if err := r.src.Start(ctx, r.sampleRate, frames); err != nil {
		cancel()
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrCaptureFailure, err)
	}
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.log.Info().Str("name", r.name).Msg("Track recording started")
	go r.pump(frames)
	return nil
}

// Pause suspends chunk delivery. Chunks already buffered are kept.
func (r *TrackRecorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording || r.stopping {
		return fmt.Errorf("%w: pause from %s", ErrInvalidStateTransition, r.state)
	}
	r.state = StatePaused
	r.log.Info().Msg("Track paused")
	return nil
}

// Resume continues chunk delivery after a pause.
func (r *TrackRecorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused || r.stopping {
		return fmt.Errorf("%w: resume from %s", ErrInvalidStateTransition, r.state)
	}
	r.state = StateRecording
	r.log.Info().Msg("Track resumed")
	return nil
}

// Stop signals the encoder to flush. Completion is asynchronous: the
// finalized track is available through Result once Done is closed. Stop
// is valid exactly once, from Recording or Paused.
func (r *TrackRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopping || (r.state != StateRecording && r.state != StatePaused) {
		return fmt.Errorf("%w: stop from %s", ErrInvalidStateTransition, r.state)
	}
	r.stopping = true
	close(r.stopCh)
	return nil
}

// Stopping reports whether a stop has been requested.
func (r *TrackRecorder) Stopping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopping
}

// Done is closed once the flush has completed and Result is valid.
func (r *TrackRecorder) Done() <-chan struct{} { return r.done }

// Result returns the finalized track once Done is closed. Both the
// track and a capture error may be non-nil: audio buffered before a
// mid-session failure is still salvaged.
func (r *TrackRecorder) Result() (*FinalizedTrack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return nil, fmt.Errorf("%w: result before flush completed", ErrInvalidStateTransition)
	}
	return r.result.track, r.result.err
}

// pump consumes live frames, cuts a chunk on every cadence tick, and
// finalizes on stop. It is the only goroutine that appends chunks, so
// chunk order matches arrival order exactly.
func (r *TrackRecorder) pump(frames <-chan []float32) {
	ticker := time.NewTicker(r.chunkEvery)
	defer ticker.Stop()

	var pending []float32
	for {
		select {
		case <-r.stopCh:
			r.finalize(pending)
			return

		case frame, ok := <-frames:
			if !ok {
				// Stream ended without a stop: capture failure for
				// this track only. Keep waiting for the stop signal so
				// buffered audio is still finalized.
				r.mu.Lock()
				if r.captureErr == nil && !r.stopping {
					r.captureErr = ErrCaptureFailure
				}
				r.mu.Unlock()
				r.log.Warn().Msg("Live stream ended before stop")
				frames = nil
				continue
			}
			if r.State() != StateRecording {
				// Paused: delivery is suspended, frames are dropped.
				continue
			}
			if r.mono {
				frame = audio.DownmixInterleaved(frame, r.src.Channels())
			}
			pending = append(pending, frame...)

		case <-ticker.C:
			if r.State() != StateRecording || len(pending) == 0 {
				continue
			}
			r.appendChunk(wav.EncodeData(pending))
			pending = pending[:0]
		}
	}
}

func (r *TrackRecorder) appendChunk(chunk []byte) {
	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.mu.Unlock()
}

// finalize flushes the remaining samples, concatenates every chunk in
// arrival order, and publishes the result.
func (r *TrackRecorder) finalize(pending []float32) {
	if len(pending) > 0 {
		r.appendChunk(wav.EncodeData(pending))
	}

	r.mu.Lock()
	total := 0
	for _, c := range r.chunks {
		total += len(c)
	}
	encoded := make([]byte, 0, total)
	for _, c := range r.chunks {
		encoded = append(encoded, c...)
	}
	track := &FinalizedTrack{
		ID:          r.id,
		DisplayName: r.name,
		Encoded:     encoded,
		SampleRate:  r.sampleRate,
		Channels:    r.channels,
	}
	r.state = StateStopped
	r.result = &stopResult{track: track, err: r.captureErr}
	chunkCount := len(r.chunks)
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.log.Info().Int("bytes", total).Int("chunks", chunkCount).Msg("Track finalized")
	close(r.done)
}

package recorder

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultFlushTimeout bounds how long StopAll waits for any one track's
// flush before reporting it failed.
const DefaultFlushTimeout = 10 * time.Second

// SessionConfig configures a recording session.
type SessionConfig struct {
	Name         string
	FlushTimeout time.Duration
	Logger       zerolog.Logger
}

// Outcome is the result of stopping a session. A track id can appear in
// both maps: a capture failure mid-session still salvages the audio
// buffered before the failure.
type Outcome struct {
	Tracks map[ID]*FinalizedTrack
	Errors map[ID]error
}

// Session owns a set of TrackRecorders keyed by track id and is the
// only component allowed to drive their lifecycles. Participants can
// join while the session is idle or live; a late joiner is started
// immediately.
type Session struct {
	name         string
	flushTimeout time.Duration
	log          zerolog.Logger

	mu        sync.Mutex
	state     State
	recorders map[ID]*TrackRecorder
	outcome   *Outcome
}

// NewSession builds an idle session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	return &Session{
		name:         cfg.Name,
		flushTimeout: cfg.FlushTimeout,
		log:          cfg.Logger.With().Str("session", cfg.Name).Logger(),
		recorders:    make(map[ID]*TrackRecorder),
	}
}

// Name returns the session name used in persisted filenames.
func (s *Session) Name() string { return s.name }

// State returns the session-level lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of owned recorders.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recorders)
}

// AddTrack hands a recorder to the session. Valid while the session is
// Idle or Recording; when the session is already live the new track is
// started immediately so a late joiner misses as little as possible.
func (s *Session) AddTrack(r *TrackRecorder) error {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: add track while session %s", ErrInvalidStateTransition, state)
	}
	if _, exists := s.recorders[r.ID()]; exists {
		s.mu.Unlock()
		return fmt.Errorf("track %s already in session", r.ID())
	}
	s.recorders[r.ID()] = r
	live := s.state == StateRecording
	s.mu.Unlock()

	s.log.Info().Str("track", string(r.ID())).Str("name", r.DisplayName()).Msg("Track added")
	if live {
		if err := r.Start(); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTrack handles a participant leaving mid-session. The recorder
// is stopped so its audio flushes, but it stays owned by the session:
// StopAll still collects its finalized track.
func (s *Session) RemoveTrack(id ID) error {
	s.mu.Lock()
	r, ok := s.recorders[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("track %s not in session", id)
	}

	state := r.State()
	if state == StateRecording || state == StatePaused {
		if err := r.Stop(); err != nil {
			return err
		}
	}
	s.log.Info().Str("track", string(id)).Msg("Track removed, flushing")
	return nil
}

// StartAll starts every recorder that is still idle. The boundary is
// intentionally not atomic: one bad source must not block the others,
// so failures are returned per track id and the rest keep recording.
// While the session is paused, a freshly started recorder is paused
// right away so no track records against a paused session.
func (s *Session) StartAll() map[ID]error {
	s.mu.Lock()
	if s.outcome != nil {
		s.mu.Unlock()
		return map[ID]error{}
	}
	if s.state == StateIdle {
		s.state = StateRecording
	}
	paused := s.state == StatePaused
	recorders := s.snapshot()
	s.mu.Unlock()

	failures := make(map[ID]error)
	for id, r := range recorders {
		if r.State() != StateIdle {
			continue
		}
		if err := r.Start(); err != nil {
			s.log.Error().Err(err).Str("track", string(id)).Msg("Track failed to start")
			failures[id] = err
			continue
		}
		if paused {
			if err := r.Pause(); err != nil {
				s.log.Warn().Err(err).Str("track", string(id)).Msg("Pause after start skipped")
			}
		}
	}
	return failures
}

// PauseAll pauses every recording track. Tracks already paused (or
// stopped) are left untouched.
func (s *Session) PauseAll() {
	s.mu.Lock()
	if s.state == StateRecording {
		s.state = StatePaused
	}
	recorders := s.snapshot()
	s.mu.Unlock()

	for _, r := range recorders {
		if r.State() != StateRecording {
			continue
		}
		if err := r.Pause(); err != nil {
			s.log.Warn().Err(err).Str("track", string(r.ID())).Msg("Pause skipped")
		}
	}
}

// ResumeAll resumes every paused track. Tracks already recording are
// left untouched.
func (s *Session) ResumeAll() {
	s.mu.Lock()
	if s.state == StatePaused {
		s.state = StateRecording
	}
	recorders := s.snapshot()
	s.mu.Unlock()

	for _, r := range recorders {
		if r.State() != StatePaused {
			continue
		}
		if err := r.Resume(); err != nil {
			s.log.Warn().Err(err).Str("track", string(r.ID())).Msg("Resume skipped")
		}
	}
}

// StopAll stops every active recorder and waits for all of their
// flushes to complete, bounded by the flush timeout per barrier. It is
// idempotent: a second call returns the same outcome without touching
// the recorders again. Callers must check both the track map and the
// error map, since one track's failure never discards the others.
func (s *Session) StopAll() *Outcome {
	s.mu.Lock()
	if s.outcome != nil {
		cached := s.outcome
		s.mu.Unlock()
		return cached
	}
	s.state = StateStopped
	recorders := s.snapshot()
	s.mu.Unlock()

	outcome := &Outcome{
		Tracks: make(map[ID]*FinalizedTrack),
		Errors: make(map[ID]error),
	}

	// Issue stop signals first so every flush runs concurrently.
	waiting := make(map[ID]*TrackRecorder)
	for id, r := range recorders {
		switch {
		case r.Stopping():
			// Already flushing (or flushed), e.g. a removed track.
			waiting[id] = r
		case r.State() == StateRecording || r.State() == StatePaused:
			if err := r.Stop(); err != nil {
				outcome.Errors[id] = err
				continue
			}
			waiting[id] = r
		default:
			// Never started; nothing to flush.
			s.log.Warn().Str("track", string(id)).Msg("Track never started, skipping")
		}
	}

	// Barrier: join every outstanding completion, none silently dropped.
	// The deadline is absolute and shared, but each wait gets its own
	// timer: a timer channel fires once, so reusing one across tracks
	// would let only the first hung track time out.
	deadline := time.Now().Add(s.flushTimeout)
	for id, r := range waiting {
		var timedOut bool
		select {
		case <-r.Done():
		default:
			timer := time.NewTimer(time.Until(deadline))
			select {
			case <-r.Done():
			case <-timer.C:
				timedOut = true
			}
			timer.Stop()
		}
		if timedOut {
			// A hung flush must not hang the whole session.
			s.log.Error().Str("track", string(id)).Msg("Flush timed out")
			outcome.Errors[id] = ErrFlushTimeout
			continue
		}
		track, err := r.Result()
		if track != nil {
			outcome.Tracks[id] = track
		}
		if err != nil {
			outcome.Errors[id] = err
		}
	}

	s.mu.Lock()
	s.outcome = outcome
	s.mu.Unlock()

	s.log.Info().
		Int("tracks", len(outcome.Tracks)).
		Int("failures", len(outcome.Errors)).
		Msg("Session stopped")
	return outcome
}

// snapshot copies the recorder map. Callers must hold s.mu.
func (s *Session) snapshot() map[ID]*TrackRecorder {
	out := make(map[ID]*TrackRecorder, len(s.recorders))
	for id, r := range s.recorders {
		out[id] = r
	}
	return out
}

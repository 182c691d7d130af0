// Package app wires the capture session to its collaborators: the peer
// transport, the host microphone, and the persistence layer.
package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/trackdeck/internal/audio"
	"github.com/petems/trackdeck/internal/config"
	"github.com/petems/trackdeck/internal/recorder"
	"github.com/petems/trackdeck/internal/store"
	"github.com/petems/trackdeck/internal/transport"
)

// HostDisplayName labels the host's own microphone track.
const HostDisplayName = "Host"

type Config struct {
	Transport transport.Transport
	Store     *store.Store
	Config    *config.Config
	Logger    zerolog.Logger
}

// SessionResult is what a finished session leaves on disk.
type SessionResult struct {
	// Paths of the persisted per-track WAV files.
	Paths []string
	// Failed maps track ids to the capture or flush error that hit
	// them. A track can appear in both: buffered audio salvaged from a
	// failed track is still persisted.
	Failed map[recorder.ID]error
}

// App owns one recording session at a time and applies participant
// join/leave events from the transport to it.
type App struct {
	tr    transport.Transport
	files *store.Store
	cfg   *config.Config
	log   zerolog.Logger

	mu      sync.Mutex
	session *recorder.Session
}

func New(cfg Config) *App {
	return &App{
		tr:    cfg.Transport,
		files: cfg.Store,
		cfg:   cfg.Config,
		log:   cfg.Logger,
	}
}

// StartSession begins a new multi-track session with the host mic as
// the first track and starts following transport events. Remote
// participants already connected arrive through the same join events as
// late joiners.
func (a *App) StartSession(name string, host audio.Source) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil && a.session.State() != recorder.StateStopped {
		return fmt.Errorf("session %q still active", a.session.Name())
	}

	session := recorder.NewSession(recorder.SessionConfig{
		Name:         name,
		FlushTimeout: time.Duration(a.cfg.Session.FlushTimeoutSeconds) * time.Second,
		Logger:       a.log,
	})

	hostRec := recorder.New(recorder.Options{
		DisplayName:   HostDisplayName,
		Source:        host,
		SampleRate:    a.cfg.Audio.SampleRate,
		MonoDownmix:   a.cfg.Audio.MonoDownmix,
		ChunkInterval: time.Duration(a.cfg.Audio.ChunkIntervalMS) * time.Millisecond,
		Logger:        a.log,
	})
	if err := session.AddTrack(hostRec); err != nil {
		return err
	}

	if failures := session.StartAll(); len(failures) > 0 {
		// The host mic is the one stream worth aborting over.
		if err, ok := failures[hostRec.ID()]; ok {
			return fmt.Errorf("host microphone: %w", err)
		}
	}

	a.session = session
	go a.followTransport(session)

	a.log.Info().Str("session", name).Msg("Session started")
	return nil
}

// followTransport applies join/leave events to the session until the
// transport closes or the session stops accepting tracks.
func (a *App) followTransport(session *recorder.Session) {
	for ev := range a.tr.Events() {
		switch e := ev.(type) {
		case transport.PeerJoined:
			id := e.ID
			if id == "" {
				id = recorder.NewID()
			}
			rec := recorder.New(recorder.Options{
				ID:            id,
				DisplayName:   e.DisplayName,
				Source:        e.Stream,
				SampleRate:    a.cfg.Audio.SampleRate,
				MonoDownmix:   a.cfg.Audio.MonoDownmix,
				ChunkInterval: time.Duration(a.cfg.Audio.ChunkIntervalMS) * time.Millisecond,
				Logger:        a.log,
			})
			if err := session.AddTrack(rec); err != nil {
				a.log.Error().Err(err).Str("name", e.DisplayName).Msg("Could not add joining participant")
			}
		case transport.PeerLeft:
			if err := session.RemoveTrack(e.ID); err != nil {
				a.log.Warn().Err(err).Str("track", string(e.ID)).Msg("Leave for unknown track")
			}
		}
	}
}

// Pause suspends every track.
func (a *App) Pause() {
	if s := a.currentSession(); s != nil {
		s.PauseAll()
	}
}

// Resume continues every paused track.
func (a *App) Resume() {
	if s := a.currentSession(); s != nil {
		s.ResumeAll()
	}
}

// Recording reports whether a session is live.
func (a *App) Recording() bool {
	s := a.currentSession()
	return s != nil && (s.State() == recorder.StateRecording || s.State() == recorder.StatePaused)
}

// StopSession stops every track, waits for all flushes, and persists
// each finalized track as a WAV in the session's folder. Per-track
// failures are reported alongside the successfully persisted paths,
// never as a whole-session abort.
func (a *App) StopSession() (*SessionResult, error) {
	session := a.currentSession()
	if session == nil {
		return nil, fmt.Errorf("no active session")
	}

	outcome := session.StopAll()
	result := &SessionResult{Failed: make(map[recorder.ID]error, len(outcome.Errors))}
	for id, trackErr := range outcome.Errors {
		result.Failed[id] = trackErr
	}

	folder := filepath.Join(a.cfg.RecordingsDir, session.Name())
	for id, track := range outcome.Tracks {
		filename := store.TrackFilename(session.Name(), track.DisplayName, id.Short(), "wav")
		path, err := a.files.Write(folder, filename, track.WAV())
		if err != nil {
			a.log.Error().Err(err).Str("track", string(id)).Msg("Persist failed")
			result.Failed[id] = err
			continue
		}
		result.Paths = append(result.Paths, path)
	}

	a.log.Info().
		Int("persisted", len(result.Paths)).
		Int("failed", len(result.Failed)).
		Msg("Session persisted")
	return result, nil
}

// SessionFolder returns where the named session's tracks are persisted.
func (a *App) SessionFolder(name string) string {
	return filepath.Join(a.cfg.RecordingsDir, name)
}

func (a *App) currentSession() *recorder.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

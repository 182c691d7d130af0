package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/petems/trackdeck/internal/silence"
)

type Config struct {
	RecordingsDir string        `json:"recordings_dir"`
	LogLevel      string        `json:"log_level"`
	Audio         AudioConfig   `json:"audio"`
	Silence       SilenceConfig `json:"silence"`
	Export        ExportConfig  `json:"export"`
	Session       SessionConfig `json:"session"`
}

type AudioConfig struct {
	DeviceID    string `json:"device_id"`
	SampleRate  int    `json:"sample_rate"`
	MonoDownmix bool   `json:"mono_downmix"`
	// ChunkIntervalMS is the encoder delivery cadence in milliseconds.
	ChunkIntervalMS int `json:"chunk_interval_ms"`
}

type SilenceConfig struct {
	// Threshold is the RMS level below which a window counts as quiet.
	Threshold float64 `json:"threshold"`
	// MinSilenceDuration is the shortest reported quiet run, seconds.
	MinSilenceDuration float64 `json:"min_silence_duration"`
	// Padding is the silence kept on each side of a cut, seconds.
	Padding float64 `json:"padding"`
}

type ExportConfig struct {
	Format string `json:"format"` // "mp3", "m4a" or "wav"
}

type SessionConfig struct {
	FlushTimeoutSeconds int `json:"flush_timeout_seconds"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	cfg := &Config{
		RecordingsDir: defaultRecordingsDir(),
		LogLevel:      "info",
		Audio: AudioConfig{
			DeviceID:        "",
			SampleRate:      44100,
			MonoDownmix:     true,
			ChunkIntervalMS: 1000,
		},
		Silence: defaultSilence(),
		Export: ExportConfig{
			Format: "mp3",
		},
		Session: SessionConfig{
			FlushTimeoutSeconds: 10,
		},
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "trackdeck", "config.json")
}

// defaultSilence mirrors the analyzer's shipped tuning so the config
// file and the cleanup pipeline agree on defaults.
func defaultSilence() SilenceConfig {
	d := silence.DefaultConfig()
	return SilenceConfig{
		Threshold:          d.Threshold,
		MinSilenceDuration: d.MinDuration,
		Padding:            d.Padding,
	}
}

func defaultRecordingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recordings"
	}
	return filepath.Join(home, "trackdeck", "recordings")
}

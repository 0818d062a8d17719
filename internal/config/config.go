// Package config loads and validates godictate's YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Hotkey     HotkeyConfig     `yaml:"hotkey"`
	Audio      AudioConfig      `yaml:"audio"`
	Output     OutputConfig     `yaml:"output"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Paste      PasteConfig      `yaml:"paste"`
	Reformat   ReformatConfig   `yaml:"reformat"`
	StatusFile string           `yaml:"status_file"`
	LogLevel   string           `yaml:"log_level"`
}

// HotkeyConfig holds the recording toggle hotkey.
type HotkeyConfig struct {
	Keys []string `yaml:"keys"`
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   uint32 `yaml:"channels"`
	ChunkSize  uint32 `yaml:"chunk_size"` // samples per buffered frame
}

// OutputConfig holds the recording output location.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	File      string `yaml:"file"`
}

// Path returns the full output file path.
func (o OutputConfig) Path() string {
	return filepath.Join(o.Directory, o.File)
}

// TranscribeConfig holds speech-to-text settings.
type TranscribeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Backend   string `yaml:"backend"` // "server" or "openai"
	Model     string `yaml:"model"`
	Device    string `yaml:"device"` // "auto", "cpu" or "gpu"
	ServerURL string `yaml:"server_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// PasteConfig holds auto-paste settings.
type PasteConfig struct {
	Auto            bool    `yaml:"auto"`
	RestoreDelaySec float64 `yaml:"restore_delay"` // seconds before clipboard restore
}

// RestoreDelay returns the clipboard restore delay as a Duration.
func (p PasteConfig) RestoreDelay() time.Duration {
	return time.Duration(p.RestoreDelaySec * float64(time.Second))
}

// ReformatConfig holds the hold-to-reformat settings.
type ReformatConfig struct {
	Enabled         bool    `yaml:"enabled"`
	HoldKey         string  `yaml:"hold_key"`
	HoldDurationSec float64 `yaml:"hold_duration"` // seconds the key must be held
	Backend         string  `yaml:"backend"`       // "gemini" or "openai"
	Model           string  `yaml:"model"`
	APIKeyEnv       string  `yaml:"api_key_env"`
}

// HoldDuration returns the configured hold duration as a Duration.
func (r ReformatConfig) HoldDuration() time.Duration {
	return time.Duration(r.HoldDurationSec * float64(time.Second))
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "godictate")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "shift", "l"},
		},
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			ChunkSize:  1024,
		},
		Output: OutputConfig{
			Directory: "outputs",
			File:      "recording.wav",
		},
		Transcribe: TranscribeConfig{
			Enabled:   true,
			Backend:   "server",
			Model:     "base",
			Device:    "auto",
			ServerURL: "http://127.0.0.1:8300",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Paste: PasteConfig{
			Auto:            true,
			RestoreDelaySec: 0.5,
		},
		Reformat: ReformatConfig{
			Enabled:         false,
			HoldKey:         "ctrl",
			HoldDurationSec: 2.0,
			Backend:         "gemini",
			Model:           "gemini-2.0-flash",
			APIKeyEnv:       "GEMINI_API_KEY",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Output.Directory = expandTilde(cfg.Output.Directory)
	cfg.StatusFile = expandTilde(cfg.StatusFile)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}
	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}
	if c.Audio.ChunkSize == 0 {
		return fmt.Errorf("audio.chunk_size must be > 0")
	}

	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	if c.Output.File == "" {
		return fmt.Errorf("output.file must not be empty")
	}

	if c.Transcribe.Enabled {
		switch c.Transcribe.Backend {
		case "server":
			if c.Transcribe.ServerURL == "" {
				return fmt.Errorf("transcribe.server_url must not be empty for the server backend")
			}
		case "openai":
			if c.Transcribe.APIKeyEnv == "" {
				return fmt.Errorf("transcribe.api_key_env must not be empty for the openai backend")
			}
		default:
			return fmt.Errorf("transcribe.backend must be \"server\" or \"openai\", got %q", c.Transcribe.Backend)
		}

		switch c.Transcribe.Device {
		case "auto", "cpu", "gpu":
		default:
			return fmt.Errorf("transcribe.device must be \"auto\", \"cpu\" or \"gpu\", got %q", c.Transcribe.Device)
		}
	}

	if c.Paste.RestoreDelaySec < 0 {
		return fmt.Errorf("paste.restore_delay must be >= 0")
	}

	if c.Reformat.Enabled {
		if c.Reformat.HoldKey == "" {
			return fmt.Errorf("reformat.hold_key must not be empty")
		}
		if c.Reformat.HoldDurationSec <= 0 {
			return fmt.Errorf("reformat.hold_duration must be > 0")
		}
		switch c.Reformat.Backend {
		case "gemini", "openai":
		default:
			return fmt.Errorf("reformat.backend must be \"gemini\" or \"openai\", got %q", c.Reformat.Backend)
		}
		if c.Reformat.APIKeyEnv == "" {
			return fmt.Errorf("reformat.api_key_env must not be empty")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a config log level string to a slog.Level.
// Unknown values default to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WriteDefault writes a commented default config to the default path.
// It returns the written path, or ("", nil) if a config already exists.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(DefaultConfigDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshaling default config: %w", err)
	}

	header := "# godictate configuration\n# Edit values, then restart godictate.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return "", fmt.Errorf("writing default config: %w", err)
	}

	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

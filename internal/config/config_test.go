package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Hotkey.Keys) != 3 {
		t.Errorf("Hotkey.Keys length = %d, want 3", len(cfg.Hotkey.Keys))
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("Audio.SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Errorf("Audio.Channels = %d, want 1", cfg.Audio.Channels)
	}
	if cfg.Audio.ChunkSize != 1024 {
		t.Errorf("Audio.ChunkSize = %d, want 1024", cfg.Audio.ChunkSize)
	}
	if cfg.Output.Path() != filepath.Join("outputs", "recording.wav") {
		t.Errorf("Output.Path() = %q", cfg.Output.Path())
	}
	if !cfg.Transcribe.Enabled {
		t.Error("Transcribe.Enabled should default to true")
	}
	if cfg.Transcribe.Backend != "server" {
		t.Errorf("Transcribe.Backend = %q, want %q", cfg.Transcribe.Backend, "server")
	}
	if cfg.Transcribe.Device != "auto" {
		t.Errorf("Transcribe.Device = %q, want %q", cfg.Transcribe.Device, "auto")
	}
	if !cfg.Paste.Auto {
		t.Error("Paste.Auto should default to true")
	}
	if cfg.Reformat.Enabled {
		t.Error("Reformat.Enabled should default to false")
	}
	if cfg.Reformat.HoldDuration() != 2*time.Second {
		t.Errorf("Reformat.HoldDuration() = %v, want 2s", cfg.Reformat.HoldDuration())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
hotkey:
  keys: ["alt", "d"]
audio:
  sample_rate: 44100
  channels: 2
output:
  directory: /tmp/rec
  file: out.wav
transcribe:
  enabled: false
paste:
  auto: false
  restore_delay: 0.25
reformat:
  enabled: true
  hold_key: alt
  hold_duration: 1.5
  backend: openai
  api_key_env: MY_KEY
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Hotkey.Keys) != 2 || cfg.Hotkey.Keys[0] != "alt" || cfg.Hotkey.Keys[1] != "d" {
		t.Errorf("Hotkey.Keys = %v, want [alt d]", cfg.Hotkey.Keys)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("Audio.SampleRate = %d, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 2 {
		t.Errorf("Audio.Channels = %d, want 2", cfg.Audio.Channels)
	}
	// ChunkSize not set in the file, keeps its default
	if cfg.Audio.ChunkSize != 1024 {
		t.Errorf("Audio.ChunkSize = %d, want 1024", cfg.Audio.ChunkSize)
	}
	if cfg.Output.Path() != filepath.Join("/tmp/rec", "out.wav") {
		t.Errorf("Output.Path() = %q", cfg.Output.Path())
	}
	if cfg.Transcribe.Enabled {
		t.Error("Transcribe.Enabled = true, want false")
	}
	if cfg.Paste.Auto {
		t.Error("Paste.Auto = true, want false")
	}
	if cfg.Paste.RestoreDelay() != 250*time.Millisecond {
		t.Errorf("Paste.RestoreDelay() = %v, want 250ms", cfg.Paste.RestoreDelay())
	}
	if cfg.Reformat.HoldDuration() != 1500*time.Millisecond {
		t.Errorf("Reformat.HoldDuration() = %v, want 1.5s", cfg.Reformat.HoldDuration())
	}
	if cfg.Reformat.Backend != "openai" {
		t.Errorf("Reformat.Backend = %q, want %q", cfg.Reformat.Backend, "openai")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
output:
  directory: ~/recordings
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := filepath.Join(home, "recordings")
	if cfg.Output.Directory != expected {
		t.Errorf("Output.Directory = %q, want %q", cfg.Output.Directory, expected)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty hotkey keys",
			modify:  func(c *Config) { c.Hotkey.Keys = nil },
			wantErr: true,
		},
		{
			name:    "zero sample rate",
			modify:  func(c *Config) { c.Audio.SampleRate = 0 },
			wantErr: true,
		},
		{
			name:    "zero channels",
			modify:  func(c *Config) { c.Audio.Channels = 0 },
			wantErr: true,
		},
		{
			name:    "zero chunk size",
			modify:  func(c *Config) { c.Audio.ChunkSize = 0 },
			wantErr: true,
		},
		{
			name:    "empty output directory",
			modify:  func(c *Config) { c.Output.Directory = "" },
			wantErr: true,
		},
		{
			name:    "unknown transcribe backend",
			modify:  func(c *Config) { c.Transcribe.Backend = "invalid" },
			wantErr: true,
		},
		{
			name: "server backend without url",
			modify: func(c *Config) {
				c.Transcribe.Backend = "server"
				c.Transcribe.ServerURL = ""
			},
			wantErr: true,
		},
		{
			name: "openai backend without key env",
			modify: func(c *Config) {
				c.Transcribe.Backend = "openai"
				c.Transcribe.APIKeyEnv = ""
			},
			wantErr: true,
		},
		{
			name:    "invalid device preference",
			modify:  func(c *Config) { c.Transcribe.Device = "tpu" },
			wantErr: true,
		},
		{
			name: "transcribe disabled skips backend checks",
			modify: func(c *Config) {
				c.Transcribe.Enabled = false
				c.Transcribe.Backend = "invalid"
			},
			wantErr: false,
		},
		{
			name:    "negative restore delay",
			modify:  func(c *Config) { c.Paste.RestoreDelaySec = -1 },
			wantErr: true,
		},
		{
			name: "reformat enabled with zero hold duration",
			modify: func(c *Config) {
				c.Reformat.Enabled = true
				c.Reformat.HoldDurationSec = 0
			},
			wantErr: true,
		},
		{
			name: "reformat enabled with unknown backend",
			modify: func(c *Config) {
				c.Reformat.Enabled = true
				c.Reformat.Backend = "invalid"
			},
			wantErr: true,
		},
		{
			name: "reformat enabled with empty key env",
			modify: func(c *Config) {
				c.Reformat.Enabled = true
				c.Reformat.APIKeyEnv = ""
			},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefault_CreatesFile(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	expectedPath := filepath.Join(tmpHome, ".config", "godictate", "config.yaml")
	if path != expectedPath {
		t.Errorf("WriteDefault() path = %q, want %q", path, expectedPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}

	if !strings.HasPrefix(string(data), "# godictate") {
		t.Error("written config should start with header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("written config Audio.SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
}

func TestWriteDefault_NoOpIfExists(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "godictate")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	existingContent := []byte("log_level: debug\n")
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, existingContent, 0o644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteDefault() path = %q, want empty string for existing file", path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != string(existingContent) {
		t.Error("WriteDefault() should not overwrite existing config file")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

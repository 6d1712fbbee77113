package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 1 || cfg.Audio.ChunkSize != 1024 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Export.ShortBreakBytes != 44100*4 {
		t.Errorf("short break = %d", cfg.Export.ShortBreakBytes)
	}
	if cfg.Countdown.Steps != 3 || cfg.Countdown.GoFreq != 880 {
		t.Errorf("countdown = %+v", cfg.Countdown)
	}
	if !strings.HasSuffix(cfg.Store.Path, filepath.Join("vocabtrack", "vocabtrack.sqlite")) {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
audio:
  channels: 2
  chunk_size: 512
countdown:
  steps: 0
export:
  short_break_bytes: 1000
  dir: /tmp/decks
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.Channels != 2 || cfg.Audio.ChunkSize != 512 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("unset sample_rate should keep default, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Countdown.Steps != 0 {
		t.Errorf("steps = %d, want 0", cfg.Countdown.Steps)
	}
	if cfg.Export.ShortBreakBytes != 1000 || cfg.Export.Dir != "/tmp/decks" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOCABTRACK_STORE", "/tmp/x.sqlite")
	t.Setenv("VOCABTRACK_SOCKET", "/tmp/x.sock")
	t.Setenv("VOCABTRACK_CHANNELS", "2")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/tmp/x.sqlite" {
		t.Errorf("store = %q", cfg.Store.Path)
	}
	if cfg.Control.Socket != "/tmp/x.sock" {
		t.Errorf("socket = %q", cfg.Control.Socket)
	}
	if cfg.Audio.Channels != 2 {
		t.Errorf("channels = %d", cfg.Audio.Channels)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad channels", "audio:\n  channels: 6\n", "channels must be 1 or 2"},
		{"low rate", "audio:\n  sample_rate: 100\n", "sample_rate"},
		{"tiny chunk", "audio:\n  chunk_size: 8\n", "chunk_size"},
		{"negative break", "export:\n  short_break_bytes: -1\n", "short_break_bytes"},
		{"interval shorter than beep", "countdown:\n  interval: 0.01\n", "interval"},
		{"bad level", "log:\n  level: loud\n", "level must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "audio: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("err = %v", err)
	}
}

func TestSeconds(t *testing.T) {
	if d := Seconds(0.15); d != 150*time.Millisecond {
		t.Errorf("Seconds(0.15) = %v", d)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config lookups at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30, cfg.UI.FPS)
	assert.Equal(t, ".", cfg.UI.StartDir)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 2, cfg.Audio.Channels)
	assert.Equal(t, 100*time.Millisecond, cfg.Audio.BufferSize())
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tapedeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
ui:
  fps: 24
  start_dir: /music
audio:
  sample_rate: 48000
  buffer_ms: 50
`), 0o644))
	t.Setenv("TAPEDECK_AUDIO_CHANNELS", "1")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--fps", "60"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60, cfg.UI.FPS, "explicit flag wins over file")
	assert.Equal(t, "/music", cfg.UI.StartDir)
	assert.Equal(t, 48000, cfg.Audio.SampleRate, "unset flag does not override file")
	assert.Equal(t, 1, cfg.Audio.Channels)
	assert.Equal(t, 50*time.Millisecond, cfg.Audio.BufferSize())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(dir, "nope.yaml")}))

	_, err := Load(fs)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Log:   LogConfig{Level: "warn"},
			UI:    UIConfig{FPS: 30},
			Audio: AudioConfig{SampleRate: 44100, Channels: 2, BufferMS: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"fps zero", func(c *Config) { c.UI.FPS = 0 }, "ui.fps"},
		{"fps too high", func(c *Config) { c.UI.FPS = 240 }, "ui.fps"},
		{"rate too low", func(c *Config) { c.Audio.SampleRate = 4000 }, "audio.sample_rate"},
		{"surround", func(c *Config) { c.Audio.Channels = 6 }, "audio.channels"},
		{"negative buffer", func(c *Config) { c.Audio.BufferMS = -1 }, "audio.buffer_ms"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

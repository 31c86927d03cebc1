// Package config loads tapedeck settings from defaults, an optional YAML
// file, TAPEDECK_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application settings.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	UI    UIConfig    `mapstructure:"ui"`
	Audio AudioConfig `mapstructure:"audio"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error or disabled
	File  string `mapstructure:"file"`  // empty means the default state directory
}

type UIConfig struct {
	FPS      int    `mapstructure:"fps"`
	StartDir string `mapstructure:"start_dir"`
}

type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	Channels   int `mapstructure:"channels"`
	BufferMS   int `mapstructure:"buffer_ms"`
}

// BufferSize returns the device buffer as a duration.
func (a AudioConfig) BufferSize() time.Duration {
	return time.Duration(a.BufferMS) * time.Millisecond
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-file":    "log.file",
	"fps":         "ui.fps",
	"sample-rate": "audio.sample_rate",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("ui.fps", 30)
	v.SetDefault("ui.start_dir", ".")

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.channels", 2)
	v.SetDefault("audio.buffer_ms", 100)
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default $XDG_CONFIG_HOME/tapedeck/config.yaml)")
	fs.String("log-level", "info", "log level: debug, info, warn, error, disabled")
	fs.String("log-file", "", "log file path")
	fs.Int("fps", 30, "redraw rate in frames per second")
	fs.Int("sample-rate", 44100, "audio output sample rate")
}

// Load resolves the configuration. fs may be nil; flags that were not set on
// the command line do not override the file or environment.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TAPEDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFile string
	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", flag, err)
				}
			}
		}
		configFile, _ = fs.GetString("config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, path := range configPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are in range.
func (c *Config) Validate() error {
	var errs []error
	if c.UI.FPS < 1 || c.UI.FPS > 120 {
		errs = append(errs, fmt.Errorf("ui.fps must be between 1 and 120, got %d", c.UI.FPS))
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be between 8000 and 192000, got %d", c.Audio.SampleRate))
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		errs = append(errs, fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels))
	}
	if c.Audio.BufferMS < 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_ms must not be negative, got %d", c.Audio.BufferMS))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

func configPaths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "tapedeck"))
	}
	return append(paths, ".")
}

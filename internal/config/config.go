// Package config loads the ark YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/ark/internal/watcher"
)

// Defaults applied when the file or a field is missing.
const (
	DefaultRound = 2
	DefaultWidth = 78
)

// Dir returns the ark config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/ark if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "ark"), nil
}

// DefaultPath returns Dir()/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Config is the top-level configuration.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Timer TimerConfig `yaml:"timer"`
	Text  TextConfig  `yaml:"text"`
	Watch WatchConfig `yaml:"watch"`
}

// LogConfig mirrors the console logger switches.
type LogConfig struct {
	Quiet   bool `yaml:"quiet"`
	Verbose bool `yaml:"verbose"`
	// Timed prefixes lines with elapsed seconds. Defaults to true.
	Timed *bool `yaml:"timed"`
}

// TimerConfig holds the decimal places used for elapsed times.
type TimerConfig struct {
	Round *int `yaml:"round"`
}

// TextConfig holds the default wrap width.
type TextConfig struct {
	Width int `yaml:"width"`
}

// WatchConfig holds settings for "ark watch".
type WatchConfig struct {
	// Journal is the path of the SQLite event journal. Empty disables it
	// unless --journal is given.
	Journal string     `yaml:"journal"`
	Hooks   []HookRule `yaml:"hooks"`
}

// HookRule runs a shell-style command for every event matching On.
type HookRule struct {
	// On is a selector such as "created file" or "deleted".
	On string `yaml:"on"`
	// Run is split with shell quoting rules; no shell is invoked.
	Run string `yaml:"run"`
}

// Selector parses On.
func (r HookRule) Selector() (watcher.Selector, error) {
	return watcher.ParseSelector(r.On)
}

// Args splits Run into the program and its arguments.
func (r HookRule) Args() ([]string, error) {
	args, err := shlex.Split(r.Run)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads the YAML file at path, applies defaults and validates
// the result. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}

// Timed reports whether log lines carry elapsed time.
func (c *Config) Timed() bool {
	return c.Log.Timed == nil || *c.Log.Timed
}

// Round returns the timer precision.
func (c *Config) Round() int {
	if c.Timer.Round == nil {
		return DefaultRound
	}
	return *c.Timer.Round
}

func applyDefaults(cfg *Config) {
	if cfg.Timer.Round == nil {
		r := DefaultRound
		cfg.Timer.Round = &r
	}
	if cfg.Text.Width == 0 {
		cfg.Text.Width = DefaultWidth
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Log.Quiet && cfg.Log.Verbose {
		errs = append(errs, errors.New("log.quiet and log.verbose are mutually exclusive"))
	}
	if r := cfg.Round(); r < 0 || r > 9 {
		errs = append(errs, fmt.Errorf("timer.round %d must be between 0 and 9", r))
	}
	if cfg.Text.Width < 0 {
		errs = append(errs, fmt.Errorf("text.width %d must be positive", cfg.Text.Width))
	}

	for i, h := range cfg.Watch.Hooks {
		prefix := fmt.Sprintf("watch.hooks[%d]", i)
		if h.On == "" {
			errs = append(errs, fmt.Errorf("%s: on is required", prefix))
		} else if _, err := h.Selector(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
		if _, err := h.Args(); err != nil {
			errs = append(errs, fmt.Errorf("%s: run: %w", prefix, err))
		}
	}

	return errors.Join(errs...)
}

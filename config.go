package cadence

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a Context. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	// LagThreshold is the frame gap in milliseconds beyond which time is
	// compressed to AdjustedLag. Zero or less disables lag smoothing.
	LagThreshold float64 `yaml:"lag_threshold"`
	AdjustedLag  float64 `yaml:"adjusted_lag"`
	// AutoSleep is the number of frames between idle checks. When the root
	// timeline has no active children the ticker goes to sleep. Zero keeps
	// the ticker awake.
	AutoSleep int `yaml:"auto_sleep"`
	// FPS caps frames dispatched by a driver.
	FPS float64 `yaml:"fps"`
	// DefaultEase is used when a tween names no ease.
	DefaultEase string `yaml:"default_ease"`
	// DefaultOverwrite is "auto", "all" or "none".
	DefaultOverwrite string `yaml:"default_overwrite"`
	// NullTargetWarn logs a warning when a tween is created without targets
	// and, once per target type, for properties a target lacks.
	NullTargetWarn bool `yaml:"null_target_warn"`
	// Debug enables debug logging.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LagThreshold:     500,
		AdjustedLag:      33,
		AutoSleep:        120,
		FPS:              240,
		DefaultEase:      "power1.out",
		DefaultOverwrite: "auto",
		NullTargetWarn:   true,
	}
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.AdjustedLag < 0 {
		return errors.New("config: adjusted_lag must not be negative")
	}
	if c.AutoSleep < 0 {
		return errors.New("config: auto_sleep must not be negative")
	}
	if c.FPS < 0 {
		return errors.New("config: fps must not be negative")
	}
	if _, err := ParseOverwrite(c.DefaultOverwrite); err != nil {
		return fmt.Errorf("config: default_overwrite: %w", err)
	}
	return nil
}

func (c Config) overwrite() Overwrite {
	o, err := ParseOverwrite(c.DefaultOverwrite)
	if err != nil || o == OverwriteDefault {
		return OverwriteAuto
	}
	return o
}

// Package config loads the settings of the cadence command line tool.
package config

import (
	"errors"
	"fmt"

	"github.com/phanxgames/cadence"
)

// Config is the complete CLI configuration.
type Config struct {
	Engine  cadence.Config `yaml:"engine"`
	Play    PlayConfig     `yaml:"play"`
	Trace   TraceConfig    `yaml:"trace"`
	Preview PreviewConfig  `yaml:"preview"`
}

// PlayConfig controls offline playback of a script.
type PlayConfig struct {
	// FPS is the simulated frame rate.
	FPS float64 `yaml:"fps"`
	// Duration stops playback after this many seconds. Zero plays the
	// timeline to its end.
	Duration float64 `yaml:"duration"`
	// SampleEvery records target values every N frames.
	SampleEvery int `yaml:"sample_every"`
	// MaxDuration bounds playback of infinitely repeating timelines.
	MaxDuration float64 `yaml:"max_duration"`
}

// TraceConfig controls the SQLite trace store.
type TraceConfig struct {
	Path string `yaml:"path"`
}

// PreviewConfig controls the terminal preview.
type PreviewConfig struct {
	// Width is the bar width in cells.
	Width int `yaml:"width"`
	// Precision is the number of decimals shown for values.
	Precision int `yaml:"precision"`
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if c.Play.FPS <= 0 {
		return errors.New("config: play.fps must be positive")
	}
	if c.Play.Duration < 0 || c.Play.MaxDuration < 0 {
		return errors.New("config: play durations must not be negative")
	}
	if c.Play.SampleEvery < 1 {
		return fmt.Errorf("config: play.sample_every must be at least 1, got %d", c.Play.SampleEvery)
	}
	if c.Preview.Width < 1 {
		return errors.New("config: preview.width must be positive")
	}
	if c.Preview.Precision < 0 {
		return errors.New("config: preview.precision must not be negative")
	}
	return nil
}

// Limit returns the number of seconds to play a timeline of the given total
// duration.
func (c PlayConfig) Limit(total float64) float64 {
	limit := total
	if c.Duration > 0 {
		limit = c.Duration
	}
	if c.MaxDuration > 0 && limit > c.MaxDuration {
		limit = c.MaxDuration
	}
	return limit
}

package config

import (
	_ "embed"

	"github.com/phanxgames/cadence"
)

//go:embed defaults/cadence.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: cadence.DefaultConfig(),
		Play: PlayConfig{
			FPS:         60,
			SampleEvery: 6,
			MaxDuration: 600,
		},
		Trace: TraceConfig{
			Path: "cadence-trace.db",
		},
		Preview: PreviewConfig{
			Width:     40,
			Precision: 2,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

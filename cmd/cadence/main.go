// cadence plays, plots and traces animation timeline scripts.
//
// Usage:
//
//	cadence play <script>        - Play a YAML timeline script
//	cadence eases                - List registered eases
//	cadence plot <ease>          - Plot an ease curve
//	cadence trace runs           - List recorded runs
//	cadence trace show <run>     - Show samples of a recorded run
//
// Global flags:
//
//	--config <path>  - Config file (default: search ~/.cadence, ./cadence.yaml)
//	--debug          - Enable debug logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/cadence/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "cadence",
		Short: "Cadence - timeline animation toolkit",
		Long: `Cadence plays YAML timeline scripts on a virtual clock, previews them
in the terminal or a window, and records sampled runs to SQLite.

Examples:
  cadence play intro.yaml
  cadence play intro.yaml --tui --watch
  cadence play intro.yaml --trace runs.db
  cadence plot elastic.out
  cadence trace runs --db runs.db`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file path")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newPlayCmd(g))
	root.AddCommand(newEasesCmd(g))
	root.AddCommand(newPlotCmd(g))
	root.AddCommand(newTraceCmd(g))
	return root
}

// load reads the configuration and builds the logger for a command.
func (g *globals) load(cmd *cobra.Command) (config.Config, *log.Logger, error) {
	cfg, from, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if g.debug {
		cfg.Engine.Debug = true
	}
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "cadence"})
	if cfg.Engine.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if from != "" {
		logger.Debug("loaded config", "path", from)
	}
	return cfg, logger, nil
}

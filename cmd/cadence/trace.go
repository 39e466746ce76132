package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phanxgames/cadence/internal/trace"
)

func newTraceCmd(g *globals) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Reads runs recorded with 'cadence play --trace'.

Examples:
  cadence trace runs
  cadence trace show 3 --target box --prop x
  cadence trace events 3`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Trace database path (default from config)")

	open := func(cmd *cobra.Command) (*trace.Store, error) {
		cfg, _, err := g.load(cmd)
		if err != nil {
			return nil, err
		}
		path := cfg.Trace.Path
		if dbPath != "" {
			path = dbPath
		}
		return trace.Open(path)
	}

	var limit int
	runs := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.Runs(limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, r := range list {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Script,
					formatFloat(r.FPS),
					strconv.Itoa(r.Frames),
					formatFloat(r.Duration),
					r.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"run", "script", "fps", "frames", "duration", "date"}, rows))
			return nil
		},
	}
	runs.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")

	var target, prop string
	show := &cobra.Command{
		Use:   "show <run>",
		Short: "Show the samples of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			samples, err := store.Samples(id, target, prop)
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No samples for run %d.\n", id)
				return nil
			}
			rows := make([][]string, 0, len(samples))
			for _, s := range samples {
				rows = append(rows, []string{
					strconv.Itoa(s.Frame),
					formatFloat(s.Time),
					s.Target + "." + s.Prop,
					formatFloat(s.Value),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"frame", "time", "property", "value"}, rows))
			return nil
		},
	}
	show.Flags().StringVar(&target, "target", "", "Only this target")
	show.Flags().StringVar(&prop, "prop", "", "Only this property")

	events := &cobra.Command{
		Use:   "events <run>",
		Short: "Show the lifecycle events of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.Events(id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, ev := range list {
				rows = append(rows, []string{strconv.Itoa(ev.Frame), formatFloat(ev.Time), ev.Type, ev.ID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"frame", "time", "event", "id"}, rows))
			return nil
		},
	}

	cmd.AddCommand(runs, show, events)
	return cmd
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		Render()
}

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/cadence"
)

func newEasesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "eases",
		Short: "List registered eases",
		Long: `Shows every ease name the engine resolves. Names are case-insensitive and
may take arguments, for example "elastic.out(1, 0.3)" or "steps(5)".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			ctx := cadence.NewContext(cadence.WithConfig(cfg.Engine), cadence.WithLogger(logger))

			out := cmd.OutOrStdout()
			names := ctx.Eases().Names()
			fmt.Fprintf(out, "Registered eases (%d):\n\n", len(names))
			for _, name := range names {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run 'cadence plot <ease>' to see a curve.")
			return nil
		},
	}
}

type plotFlags struct {
	width  int
	height int
}

func newPlotCmd(g *globals) *cobra.Command {
	f := &plotFlags{}
	cmd := &cobra.Command{
		Use:   "plot <ease>",
		Short: "Plot an ease curve",
		Long: `Draws an ease as an ASCII chart of progress (x) against value (y).

Examples:
  cadence plot power2.inOut
  cadence plot "back.out(3)" --width 72 --height 24`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			ctx := cadence.NewContext(cadence.WithConfig(cfg.Engine), cadence.WithLogger(logger))

			name := args[0]
			if !ctx.Eases().Has(name) {
				return fmt.Errorf("unknown ease %q (run 'cadence eases' to list them)", name)
			}
			fn := ctx.Eases().Resolve(name, cadence.Linear)
			fmt.Fprintln(cmd.OutOrStdout(), plotEase(name, fn, f.width, f.height))
			return nil
		},
	}
	cmd.Flags().IntVar(&f.width, "width", 60, "Chart width in columns")
	cmd.Flags().IntVar(&f.height, "height", 20, "Chart height in rows")
	return cmd
}

// plotEase renders fn over [0, 1] as a width by height character grid. The
// y range grows to include overshoot.
func plotEase(name string, fn cadence.EaseFunc, width, height int) string {
	width = max(width, 2)
	height = max(height, 2)

	values := make([]float64, width)
	lo, hi := 0.0, 1.0
	for x := range values {
		v := fn(float64(x) / float64(width-1))
		values[x] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}
	row := func(v float64) int {
		return height - 1 - int(math.Round((v-lo)/(hi-lo)*float64(height-1)))
	}
	for x := range width {
		grid[row(0)][x] = '·'
		grid[row(1)][x] = '·'
	}
	for x, v := range values {
		grid[row(v)][x] = '•'
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", name)
	for y, line := range grid {
		label := "      "
		switch y {
		case 0:
			label = fmt.Sprintf("%6.2f", hi)
		case height - 1:
			label = fmt.Sprintf("%6.2f", lo)
		}
		fmt.Fprintf(&b, "%s │%s\n", label, string(line))
	}
	fmt.Fprintf(&b, "       └%s\n", strings.Repeat("─", width))
	fmt.Fprintf(&b, "        0%s1", strings.Repeat(" ", width-2))
	return b.String()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/cadence"
	"github.com/phanxgames/cadence/internal/config"
	"github.com/phanxgames/cadence/internal/preview"
	"github.com/phanxgames/cadence/internal/script"
	"github.com/phanxgames/cadence/internal/trace"
	"github.com/phanxgames/cadence/internal/watch"
)

type playFlags struct {
	fps      float64
	duration float64
	sample   int
	trace    bool
	db       string
	watch    bool
	tui      bool
	window   bool
}

func newPlayCmd(g *globals) *cobra.Command {
	f := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play <script>",
		Short: "Play a timeline script",
		Long: `Play a YAML timeline script on a virtual clock and print sampled target
values. With --tui the script plays in an interactive terminal preview;
with --window it plays in an Ebitengine window.

Examples:
  cadence play intro.yaml --fps 30 --sample 3
  cadence play intro.yaml --trace --db runs.db
  cadence play intro.yaml --tui --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			path := args[0]
			switch {
			case f.tui:
				return runPreview(cfg, logger, path, f.watch)
			case f.window:
				return runWindow(cfg, logger, path)
			case f.watch:
				return watchPlayback(cmd, cfg, logger, path, f.trace)
			}
			_, err = playFile(cfg, logger, path, f.trace, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().Float64Var(&f.fps, "fps", 0, "Simulated frame rate (default from config)")
	cmd.Flags().Float64Var(&f.duration, "duration", 0, "Seconds to play (0 = timeline length)")
	cmd.Flags().IntVar(&f.sample, "sample", 0, "Sample every N frames (default from config)")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Record the run to the trace database")
	cmd.Flags().StringVar(&f.db, "db", "", "Trace database path (default from config)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Replay when the script changes")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "Interactive terminal preview")
	cmd.Flags().BoolVar(&f.window, "window", false, "Play in an Ebitengine window")
	return cmd
}

// apply overrides config values with flags set on the command line.
func (f *playFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Play.FPS = f.fps
	}
	if flags.Changed("duration") {
		cfg.Play.Duration = f.duration
	}
	if flags.Changed("sample") {
		cfg.Play.SampleEvery = f.sample
	}
	if flags.Changed("db") {
		cfg.Trace.Path = f.db
	}
}

// playResult summarizes an offline run.
type playResult struct {
	RunID  int64
	Frames int
	Time   float64
}

func loadSource(path string) preview.Source {
	return func(ctx *cadence.Context) (*script.Built, error) {
		s, err := script.Load(path)
		if err != nil {
			return nil, err
		}
		return s.Build(ctx, nil)
	}
}

// playFile plays the script at path on a virtual clock and writes a table of
// samples to out. When record is set, samples and events are stored in the
// trace database.
func playFile(cfg config.Config, logger *log.Logger, path string, record bool, out io.Writer) (playResult, error) {
	clock := cadence.NewVirtualClock()
	ctx := cadence.NewContext(
		cadence.WithClock(clock),
		cadence.WithConfig(cfg.Engine),
		cadence.WithLogger(logger),
	)
	// Frames are exact; there is no lag to smooth.
	ctx.Ticker().LagSmoothing(0, 0)
	origin := clock.Now()

	var res playResult
	var store *trace.Store
	var rec *trace.Recorder
	if record {
		var err error
		store, err = trace.Open(cfg.Trace.Path)
		if err != nil {
			return res, err
		}
		defer store.Close()
		res.RunID, err = store.BeginRun(filepath.Base(path), cfg.Play.FPS)
		if err != nil {
			return res, err
		}
		rec = trace.NewRecorder(store, res.RunID, ctx.Ticker())
		ctx.SetEventSink(rec)
	}

	built, err := loadSource(path)(ctx)
	if err != nil {
		return res, err
	}
	defer built.Timeline.Kill()

	limit := cfg.Play.Limit(built.Timeline.TotalDuration())
	frames := int(math.Ceil(limit*cfg.Play.FPS - 1e-9))
	logger.Debug("playing", "script", path, "frames", frames, "duration", limit)

	cols := sampleColumns(built)
	headers := []string{"frame", "time"}
	for _, c := range cols {
		headers = append(headers, c.String())
	}
	var rows [][]string
	var samples []trace.Sample
	sample := func(frame int) {
		t := built.Timeline.TotalTime()
		row := []string{strconv.Itoa(frame), formatFloat(t)}
		for _, c := range cols {
			v, _ := built.Targets[c.name][c.prop].(float64)
			row = append(row, formatFloat(v))
			samples = append(samples, trace.Sample{Frame: frame, Time: t, Target: c.name, Prop: c.prop, Value: v})
		}
		rows = append(rows, row)
	}

	sample(0)
	for frame := 1; frame <= frames; frame++ {
		clock.Set(origin.Add(frameOffset(frame, cfg.Play.FPS)))
		ctx.Tick()
		if frame%cfg.Play.SampleEvery == 0 || frame == frames {
			sample(frame)
		}
	}
	res.Frames = frames
	res.Time = built.Timeline.TotalTime()

	if store != nil {
		if err := errors.Join(rec.Err(), store.AddSamples(res.RunID, samples), store.FinishRun(res.RunID, frames, limit)); err != nil {
			return res, err
		}
		logger.Info("trace recorded", "run", res.RunID, "samples", len(samples))
	}

	fmt.Fprintln(out, renderTable(headers, rows))
	return res, nil
}

type column struct {
	name, prop string
}

func (c column) String() string { return c.name + "." + c.prop }

// sampleColumns lists the numeric target properties in name order.
func sampleColumns(b *script.Built) []column {
	var cols []column
	for _, name := range b.Names {
		var props []string
		for prop, v := range b.Targets[name] {
			if _, ok := v.(float64); ok {
				props = append(props, prop)
			}
		}
		sort.Strings(props)
		for _, p := range props {
			cols = append(cols, column{name: name, prop: p})
		}
	}
	return cols
}

// frameOffset returns the time of frame at fps, rounded to the nanosecond so
// that whole seconds land exactly.
func frameOffset(frame int, fps float64) time.Duration {
	return time.Duration(math.Round(float64(frame) * float64(time.Second) / fps))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func runPreview(cfg config.Config, logger *log.Logger, path string, live bool) error {
	opts := preview.Options{
		Title:     "cadence · " + filepath.Base(path),
		FPS:       cfg.Play.FPS,
		Width:     cfg.Preview.Width,
		Precision: cfg.Preview.Precision,
	}
	if live {
		w, err := watch.New(watch.DefaultDebounce, path)
		if err != nil {
			return err
		}
		defer w.Close()
		opts.Reload = w.Events
	}
	// The terminal belongs to Bubble Tea; keep engine logs quiet.
	logger.SetOutput(io.Discard)
	m, err := preview.New(loadSource(path), opts, cadence.WithConfig(cfg.Engine), cadence.WithLogger(logger))
	if err != nil {
		return err
	}
	return preview.Run(m)
}

// watchPlayback replays the script every time it changes until interrupted.
func watchPlayback(cmd *cobra.Command, cfg config.Config, logger *log.Logger, path string, record bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(watch.DefaultDebounce, path)
	if err != nil {
		return err
	}
	defer w.Close()

	for {
		if _, err := playFile(cfg, logger, path, record, cmd.OutOrStdout()); err != nil {
			logger.Error("playback failed", "err", err)
		}
		logger.Info("watching for changes", "script", path)
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

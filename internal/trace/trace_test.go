package trace

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/phanxgames/cadence"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "trace.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "trace.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestRunsNewestFirst(t *testing.T) {
	store := openStore(t)

	first, err := store.BeginRun("intro.yaml", 60)
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	second, _ := store.BeginRun("outro.yaml", 30)
	if err := store.FinishRun(first, 120, 2); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	runs, err := store.Runs(10)
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("run order = %d, %d; want %d, %d", runs[0].ID, runs[1].ID, second, first)
	}
	if runs[1].Frames != 120 || runs[1].Duration != 2 || runs[1].Script != "intro.yaml" {
		t.Errorf("finished run = %+v", runs[1])
	}

	if limited, _ := store.Runs(1); len(limited) != 1 {
		t.Errorf("Runs(1) returned %d runs", len(limited))
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	if err := store.FinishRun(42, 1, 1); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestSamplesFilter(t *testing.T) {
	store := openStore(t)
	run, _ := store.BeginRun("s.yaml", 60)

	err := store.AddSamples(run, []Sample{
		{Frame: 2, Time: 0.2, Target: "box", Prop: "x", Value: 20},
		{Frame: 1, Time: 0.1, Target: "box", Prop: "x", Value: 10},
		{Frame: 1, Time: 0.1, Target: "box", Prop: "y", Value: 5},
		{Frame: 1, Time: 0.1, Target: "dot", Prop: "x", Value: 1},
	})
	if err != nil {
		t.Fatalf("AddSamples() failed: %v", err)
	}

	xs, err := store.Samples(run, "box", "x")
	if err != nil {
		t.Fatalf("Samples() failed: %v", err)
	}
	if len(xs) != 2 || xs[0].Value != 10 || xs[1].Value != 20 {
		t.Errorf("box.x samples = %+v, want frames 1 and 2", xs)
	}

	all, _ := store.Samples(run, "", "")
	if len(all) != 4 {
		t.Errorf("all samples = %d, want 4", len(all))
	}
	dots, _ := store.Samples(run, "dot", "")
	if len(dots) != 1 {
		t.Errorf("dot samples = %d, want 1", len(dots))
	}
	if err := store.AddSamples(run, nil); err != nil {
		t.Errorf("AddSamples(nil) = %v", err)
	}
}

func TestRecorderStoresLifecycle(t *testing.T) {
	store := openStore(t)
	run, _ := store.BeginRun("s.yaml", 4)

	clock := cadence.NewVirtualClock()
	ctx := cadence.NewContext(cadence.WithClock(clock), cadence.WithLogger(log.New(io.Discard)))
	rec := NewRecorder(store, run, ctx.Ticker())
	ctx.SetEventSink(rec)

	ctx.To(map[string]any{"x": 0.0}, cadence.Vars{ID: "slide", Duration: 0.5, Props: cadence.Props{"x": 1}})
	for i := 0; i < 3; i++ {
		clock.Advance(250 * time.Millisecond)
		ctx.Tick()
	}
	if rec.Err() != nil {
		t.Fatalf("recorder error: %v", rec.Err())
	}

	events, err := store.Events(run)
	if err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	var kinds []string
	for _, ev := range events {
		if ev.ID == "slide" {
			kinds = append(kinds, ev.Type)
		}
	}
	if got := strings.Join(kinds, ","); got != "start,complete" {
		t.Errorf("events = %s, want start,complete", got)
	}
	for _, ev := range events {
		if ev.ID == "slide" && ev.Frame < 1 {
			t.Errorf("event %s recorded at frame %d", ev.Type, ev.Frame)
		}
	}
}

func TestRecorderKeepsFirstError(t *testing.T) {
	store := openStore(t)
	store.Close()

	rec := NewRecorder(store, 1, nil)
	rec.EmitEvent(cadence.Event{Type: cadence.EventStart})
	if rec.Err() == nil {
		t.Fatal("expected an error from a closed store")
	}
	first := rec.Err()
	rec.EmitEvent(cadence.Event{Type: cadence.EventComplete})
	if rec.Err() != first {
		t.Error("later events should not replace the first error")
	}
}

package driver

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/phanxgames/cadence"
)

func TestTickClockStep(t *testing.T) {
	c := NewTickClock()
	start := c.Now()
	c.Step(60)
	c.Step(60)
	if got := c.Now().Sub(start); got != 2*(time.Second/60) {
		t.Errorf("elapsed = %v, want two 60 TPS ticks", got)
	}

	c.Step(0)
	if got := c.Now().Sub(start); got != 3*(time.Second/60) {
		t.Errorf("Step(0) should use the default TPS, elapsed = %v", got)
	}
}

func TestDriverStartStop(t *testing.T) {
	d := New(nil)
	if d.Running() {
		t.Fatal("new driver should not be running")
	}
	calls := 0
	d.Start(func() { calls++ })
	if err := d.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	d.Stop()
	if err := d.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if calls != 1 {
		t.Errorf("frame calls = %d, want 1", calls)
	}
}

func TestDriverUpdateFuncError(t *testing.T) {
	d := New(nil)
	want := errors.New("quit")
	d.SetUpdateFunc(func() error { return want })
	if err := d.Update(); !errors.Is(err, want) {
		t.Errorf("Update error = %v, want %v", err, want)
	}
}

func TestDriverAdvancesContext(t *testing.T) {
	clock := NewTickClock()
	d := New(clock)
	ctx := cadence.NewContext(
		cadence.WithDriver(d),
		cadence.WithClock(clock),
		cadence.WithLogger(log.New(io.Discard)),
	)
	if !d.Running() {
		t.Fatal("context should start the driver")
	}

	target := &struct{ X float64 }{}
	ctx.To(target, cadence.Vars{Duration: 1, Ease: "none", Props: cadence.Props{"x": 60}})
	for i := 0; i < 30; i++ {
		if err := d.Update(); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if target.X < 29 || target.X > 31 {
		t.Errorf("X after 30 ticks = %f, want ~30", target.X)
	}
}

func TestDriverLayout(t *testing.T) {
	d := New(nil)
	if w, h := d.Layout(800, 600); w != 800 || h != 600 {
		t.Errorf("Layout without config = %dx%d, want 800x600", w, h)
	}
	d.cfg = RunConfig{Width: 320, Height: 240}
	if w, h := d.Layout(800, 600); w != 320 || h != 240 {
		t.Errorf("Layout = %dx%d, want 320x240", w, h)
	}
}

func TestRunRejectsInvalidSize(t *testing.T) {
	if err := Run(New(nil), RunConfig{}); err == nil {
		t.Error("Run with zero size should fail")
	}
}

package cadence

import (
	"strings"
	"testing"
	"time"
)

// ---- Basic interpolation -------------------------------------------------------

func TestTweenToReachesTarget(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{X: 10}
	completed := 0
	tw := ctx.To(target, Vars{Duration: 1, Ease: "none", Props: Props{"x": 110}, OnComplete: func() { completed++ }})

	step(ctx, clock, 250*time.Millisecond)
	step(ctx, clock, 250*time.Millisecond)
	if !approx(target.X, 60) {
		t.Errorf("X at 0.5s = %f, want ~60", target.X)
	}

	step(ctx, clock, 250*time.Millisecond)
	step(ctx, clock, 250*time.Millisecond)
	if target.X != 110 {
		t.Errorf("X at 1s = %f, want 110", target.X)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if tw.Parent() != nil {
		t.Error("completed tween should be removed from the root")
	}
}

func TestTweenBoundaryIsExact(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{}
	tw := ctx.To(target, Vars{Duration: 1, Ease: "power2.inOut", Props: Props{"x": 0.3, "count": 7}})

	tw.Render(1, true, false)
	if target.X != 0.3 {
		t.Errorf("X = %v, want exactly 0.3", target.X)
	}
	if target.Count != 7 {
		t.Errorf("Count = %d, want 7", target.Count)
	}
}

func TestTweenRenderIsIdempotent(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{}
	tw := ctx.To(target, Vars{Duration: 1, Ease: "elastic.out", Props: Props{"x": 100, "y": -40}})

	tw.Render(0.37, true, true)
	x, y := target.X, target.Y
	tw.Render(0.37, true, true)
	if target.X != x || target.Y != y {
		t.Errorf("second render = (%f, %f), want (%f, %f)", target.X, target.Y, x, y)
	}
}

func TestTweenStartValuesReadAtFirstRender(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{}
	ctx.To(target, Vars{Duration: 1, Ease: "none", Props: Props{"x": 100}, Delay: 0.5})
	target.X = 50

	step(ctx, clock, 500*time.Millisecond)
	step(ctx, clock, 500*time.Millisecond)
	if !approx(target.X, 75) {
		t.Errorf("X = %f, want ~75 (start read after the delay)", target.X)
	}
}

func TestTweenRelativeAndTypedValues(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{X: 10, Y: 4, Color: "rgba(0,0,0,1)"}
	tw := ctx.To(target, Vars{Duration: 1, Ease: "none", Props: Props{
		"x":       "+=5",
		"y":       "*=2",
		"visible": true,
		"color":   "rgba(255,0,0,0.5)",
	}})

	tw.Render(0.5, true, false)
	if !approx(target.X, 12.5) || !approx(target.Y, 6) {
		t.Errorf("mid = (%f, %f), want (12.5, 6)", target.X, target.Y)
	}
	if !target.Visible {
		t.Error("Visible at 0.5 = false, want true")
	}
	if target.Color != "rgba(128,0,0,0.75)" {
		t.Errorf("Color = %q, want rgba(128,0,0,0.75)", target.Color)
	}

	tw.Render(1, true, false)
	if target.X != 15 || target.Y != 8 || target.Color != "rgba(255,0,0,0.5)" {
		t.Errorf("end = (%f, %f, %q)", target.X, target.Y, target.Color)
	}
}

func TestTweenPropFuncPerTarget(t *testing.T) {
	ctx, _ := newTestContext(t)
	targets := []*box{{}, {}, {}}
	ctx.Set(targets, Props{"x": PropFunc(func(i int, _ any) any { return i * 10 })})

	for i, b := range targets {
		if b.X != float64(i*10) {
			t.Errorf("targets[%d].X = %f, want %d", i, b.X, i*10)
		}
	}
}

func TestTweenRoundAndModifiers(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{}
	tw := ctx.To(target, Vars{
		Duration:  1,
		Ease:      "none",
		Props:     Props{"x": 10, "y": 10},
		Round:     []string{"x"},
		Modifiers: map[string]func(float64) float64{"y": func(v float64) float64 { return -v }},
	})

	tw.Render(0.33, true, false)
	if target.X != 3 {
		t.Errorf("rounded X = %f, want 3", target.X)
	}
	if !approx(target.Y, -3.3) {
		t.Errorf("modified Y = %f, want ~-3.3", target.Y)
	}
}

func TestTweenMapTarget(t *testing.T) {
	ctx, _ := newTestContext(t)
	m := map[string]any{"hp": 100, "speed": 1.5}
	tw := ctx.To(m, Vars{Duration: 1, Ease: "none", Props: Props{"hp": 0, "speed": 3.5}})

	tw.Render(0.25, true, false)
	if m["hp"] != 75 {
		t.Errorf("hp = %v, want int 75", m["hp"])
	}
	if v, ok := m["speed"].(float64); !ok || !approx(v, 2) {
		t.Errorf("speed = %v, want 2", m["speed"])
	}
}

// ---- Repeat and yoyo -------------------------------------------------------------

func TestTweenRepeatTotalDuration(t *testing.T) {
	ctx, _ := newTestContext(t)
	tw := ctx.To(&box{}, Vars{Duration: 1, Repeat: 2, Props: Props{"x": 1}})
	if got := tw.TotalDuration(); got != 3 {
		t.Errorf("TotalDuration = %f, want 3", got)
	}

	tw.SetRepeatDelay(0.5)
	if got := tw.TotalDuration(); got != 4 {
		t.Errorf("TotalDuration with repeat delay = %f, want 4", got)
	}

	inf := ctx.To(&box{}, Vars{Duration: 1, Repeat: -1, Props: Props{"x": 1}})
	if inf.TotalDuration() < bigNum {
		t.Errorf("infinite TotalDuration = %f", inf.TotalDuration())
	}
}

func TestTweenRepeatRatios(t *testing.T) {
	for _, yoyo := range []bool{false, true} {
		name := "plain"
		if yoyo {
			name = "yoyo"
		}
		t.Run(name, func(t *testing.T) {
			ctx, _ := newTestContext(t)
			tw := ctx.To(&box{}, Vars{Duration: 1, Repeat: 2, Yoyo: yoyo, Ease: "none", Props: Props{"x": 100}})

			tw.Render(0.25, true, false)
			first := tw.Ratio()
			tw.Render(1.25, true, false)
			second := tw.Ratio()

			want := first
			if yoyo {
				want = 1 - first
			}
			if !approx(second, want) {
				t.Errorf("ratio in second iteration = %f, want %f", second, want)
			}
			if tw.Iteration() != 2 {
				t.Errorf("Iteration = %d, want 2", tw.Iteration())
			}
		})
	}
}

func TestTweenYoyoEaseMirrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	tw := ctx.To(&box{}, Vars{Duration: 1, Repeat: 1, Ease: "power2.in", YoyoEase: true, Props: Props{"x": 100}})

	// Three quarters into the backward pass has travelled as far from the
	// end as three quarters into the forward pass travelled from the start.
	tw.Render(0.75, true, false)
	forward := tw.Ratio()
	tw.Render(1.75, true, false)
	back := tw.Ratio()
	if !approx(1-back, forward) {
		t.Errorf("yoyo distance from end = %f, want %f", 1-back, forward)
	}
}

func TestTweenOnRepeatFiresPerIteration(t *testing.T) {
	ctx, _ := newTestContext(t)
	tl := ctx.NewTimeline(TimelineVars{Paused: true})
	repeats := 0
	tl.To(&box{}, Vars{Duration: 1, Repeat: 2, Props: Props{"x": 1}, OnRepeat: func() { repeats++ }}, nil)

	for _, pos := range []float64{0.5, 1.5, 2.5, 3} {
		tl.Seek(pos, false)
	}
	if repeats != 2 {
		t.Errorf("repeats = %d, want 2", repeats)
	}
}

// ---- From / FromTo / Set ------------------------------------------------------------

func TestFromRendersStartImmediately(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{X: 100}
	ctx.From(target, Vars{Duration: 1, Ease: "none", Props: Props{"x": 0}})
	if target.X != 0 {
		t.Fatalf("X after From = %f, want 0", target.X)
	}

	step(ctx, clock, 250*time.Millisecond)
	if !approx(target.X, 25) {
		t.Errorf("X at 0.25s = %f, want ~25", target.X)
	}
	for i := 0; i < 3; i++ {
		step(ctx, clock, 250*time.Millisecond)
	}
	if target.X != 100 {
		t.Errorf("X at end = %f, want 100", target.X)
	}
}

func TestFromToUsesExplicitStart(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{}
	tw := ctx.FromTo(target, Props{"x": 10}, Vars{Duration: 1, Ease: "none", Props: Props{"x": 20}})
	if tw.Kind() != KindFromTo {
		t.Errorf("Kind = %s, want fromTo", tw.Kind())
	}
	if target.X != 10 {
		t.Fatalf("X after FromTo = %f, want 10", target.X)
	}

	step(ctx, clock, 500*time.Millisecond)
	if !approx(target.X, 15) {
		t.Errorf("X at 0.5s = %f, want ~15", target.X)
	}
}

func TestFromWithStartAtBecomesFromTo(t *testing.T) {
	ctx, _ := newTestContext(t)
	tw := ctx.From(&box{}, Vars{Duration: 1, Props: Props{"x": 5}, StartAt: Props{"x": 1}})
	if tw.Kind() != KindFromTo {
		t.Errorf("Kind = %s, want fromTo", tw.Kind())
	}
}

func TestRewindPastStartRevert(t *testing.T) {
	cases := []struct {
		name       string
		fromTo     bool
		autoRevert bool
		rewound    float64
	}{
		{"from keeps start", false, false, 0},
		{"from reverts", false, true, 100},
		{"fromTo keeps start", true, false, 10},
		{"fromTo reverts", true, true, 100},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, tl := newPausedTimeline(t)
			target := &box{X: 100}
			if c.fromTo {
				tl.FromTo(target, Props{"x": 10}, Vars{Duration: 1, Ease: "none", AutoRevert: c.autoRevert, Props: Props{"x": 20}}, 1)
			} else {
				tl.From(target, Vars{Duration: 1, Ease: "none", AutoRevert: c.autoRevert, Props: Props{"x": 0}}, 1)
			}

			tl.Seek(1.5, true)
			mid := 50.0
			if c.fromTo {
				mid = 15
			}
			if !approx(target.X, mid) {
				t.Fatalf("X midway = %f, want %f", target.X, mid)
			}
			tl.Seek(0.5, true)
			if !approx(target.X, c.rewound) {
				t.Errorf("X before start = %f, want %f", target.X, c.rewound)
			}
		})
	}
}

func TestUnsetVarsFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultEase = "none"
	ctx, clock := newTestContext(t, WithConfig(cfg))

	instant := ctx.To(&box{}, Vars{Props: Props{"x": 1}})
	if instant.Duration() != 0 {
		t.Errorf("unset Duration = %f, want 0 (no configured fallback)", instant.Duration())
	}

	target := &box{}
	ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100}})
	step(ctx, clock, 250*time.Millisecond)
	if !approx(target.X, 25) {
		t.Errorf("X = %f, want 25 with the configured linear ease", target.X)
	}
}

func TestSetAppliesImmediately(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{}
	tw := ctx.Set(target, Props{"x": 5, "visible": true})

	if target.X != 5 || !target.Visible {
		t.Errorf("after Set: X=%f Visible=%v", target.X, target.Visible)
	}
	if tw.Duration() != 0 {
		t.Errorf("Set duration = %f, want 0", tw.Duration())
	}
}

func TestSetInTimelineIgnoresDefaultDuration(t *testing.T) {
	ctx, _ := newTestContext(t)
	tl := ctx.NewTimeline(TimelineVars{Paused: true, Defaults: &Vars{Duration: 2}})
	set := tl.Set(&box{}, Props{"x": 1}, nil)
	tw := tl.To(&box{}, Vars{Props: Props{"x": 1}}, nil)

	if set.Duration() != 0 {
		t.Errorf("Set duration = %f, want 0", set.Duration())
	}
	if tw.Duration() != 2 {
		t.Errorf("default duration = %f, want 2", tw.Duration())
	}
}

// ---- Overwrite ---------------------------------------------------------------------

func TestOverwriteAutoSameTick(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{}
	interrupted := 0
	first := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100}, OnInterrupt: func() { interrupted++ }})
	second := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 200}})

	step(ctx, clock, 100*time.Millisecond)

	if first.Records() != nil {
		t.Error("first tween should have lost its x record")
	}
	if first.Parent() != nil {
		t.Error("first tween should be killed once it has nothing left")
	}
	if interrupted != 1 {
		t.Errorf("interrupted = %d, want 1", interrupted)
	}
	if second.Records() == nil || second.Records().Property != "x" {
		t.Error("second tween should keep its x record")
	}
	tweens := ctx.GetTweensOf(target, false)
	if len(tweens) != 1 || tweens[0] != second {
		t.Errorf("GetTweensOf = %d tweens, want only the second", len(tweens))
	}

	for i := 0; i < 10; i++ {
		step(ctx, clock, 100*time.Millisecond)
	}
	if target.X != 200 {
		t.Errorf("X = %f, want 200", target.X)
	}
}

func TestOverwriteAutoKeepsOtherProperties(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{}
	first := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100, "y": 100}})
	ctx.To(target, Vars{Duration: 1, Props: Props{"x": 200}})

	step(ctx, clock, 100*time.Millisecond)
	pt := first.Records()
	if pt == nil || pt.Property != "y" || pt.Next() != nil {
		t.Fatal("first tween should keep only its y record")
	}
	if first.Parent() == nil {
		t.Error("first tween should still be running")
	}
}

func TestOverwriteAllKillsAtCreation(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{}
	first := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100}})
	ctx.To(target, Vars{Duration: 1, Props: Props{"y": 100}, Overwrite: OverwriteAll})

	if first.Parent() != nil {
		t.Error("OverwriteAll should kill earlier tweens of the target")
	}
}

func TestOverwriteNoneKeepsBoth(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{}
	first := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100}, Overwrite: OverwriteNone})
	ctx.To(target, Vars{Duration: 1, Props: Props{"x": 200}, Overwrite: OverwriteNone})

	step(ctx, clock, 100*time.Millisecond)
	if first.Records() == nil {
		t.Error("OverwriteNone should leave the first tween's record")
	}
}

func TestKillTweensOfProperty(t *testing.T) {
	ctx, clock := newTestContext(t)
	target := &box{}
	tw := ctx.To(target, Vars{Duration: 1, Ease: "none", Props: Props{"x": 100, "y": 100}})
	step(ctx, clock, 250*time.Millisecond)

	ctx.KillTweensOf(target, "x")
	x := target.X
	step(ctx, clock, 250*time.Millisecond)
	if target.X != x {
		t.Errorf("killed x moved: %f -> %f", x, target.X)
	}
	if !approx(target.Y, 50) {
		t.Errorf("Y = %f, want ~50", target.Y)
	}
	if !ctx.IsTweening(target) {
		t.Error("tween of y should still be active")
	}

	tw.KillTargets(nil, "y")
	if tw.Parent() != nil {
		t.Error("tween with no properties left should be killed")
	}
}

// ---- Completion ----------------------------------------------------------------------

func TestTweenCompletesOnce(t *testing.T) {
	ctx, _ := newTestContext(t)
	completed := 0
	tw := ctx.To(&box{}, Vars{Duration: 1, Props: Props{"x": 1}, OnComplete: func() { completed++ }})

	for i := 0; i < 3; i++ {
		tw.Render(tw.TotalDuration(), false, false)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
}

func TestReverseCompleteFiresAtStart(t *testing.T) {
	ctx, _ := newTestContext(t)
	tl := ctx.NewTimeline(TimelineVars{Paused: true})
	var events []string
	tl.To(&box{}, Vars{
		Duration:          1,
		Props:             Props{"x": 1},
		OnComplete:        func() { events = append(events, "complete") },
		OnReverseComplete: func() { events = append(events, "reverse") },
	}, nil)

	tl.Seek(1, false)
	tl.Seek(0.5, false)
	tl.Seek(0, false)
	tl.Seek(0, false)
	if got := strings.Join(events, ","); got != "complete,reverse" {
		t.Errorf("events = %s, want complete,reverse", got)
	}
}

func TestTweenInvalidateRereadsStart(t *testing.T) {
	ctx, _ := newTestContext(t)
	target := &box{}
	tl := ctx.NewTimeline(TimelineVars{Paused: true})
	tw := tl.To(target, Vars{Duration: 1, Ease: "none", Props: Props{"x": 100}}, nil)

	tl.Seek(1, false)
	tl.Seek(0, false)
	target.X = 50
	tw.Invalidate()
	tl.Seek(0.5, false)
	if !approx(target.X, 75) {
		t.Errorf("X = %f, want ~75 after invalidate", target.X)
	}
}

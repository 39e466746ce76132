package cadence

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// ---- Built-in eases ------------------------------------------------------------

func TestBuiltinEasesHitEndpoints(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	for _, name := range r.Names() {
		fn := r.Resolve(name, nil)
		if fn == nil {
			t.Errorf("%s: Resolve returned nil", name)
			continue
		}
		if got := fn(0); math.Abs(got) > 1e-3 {
			t.Errorf("%s(0) = %f, want ~0", name, got)
		}
		if got := fn(1); math.Abs(got-1) > 1e-3 {
			t.Errorf("%s(1) = %f, want ~1", name, got)
		}
	}
}

func TestInOutEasesAreSymmetric(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	for _, name := range []string{"power1.inOut", "power2.inOut", "sine.inOut", "circ.inOut", "back.inOut"} {
		fn := r.Resolve(name, nil)
		if got := fn(0.5); math.Abs(got-0.5) > 1e-6 {
			t.Errorf("%s(0.5) = %f, want 0.5", name, got)
		}
		if a, b := fn(0.2), 1-fn(0.8); math.Abs(a-b) > 1e-6 {
			t.Errorf("%s not symmetric: f(0.2)=%f, 1-f(0.8)=%f", name, a, b)
		}
	}
}

func TestBareNameIsOutVariant(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	bare := r.Resolve("power2", nil)
	out := r.Resolve("power2.out", nil)
	if bare(0.3) != out(0.3) {
		t.Errorf("power2(0.3) = %f, want power2.out(0.3) = %f", bare(0.3), out(0.3))
	}
	if cubic := r.Resolve("cubic.out", nil); cubic(0.3) != out(0.3) {
		t.Errorf("cubic.out should alias power2.out")
	}
}

func TestInvert(t *testing.T) {
	in := func(p float64) float64 { return p * p }
	out := Invert(in)
	if got := out(0.25); !approx(got, 1-0.75*0.75) {
		t.Errorf("Invert(quad)(0.25) = %f, want %f", got, 1-0.75*0.75)
	}
}

func TestBackOvershoots(t *testing.T) {
	back := Back("out", 0)
	peak := 0.0
	for i := 0; i <= 100; i++ {
		peak = math.Max(peak, back(float64(i)/100))
	}
	if peak <= 1 {
		t.Errorf("back.out peak = %f, want > 1", peak)
	}
}

func TestSteps(t *testing.T) {
	cases := []struct {
		n     int
		start bool
		p     float64
		want  float64
	}{
		{4, false, 0, 0},
		{4, false, 0.5, 0.5},
		{4, false, 1, 1},
		{4, true, 0, 0.25},
		{1, false, 0.6, 1},
	}
	for _, c := range cases {
		if got := Steps(c.n, c.start)(c.p); !approx(got, c.want) {
			t.Errorf("Steps(%d, %v)(%f) = %f, want %f", c.n, c.start, c.p, got, c.want)
		}
	}
}

func TestSpringSettles(t *testing.T) {
	spring := Spring(8, 0.4)
	if spring(0) != 0 || spring(1) != 1 {
		t.Errorf("spring endpoints = %f, %f, want 0 and 1", spring(0), spring(1))
	}
	if got := spring(0.5); got <= 0 {
		t.Errorf("spring(0.5) = %f, want > 0", got)
	}
}

// ---- Registry ------------------------------------------------------------------

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	a := r.Resolve("Power2.InOut", nil)
	b := r.Resolve("power2.inout", nil)
	if a == nil || b == nil || a(0.3) != b(0.3) {
		t.Error("mixed-case name should resolve to the same ease")
	}
}

func TestResolveConfigString(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	fn := r.Resolve("elastic.out(1, 0.5)", nil)
	if fn == nil {
		t.Fatal("elastic.out(1, 0.5) did not resolve")
	}
	want := Elastic("out", 1, 0.5)
	if got := fn(0.3); !approx(got, want(0.3)) {
		t.Errorf("elastic.out(1,0.5)(0.3) = %f, want %f", got, want(0.3))
	}
	if r.Resolve("steps(4)", nil)(0.5) != 0.5 {
		t.Error("steps(4)(0.5) should be 0.5")
	}
	if r.Has("nope(1)") {
		t.Error("unknown config ease should not resolve")
	}
}

func TestResolveUnknownWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	r := NewEaseRegistry(log.New(&buf))
	fallback := func(p float64) float64 { return 42 }

	for i := 0; i < 3; i++ {
		if got := r.Resolve("wobble", fallback)(0.5); got != 42 {
			t.Fatalf("unknown ease = %f, want fallback", got)
		}
	}
	if n := strings.Count(buf.String(), "unknown ease"); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}
}

func TestResolveFunctions(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	half := func(p float64) float64 { return p / 2 }
	if r.Resolve(half, nil)(1) != 0.5 {
		t.Error("plain func should be used as-is")
	}
	if r.Resolve(EaseFunc(half), nil)(1) != 0.5 {
		t.Error("EaseFunc should be used as-is")
	}
	if r.Resolve(nil, Linear)(0.3) != 0.3 {
		t.Error("nil should resolve to the fallback")
	}
}

func TestRegisterFamily(t *testing.T) {
	r := NewEaseRegistry(log.New(io.Discard))
	r.RegisterFamily("Cube", func(p float64) float64 { return p * p * p })
	for _, name := range []string{"cube", "cube.in", "cube.out", "cube.inout"} {
		if !r.Has(name) {
			t.Errorf("%s not registered", name)
		}
	}
	if got := r.Resolve("cube.in", nil)(0.5); got != 0.125 {
		t.Errorf("cube.in(0.5) = %f, want 0.125", got)
	}
}

func TestTweenUsesContextEase(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.RegisterEase("half", func(p float64) float64 { return p / 2 })
	target := &box{}
	tw := ctx.To(target, Vars{Duration: 1, Ease: "half", Props: Props{"x": 100}})
	tw.Render(0.5, true, false)
	if !approx(target.X, 25) {
		t.Errorf("X = %f, want ~25", target.X)
	}
}

package cadence

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	fease "github.com/fogleman/ease"
	gease "github.com/tanema/gween/ease"
)

// EaseFunc maps linear progress p in [0, 1] to an interpolation ratio. The
// result is not required to stay in [0, 1]: elastic and back overshoot.
type EaseFunc func(p float64) float64

// EaseConfig builds a parameterized ease from numeric arguments, as parsed
// from strings like "elastic.out(1,0.3)".
type EaseConfig func(args ...float64) EaseFunc

// Linear is the identity ease.
func Linear(p float64) float64 { return p }

// Invert returns the mirror of fn, used for yoyo eases: 1 - fn(1-p).
func Invert(fn EaseFunc) EaseFunc {
	return func(p float64) float64 { return 1 - fn(1-p) }
}

// FromTweenFunc adapts a gween easing function to an EaseFunc.
func FromTweenFunc(fn gease.TweenFunc) EaseFunc {
	return func(p float64) float64 { return float64(fn(float32(p), 0, 1, 1)) }
}

// inOutFromOut builds the symmetric in-out curve from an out curve.
func inOutFromOut(out EaseFunc) EaseFunc {
	return func(p float64) float64 {
		if p < 0.5 {
			return (1 - out(1-p*2)) / 2
		}
		return 0.5 + out((p-0.5)*2)/2
	}
}

// Elastic returns the elastic ease for variant "in", "out" or "inOut".
// amplitude < 1 is clamped; a zero period picks the variant default.
func Elastic(variant string, amplitude, period float64) EaseFunc {
	p1 := math.Max(amplitude, 1)
	if period == 0 {
		period = 0.45
		if variant != "inOut" {
			period = 0.3
		}
	}
	p2 := period
	if amplitude < 1 && amplitude > 0 {
		p2 /= amplitude
	}
	p3 := p2 / (2 * math.Pi) * math.Asin(1/p1)
	if math.IsNaN(p3) {
		p3 = 0
	}
	freq := 2 * math.Pi / p2
	out := func(p float64) float64 {
		if p == 1 {
			return 1
		}
		return p1*math.Pow(2, -10*p)*math.Sin((p-p3)*freq) + 1
	}
	return variantFromOut(variant, out)
}

// Back returns the back ease for the given variant and overshoot.
func Back(variant string, overshoot float64) EaseFunc {
	if overshoot == 0 {
		overshoot = 1.70158
	}
	out := func(p float64) float64 {
		if p == 0 {
			return 0
		}
		p--
		return p*p*((overshoot+1)*p+overshoot) + 1
	}
	return variantFromOut(variant, out)
}

// Steps returns a stepped ease with n equal jumps.
func Steps(n int, immediateStart bool) EaseFunc {
	if n < 1 {
		n = 1
	}
	p1 := 1 / float64(n)
	p2 := float64(n + 1)
	p3 := 0.0
	if immediateStart {
		p2 = float64(n)
		p3 = 1
	}
	limit := 1 - tinyNum
	return func(p float64) float64 {
		return (math.Floor(p2*clamp(0, limit, p)) + p3) * p1
	}
}

// Spring returns an ease sampled from a damped harmonic spring travelling
// from 0 to 1. angularFrequency and damping follow harmonica's parameters.
func Spring(angularFrequency, damping float64) EaseFunc {
	if angularFrequency <= 0 {
		angularFrequency = 6
	}
	if damping <= 0 {
		damping = 0.5
	}
	spring := harmonica.NewSpring(harmonica.FPS(60), angularFrequency, damping)
	samples := []float64{0}
	pos, vel := 0.0, 0.0
	for i := 0; i < 600; i++ {
		pos, vel = spring.Update(pos, vel, 1)
		samples = append(samples, pos)
		if math.Abs(pos-1) < 1e-3 && math.Abs(vel) < 1e-3 {
			break
		}
	}
	samples[len(samples)-1] = 1
	last := float64(len(samples) - 1)
	return func(p float64) float64 {
		if p <= 0 {
			return 0
		}
		if p >= 1 {
			return 1
		}
		x := p * last
		i := int(x)
		return samples[i] + (samples[i+1]-samples[i])*(x-float64(i))
	}
}

func variantFromOut(variant string, out EaseFunc) EaseFunc {
	switch variant {
	case "out":
		return out
	case "in":
		return Invert(out)
	default:
		return inOutFromOut(out)
	}
}

// EaseRegistry maps ease names to functions. Lookups are case-insensitive.
type EaseRegistry struct {
	eases   map[string]EaseFunc
	configs map[string]EaseConfig
	warned  map[string]bool
	logger  *log.Logger
}

// NewEaseRegistry returns a registry preloaded with the built-in families.
func NewEaseRegistry(logger *log.Logger) *EaseRegistry {
	r := &EaseRegistry{
		eases:   make(map[string]EaseFunc),
		configs: make(map[string]EaseConfig),
		warned:  make(map[string]bool),
		logger:  logger,
	}
	r.registerBuiltins()
	return r
}

// Register adds or replaces a named ease.
func (r *EaseRegistry) Register(name string, fn EaseFunc) {
	if fn == nil {
		panic("cadence: cannot register nil ease " + strconv.Quote(name))
	}
	r.eases[strings.ToLower(name)] = fn
}

// RegisterConfig adds a factory used when name is followed by arguments,
// as in "name(1,2)".
func (r *EaseRegistry) RegisterConfig(name string, cfg EaseConfig) {
	r.configs[strings.ToLower(name)] = cfg
}

// RegisterFamily registers name.in, name.out, name.inOut and the bare name
// (an alias for name.out) from an in-curve.
func (r *EaseRegistry) RegisterFamily(name string, in EaseFunc) {
	out := Invert(in)
	r.Register(name+".in", in)
	r.Register(name+".out", out)
	r.Register(name+".inOut", inOutFromOut(out))
	r.Register(name, out)
}

// Resolve turns v (a name, an EaseFunc, or nil) into an EaseFunc.
// Unknown names resolve to fallback and log a warning once.
func (r *EaseRegistry) Resolve(v any, fallback EaseFunc) EaseFunc {
	switch e := v.(type) {
	case nil:
		return fallback
	case EaseFunc:
		if e == nil {
			return fallback
		}
		return e
	case func(float64) float64:
		if e == nil {
			return fallback
		}
		return e
	case string:
		if fn := r.lookup(e); fn != nil {
			return fn
		}
		if !r.warned[e] {
			r.warned[e] = true
			if r.logger != nil {
				r.logger.Warn("unknown ease", "name", e)
			}
		}
		return fallback
	}
	return fallback
}

// Has reports whether name resolves to an ease.
func (r *EaseRegistry) Has(name string) bool {
	return r.lookup(name) != nil
}

// Names returns the registered ease names in sorted order.
func (r *EaseRegistry) Names() []string {
	names := make([]string, 0, len(r.eases))
	for name := range r.eases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *EaseRegistry) lookup(name string) EaseFunc {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	open := strings.IndexByte(name, '(')
	if open < 0 {
		return r.eases[name]
	}
	end := strings.LastIndexByte(name, ')')
	if end < open {
		return nil
	}
	cfg := r.configs[strings.TrimSpace(name[:open])]
	if cfg == nil {
		return nil
	}
	var args []float64
	for _, part := range strings.Split(name[open+1:end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "true":
			args = append(args, 1)
			continue
		case "false":
			args = append(args, 0)
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil
		}
		args = append(args, f)
	}
	return cfg(args...)
}

func arg(args []float64, i int) float64 {
	if i < len(args) {
		return args[i]
	}
	return 0
}

func (r *EaseRegistry) registerBuiltins() {
	r.Register("none", Linear)
	r.Register("linear", Linear)
	r.Register("power0", Linear)
	r.Register("power0.in", Linear)
	r.Register("power0.out", Linear)
	r.Register("power0.inOut", Linear)

	penner := []struct {
		names          []string
		in, out, inOut fease.Function
		outIn          gease.TweenFunc
	}{
		{[]string{"power1", "quad"}, fease.InQuad, fease.OutQuad, fease.InOutQuad, gease.OutInQuad},
		{[]string{"power2", "cubic"}, fease.InCubic, fease.OutCubic, fease.InOutCubic, gease.OutInCubic},
		{[]string{"power3", "quart"}, fease.InQuart, fease.OutQuart, fease.InOutQuart, gease.OutInQuart},
		{[]string{"power4", "quint", "strong"}, fease.InQuint, fease.OutQuint, fease.InOutQuint, gease.OutInQuint},
		{[]string{"sine"}, fease.InSine, fease.OutSine, fease.InOutSine, gease.OutInSine},
		{[]string{"expo"}, fease.InExpo, fease.OutExpo, fease.InOutExpo, gease.OutInExpo},
		{[]string{"circ"}, fease.InCirc, fease.OutCirc, fease.InOutCirc, gease.OutInCirc},
		{[]string{"bounce"}, fease.InBounce, fease.OutBounce, fease.InOutBounce, gease.OutInBounce},
	}
	for _, p := range penner {
		for _, name := range p.names {
			r.Register(name+".in", EaseFunc(p.in))
			r.Register(name+".out", EaseFunc(p.out))
			r.Register(name+".inOut", EaseFunc(p.inOut))
			r.Register(name+".outIn", FromTweenFunc(p.outIn))
			r.Register(name, EaseFunc(p.out))
		}
	}

	for _, variant := range []string{"in", "out", "inOut"} {
		v := variant
		r.Register("elastic."+v, Elastic(v, 1, 0))
		r.RegisterConfig("elastic."+v, func(args ...float64) EaseFunc {
			return Elastic(v, arg(args, 0), arg(args, 1))
		})
		r.Register("back."+v, Back(v, 0))
		r.RegisterConfig("back."+v, func(args ...float64) EaseFunc {
			return Back(v, arg(args, 0))
		})
	}
	r.Register("elastic", Elastic("out", 1, 0))
	r.RegisterConfig("elastic", func(args ...float64) EaseFunc {
		return Elastic("out", arg(args, 0), arg(args, 1))
	})
	r.Register("back", Back("out", 0))
	r.RegisterConfig("back", func(args ...float64) EaseFunc {
		return Back("out", arg(args, 0))
	})
	r.Register("elastic.outIn", FromTweenFunc(gease.OutInElastic))
	r.Register("back.outIn", FromTweenFunc(gease.OutInBack))

	r.Register("steps", Steps(1, false))
	r.RegisterConfig("steps", func(args ...float64) EaseFunc {
		return Steps(int(arg(args, 0)), arg(args, 1) != 0)
	})

	r.Register("spring", Spring(0, 0))
	r.RegisterConfig("spring", func(args ...float64) EaseFunc {
		return Spring(arg(args, 0), arg(args, 1))
	})
}

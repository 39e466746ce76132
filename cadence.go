package cadence

import "math"

const (
	// tinyNum nudges playheads off exact boundaries.
	tinyNum = 1e-8
	// bigNum stands in for "forever" in label and position math.
	bigNum = 1e8
	// infiniteDuration is the total duration of an animation with Repeat < 0.
	infiniteDuration = 1e10
)

// Props holds the tweened properties of a tween: property name to end (or,
// for From, start) value. Values may be numbers, numeric or relative strings
// ("+=10", "-=5", "*=2"), complex strings ("rgba(255,0,0,1)"), bools, or a
// PropFunc evaluated per target.
type Props map[string]any

// PropFunc computes a per-target value at tween initialization.
type PropFunc func(index int, target any) any

// Bool returns a pointer to v, for the optional flags in Vars.
func Bool(v bool) *bool { return &v }

func isNotFalse(b *bool) bool { return b == nil || *b }

func isTrue(b *bool) bool { return b != nil && *b }

// roundTime rounds a start or end time to 4 decimals so repeated additions
// do not accumulate drift.
func roundTime(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 || math.IsNaN(r) {
		return 0
	}
	return r
}

// roundPrecise rounds playhead math to 7 decimals.
func roundPrecise(v float64) float64 {
	r := math.Round(v*1e7) / 1e7
	if r == 0 || math.IsNaN(r) {
		return 0
	}
	return r
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// animationCycle returns the zero-based iteration that tTime falls in.
// Landing exactly on a cycle boundary belongs to the completing iteration.
func animationCycle(tTime, cycleDuration float64) int {
	if cycleDuration <= 0 {
		return 0
	}
	t := roundPrecise(tTime / cycleDuration)
	whole := math.Floor(t)
	if t != 0 && whole == t {
		return int(whole) - 1
	}
	return int(whole)
}

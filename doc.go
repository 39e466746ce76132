// Package cadence is a tween and timeline scheduling engine for games and
// tools written in Go.
//
// A [Tween] interpolates properties of one or more targets over time. A
// [Timeline] sequences tweens and other timelines, with labels, relative
// positions, pauses and callbacks. Both share the playhead controls of
// [Animation]: play, pause, reverse, seek, time scale, repeat and yoyo.
//
// # Quick start
//
// Every tween belongs to a [Context]. The package-level helpers use a
// default one:
//
//	box := &Box{X: 0}
//	cadence.To(box, cadence.Vars{
//		Duration: 1,
//		Ease:     "power2.inOut",
//		Props:    cadence.Props{"x": 100},
//	})
//
// Something must tick the Context. In an Ebitengine game, the driver
// package does it once per frame:
//
//	ctx := cadence.NewContext(cadence.WithDriver(driver.New()))
//
// Without a driver, call [Context.Tick] yourself, typically from a game
// loop. Tests pass a [VirtualClock] with [WithClock] and tick it manually.
//
// # Targets
//
// A target is any of:
//
//   - a type implementing [PropertyAccessor]
//   - a map[string]any or map[string]float64 with the property as key
//   - a value with X()/SetX(v) or GetX()/SetX(v) method pairs
//   - a pointer to a struct with an exported field X
//
// Property names are matched against Go names by upper-casing the first
// letter, so "x" reaches field X and method SetX.
//
// # Timelines
//
//	tl := ctx.NewTimeline(cadence.TimelineVars{Repeat: 1, Yoyo: true})
//	tl.To(box, cadence.Vars{Duration: 1, Props: cadence.Props{"x": 100}}, nil)
//	tl.AddLabel("fade", nil)
//	tl.To(box, cadence.Vars{Duration: 0.5, Props: cadence.Props{"alpha": 0}}, "fade+=0.25")
//	tl.To(box, cadence.Vars{Duration: 0.5, Props: cadence.Props{"y": 50}}, "<")
//
// Positions are documented on [Timeline.Add].
//
// # Eases
//
// Eases are looked up by name in the Context's [EaseRegistry]: "none",
// "power1" to "power4", "sine", "expo", "circ", "bounce", "back",
// "elastic", "steps(n)" and "spring(freq, damping)", each with ".in",
// ".out", ".inOut" and ".outIn" variants.
//
// # Callbacks
//
// Callbacks run synchronously inside the render that triggers them and may
// create, kill or seek animations, including the one that fired. A
// panicking callback is logged and does not abort the render.
package cadence

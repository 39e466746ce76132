package cadence

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overwrite selects how a new tween treats other tweens of the same targets.
type Overwrite uint8

const (
	// OverwriteDefault uses the Context's configured default (auto).
	OverwriteDefault Overwrite = iota
	// OverwriteAuto kills the overlapping properties of tweens that are
	// active when this tween first renders.
	OverwriteAuto
	// OverwriteAll kills every tween of the same targets at creation.
	OverwriteAll
	// OverwriteNone leaves other tweens alone.
	OverwriteNone
)

func (o Overwrite) String() string {
	switch o {
	case OverwriteAuto:
		return "auto"
	case OverwriteAll:
		return "all"
	case OverwriteNone:
		return "none"
	}
	return "default"
}

// ParseOverwrite parses "auto", "all", "none" (or "true"/"false" as
// aliases for all/none).
func ParseOverwrite(s string) (Overwrite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return OverwriteDefault, nil
	case "auto":
		return OverwriteAuto, nil
	case "all", "true":
		return OverwriteAll, nil
	case "none", "false":
		return OverwriteNone, nil
	}
	return OverwriteDefault, fmt.Errorf("unknown overwrite mode %q", s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Overwrite) UnmarshalYAML(value *yaml.Node) error {
	mode, err := ParseOverwrite(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*o = mode
	return nil
}

// TweenKind tags how a tween's Props are interpreted.
type TweenKind uint8

const (
	// KindTo animates from the current values to Props.
	KindTo TweenKind = iota
	// KindFrom animates from Props to the current values.
	KindFrom
	// KindFromTo animates from StartAt to Props.
	KindFromTo
)

func (k TweenKind) String() string {
	switch k {
	case KindTo:
		return "to"
	case KindFrom:
		return "from"
	case KindFromTo:
		return "fromTo"
	}
	return "unknown"
}

// Vars configures a tween. Zero values mean "not set": they are filled from
// the Defaults of the enclosing timelines. An Ease or Overwrite still unset
// falls back to the Context configuration; Duration has no such fallback.
type Vars struct {
	// Duration in seconds. Zero makes the tween instantaneous.
	Duration float64 `yaml:"duration"`
	Delay    float64 `yaml:"delay"`

	// Ease is an ease name ("power2.inOut", "elastic.out(1, 0.3)"), an
	// EaseFunc or a func(float64) float64.
	Ease any `yaml:"ease"`
	// YoyoEase is the ease used on yoyo iterations. true reuses Ease.
	YoyoEase any `yaml:"yoyo_ease"`

	// Repeat is the number of extra iterations; -1 repeats forever.
	Repeat        int     `yaml:"repeat"`
	RepeatDelay   float64 `yaml:"repeat_delay"`
	RepeatRefresh bool    `yaml:"repeat_refresh"`
	Yoyo          bool    `yaml:"yoyo"`

	Paused   bool `yaml:"paused"`
	Reversed bool `yaml:"reversed"`

	Overwrite Overwrite `yaml:"overwrite"`
	// ImmediateRender applies the start state at creation. From and FromTo
	// tweens default to true, To tweens to false.
	ImmediateRender *bool `yaml:"immediate_render"`
	// Lazy defers the first write after initialization to the end of the
	// frame. Defaults to true for tweens with a duration.
	Lazy *bool `yaml:"lazy"`
	// AutoRevert restores pre-tween values when a From or FromTo tween is
	// rewound past its start even when it rendered immediately.
	AutoRevert bool `yaml:"auto_revert"`

	Props   Props `yaml:"props"`
	StartAt Props `yaml:"start_at"`

	// Modifiers post-process the numeric value of a property per render.
	Modifiers map[string]func(float64) float64 `yaml:"-"`
	// Round lists properties snapped to integers.
	Round []string `yaml:"round"`

	ID   string `yaml:"id"`
	Data any    `yaml:"data"`

	OnStart           func() `yaml:"-"`
	OnUpdate          func() `yaml:"-"`
	OnComplete        func() `yaml:"-"`
	OnReverseComplete func() `yaml:"-"`
	OnRepeat          func() `yaml:"-"`
	OnInterrupt       func() `yaml:"-"`

	// instant keeps Duration at zero when defaults are applied.
	instant bool
}

func (v *Vars) callbacks() [eventTypeCount]func() {
	var cb [eventTypeCount]func()
	cb[EventStart] = v.OnStart
	cb[EventUpdate] = v.OnUpdate
	cb[EventComplete] = v.OnComplete
	cb[EventReverseComplete] = v.OnReverseComplete
	cb[EventRepeat] = v.OnRepeat
	cb[EventInterrupt] = v.OnInterrupt
	return cb
}

func (v *Vars) coreVars() coreVars {
	return coreVars{
		duration:      v.Duration,
		delay:         v.Delay,
		repeat:        v.Repeat,
		repeatDelay:   v.RepeatDelay,
		repeatRefresh: v.RepeatRefresh,
		yoyo:          v.Yoyo || (v.YoyoEase != nil && v.YoyoEase != false),
		id:            v.ID,
		data:          v.Data,
		callbacks:     v.callbacks(),
	}
}

// fillFrom copies the fields of d into the unset fields of v.
func (v *Vars) fillFrom(d *Vars) {
	if d == nil {
		return
	}
	if v.Duration == 0 && !v.instant {
		v.Duration = d.Duration
	}
	if v.Ease == nil {
		v.Ease = d.Ease
	}
	if v.YoyoEase == nil {
		v.YoyoEase = d.YoyoEase
	}
	if v.Repeat == 0 {
		v.Repeat = d.Repeat
	}
	if v.RepeatDelay == 0 {
		v.RepeatDelay = d.RepeatDelay
	}
	if !v.Yoyo {
		v.Yoyo = d.Yoyo
	}
	if v.Overwrite == OverwriteDefault {
		v.Overwrite = d.Overwrite
	}
	if v.ImmediateRender == nil {
		v.ImmediateRender = d.ImmediateRender
	}
	if v.Lazy == nil {
		v.Lazy = d.Lazy
	}
	if len(d.Round) > 0 && len(v.Round) == 0 {
		v.Round = d.Round
	}
	if v.OnStart == nil {
		v.OnStart = d.OnStart
	}
	if v.OnUpdate == nil {
		v.OnUpdate = d.OnUpdate
	}
	if v.OnComplete == nil {
		v.OnComplete = d.OnComplete
	}
	if v.OnReverseComplete == nil {
		v.OnReverseComplete = d.OnReverseComplete
	}
	if v.OnRepeat == nil {
		v.OnRepeat = d.OnRepeat
	}
	if v.OnInterrupt == nil {
		v.OnInterrupt = d.OnInterrupt
	}
}

// TimelineVars configures a timeline.
type TimelineVars struct {
	Delay         float64 `yaml:"delay"`
	Repeat        int     `yaml:"repeat"`
	RepeatDelay   float64 `yaml:"repeat_delay"`
	RepeatRefresh bool    `yaml:"repeat_refresh"`
	Yoyo          bool    `yaml:"yoyo"`
	Paused        bool    `yaml:"paused"`
	Reversed      bool    `yaml:"reversed"`

	// SmoothChildTiming moves children's start times when their playhead is
	// changed so they do not jump.
	SmoothChildTiming bool `yaml:"smooth_child_timing"`
	// AutoRemoveChildren removes children once they complete.
	AutoRemoveChildren bool `yaml:"auto_remove_children"`
	// SortChildren keeps children ordered by start time. Defaults to true.
	SortChildren *bool `yaml:"sort_children"`

	// Defaults fill unset fields of every tween created in this timeline
	// and in nested timelines.
	Defaults *Vars `yaml:"defaults"`

	ID   string `yaml:"id"`
	Data any    `yaml:"data"`

	OnStart           func() `yaml:"-"`
	OnUpdate          func() `yaml:"-"`
	OnComplete        func() `yaml:"-"`
	OnReverseComplete func() `yaml:"-"`
	OnRepeat          func() `yaml:"-"`
	OnInterrupt       func() `yaml:"-"`
}

func (v *TimelineVars) coreVars() coreVars {
	var cb [eventTypeCount]func()
	cb[EventStart] = v.OnStart
	cb[EventUpdate] = v.OnUpdate
	cb[EventComplete] = v.OnComplete
	cb[EventReverseComplete] = v.OnReverseComplete
	cb[EventRepeat] = v.OnRepeat
	cb[EventInterrupt] = v.OnInterrupt
	return coreVars{
		delay:         v.Delay,
		repeat:        v.Repeat,
		repeatDelay:   v.RepeatDelay,
		repeatRefresh: v.RepeatRefresh,
		yoyo:          v.Yoyo,
		id:            v.ID,
		data:          v.Data,
		callbacks:     cb,
	}
}

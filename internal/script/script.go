// Package script loads YAML timeline scripts. A script declares named map
// targets and a list of steps that are sequenced into a cadence.Timeline.
//
//	targets:
//	  box: {x: 0, y: 0, alpha: 1}
//	timeline:
//	  repeat: 1
//	  yoyo: true
//	steps:
//	  - to: box
//	    duration: 1
//	    ease: power2.out
//	    props: {x: 100}
//	  - label: settle
//	  - to: box
//	    position: "<0.5"
//	    props: {alpha: 0}
//	  - pause: "+=0.5"
//	    resume: 1
//	  - call: log
//	    message: done
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/phanxgames/cadence"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoSteps is returned for scripts without steps.
	ErrNoSteps = errors.New("no steps")
	// ErrUnknownTarget is returned when a step names an undeclared target.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrUnknownCall is returned when a call step names an unregistered
	// function.
	ErrUnknownCall = errors.New("unknown call")
)

// TargetList names one or more targets. YAML accepts a scalar or a
// sequence.
type TargetList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *TargetList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = TargetList{value.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	}
	return fmt.Errorf("line %d: targets must be a name or a list of names", value.Line)
}

// Step is a single entry of a script. Exactly one action key (to, from,
// from_to, set, label, pause or call) should be present.
type Step struct {
	To     TargetList `yaml:"to"`
	From   TargetList `yaml:"from"`
	FromTo TargetList `yaml:"from_to"`
	Set    TargetList `yaml:"set"`

	// FromProps are the start values of a from_to step.
	FromProps cadence.Props `yaml:"from_props"`

	Label string `yaml:"label"`
	// Pause inserts a pause marker. It is either true (the marker goes at
	// Position) or a position itself. Resume, when positive, restarts
	// playback that many seconds after the pause is hit.
	Pause  any     `yaml:"pause"`
	Resume float64 `yaml:"resume"`

	Call    string `yaml:"call"`
	Message string `yaml:"message"`

	Position any     `yaml:"position"`
	Stagger  float64 `yaml:"stagger"`

	cadence.Vars `yaml:",inline"`
}

func (s *Step) action() string {
	switch {
	case len(s.To) > 0:
		return "to"
	case len(s.From) > 0:
		return "from"
	case len(s.FromTo) > 0:
		return "from_to"
	case len(s.Set) > 0:
		return "set"
	case s.Label != "":
		return "label"
	case s.Pause != nil && s.Pause != false:
		return "pause"
	case s.Call != "":
		return "call"
	}
	return ""
}

// Script is a parsed timeline script.
type Script struct {
	Targets  map[string]map[string]any `yaml:"targets"`
	Timeline cadence.TimelineVars      `yaml:"timeline"`
	Steps    []Step                    `yaml:"steps"`
}

// Parse decodes a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrNoSteps)
	}
	for i := range s.Steps {
		if s.Steps[i].action() == "" {
			return nil, fmt.Errorf("parse script: step %d: no action", i)
		}
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return Parse(data)
}

// Built is a script sequenced into a timeline.
type Built struct {
	Timeline *cadence.Timeline
	// Targets holds the live target maps written by the timeline. Numeric
	// values are float64.
	Targets map[string]map[string]any
	// Names lists the target names in sorted order.
	Names []string
}

// Build creates a timeline in ctx from the script. calls maps call step
// names to functions; "log" is always available and writes Message to the
// context logger.
func (s *Script) Build(ctx *cadence.Context, calls map[string]func(Step)) (*Built, error) {
	b := &Built{Targets: make(map[string]map[string]any, len(s.Targets))}
	for name, props := range s.Targets {
		m := make(map[string]any, len(props))
		for k, v := range props {
			m[k] = normalize(v)
		}
		b.Targets[name] = m
		b.Names = append(b.Names, name)
	}
	sort.Strings(b.Names)

	tl := ctx.NewTimeline(s.Timeline)
	b.Timeline = tl
	for i := range s.Steps {
		if err := b.addStep(ctx, tl, s.Steps[i], calls); err != nil {
			tl.Kill()
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return b, nil
}

func (b *Built) addStep(ctx *cadence.Context, tl *cadence.Timeline, st Step, calls map[string]func(Step)) error {
	vars := st.Vars
	vars.Props = normalizeProps(vars.Props)
	vars.StartAt = normalizeProps(vars.StartAt)

	switch st.action() {
	case "to":
		targets, err := b.resolve(st.To)
		if err != nil {
			return err
		}
		if st.Stagger != 0 {
			tl.StaggerTo(targets, vars, st.Stagger, st.Position)
		} else {
			tl.To(targets, vars, st.Position)
		}
	case "from":
		targets, err := b.resolve(st.From)
		if err != nil {
			return err
		}
		if st.Stagger != 0 {
			tl.StaggerFrom(targets, vars, st.Stagger, st.Position)
		} else {
			tl.From(targets, vars, st.Position)
		}
	case "from_to":
		targets, err := b.resolve(st.FromTo)
		if err != nil {
			return err
		}
		from := normalizeProps(st.FromProps)
		if st.Stagger != 0 {
			tl.StaggerFromTo(targets, from, vars, st.Stagger, st.Position)
		} else {
			tl.FromTo(targets, from, vars, st.Position)
		}
	case "set":
		targets, err := b.resolve(st.Set)
		if err != nil {
			return err
		}
		tl.Set(targets, vars.Props, st.Position)
	case "label":
		tl.AddLabel(st.Label, st.Position)
	case "pause":
		var fn func()
		if st.Resume > 0 {
			delay := st.Resume
			fn = func() { ctx.DelayedCall(delay, tl.Resume) }
		}
		tl.AddPause(st.pausePosition(), fn)
	case "call":
		fn, err := lookupCall(ctx, st, calls)
		if err != nil {
			return err
		}
		tl.Call(func() { fn(st) }, st.Position)
	}
	return nil
}

func (s *Step) pausePosition() any {
	if s.Pause == true {
		return s.Position
	}
	return s.Pause
}

func lookupCall(ctx *cadence.Context, st Step, calls map[string]func(Step)) (func(Step), error) {
	if fn, ok := calls[st.Call]; ok {
		return fn, nil
	}
	if st.Call == "log" {
		return func(st Step) { ctx.Logger().Info("script", "message", st.Message) }, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCall, st.Call)
}

func (b *Built) resolve(names TargetList) ([]any, error) {
	out := make([]any, 0, len(names))
	for _, n := range names {
		m, ok := b.Targets[n]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownTarget, n)
		}
		out = append(out, m)
	}
	return out, nil
}

// normalize widens YAML integers to float64 so tweened map values are not
// rounded on write.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return v
}

func normalizeProps(p cadence.Props) cadence.Props {
	if p == nil {
		return nil
	}
	out := make(cadence.Props, len(p))
	for k, v := range p {
		out[k] = normalize(v)
	}
	return out
}

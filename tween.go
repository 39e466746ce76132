package cadence

import (
	"math"
	"sort"
)

// Tween interpolates properties of one or more targets over time. Start
// values are read when the tween first renders, not when it is created.
type Tween struct {
	core

	kind    TweenKind
	targets []any
	vars    Vars

	pt     *PropTween
	ptLast *PropTween
	lookup []map[string]*PropTween
	// killed records properties killed before initialization so they are
	// skipped when records are built.
	killed []*killedProps

	ease  EaseFunc
	yEase EaseFunc
	from  bool
	ratio float64

	overwrite Overwrite
	startAt   *Tween
	// sat is the tween that owns this startAt tween.
	sat *Tween

	lazy         bool
	lazyTime     float64
	lazySuppress bool

	callbackOnly bool
}

type killedProps struct {
	all   bool
	props map[string]bool
}

func (k *killedProps) names() []string {
	names := make([]string, 0, len(k.props))
	for p := range k.props {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// newTween creates a tween of kind and adds it to parent (the root when nil)
// at position.
func newTween(c *Context, targets []any, vars Vars, kind TweenKind, parent *Timeline, position any) *Tween {
	if parent == nil {
		parent = c.root
	}
	for p := parent; p != nil; p = p.parent {
		vars.fillFrom(p.defaults)
	}
	if kind != KindTo && vars.ImmediateRender == nil {
		vars.ImmediateRender = Bool(true)
	}
	if kind == KindFrom && vars.StartAt != nil {
		kind = KindFromTo
	}
	tw := &Tween{kind: kind, vars: vars, targets: targets}
	tw.initCore(c, tw, vars.coreVars())
	tw.from = kind == KindFrom

	if len(targets) == 0 && c.config.NullTargetWarn {
		c.logger.Warn("tween has no targets", "id", vars.ID)
	}
	tw.overwrite = vars.Overwrite
	if tw.overwrite == OverwriteDefault {
		tw.overwrite = c.defaultOverwrite
	}
	if tw.overwrite == OverwriteAll && len(targets) > 0 {
		c.overwriting = tw
		c.root.KillTweensOf(targets)
		c.overwriting = nil
	}

	pos := c.root.time
	if parent != c.root || position != nil {
		pos = parsePosition(parent, position, tw)
	}
	addToTimeline(parent, tw, pos, false)

	if vars.Reversed {
		tw.Reverse()
	}
	if vars.Paused {
		tw.SetPaused(true)
	}
	if isTrue(vars.ImmediateRender) ||
		(tw.dur == 0 && tw.start == roundTime(parent.time) && isNotFalse(vars.ImmediateRender) && hasNoPausedAncestors(&tw.core)) {
		tw.tTime = -tinyNum
		tw.Render(math.Max(0, -tw.delay), false, false)
	}
	return tw
}

// setVars returns the vars of an instant set.
func setVars(props Props) Vars {
	return Vars{Props: props, instant: true}
}

// newDelayedCall creates a zero-duration tween whose completion (in either
// direction) calls fn.
func newDelayedCall(c *Context, delay float64, fn func(), parent *Timeline, position any) *Tween {
	vars := Vars{
		Delay:             delay,
		ImmediateRender:   Bool(false),
		Lazy:              Bool(false),
		Overwrite:         OverwriteNone,
		OnComplete:        fn,
		OnReverseComplete: fn,
	}
	if parent == nil {
		parent = c.root
	}
	tw := &Tween{kind: KindTo, vars: vars, callbackOnly: true, overwrite: OverwriteNone}
	tw.initCore(c, tw, vars.coreVars())
	pos := c.root.time
	if parent != c.root || position != nil {
		pos = parsePosition(parent, position, tw)
	}
	addToTimeline(parent, tw, pos, false)
	return tw
}

func hasNoPausedAncestors(a *core) bool {
	if a.ts == 0 {
		return false
	}
	for p := a.parent; p != nil; p = p.parent {
		if p.ts == 0 {
			return false
		}
	}
	return true
}

// Kind returns how the tween's Props are interpreted.
func (tw *Tween) Kind() TweenKind { return tw.kind }

// Targets returns the tween's targets.
func (tw *Tween) Targets() []any { return tw.targets }

// Vars returns the vars the tween was created with, after defaults.
func (tw *Tween) Vars() Vars { return tw.vars }

// Ratio returns the eased progress of the last render.
func (tw *Tween) Ratio() float64 { return tw.ratio }

// Records returns the first property record, or nil before initialization.
func (tw *Tween) Records() *PropTween { return tw.pt }

func (tw *Tween) appendRecord(pt *PropTween) {
	if tw.ptLast == nil {
		tw.pt = pt
	} else {
		tw.ptLast.next = pt
	}
	tw.ptLast = pt
}

func (tw *Tween) removeRecord(target *PropTween) {
	var prev *PropTween
	for pt := tw.pt; pt != nil; pt = pt.next {
		if pt != target {
			prev = pt
			continue
		}
		if prev == nil {
			tw.pt = pt.next
		} else {
			prev.next = pt.next
		}
		if tw.ptLast == pt {
			tw.ptLast = prev
		}
		pt.next = nil
		return
	}
}

// init builds the property records: resolves eases, creates the startAt
// tween for From and FromTo, reads start values, and applies auto
// overwrite.
func (tw *Tween) init(time, tTime float64) {
	c := tw.ctx
	v := &tw.vars
	dur := tw.dur
	immediateRender := isTrue(v.ImmediateRender)
	prevStartAt := tw.startAt
	autoOverwrite := tw.overwrite == OverwriteAuto

	tw.ease = c.eases.Resolve(v.Ease, c.defaultEase)
	tw.yEase = nil
	if ye := v.YoyoEase; ye != nil {
		use := true
		if b, ok := ye.(bool); ok {
			use = b
			ye = v.Ease
		}
		if use {
			tw.yEase = Invert(c.eases.Resolve(ye, c.defaultEase))
		}
	}
	if tw.yEase != nil && tw.yoyo && tw.repeat == 0 {
		tw.ease, tw.yEase = tw.yEase, tw.ease
	}

	if prevStartAt != nil {
		if prevStartAt.lazy {
			prevStartAt.Render(prevStartAt.lazyTime, true, true)
			prevStartAt.lazy = false
		}
		prevStartAt.Render(-1, true, true)
		prevStartAt.lazy = false
	}

	switch {
	case v.StartAt != nil:
		sv := Vars{
			Props:           v.StartAt,
			Overwrite:       OverwriteNone,
			ImmediateRender: Bool(true),
			Lazy:            Bool(prevStartAt == nil && isNotFalse(v.Lazy)),
			Modifiers:       v.Modifiers,
			Round:           v.Round,
		}
		if v.OnUpdate != nil {
			sv.OnUpdate = func() { c.callback(&tw.core, EventUpdate, false) }
		}
		tw.startAt = newStartAt(c, tw, sv, roleStart)
		if time < 0 && !immediateRender && !v.AutoRevert {
			tw.startAt.Render(-1, true, true)
		}
		if immediateRender && dur != 0 && time <= 0 && tTime <= 0 {
			if time != 0 {
				tw.zTime = time
			}
			return
		}
	case tw.from && dur != 0 && prevStartAt == nil:
		if time != 0 {
			immediateRender = false
		}
		sv := Vars{
			Props:           v.Props,
			Overwrite:       OverwriteNone,
			ImmediateRender: Bool(immediateRender),
			Lazy:            Bool(immediateRender && isNotFalse(v.Lazy)),
			Modifiers:       v.Modifiers,
			Round:           v.Round,
		}
		tw.startAt = newStartAt(c, tw, sv, roleFromStart)
		if time < 0 {
			tw.startAt.Render(-1, true, false)
		}
		tw.zTime = time
		if !immediateRender {
			tw.startAt.init(tinyNum, tinyNum)
		} else if time == 0 {
			return
		}
	}

	tw.pt = nil
	tw.ptLast = nil
	lazy := (dur != 0 && isNotFalse(v.Lazy)) || (dur == 0 && isTrue(v.Lazy))
	names := make([]string, 0, len(v.Props))
	for p := range v.Props {
		names = append(names, p)
	}
	sort.Strings(names)

	tw.lookup = make([]map[string]*PropTween, len(tw.targets))
	overwritten := false
	for i, target := range tw.targets {
		lk := make(map[string]*PropTween, len(names))
		tw.lookup[i] = lk
		key := identity(target)
		if key != nil && c.lazyLookup[key] && len(c.lazyTweens) > 0 {
			c.lazyRender()
		}
		for _, p := range names {
			value := v.Props[p]
			switch fn := value.(type) {
			case PropFunc:
				value = fn(i, target)
			case func(int, any) any:
				value = fn(i, target)
			}
			if plugin, ok := c.plugins.Get(p); ok {
				state, ok := plugin.Init(target, value, tw, i, tw.targets)
				if !ok {
					continue
				}
				pt := &PropTween{Kind: RecordPlugin, Target: target, Property: p, plugin: plugin, state: state, index: i}
				if acc, ok := resolveAccessor(target, p); ok {
					pt.set = acc.set
				}
				tw.appendRecord(pt)
				lk[p] = pt
				continue
			}
			acc, ok := resolveAccessor(target, p)
			if !ok {
				c.missingProperty(tw, target, p)
				continue
			}
			pt := newRecord(acc.get(), value)
			pt.Target = target
			pt.Property = p
			pt.set = acc.set
			pt.index = i
			if m := v.Modifiers[p]; m != nil {
				pt.Modifier = m
			}
			for _, r := range v.Round {
				if r == p {
					pt.Round = true
					if pt.parts != nil {
						for part := pt.parts; part != nil; part = part.next {
							part.round = true
						}
					}
				}
			}
			tw.appendRecord(pt)
			lk[p] = pt
		}
		if tw.killed != nil && tw.killed[i] != nil {
			if tw.killed[i].all {
				tw.killProps([]any{target}, nil)
			} else {
				tw.killProps([]any{target}, tw.killed[i].names())
			}
		}
		if autoOverwrite && tw.pt != nil && len(lk) > 0 {
			c.overwriting = tw
			props := make([]string, 0, len(lk))
			for p := range lk {
				props = append(props, p)
			}
			c.root.killTweensOfAt([]any{target}, props, tw.GlobalTime(time))
			overwritten = tw.parent == nil
			c.overwriting = nil
		}
		if tw.pt != nil && lazy && key != nil {
			c.lazyLookup[key] = true
		}
	}
	tw.onUpdate = tw.cb[EventUpdate]
	tw.initted = (tw.killed == nil || tw.pt != nil) && !overwritten
}

// newStartAt builds the detached set tween that applies a From or FromTo
// tween's starting values.
func newStartAt(c *Context, owner *Tween, vars Vars, r role) *Tween {
	sa := &Tween{kind: KindTo, vars: vars, targets: owner.targets, overwrite: OverwriteNone, sat: owner}
	sa.initCore(c, sa, vars.coreVars())
	sa.role = r
	sa.start = owner.start
	sa.end = owner.start
	if isTrue(vars.ImmediateRender) {
		sa.tTime = -tinyNum
		sa.Render(0, false, false)
	}
	return sa
}

// attemptInit initializes the tween and reports whether rendering must stop
// here, either because nothing was initialized or because the first write
// was deferred to the end of the frame.
func (tw *Tween) attemptInit(time float64, force, suppressEvents bool, tTime float64) bool {
	tw.init(time, tTime)
	if !tw.initted {
		return true
	}
	c := tw.ctx
	lazyOK := (tw.dur != 0 && isNotFalse(tw.vars.Lazy)) || (tw.dur == 0 && isTrue(tw.vars.Lazy))
	if !force && tw.pt != nil && lazyOK && c.lastRenderedFrame != c.ticker.frame {
		c.lazyTweens = append(c.lazyTweens, tw)
		tw.lazy = true
		tw.lazyTime = tTime
		tw.lazySuppress = suppressEvents
		return true
	}
	return false
}

func (tw *Tween) isFromStart() bool {
	return tw.role == roleStart || tw.role == roleFromStart
}

// parentPlayheadIsBeforeStart reports whether any ancestor's playhead sits
// before its start.
func parentPlayheadIsBeforeStart(a *core) bool {
	p := a.parent
	return p != nil && p.ts != 0 && p.initted && p.lock == 0 &&
		(p.RawTime(false) < 0 || parentPlayheadIsBeforeStart(&p.core))
}

// rewindStartAt renders the startAt tween when the playhead moves back past
// the start, unless the tween keeps its immediately rendered values.
func (tw *Tween) rewindStartAt(totalTime float64, force bool) {
	if tw.startAt == nil {
		return
	}
	if isTrue(tw.vars.ImmediateRender) && !tw.vars.AutoRevert {
		return
	}
	tw.startAt.Render(totalTime, true, force)
}

// Render moves the playhead to totalTime and writes the interpolated values.
func (tw *Tween) Render(totalTime float64, suppressEvents, force bool) {
	prevTime := tw.time
	tDur := tw.tDur
	dur := tw.dur
	isNegative := totalTime < 0
	var tTime float64
	switch {
	case totalTime > tDur-tinyNum && !isNegative:
		tTime = tDur
	case totalTime < tinyNum:
		tTime = 0
	default:
		tTime = totalTime
	}
	if dur == 0 {
		tw.renderZeroDuration(totalTime, suppressEvents, force)
		return
	}
	if !(tTime != tw.tTime || totalTime == 0 || force || (!tw.initted && tw.tTime != 0) ||
		(tw.startAt != nil && (tw.zTime < 0) != isNegative) || tw.lazy) {
		return
	}

	t := tTime
	iteration, prevIteration := 0, 0
	isYoyo := false
	var yoyoEase EaseFunc
	if tw.repeat != 0 {
		cycleDuration := dur + tw.rDelay
		t = roundPrecise(math.Mod(tTime, cycleDuration))
		if tTime == tDur {
			iteration = tw.repeat
			t = dur
		} else {
			pi := roundPrecise(tTime / cycleDuration)
			iteration = int(pi)
			if iteration != 0 && float64(iteration) == pi {
				t = dur
				iteration--
			} else if t > dur {
				t = dur
			}
		}
		isYoyo = tw.yoyo && iteration&1 == 1
		if isYoyo {
			yoyoEase = tw.yEase
			t = dur - t
		}
		prevIteration = animationCycle(tw.tTime, cycleDuration)
		if t == prevTime && !force && tw.initted && iteration == prevIteration {
			tw.tTime = tTime
			return
		}
		if iteration != prevIteration && tw.repeatRefresh && !isYoyo && tw.lock == 0 && t != cycleDuration && tw.initted {
			tw.lock = 1
			force = true
			tw.Render(roundPrecise(cycleDuration*float64(iteration)), true, false)
			tw.Invalidate()
			tw.lock = 0
		}
	}

	if !tw.initted {
		initTime := t
		if isNegative {
			initTime = totalTime
		}
		if tw.attemptInit(initTime, force, suppressEvents, tTime) {
			tw.tTime = 0
			return
		}
		if prevTime != tw.time && !(force && tw.repeatRefresh && iteration != prevIteration) {
			return
		}
		if dur != tw.dur {
			tw.Render(totalTime, suppressEvents, force)
			return
		}
	}

	tw.tTime = tTime
	tw.time = t
	if !tw.act && tw.ts != 0 {
		tw.act = true
		tw.lazy = false
	}
	ease := tw.ease
	if yoyoEase != nil {
		ease = yoyoEase
	}
	ratio := ease(t / dur)
	if tw.from {
		ratio = 1 - ratio
	}
	tw.ratio = ratio

	if prevTime == 0 && tTime != 0 && !suppressEvents && prevIteration == 0 {
		tw.ctx.callback(&tw.core, EventStart, false)
		if tw.tTime != tTime {
			return
		}
	}
	tw.renderRecords(ratio)
	if tw.startAt != nil {
		tw.zTime = totalTime
	}
	if tw.onUpdate != nil && !suppressEvents {
		if isNegative {
			tw.rewindStartAt(totalTime, force)
		}
		tw.ctx.callback(&tw.core, EventUpdate, false)
	}
	if tw.repeat != 0 && iteration != prevIteration && !suppressEvents && tw.parent != nil {
		tw.ctx.callback(&tw.core, EventRepeat, false)
	}
	if (tTime == tw.tDur || tTime == 0) && tw.tTime == tTime {
		if isNegative && tw.onUpdate == nil {
			tw.rewindStartAt(totalTime, true)
		}
		if (totalTime != 0 || dur == 0) && ((tTime == tw.tDur && tw.ts > 0) || (tTime == 0 && tw.ts < 0)) {
			removeFromParent(&tw.core, true)
		}
		if !suppressEvents && !(isNegative && prevTime == 0) && (tTime != 0 || prevTime != 0 || isYoyo) {
			kind := EventReverseComplete
			if tTime == tDur {
				kind = EventComplete
			}
			tw.ctx.callback(&tw.core, kind, true)
		}
	}
}

// renderRecords writes every record for ratio. A record whose plugin,
// modifier or setter panics is logged and skipped.
func (tw *Tween) renderRecords(ratio float64) {
	for pt := tw.pt; pt != nil; pt = pt.next {
		tw.ctx.renderRecord(tw, pt, ratio)
	}
}

// renderZeroDuration handles instantaneous tweens: the ratio is 0 or 1
// depending on which side of the start the playhead is and in which
// direction it moves.
func (tw *Tween) renderZeroDuration(totalTime float64, suppressEvents, force bool) {
	prevRatio := tw.ratio
	dpReversed := tw.dp != nil && tw.dp.ts < 0
	ratio := 1.0
	if totalTime < 0 || (totalTime == 0 &&
		((tw.start == 0 && parentPlayheadIsBeforeStart(&tw.core) && !(!tw.initted && tw.isFromStart())) ||
			((tw.ts < 0 || dpReversed) && !tw.isFromStart()))) {
		ratio = 0
	}
	tTime := 0.0
	if tw.rDelay != 0 && tw.repeat != 0 {
		tTime = clamp(0, tw.tDur, totalTime)
		iteration := animationCycle(tTime, tw.rDelay)
		if tw.yoyo && iteration&1 == 1 {
			ratio = 1 - ratio
		}
		if iteration != animationCycle(tw.tTime, tw.rDelay) {
			prevRatio = 1 - ratio
			if tw.repeatRefresh && tw.initted {
				tw.Invalidate()
			}
		}
	}
	if !(ratio != prevRatio || force || tw.zTime == tinyNum || (totalTime == 0 && tw.zTime != 0)) {
		if tw.zTime == 0 {
			tw.zTime = totalTime
		}
		return
	}
	if !tw.initted && tw.attemptInit(totalTime, force, suppressEvents, tTime) {
		return
	}
	prevZ := tw.zTime
	switch {
	case totalTime != 0:
		tw.zTime = totalTime
	case suppressEvents:
		tw.zTime = tinyNum
	default:
		tw.zTime = 0
	}
	if !suppressEvents {
		suppressEvents = totalTime != 0 && prevZ == 0
	}
	tw.ratio = ratio
	r := ratio
	if tw.from {
		r = 1 - r
	}
	tw.time = 0
	tw.tTime = tTime
	tw.renderRecords(r)
	if totalTime < 0 {
		tw.rewindStartAt(totalTime, true)
	}
	if tw.onUpdate != nil && !suppressEvents {
		tw.ctx.callback(&tw.core, EventUpdate, false)
	}
	if tTime != 0 && tw.repeat != 0 && !suppressEvents && tw.parent != nil {
		tw.ctx.callback(&tw.core, EventRepeat, false)
	}
	if (totalTime >= tw.tDur || totalTime < 0) && tw.ratio == ratio {
		if ratio != 0 {
			removeFromParent(&tw.core, true)
		}
		if !suppressEvents {
			kind := EventReverseComplete
			if ratio != 0 {
				kind = EventComplete
			}
			tw.ctx.callback(&tw.core, kind, true)
		}
	}
}

// Invalidate discards the records so start values are read again on the
// next render.
func (tw *Tween) Invalidate() {
	tw.pt = nil
	tw.ptLast = nil
	tw.lookup = nil
	tw.killed = nil
	tw.onUpdate = nil
	tw.lazy = false
	tw.ratio = 0
	tw.startAt = nil
	tw.core.Invalidate()
}

// Kill stops the tween and removes it from its parent.
func (tw *Tween) Kill() {
	tw.lazy = false
	tw.pt = nil
	tw.ptLast = nil
	if tw.parent != nil {
		interrupt(&tw.core)
	}
}

// KillTargets stops animating props (all properties when empty) of the
// given targets (all targets when nil). A tween left with nothing to
// animate is killed.
func (tw *Tween) KillTargets(targets any, props ...string) {
	tw.killProps(toTargets(targets), props)
}

func (tw *Tween) killProps(killing []any, props []string) {
	all := len(props) == 0
	if killing == nil && all {
		tw.Kill()
		return
	}
	if killing == nil {
		killing = tw.targets
	}
	if all && sameTargets(tw.targets, killing) {
		tw.Kill()
		return
	}
	if tw.killed == nil {
		tw.killed = make([]*killedProps, len(tw.targets))
	}
	firstPT := tw.pt
	for i := len(tw.targets) - 1; i >= 0; i-- {
		if !containsTarget(killing, tw.targets[i]) {
			continue
		}
		var lk map[string]*PropTween
		if tw.lookup != nil {
			lk = tw.lookup[i]
		}
		var names []string
		if all {
			tw.killed[i] = &killedProps{all: true}
			for p := range lk {
				names = append(names, p)
			}
		} else {
			if tw.killed[i] == nil {
				tw.killed[i] = &killedProps{props: make(map[string]bool)}
			}
			names = props
		}
		for _, p := range names {
			if pt := lk[p]; pt != nil {
				tw.removeRecord(pt)
				delete(lk, p)
			}
			if !all && tw.killed[i].props != nil {
				tw.killed[i].props[p] = true
			}
		}
	}
	if tw.initted && tw.pt == nil && firstPT != nil {
		interrupt(&tw.core)
	}
}

func sameTargets(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for _, t := range a {
		if !containsTarget(b, t) {
			return false
		}
	}
	return true
}

// ResetTo redirects prop toward value from its current value and restarts
// the tween from its beginning. Used by Context.QuickTo.
func (tw *Tween) ResetTo(prop string, value float64) {
	tw.ctx.wake()
	if tw.ts == 0 {
		tw.Play()
	}
	dp := tw.dp
	if dp == nil {
		return
	}
	t := math.Min(tw.dur, (dp.time-tw.start)*tw.ts)
	if !tw.initted {
		tw.init(t, t)
	}
	ratio := 1.0
	if tw.dur != 0 && tw.ease != nil {
		ratio = tw.ease(t / tw.dur)
	}
	recs := make([]*PropTween, 0, len(tw.targets))
	for i := range tw.targets {
		var pt *PropTween
		if tw.lookup != nil {
			pt = tw.lookup[i][prop]
		}
		if pt == nil || pt.Kind != RecordNumeric || pt.isBool {
			tw.ctx.logger.Warn("property not eligible for reset", "property", prop, "tween", tw.id)
			return
		}
		recs = append(recs, pt)
	}
	for _, pt := range recs {
		current := pt.Start + ratio*pt.Change
		pt.Start = current
		pt.Change = value - current
		pt.end = value
		pt.hasEnd = true
	}
	alignPlayhead(&tw.core, 0)
	if tw.parent == nil {
		dp.link(&tw.core, dp.sort)
	}
	tw.Render(0, false, false)
}

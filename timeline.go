package cadence

import (
	"math"
	"sort"
)

// Timeline sequences child tweens and timelines. Children are kept in a
// doubly linked list, ordered by start time when SortChildren is on. A
// timeline's playhead drives its children: rendering the timeline at t
// renders every child whose span the playhead entered, left or crossed.
type Timeline struct {
	core

	first, last *core
	recent      *core
	children    int

	labels   map[string]float64
	defaults *Vars

	smoothChildTiming  bool
	autoRemoveChildren bool
	sort               bool
	hasPause           bool
}

func newRootTimeline(c *Context) *Timeline {
	tl := &Timeline{
		labels:             make(map[string]float64),
		smoothChildTiming:  true,
		autoRemoveChildren: true,
	}
	tl.initCore(c, tl, coreVars{id: "root"})
	return tl
}

// newTimeline creates a timeline and adds it to parent (the root when nil)
// at position.
func newTimeline(c *Context, vars TimelineVars, parent *Timeline, position any) *Timeline {
	if parent == nil {
		parent = c.root
	}
	tl := &Timeline{
		labels:             make(map[string]float64),
		defaults:           vars.Defaults,
		smoothChildTiming:  vars.SmoothChildTiming,
		autoRemoveChildren: vars.AutoRemoveChildren,
		sort:               isNotFalse(vars.SortChildren),
	}
	tl.initCore(c, tl, vars.coreVars())
	pos := c.root.time
	if parent != c.root || position != nil {
		pos = parsePosition(parent, position, tl)
	}
	addToTimeline(parent, tl, pos, false)
	if vars.Reversed {
		tl.Reverse()
	}
	if vars.Paused {
		tl.SetPaused(true)
	}
	if c.config.Debug {
		c.debugCheckDepth(tl)
	}
	return tl
}

func (tl *Timeline) isRoot() bool { return tl == tl.ctx.root }

// --- Child list ---

func (tl *Timeline) link(child *core, sortByStart bool) {
	prev := tl.last
	if sortByStart {
		for prev != nil && prev.start > child.start {
			prev = prev.prev
		}
	}
	if prev != nil {
		child.next = prev.next
		prev.next = child
	} else {
		child.next = tl.first
		tl.first = child
	}
	if child.next != nil {
		child.next.prev = child
	} else {
		tl.last = child
	}
	child.prev = prev
	child.parent = tl
	child.dp = tl
	tl.children++
}

func (tl *Timeline) unlink(child *core) {
	if child.prev != nil {
		child.prev.next = child.next
	} else if tl.first == child {
		tl.first = child.next
	}
	if child.next != nil {
		child.next.prev = child.prev
	} else if tl.last == child {
		tl.last = child.prev
	}
	child.next = nil
	child.prev = nil
	child.parent = nil
	tl.children--
}

// addToTimeline inserts child at position (before its delay is applied).
func addToTimeline(tl *Timeline, child Animation, position float64, skipChecks bool) {
	c := child.base()
	if c.parent != nil {
		removeFromParent(c, false)
	}
	c.start = roundTime(position + c.delay)
	d := child.TotalDuration()
	switch ts := math.Abs(child.TimeScale()); {
	case ts != 0:
		c.end = roundTime(c.start + d/ts)
	case d != 0:
		c.end = math.Inf(1)
	default:
		c.end = c.start
	}
	tl.link(c, tl.sort)
	if c.role != roleStart && c.role != roleFromStart {
		tl.recent = c
	}
	if !skipChecks {
		postAddChecks(tl, c)
	}
	if tl.ts < 0 {
		alignPlayhead(&tl.core, tl.tTime)
	}
	if tl.ctx.config.Debug {
		tl.ctx.debugCheckChildCount(tl)
	}
}

// postAddChecks renders a child inserted behind the playhead so it catches
// up, and re-renders completed ancestors that the child extended.
func postAddChecks(tl *Timeline, child *core) {
	_, isTimeline := child.self.(*Timeline)
	if child.time != 0 || (child.dur == 0 && child.initted) || (child.start < tl.time && (child.dur != 0 || !isTimeline)) {
		t := parentToChildTotalTime(tl.RawTime(false), child)
		if child.dur == 0 || clamp(0, child.self.TotalDuration(), t)-child.tTime > tinyNum {
			child.self.Render(t, true, false)
		}
	}
	uncache(tl, child)
	if tl.dp != nil && tl.initted && tl.time >= tl.dur && tl.ts != 0 {
		if tl.dur < tl.Duration() {
			for t := tl; t.dp != nil; t = t.dp {
				if t.RawTime(false) >= 0 {
					t.SetTotalTime(t.tTime, false)
				}
			}
		}
		tl.zTime = -tinyNum
	}
}

// --- Building ---

// To adds a tween from the targets' current values to vars.Props.
func (tl *Timeline) To(targets any, vars Vars, position any) *Tween {
	return newTween(tl.ctx, toTargets(targets), vars, KindTo, tl, position)
}

// From adds a tween from vars.Props to the targets' current values.
func (tl *Timeline) From(targets any, vars Vars, position any) *Tween {
	return newTween(tl.ctx, toTargets(targets), vars, KindFrom, tl, position)
}

// FromTo adds a tween from the from values to vars.Props.
func (tl *Timeline) FromTo(targets any, from Props, vars Vars, position any) *Tween {
	vars.StartAt = from
	return newTween(tl.ctx, toTargets(targets), vars, KindFromTo, tl, position)
}

// Set adds an instant assignment of props.
func (tl *Timeline) Set(targets any, props Props, position any) *Tween {
	return newTween(tl.ctx, toTargets(targets), setVars(props), KindTo, tl, position)
}

// Call adds a callback at position. It fires when the playhead crosses
// position in either direction.
func (tl *Timeline) Call(fn func(), position any) *Tween {
	return newDelayedCall(tl.ctx, 0, fn, tl, position)
}

// NewTimeline adds a nested timeline at position.
func (tl *Timeline) NewTimeline(vars TimelineVars, position any) *Timeline {
	return newTimeline(tl.ctx, vars, tl, position)
}

// StaggerTo adds one To tween per target, each starting each seconds after
// the previous one.
func (tl *Timeline) StaggerTo(targets any, vars Vars, each float64, position any) *Timeline {
	return tl.stagger(KindTo, targets, nil, vars, each, position)
}

// StaggerFrom adds one From tween per target, offset by each seconds.
func (tl *Timeline) StaggerFrom(targets any, vars Vars, each float64, position any) *Timeline {
	return tl.stagger(KindFrom, targets, nil, vars, each, position)
}

// StaggerFromTo adds one FromTo tween per target, offset by each seconds.
func (tl *Timeline) StaggerFromTo(targets any, from Props, vars Vars, each float64, position any) *Timeline {
	return tl.stagger(KindFromTo, targets, from, vars, each, position)
}

func (tl *Timeline) stagger(kind TweenKind, targets any, from Props, vars Vars, each float64, position any) *Timeline {
	list := toTargets(targets)
	base := parsePosition(tl, position, nil)
	if kind == KindFromTo {
		vars.StartAt = from
	}
	for i, t := range list {
		offset := float64(i) * each
		if each < 0 {
			offset = float64(len(list)-1-i) * -each
		}
		newTween(tl.ctx, []any{t}, vars, kind, tl, base+offset)
	}
	return tl
}

// Add inserts child at position, removing it from any previous parent.
// Every method taking a position accepts:
//
//	nil              end of the timeline
//	1.5              absolute time
//	"label"          a label's time; unknown labels are created at the end
//	"label+=1"       offset from a label
//	"+=1", "-=0.5"   offset from the end of the timeline
//	"<", "<0.5"      start of the most recently added child, plus an offset
//	">", ">-0.2"     end of the most recently added child, plus an offset
//	"<50%", "+=25%"  percentages of the recent child or of the inserted one
func (tl *Timeline) Add(child Animation, position any) *Timeline {
	if child == nil {
		panic("cadence: cannot add nil animation")
	}
	c := child.base()
	if c == &tl.core {
		return tl
	}
	if sub, ok := child.(*Timeline); ok {
		for p := tl; p != nil; p = p.parent {
			if p == sub {
				panic("cadence: cannot add a timeline to its own descendant")
			}
		}
	}
	addToTimeline(tl, child, parsePosition(tl, position, child), false)
	return tl
}

// Remove detaches child from the timeline.
func (tl *Timeline) Remove(child Animation) *Timeline {
	c := child.base()
	if c.parent != tl {
		return tl
	}
	tl.unlink(c)
	if tl.recent == c {
		tl.recent = tl.last
	}
	uncache(tl, nil)
	return tl
}

// AddLabel names a position.
func (tl *Timeline) AddLabel(name string, position any) *Timeline {
	tl.labels[name] = parsePosition(tl, position, nil)
	return tl
}

// RemoveLabel deletes a label.
func (tl *Timeline) RemoveLabel(name string) *Timeline {
	delete(tl.labels, name)
	return tl
}

// Label returns the time of a label.
func (tl *Timeline) Label(name string) (float64, bool) {
	t, ok := tl.labels[name]
	return t, ok
}

// Labels returns a copy of the label table.
func (tl *Timeline) Labels() map[string]float64 {
	out := make(map[string]float64, len(tl.labels))
	for k, v := range tl.labels {
		out[k] = v
	}
	return out
}

func (tl *Timeline) labelInDirection(from float64, backward bool) string {
	best := ""
	min := bigNum
	names := make([]string, 0, len(tl.labels))
	for name := range tl.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := tl.labels[name] - from
		if d == 0 || (d < 0) != backward {
			continue
		}
		if d = math.Abs(d); d < min {
			best = name
			min = d
		}
	}
	return best
}

// NextLabel returns the first label after t, or "".
func (tl *Timeline) NextLabel(t float64) string { return tl.labelInDirection(t, false) }

// PreviousLabel returns the last label before t, or "".
func (tl *Timeline) PreviousLabel(t float64) string { return tl.labelInDirection(t, true) }

// CurrentLabel returns the latest label at or before the playhead, or "".
func (tl *Timeline) CurrentLabel() string {
	return tl.labelInDirection(tl.RawTime(false)+tinyNum, true)
}

// AddPause inserts a marker that pauses the timeline when the playhead
// reaches it in either direction, then calls fn (which may be nil).
func (tl *Timeline) AddPause(position any, fn func()) *Tween {
	if fn == nil {
		fn = func() {}
	}
	pos := parsePosition(tl, position, nil)
	tw := newDelayedCall(tl.ctx, 0, fn, tl, pos)
	tw.role = rolePause
	tl.hasPause = true
	return tw
}

// RemovePause deletes the pause markers at position.
func (tl *Timeline) RemovePause(position any) *Timeline {
	pos := parsePosition(tl, position, nil)
	for child := tl.first; child != nil; {
		next := child.next
		if child.start == pos && child.role == rolePause {
			removeFromParent(child, false)
		}
		child = next
	}
	return tl
}

func (tl *Timeline) findNextPauseTween(prevTime, t float64) *core {
	if t > prevTime {
		for child := tl.first; child != nil && child.start <= t; child = child.next {
			if child.role == rolePause && child.start > prevTime {
				return child
			}
		}
		return nil
	}
	for child := tl.last; child != nil && child.start >= t; child = child.prev {
		if child.role == rolePause && child.start < prevTime {
			return child
		}
	}
	return nil
}

// Recent returns the most recently added child.
func (tl *Timeline) Recent() Animation {
	if tl.recent == nil {
		return nil
	}
	return tl.recent.self
}

// Children returns the direct and, when nested is set, indirect children
// that start at or after ignoreBeforeTime.
func (tl *Timeline) Children(nested, tweens, timelines bool, ignoreBeforeTime float64) []Animation {
	var out []Animation
	for child := tl.first; child != nil; child = child.next {
		if child.start < ignoreBeforeTime {
			continue
		}
		switch a := child.self.(type) {
		case *Tween:
			if tweens {
				out = append(out, a)
			}
		case *Timeline:
			if timelines {
				out = append(out, a)
			}
			if nested {
				out = append(out, a.Children(true, tweens, timelines, math.Inf(-1))...)
			}
		}
	}
	return out
}

// ChildCount returns the number of direct children.
func (tl *Timeline) ChildCount() int { return tl.children }

// ByID returns the first descendant with id.
func (tl *Timeline) ByID(id string) Animation {
	for _, a := range tl.Children(true, true, true, math.Inf(-1)) {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

// GetTweensOf returns the tweens of any of targets in this timeline and its
// nested timelines. onlyActive limits the result to running tweens.
func (tl *Timeline) GetTweensOf(targets any, onlyActive bool) []*Tween {
	return tl.tweensOf(toTargets(targets), onlyActive, false, 0)
}

func (tl *Timeline) tweensOf(targets []any, onlyActive, atTime bool, at float64) []*Tween {
	var out []*Tween
	for child := tl.first; child != nil; child = child.next {
		switch a := child.self.(type) {
		case *Tween:
			if !anyTarget(a.targets, targets) {
				continue
			}
			if atTime {
				if (tl.ctx.overwriting == nil || (a.initted && a.ts != 0)) &&
					a.GlobalTime(0) <= at && a.GlobalTime(a.TotalDuration()) > at {
					out = append(out, a)
				}
			} else if !onlyActive || a.IsActive() {
				out = append(out, a)
			}
		case *Timeline:
			out = append(out, a.tweensOf(targets, onlyActive, atTime, at)...)
		}
	}
	return out
}

func anyTarget(have, want []any) bool {
	for _, t := range have {
		if containsTarget(want, t) {
			return true
		}
	}
	return false
}

// KillTweensOf kills the tweens of targets, or only the named properties of
// them.
func (tl *Timeline) KillTweensOf(targets any, props ...string) *Timeline {
	list := toTargets(targets)
	tweens := tl.tweensOf(list, false, false, 0)
	for i := len(tweens) - 1; i >= 0; i-- {
		if tweens[i] != tl.ctx.overwriting {
			tweens[i].killProps(list, props)
		}
	}
	return tl
}

// killTweensOfAt kills props of targets in tweens spanning global time at.
func (tl *Timeline) killTweensOfAt(targets []any, props []string, at float64) {
	tweens := tl.tweensOf(targets, false, true, at)
	for i := len(tweens) - 1; i >= 0; i-- {
		if tweens[i] != tl.ctx.overwriting {
			tweens[i].killProps(targets, props)
		}
	}
}

// ShiftChildren moves children starting at or after ignoreBeforeTime by
// amount seconds, and labels too when adjustLabels is set.
func (tl *Timeline) ShiftChildren(amount float64, adjustLabels bool, ignoreBeforeTime float64) *Timeline {
	for child := tl.first; child != nil; child = child.next {
		if child.start >= ignoreBeforeTime {
			child.start += amount
			child.end += amount
		}
	}
	if adjustLabels {
		for name, t := range tl.labels {
			if t >= ignoreBeforeTime {
				tl.labels[name] = t + amount
			}
		}
	}
	uncache(tl, nil)
	return tl
}

// Clear removes every child, and the labels when labels is set.
func (tl *Timeline) Clear(labels bool) *Timeline {
	for child := tl.first; child != nil; {
		next := child.next
		tl.Remove(child.self)
		child = next
	}
	if tl.dp != nil {
		tl.time, tl.tTime, tl.pTime = 0, 0, 0
	}
	if labels {
		tl.labels = make(map[string]float64)
	}
	uncache(tl, nil)
	return tl
}

// Invalidate invalidates every child and the timeline itself.
func (tl *Timeline) Invalidate() {
	tl.lock = 0
	for child := tl.first; child != nil; child = child.next {
		child.self.Invalidate()
	}
	tl.core.Invalidate()
}

// SmoothChildTiming reports whether children keep their visual position
// when their playhead changes.
func (tl *Timeline) SmoothChildTiming() bool { return tl.smoothChildTiming }

// SetSmoothChildTiming toggles smooth child timing.
func (tl *Timeline) SetSmoothChildTiming(v bool) { tl.smoothChildTiming = v }

// AutoRemoveChildren reports whether completed children are removed.
func (tl *Timeline) AutoRemoveChildren() bool { return tl.autoRemoveChildren }

// TweenTo returns a linear tween that moves this timeline's playhead to
// position and pauses the timeline while it runs. Without a Duration the
// tween lasts as long as the jump takes at the current time scale.
func (tl *Timeline) TweenTo(position any, vars Vars) *Tween {
	endTime := parsePosition(tl, position, nil)
	userDuration := vars.Duration
	userStart := vars.OnStart
	immediate := isTrue(vars.ImmediateRender)
	startTime := func() float64 {
		if v, ok := vars.StartAt["time"]; ok {
			if f, ok := toFloat(v); ok {
				return f
			}
		}
		return tl.time
	}
	jump := func() float64 {
		ts := tl.TimeScale()
		if ts == 0 {
			ts = 1
		}
		return math.Abs((endTime - startTime()) / ts)
	}
	if vars.Ease == nil {
		vars.Ease = "none"
	}
	vars.Lazy = Bool(false)
	vars.ImmediateRender = Bool(false)
	vars.Overwrite = OverwriteAuto
	vars.Props = Props{"time": endTime}
	if vars.Duration == 0 {
		vars.Duration = jump()
		if vars.Duration == 0 {
			vars.Duration = tinyNum
		}
	}
	var tw *Tween
	initted := false
	vars.OnStart = func() {
		tl.Pause()
		if !initted {
			d := userDuration
			if d == 0 {
				d = jump()
			}
			if tw.dur != d {
				tw.setDuration(d, false, true)
				tw.Render(tw.time, true, true)
			}
			initted = true
		}
		if userStart != nil {
			userStart()
		}
	}
	tw = newTween(tl.ctx, []any{tl}, vars, KindTo, nil, nil)
	if immediate {
		tw.Render(0, false, false)
	}
	return tw
}

// TweenFromTo is TweenTo starting from the from position.
func (tl *Timeline) TweenFromTo(from, to any, vars Vars) *Tween {
	start := Props{"time": parsePosition(tl, from, nil)}
	for k, v := range vars.StartAt {
		start[k] = v
	}
	vars.StartAt = start
	return tl.TweenTo(to, vars)
}

// --- Timing ---

// TotalDuration recomputes the duration from the children when they
// changed: out-of-order children are re-sorted and a child with a negative
// start shifts every child (and the timeline's own start) so none precedes
// zero.
func (tl *Timeline) TotalDuration() float64 {
	if !tl.dirty {
		return tl.tDur
	}
	max := 0.0
	prevStart := bigNum
	parent := tl.parent
	for child := tl.last; child != nil; {
		prev := child.prev
		if child.dirty {
			child.self.TotalDuration()
		}
		start := child.start
		if start > prevStart && tl.sort && child.ts != 0 && tl.lock == 0 {
			tl.lock = 1
			addToTimeline(tl, child.self, start-child.delay, true)
			tl.lock = 0
		} else {
			prevStart = start
		}
		if start < 0 && child.ts != 0 {
			max -= start
			if (parent == nil && tl.dp == nil) || (parent != nil && parent.smoothChildTiming) {
				if tl.ts != 0 {
					tl.start += start / tl.ts
				}
				tl.time -= start
				tl.tTime -= start
			}
			tl.ShiftChildren(-start, false, math.Inf(-1))
			prevStart = 0
		}
		if child.end > max && child.ts != 0 {
			max = child.end
		}
		child = prev
	}
	d := max
	if tl.isRoot() && tl.time > max {
		d = tl.time
	}
	tl.setDuration(d, true, true)
	tl.dirty = false
	return tl.tDur
}

// SetTotalDuration scales the timeline's time scale so that it lasts value
// seconds.
func (tl *Timeline) SetTotalDuration(value float64) {
	if value == 0 {
		return
	}
	d := tl.TotalDuration()
	if tl.repeat < 0 {
		d = tl.Duration()
	}
	if tl.Reversed() {
		value = -value
	}
	tl.SetTimeScale(d / value)
}

// --- Rendering ---

// Render moves the playhead to totalTime and renders the children it
// affects, forward in start order or backward in reverse order.
func (tl *Timeline) Render(totalTime float64, suppressEvents, force bool) {
	tl.render(totalTime, suppressEvents, force, false)
}

// childTime converts the timeline's local time t into child's total time.
func childTime(t float64, child *core) float64 {
	if child.ts > 0 {
		return (t - child.start) * child.ts
	}
	d := child.tDur
	if child.dirty {
		d = child.self.TotalDuration()
	}
	return d + (t-child.start)*child.ts
}

func (tl *Timeline) render(totalTime float64, suppressEvents, force, restarted bool) {
	c := tl.ctx
	prevTime := tl.time
	tDur := tl.tDur
	if tl.dirty {
		tDur = tl.TotalDuration()
	}
	dur := tl.dur
	tTime := 0.0
	if totalTime > 0 {
		tTime = roundPrecise(totalTime)
	}
	crossingStart := (tl.zTime < 0) != (totalTime < 0) && (tl.initted || dur == 0)
	if !tl.isRoot() && tTime > tDur && totalTime >= 0 {
		tTime = tDur
	}
	if !(tTime != tl.tTime || force || crossingStart || restarted) {
		return
	}
	if prevTime != tl.time && dur != 0 {
		tTime += tl.time - prevTime
		totalTime += tl.time - prevTime
	}

	t := tTime
	prevStart := tl.start
	timeScale := tl.ts
	prevPaused := timeScale == 0
	prevIteration := 0
	isYoyo := false
	var pauseTween *core

	if crossingStart {
		if dur == 0 {
			prevTime = tl.zTime
		}
		if totalTime != 0 || !suppressEvents {
			tl.zTime = totalTime
		}
	}

	if tl.repeat != 0 {
		yoyo := tl.yoyo
		cycleDuration := dur + tl.rDelay
		iteration := 0
		if tTime == tDur {
			iteration = tl.repeat
			t = dur
		} else if cycleDuration > 0 {
			t = roundPrecise(math.Mod(tTime, cycleDuration))
			pi := roundPrecise(tTime / cycleDuration)
			iteration = int(pi)
			if iteration != 0 && float64(iteration) == pi {
				t = dur
				iteration--
			}
			if t > dur {
				t = dur
			}
		}
		prevIteration = animationCycle(tl.tTime, cycleDuration)
		if prevTime == 0 && tl.tTime != 0 && prevIteration != iteration &&
			tl.tTime-float64(prevIteration)*cycleDuration-tl.dur <= 0 {
			prevIteration = iteration
		}
		if yoyo && iteration&1 == 1 {
			t = dur - t
			isYoyo = true
		}
		if iteration != prevIteration && tl.lock == 0 {
			rewinding := yoyo && prevIteration&1 == 1
			doesWrap := rewinding == (yoyo && iteration&1 == 1)
			if iteration < prevIteration {
				rewinding = !rewinding
			}
			switch {
			case rewinding:
				prevTime = 0
			case dur != 0 && math.Mod(tTime, dur) != 0:
				prevTime = dur
			default:
				prevTime = tTime
			}
			tl.lock = 1
			boundary := prevTime
			if boundary == 0 && !isYoyo {
				boundary = roundPrecise(float64(iteration) * cycleDuration)
			}
			tl.render(boundary, suppressEvents, dur == 0, false)
			tl.lock = 0
			tl.tTime = tTime
			if !suppressEvents && tl.parent != nil {
				c.callback(&tl.core, EventRepeat, false)
			}
			if tl.repeatRefresh && !isYoyo {
				tl.Invalidate()
				tl.lock = 1
			}
			if (prevTime != 0 && prevTime != tl.time) || prevPaused != (tl.ts == 0) ||
				(tl.cb[EventRepeat] != nil && tl.parent == nil && !tl.act) {
				return
			}
			dur = tl.dur
			tDur = tl.tDur
			if doesWrap {
				tl.lock = 2
				if rewinding {
					prevTime = dur
				} else {
					prevTime = -0.0001
				}
				tl.render(prevTime, true, false, false)
				if tl.repeatRefresh && !isYoyo {
					tl.Invalidate()
				}
			}
			tl.lock = 0
			if tl.ts == 0 && !prevPaused {
				return
			}
			propagateYoyoEase(tl, isYoyo)
		}
	}

	if tl.hasPause && tl.lock < 2 {
		pauseTween = tl.findNextPauseTween(roundPrecise(prevTime), roundPrecise(t))
		if pauseTween != nil {
			tTime -= t - pauseTween.start
			t = pauseTween.start
		}
	}

	tl.tTime = tTime
	tl.time = t
	tl.act = timeScale == 0

	if !tl.initted {
		tl.onUpdate = tl.cb[EventUpdate]
		tl.initted = true
		tl.zTime = totalTime
		prevTime = 0
	}
	if prevTime == 0 && tTime != 0 && !suppressEvents && prevIteration == 0 {
		c.callback(&tl.core, EventStart, false)
		if tl.tTime != tTime {
			return
		}
	}

	if t >= prevTime && totalTime >= 0 {
		for child := tl.first; child != nil; {
			next := child.next
			if (child.act || t >= child.start) && child.ts != 0 && pauseTween != child {
				if child.parent != tl {
					// A callback restructured the list under the iterator.
					if restarted {
						break
					}
					tl.render(totalTime, suppressEvents, force, true)
					return
				}
				child.self.Render(childTime(t, child), suppressEvents, force)
				if t != tl.time || (tl.ts == 0 && !prevPaused) {
					pauseTween = nil
					if next != nil {
						tl.zTime = -tinyNum
						tTime += -tinyNum
					}
					break
				}
			}
			child = next
		}
	} else {
		adjusted := t
		if totalTime < 0 {
			adjusted = totalTime
		}
		for child := tl.last; child != nil; {
			next := child.prev
			if (child.act || adjusted <= child.end) && child.ts != 0 && pauseTween != child {
				if child.parent != tl {
					if restarted {
						break
					}
					tl.render(totalTime, suppressEvents, force, true)
					return
				}
				child.self.Render(childTime(adjusted, child), suppressEvents, force)
				if t != tl.time || (tl.ts == 0 && !prevPaused) {
					pauseTween = nil
					if next != nil {
						z := tinyNum
						if adjusted != 0 {
							z = -tinyNum
						}
						tl.zTime = z
						tTime += z
					}
					break
				}
			}
			child = next
		}
	}

	if pauseTween != nil && !suppressEvents {
		tl.Pause()
		pt := pauseTween.self
		if t >= prevTime {
			pt.Render(0, false, false)
			pauseTween.zTime = 1
		} else {
			pt.Render(-tinyNum, false, false)
			pauseTween.zTime = -1
		}
		if tl.ts != 0 {
			// Resumed from inside the pause callback.
			tl.start = prevStart
			tl.setEnd()
			tl.render(totalTime, suppressEvents, force, restarted)
			return
		}
	}

	if tl.onUpdate != nil && !suppressEvents {
		c.callback(&tl.core, EventUpdate, true)
	}

	if (tTime == tDur && tl.tTime >= tl.TotalDuration()) || (tTime == 0 && prevTime != 0) {
		if (prevStart == tl.start || math.Abs(timeScale) != math.Abs(tl.ts)) && tl.lock == 0 {
			if (totalTime != 0 || dur == 0) && ((tTime == tDur && tl.ts > 0) || (tTime == 0 && tl.ts < 0)) {
				removeFromParent(&tl.core, true)
			}
			if !suppressEvents && !(totalTime < 0 && prevTime == 0) && (tTime != 0 || prevTime != 0 || tDur == 0) {
				kind := EventReverseComplete
				if tTime == tDur && totalTime >= 0 {
					kind = EventComplete
				}
				c.callback(&tl.core, kind, true)
			}
		}
	}
}

// propagateYoyoEase swaps ease and yoyo ease on descendants with a
// YoyoEase but no repeat of their own, so they follow the timeline's yoyo.
func propagateYoyoEase(tl *Timeline, isYoyo bool) {
	for child := tl.first; child != nil; child = child.next {
		switch a := child.self.(type) {
		case *Timeline:
			propagateYoyoEase(a, isYoyo)
		case *Tween:
			if a.vars.YoyoEase != nil && (!a.yoyo || a.repeat == 0) && a.yoyo != isYoyo && a.yEase != nil {
				a.ease, a.yEase = a.yEase, a.ease
				a.yoyo = isYoyo
			}
		}
	}
}

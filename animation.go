package cadence

import "math"

// Animation is implemented by *Tween and *Timeline. It exposes the playhead
// controls shared by both. Times are in seconds in the animation's own time
// space unless stated otherwise.
type Animation interface {
	PropertyAccessor

	// Render moves the playhead to totalTime and applies the result.
	// suppressEvents skips callbacks; force renders even if the playhead
	// did not move.
	Render(totalTime float64, suppressEvents, force bool)

	Play()
	PlayFrom(position any, suppressEvents bool)
	Pause()
	PauseAt(position any, suppressEvents bool)
	Resume()
	Reverse()
	ReverseFrom(position any, suppressEvents bool)
	Restart(includeDelay bool)
	Seek(position any, suppressEvents bool)
	Kill()
	Invalidate()

	Time() float64
	SetTime(t float64, suppressEvents bool)
	TotalTime() float64
	SetTotalTime(t float64, suppressEvents bool)
	Progress() float64
	SetProgress(p float64, suppressEvents bool)
	TotalProgress() float64
	SetTotalProgress(p float64, suppressEvents bool)
	Duration() float64
	SetDuration(d float64)
	TotalDuration() float64
	SetTotalDuration(d float64)
	TimeScale() float64
	SetTimeScale(ts float64)
	Paused() bool
	SetPaused(paused bool)
	Reversed() bool
	SetReversed(reversed bool)
	Delay() float64
	SetDelay(d float64)
	StartTime() float64
	SetStartTime(t float64)
	EndTime(includeRepeats bool) float64
	Iteration() int
	SetIteration(i int, suppressEvents bool)
	Repeat() int
	SetRepeat(n int)
	RepeatDelay() float64
	SetRepeatDelay(d float64)
	Yoyo() bool
	SetYoyo(yoyo bool)
	IsActive() bool
	GlobalTime(rawTime float64) float64
	RawTime(wrapRepeats bool) float64

	Parent() *Timeline
	ID() string
	Data() any
	EventCallback(kind EventType) func()
	SetEventCallback(kind EventType, fn func())

	base() *core
}

// role tags internal zero-duration tweens.
type role uint8

const (
	roleNone role = iota
	rolePause
	roleStart     // startAt of a fromTo
	roleFromStart // startAt of a from
)

// coreVars is the part of Vars and TimelineVars every animation reads.
type coreVars struct {
	duration      float64
	delay         float64
	repeat        int
	repeatDelay   float64
	repeatRefresh bool
	yoyo          bool
	id            string
	data          any
	callbacks     [eventTypeCount]func()
}

// core is the state shared by tweens and timelines: timing, playhead, and the
// sibling links of the parent's child list.
type core struct {
	self Animation
	ctx  *Context

	// parent owns this animation through its child list. dp keeps the last
	// parent after removal so a resumed animation can re-add itself.
	parent *Timeline
	dp     *Timeline
	prev   *core
	next   *core

	start, end float64
	delay      float64
	dur, tDur  float64
	time       float64
	tTime      float64
	pTime      float64
	zTime      float64

	// ts is the effective time scale (0 while paused), rts the requested one.
	ts, rts float64

	repeat        int
	rDelay        float64
	yoyo          bool
	repeatRefresh bool

	ps      bool
	initted bool
	act     bool
	dirty   bool
	// lock guards repeat-boundary re-renders: 1 while the boundary render
	// runs, 2 while the wrap render runs.
	lock int

	role     role
	id       string
	data     any
	cb       [eventTypeCount]func()
	onUpdate func()
}

func (a *core) base() *core { return a }

func (a *core) initCore(c *Context, self Animation, v coreVars) {
	a.ctx = c
	a.self = self
	a.delay = v.delay
	a.repeat = v.repeat
	if a.repeat != 0 {
		a.rDelay = v.repeatDelay
		a.yoyo = v.yoyo
	}
	a.repeatRefresh = v.repeatRefresh
	a.ts, a.rts = 1, 1
	a.zTime = -tinyNum
	a.id = v.id
	a.data = v.data
	a.cb = v.callbacks
	a.setDuration(v.duration, true, true)
	c.wake()
}

// --- Duration bookkeeping ---

func (a *core) setDuration(duration float64, skipUncache, leavePlayhead bool) {
	dur := roundPrecise(duration)
	totalProgress := 0.0
	if a.tDur != 0 {
		totalProgress = a.tTime / a.tDur
	}
	if totalProgress != 0 && !leavePlayhead && a.dur != 0 {
		a.time *= dur / a.dur
	}
	a.dur = dur
	switch {
	case a.repeat == 0:
		a.tDur = dur
	case a.repeat < 0:
		a.tDur = infiniteDuration
	default:
		a.tDur = roundPrecise(dur*float64(a.repeat+1) + a.rDelay*float64(a.repeat))
	}
	if totalProgress > 0 && !leavePlayhead {
		a.tTime = a.tDur * totalProgress
		alignPlayhead(a, a.tTime)
	}
	if a.parent != nil {
		a.setEnd()
	}
	if !skipUncache {
		uncache(a.parent, a)
	}
}

func (a *core) setEnd() {
	ts := math.Abs(a.ts)
	if ts == 0 {
		ts = math.Abs(a.rts)
	}
	if ts == 0 {
		ts = tinyNum
	}
	a.end = roundTime(a.start + a.tDur/ts)
}

// updateTotalDuration reacts to a repeat or repeatDelay change.
func (a *core) updateTotalDuration() {
	if tl, ok := a.self.(*Timeline); ok {
		uncache(tl, nil)
		return
	}
	a.setDuration(a.dur, false, false)
}

// uncache marks tl and its ancestors dirty when child may extend or precede
// tl's current bounds (or unconditionally when child is nil).
func uncache(tl *Timeline, child *core) {
	if tl == nil {
		return
	}
	if child == nil || child.end > tl.dur || child.start < 0 {
		for t := tl; t != nil; t = t.parent {
			t.dirty = true
		}
	}
}

func recacheAncestors(a *core) {
	for p := a.parent; p != nil && p.parent != nil; p = p.parent {
		p.dirty = true
		p.TotalDuration()
	}
}

// alignPlayhead moves a's start so that its playhead sits at totalTime
// without jumping, when the parent uses smooth child timing.
func alignPlayhead(a *core, totalTime float64) {
	p := a.dp
	if p == nil || !p.smoothChildTiming || a.ts == 0 {
		return
	}
	if a.ts > 0 {
		a.start = roundTime(p.time - totalTime/a.ts)
	} else {
		d := a.tDur
		if a.dirty {
			d = a.self.TotalDuration()
		}
		a.start = roundTime(p.time - (d-totalTime)/-a.ts)
	}
	a.setEnd()
	if !p.dirty {
		uncache(p, a)
	}
}

// parentToChildTotalTime converts a parent time to the child's total time.
func parentToChildTotalTime(parentTime float64, child *core) float64 {
	t := (parentTime - child.start) * child.ts
	if child.ts < 0 {
		if child.dirty {
			t += child.self.TotalDuration()
		} else {
			t += child.tDur
		}
	}
	return t
}

func elapsedCycleDuration(a *core) float64 {
	if a.repeat == 0 {
		return 0
	}
	cycle := a.self.Duration() + a.rDelay
	return float64(animationCycle(a.tTime, cycle)) * cycle
}

func removeFromParent(a *core, onlyIfAutoRemove bool) {
	if a.parent != nil && (!onlyIfAutoRemove || a.parent.autoRemoveChildren) {
		a.parent.Remove(a.self)
	}
	a.act = false
}

// interrupt detaches a and fires OnInterrupt if it had not finished.
func interrupt(a *core) {
	removeFromParent(a, false)
	if a.self.Progress() < 1 {
		a.ctx.callback(a, EventInterrupt, false)
	}
}

// --- Playhead ---

// Time returns the playhead position inside the current iteration.
func (a *core) Time() float64 { return a.time }

// SetTime moves the playhead within the current iteration.
func (a *core) SetTime(value float64, suppressEvents bool) {
	t := math.Min(a.self.TotalDuration(), value+elapsedCycleDuration(a))
	if t == 0 && value != 0 {
		t = a.dur
	}
	a.SetTotalTime(t, suppressEvents)
}

// TotalTime returns the playhead position across all iterations.
func (a *core) TotalTime() float64 { return a.tTime }

// SetTotalTime moves the playhead to an absolute total time and renders.
func (a *core) SetTotalTime(totalTime float64, suppressEvents bool) {
	a.ctx.wake()
	parent := a.dp
	if parent != nil && parent.smoothChildTiming && a.ts != 0 {
		alignPlayhead(a, totalTime)
		if parent.dp != nil && parent.parent == nil {
			postAddChecks(parent, a)
		}
		for p := parent; p != nil && p.parent != nil; p = p.parent {
			var local float64
			if p.ts >= 0 {
				local = p.tTime / p.ts
			} else {
				local = (p.TotalDuration() - p.tTime) / -p.ts
			}
			if p.parent.time != p.start+local {
				p.SetTotalTime(p.tTime, true)
			}
		}
		if a.parent == nil && a.dp.autoRemoveChildren &&
			((a.ts > 0 && totalTime < a.tDur) || (a.ts < 0 && totalTime > 0) || (a.tDur == 0 && totalTime == 0)) {
			addToTimeline(a.dp, a.self, a.start-a.delay, false)
		}
	}
	if a.tTime != totalTime || (a.dur == 0 && !suppressEvents) ||
		(a.initted && math.Abs(a.zTime) == tinyNum) || (totalTime == 0 && !a.initted) {
		if a.ts == 0 {
			a.pTime = totalTime
		}
		a.ctx.lazySafeRender(a.self, totalTime, suppressEvents, false)
	}
}

// Progress returns the iteration progress in [0, 1].
func (a *core) Progress() float64 {
	if d := a.self.Duration(); d != 0 {
		return math.Min(1, a.time/d)
	}
	if a.RawTime(false) > 0 {
		return 1
	}
	return 0
}

// SetProgress moves the playhead to a fraction of the current iteration.
// During a yoyo iteration the fraction is measured backward.
func (a *core) SetProgress(value float64, suppressEvents bool) {
	if a.yoyo && a.Iteration()&1 == 0 {
		value = 1 - value
	}
	a.SetTotalTime(a.self.Duration()*value+elapsedCycleDuration(a), suppressEvents)
}

// TotalProgress returns the progress across all iterations in [0, 1].
func (a *core) TotalProgress() float64 {
	if td := a.self.TotalDuration(); td != 0 {
		return math.Min(1, a.tTime/td)
	}
	if a.RawTime(false) >= 0 && a.initted {
		return 1
	}
	return 0
}

// SetTotalProgress moves the playhead to a fraction of the total duration.
func (a *core) SetTotalProgress(value float64, suppressEvents bool) {
	a.SetTotalTime(a.self.TotalDuration()*value, suppressEvents)
}

// Duration returns the length of one iteration.
func (a *core) Duration() float64 {
	a.self.TotalDuration()
	return a.dur
}

// SetDuration sets the length of one iteration.
func (a *core) SetDuration(value float64) {
	if a.repeat > 0 {
		value += (value + a.rDelay) * float64(a.repeat)
	}
	a.self.SetTotalDuration(value)
}

// TotalDuration returns the duration including repeats and repeat delays.
func (a *core) TotalDuration() float64 { return a.tDur }

// SetTotalDuration rescales the iteration duration so that the total
// duration matches value.
func (a *core) SetTotalDuration(value float64) {
	a.dirty = false
	d := value
	if a.repeat > 0 {
		d = (value - float64(a.repeat)*a.rDelay) / float64(a.repeat+1)
	}
	a.setDuration(d, false, false)
}

// Iteration returns the 1-based repeat iteration the playhead is in.
func (a *core) Iteration() int {
	if a.repeat == 0 {
		return 1
	}
	return animationCycle(a.tTime, a.self.Duration()+a.rDelay) + 1
}

// SetIteration jumps to the same local time in iteration i (1-based).
func (a *core) SetIteration(i int, suppressEvents bool) {
	cycle := a.self.Duration() + a.rDelay
	a.SetTotalTime(a.time+float64(i-1)*cycle, suppressEvents)
}

// TimeScale returns the requested time scale; negative plays backward.
func (a *core) TimeScale() float64 {
	if a.rts == -tinyNum {
		return 0
	}
	return a.rts
}

// SetTimeScale changes the playback rate without moving the playhead.
func (a *core) SetTimeScale(value float64) {
	if a.rts == value {
		return
	}
	tTime := a.tTime
	if a.parent != nil && a.ts != 0 {
		tTime = parentToChildTotalTime(a.parent.time, a)
	}
	a.rts = value
	if a.ps || value == -tinyNum {
		a.ts = 0
	} else {
		a.ts = a.rts
	}
	a.SetTotalTime(clamp(-math.Abs(a.delay), a.self.TotalDuration(), tTime), true)
	a.setEnd()
	recacheAncestors(a)
}

// Paused reports whether the animation is paused.
func (a *core) Paused() bool { return a.ps }

// SetPaused pauses or resumes without changing direction.
func (a *core) SetPaused(paused bool) {
	if a.ps == paused {
		return
	}
	a.ps = paused
	if paused {
		a.pTime = a.tTime
		if a.pTime == 0 {
			a.pTime = math.Max(-a.delay, a.RawTime(false))
		}
		a.ts = 0
		a.act = false
		return
	}
	a.ctx.wake()
	a.ts = a.rts
	t := a.tTime
	if t == 0 {
		t = a.pTime
	}
	if a.parent != nil && !a.parent.smoothChildTiming {
		t = a.RawTime(false)
	}
	suppress := false
	if a.Progress() == 1 && math.Abs(a.zTime) != tinyNum {
		a.tTime -= tinyNum
		suppress = a.tTime != 0
	}
	a.SetTotalTime(t, suppress)
}

// Reversed reports whether the animation plays backward.
func (a *core) Reversed() bool { return a.rts < 0 }

// SetReversed flips the playback direction, keeping the playhead.
func (a *core) SetReversed(reversed bool) {
	if reversed == a.Reversed() {
		return
	}
	ts := -a.rts
	if ts == 0 && reversed {
		ts = -tinyNum
	}
	a.SetTimeScale(ts)
}

// Delay returns the delay before the first iteration.
func (a *core) Delay() float64 { return a.delay }

// SetDelay changes the delay, moving the start time when the parent uses
// smooth child timing.
func (a *core) SetDelay(value float64) {
	if value == a.delay {
		return
	}
	if a.parent != nil && a.parent.smoothChildTiming {
		a.SetStartTime(a.start + value - a.delay)
	}
	a.delay = value
}

// StartTime returns the start in the parent's time space.
func (a *core) StartTime() float64 { return a.start }

// SetStartTime repositions the animation in its parent.
func (a *core) SetStartTime(value float64) {
	a.start = value
	p := a.parent
	if p == nil {
		p = a.dp
	}
	if p != nil && (p.sort || a.parent == nil) {
		addToTimeline(p, a.self, value-a.delay, false)
	}
}

// EndTime returns where the animation ends in the parent's time space.
func (a *core) EndTime(includeRepeats bool) float64 {
	d := a.self.Duration()
	if includeRepeats {
		d = a.self.TotalDuration()
	}
	ts := math.Abs(a.ts)
	if ts == 0 {
		ts = 1
	}
	return a.start + d/ts
}

// Repeat returns the repeat count; -1 repeats forever.
func (a *core) Repeat() int { return a.repeat }

// SetRepeat changes the repeat count.
func (a *core) SetRepeat(n int) {
	a.repeat = n
	a.updateTotalDuration()
}

// RepeatDelay returns the gap between iterations.
func (a *core) RepeatDelay() float64 { return a.rDelay }

// SetRepeatDelay changes the gap between iterations.
func (a *core) SetRepeatDelay(d float64) {
	t := a.time
	a.rDelay = d
	a.updateTotalDuration()
	if t != 0 {
		a.SetTime(t, false)
	}
}

// Yoyo reports whether alternate iterations play backward.
func (a *core) Yoyo() bool { return a.yoyo }

// SetYoyo toggles yoyo.
func (a *core) SetYoyo(yoyo bool) { a.yoyo = yoyo }

// Seek jumps to position: a time, a label, or a relative position string.
func (a *core) Seek(position any, suppressEvents bool) {
	a.SetTotalTime(parsePosition(a.self, position, nil), suppressEvents)
}

// Play resumes forward playback.
func (a *core) Play() {
	a.SetReversed(false)
	a.SetPaused(false)
}

// PlayFrom seeks to position, then plays forward.
func (a *core) PlayFrom(position any, suppressEvents bool) {
	a.Seek(position, suppressEvents)
	a.Play()
}

// Pause freezes the playhead.
func (a *core) Pause() { a.SetPaused(true) }

// PauseAt seeks to position, then pauses.
func (a *core) PauseAt(position any, suppressEvents bool) {
	a.Seek(position, suppressEvents)
	a.SetPaused(true)
}

// Resume unpauses without changing direction.
func (a *core) Resume() { a.SetPaused(false) }

// Reverse plays backward from the current playhead.
func (a *core) Reverse() {
	a.SetReversed(true)
	a.SetPaused(false)
}

// ReverseFrom seeks to position (the end when position is nil or 0), then
// plays backward.
func (a *core) ReverseFrom(position any, suppressEvents bool) {
	if f, ok := toFloat(position); position == nil || (ok && f == 0) {
		a.SetTotalTime(a.self.TotalDuration(), suppressEvents)
	} else {
		a.Seek(position, suppressEvents)
	}
	a.Reverse()
}

// Restart plays from the beginning, optionally honoring the delay.
func (a *core) Restart(includeDelay bool) {
	a.Play()
	t := 0.0
	if includeDelay {
		t = -a.delay
	}
	a.SetTotalTime(t, true)
	if a.dur == 0 {
		a.zTime = -tinyNum
	}
}

// Invalidate discards recorded start values so they are captured again on
// the next render. The playhead is not moved.
func (a *core) Invalidate() {
	a.initted = false
	a.act = false
	a.zTime = -tinyNum
}

// Kill removes the animation from its parent, firing OnInterrupt if it had
// not completed.
func (a *core) Kill() { interrupt(a) }

// IsActive reports whether the parent's playhead is currently inside this
// animation and it is not paused.
func (a *core) IsActive() bool {
	parent := a.parent
	if parent == nil {
		parent = a.dp
	}
	if parent == nil {
		return true
	}
	if a.ts == 0 || !a.initted || !parent.IsActive() {
		return false
	}
	raw := parent.RawTime(true)
	return raw >= a.start && raw < a.EndTime(true)-tinyNum
}

// RawTime returns the playhead derived from the parent's playhead, which
// may fall outside [0, TotalDuration].
func (a *core) RawTime(wrapRepeats bool) float64 {
	parent := a.parent
	if parent == nil {
		parent = a.dp
	}
	if parent == nil {
		return a.tTime
	}
	if wrapRepeats && (a.ts == 0 || (a.repeat != 0 && a.time != 0 && a.TotalProgress() < 1)) {
		return math.Mod(a.tTime, a.dur+a.rDelay)
	}
	if a.ts == 0 {
		return a.tTime
	}
	return parentToChildTotalTime(parent.RawTime(wrapRepeats), a)
}

// GlobalTime converts a local time to the root timeline's time space.
func (a *core) GlobalTime(rawTime float64) float64 {
	t := rawTime
	for x := a; x != nil; {
		ts := math.Abs(x.ts)
		if ts == 0 {
			ts = 1
		}
		t = x.start + t/ts
		if x.dp == nil {
			break
		}
		x = &x.dp.core
	}
	if a.parent == nil {
		if tw, ok := a.self.(*Tween); ok && tw.sat != nil {
			return tw.sat.GlobalTime(rawTime)
		}
	}
	return t
}

// Parent returns the owning timeline, or nil when detached.
func (a *core) Parent() *Timeline { return a.parent }

// ID returns the ID given in the vars.
func (a *core) ID() string { return a.id }

// Data returns the Data given in the vars.
func (a *core) Data() any { return a.data }

// EventCallback returns the callback registered for kind.
func (a *core) EventCallback(kind EventType) func() {
	if kind >= eventTypeCount {
		return nil
	}
	return a.cb[kind]
}

// SetEventCallback replaces the callback for kind; nil removes it.
func (a *core) SetEventCallback(kind EventType, fn func()) {
	if kind >= eventTypeCount {
		return
	}
	a.cb[kind] = fn
	if kind == EventUpdate && a.initted {
		a.onUpdate = fn
	}
}

// GetProperty exposes the playhead as tweenable properties: time,
// totalTime, progress, totalProgress and timeScale.
func (a *core) GetProperty(name string) (any, bool) {
	switch name {
	case "time":
		return a.Time(), true
	case "totalTime":
		return a.TotalTime(), true
	case "progress":
		return a.Progress(), true
	case "totalProgress":
		return a.TotalProgress(), true
	case "timeScale":
		return a.TimeScale(), true
	}
	return nil, false
}

// SetProperty sets one of the properties listed in GetProperty.
func (a *core) SetProperty(name string, value any) {
	f, ok := toFloat(value)
	if !ok || !finite(f) {
		return
	}
	switch name {
	case "time":
		a.SetTime(f, false)
	case "totalTime":
		a.SetTotalTime(f, false)
	case "progress":
		a.SetProgress(f, false)
	case "totalProgress":
		a.SetTotalProgress(f, false)
	case "timeScale":
		a.SetTimeScale(f)
	}
}

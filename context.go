package cadence

import (
	"fmt"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
)

// Context owns a root timeline, its ticker, and the ease and plugin
// registries. Tweens and timelines created through a Context are children of
// its root timeline. A Context is single-threaded: all calls, including
// ticks, must come from one goroutine.
type Context struct {
	config  Config
	clock   Clock
	driver  Driver
	logger  *log.Logger
	sink    EventSink
	eases   *EaseRegistry
	plugins *PluginRegistry
	ticker  *Ticker
	root    *Timeline

	defaultEase      EaseFunc
	defaultOverwrite Overwrite

	lazyTweens        []*Tween
	lazyLookup        map[any]bool
	lastRenderedFrame int
	nextGCFrame       int
	overwriting       *Tween
	rootListener      int

	// missing holds the "type.property" pairs already warned about.
	missing map[string]bool
}

// Option configures a Context.
type Option func(*Context)

// WithClock sets the time source. Tests use a VirtualClock.
func WithClock(clock Clock) Option {
	return func(c *Context) { c.clock = clock }
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(c *Context) { c.config = cfg }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithDriver sets the frame source started when the ticker wakes.
func WithDriver(d Driver) Option {
	return func(c *Context) { c.driver = d }
}

// WithEventSink forwards lifecycle events to sink.
func WithEventSink(sink EventSink) Option {
	return func(c *Context) { c.sink = sink }
}

// NewContext creates a Context with its own root timeline and ticker.
func NewContext(opts ...Option) *Context {
	c := &Context{
		config:     DefaultConfig(),
		clock:      SystemClock{},
		lazyLookup: make(map[any]bool),
		missing:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = newLogger(c.config.Debug)
	}
	c.eases = NewEaseRegistry(c.logger)
	c.plugins = newPluginRegistry()
	c.defaultEase = c.eases.Resolve(c.config.DefaultEase, Linear)
	c.defaultOverwrite = c.config.overwrite()

	c.ticker = newTicker(c.clock, c.driver, c.config)
	c.root = newRootTimeline(c)
	c.nextGCFrame = c.autoSleepFrames()
	c.rootListener = c.ticker.Add(c.updateRoot, false, false)
	return c
}

var defaultContext *Context

// Default returns the process-wide Context used by the package-level
// helpers, creating it on first use.
func Default() *Context {
	if defaultContext == nil {
		defaultContext = NewContext()
	}
	return defaultContext
}

// SetDefault replaces the process-wide Context and returns the previous one.
func SetDefault(c *Context) *Context {
	prev := defaultContext
	defaultContext = c
	return prev
}

// Root returns the root timeline. Its time is the ticker time.
func (c *Context) Root() *Timeline { return c.root }

// Ticker returns the Context's ticker.
func (c *Context) Ticker() *Ticker { return c.ticker }

// Eases returns the ease registry.
func (c *Context) Eases() *EaseRegistry { return c.eases }

// Plugins returns the plugin registry.
func (c *Context) Plugins() *PluginRegistry { return c.plugins }

// Logger returns the Context's logger.
func (c *Context) Logger() *log.Logger { return c.logger }

// Config returns the configuration the Context was created with.
func (c *Context) Config() Config { return c.config }

// SetEventSink replaces the event sink; nil disables forwarding.
func (c *Context) SetEventSink(sink EventSink) { c.sink = sink }

// RegisterEase adds a named ease.
func (c *Context) RegisterEase(name string, fn EaseFunc) { c.eases.Register(name, fn) }

// RegisterPlugin adds a property plugin.
func (c *Context) RegisterPlugin(p Plugin) { c.plugins.Register(p) }

// To creates a tween from the targets' current values to vars.Props.
// targets is a single target or a slice of targets.
func (c *Context) To(targets any, vars Vars) *Tween {
	return newTween(c, toTargets(targets), vars, KindTo, nil, nil)
}

// From creates a tween from vars.Props to the targets' current values.
func (c *Context) From(targets any, vars Vars) *Tween {
	return newTween(c, toTargets(targets), vars, KindFrom, nil, nil)
}

// FromTo creates a tween from the from values to vars.Props.
func (c *Context) FromTo(targets any, from Props, vars Vars) *Tween {
	vars.StartAt = from
	return newTween(c, toTargets(targets), vars, KindFromTo, nil, nil)
}

// Set assigns props immediately (a zero-duration tween).
func (c *Context) Set(targets any, props Props) *Tween {
	return newTween(c, toTargets(targets), setVars(props), KindTo, nil, nil)
}

// DelayedCall calls fn after delay seconds of root time.
func (c *Context) DelayedCall(delay float64, fn func()) *Tween {
	return newDelayedCall(c, delay, fn, nil, nil)
}

// NewTimeline creates a timeline on the root timeline at the current time.
func (c *Context) NewTimeline(vars TimelineVars) *Timeline {
	return newTimeline(c, vars, nil, nil)
}

// GetTweensOf returns the tweens affecting any of targets.
func (c *Context) GetTweensOf(targets any, onlyActive bool) []*Tween {
	return c.root.GetTweensOf(targets, onlyActive)
}

// KillTweensOf kills the tweens of targets, or only the named properties.
func (c *Context) KillTweensOf(targets any, props ...string) {
	c.root.KillTweensOf(targets, props...)
}

// IsTweening reports whether target has an active tween.
func (c *Context) IsTweening(target any) bool {
	return len(c.root.GetTweensOf(target, true)) > 0
}

// QuickTo returns a function that retargets a single reusable tween of prop
// to a new end value on every call.
func (c *Context) QuickTo(target any, prop string, vars Vars) func(value float64) {
	vars.Props = Props{prop: "+=0"}
	vars.Paused = true
	tw := c.To(target, vars)
	return func(value float64) { tw.ResetTo(prop, value) }
}

// ExportRoot moves the root's current children into a new timeline placed
// on the root, so they can be controlled as a group. Delayed calls stay on
// the root unless includeDelayedCalls is set.
func (c *Context) ExportRoot(vars TimelineVars, includeDelayedCalls bool) *Timeline {
	vars.SmoothChildTiming = true
	tl := &Timeline{labels: make(map[string]float64), sort: isNotFalse(vars.SortChildren), defaults: vars.Defaults}
	tl.smoothChildTiming = true
	tl.autoRemoveChildren = vars.AutoRemoveChildren
	tl.initCore(c, tl, vars.coreVars())
	tl.time = c.root.time
	tl.tTime = c.root.time
	for child := c.root.first; child != nil; {
		next := child.next
		if tw, ok := child.self.(*Tween); includeDelayedCalls || !ok || !tw.callbackOnly {
			addToTimeline(tl, child.self, child.start-child.delay, false)
		}
		child = next
	}
	addToTimeline(c.root, tl, 0, false)
	return tl
}

// Tick advances the ticker by one manual frame.
func (c *Context) Tick() { c.ticker.Tick() }

func (c *Context) autoSleepFrames() int {
	if c.config.AutoSleep > 0 {
		return c.config.AutoSleep
	}
	return 120
}

func (c *Context) wake() {
	if !c.ticker.active {
		c.ticker.Wake()
	}
}

// updateRoot is the root timeline's ticker listener.
func (c *Context) updateRoot(t, _ float64, frame int, _ bool) {
	root := c.root
	var began time.Time
	if c.config.Debug {
		began = time.Now()
	}
	lazy := len(c.lazyTweens)
	if root.ts != 0 {
		// A negative child start moves the root's own start; settle it
		// before mapping ticker time onto the root.
		if root.dirty {
			root.TotalDuration()
		}
		c.lazySafeRender(root, parentToChildTotalTime(t, &root.core), false, false)
		c.lastRenderedFrame = frame
	}
	if c.config.Debug {
		c.debugLog(frame, frameStats{renderTime: time.Since(began), lazyCount: lazy, children: root.children})
	}
	if frame < c.nextGCFrame {
		return
	}
	c.nextGCFrame += c.autoSleepFrames()
	if c.config.AutoSleep <= 0 || c.ticker.ListenerCount() >= 2 {
		return
	}
	for child := root.first; child != nil; child = child.next {
		if child.ts != 0 {
			return
		}
	}
	c.logger.Debug("ticker sleeping", "frame", frame)
	c.ticker.Sleep()
}

// lazySafeRender flushes deferred first renders around a render call.
func (c *Context) lazySafeRender(a Animation, totalTime float64, suppressEvents, force bool) {
	if len(c.lazyTweens) > 0 {
		c.lazyRender()
	}
	a.Render(totalTime, suppressEvents, force)
	if len(c.lazyTweens) > 0 {
		c.lazyRender()
	}
}

// lazyRender runs the first render of tweens that initialized during a root
// render, so their start values were all read before any was written.
func (c *Context) lazyRender() {
	pending := c.lazyTweens
	c.lazyTweens = nil
	clear(c.lazyLookup)
	for _, tw := range pending {
		if tw.lazy {
			tw.Render(tw.lazyTime, tw.lazySuppress, true)
			tw.lazy = false
		}
	}
}

// callback runs the lifecycle callback of a for kind and forwards the event
// to the sink. A panicking callback is logged and does not unwind the render.
func (c *Context) callback(a *core, kind EventType, executeLazyFirst bool) {
	fn := a.cb[kind]
	if kind == EventUpdate {
		fn = a.onUpdate
	}
	emit := c.sink != nil && kind != EventUpdate
	if fn == nil && !emit {
		return
	}
	if executeLazyFirst && len(c.lazyTweens) > 0 {
		c.lazyRender()
	}
	if fn != nil {
		c.invoke(a, kind, fn)
	}
	if emit {
		c.sink.EmitEvent(Event{
			Type:      kind,
			ID:        a.id,
			Animation: a.self,
			Time:      a.time,
			TotalTime: a.tTime,
			Iteration: a.self.Iteration(),
		})
	}
}

func (c *Context) invoke(a *core, kind EventType, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("callback panicked", "event", kind, "id", a.id, "panic", r)
		}
	}()
	fn()
}

func (c *Context) renderRecord(tw *Tween, pt *PropTween, ratio float64) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("property render panicked", "property", pt.Property, "id", tw.id, "panic", r)
		}
	}()
	pt.render(ratio)
}

func (c *Context) missingProperty(tw *Tween, target any, prop string) {
	if !c.config.NullTargetWarn {
		return
	}
	typ := reflect.TypeOf(target)
	key := fmt.Sprintf("%v.%s", typ, prop)
	if c.missing[key] {
		return
	}
	c.missing[key] = true
	c.logger.Warn("property not found on target", "property", prop, "target", typ, "tween", tw.id)
}

// identity returns a comparable key for target, or nil when target cannot
// be compared. Maps, pointers and other reference kinds compare by address.
func identity(target any) any {
	if target == nil {
		return nil
	}
	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.Slice, reflect.UnsafePointer:
		return refKey{typ: rv.Type(), ptr: rv.Pointer()}
	}
	if rv.Comparable() {
		return target
	}
	return nil
}

type refKey struct {
	typ reflect.Type
	ptr uintptr
}

// toTargets normalizes a target argument: []any and slices of pointers or
// maps are expanded; anything else is a single target. Duplicates and nils
// are dropped.
func toTargets(targets any) []any {
	var list []any
	switch t := targets.(type) {
	case nil:
		return nil
	case []any:
		list = t
	default:
		rv := reflect.ValueOf(targets)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			switch rv.Type().Elem().Kind() {
			case reflect.Pointer, reflect.Map, reflect.Interface:
				list = make([]any, rv.Len())
				for i := range list {
					list[i] = rv.Index(i).Interface()
				}
			default:
				list = []any{targets}
			}
		} else {
			list = []any{targets}
		}
	}
	out := make([]any, 0, len(list))
	seen := make(map[any]bool, len(list))
	for _, t := range list {
		if t == nil {
			continue
		}
		if rv := reflect.ValueOf(t); (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Map) && rv.IsNil() {
			continue
		}
		if key := identity(t); key != nil {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, t)
	}
	return out
}

func containsTarget(list []any, target any) bool {
	key := identity(target)
	if key == nil {
		return false
	}
	for _, t := range list {
		if identity(t) == key {
			return true
		}
	}
	return false
}

// --- Package-level helpers on the default Context ---

// To creates a tween on the default Context.
func To(targets any, vars Vars) *Tween { return Default().To(targets, vars) }

// From creates a from tween on the default Context.
func From(targets any, vars Vars) *Tween { return Default().From(targets, vars) }

// FromTo creates a fromTo tween on the default Context.
func FromTo(targets any, from Props, vars Vars) *Tween {
	return Default().FromTo(targets, from, vars)
}

// Set assigns props immediately on the default Context.
func Set(targets any, props Props) *Tween { return Default().Set(targets, props) }

// DelayedCall schedules fn on the default Context.
func DelayedCall(delay float64, fn func()) *Tween { return Default().DelayedCall(delay, fn) }

// NewTimeline creates a timeline on the default Context.
func NewTimeline(vars TimelineVars) *Timeline { return Default().NewTimeline(vars) }

// KillTweensOf kills tweens of targets on the default Context.
func KillTweensOf(targets any, props ...string) { Default().KillTweensOf(targets, props...) }

// GetTweensOf returns tweens of targets on the default Context.
func GetTweensOf(targets any, onlyActive bool) []*Tween {
	return Default().GetTweensOf(targets, onlyActive)
}

// IsTweening reports whether target is being tweened on the default Context.
func IsTweening(target any) bool { return Default().IsTweening(target) }

// RegisterEase adds an ease to the default Context.
func RegisterEase(name string, fn EaseFunc) { Default().RegisterEase(name, fn) }

// RegisterPlugin adds a plugin to the default Context.
func RegisterPlugin(p Plugin) { Default().RegisterPlugin(p) }

package cadence

import (
	"math"
	"time"
)

// TickFunc is called once per dispatched frame with the ticker time in
// seconds, the elapsed milliseconds since the previous frame, the frame
// number, and whether the frame was a manual Tick.
type TickFunc func(time, deltaMs float64, frame int, manual bool)

// Driver produces frames for a Ticker. Start is called with the function to
// invoke once per display frame; Stop ends the calls. Without a driver the
// host calls Ticker.Frame or Ticker.Tick itself.
type Driver interface {
	Start(frame func())
	Stop()
}

type tickListener struct {
	id int
	fn TickFunc
}

// Ticker turns wall-clock time into frames. Long stalls are compressed by
// lag smoothing and frames are throttled to the configured FPS. It is
// single-threaded: call it from the goroutine that owns the Context.
type Ticker struct {
	clock  Clock
	driver Driver
	origin time.Time

	lagThreshold float64
	adjustedLag  float64
	gap          float64

	startTime  float64
	lastUpdate float64
	nextTime   float64

	time  float64
	delta float64
	frame int

	listeners []tickListener
	nextID    int
	dispatch  int
	active    bool
}

func newTicker(clock Clock, driver Driver, cfg Config) *Ticker {
	t := &Ticker{clock: clock, driver: driver, origin: clock.Now()}
	t.LagSmoothing(cfg.LagThreshold, cfg.AdjustedLag)
	t.SetFPS(cfg.FPS)
	return t
}

func (t *Ticker) now() float64 {
	return float64(t.clock.Now().Sub(t.origin)) / float64(time.Millisecond)
}

func (t *Ticker) tick(manual bool) {
	elapsed := t.now() - t.lastUpdate
	if elapsed > t.lagThreshold || elapsed < 0 {
		t.startTime += elapsed - t.adjustedLag
	}
	t.lastUpdate += elapsed
	tm := t.lastUpdate - t.startTime
	overlap := tm - t.nextTime
	if overlap <= 0 && !manual {
		return
	}
	t.frame++
	t.delta = tm - t.time*1000
	t.time = tm / 1000
	if overlap >= t.gap {
		t.nextTime += overlap + 4
	} else {
		t.nextTime += overlap + (t.gap - overlap)
	}
	for t.dispatch = 0; t.dispatch < len(t.listeners); t.dispatch++ {
		t.listeners[t.dispatch].fn(t.time, t.delta, t.frame, manual)
	}
}

// Tick forces a frame now, regardless of the FPS throttle.
func (t *Ticker) Tick() { t.tick(true) }

// Frame is called by drivers once per display frame. It dispatches only
// when enough time has passed for the configured FPS.
func (t *Ticker) Frame() { t.tick(false) }

// Add registers fn. When once is true fn is removed after its first call;
// prioritize puts it ahead of existing listeners. The returned id is used
// with Remove. Adding a listener wakes the ticker.
func (t *Ticker) Add(fn TickFunc, once, prioritize bool) int {
	t.nextID++
	id := t.nextID
	call := fn
	if once {
		call = func(tm, delta float64, frame int, manual bool) {
			t.Remove(id)
			fn(tm, delta, frame, manual)
		}
	}
	l := tickListener{id: id, fn: call}
	if prioritize {
		t.listeners = append([]tickListener{l}, t.listeners...)
		if t.dispatch < len(t.listeners)-1 {
			t.dispatch++
		}
	} else {
		t.listeners = append(t.listeners, l)
	}
	if !t.active {
		t.Wake()
	}
	return id
}

// Remove unregisters the listener with id. It is safe to call from inside
// a listener.
func (t *Ticker) Remove(id int) {
	for i, l := range t.listeners {
		if l.id != id {
			continue
		}
		t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
		if i <= t.dispatch {
			t.dispatch--
		}
		return
	}
}

// Wake restarts frame production after Sleep.
func (t *Ticker) Wake() {
	if t.active && t.driver != nil {
		t.driver.Stop()
	}
	t.active = true
	if t.driver != nil {
		t.driver.Start(t.Frame)
	}
	t.tick(false)
}

// Sleep stops frame production until Wake.
func (t *Ticker) Sleep() {
	if t.driver != nil {
		t.driver.Stop()
	}
	t.active = false
}

// LagSmoothing configures stall compression: a gap longer than threshold
// milliseconds advances time by only adjustedLag. threshold <= 0 disables
// smoothing.
func (t *Ticker) LagSmoothing(threshold, adjustedLag float64) {
	if threshold <= 0 {
		threshold = math.Inf(1)
	}
	if adjustedLag <= 0 {
		adjustedLag = 33
	}
	t.lagThreshold = threshold
	t.adjustedLag = math.Min(adjustedLag, threshold)
}

// SetFPS caps dispatched frames per second; fps <= 0 means 240.
func (t *Ticker) SetFPS(fps float64) {
	if fps <= 0 {
		fps = 240
	}
	t.gap = 1000 / fps
	t.nextTime = t.time*1000 + t.gap
}

// DeltaRatio returns the last frame's delta relative to a frame at fps
// (60 when fps <= 0).
func (t *Ticker) DeltaRatio(fps float64) float64 {
	if fps <= 0 {
		fps = 60
	}
	return t.delta / (1000 / fps)
}

// Time returns the ticker time in seconds.
func (t *Ticker) Time() float64 { return t.time }

// Delta returns the milliseconds between the last two frames.
func (t *Ticker) Delta() float64 { return t.delta }

// FrameCount returns the number of dispatched frames.
func (t *Ticker) FrameCount() int { return t.frame }

// Active reports whether the ticker is awake.
func (t *Ticker) Active() bool { return t.active }

// ListenerCount returns the number of registered listeners.
func (t *Ticker) ListenerCount() int { return len(t.listeners) }

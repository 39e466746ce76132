// Package driver runs a cadence ticker from the Ebitengine game loop.
//
// Ebitengine calls Update at a fixed TPS. The Driver forwards each Update to
// the ticker's frame function while the ticker is awake, then runs the
// host's own update. Pair it with a TickClock for frame-exact timing that
// ignores wall-clock jitter:
//
//	clock := driver.NewTickClock()
//	d := driver.New(clock)
//	ctx := cadence.NewContext(cadence.WithDriver(d), cadence.WithClock(clock))
//	d.SetDrawFunc(func(screen *ebiten.Image) { ... })
//	log.Fatal(driver.Run(d, driver.RunConfig{Title: "demo", Width: 640, Height: 480}))
package driver

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/phanxgames/cadence"
)

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ClearColor fills the screen before the draw func runs. Nil leaves the
	// screen as Ebitengine provides it.
	ClearColor color.Color
	// ShowFPS prints the actual FPS and TPS in the top-left corner.
	ShowFPS bool
}

// Driver implements cadence.Driver and ebiten.Game.
type Driver struct {
	clock  *TickClock
	frame  func()
	update func() error
	draw   func(screen *ebiten.Image)
	cfg    RunConfig
}

var _ cadence.Driver = (*Driver)(nil)

// New creates a Driver. When clock is non-nil it advances by one tick
// before every frame.
func New(clock *TickClock) *Driver {
	return &Driver{clock: clock}
}

// Start implements cadence.Driver.
func (d *Driver) Start(frame func()) { d.frame = frame }

// Stop implements cadence.Driver.
func (d *Driver) Stop() { d.frame = nil }

// Running reports whether the ticker is receiving frames.
func (d *Driver) Running() bool { return d.frame != nil }

// SetUpdateFunc sets a function called every tick after the animation frame.
// Returning an error ends the game loop.
func (d *Driver) SetUpdateFunc(fn func() error) { d.update = fn }

// SetDrawFunc sets the function that draws the frame.
func (d *Driver) SetDrawFunc(fn func(screen *ebiten.Image)) { d.draw = fn }

// Update implements ebiten.Game.
func (d *Driver) Update() error {
	if d.clock != nil {
		d.clock.Step(ebiten.TPS())
	}
	if d.frame != nil {
		d.frame()
	}
	if d.update != nil {
		return d.update()
	}
	return nil
}

// Draw implements ebiten.Game.
func (d *Driver) Draw(screen *ebiten.Image) {
	if d.cfg.ClearColor != nil {
		screen.Fill(d.cfg.ClearColor)
	}
	if d.draw != nil {
		d.draw(screen)
	}
	if d.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout implements ebiten.Game. The logical screen is the configured size.
func (d *Driver) Layout(outsideWidth, outsideHeight int) (int, int) {
	if d.cfg.Width <= 0 || d.cfg.Height <= 0 {
		return outsideWidth, outsideHeight
	}
	return d.cfg.Width, d.cfg.Height
}

// Run opens a window and runs the game loop until the window closes or the
// update func returns an error. ebiten.Termination ends the loop cleanly.
func Run(d *Driver, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("driver: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	d.cfg = cfg
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if err := ebiten.RunGame(d); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// TickClock is a cadence.Clock that advances one game tick per Update, so
// animations progress by exactly 1/TPS seconds per tick.
type TickClock struct {
	now time.Time
}

var _ cadence.Clock = (*TickClock)(nil)

// NewTickClock returns a clock starting at the Unix epoch.
func NewTickClock() *TickClock {
	return &TickClock{now: time.Unix(0, 0)}
}

// Now implements cadence.Clock.
func (c *TickClock) Now() time.Time { return c.now }

// Step advances the clock by one tick at tps ticks per second.
func (c *TickClock) Step(tps int) {
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	c.now = c.now.Add(time.Second / time.Duration(tps))
}

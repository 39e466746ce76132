package main

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/cadence"
	"github.com/phanxgames/cadence/driver"
	"github.com/phanxgames/cadence/internal/config"
)

const (
	windowW   = 640
	windowH   = 480
	rowHeight = 28
	barX      = 160
	barW      = 360
)

var (
	barColor   = color.RGBA{R: 0x5f, G: 0xd7, B: 0xd7, A: 0xff}
	trackColor = color.RGBA{R: 0x30, G: 0x30, B: 0x3a, A: 0xff}
)

// runWindow plays the script in an Ebitengine window, one animation frame
// per game tick.
func runWindow(cfg config.Config, logger *log.Logger, path string) error {
	clock := driver.NewTickClock()
	d := driver.New(clock)
	ctx := cadence.NewContext(
		cadence.WithDriver(d),
		cadence.WithClock(clock),
		cadence.WithConfig(cfg.Engine),
		cadence.WithLogger(logger),
	)
	built, err := loadSource(path)(ctx)
	if err != nil {
		return err
	}
	cols := sampleColumns(built)
	ranges := make(map[column][2]float64, len(cols))
	for _, c := range cols {
		v, _ := built.Targets[c.name][c.prop].(float64)
		ranges[c] = [2]float64{v, v}
	}

	d.SetUpdateFunc(func() error {
		tl := built.Timeline
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
			return ebiten.Termination
		case inpututil.IsKeyJustPressed(ebiten.KeySpace):
			tl.SetPaused(!tl.Paused())
			ctx.Ticker().Wake()
		case inpututil.IsKeyJustPressed(ebiten.KeyR):
			tl.Restart(false)
			ctx.Ticker().Wake()
		}
		for _, c := range cols {
			v, _ := built.Targets[c.name][c.prop].(float64)
			r := ranges[c]
			ranges[c] = [2]float64{min(r[0], v), max(r[1], v)}
		}
		return nil
	})
	d.SetDrawFunc(func(screen *ebiten.Image) {
		tl := built.Timeline
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  %.2f / %.2f  (space pause, r restart)",
			path, tl.TotalTime(), tl.TotalDuration()), 8, windowH-20)
		for i, c := range cols {
			y := float32(16 + i*rowHeight)
			v, _ := built.Targets[c.name][c.prop].(float64)
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %.2f", c, v), 8, int(y))
			vector.FillRect(screen, barX, y, barW, 12, trackColor, false)
			r := ranges[c]
			if r[1] > r[0] {
				w := float32((v - r[0]) / (r[1] - r[0]) * barW)
				vector.FillRect(screen, barX, y, w, 12, barColor, false)
			}
		}
	})
	return driver.Run(d, driver.RunConfig{
		Title:      "cadence - " + path,
		Width:      windowW,
		Height:     windowH,
		ClearColor: color.RGBA{R: 0x1a, G: 0x1a, B: 0x26, A: 0xff},
		ShowFPS:    cfg.Engine.Debug,
	})
}

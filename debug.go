package cadence

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the default logger, writing to stderr.
func newLogger(debug bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: "cadence"})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// frameStats holds per-frame metrics. Only collected in debug mode.
type frameStats struct {
	renderTime time.Duration
	lazyCount  int
	children   int
}

// debugLog writes the frame stats at debug level.
func (c *Context) debugLog(frame int, stats frameStats) {
	if !c.config.Debug {
		return
	}
	c.logger.Debug("frame",
		"frame", frame,
		"render", stats.renderTime,
		"lazy", stats.lazyCount,
		"children", stats.children)
}

// debugMaxTimelineDepth bounds how deep timelines may nest before a warning.
const debugMaxTimelineDepth = 32

func (c *Context) debugCheckDepth(tl *Timeline) {
	depth := 0
	for p := tl; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTimelineDepth {
		c.logger.Warn("timeline nesting exceeds threshold", "id", tl.id, "depth", depth, "threshold", debugMaxTimelineDepth)
	}
}

// debugMaxChildCount bounds how many children a timeline may hold before a
// warning.
const debugMaxChildCount = 10000

func (c *Context) debugCheckChildCount(tl *Timeline) {
	if n := tl.children; n == debugMaxChildCount+1 {
		c.logger.Warn("timeline child count exceeds threshold", "id", tl.id, "children", n, "threshold", debugMaxChildCount)
	}
}

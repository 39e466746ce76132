// Package preview plays a timeline script in the terminal with Bubble Tea.
package preview

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phanxgames/cadence"
	"github.com/phanxgames/cadence/internal/script"
)

// TickMsg advances playback by one frame.
type TickMsg time.Time

// ReloadMsg asks the model to rebuild its timeline.
type ReloadMsg struct {
	Path string
}

// Source builds the timeline shown by the model. It is called again on
// every ReloadMsg.
type Source func(ctx *cadence.Context) (*script.Built, error)

// Options configures the preview.
type Options struct {
	Title     string
	FPS       float64
	Width     int
	Precision int
	// Reload delivers changed file paths. Nil disables live reload.
	Reload <-chan string
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Model is the Bubble Tea model of the preview.
type Model struct {
	opts   Options
	clock  *cadence.VirtualClock
	ctx    *cadence.Context
	source Source
	built  *script.Built
	ranges map[string]*valueRange
	builds int
	err    error
}

type valueRange struct {
	min, max float64
}

// New creates a model with its own context. ctxOpts are passed to
// cadence.NewContext after the model's virtual clock.
func New(source Source, opts Options, ctxOpts ...cadence.Option) (Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Width < 1 {
		opts.Width = 40
	}
	clock := cadence.NewVirtualClock()
	ctx := cadence.NewContext(append([]cadence.Option{cadence.WithClock(clock)}, ctxOpts...)...)
	m := Model{
		opts:   opts,
		clock:  clock,
		ctx:    ctx,
		source: source,
		ranges: make(map[string]*valueRange),
	}
	built, err := source(ctx)
	if err != nil {
		return m, err
	}
	m.built = built
	m.builds = 1
	m.sample()
	return m, nil
}

// Context returns the model's context.
func (m Model) Context() *cadence.Context { return m.ctx }

// Timeline returns the timeline being previewed.
func (m Model) Timeline() *cadence.Timeline { return m.built.Timeline }

// Err returns the last reload error.
func (m Model) Err() error { return m.err }

func (m Model) frameInterval() time.Duration {
	return time.Duration(float64(time.Second) / m.opts.FPS)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForReload(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg{Path: path}
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), waitForReload(m.opts.Reload))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.step()
		return m, m.tickCmd()
	case ReloadMsg:
		m.reload()
		return m, waitForReload(m.opts.Reload)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tl := m.built.Timeline
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case " ", "p":
		tl.SetPaused(!tl.Paused())
	case "r":
		tl.Restart(false)
	case "b":
		if tl.Reversed() {
			tl.Play()
		} else {
			tl.Reverse()
		}
	case "left":
		tl.Seek(math.Max(0, tl.TotalTime()-0.25), false)
	case "right":
		tl.Seek(math.Min(tl.TotalDuration(), tl.TotalTime()+0.25), false)
	}
	m.sample()
	return m, nil
}

// step advances the virtual clock by one frame.
func (m Model) step() {
	m.clock.Advance(m.frameInterval())
	m.ctx.Tick()
	m.sample()
}

func (m *Model) reload() {
	built, err := m.source(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.built.Timeline.Kill()
	m.built = built
	m.builds++
	m.err = nil
	clear(m.ranges)
	m.sample()
}

func (m Model) sample() {
	for _, name := range m.built.Names {
		for prop, v := range m.built.Targets[name] {
			f, ok := v.(float64)
			if !ok {
				continue
			}
			key := row{name: name, prop: prop}.key()
			r := m.ranges[key]
			if r == nil {
				m.ranges[key] = &valueRange{min: f, max: f}
				continue
			}
			r.min = math.Min(r.min, f)
			r.max = math.Max(r.max, f)
		}
	}
}

// View renders the preview.
func (m Model) View() string {
	tl := m.built.Timeline
	var b strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "cadence"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	state := "playing"
	if tl.Paused() {
		state = "paused"
	}
	if tl.Reversed() {
		state += " (reversed)"
	}
	fmt.Fprintf(&b, "%s  %s / %s  %s\n",
		m.bar(tl.TotalProgress()),
		m.format(tl.TotalTime()),
		m.format(tl.TotalDuration()),
		state,
	)
	if label := tl.CurrentLabel(); label != "" {
		fmt.Fprintf(&b, "label %s\n", label)
	}

	rows := m.rows()
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("reload failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space pause • r restart • b reverse • ←/→ seek • q quit"))
	return b.String()
}

type row struct {
	name, prop string
}

func (r row) key() string { return r.name + "." + r.prop }

func (m Model) rows() []string {
	var list []row
	width := 0
	for _, name := range m.built.Names {
		props := make([]string, 0, len(m.built.Targets[name]))
		for prop, v := range m.built.Targets[name] {
			if _, ok := v.(float64); ok {
				props = append(props, prop)
			}
		}
		sort.Strings(props)
		for _, prop := range props {
			r := row{name: name, prop: prop}
			list = append(list, r)
			width = max(width, len(r.key()))
		}
	}

	out := make([]string, 0, len(list))
	for _, r := range list {
		v := m.built.Targets[r.name][r.prop].(float64)
		ratio := 0.0
		if vr := m.ranges[r.key()]; vr != nil && vr.max > vr.min {
			ratio = (v - vr.min) / (vr.max - vr.min)
		}
		out = append(out, fmt.Sprintf("%s  %s  %s",
			labelStyle.Render(fmt.Sprintf("%-*s", width, r.key())),
			m.bar(ratio),
			m.format(v),
		))
	}
	return out
}

func (m Model) bar(ratio float64) string {
	ratio = math.Max(0, math.Min(1, ratio))
	n := int(math.Round(ratio * float64(m.opts.Width)))
	return barStyle.Render(strings.Repeat("█", n)) + emptyStyle.Render(strings.Repeat("░", m.opts.Width-n))
}

func (m Model) format(v float64) string {
	return fmt.Sprintf("%.*f", m.opts.Precision, v)
}

// Run starts the preview in the terminal and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

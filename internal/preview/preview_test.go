package preview

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/phanxgames/cadence"
	"github.com/phanxgames/cadence/internal/script"
)

const slide = `
targets:
  box: {x: 0}
steps:
  - to: box
    duration: 1
    ease: none
    props: {x: 100}
  - label: done
`

func sourceFrom(t *testing.T, doc *string) Source {
	t.Helper()
	return func(ctx *cadence.Context) (*script.Built, error) {
		s, err := script.Parse([]byte(*doc))
		if err != nil {
			return nil, err
		}
		return s.Build(ctx, nil)
	}
}

func newModel(t *testing.T, doc *string) Model {
	t.Helper()
	m, err := New(sourceFrom(t, doc), Options{Title: "slide", FPS: 10, Width: 10}, cadence.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTicksAdvancePlayback(t *testing.T) {
	doc := slide
	m := newModel(t, &doc)
	for i := 0; i < 5; i++ {
		m = update(t, m, TickMsg(time.Time{}))
	}
	x := m.built.Targets["box"]["x"].(float64)
	if x < 49 || x > 51 {
		t.Errorf("x = %f, want ~50 after 5 frames at 10fps", x)
	}
	if !strings.Contains(m.View(), "box.x") {
		t.Errorf("view missing row:\n%s", m.View())
	}
}

func TestPauseKey(t *testing.T) {
	doc := slide
	m := newModel(t, &doc)
	m = update(t, m, key(" "))
	if !m.Timeline().Paused() {
		t.Fatal("space should pause")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Errorf("view should show paused:\n%s", m.View())
	}
	m = update(t, m, TickMsg(time.Time{}))
	if x := m.built.Targets["box"]["x"].(float64); x != 0 {
		t.Errorf("x = %f, want 0 while paused", x)
	}
	m = update(t, m, key(" "))
	if m.Timeline().Paused() {
		t.Error("space should resume")
	}
}

func TestSeekKeys(t *testing.T) {
	doc := slide
	m := newModel(t, &doc)
	m = update(t, m, key(" "))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Timeline().TotalTime(); got != 0.5 {
		t.Errorf("time = %f, want 0.5", got)
	}
	m = update(t, m, key("left"))
	if got := m.Timeline().TotalTime(); got != 0.25 {
		t.Errorf("time = %f, want 0.25", got)
	}
}

func TestQuitKey(t *testing.T) {
	doc := slide
	m := newModel(t, &doc)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestReload(t *testing.T) {
	doc := slide
	m := newModel(t, &doc)
	old := m.Timeline()

	doc = strings.Replace(slide, "x: 100", "x: 10", 1)
	m = update(t, m, ReloadMsg{Path: "slide.yaml"})
	if m.builds != 2 || m.Timeline() == old {
		t.Fatalf("builds = %d, want a new timeline", m.builds)
	}
	if old.Parent() != nil {
		t.Error("old timeline should be killed")
	}

	doc = "steps: [\n"
	m = update(t, m, ReloadMsg{})
	if m.Err() == nil {
		t.Fatal("broken script should set an error")
	}
	if !strings.Contains(m.View(), "reload failed") {
		t.Errorf("view should show the error:\n%s", m.View())
	}
}

func TestNewReportsSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(func(*cadence.Context) (*script.Built, error) { return nil, boom }, Options{})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

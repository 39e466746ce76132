package cadence

import (
	"sort"
	"strings"
)

// Plugin takes over one property name for every tween. When a tween's Props
// contain the plugin's name, Init runs once per target while the tween
// initializes and Render runs on every render after that.
//
// Init receives the value given for the property; returning false skips the
// property for that target. The returned state is available from
// PropTween.State inside Render.
type Plugin interface {
	Name() string
	Init(target, value any, tw *Tween, index int, targets []any) (state any, ok bool)
	Render(ratio float64, rec *PropTween)
}

// PluginRegistry holds the plugins of a Context.
type PluginRegistry struct {
	plugins map[string]Plugin
}

func newPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[string]Plugin)}
}

// Register adds p, replacing any plugin with the same name.
func (r *PluginRegistry) Register(p Plugin) {
	if p == nil {
		panic("cadence: cannot register nil plugin")
	}
	name := p.Name()
	if strings.TrimSpace(name) == "" {
		panic("cadence: plugin name must not be empty")
	}
	r.plugins[name] = p
}

// Get returns the plugin registered under name.
func (r *PluginRegistry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the registered plugin names, sorted.
func (r *PluginRegistry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

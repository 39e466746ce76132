package cadence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---- Config ----------------------------------------------------------------------

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("fps: 60\ndefault_ease: sine.inOut\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.FPS != 60 || cfg.DefaultEase != "sine.inOut" {
		t.Errorf("fps=%f ease=%s, want 60 and sine.inOut", cfg.FPS, cfg.DefaultEase)
	}
	if cfg.LagThreshold != 500 || cfg.AutoSleep != 120 {
		t.Errorf("unset fields should keep defaults, got lag=%f sleep=%d", cfg.LagThreshold, cfg.AutoSleep)
	}
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative fps":   "fps: -1\n",
		"bad overwrite":  "default_overwrite: sometimes\n",
		"negative sleep": "auto_sleep: -3\n",
		"not yaml":       "fps: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(doc)); err == nil {
				t.Error("ParseConfig succeeded, want error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	if err := os.WriteFile(path, []byte("lag_threshold: 100\nadjusted_lag: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LagThreshold != 100 || cfg.AdjustedLag != 10 {
		t.Errorf("lag=%f adjusted=%f, want 100 and 10", cfg.LagThreshold, cfg.AdjustedLag)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("missing file error = %v", err)
	}
}

func TestConfigDefaultEaseApplies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultEase = "none"
	ctx, _ := newTestContext(t, WithConfig(cfg))
	target := &box{}
	tw := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100}})
	tw.Render(0.3, true, false)
	if !approx(target.X, 30) {
		t.Errorf("X = %f, want ~30 with a linear default ease", target.X)
	}
}

func TestConfigDefaultOverwrite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultOverwrite = "none"
	ctx, clock := newTestContext(t, WithConfig(cfg))
	target := &box{}
	first := ctx.To(target, Vars{Duration: 1, Props: Props{"x": 100}})
	ctx.To(target, Vars{Duration: 1, Props: Props{"x": 200}})
	step(ctx, clock, 100*time.Millisecond)
	if first.Parent() == nil || first.Records() == nil {
		t.Error("overwrite none should leave the first tween running")
	}
}

func TestConfigLagThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LagThreshold = 100
	cfg.AdjustedLag = 10
	ctx, clock := newTestContext(t, WithConfig(cfg))
	step(ctx, clock, 200*time.Millisecond)
	if !approx(ctx.Ticker().Time(), 0.01) {
		t.Errorf("time = %f, want ~0.01", ctx.Ticker().Time())
	}
}

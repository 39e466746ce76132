package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestEmbeddedDefaultMatchesDefault(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(default): %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded default = %+v\nwant %+v", cfg, Default())
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("play:\n  fps: 30\nengine:\n  default_ease: none\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Play.FPS != 30 || cfg.Engine.DefaultEase != "none" {
		t.Errorf("fps=%f ease=%s, want 30 and none", cfg.Play.FPS, cfg.Engine.DefaultEase)
	}
	if cfg.Play.SampleEvery != 6 || cfg.Engine.LagThreshold != 500 {
		t.Errorf("unset fields should keep defaults, got %+v", cfg)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero fps":        "play:\n  fps: 0\n",
		"negative sample": "play:\n  sample_every: 0\n",
		"bad engine":      "engine:\n  default_overwrite: never\n",
		"zero width":      "preview:\n  width: 0\n",
		"not yaml":        "play: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Error("Parse succeeded, want error")
			}
		})
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := isolate(t)

	cfg, from, err := Load("")
	if err != nil || from != "" || cfg.Play.FPS != 60 {
		t.Fatalf("embedded: cfg.fps=%f from=%q err=%v", cfg.Play.FPS, from, err)
	}

	if err := os.WriteFile(FileName, []byte("play:\n  fps: 24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, from, _ = Load("")
	if from != FileName || cfg.Play.FPS != 24 {
		t.Errorf("local: fps=%f from=%q, want 24 from %s", cfg.Play.FPS, from, FileName)
	}

	userDir := filepath.Join(home, ".cadence")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	userPath := filepath.Join(userDir, FileName)
	if err := os.WriteFile(userPath, []byte("play:\n  fps: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, from, _ = Load("")
	if from != userPath || cfg.Play.FPS != 12 {
		t.Errorf("user: fps=%f from=%q, want 12 from %s", cfg.Play.FPS, from, userPath)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("play:\n  fps: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, from, _ = Load(custom)
	if from != custom || cfg.Play.FPS != 6 {
		t.Errorf("custom: fps=%f from=%q, want 6", cfg.Play.FPS, from)
	}
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("missing custom file error = %v", err)
	}

	if err := os.WriteFile(FileName, []byte("play:\n  fps: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(""); err == nil {
		t.Error("invalid local config should be reported")
	}
}

func TestPlayLimit(t *testing.T) {
	cases := []struct {
		name  string
		play  PlayConfig
		total float64
		want  float64
	}{
		{"timeline length", PlayConfig{}, 3, 3},
		{"explicit duration", PlayConfig{Duration: 1.5}, 3, 1.5},
		{"capped", PlayConfig{MaxDuration: 10}, 1e10, 10},
		{"duration capped", PlayConfig{Duration: 20, MaxDuration: 10}, 3, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.play.Limit(c.total); got != c.want {
				t.Errorf("Limit(%f) = %f, want %f", c.total, got, c.want)
			}
		})
	}
}

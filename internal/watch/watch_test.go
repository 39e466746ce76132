package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro.yaml")
	writeFile(t, path, "steps: []\n")

	w, err := New(50*time.Millisecond, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	for i := 0; i < 3; i++ {
		writeFile(t, path, "steps: [1]\n")
	}

	select {
	case got := <-w.Events:
		want, _ := filepath.Abs(path)
		if got != want {
			t.Errorf("event = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after writing the file")
	}

	select {
	case got := <-w.Events:
		t.Errorf("unexpected second event %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro.yaml")
	writeFile(t, path, "a")

	w, err := New(20*time.Millisecond, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.yaml"), "b")
	select {
	case got := <-w.Events:
		t.Errorf("unexpected event %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "a")

	w, err := New(0, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultDebounce)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Error("Events should be closed")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	if _, err := New(0, filepath.Join(t.TempDir(), "nope", "x.yaml")); err == nil {
		t.Error("watching a missing directory should fail")
	}
}

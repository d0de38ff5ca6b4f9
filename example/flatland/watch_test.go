package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsYAMLWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := newConfigWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("speed: 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("expected %q, got %q", path, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for a yaml write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := newConfigWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected event %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCloseDuringEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := newConfigWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			name := filepath.Join(dir, "config.yml")
			_ = os.WriteFile(name, []byte("speed: 5\n"), 0o644)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-done

	// Events is closed by the run loop once it drains; wait for that.
	select {
	case <-time.After(2 * time.Second):
		t.Fatal("events channel never closed")
	case _, ok := <-w.Events:
		for ok {
			_, ok = <-w.Events
		}
	}
}
